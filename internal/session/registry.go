// Package session holds in-memory conversation sessions for one designer
// instance. A session created through one registry is only ever visible
// through lookups against that same registry.
package session

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/roamkit/tripcore/internal/domain"
)

// Lease is exclusive access to one session for the duration of a chat turn.
// Holding a lease serializes concurrent turns against the same session so
// history order is deterministic and never interleaved mid-turn.
type Lease interface {
	// Session returns a copy of the session as of the last mutation.
	Session() domain.Session
	// Append appends a turn under the lease.
	Append(turn domain.ChatTurn)
	// Release releases the lease. Safe to call exactly once.
	Release()
}

// Store is the session storage contract. The in-memory Registry is the
// standard implementation; a shared-store implementation can back it for
// multi-instance deployments where session affinity cannot be assumed.
type Store interface {
	// Create allocates a new session with empty history and returns its id.
	Create(itineraryRef string) string
	// Get returns a copy of the session or domain.ErrSessionNotFound.
	Get(id string) (domain.Session, error)
	// Append appends a turn to the session's history.
	Append(id string, turn domain.ChatTurn) error
	// Acquire takes the per-session lock for a multi-step turn.
	Acquire(id string) (Lease, error)
	// EvictIdle removes sessions idle longer than maxIdle and returns how
	// many were removed. Sessions with a held lease are skipped.
	EvictIdle(maxIdle time.Duration) int
	// Len returns the number of live sessions.
	Len() int
	// Evicted returns the total number of sessions evicted so far.
	Evicted() int64
}

// Registry is the in-memory Store implementation.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	evicted  atomic.Int64

	now func() time.Time
}

type entry struct {
	mu sync.Mutex
	s  domain.Session
}

var _ Store = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]*entry),
		now:      time.Now,
	}
}

// Create allocates a new session with empty history.
func (r *Registry) Create(itineraryRef string) string {
	id := uuid.NewString()
	now := r.now()

	r.mu.Lock()
	r.sessions[id] = &entry{s: domain.Session{
		ID:             id,
		ItineraryRef:   itineraryRef,
		History:        []domain.ChatTurn{},
		CreatedAt:      now,
		LastActivityAt: now,
	}}
	r.mu.Unlock()
	return id
}

func (r *Registry) lookup(id string) (*entry, error) {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return e, nil
}

// Get returns a copy of the session.
func (r *Registry) Get(id string) (domain.Session, error) {
	e, err := r.lookup(id)
	if err != nil {
		return domain.Session{}, err
	}
	e.mu.Lock()
	s := copySession(&e.s)
	e.mu.Unlock()
	return s, nil
}

// Append appends a turn to the session's history.
func (r *Registry) Append(id string, turn domain.ChatTurn) error {
	e, err := r.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	r.appendLocked(e, turn)
	e.mu.Unlock()
	return nil
}

func (r *Registry) appendLocked(e *entry, turn domain.ChatTurn) {
	e.s.History = append(e.s.History, turn)
	e.s.LastActivityAt = r.now()
}

// Acquire takes the per-session lock until Release is called.
func (r *Registry) Acquire(id string) (Lease, error) {
	e, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	return &lease{r: r, e: e}, nil
}

type lease struct {
	r *Registry
	e *entry
}

func (l *lease) Session() domain.Session { return copySession(&l.e.s) }

func (l *lease) Append(turn domain.ChatTurn) { l.r.appendLocked(l.e, turn) }

func (l *lease) Release() { l.e.mu.Unlock() }

// EvictIdle removes sessions whose last activity is older than maxIdle.
// Eviction is a hard removal: a later lookup returns ErrSessionNotFound.
func (r *Registry) EvictIdle(maxIdle time.Duration) int {
	cutoff := r.now().Add(-maxIdle)
	removed := 0

	r.mu.Lock()
	for id, e := range r.sessions {
		// Skip sessions with an in-flight turn.
		if !e.mu.TryLock() {
			continue
		}
		idle := e.s.LastActivityAt.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(r.sessions, id)
			removed++
		}
	}
	r.mu.Unlock()

	if removed > 0 {
		r.evicted.Add(int64(removed))
	}
	return removed
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Evicted returns the total eviction count.
func (r *Registry) Evicted() int64 {
	return r.evicted.Load()
}

func copySession(s *domain.Session) domain.Session {
	out := *s
	out.History = make([]domain.ChatTurn, len(s.History))
	copy(out.History, s.History)
	return out
}
