// Package designer implements the per-credential trip designer service:
// a cache of orchestrator instances keyed by upstream credential, each
// owning its own session registry.
package designer

import (
	"crypto/sha256"
	"encoding/hex"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/roamkit/tripcore/internal/adapter/llm"
	"github.com/roamkit/tripcore/internal/session"
	"github.com/roamkit/tripcore/internal/store"
)

// Cache maps an upstream credential to a singleton Orchestrator. All
// callers presenting the same credential observe the same instance, and
// therefore the same session registry; anything else reintroduces the
// spurious session-not-found failure this cache exists to prevent.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	evicted atomic.Int64

	factory llm.Factory
	itins   store.Store

	now func() time.Time
}

type cacheEntry struct {
	orch     *Orchestrator
	lastUsed time.Time
}

// NewCache creates an empty credential cache.
func NewCache(factory llm.Factory, itins store.Store) *Cache {
	return &Cache{
		entries: make(map[string]*cacheEntry),
		factory: factory,
		itins:   itins,
		now:     time.Now,
	}
}

// GetOrCreate returns the orchestrator for credential, constructing it on
// first use. Check-then-insert runs under one lock, so concurrent first
// callers converge on a single stored instance.
func (c *Cache) GetOrCreate(credential string) *Orchestrator {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[credential]; ok {
		e.lastUsed = c.now()
		return e.orch
	}

	orch := NewOrchestrator(session.NewRegistry(), c.itins, c.factory.ForCredential(credential))
	c.entries[credential] = &cacheEntry{orch: orch, lastUsed: c.now()}
	log.Printf("designer instance created for credential %s", CredentialHash(credential))
	return orch
}

// EvictIdle removes entries unused for longer than maxIdle, discarding
// their session registries, and returns how many were removed.
func (c *Cache) EvictIdle(maxIdle time.Duration) int {
	cutoff := c.now().Add(-maxIdle)
	removed := 0

	c.mu.Lock()
	for credential, e := range c.entries {
		if e.lastUsed.Before(cutoff) {
			delete(c.entries, credential)
			removed++
			log.Printf("designer instance evicted for credential %s (%d sessions dropped)",
				CredentialHash(credential), e.orch.Sessions().Len())
		}
	}
	c.mu.Unlock()

	if removed > 0 {
		c.evicted.Add(int64(removed))
	}
	return removed
}

// EvictIdleSessions sweeps every cached instance's registry and returns
// the total number of sessions removed.
func (c *Cache) EvictIdleSessions(maxIdle time.Duration) int {
	total := 0
	for _, orch := range c.instances() {
		total += orch.Sessions().EvictIdle(maxIdle)
	}
	return total
}

// SessionCount returns the number of live sessions across all instances.
func (c *Cache) SessionCount() int {
	total := 0
	for _, orch := range c.instances() {
		total += orch.Sessions().Len()
	}
	return total
}

// SessionsEvicted returns total session evictions across all instances.
// Entries already evicted from the cache no longer contribute.
func (c *Cache) SessionsEvicted() int64 {
	var total int64
	for _, orch := range c.instances() {
		total += orch.Sessions().Evicted()
	}
	return total
}

// instances snapshots the cached orchestrators without holding the cache
// lock during per-registry work.
func (c *Cache) instances() []*Orchestrator {
	c.mu.Lock()
	out := make([]*Orchestrator, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e.orch)
	}
	c.mu.Unlock()
	return out
}

// Len returns the number of cached instances.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Evicted returns the total eviction count.
func (c *Cache) Evicted() int64 {
	return c.evicted.Load()
}

// CredentialHash returns a short digest of a credential, safe for logs.
// Raw credentials must never be logged.
func CredentialHash(credential string) string {
	sum := sha256.Sum256([]byte(credential))
	return hex.EncodeToString(sum[:])[:8]
}
