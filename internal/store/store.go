// Package store persists itinerary records, one JSON document per id,
// scoped by owning identity.
package store

import (
	"context"
	"sync/atomic"

	"github.com/roamkit/tripcore/internal/domain"
)

// SkipReason classifies why a stored record was excluded from a listing.
type SkipReason string

const (
	SkipReasonCorrupt SkipReason = "corrupt"
	SkipReasonInvalid SkipReason = "invalid"
)

// SkipDiagnostic reports one record excluded from a listing. Listings
// return these alongside the value set so exclusions are never silent.
type SkipDiagnostic struct {
	ItineraryID string     `json:"itinerary_id"`
	Reason      SkipReason `json:"reason"`
	Detail      string     `json:"detail"`
}

// ListResult is the two-channel result of a listing: the valid records plus
// a parallel diagnostics set for everything excluded.
type ListResult struct {
	Itineraries []domain.Itinerary `json:"itineraries"`
	Skipped     []SkipDiagnostic   `json:"skipped,omitempty"`
}

// Store is the persistence interface for itineraries.
type Store interface {
	// Put validates the record and atomically replaces any previous
	// version. On validation failure nothing is written and the error
	// carries the full violation list.
	Put(ctx context.Context, it *domain.Itinerary) error

	// Get returns the record or domain.ErrRecordNotFound.
	Get(ctx context.Context, id string) (*domain.Itinerary, error)

	// ListByOwner returns all valid records owned by identity
	// (case-insensitive) plus diagnostics for any excluded record.
	ListByOwner(ctx context.Context, identity string) (*ListResult, error)

	// Stats returns the observable exclusion counters.
	Stats() StatsSnapshot

	Close() error
}

// StatsSnapshot is a point-in-time copy of the store counters.
type StatsSnapshot struct {
	CorruptRecords int64 `json:"corrupt_records"`
	InvalidRecords int64 `json:"invalid_records"`
}

type stats struct {
	corrupt atomic.Int64
	invalid atomic.Int64
}

func (s *stats) snapshot() StatsSnapshot {
	return StatsSnapshot{
		CorruptRecords: s.corrupt.Load(),
		InvalidRecords: s.invalid.Load(),
	}
}
