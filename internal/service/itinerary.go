package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/roamkit/tripcore/internal/domain"
	"github.com/roamkit/tripcore/internal/policy"
	"github.com/roamkit/tripcore/internal/store"
)

// ListItineraries returns the caller's itineraries plus diagnostics for any
// stored record that was excluded.
func (s *Service) ListItineraries(ctx context.Context, identity string) (*store.ListResult, error) {
	result, err := s.itins.ListByOwner(ctx, identity)
	if err != nil {
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	return result, nil
}

// GetItinerary fetches one record. A record the read policy hides from the
// caller is indistinguishable from one that does not exist.
func (s *Service) GetItinerary(ctx context.Context, identity, id string) (*domain.Itinerary, error) {
	it, err := s.itins.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	allow, err := s.policyEngine.AllowRead(ctx, policy.ReadInput{
		Caller:      strings.ToLower(identity),
		Owner:       it.CreatedBy,
		SharedReads: s.config.AllowSharedReads,
	})
	if err != nil {
		return nil, fmt.Errorf("read policy evaluation failed: %w", err)
	}
	if !allow {
		return nil, domain.ErrRecordNotFound
	}
	return it, nil
}

// SaveItinerary creates or replaces a record. Ownership is stamped from the
// caller identity; a client-supplied created_by is discarded, and a caller
// cannot replace a record owned by someone else.
func (s *Service) SaveItinerary(ctx context.Context, identity string, it *domain.Itinerary) (*domain.Itinerary, error) {
	if it.ID == "" {
		it.ID = uuid.NewString()
	}
	it.CreatedBy = strings.ToLower(identity)

	existing, err := s.itins.Get(ctx, it.ID)
	if err != nil && !errors.Is(err, domain.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.CreatedBy != it.CreatedBy {
		return nil, domain.ErrRecordNotFound
	}

	if err := s.itins.Put(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}
