package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roamkit/tripcore/internal/domain"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testItinerary(id, owner string) *domain.Itinerary {
	return &domain.Itinerary{
		ID:        id,
		Title:     "Trip " + id,
		StartDate: "2025-01-01",
		EndDate:   "2025-01-07",
		CreatedBy: owner,
		Segments: []domain.Segment{
			{
				ID:            "seg_1",
				Type:          domain.SegmentTypeTransfer,
				Status:        domain.SegmentStatusConfirmed,
				StartDatetime: time.Date(2021, 4, 8, 23, 45, 0, 0, time.UTC),
				EndDatetime:   time.Date(2021, 4, 9, 0, 29, 0, 0, time.UTC),
			},
		},
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	it := testItinerary("itin_1", "alice@example.com")
	require.NoError(t, s.Put(ctx, it))

	got, err := s.Get(ctx, "itin_1")
	require.NoError(t, err)
	assert.Equal(t, it, got)
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "itin_missing")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestPutRejectsInvalidWithoutWriting(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	it := testItinerary("itin_1", "alice@example.com")
	require.NoError(t, s.Put(ctx, it))

	bad := testItinerary("itin_1", "alice@example.com")
	bad.Title = "changed"
	bad.Segments[0].EndDatetime = bad.Segments[0].StartDatetime.Add(-time.Hour)

	err := s.Put(ctx, bad)
	verr, ok := domain.AsValidationError(err)
	require.True(t, ok, "expected validation error, got %v", err)
	assert.NotEmpty(t, verr.Violations)

	// Rejected write left the previous version intact.
	got, err := s.Get(ctx, "itin_1")
	require.NoError(t, err)
	assert.Equal(t, "Trip itin_1", got.Title)
}

func TestPutReplacesWholeRecord(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	it := testItinerary("itin_1", "alice@example.com")
	require.NoError(t, s.Put(ctx, it))

	updated := testItinerary("itin_1", "alice@example.com")
	updated.Title = "Renamed"
	updated.Segments = nil
	require.NoError(t, s.Put(ctx, updated))

	got, err := s.Get(ctx, "itin_1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Title)
	assert.Empty(t, got.Segments)
}

func TestListByOwnerScoping(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Put(ctx, testItinerary("itin_a1", "alice@example.com")))
	require.NoError(t, s.Put(ctx, testItinerary("itin_a2", "Alice@Example.com")))
	require.NoError(t, s.Put(ctx, testItinerary("itin_b1", "bob@example.com")))

	aliceRes, err := s.ListByOwner(ctx, "ALICE@example.com")
	require.NoError(t, err)
	bobRes, err := s.ListByOwner(ctx, "bob@example.com")
	require.NoError(t, err)

	aliceIDs := ids(aliceRes.Itineraries)
	bobIDs := ids(bobRes.Itineraries)
	assert.ElementsMatch(t, []string{"itin_a1", "itin_a2"}, aliceIDs)
	assert.ElementsMatch(t, []string{"itin_b1"}, bobIDs)
	for _, id := range aliceIDs {
		assert.NotContains(t, bobIDs, id)
	}
}

func TestListByOwnerStableOrder(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Put(ctx, testItinerary("itin_2", "alice@example.com")))
	require.NoError(t, s.Put(ctx, testItinerary("itin_1", "alice@example.com")))

	first, err := s.ListByOwner(ctx, "alice@example.com")
	require.NoError(t, err)
	second, err := s.ListByOwner(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, ids(first.Itineraries), ids(second.Itineraries))
}

func TestListByOwnerReportsCorruptAndInvalid(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for i := 0; i < 18; i++ {
		require.NoError(t, s.Put(ctx, testItinerary(fmt.Sprintf("itin_%02d", i), "bob@x.com")))
	}
	// A document that does not parse at all: corruption, not validation.
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO itineraries (itinerary_id, created_by, doc) VALUES (?, ?, ?)`,
		"itin_corrupt", "bob@x.com", `{"id": "itin_corrupt", "title":`)
	require.NoError(t, err)

	res, err := s.ListByOwner(ctx, "bob@x.com")
	require.NoError(t, err)

	assert.Len(t, res.Itineraries, 18)
	require.Len(t, res.Skipped, 1)
	assert.Equal(t, "itin_corrupt", res.Skipped[0].ItineraryID)
	assert.Equal(t, SkipReasonCorrupt, res.Skipped[0].Reason)
	assert.Equal(t, int64(1), s.Stats().CorruptRecords)
	assert.Equal(t, int64(0), s.Stats().InvalidRecords)

	// A record that parses but fails validation is classified separately.
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO itineraries (itinerary_id, created_by, doc) VALUES (?, ?, ?)`,
		"itin_invalid", "bob@x.com", `{"id": "itin_invalid", "created_by": "bob@x.com"}`)
	require.NoError(t, err)

	res, err = s.ListByOwner(ctx, "bob@x.com")
	require.NoError(t, err)
	assert.Len(t, res.Itineraries, 18)
	assert.Len(t, res.Skipped, 2)
	assert.Equal(t, int64(1), s.Stats().InvalidRecords)
}

func TestGetCorruptRecordNotServed(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO itineraries (itinerary_id, created_by, doc) VALUES (?, ?, ?)`,
		"itin_corrupt", "bob@x.com", `not json`)
	require.NoError(t, err)

	_, err = s.Get(ctx, "itin_corrupt")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	assert.Equal(t, int64(1), s.Stats().CorruptRecords)
}

func TestPutNormalizesOwner(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	it := testItinerary("itin_1", "Carol@Example.COM")
	require.NoError(t, s.Put(ctx, it))

	got, err := s.Get(ctx, "itin_1")
	require.NoError(t, err)
	assert.Equal(t, "carol@example.com", got.CreatedBy)
}

func ids(items []domain.Itinerary) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.ID
	}
	return out
}
