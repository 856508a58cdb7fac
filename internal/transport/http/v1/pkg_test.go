package v1

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roamkit/tripcore/internal/adapter/importer"
	"github.com/roamkit/tripcore/internal/adapter/llm"
	"github.com/roamkit/tripcore/internal/config"
	"github.com/roamkit/tripcore/internal/designer"
	"github.com/roamkit/tripcore/internal/domain"
	"github.com/roamkit/tripcore/internal/policy"
	"github.com/roamkit/tripcore/internal/service"
	"github.com/roamkit/tripcore/internal/store"
)

// mockFactory hands out the mock designer client for every credential.
type mockFactory struct{}

func (mockFactory) ForCredential(string) llm.LLMClient { return llm.NewMockClient() }

func testConfig() *config.Config {
	return &config.Config{
		SessionMaxIdle:  30 * time.Minute,
		DesignerMaxIdle: 24 * time.Hour,
	}
}

func newTestHandler(t *testing.T) (*Handler, store.Store) {
	return newTestHandlerWithImporter(t, "http://importer.invalid")
}

func newTestHandlerWithImporter(t *testing.T, importerURL string) (*Handler, store.Store) {
	t.Helper()

	itins, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { itins.Close() })

	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	require.NoError(t, err)

	cache := designer.NewCache(mockFactory{}, itins)
	svc := service.New(itins, cache, importer.NewClient(importerURL), policyEngine, testConfig())
	return NewHandler(svc), itins
}

func seedItinerary(t *testing.T, s store.Store, id, owner string) *domain.Itinerary {
	t.Helper()
	it := &domain.Itinerary{
		ID:        id,
		Title:     "Trip " + id,
		StartDate: "2025-01-01",
		EndDate:   "2025-01-07",
		CreatedBy: owner,
		Segments: []domain.Segment{{
			ID:            "seg_1",
			Type:          domain.SegmentTypeHotel,
			Status:        domain.SegmentStatusConfirmed,
			StartDatetime: time.Date(2025, 1, 1, 15, 0, 0, 0, time.UTC),
			EndDatetime:   time.Date(2025, 1, 7, 11, 0, 0, 0, time.UTC),
		}},
	}
	require.NoError(t, s.Put(context.Background(), it))
	return it
}
