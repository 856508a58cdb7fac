// Package service wires the tripcore components behind one request-facing
// facade. All state lives in the injected collaborators, constructed once
// at process start; there is no package-level mutable state.
package service

import (
	"github.com/roamkit/tripcore/internal/adapter/importer"
	"github.com/roamkit/tripcore/internal/config"
	"github.com/roamkit/tripcore/internal/designer"
	"github.com/roamkit/tripcore/internal/policy"
	"github.com/roamkit/tripcore/internal/store"
)

type Service struct {
	itins        store.Store
	cache        *designer.Cache
	importClient *importer.Client
	policyEngine *policy.Engine
	config       *config.Config
}

func New(itins store.Store, cache *designer.Cache, importClient *importer.Client, policyEngine *policy.Engine, cfg *config.Config) *Service {
	return &Service{
		itins:        itins,
		cache:        cache,
		importClient: importClient,
		policyEngine: policyEngine,
		config:       cfg,
	}
}

// Stats aggregates the observable counters for the health endpoint.
type Stats struct {
	Store           store.StatsSnapshot `json:"store"`
	DesignerEntries int                 `json:"designer_entries"`
	DesignerEvicted int64               `json:"designer_evicted"`
	SessionsLive    int                 `json:"sessions_live"`
	SessionsEvicted int64               `json:"sessions_evicted"`
}

func (s *Service) Stats() Stats {
	return Stats{
		Store:           s.itins.Stats(),
		DesignerEntries: s.cache.Len(),
		DesignerEvicted: s.cache.Evicted(),
		SessionsLive:    s.cache.SessionCount(),
		SessionsEvicted: s.cache.SessionsEvicted(),
	}
}
