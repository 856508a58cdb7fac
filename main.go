package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/roamkit/tripcore/internal/adapter/importer"
	"github.com/roamkit/tripcore/internal/adapter/llm"
	"github.com/roamkit/tripcore/internal/config"
	"github.com/roamkit/tripcore/internal/designer"
	"github.com/roamkit/tripcore/internal/policy"
	"github.com/roamkit/tripcore/internal/service"
	"github.com/roamkit/tripcore/internal/store"
	handler "github.com/roamkit/tripcore/internal/transport/http"
)

func main() {
	// Load configuration
	cfg := config.Load()

	log.Printf("Starting tripcore...")
	log.Printf("HTTP Port: %d", cfg.HTTPPort)
	log.Printf("Database: %s", cfg.DatabaseURL)
	log.Printf("Designer URL: %s", cfg.LLMURL)

	// Initialize store
	itins, err := store.NewSQLiteStore(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize store: %v", err)
	}
	defer itins.Close()

	// Initialize designer client factory and credential cache
	llmFactory := llm.NewClientFactory(cfg.LLMURL, cfg.LLMTimeout, cfg.LLMMaxRetries)
	cache := designer.NewCache(llmFactory, itins)

	// Initialize import client
	importClient := importer.NewClient(cfg.ImporterURL)

	// Initialize read policy engine
	ctx := context.Background()
	policyEngine, err := policy.NewEngine(ctx, policy.DefaultPolicy)
	if err != nil {
		log.Fatalf("Failed to initialize policy engine: %v", err)
	}

	// Initialize service
	svc := service.New(itins, cache, importClient, policyEngine, cfg)

	// Background sweep: bound session and designer-cache growth.
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-sweepDone:
				return
			case <-ticker.C:
				if n := cache.EvictIdleSessions(cfg.SessionMaxIdle); n > 0 {
					log.Printf("evicted %d idle sessions", n)
				}
				if n := cache.EvictIdle(cfg.DesignerMaxIdle); n > 0 {
					log.Printf("evicted %d idle designer instances", n)
				}
			}
		}
	}()

	// Create server
	e := handler.NewServer(svc)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.HTTPPort)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	log.Printf("API started on port %d", cfg.HTTPPort)

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down tripcore...")
	close(sweepDone)

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("Failed to shutdown server gracefully: %v", err)
	}

	log.Println("tripcore stopped")
}
