// Package config provides configuration for tripcore.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the tripcore server configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Upstream designer service
	LLMURL        string
	LLMTimeout    time.Duration
	LLMMaxRetries int

	// PDF import collaborator
	ImporterURL string

	// Eviction
	SessionMaxIdle  time.Duration
	DesignerMaxIdle time.Duration
	SweepInterval   time.Duration

	// Policy
	AllowSharedReads bool

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:         getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:      getEnv("DATABASE_URL", "file:tripcore.db?cache=shared&mode=rwc"),
		LLMURL:           getEnv("LLM_URL", "http://localhost:9090"),
		LLMTimeout:       time.Duration(getEnvInt("LLM_TIMEOUT_MS", 120000)) * time.Millisecond,
		LLMMaxRetries:    getEnvInt("LLM_MAX_RETRIES", 2),
		ImporterURL:      getEnv("IMPORTER_URL", "http://localhost:9091"),
		SessionMaxIdle:   time.Duration(getEnvInt("SESSION_MAX_IDLE_MS", 1800000)) * time.Millisecond,
		DesignerMaxIdle:  time.Duration(getEnvInt("DESIGNER_MAX_IDLE_MS", 86400000)) * time.Millisecond,
		SweepInterval:    time.Duration(getEnvInt("SWEEP_INTERVAL_MS", 60000)) * time.Millisecond,
		AllowSharedReads: getEnvBool("ALLOW_SHARED_READS", false),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}
