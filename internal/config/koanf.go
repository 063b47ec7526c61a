// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/captionmap/config.yaml",
	"/etc/captionmap/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute, // extraction of a long lecture is slow
			IdleTimeout:     2 * time.Minute,
			ShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:    16 << 20,
			Environment:     "development",
		},
		Storage: StorageConfig{
			Path:        "/data/captionmap",
			InMemory:    false,
			SyncWrites:  true,
			Compression: true,
			GCInterval:  10 * time.Minute,
			GCRatio:     0.5,
		},
		NLP: NLPConfig{
			Provider:                  "cloud",
			Timeout:                   30 * time.Second,
			RatePerSecond:             10,
			Burst:                     5,
			SalienceThreshold:         0.01,
			AcademicSalienceThreshold: 0.02,
			CategoryConfidence:        0.7,
			MinClassifyTokens:         20,
			AcademicCategories: []string{
				"/Science", "/Computers & Electronics", "/Reference",
				"/Jobs & Education", "/Health", "/Law & Government",
				"/Finance", "/Business & Industrial",
			},
			BreakerFailureRatio: 0.6,
			BreakerOpenTimeout:  2 * time.Minute,
		},
		Pipeline: PipelineConfig{
			Threshold:     20,
			Workers:       1,
			FailurePolicy: "skip",
		},
		Events: EventsConfig{
			NATSURL:              "",
			Embedded:             false,
			EmbeddedHost:         "127.0.0.1",
			EmbeddedPort:         4222,
			StoreDir:             "/data/captionmap/nats",
			JetStream:            false,
			StreamName:           "CAPTIONMAP",
			DurableName:          "captionmap",
			QueueGroup:           "captionmap",
			SubscribersCount:     2,
			BufferSize:           256,
			RetryMaxRetries:      3,
			RetryInitialInterval: 500 * time.Millisecond,
			RetryMaxInterval:     10 * time.Second,
			CloseTimeout:         30 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     10 * time.Minute,
		},
		Security: SecurityConfig{
			RateLimitReqs:      60,
			IndexRateLimitReqs: 10,
			RateLimitWindow:    time.Minute,
			RateLimitDisabled:  false,
			CORSOrigins:        []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// ConfigFilePath returns the config file Load reads, or "" when there is none.
func ConfigFilePath() string {
	return findConfigFile()
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
	"nlp.academic_categories",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_port":             "server.port",
	"http_host":             "server.host",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",
	"max_body_bytes":        "server.max_body_bytes",
	"environment":           "server.environment",

	// Storage
	"badger_path":        "storage.path",
	"badger_in_memory":   "storage.in_memory",
	"badger_sync_writes": "storage.sync_writes",
	"badger_compression": "storage.compression",
	"badger_gc_interval": "storage.gc_interval",
	"badger_gc_ratio":    "storage.gc_ratio",

	// NLP
	"nlp_provider":                    "nlp.provider",
	"google_application_credentials":  "nlp.credentials_file",
	"nlp_timeout":                     "nlp.timeout",
	"nlp_rate_per_second":             "nlp.rate_per_second",
	"nlp_burst":                       "nlp.burst",
	"nlp_salience_threshold":          "nlp.salience_threshold",
	"nlp_academic_salience_threshold": "nlp.academic_salience_threshold",
	"nlp_category_confidence":         "nlp.category_confidence",
	"nlp_min_classify_tokens":         "nlp.min_classify_tokens",
	"nlp_academic_categories":         "nlp.academic_categories",
	"nlp_breaker_failure_ratio":       "nlp.breaker_failure_ratio",
	"nlp_breaker_open_timeout":        "nlp.breaker_open_timeout",

	// Pipeline
	"pipeline_threshold":      "pipeline.threshold",
	"pipeline_workers":        "pipeline.workers",
	"pipeline_failure_policy": "pipeline.failure_policy",

	// Events
	"nats_url":                  "events.nats_url",
	"nats_jetstream":            "events.jetstream",
	"nats_embedded":             "events.embedded",
	"nats_embedded_host":        "events.embedded_host",
	"nats_embedded_port":        "events.embedded_port",
	"nats_store_dir":            "events.store_dir",
	"nats_stream_name":          "events.stream_name",
	"nats_durable_name":         "events.durable_name",
	"nats_queue_group":          "events.queue_group",
	"nats_subscribers":          "events.subscribers_count",
	"events_buffer_size":        "events.buffer_size",
	"events_retry_count":        "events.retry_max_retries",
	"events_retry_interval":     "events.retry_initial_interval",
	"events_retry_max_interval": "events.retry_max_interval",
	"events_close_timeout":      "events.close_timeout",

	// Cache
	"cache_enabled": "cache.enabled",
	"cache_ttl":     "cache.ttl",

	// Security
	"rate_limit_requests":       "security.rate_limit_reqs",
	"index_rate_limit_requests": "security.index_rate_limit_reqs",
	"rate_limit_window":         "security.rate_limit_window",
	"disable_rate_limit":        "security.rate_limit_disabled",
	"cors_origins":              "security.cors_origins",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unknown variables map to "" and are ignored, so the process environment
// cannot leak arbitrary keys into the config.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - BADGER_PATH -> storage.path
//   - NATS_URL -> events.nats_url
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// The caller is responsible for mutex protection when accessing
// configuration during reloads.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
