// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml) for persistent settings
//  3. Environment Variables: Override any setting via environment variables
//
// Example:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    logging.Fatal().Err(err).Msg("Failed to load config")
//	}
//	db, err := storage.Open(storage.Config{Path: cfg.Storage.Path})
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Storage  StorageConfig  `koanf:"storage"`
	NLP      NLPConfig      `koanf:"nlp"`
	Pipeline PipelineConfig `koanf:"pipeline"`
	Events   EventsConfig   `koanf:"events"`
	Cache    CacheConfig    `koanf:"cache"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            int           `koanf:"port"`
	Host            string        `koanf:"host"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// MaxBodyBytes caps caption submissions. Lecture transcripts run to a few MB.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// Environment is "development" or "production".
	Environment string `koanf:"environment"`
}

// Addr returns host:port for http.Server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig holds BadgerDB settings.
//
// Environment Variables:
//   - BADGER_PATH: data directory (default: /data/captionmap)
//   - BADGER_IN_MEMORY: keep everything in RAM, nothing survives a restart
//   - BADGER_SYNC_WRITES: fsync every write (default: true)
//   - BADGER_GC_INTERVAL: pause between value log GC runs (default: 10m)
type StorageConfig struct {
	Path        string        `koanf:"path"`
	InMemory    bool          `koanf:"in_memory"`
	SyncWrites  bool          `koanf:"sync_writes"`
	Compression bool          `koanf:"compression"`
	GCInterval  time.Duration `koanf:"gc_interval"`
	GCRatio     float64       `koanf:"gc_ratio"`
}

// NLPConfig selects and tunes the entity extractor.
//
// Environment Variables:
//   - NLP_PROVIDER: cloud or mock (default: cloud)
//   - GOOGLE_APPLICATION_CREDENTIALS: service account file for the cloud provider
//   - NLP_TIMEOUT: per-call timeout (default: 30s)
//   - NLP_RATE_PER_SECOND / NLP_BURST: client-side rate limit
type NLPConfig struct {
	Provider        string        `koanf:"provider"`
	CredentialsFile string        `koanf:"credentials_file"`
	Timeout         time.Duration `koanf:"timeout"`
	RatePerSecond   float64       `koanf:"rate_per_second"`
	Burst           int           `koanf:"burst"`

	SalienceThreshold         float64  `koanf:"salience_threshold"`
	AcademicSalienceThreshold float64  `koanf:"academic_salience_threshold"`
	CategoryConfidence        float64  `koanf:"category_confidence"`
	MinClassifyTokens         int      `koanf:"min_classify_tokens"`
	AcademicCategories        []string `koanf:"academic_categories"`

	BreakerFailureRatio float64       `koanf:"breaker_failure_ratio"`
	BreakerOpenTimeout  time.Duration `koanf:"breaker_open_timeout"`
}

// PipelineConfig holds segmentation and extraction settings.
type PipelineConfig struct {
	// Threshold is the window length in seconds.
	Threshold int64 `koanf:"threshold"`

	// Workers bounds concurrent extractor calls per submission.
	Workers int `koanf:"workers"`

	// FailurePolicy is "skip" or "abort".
	FailurePolicy string `koanf:"failure_policy"`
}

// EventsConfig holds the Watermill transport settings. An empty NATSURL keeps
// events in-process unless Embedded starts a NATS server inside the process.
//
// Environment Variables:
//   - NATS_URL: external NATS server
//   - NATS_EMBEDDED: run NATS with JetStream in-process (default: false)
//   - NATS_EMBEDDED_PORT / NATS_STORE_DIR: embedded listener and JetStream storage
type EventsConfig struct {
	NATSURL          string `koanf:"nats_url"`
	Embedded         bool   `koanf:"embedded"`
	EmbeddedHost     string `koanf:"embedded_host"`
	EmbeddedPort     int    `koanf:"embedded_port"`
	StoreDir         string `koanf:"store_dir"`
	JetStream        bool   `koanf:"jetstream"`
	StreamName       string `koanf:"stream_name"`
	DurableName      string `koanf:"durable_name"`
	QueueGroup       string `koanf:"queue_group"`
	SubscribersCount int    `koanf:"subscribers_count"`
	BufferSize       int64  `koanf:"buffer_size"`

	RetryMaxRetries      int           `koanf:"retry_max_retries"`
	RetryInitialInterval time.Duration `koanf:"retry_initial_interval"`
	RetryMaxInterval     time.Duration `koanf:"retry_max_interval"`
	CloseTimeout         time.Duration `koanf:"close_timeout"`
}

// CacheConfig holds the pipeline result cache settings.
type CacheConfig struct {
	Enabled bool          `koanf:"enabled"`
	TTL     time.Duration `koanf:"ttl"`
}

// SecurityConfig holds rate limiting and CORS settings.
//
// Environment Variables:
//   - RATE_LIMIT_REQUESTS: requests per client per window on every API route (default: 60)
//   - INDEX_RATE_LIMIT_REQUESTS: caption submissions per client per window, 0 disables (default: 10)
//   - RATE_LIMIT_WINDOW: limiter window (default: 1m)
//   - DISABLE_RATE_LIMIT: turn both limiters off
//   - CORS_ORIGINS: comma separated allowed origins (default: *)
type SecurityConfig struct {
	RateLimitReqs      int           `koanf:"rate_limit_reqs"`
	IndexRateLimitReqs int           `koanf:"index_rate_limit_reqs"`
	RateLimitWindow    time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled  bool          `koanf:"rate_limit_disabled"`
	CORSOrigins        []string      `koanf:"cors_origins"`
}

// LoggingConfig holds logging configuration.
//
// Environment Variables:
//   - LOG_LEVEL: trace, debug, info, warn, error (default: info)
//   - LOG_FORMAT: json, console (default: json)
//   - LOG_CALLER: true/false - include caller file:line (default: false)
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// Load reads configuration from defaults, the config file and the environment.
// See LoadWithKoanf for the layering.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
