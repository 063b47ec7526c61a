// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, "HTTP_PORT"},
		{"port too high", func(c *Config) { c.Server.Port = 70000 }, "HTTP_PORT"},
		{"bad environment", func(c *Config) { c.Server.Environment = "staging" }, "ENVIRONMENT"},
		{"no storage path", func(c *Config) { c.Storage.Path = "" }, "BADGER_PATH"},
		{"in memory without path", func(c *Config) { c.Storage.Path = ""; c.Storage.InMemory = true }, ""},
		{"gc ratio", func(c *Config) { c.Storage.GCRatio = 1 }, "BADGER_GC_RATIO"},
		{"unknown provider", func(c *Config) { c.NLP.Provider = "spacy" }, "NLP_PROVIDER"},
		{"salience out of range", func(c *Config) { c.NLP.SalienceThreshold = 1.5 }, "NLP_SALIENCE_THRESHOLD"},
		{"mock ignores thresholds", func(c *Config) { c.NLP.Provider = "mock"; c.NLP.SalienceThreshold = 2 }, ""},
		{"zero burst", func(c *Config) { c.NLP.Burst = 0 }, "NLP_BURST"},
		{"threshold zero", func(c *Config) { c.Pipeline.Threshold = 0 }, "PIPELINE_THRESHOLD"},
		{"workers zero", func(c *Config) { c.Pipeline.Workers = 0 }, "PIPELINE_WORKERS"},
		{"bad policy", func(c *Config) { c.Pipeline.FailurePolicy = "retry" }, "PIPELINE_FAILURE_POLICY"},
		{"jetstream without url", func(c *Config) { c.Events.JetStream = true }, "NATS_JETSTREAM"},
		{"bad nats scheme", func(c *Config) { c.Events.NATSURL = "http://localhost:4222" }, "NATS_URL"},
		{"nats ok", func(c *Config) { c.Events.NATSURL = "nats://localhost:4222"; c.Events.JetStream = true }, ""},
		{"embedded", func(c *Config) { c.Events.Embedded = true; c.Events.JetStream = true }, ""},
		{"embedded with url", func(c *Config) { c.Events.Embedded = true; c.Events.NATSURL = "nats://localhost:4222" }, "NATS_EMBEDDED"},
		{"embedded port", func(c *Config) { c.Events.Embedded = true; c.Events.EmbeddedPort = 0 }, "NATS_EMBEDDED_PORT"},
		{"embedded without durable", func(c *Config) { c.Events.Embedded = true; c.Events.DurableName = "" }, "NATS_DURABLE_NAME"},
		{"embedded store dir", func(c *Config) { c.Events.Embedded = true; c.Events.StoreDir = "" }, "NATS_STORE_DIR"},
		{"cache ttl", func(c *Config) { c.Cache.TTL = 0 }, "CACHE_TTL"},
		{"cache disabled ttl ignored", func(c *Config) { c.Cache.Enabled = false; c.Cache.TTL = 0 }, ""},
		{"index limit above general", func(c *Config) { c.Security.IndexRateLimitReqs = 61 }, "INDEX_RATE_LIMIT_REQUESTS"},
		{"index limit off", func(c *Config) { c.Security.IndexRateLimitReqs = 0 }, ""},
		{"rate limit window", func(c *Config) { c.Security.RateLimitWindow = time.Millisecond }, "RATE_LIMIT_WINDOW"},
		{"rate limit disabled", func(c *Config) { c.Security.RateLimitDisabled = true; c.Security.RateLimitReqs = 0 }, ""},
		{"log level", func(c *Config) { c.Logging.Level = "verbose" }, "LOG_LEVEL"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "LOG_FORMAT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := defaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNATSServers(t *testing.T) {
	t.Parallel()

	for _, u := range []string{
		"nats://127.0.0.1:4222",
		"tls://nats.example.com",
		"wss://nats.example.com:443",
		"nats://a.example:4222, nats://b.example:4222",
	} {
		if err := validateNATSServers(u); err != nil {
			t.Errorf("validateNATSServers(%q) = %v", u, err)
		}
	}
	for _, u := range []string{"http://localhost", "nats://", "::bad", "nats://a.example:4222,", "nats://a.example,http://b.example"} {
		if err := validateNATSServers(u); err == nil {
			t.Errorf("validateNATSServers(%q) should fail", u)
		}
	}
}

func TestHasWildcardCORS(t *testing.T) {
	t.Parallel()

	cfg := defaultConfig()
	if !cfg.HasWildcardCORS() {
		t.Error("default origins should be the wildcard")
	}
	cfg.Security.CORSOrigins = []string{"https://a.example"}
	if cfg.HasWildcardCORS() {
		t.Error("explicit origins are not a wildcard")
	}
	if cfg.IsProduction() {
		t.Error("default environment is development")
	}
}
