// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}

	if err := c.validateStorage(); err != nil {
		return err
	}

	if err := c.validateNLP(); err != nil {
		return err
	}

	if err := c.validatePipeline(); err != nil {
		return err
	}

	if err := c.validateEvents(); err != nil {
		return err
	}

	if err := c.validateCache(); err != nil {
		return err
	}

	if err := c.validateRateLimits(); err != nil {
		return err
	}

	return c.validateLogging()
}

// validateServer validates server configuration
func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.MaxBodyBytes < 1 {
		return fmt.Errorf("MAX_BODY_BYTES must be positive")
	}
	if c.Server.Environment != "development" && c.Server.Environment != "production" {
		return fmt.Errorf("ENVIRONMENT must be one of: development, production")
	}
	return nil
}

func (c *Config) validateStorage() error {
	if !c.Storage.InMemory && c.Storage.Path == "" {
		return fmt.Errorf("BADGER_PATH is required unless BADGER_IN_MEMORY is set")
	}
	if c.Storage.GCRatio <= 0 || c.Storage.GCRatio >= 1 {
		return fmt.Errorf("BADGER_GC_RATIO must be between 0 and 1 (exclusive)")
	}
	if c.Storage.GCInterval < 0 {
		return fmt.Errorf("BADGER_GC_INTERVAL must not be negative")
	}
	return nil
}

// validNLPProviders defines the allowed extractor backends
var validNLPProviders = map[string]bool{
	"cloud": true,
	"mock":  true,
}

// validateNLP validates extractor configuration. Thresholds are only checked
// for the cloud provider since the mock ignores them.
func (c *Config) validateNLP() error {
	if !validNLPProviders[c.NLP.Provider] {
		return fmt.Errorf("NLP_PROVIDER must be one of: cloud, mock")
	}
	if c.NLP.Provider != "cloud" {
		return nil
	}

	if c.NLP.Timeout <= 0 {
		return fmt.Errorf("NLP_TIMEOUT must be positive")
	}
	if c.NLP.RatePerSecond < 0 {
		return fmt.Errorf("NLP_RATE_PER_SECOND must not be negative")
	}
	if c.NLP.RatePerSecond > 0 && c.NLP.Burst < 1 {
		return fmt.Errorf("NLP_BURST must be at least 1 when rate limiting is enabled")
	}
	for name, v := range map[string]float64{
		"NLP_SALIENCE_THRESHOLD":          c.NLP.SalienceThreshold,
		"NLP_ACADEMIC_SALIENCE_THRESHOLD": c.NLP.AcademicSalienceThreshold,
		"NLP_CATEGORY_CONFIDENCE":         c.NLP.CategoryConfidence,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be between 0 and 1", name)
		}
	}
	if c.NLP.BreakerFailureRatio <= 0 || c.NLP.BreakerFailureRatio > 1 {
		return fmt.Errorf("NLP_BREAKER_FAILURE_RATIO must be in (0, 1]")
	}
	if c.NLP.MinClassifyTokens < 0 {
		return fmt.Errorf("NLP_MIN_CLASSIFY_TOKENS must not be negative")
	}
	return nil
}

// Pipeline limits
const (
	minThreshold = 1
	maxThreshold = 3600 // one window per hour is the coarsest useful index
	maxWorkers   = 64
)

func (c *Config) validatePipeline() error {
	if c.Pipeline.Threshold < minThreshold || c.Pipeline.Threshold > maxThreshold {
		return fmt.Errorf("PIPELINE_THRESHOLD must be between %d and %d", minThreshold, maxThreshold)
	}
	if c.Pipeline.Workers < 1 || c.Pipeline.Workers > maxWorkers {
		return fmt.Errorf("PIPELINE_WORKERS must be between 1 and %d", maxWorkers)
	}
	if c.Pipeline.FailurePolicy != "skip" && c.Pipeline.FailurePolicy != "abort" {
		return fmt.Errorf("PIPELINE_FAILURE_POLICY must be one of: skip, abort")
	}
	return nil
}

// validateEvents validates the event transport (only checks NATS settings if a URL is set or NATS is embedded)
func (c *Config) validateEvents() error {
	if c.Events.BufferSize < 1 {
		return fmt.Errorf("EVENTS_BUFFER_SIZE must be at least 1")
	}
	if c.Events.RetryMaxRetries < 0 {
		return fmt.Errorf("EVENTS_RETRY_COUNT must not be negative")
	}
	jetStream := c.Events.JetStream
	switch {
	case c.Events.Embedded:
		if c.Events.NATSURL != "" {
			return fmt.Errorf("NATS_EMBEDDED and NATS_URL are mutually exclusive")
		}
		if c.Events.EmbeddedPort < 1 || c.Events.EmbeddedPort > 65535 {
			return fmt.Errorf("NATS_EMBEDDED_PORT must be between 1 and 65535")
		}
		if c.Events.StoreDir == "" {
			return fmt.Errorf("NATS_STORE_DIR is required with NATS_EMBEDDED")
		}
		// The embedded server always runs JetStream.
		jetStream = true
	case c.Events.NATSURL == "":
		if jetStream {
			return fmt.Errorf("NATS_JETSTREAM requires NATS_URL")
		}
		return nil
	default:
		if err := validateNATSServers(c.Events.NATSURL); err != nil {
			return fmt.Errorf("NATS_URL is invalid: %w", err)
		}
	}

	if c.Events.SubscribersCount < 1 {
		return fmt.Errorf("NATS_SUBSCRIBERS must be at least 1")
	}
	if jetStream && (c.Events.StreamName == "" || c.Events.DurableName == "") {
		return fmt.Errorf("NATS_STREAM_NAME and NATS_DURABLE_NAME are required with JetStream")
	}
	return nil
}

var natsSchemes = map[string]bool{"nats": true, "tls": true, "ws": true, "wss": true}

// validateNATSServers checks a NATS_URL, which like nats.Connect may list
// several servers separated by commas.
func validateNATSServers(raw string) error {
	for _, server := range strings.Split(raw, ",") {
		server = strings.TrimSpace(server)
		u, err := url.Parse(server)
		switch {
		case server == "":
			return fmt.Errorf("empty server in list %q", raw)
		case err != nil:
			return fmt.Errorf("parse %q: %w", server, err)
		case !natsSchemes[u.Scheme]:
			return fmt.Errorf("%q: scheme must be nats, tls, ws or wss", server)
		case u.Host == "":
			return fmt.Errorf("%q: host is required, e.g. nats://localhost:4222", server)
		}
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive when the cache is enabled")
	}
	return nil
}

// Rate limit constants
const (
	minRateLimitRequests = 1           // Minimum 1 request allowed
	maxRateLimitRequests = 100000      // Maximum 100K requests per window
	minRateLimitWindow   = time.Second // Minimum 1 second window
	maxRateLimitWindow   = time.Hour   // Maximum 1 hour window
)

// validateRateLimits validates rate limiting configuration bounds.
func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}

	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.IndexRateLimitReqs < 0 || c.Security.IndexRateLimitReqs > c.Security.RateLimitReqs {
		return fmt.Errorf("INDEX_RATE_LIMIT_REQUESTS must be between 0 and RATE_LIMIT_REQUESTS (%d)", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// HasWildcardCORS checks if CORS is configured with wildcard origins.
// The server logs a warning for it in production.
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}

// validateLogging validates logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}
