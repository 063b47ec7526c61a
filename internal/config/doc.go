// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

/*
Package config provides centralized configuration management for Captionmap.

Configuration is layered with Koanf v2:

 1. Built-in defaults (defaultConfig)
 2. An optional YAML file: $CONFIG_PATH, ./config.yaml or /etc/captionmap/config.yaml
 3. Environment variables, which override everything else

Only environment variables listed in the mapping table are read; the rest of
the process environment is ignored.

# Environment Variables

HTTP Server (ServerConfig):
  - HTTP_PORT: Listen port (default: 8080)
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - MAX_BODY_BYTES: Largest accepted request body (default: 16MB)
  - ENVIRONMENT: development or production

Document Store (StorageConfig):
  - BADGER_PATH: Data directory (default: /data/captionmap)
  - BADGER_IN_MEMORY, BADGER_SYNC_WRITES, BADGER_COMPRESSION
  - BADGER_GC_INTERVAL, BADGER_GC_RATIO: Value log garbage collection

Entity Extraction (NLPConfig):
  - NLP_PROVIDER: cloud or mock (default: cloud)
  - GOOGLE_APPLICATION_CREDENTIALS: Service account JSON for the cloud provider
  - NLP_TIMEOUT, NLP_RATE_PER_SECOND, NLP_BURST
  - NLP_SALIENCE_THRESHOLD, NLP_ACADEMIC_SALIENCE_THRESHOLD, NLP_CATEGORY_CONFIDENCE
  - NLP_MIN_CLASSIFY_TOKENS, NLP_ACADEMIC_CATEGORIES (comma-separated)
  - NLP_BREAKER_FAILURE_RATIO, NLP_BREAKER_OPEN_TIMEOUT

Pipeline (PipelineConfig):
  - PIPELINE_THRESHOLD: Window length in seconds (default: 20)
  - PIPELINE_WORKERS: Concurrent extractor calls (default: 1)
  - PIPELINE_FAILURE_POLICY: skip or abort (default: skip)

Events (EventsConfig):
  - NATS_URL: Empty keeps events in-process
  - NATS_EMBEDDED: Run nats-server with JetStream inside the process (excludes NATS_URL)
  - NATS_EMBEDDED_HOST, NATS_EMBEDDED_PORT, NATS_STORE_DIR: Embedded listener and stream storage
  - NATS_JETSTREAM, NATS_STREAM_NAME, NATS_DURABLE_NAME, NATS_QUEUE_GROUP, NATS_SUBSCRIBERS
  - EVENTS_BUFFER_SIZE, EVENTS_RETRY_COUNT, EVENTS_RETRY_INTERVAL, EVENTS_CLOSE_TIMEOUT

Cache and Security:
  - CACHE_ENABLED, CACHE_TTL: Pipeline result cache
  - RATE_LIMIT_REQUESTS, INDEX_RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)

Logging (LoggingConfig):
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include file:line (default: false)

# Usage

	cfg, err := config.Load()
	if err != nil {
	    logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

# Hot Reload

WatchConfigFile registers a callback fired when the YAML file changes. The
server uses it to adjust the log level without a restart.
*/
package config
