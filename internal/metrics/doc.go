// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

/*
Package metrics defines the Prometheus instrumentation for Captionmap.

All collectors are registered on the default registry through promauto and
exposed by the API at /metrics.

# Metric Families

  - api_*: request counts, latency and in-flight requests per route pattern
  - pipeline_*: indexing runs, windows processed and windows skipped after
    extraction failures
  - nlp_*: entity extraction calls and latency per provider
  - circuit_breaker_*: breaker state, outcomes and transitions
  - cache_*: result cache hits and misses
  - storage_*: document store operation latency and errors
  - events_*: messages published and consumed on the event bus

Helper functions (RecordAPIRequest, RecordPipelineRun, ...) keep label values
consistent across call sites.
*/
package metrics
