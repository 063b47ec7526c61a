// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

/*
Package nlp provides the entity extraction capability used by the indexing
pipeline.

# Implementations

  - CloudExtractor calls the Google Cloud Natural Language API. Entities below
    a salience threshold are dropped. The threshold is raised for text that
    classifies into an academic category.
  - MockExtractor splits text on commas. It is deterministic and needs no
    network, so tests and local development use it.
  - ResilientExtractor wraps either one with a per-call timeout, a token
    bucket rate limiter and a circuit breaker.

Callers depend on the EntityExtractor interface only. The returned order and
uniqueness of entities is not part of the contract.
*/
package nlp
