// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package nlp

import (
	"context"
	"errors"
)

// Provider names used in configuration and metrics.
const (
	ProviderCloud = "cloud"
	ProviderMock  = "mock"
)

var (
	// ErrExtractionFailed wraps failures of the underlying NLP service.
	ErrExtractionFailed = errors.New("entity extraction failed")

	// ErrCircuitOpen is returned while the circuit breaker rejects calls.
	ErrCircuitOpen = errors.New("entity extraction circuit open")
)

// EntityExtractor returns the salient entities found in text.
type EntityExtractor interface {
	Entities(ctx context.Context, text string) ([]string, error)
}

// ExtractorFunc adapts a function to EntityExtractor.
type ExtractorFunc func(ctx context.Context, text string) ([]string, error)

// Entities calls f.
func (f ExtractorFunc) Entities(ctx context.Context, text string) ([]string, error) {
	return f(ctx, text)
}

// dedupe keeps the first occurrence of each string.
func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
