// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package nlp

import (
	"context"
	"strings"
)

// MockExtractor treats every comma-separated part of the text as an entity.
// Parts are trimmed, empty parts are dropped and duplicates are removed.
type MockExtractor struct{}

// NewMockExtractor returns a MockExtractor.
func NewMockExtractor() MockExtractor {
	return MockExtractor{}
}

// Entities implements EntityExtractor. It never fails.
func (MockExtractor) Entities(_ context.Context, text string) ([]string, error) {
	parts := strings.Split(text, ",")
	entities := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			entities = append(entities, p)
		}
	}
	return dedupe(entities), nil
}
