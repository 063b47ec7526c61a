// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package models

import (
	"fmt"
	"time"
)

// MetadataMode selects how new metadata is combined with what is already stored.
type MetadataMode string

const (
	// MetadataOverwrite replaces the stored metadata.
	MetadataOverwrite MetadataMode = "overwrite"

	// MetadataAppend concatenates notes and adds counters onto the stored metadata.
	MetadataAppend MetadataMode = "append"
)

// ParseMetadataMode maps a request value onto a MetadataMode.
// An empty value selects MetadataOverwrite.
func ParseMetadataMode(s string) (MetadataMode, error) {
	switch MetadataMode(s) {
	case "", MetadataOverwrite:
		return MetadataOverwrite, nil
	case MetadataAppend:
		return MetadataAppend, nil
	default:
		return "", fmt.Errorf("unknown metadata mode %q (expected overwrite or append)", s)
	}
}

// VideoMetadata is the document stored next to a video's keyphrase map.
type VideoMetadata struct {
	URL            string    `json:"url,omitempty"`
	Notes          string    `json:"notes,omitempty"`
	Provider       string    `json:"provider,omitempty"`
	Threshold      int64     `json:"threshold,omitempty"`
	CaptionCount   int       `json:"captionCount"`
	EntityCount    int       `json:"entityCount"`
	DurationMillis int64     `json:"durationMillis"`
	IndexedAt      time.Time `json:"indexedAt"`
}

// Append folds other into m and returns the result. Notes are concatenated,
// counters are summed and descriptive fields are taken from other when set.
func (m VideoMetadata) Append(other VideoMetadata) VideoMetadata {
	out := m
	out.Notes = m.Notes + other.Notes
	out.CaptionCount += other.CaptionCount
	out.EntityCount += other.EntityCount
	out.DurationMillis += other.DurationMillis
	if other.URL != "" {
		out.URL = other.URL
	}
	if other.Provider != "" {
		out.Provider = other.Provider
	}
	if other.Threshold != 0 {
		out.Threshold = other.Threshold
	}
	if !other.IndexedAt.IsZero() {
		out.IndexedAt = other.IndexedAt
	}
	return out
}
