// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package captions

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidVideoURL is returned when no video id can be found in a URL.
var ErrInvalidVideoURL = errors.New("invalid video url")

const (
	watchIDParam  = "v="
	shortLinkHost = "youtu.be/"
)

// ParseVideoID extracts the video id from a YouTube URL.
//
// Supported forms:
//   - https://www.youtube.com/watch?v=ID&t=42
//   - https://youtu.be/ID?t=42
//   - ID
func ParseVideoID(rawURL string) (string, error) {
	s := strings.TrimSpace(rawURL)

	var id string
	switch {
	case strings.Contains(s, watchIDParam):
		id = s[strings.Index(s, watchIDParam)+len(watchIDParam):]
		id = cutAny(id, "&#")
	case strings.Contains(s, shortLinkHost):
		id = s[strings.Index(s, shortLinkHost)+len(shortLinkHost):]
		id = cutAny(id, "?&#/")
	case s != "" && !strings.ContainsAny(s, "/?=&#"):
		id = s
	}

	if id == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidVideoURL, rawURL)
	}
	return id, nil
}

// cutAny truncates s at the first occurrence of any byte in chars.
func cutAny(s, chars string) string {
	if i := strings.IndexAny(s, chars); i >= 0 {
		return s[:i]
	}
	return s
}
