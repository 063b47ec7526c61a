// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package captions

// TimeRangedText is a span of caption text. Times are whole seconds from the
// start of the video. StartTime <= EndTime is expected but not enforced.
type TimeRangedText struct {
	StartTime int64  `json:"startTime"`
	EndTime   int64  `json:"endTime"`
	Text      string `json:"text"`
}

// Duration returns EndTime - StartTime, which may be negative for malformed input.
func (t TimeRangedText) Duration() int64 {
	return t.EndTime - t.StartTime
}
