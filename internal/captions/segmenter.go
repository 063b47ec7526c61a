// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package captions

import "strings"

// DefaultThreshold is the minimum window span in seconds.
const DefaultThreshold int64 = 20

// wordDelimiter is appended after every fragment's text.
const wordDelimiter = " "

// Segmenter merges short caption fragments into windows of at least Threshold seconds.
// The zero value uses DefaultThreshold.
type Segmenter struct {
	Threshold int64
}

// NewSegmenter returns a Segmenter with the given threshold. A threshold of 0
// selects DefaultThreshold; use SetTimeRanges directly for a literal zero.
func NewSegmenter(threshold int64) Segmenter {
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	return Segmenter{Threshold: threshold}
}

// Segment runs SetTimeRanges with the segmenter's threshold.
func (s Segmenter) Segment(texts []TimeRangedText) []TimeRangedText {
	threshold := s.Threshold
	if threshold == 0 {
		threshold = DefaultThreshold
	}
	return SetTimeRanges(texts, threshold)
}

// SetTimeRanges folds fragments into windows. A window opens at the start of
// the first fragment after the previous window closed and closes as soon as
// fragment.EndTime - windowStart >= threshold. Each fragment contributes its
// text followed by a single space. A window still open after the last
// fragment is emitted anyway and ends at the last fragment's EndTime, so no
// text is ever dropped.
//
// nil or empty input yields an empty, non-nil slice.
func SetTimeRanges(texts []TimeRangedText, threshold int64) []TimeRangedText {
	result := make([]TimeRangedText, 0, len(texts)/2+1)
	if len(texts) == 0 {
		return result
	}

	var (
		open       bool
		groupStart int64
		buf        strings.Builder
	)

	for _, text := range texts {
		if !open {
			groupStart = text.StartTime
			open = true
		}

		buf.WriteString(text.Text)
		buf.WriteString(wordDelimiter)

		if text.EndTime-groupStart >= threshold {
			result = append(result, TimeRangedText{
				StartTime: groupStart,
				EndTime:   text.EndTime,
				Text:      buf.String(),
			})
			buf.Reset()
			open = false
		}
	}

	if open {
		result = append(result, TimeRangedText{
			StartTime: groupStart,
			EndTime:   texts[len(texts)-1].EndTime,
			Text:      buf.String(),
		})
	}

	return result
}
