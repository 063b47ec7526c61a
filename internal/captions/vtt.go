// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package captions

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

var (
	// cueTimingRegex matches "00:01:02.500 --> 00:01:04.000"; hours are optional.
	cueTimingRegex = regexp.MustCompile(`^((?:\d+:)?\d{2}:\d{2}\.\d{3})\s+-->\s+((?:\d+:)?\d{2}:\d{2}\.\d{3})`)
	cueTagRegex    = regexp.MustCompile(`<[^>]*>`)
)

// ParseWebVTT reads WebVTT cues into fragments. Cue times are truncated to
// whole seconds. Inline tags are stripped and multi-line cue text is joined
// with single spaces. Cues without text are skipped.
func ParseWebVTT(r io.Reader) ([]TimeRangedText, error) {
	var fragments []TimeRangedText
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		matches := cueTimingRegex.FindStringSubmatch(line)
		if matches == nil {
			continue
		}

		start, err := parseCueTime(matches[1])
		if err != nil {
			return nil, err
		}
		end, err := parseCueTime(matches[2])
		if err != nil {
			return nil, err
		}

		var lines []string
		for scanner.Scan() {
			textLine := strings.TrimSpace(scanner.Text())
			if textLine == "" {
				break
			}
			if clean := strings.TrimSpace(cueTagRegex.ReplaceAllString(textLine, "")); clean != "" {
				lines = append(lines, clean)
			}
		}

		if len(lines) > 0 {
			fragments = append(fragments, TimeRangedText{
				StartTime: start,
				EndTime:   end,
				Text:      strings.Join(lines, " "),
			})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read webvtt: %w", err)
	}
	return fragments, nil
}

// parseCueTime converts [HH:]MM:SS.mmm to whole seconds.
func parseCueTime(s string) (int64, error) {
	clock, _, _ := strings.Cut(s, ".")
	parts := strings.Split(clock, ":")

	var total int64
	for _, p := range parts {
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid cue time %q: %w", s, err)
		}
		total = total*60 + n
	}
	return total, nil
}
