// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

// Command captionctl segments and indexes caption files offline.
//
//	captionctl segment lecture.vtt --threshold 30
//	captionctl index captions.json --provider mock
//	captionctl index lecture.vtt --store /data/captionmap --url https://www.youtube.com/watch?v=abc123
//	captionctl show abc123 --store /data/captionmap
//
// Input is a JSON array of {startTime, endTime, text} fragments or a WebVTT
// file. "-" reads standard input.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
