// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

/*
Package captions holds the caption data types and the two order-sensitive
stages of the indexing pipeline.

# Overview

Raw caption fragments arrive as TimeRangedText values. The Segmenter folds
them into windows that span at least a threshold duration, and the Aggregator
collects the entities extracted from each window into a Timeline that maps
every keyphrase to the window start times where it was seen.

	windows := captions.SetTimeRanges(fragments, captions.DefaultThreshold)

	agg := captions.NewAggregator()
	for _, w := range windows {
	    entities, err := extractor.Entities(ctx, w.Text)
	    if err != nil {
	        continue
	    }
	    agg.AddEntities(entities, w.StartTime)
	}
	timeline := agg.EntitiesMap()

# Ordering

Timeline keys keep first-seen order and marshal to JSON in that order, so the
same input always produces byte-identical responses. Timestamps are appended
in call order and are never sorted or deduplicated.

# Input Hygiene

The Segmenter trusts its input. Out-of-order or overlapping fragments are not
rejected; the elapsed duration is computed by plain subtraction and a negative
value simply keeps the current window open.

# Helpers

ParseVideoID extracts a YouTube video id from a watch URL, a short link or a
bare id. ParseWebVTT reads WebVTT cue files into fragments for offline
indexing.
*/
package captions
