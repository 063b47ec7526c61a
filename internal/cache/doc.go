// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

/*
Package cache provides the in-memory structures that sit in front of the
document store.

# TTL Cache

Cache holds pipeline results keyed by a content fingerprint, so that a client
re-submitting the same captions with the same extractor and threshold does not
pay for a second round of entity extraction:

	results := cache.New[*pipeline.Result]("pipeline", 10*time.Minute)
	key := cache.Fingerprint(body, []byte(provider), []byte(strconv.FormatInt(threshold, 10)))

Expired entries miss on Get. Serve runs under the supervisor and sweeps them
in bulk. Hits and misses are exported through the metrics package.

# Trie

Trie is a case-insensitive prefix tree from keyphrases to the set of video ids
they occur in. It backs keyphrase autocompletion in the search package.
Keys are walked rune by rune, so multi-byte keyphrases insert and delete
cleanly.
*/
package cache
