// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

/*
Package storage persists keyphrase maps, full captions, video metadata and
bookmarks in an embedded BadgerDB document store.

Key layout:

	video/<id>                               video record
	video/<id>/metadata                      models.VideoMetadata
	video/<id>/caption/<keyphrase>           keyphrase timestamps with an ordinal
	video/<id>/full_caption/<index %010d>    captions.TimeRangedText
	bookmark/<email>/<videoId>/<bookmarkId>  models.Bookmark

Indexing goes through IndexVideo, which replaces a video's whole subtree in
one transaction.

Every failure is returned as *Error carrying a Reason code. The NO_*_EXISTS
reasons wrap the package sentinels so callers can use errors.Is:

	times, err := store.TimesForKeyphrase(ctx, "abc123", "photosynthesis")
	if errors.Is(err, storage.ErrKeyphraseNotFound) {
		// 404
	}
*/
package storage
