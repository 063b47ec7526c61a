// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

/*
Package models defines the documents captionmap persists next to a video's
keyphrase map.

  - VideoMetadata: indexing statistics plus free-form notes for one video
  - MetadataMode: how an update is combined with the stored document
  - Bookmark: a titled position in a video, owned by one email address

Metadata updates come in two modes:

	overwrite  the update replaces the stored document
	append     notes are concatenated and counters are summed

	stored := models.VideoMetadata{Notes: "week one", CaptionCount: 3}
	merged := stored.Append(models.VideoMetadata{Notes: ", revised"})
	// merged.Notes == "week one, revised", merged.CaptionCount == 3

Bookmarks are keyed by email, video id and bookmark id in storage, so their
JSON form omits the first two.

All types are plain values without internal locking.
*/
package models
