// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package storage

import (
	"errors"
	"fmt"
)

// Reason is the machine-readable code attached to every storage failure.
// The HTTP layer sends it to clients verbatim.
type Reason string

const (
	ReasonAddVideo        Reason = "ADD_VIDEO_ERR"
	ReasonAddMeta         Reason = "ADD_META_ERR"
	ReasonGetVideo        Reason = "GET_VIDEO_ERR"
	ReasonGetMeta         Reason = "GET_META_ERR"
	ReasonAddKeyphrase    Reason = "ADD_KEYPHRASE_ERR"
	ReasonGetKeyphrase    Reason = "GET_KEYPHRASE_ERR"
	ReasonOverwriteMeta   Reason = "OVERWRITE_META_ERR"
	ReasonAppendMeta      Reason = "APPEND_META_ERR"
	ReasonNoVideo         Reason = "NO_VIDEO_EXISTS"
	ReasonNoMeta          Reason = "NO_META_EXISTS"
	ReasonNoKeyphrase     Reason = "NO_KEYPHRASE_EXISTS"
	ReasonDeleteVideo     Reason = "DELETE_VIDEO_ERR"
	ReasonDeleteKeyphrase Reason = "DELETE_KEYPHRASE_ERR"
	ReasonDeleteMeta      Reason = "DELETE_META_ERR"
	ReasonAddFullCaptions Reason = "ADD_FULL_CAPTIONS_ERR"

	ReasonGetBookmarks   Reason = "GET_BOOKMARKS_ERR"
	ReasonAddBookmark    Reason = "ADD_BOOKMARK_ERR"
	ReasonRemoveBookmark Reason = "REMOVE_BOOKMARK_ERR"
	ReasonNoBookmark     Reason = "NO_BOOKMARK_EXISTS"
)

var (
	// ErrVideoNotFound is wrapped by NO_VIDEO_EXISTS errors.
	ErrVideoNotFound = errors.New("video not found")

	// ErrMetadataNotFound is wrapped by NO_META_EXISTS errors.
	ErrMetadataNotFound = errors.New("metadata not found")

	// ErrKeyphraseNotFound is wrapped by NO_KEYPHRASE_EXISTS errors.
	ErrKeyphraseNotFound = errors.New("keyphrase not found")

	// ErrBookmarkNotFound is wrapped by NO_BOOKMARK_EXISTS errors.
	ErrBookmarkNotFound = errors.New("bookmark not found")

	// ErrInvalidKey is returned for ids that cannot be used as key segments.
	ErrInvalidKey = errors.New("invalid key segment")
)

// Error is a failed storage operation.
type Error struct {
	Op      Reason
	VideoID string
	Err     error
}

func (e *Error) Error() string {
	if e.VideoID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s (video %s): %v", e.Op, e.VideoID, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ReasonOf extracts the Reason from err, or "" when err is not a storage error.
func ReasonOf(err error) Reason {
	var se *Error
	if errors.As(err, &se) {
		return se.Op
	}
	return ""
}

func newError(op Reason, videoID string, err error) *Error {
	return &Error{Op: op, VideoID: videoID, Err: err}
}
