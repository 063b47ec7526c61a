// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package models

import "time"

// Bookmark marks a position in a video for one user.
//
// The JSON form carries only what the player needs; the owner's email and the
// video id are part of the storage key and are not echoed back.
type Bookmark struct {
	ID        string    `json:"id"`
	Email     string    `json:"-"`
	VideoID   string    `json:"-"`
	Timestamp int64     `json:"timestamp"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
