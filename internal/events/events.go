// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

const (
	// TopicVideoIndexed is published after a keyphrase map is stored.
	TopicVideoIndexed = "video.indexed"

	// TopicVideoDeleted is published after a video is removed.
	TopicVideoDeleted = "video.deleted"
)

// Metadata keys set on every message.
const (
	MetadataVideoID = "video_id"
	MetadataSource  = "source"
)

// ErrMissingVideoID is returned when encoding an event without a video id.
var ErrMissingVideoID = errors.New("event has no video id")

// VideoEvent is the payload of both topics.
type VideoEvent struct {
	VideoID    string    `json:"videoId"`
	Keyphrases []string  `json:"keyphrases"`
	IndexedAt  time.Time `json:"indexedAt"`
}

// NewMessage encodes ev into a Watermill message with a fresh UUID.
func NewMessage(ev VideoEvent) (*message.Message, error) {
	if ev.VideoID == "" {
		return nil, ErrMissingVideoID
	}
	if ev.Keyphrases == nil {
		ev.Keyphrases = []string{}
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	msg.Metadata.Set(MetadataVideoID, ev.VideoID)
	msg.Metadata.Set(MetadataSource, "captionmap")
	return msg, nil
}

// Decode parses a message produced by NewMessage.
func Decode(msg *message.Message) (VideoEvent, error) {
	var ev VideoEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return ev, fmt.Errorf("unmarshal event: %w", err)
	}
	if ev.VideoID == "" {
		return ev, ErrMissingVideoID
	}
	return ev, nil
}
