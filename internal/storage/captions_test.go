// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package storage

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/captionmap/internal/captions"
	"github.com/tomtom215/captionmap/internal/models"
)

func sampleCaptions() []captions.TimeRangedText {
	return []captions.TimeRangedText{
		{StartTime: 30, EndTime: 35, Text: "third"},
		{StartTime: 0, EndTime: 5, Text: "first"},
		{StartTime: 10, EndTime: 15, Text: "second"},
	}
}

func TestCaptionStore_AddVideoAndFullCaptions(t *testing.T) {
	t.Parallel()
	store := createTestDB(t).Captions()
	ctx := context.Background()

	if err := store.AddVideo(ctx, "vid1", nil, sampleCaptions()); err != nil {
		t.Fatalf("AddVideo() error = %v", err)
	}

	got, err := store.FullCaptions(ctx, "vid1")
	if err != nil {
		t.Fatalf("FullCaptions() error = %v", err)
	}

	want := []captions.TimeRangedText{
		{StartTime: 0, EndTime: 5, Text: "first"},
		{StartTime: 10, EndTime: 15, Text: "second"},
		{StartTime: 30, EndTime: 35, Text: "third"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("FullCaptions() = %v, want %v", got, want)
	}

	exists, err := store.VideoExists(ctx, "vid1")
	if err != nil || !exists {
		t.Errorf("VideoExists() = %v, %v; want true, nil", exists, err)
	}
	exists, err = store.MetadataExists(ctx, "vid1")
	if err != nil || exists {
		t.Errorf("MetadataExists() = %v, %v; want false, nil", exists, err)
	}
}

func TestCaptionStore_AddVideoReplacesSubtree(t *testing.T) {
	t.Parallel()
	store := createTestDB(t).Captions()
	ctx := context.Background()

	if err := store.AddVideo(ctx, "vid1", &models.VideoMetadata{Notes: "old"}, sampleCaptions()); err != nil {
		t.Fatalf("AddVideo() error = %v", err)
	}
	if err := store.AddClause(ctx, "vid1", "stale", []int64{1}); err != nil {
		t.Fatalf("AddClause() error = %v", err)
	}

	fresh := []captions.TimeRangedText{{StartTime: 0, EndTime: 1, Text: "only"}}
	if err := store.AddVideo(ctx, "vid1", nil, fresh); err != nil {
		t.Fatalf("AddVideo() error = %v", err)
	}

	got, err := store.FullCaptions(ctx, "vid1")
	if err != nil {
		t.Fatalf("FullCaptions() error = %v", err)
	}
	if !reflect.DeepEqual(got, fresh) {
		t.Errorf("FullCaptions() = %v, want %v", got, fresh)
	}

	tl, err := store.Keyphrases(ctx, "vid1")
	if err != nil {
		t.Fatalf("Keyphrases() error = %v", err)
	}
	if tl.Len() != 0 {
		t.Errorf("Keyphrases() len = %d, want 0 after replace", tl.Len())
	}

	if exists, _ := store.MetadataExists(ctx, "vid1"); exists {
		t.Error("metadata should be removed when the video is replaced without metadata")
	}
}

func TestCaptionStore_KeyphrasesKeepInsertionOrder(t *testing.T) {
	t.Parallel()
	store := createTestDB(t).Captions()
	ctx := context.Background()

	if err := store.AddVideo(ctx, "vid1", nil, nil); err != nil {
		t.Fatalf("AddVideo() error = %v", err)
	}

	tl := captions.NewTimeline()
	tl.Set("zebra", []int64{10, 30})
	tl.Set("apple", []int64{20})
	tl.Set("mango", nil)
	if err := store.AddClauses(ctx, "vid1", tl); err != nil {
		t.Fatalf("AddClauses() error = %v", err)
	}

	// Overwriting an existing keyphrase keeps its position.
	if err := store.AddClause(ctx, "vid1", "zebra", []int64{99}); err != nil {
		t.Fatalf("AddClause() error = %v", err)
	}
	if err := store.AddClause(ctx, "vid1", "banana", []int64{40}); err != nil {
		t.Fatalf("AddClause() error = %v", err)
	}

	got, err := store.Keyphrases(ctx, "vid1")
	if err != nil {
		t.Fatalf("Keyphrases() error = %v", err)
	}

	data, err := json.Marshal(got)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	want := `{"zebra":[99],"apple":[20],"mango":[],"banana":[40]}`
	if string(data) != want {
		t.Errorf("Keyphrases() = %s, want %s", data, want)
	}

	times, err := store.TimesForKeyphrase(ctx, "vid1", "apple")
	if err != nil {
		t.Fatalf("TimesForKeyphrase() error = %v", err)
	}
	if !reflect.DeepEqual(times, []int64{20}) {
		t.Errorf("TimesForKeyphrase() = %v, want [20]", times)
	}
}

func TestCaptionStore_NotFoundReasons(t *testing.T) {
	t.Parallel()
	store := createTestDB(t).Captions()
	ctx := context.Background()

	if err := store.AddVideo(ctx, "vid1", nil, nil); err != nil {
		t.Fatalf("AddVideo() error = %v", err)
	}

	tests := []struct {
		name     string
		call     func() error
		sentinel error
		reason   Reason
	}{
		{
			name:     "keyphrases of missing video",
			call:     func() error { _, err := store.Keyphrases(ctx, "missing"); return err },
			sentinel: ErrVideoNotFound,
			reason:   ReasonNoVideo,
		},
		{
			name:     "full captions of missing video",
			call:     func() error { _, err := store.FullCaptions(ctx, "missing"); return err },
			sentinel: ErrVideoNotFound,
			reason:   ReasonNoVideo,
		},
		{
			name:     "missing keyphrase",
			call:     func() error { _, err := store.TimesForKeyphrase(ctx, "vid1", "nope"); return err },
			sentinel: ErrKeyphraseNotFound,
			reason:   ReasonNoKeyphrase,
		},
		{
			name:     "missing metadata",
			call:     func() error { _, err := store.Metadata(ctx, "vid1"); return err },
			sentinel: ErrMetadataNotFound,
			reason:   ReasonNoMeta,
		},
		{
			name:     "clause on missing video",
			call:     func() error { return store.AddClause(ctx, "missing", "x", []int64{1}) },
			sentinel: ErrVideoNotFound,
			reason:   ReasonNoVideo,
		},
		{
			name: "metadata on missing video",
			call: func() error {
				return store.AddMetadata(ctx, "missing", models.VideoMetadata{}, models.MetadataOverwrite)
			},
			sentinel: ErrVideoNotFound,
			reason:   ReasonNoVideo,
		},
		{
			name:     "delete missing video",
			call:     func() error { return store.DeleteVideo(ctx, "missing") },
			sentinel: ErrVideoNotFound,
			reason:   ReasonNoVideo,
		},
		{
			name:     "delete missing keyphrase",
			call:     func() error { return store.DeleteClause(ctx, "vid1", "nope") },
			sentinel: ErrKeyphraseNotFound,
			reason:   ReasonNoKeyphrase,
		},
		{
			name:     "delete missing metadata",
			call:     func() error { return store.DeleteMetadata(ctx, "vid1") },
			sentinel: ErrMetadataNotFound,
			reason:   ReasonNoMeta,
		},
		{
			name:     "invalid id",
			call:     func() error { return store.AddVideo(ctx, "a/b", nil, nil) },
			sentinel: ErrInvalidKey,
			reason:   ReasonAddVideo,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			if !errors.Is(err, tt.sentinel) {
				t.Fatalf("error = %v, want %v", err, tt.sentinel)
			}
			if got := ReasonOf(err); got != tt.reason {
				t.Errorf("ReasonOf() = %s, want %s", got, tt.reason)
			}
		})
	}
}

func TestCaptionStore_Metadata(t *testing.T) {
	t.Parallel()
	store := createTestDB(t).Captions()
	ctx := context.Background()

	initial := &models.VideoMetadata{URL: "https://youtu.be/vid1", Notes: "intro;", CaptionCount: 3, EntityCount: 2}
	if err := store.AddVideo(ctx, "vid1", initial, nil); err != nil {
		t.Fatalf("AddVideo() error = %v", err)
	}

	extra := models.VideoMetadata{Notes: "part two", CaptionCount: 4, EntityCount: 1}
	if err := store.AddMetadata(ctx, "vid1", extra, models.MetadataAppend); err != nil {
		t.Fatalf("AddMetadata(append) error = %v", err)
	}

	got, err := store.Metadata(ctx, "vid1")
	if err != nil {
		t.Fatalf("Metadata() error = %v", err)
	}
	if got.Notes != "intro;part two" || got.CaptionCount != 7 || got.EntityCount != 3 {
		t.Errorf("appended metadata = %+v", got)
	}
	if got.URL != "https://youtu.be/vid1" {
		t.Errorf("URL = %q, want preserved", got.URL)
	}

	if err := store.AddMetadata(ctx, "vid1", models.VideoMetadata{Notes: "fresh"}, models.MetadataOverwrite); err != nil {
		t.Fatalf("AddMetadata(overwrite) error = %v", err)
	}
	got, err = store.Metadata(ctx, "vid1")
	if err != nil {
		t.Fatalf("Metadata() error = %v", err)
	}
	if got.Notes != "fresh" || got.CaptionCount != 0 || got.URL != "" {
		t.Errorf("overwritten metadata = %+v", got)
	}

	if err := store.DeleteMetadata(ctx, "vid1"); err != nil {
		t.Fatalf("DeleteMetadata() error = %v", err)
	}
	if exists, _ := store.MetadataExists(ctx, "vid1"); exists {
		t.Error("metadata still exists after delete")
	}
}

func TestCaptionStore_DeleteVideoCascades(t *testing.T) {
	t.Parallel()
	db := createTestDB(t)
	store := db.Captions()
	ctx := context.Background()

	for _, id := range []string{"vid1", "vid10"} {
		if err := store.AddVideo(ctx, id, &models.VideoMetadata{}, sampleCaptions()); err != nil {
			t.Fatalf("AddVideo(%s) error = %v", id, err)
		}
		if err := store.AddClause(ctx, id, "topic", []int64{0}); err != nil {
			t.Fatalf("AddClause(%s) error = %v", id, err)
		}
	}

	if err := store.DeleteVideo(ctx, "vid1"); err != nil {
		t.Fatalf("DeleteVideo() error = %v", err)
	}

	ids, err := store.ListVideos(ctx)
	if err != nil {
		t.Fatalf("ListVideos() error = %v", err)
	}
	if !reflect.DeepEqual(ids, []string{"vid10"}) {
		t.Errorf("ListVideos() = %v, want [vid10]", ids)
	}

	// The neighbour sharing a prefix must be untouched.
	times, err := store.TimesForKeyphrase(ctx, "vid10", "topic")
	if err != nil || len(times) != 1 {
		t.Errorf("TimesForKeyphrase(vid10) = %v, %v", times, err)
	}
}

func TestCaptionStore_DeleteClause(t *testing.T) {
	t.Parallel()
	store := createTestDB(t).Captions()
	ctx := context.Background()

	if err := store.AddVideo(ctx, "vid1", nil, nil); err != nil {
		t.Fatalf("AddVideo() error = %v", err)
	}
	if err := store.AddClause(ctx, "vid1", "keep", []int64{1}); err != nil {
		t.Fatalf("AddClause() error = %v", err)
	}
	if err := store.AddClause(ctx, "vid1", "drop", []int64{2}); err != nil {
		t.Fatalf("AddClause() error = %v", err)
	}

	if err := store.DeleteClause(ctx, "vid1", "drop"); err != nil {
		t.Fatalf("DeleteClause() error = %v", err)
	}

	tl, err := store.Keyphrases(ctx, "vid1")
	if err != nil {
		t.Fatalf("Keyphrases() error = %v", err)
	}
	if !reflect.DeepEqual(tl.Keys(), []string{"keep"}) {
		t.Errorf("Keys() = %v, want [keep]", tl.Keys())
	}
}

func TestCaptionStore_CanceledContext(t *testing.T) {
	t.Parallel()
	store := createTestDB(t).Captions()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.AddVideo(ctx, "vid1", nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("AddVideo() error = %v, want context.Canceled", err)
	}
	if ReasonOf(err) != ReasonAddVideo {
		t.Errorf("ReasonOf() = %s, want %s", ReasonOf(err), ReasonAddVideo)
	}
}

func TestCaptionStore_IndexVideo(t *testing.T) {
	t.Parallel()
	store := createTestDB(t).Captions()
	ctx := context.Background()

	if err := store.AddVideo(ctx, "vid1", nil, nil); err != nil {
		t.Fatalf("AddVideo() error = %v", err)
	}
	if err := store.AddClause(ctx, "vid1", "stale", []int64{1}); err != nil {
		t.Fatalf("AddClause() error = %v", err)
	}

	tl := captions.NewTimeline()
	tl.Set("cell", []int64{0})
	tl.Set("nucleus", []int64{0, 20})
	meta := &models.VideoMetadata{Notes: "first", EntityCount: 2}
	if err := store.IndexVideo(ctx, "vid1", meta, sampleCaptions(), tl); err != nil {
		t.Fatalf("IndexVideo() error = %v", err)
	}

	got, err := store.Keyphrases(ctx, "vid1")
	if err != nil {
		t.Fatalf("Keyphrases() error = %v", err)
	}
	if keys := strings.Join(got.Keys(), "|"); keys != "cell|nucleus" {
		t.Errorf("Keyphrases() = %s, want cell|nucleus", keys)
	}
	full, err := store.FullCaptions(ctx, "vid1")
	if err != nil || len(full) != 3 {
		t.Errorf("FullCaptions() = %v, %v", full, err)
	}
}

func TestCaptionStore_IndexVideoKeepsPreviousOnFailure(t *testing.T) {
	t.Parallel()
	store := createTestDB(t).Captions()
	ctx := context.Background()

	tl := captions.NewTimeline()
	tl.Set("cell", []int64{0})
	tl.Set("nucleus", []int64{0, 20})
	if err := store.IndexVideo(ctx, "vid1", &models.VideoMetadata{Notes: "first", EntityCount: 2}, sampleCaptions(), tl); err != nil {
		t.Fatalf("IndexVideo() error = %v", err)
	}

	bad := captions.NewTimeline()
	bad.Set("ok", []int64{0})
	bad.Set(strings.Repeat("k", 70000), []int64{0})
	next := []captions.TimeRangedText{{StartTime: 0, EndTime: 5, Text: "replacement"}}

	err := store.IndexVideo(ctx, "vid1", &models.VideoMetadata{Notes: "second", EntityCount: 2}, next, bad)
	if !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("IndexVideo() error = %v, want ErrInvalidKey", err)
	}
	if got := ReasonOf(err); got != ReasonAddKeyphrase {
		t.Errorf("ReasonOf() = %s, want %s", got, ReasonAddKeyphrase)
	}
	if len(err.Error()) > 200 {
		t.Errorf("error message is %d bytes, should not embed the keyphrase", len(err.Error()))
	}

	got, err := store.Keyphrases(ctx, "vid1")
	if err != nil {
		t.Fatalf("Keyphrases() error = %v", err)
	}
	if keys := strings.Join(got.Keys(), "|"); keys != "cell|nucleus" {
		t.Errorf("Keyphrases() after failed re-index = %s, want cell|nucleus", keys)
	}
	meta, err := store.Metadata(ctx, "vid1")
	if err != nil || meta.Notes != "first" {
		t.Errorf("Metadata() after failed re-index = %+v, %v", meta, err)
	}
	full, err := store.FullCaptions(ctx, "vid1")
	if err != nil || len(full) != 3 {
		t.Errorf("FullCaptions() after failed re-index = %v, %v", full, err)
	}
}

func TestCaptionStore_KeyphraseLengthLimit(t *testing.T) {
	t.Parallel()
	store := createTestDB(t).Captions()
	ctx := context.Background()

	if err := store.AddVideo(ctx, "vid1", nil, nil); err != nil {
		t.Fatalf("AddVideo() error = %v", err)
	}

	longest := strings.Repeat("a", MaxKeyphraseBytes)
	if err := store.AddClause(ctx, "vid1", longest, []int64{0}); err != nil {
		t.Fatalf("AddClause(%d bytes) error = %v", MaxKeyphraseBytes, err)
	}

	err := store.AddClause(ctx, "vid1", longest+"a", []int64{0})
	if !errors.Is(err, ErrInvalidKey) || ReasonOf(err) != ReasonAddKeyphrase {
		t.Fatalf("AddClause(%d bytes) error = %v", MaxKeyphraseBytes+1, err)
	}

	got, err := store.Keyphrases(ctx, "vid1")
	if err != nil || got.Len() != 1 {
		t.Errorf("Keyphrases() = %v, %v; want only the accepted keyphrase", got, err)
	}
}
