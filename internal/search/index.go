// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

// Package search keeps an in-memory keyphrase index over every stored video
// and answers prefix suggestions from it.
package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/tomtom215/captionmap/internal/cache"
	"github.com/tomtom215/captionmap/internal/captions"
	"github.com/tomtom215/captionmap/internal/events"
	"github.com/tomtom215/captionmap/internal/logging"
	"github.com/tomtom215/captionmap/internal/metrics"
)

// Source is the part of the caption store the index is rebuilt from.
type Source interface {
	ListVideos(ctx context.Context) ([]string, error)
	Keyphrases(ctx context.Context, id string) (*captions.Timeline, error)
}

// Suggestion is one completion returned by Suggest.
type Suggestion struct {
	Keyphrase string   `json:"keyphrase"`
	VideoIDs  []string `json:"videoIds"`
	Count     int      `json:"count"`
}

// KeyphraseIndex maps keyphrases to the videos containing them.
type KeyphraseIndex struct {
	trie *cache.Trie

	mu     sync.Mutex
	byItem map[string][]string // video id -> keyphrases currently indexed
}

// NewKeyphraseIndex creates an empty index.
func NewKeyphraseIndex() *KeyphraseIndex {
	return &KeyphraseIndex{
		trie:   cache.NewTrie(cache.DefaultMaxSuggestions),
		byItem: make(map[string][]string),
	}
}

// Rebuild replaces the index contents with everything in src.
func (idx *KeyphraseIndex) Rebuild(ctx context.Context, src Source) error {
	ids, err := src.ListVideos(ctx)
	if err != nil {
		return fmt.Errorf("list videos: %w", err)
	}

	byItem := make(map[string][]string, len(ids))
	for _, id := range ids {
		tl, err := src.Keyphrases(ctx, id)
		if err != nil {
			return fmt.Errorf("load keyphrases for %s: %w", id, err)
		}
		byItem[id] = tl.Keys()
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.trie.Clear()
	idx.byItem = byItem
	for id, keyphrases := range byItem {
		for _, k := range keyphrases {
			idx.trie.Insert(k, id)
		}
	}
	metrics.SearchIndexKeyphrases.Set(float64(idx.trie.Size()))

	logging.Info().
		Int("videos", len(byItem)).
		Int("keyphrases", idx.trie.Size()).
		Msg("Keyphrase index rebuilt")
	return nil
}

// Put indexes the keyphrases of one video, replacing what was indexed before.
func (idx *KeyphraseIndex) Put(videoID string, keyphrases []string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.removeLocked(videoID)
	kept := make([]string, 0, len(keyphrases))
	for _, k := range keyphrases {
		if idx.trie.Insert(k, videoID) {
			kept = append(kept, k)
		}
	}
	idx.byItem[videoID] = kept
	metrics.SearchIndexKeyphrases.Set(float64(idx.trie.Size()))
}

// Remove drops a video from the index.
func (idx *KeyphraseIndex) Remove(videoID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.removeLocked(videoID)
	metrics.SearchIndexKeyphrases.Set(float64(idx.trie.Size()))
}

func (idx *KeyphraseIndex) removeLocked(videoID string) {
	for _, k := range idx.byItem[videoID] {
		idx.trie.Remove(k, videoID)
	}
	delete(idx.byItem, videoID)
}

// Suggest returns up to limit keyphrases starting with prefix, the ones found
// in the most videos first.
func (idx *KeyphraseIndex) Suggest(prefix string, limit int) []Suggestion {
	results := idx.trie.Complete(prefix, limit)
	out := make([]Suggestion, 0, len(results))
	for _, r := range results {
		out = append(out, Suggestion{Keyphrase: r.Value, VideoIDs: r.Members, Count: r.Count})
	}
	return out
}

// Lookup returns the videos containing exactly keyphrase.
func (idx *KeyphraseIndex) Lookup(keyphrase string) []string {
	ids, _ := idx.trie.Members(keyphrase)
	return ids
}

// Size returns the number of distinct keyphrases indexed.
func (idx *KeyphraseIndex) Size() int {
	return idx.trie.Size()
}

// HandleIndexed consumes video.indexed events.
func (idx *KeyphraseIndex) HandleIndexed(_ context.Context, ev events.VideoEvent) error {
	idx.Put(ev.VideoID, ev.Keyphrases)
	return nil
}

// HandleDeleted consumes video.deleted events.
func (idx *KeyphraseIndex) HandleDeleted(_ context.Context, ev events.VideoEvent) error {
	idx.Remove(ev.VideoID)
	return nil
}

// Register subscribes the index to both video topics.
func (idx *KeyphraseIndex) Register(r *events.Router) {
	r.AddConsumer("search-index-indexed", events.TopicVideoIndexed, idx.HandleIndexed)
	r.AddConsumer("search-index-deleted", events.TopicVideoDeleted, idx.HandleDeleted)
}
