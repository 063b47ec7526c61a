// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/captionmap/internal/models"
)

const bookmarkPrefix = "bookmark/"

type bookmarkRecord struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	VideoID   string    `json:"videoId"`
	Timestamp int64     `json:"timestamp"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

func (r bookmarkRecord) model() models.Bookmark {
	return models.Bookmark{
		ID:        r.ID,
		Email:     r.Email,
		VideoID:   r.VideoID,
		Timestamp: r.Timestamp,
		Title:     r.Title,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
	}
}

func bookmarkListPrefix(email, videoID string) []byte {
	return []byte(bookmarkPrefix + email + "/" + videoID + "/")
}

func bookmarkKey(email, videoID, id string) []byte {
	return []byte(bookmarkPrefix + email + "/" + videoID + "/" + id)
}

// BookmarkStore persists per-user video bookmarks.
type BookmarkStore struct {
	db    *badger.DB
	now   func() time.Time
	newID func() string
}

// NewBookmarkStore creates a BookmarkStore on an open BadgerDB.
func NewBookmarkStore(db *badger.DB) *BookmarkStore {
	return &BookmarkStore{db: db, now: time.Now, newID: uuid.NewString}
}

// Add stores b for the given user and video. A missing ID or creation time is
// filled in. The stored bookmark is returned.
func (s *BookmarkStore) Add(ctx context.Context, email, videoID string, b models.Bookmark) (models.Bookmark, error) {
	if b.ID == "" {
		b.ID = s.newID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = s.now().UTC()
	}
	b.Email = email
	b.VideoID = videoID

	err := s.run(ctx, "add_bookmark", ReasonAddBookmark, email, videoID, b.ID, func() error {
		return s.db.Update(func(txn *badger.Txn) error {
			return putJSON(txn, bookmarkKey(email, videoID, b.ID), bookmarkRecord{
				ID:        b.ID,
				Email:     email,
				VideoID:   videoID,
				Timestamp: b.Timestamp,
				Title:     b.Title,
				Content:   b.Content,
				CreatedAt: b.CreatedAt,
			})
		})
	})
	if err != nil {
		return models.Bookmark{}, err
	}
	return b, nil
}

// Remove deletes one bookmark.
func (s *BookmarkStore) Remove(ctx context.Context, email, videoID, id string) error {
	return s.run(ctx, "remove_bookmark", ReasonRemoveBookmark, email, videoID, id, func() error {
		return s.db.Update(func(txn *badger.Txn) error {
			key := bookmarkKey(email, videoID, id)
			if _, err := txn.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return newError(ReasonNoBookmark, videoID, fmt.Errorf("%w: %s", ErrBookmarkNotFound, id))
				}
				return err
			}
			return txn.Delete(key)
		})
	})
}

// List returns the bookmarks of one user on one video, ordered by timestamp
// and then by creation time.
func (s *BookmarkStore) List(ctx context.Context, email, videoID string) ([]models.Bookmark, error) {
	out := []models.Bookmark{}
	err := s.run(ctx, "list_bookmarks", ReasonGetBookmarks, email, videoID, "", func() error {
		return s.db.View(func(txn *badger.Txn) error {
			return scanPrefix(txn, bookmarkListPrefix(email, videoID), func(val []byte) error {
				var rec bookmarkRecord
				if err := json.Unmarshal(val, &rec); err != nil {
					return fmt.Errorf("decode bookmark: %w", err)
				}
				out = append(out, rec.model())
				return nil
			})
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp != out[j].Timestamp {
			return out[i].Timestamp < out[j].Timestamp
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *BookmarkStore) run(ctx context.Context, opName string, op Reason, email, videoID, id string, txn func() error) error {
	return run(ctx, opName, op, videoID, true, func() error {
		if !validSegment(email) {
			return fmt.Errorf("%w: email %q", ErrInvalidKey, email)
		}
		if id != "" && !validSegment(id) {
			return fmt.Errorf("%w: bookmark id %q", ErrInvalidKey, id)
		}
		return txn()
	})
}
