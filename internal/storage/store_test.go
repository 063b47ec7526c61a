// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package storage

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

// Helper function to create a test document store in a temp directory
func createTestDB(t *testing.T) *DB {
	t.Helper()

	dir, err := os.MkdirTemp("", "badger-captionmap-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}

	cfg := DefaultConfig(dir)
	cfg.SyncWrites = false
	cfg.GCInterval = 0

	db, err := Open(cfg)
	if err != nil {
		os.RemoveAll(dir)
		t.Fatalf("Failed to open store: %v", err)
	}

	t.Cleanup(func() {
		db.Close()
		os.RemoveAll(dir)
	})
	return db
}

func TestOpen_RequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open(Config{}); err == nil {
		t.Fatal("Open() without path or InMemory should fail")
	}
}

func TestOpen_InMemory(t *testing.T) {
	t.Parallel()

	db, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer db.Close()

	if err := db.RunGC(); err != nil {
		t.Errorf("RunGC() on in-memory store error = %v", err)
	}
}

func TestDB_Ping(t *testing.T) {
	t.Parallel()

	db, err := Open(Config{InMemory: true})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if err := db.Ping(context.Background()); err != nil {
		t.Errorf("Ping() on open store error = %v", err)
	}

	db.Close()
	if err := db.Ping(context.Background()); err == nil {
		t.Error("Ping() on closed store should fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := db.Ping(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Ping() with cancelled context = %v", err)
	}
}

func TestDB_RunGC(t *testing.T) {
	t.Parallel()
	db := createTestDB(t)

	if err := db.RunGC(); err != nil {
		t.Errorf("RunGC() error = %v", err)
	}
}

func TestGCService_StopsOnCancel(t *testing.T) {
	t.Parallel()
	db := createTestDB(t)
	db.cfg.GCInterval = 10 * time.Millisecond

	svc := NewGCService(db)
	if svc.String() != "badger-gc" {
		t.Errorf("String() = %q", svc.String())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return after cancel")
	}
}

func TestError_Format(t *testing.T) {
	t.Parallel()

	err := newError(ReasonNoVideo, "abc", ErrVideoNotFound)
	if got := err.Error(); got != "NO_VIDEO_EXISTS (video abc): video not found" {
		t.Errorf("Error() = %q", got)
	}

	err = newError(ReasonGetBookmarks, "", errors.New("boom"))
	if got := err.Error(); got != "GET_BOOKMARKS_ERR: boom" {
		t.Errorf("Error() = %q", got)
	}

	if ReasonOf(errors.New("plain")) != "" {
		t.Error("ReasonOf() of a plain error should be empty")
	}
}
