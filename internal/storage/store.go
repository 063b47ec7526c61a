// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/tomtom215/captionmap/internal/logging"
)

// Config controls how the BadgerDB document store is opened.
type Config struct {
	// Path is the directory holding the BadgerDB files. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM. Used by tests and the offline CLI.
	InMemory bool

	// SyncWrites forces fsync after every write.
	SyncWrites bool

	// Compression enables Snappy block compression.
	Compression bool

	// GCInterval is the pause between value log GC runs. Zero disables the GC service.
	GCInterval time.Duration

	// GCRatio is the discard ratio handed to RunValueLogGC.
	GCRatio float64
}

// DefaultConfig returns production defaults rooted at path.
func DefaultConfig(path string) Config {
	return Config{
		Path:        path,
		SyncWrites:  true,
		Compression: true,
		GCInterval:  10 * time.Minute,
		GCRatio:     0.5,
	}
}

// DB owns the BadgerDB handle shared by the caption and bookmark stores.
type DB struct {
	db  *badger.DB
	cfg Config
}

// Open opens (or creates) the document store.
func Open(cfg Config) (*DB, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("storage path is required unless running in memory")
	}
	if cfg.GCRatio <= 0 || cfg.GCRatio >= 1 {
		cfg.GCRatio = 0.5
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.SyncWrites = cfg.SyncWrites && !cfg.InMemory
	if cfg.Compression {
		opts.Compression = options.Snappy
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", opts.SyncWrites).
		Bool("compression", cfg.Compression).
		Msg("Document store opened")

	return &DB{db: db, cfg: cfg}, nil
}

// Captions returns a CaptionStore backed by this database.
func (d *DB) Captions() *CaptionStore {
	return NewCaptionStore(d.db)
}

// Bookmarks returns a BookmarkStore backed by this database.
func (d *DB) Bookmarks() *BookmarkStore {
	return NewBookmarkStore(d.db)
}

// Badger exposes the raw handle for tests and maintenance tooling.
func (d *DB) Badger() *badger.DB {
	return d.db
}

// Ping reports whether the database is open and can serve a read transaction.
func (d *DB) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d.db.IsClosed() {
		return errors.New("BadgerDB is closed")
	}
	return d.db.View(func(*badger.Txn) error { return nil })
}

// Close flushes and closes the database.
func (d *DB) Close() error {
	if err := d.db.Close(); err != nil {
		return fmt.Errorf("close BadgerDB: %w", err)
	}
	logging.Info().Msg("Document store closed")
	return nil
}

// RunGC runs value log garbage collection until nothing is left to rewrite.
func (d *DB) RunGC() error {
	if d.cfg.InMemory {
		return nil
	}
	for {
		err := d.db.RunValueLogGC(d.cfg.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// GCService runs RunGC on an interval under the supervisor.
type GCService struct {
	db       *DB
	interval time.Duration
}

// NewGCService wraps db in a supervised garbage collection loop.
func NewGCService(db *DB) *GCService {
	return &GCService{db: db, interval: db.cfg.GCInterval}
}

// Serve implements suture.Service.
func (s *GCService) Serve(ctx context.Context) error {
	if s.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			if err := s.db.RunGC(); err != nil {
				logging.Warn().Err(err).Msg("Value log GC failed")
				continue
			}
			logging.Debug().Dur("duration", time.Since(start)).Msg("Value log GC complete")
		}
	}
}

// String implements fmt.Stringer for supervisor logs.
func (s *GCService) String() string {
	return "badger-gc"
}
