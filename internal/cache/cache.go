// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package cache

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/tomtom215/captionmap/internal/metrics"
)

// DefaultSweepInterval is how often Serve drops expired entries.
const DefaultSweepInterval = 5 * time.Minute

type item[V any] struct {
	value   V
	expires time.Time
}

// Stats is a point-in-time view of a cache.
type Stats struct {
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
}

// Option tunes a Cache.
type Option func(*settings)

type settings struct {
	sweep time.Duration
	clock func() time.Time
}

// WithSweepInterval sets how often Serve drops expired entries.
func WithSweepInterval(d time.Duration) Option {
	return func(s *settings) {
		if d > 0 {
			s.sweep = d
		}
	}
}

// WithClock replaces time.Now. Tests use it to expire entries.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.clock = now }
}

// Cache maps fingerprints to values of type V. Every entry lives for the
// same TTL; expired entries miss on Get and are dropped by Sweep.
type Cache[V any] struct {
	name string
	ttl  time.Duration
	settings

	mu    sync.Mutex
	items map[string]item[V]

	hits, misses, evictions atomic.Uint64
}

// New returns a cache whose entries live for ttl. name labels the lookup
// metrics and the supervisor service.
func New[V any](name string, ttl time.Duration, opts ...Option) *Cache[V] {
	s := settings{sweep: DefaultSweepInterval, clock: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	return &Cache[V]{
		name:     name,
		ttl:      ttl,
		settings: s,
		items:    make(map[string]item[V]),
	}
}

// Get returns the live value under key.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	it, ok := c.items[key]
	if ok && !c.clock().Before(it.expires) {
		delete(c.items, key)
		c.evictions.Add(1)
		ok = false
	}
	c.mu.Unlock()

	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	metrics.RecordCacheLookup(c.name, ok)

	if !ok {
		var zero V
		return zero, false
	}
	return it.value, true
}

// Set stores value under key, replacing any previous entry and its expiry.
func (c *Cache[V]) Set(key string, value V) {
	c.mu.Lock()
	c.items[key] = item[V]{value: value, expires: c.clock().Add(c.ttl)}
	c.mu.Unlock()
}

// Remove drops key and reports whether it was present.
func (c *Cache[V]) Remove(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.items[key]; !ok {
		return false
	}
	delete(c.items, key)
	c.evictions.Add(1)
	return true
}

// Len counts stored entries, including expired ones not yet swept.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Sweep drops every expired entry and returns how many it dropped.
func (c *Cache[V]) Sweep() int {
	now := c.clock()
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for key, it := range c.items {
		if !now.Before(it.expires) {
			delete(c.items, key)
			n++
		}
	}
	c.evictions.Add(uint64(n))
	return n
}

func (c *Cache[V]) Stats() Stats {
	return Stats{
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
		Evictions: c.evictions.Load(),
		Size:      c.Len(),
	}
}

// Serve sweeps on every interval tick until ctx ends (suture.Service).
func (c *Cache[V]) Serve(ctx context.Context) error {
	ticker := time.NewTicker(c.sweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.Sweep()
		}
	}
}

func (c *Cache[V]) String() string {
	return "cache-" + c.name
}

// Fingerprint returns a hex BLAKE2b-256 digest over parts. Each part is
// length-prefixed so that ("ab","c") and ("a","bc") differ.
func Fingerprint(parts ...[]byte) string {
	h, _ := blake2b.New256(nil) // fails only for keys over 64 bytes
	var size [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(size[:], uint64(len(p)))
		h.Write(size[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}
