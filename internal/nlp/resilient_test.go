// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package nlp

import (
	"context"
	"errors"
	"reflect"
	"sync/atomic"
	"testing"
	"time"
)

func TestResilientExtractor_PassThrough(t *testing.T) {
	t.Parallel()

	cfg := DefaultResilienceConfig("test-pass")
	cfg.RatePerSecond = 0
	r := NewResilientExtractor(NewMockExtractor(), cfg)

	got, err := r.Entities(context.Background(), "a,b")
	if err != nil {
		t.Fatalf("Entities() error = %v", err)
	}
	if !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("Entities() = %v, want [a b]", got)
	}
	if r.State() != "closed" {
		t.Errorf("State() = %q, want closed", r.State())
	}
}

func TestResilientExtractor_OpensCircuit(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	failing := ExtractorFunc(func(context.Context, string) ([]string, error) {
		calls.Add(1)
		return nil, ErrExtractionFailed
	})

	cfg := DefaultResilienceConfig("test-open")
	cfg.RatePerSecond = 0
	r := NewResilientExtractor(failing, cfg)

	for i := 0; i < 10; i++ {
		if _, err := r.Entities(context.Background(), "x"); !errors.Is(err, ErrExtractionFailed) {
			t.Fatalf("call %d error = %v, want ErrExtractionFailed", i, err)
		}
	}

	if r.State() != "open" {
		t.Fatalf("State() = %q, want open", r.State())
	}

	_, err := r.Entities(context.Background(), "x")
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("error = %v, want ErrCircuitOpen", err)
	}
	if calls.Load() != 10 {
		t.Errorf("inner calls = %d, want 10", calls.Load())
	}
}

func TestResilientExtractor_Timeout(t *testing.T) {
	t.Parallel()

	slow := ExtractorFunc(func(ctx context.Context, _ string) ([]string, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return []string{"late"}, nil
		}
	})

	cfg := DefaultResilienceConfig("test-timeout")
	cfg.RatePerSecond = 0
	cfg.Timeout = 20 * time.Millisecond
	r := NewResilientExtractor(slow, cfg)

	_, err := r.Entities(context.Background(), "x")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
}

func TestResilientExtractor_CanceledContext(t *testing.T) {
	t.Parallel()

	cfg := DefaultResilienceConfig("test-cancel")
	cfg.RatePerSecond = 1
	cfg.Burst = 1
	r := NewResilientExtractor(NewMockExtractor(), cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := r.Entities(ctx, "a"); err == nil {
		t.Error("expected error for canceled context")
	}
}
