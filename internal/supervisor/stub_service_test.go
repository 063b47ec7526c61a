// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package supervisor

import (
	"context"
	"fmt"
	"sync/atomic"
)

// stubService stands in for storage.GCService, events.Router and the HTTP
// server. It crashes on its first failures runs, then blocks until stopped.
type stubService struct {
	name     string
	failures int32
	starts   atomic.Int32
}

func newStubService(name string) *stubService {
	return &stubService{name: name}
}

// crashing returns a stub whose first n runs fail.
func crashing(name string, n int32) *stubService {
	return &stubService{name: name, failures: n}
}

func (s *stubService) Serve(ctx context.Context) error {
	run := s.starts.Add(1)
	if run <= s.failures {
		return fmt.Errorf("%s: crash %d", s.name, run)
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *stubService) Starts() int32 { return s.starts.Load() }

func (s *stubService) String() string { return s.name }
