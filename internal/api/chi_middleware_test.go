// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/captionmap/internal/config"
	"github.com/tomtom215/captionmap/internal/pipeline"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func serveFrom(h http.Handler, method, target, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	req.RemoteAddr = remote
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestDefaultEdgeConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultEdgeConfig()
	if len(cfg.CORS.Origins) != 0 {
		t.Errorf("CORS.Origins = %v, want any origin", cfg.CORS.Origins)
	}
	if cfg.CORS.MaxAge != 24*time.Hour {
		t.Errorf("CORS.MaxAge = %v, want 24h", cfg.CORS.MaxAge)
	}
	if cfg.Indexing.Requests >= cfg.General.Requests {
		t.Errorf("indexing budget %d should be tighter than general %d", cfg.Indexing.Requests, cfg.General.Requests)
	}
}

func TestEdgeConfigFrom(t *testing.T) {
	t.Parallel()

	cfg := EdgeConfigFrom(config.SecurityConfig{
		RateLimitReqs:      200,
		IndexRateLimitReqs: 20,
		RateLimitWindow:    2 * time.Minute,
		CORSOrigins:        []string{"https://a.example", "https://b.example"},
	})
	if len(cfg.CORS.Origins) != 2 || cfg.CORS.MaxAge != 24*time.Hour {
		t.Errorf("CORS = %+v", cfg.CORS)
	}
	if cfg.General.Requests != 200 || cfg.General.Window != 2*time.Minute || cfg.General.Disabled {
		t.Errorf("General = %+v", cfg.General)
	}
	if cfg.Indexing.Requests != 20 || cfg.Indexing.Window != 2*time.Minute || cfg.Indexing.Disabled {
		t.Errorf("Indexing = %+v", cfg.Indexing)
	}

	off := EdgeConfigFrom(config.SecurityConfig{RateLimitReqs: 60, RateLimitWindow: time.Minute})
	if !off.Indexing.Disabled || off.General.Disabled {
		t.Errorf("zero index budget should disable only the indexing limiter: %+v / %+v", off.General, off.Indexing)
	}

	all := EdgeConfigFrom(config.SecurityConfig{RateLimitDisabled: true, IndexRateLimitReqs: 5})
	if !all.General.Disabled || !all.Indexing.Disabled {
		t.Error("DISABLE_RATE_LIMIT should turn off both limiters")
	}
}

func TestCORS_AllowedOrigin(t *testing.T) {
	t.Parallel()

	handler := CORSConfig{
		Origins: []string{"https://a.example"},
		Methods: []string{"GET", "POST"},
		Headers: []string{"Content-Type"},
	}.Handler()(okHandler())

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/captions", nil)
	req.Header.Set("Origin", "https://a.example")
	req.Header.Set("Access-Control-Request-Method", "POST")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://a.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/captions", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("disallowed origin got Access-Control-Allow-Origin = %q", got)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	t.Parallel()

	for name, limit := range map[string]RateLimit{
		"disabled":    {Requests: 1, Window: time.Minute, Disabled: true},
		"zero budget": {Window: time.Minute},
	} {
		handler := limit.Handler()(okHandler())
		for i := 0; i < 5; i++ {
			if rec := serveFrom(handler, http.MethodGet, "/", "192.0.2.1:1"); rec.Code != http.StatusOK {
				t.Fatalf("%s: request %d status %d, want 200", name, i, rec.Code)
			}
		}
	}
}

func TestRateLimit_RejectsWithEnvelope(t *testing.T) {
	t.Parallel()

	handler := RateLimit{Requests: 2, Window: time.Minute}.Handler()(okHandler())

	var last *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		last = serveFrom(handler, http.MethodGet, "/", "192.0.2.10:1234")
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("third request status = %d, want 429", last.Code)
	}
	if !strings.Contains(last.Body.String(), ErrCodeTooManyRequests) {
		t.Errorf("body = %s, want %s code", last.Body.String(), ErrCodeTooManyRequests)
	}

	if rec := serveFrom(handler, http.MethodGet, "/", "192.0.2.11:1234"); rec.Code != http.StatusOK {
		t.Errorf("other client status = %d, want 200", rec.Code)
	}
}

func TestRouter_IndexingBudget(t *testing.T) {
	env := newTestEnv(t, failingExtractor(errors.New("unused")), pipeline.PolicySkip)
	server := NewRouter(env.handler, EdgeConfig{
		General:  RateLimit{Requests: 100, Window: time.Minute},
		Indexing: RateLimit{Requests: 1, Window: time.Minute},
	}).SetupChi()

	post := func(target string) int {
		req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(testCaptions))
		req.Header.Set("Content-Type", "application/json")
		req.RemoteAddr = "192.0.2.20:1234"
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := post("/api/v1/captions?mock=true"); code != http.StatusOK {
		t.Fatalf("first submission status = %d, want 200", code)
	}
	if code := post("/caption?mock=true"); code != http.StatusTooManyRequests {
		t.Errorf("legacy submission status = %d, want 429 from the shared budget", code)
	}
	if rec := serveFrom(server, http.MethodGet, "/api/v1/captions/vid123", "192.0.2.20:1234"); rec.Code != http.StatusOK {
		t.Errorf("read status = %d, reads should not use the indexing budget", rec.Code)
	}
}
