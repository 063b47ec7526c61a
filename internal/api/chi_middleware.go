// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/captionmap/internal/config"
)

// EdgeConfig configures the middleware in front of the routes.
type EdgeConfig struct {
	CORS CORSConfig

	// General applies to every API and legacy route.
	General RateLimit

	// Indexing applies on top of General to caption submissions, each of
	// which costs one NLP call per window.
	Indexing RateLimit
}

// CORSConfig lists what browsers may send. Empty Origins allows any origin.
type CORSConfig struct {
	Origins []string
	Methods []string
	Headers []string
	Exposed []string
	MaxAge  time.Duration
}

// RateLimit is a per-client request budget over a sliding window. Key
// defaults to the client IP.
type RateLimit struct {
	Requests int
	Window   time.Duration
	Disabled bool
	Key      httprate.KeyFunc
}

// DefaultEdgeConfig allows any origin, 60 requests a minute and 10 caption
// submissions a minute per client.
func DefaultEdgeConfig() EdgeConfig {
	return EdgeConfig{
		CORS: CORSConfig{
			Methods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			Headers: []string{"Content-Type", "X-Request-ID"},
			Exposed: []string{"X-Request-ID"},
			MaxAge:  24 * time.Hour,
		},
		General:  RateLimit{Requests: 60, Window: time.Minute},
		Indexing: RateLimit{Requests: 10, Window: time.Minute},
	}
}

// EdgeConfigFrom maps the security section of the application config.
func EdgeConfigFrom(sec config.SecurityConfig) EdgeConfig {
	cfg := DefaultEdgeConfig()
	cfg.CORS.Origins = sec.CORSOrigins
	cfg.General = RateLimit{Requests: sec.RateLimitReqs, Window: sec.RateLimitWindow, Disabled: sec.RateLimitDisabled}
	cfg.Indexing = RateLimit{
		Requests: sec.IndexRateLimitReqs,
		Window:   sec.RateLimitWindow,
		Disabled: sec.RateLimitDisabled || sec.IndexRateLimitReqs == 0,
	}
	return cfg
}

func passThrough(next http.Handler) http.Handler { return next }

// Handler returns the go-chi/cors middleware. It must run globally so
// preflight OPTIONS requests reach it.
func (c CORSConfig) Handler() func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins: c.Origins,
		AllowedMethods: c.Methods,
		AllowedHeaders: c.Headers,
		ExposedHeaders: c.Exposed,
		MaxAge:         int(c.MaxAge / time.Second),
	})
}

// Handler returns a go-chi/httprate limiter answering with a
// TOO_MANY_REQUESTS envelope. Each call creates an independent budget.
func (l RateLimit) Handler() func(http.Handler) http.Handler {
	if l.Disabled || l.Requests <= 0 {
		return passThrough
	}

	key := l.Key
	if key == nil {
		key = httprate.KeyByIP
	}
	return httprate.Limit(l.Requests, l.Window,
		httprate.WithKeyFuncs(key),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			NewResponseWriter(w, r).TooManyRequests("Rate limit exceeded, retry later")
		}),
	)
}
