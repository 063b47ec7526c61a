// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package nlp

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/captionmap/internal/logging"
	"github.com/tomtom215/captionmap/internal/metrics"
)

// ResilienceConfig configures ResilientExtractor.
type ResilienceConfig struct {
	// Name labels metrics and the circuit breaker.
	Name string

	// Timeout bounds each call. Zero disables the per-call timeout.
	Timeout time.Duration

	// RatePerSecond limits call rate. Zero disables limiting.
	RatePerSecond float64
	Burst         int

	// Circuit breaker settings. Zero values use the defaults below.
	MinRequests    uint32
	FailureRatio   float64
	OpenTimeout    time.Duration
	HalfOpenProbes uint32
	CountsInterval time.Duration
}

// DefaultResilienceConfig returns production defaults: the breaker opens
// after at least 10 calls with a 60% failure rate and probes again after
// two minutes.
func DefaultResilienceConfig(name string) ResilienceConfig {
	return ResilienceConfig{
		Name:           name,
		Timeout:        30 * time.Second,
		RatePerSecond:  10,
		Burst:          5,
		MinRequests:    10,
		FailureRatio:   0.6,
		OpenTimeout:    2 * time.Minute,
		HalfOpenProbes: 3,
		CountsInterval: time.Minute,
	}
}

// ResilientExtractor guards an EntityExtractor with a timeout, a rate limiter
// and a circuit breaker.
type ResilientExtractor struct {
	inner   EntityExtractor
	name    string
	timeout time.Duration
	limiter *rate.Limiter
	cb      *gobreaker.CircuitBreaker[[]string]
}

// NewResilientExtractor wraps inner.
func NewResilientExtractor(inner EntityExtractor, cfg ResilienceConfig) *ResilientExtractor {
	defaults := DefaultResilienceConfig(cfg.Name)
	if cfg.Name == "" {
		cfg.Name = "nlp"
	}
	if cfg.MinRequests == 0 {
		cfg.MinRequests = defaults.MinRequests
	}
	if cfg.FailureRatio <= 0 {
		cfg.FailureRatio = defaults.FailureRatio
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = defaults.OpenTimeout
	}
	if cfg.HalfOpenProbes == 0 {
		cfg.HalfOpenProbes = defaults.HalfOpenProbes
	}
	if cfg.CountsInterval <= 0 {
		cfg.CountsInterval = defaults.CountsInterval
	}

	r := &ResilientExtractor{
		inner:   inner,
		name:    cfg.Name,
		timeout: cfg.Timeout,
	}
	if cfg.RatePerSecond > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		r.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst)
	}

	metrics.CircuitBreakerState.WithLabelValues(cfg.Name).Set(0)
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(cfg.Name).Set(0)

	minRequests, failureRatio := cfg.MinRequests, cfg.FailureRatio
	r.cb = gobreaker.NewCircuitBreaker[[]string](gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenProbes,
		Interval:    cfg.CountsInterval,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < minRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			if ratio >= failureRatio {
				logging.Warn().Str("breaker", cfg.Name).Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", ratio*100).Msg("Opening circuit")
				return true
			}
			return false
		},
		// A caller giving up is not a provider failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().Str("breaker", name).Str("from", stateToString(from)).
				Str("to", stateToString(to)).Msg("Circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, stateToString(from), stateToString(to)).Inc()
			if to == gobreaker.StateClosed {
				metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(name).Set(0)
			}
		},
	})

	return r
}

// Entities implements EntityExtractor.
func (r *ResilientExtractor) Entities(ctx context.Context, text string) ([]string, error) {
	if r.limiter != nil {
		if err := r.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	entities, err := r.cb.Execute(func() ([]string, error) {
		return r.inner.Entities(ctx, text)
	})
	metrics.RecordNLPCall(r.name, time.Since(start), err)

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(r.name, "rejected").Inc()
			return nil, fmt.Errorf("%w: %w", ErrCircuitOpen, err)
		}
		metrics.CircuitBreakerRequests.WithLabelValues(r.name, "failure").Inc()
		metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(r.name).Set(float64(r.cb.Counts().ConsecutiveFailures))
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(r.name, "success").Inc()
	metrics.CircuitBreakerConsecutiveFailures.WithLabelValues(r.name).Set(0)
	return entities, nil
}

// State returns the circuit breaker state as a string.
func (r *ResilientExtractor) State() string {
	return stateToString(r.cb.State())
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
