// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"

	"github.com/tomtom215/captionmap/internal/metrics"
)

// HandlerFunc consumes one decoded event. Returning an error triggers a retry.
type HandlerFunc func(ctx context.Context, ev VideoEvent) error

type consumer struct {
	name    string
	topic   string
	handler HandlerFunc
}

// Router runs registered consumers against the bus subscriber. It implements
// suture.Service: every Serve call builds a new Watermill router, since a
// Watermill router cannot be restarted once closed.
type Router struct {
	subscriber message.Subscriber
	config     RouterConfig
	logger     watermill.LoggerAdapter

	mu        sync.Mutex
	consumers []consumer
	running   chan struct{}
}

// NewRouter creates a Router consuming from bus.
func NewRouter(bus *Bus, cfg RouterConfig, logger watermill.LoggerAdapter) *Router {
	return newRouter(bus.Subscriber(), cfg, logger)
}

func newRouter(sub message.Subscriber, cfg RouterConfig, logger watermill.LoggerAdapter) *Router {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Router{
		subscriber: sub,
		config:     cfg,
		logger:     logger,
		running:    make(chan struct{}),
	}
}

// AddConsumer registers handler for topic. Call before Serve.
func (r *Router) AddConsumer(name, topic string, handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consumers = append(r.consumers, consumer{name: name, topic: topic, handler: handler})
}

// Running is closed once the first Serve has all handlers subscribed.
func (r *Router) Running() <-chan struct{} {
	return r.running
}

// Serve builds the Watermill router and blocks until ctx is canceled.
func (r *Router) Serve(ctx context.Context) error {
	wmRouter, err := r.build()
	if err != nil {
		return err
	}

	go func() {
		select {
		case <-wmRouter.Running():
			r.markRunning()
		case <-ctx.Done():
		}
	}()

	if err := wmRouter.Run(ctx); err != nil {
		return fmt.Errorf("event router: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for supervisor logs.
func (r *Router) String() string {
	return "event-router"
}

func (r *Router) build() (*message.Router, error) {
	wmRouter, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: r.config.CloseTimeout,
	}, r.logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill router: %w", err)
	}

	// Recoverer sits inside Retry so a panic is retried like any other failure.
	wmRouter.AddMiddleware(
		middleware.Retry{
			MaxRetries:      r.config.RetryMaxRetries,
			InitialInterval: r.config.RetryInitialInterval,
			MaxInterval:     r.config.RetryMaxInterval,
			Multiplier:      r.config.RetryMultiplier,
			Logger:          r.logger,
		}.Middleware,
		middleware.Recoverer,
	)

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.consumers {
		wmRouter.AddConsumerHandler(c.name, c.topic, r.subscriber, decodeHandler(c))
	}
	return wmRouter, nil
}

func (r *Router) markRunning() {
	r.mu.Lock()
	defer r.mu.Unlock()
	select {
	case <-r.running:
	default:
		close(r.running)
	}
}

func decodeHandler(c consumer) message.NoPublishHandlerFunc {
	return func(msg *message.Message) error {
		ev, err := Decode(msg)
		if err != nil {
			// Undecodable payloads are acked; retrying cannot fix them.
			metrics.RecordEventConsumed(c.topic, err)
			return nil
		}
		err = c.handler(msg.Context(), ev)
		metrics.RecordEventConsumed(c.topic, err)
		return err
	}
}
