// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package events

import "time"

// BusConfig selects and tunes the message transport.
type BusConfig struct {
	// NATSURL switches the bus to NATS when set. Empty means in-process gochannel.
	NATSURL string

	// JetStream enables JetStream persistence on NATS.
	JetStream bool

	// StreamName is the JetStream stream holding every video.* subject.
	StreamName string

	// DurableName prefixes JetStream durable consumers.
	DurableName string

	// QueueGroup load-balances subscribers across instances on NATS.
	QueueGroup string

	// SubscribersCount is the number of NATS subscriber goroutines per topic.
	SubscribersCount int

	// BufferSize is the gochannel output buffer.
	BufferSize int64

	MaxReconnects int
	ReconnectWait time.Duration
	AckWait       time.Duration
	CloseTimeout  time.Duration
}

// DefaultBusConfig returns an in-process bus configuration.
func DefaultBusConfig() BusConfig {
	return BusConfig{
		StreamName:       "CAPTIONMAP",
		DurableName:      "captionmap",
		QueueGroup:       "captionmap",
		SubscribersCount: 2,
		BufferSize:       256,
		MaxReconnects:    -1,
		ReconnectWait:    2 * time.Second,
		AckWait:          30 * time.Second,
		CloseTimeout:     30 * time.Second,
	}
}

// RouterConfig holds configuration for the consumer Router.
type RouterConfig struct {
	// CloseTimeout is how long to wait for handlers to finish when closing.
	CloseTimeout time.Duration

	RetryMaxRetries      int
	RetryInitialInterval time.Duration
	RetryMaxInterval     time.Duration
	RetryMultiplier      float64
}

// DefaultRouterConfig returns production defaults for the Router.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		CloseTimeout:         30 * time.Second,
		RetryMaxRetries:      3,
		RetryInitialInterval: 500 * time.Millisecond,
		RetryMaxInterval:     10 * time.Second,
		RetryMultiplier:      2.0,
	}
}
