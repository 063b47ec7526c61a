// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultNATSImage matches the nats-server version embedded by captionmap.
	DefaultNATSImage = "nats:2.12-alpine"

	natsClientPort = "4222/tcp"
)

// NATS is a JetStream-enabled server running in a container.
type NATS struct {
	testcontainers.Container

	// URL is the nats:// address reachable from the test process.
	URL string
}

// NATSOption configures StartNATS.
type NATSOption func(*natsOptions)

type natsOptions struct {
	image        string
	startTimeout time.Duration
}

// WithNATSImage overrides DefaultNATSImage.
func WithNATSImage(image string) NATSOption {
	return func(o *natsOptions) { o.image = image }
}

// WithStartTimeout bounds the wait for the server to accept clients.
func WithStartTimeout(d time.Duration) NATSOption {
	return func(o *natsOptions) { o.startTimeout = d }
}

// StartNATS runs a NATS server with JetStream for the lifetime of t. It
// skips t without Docker and fails it when the container does not come up.
//
//	srv := testinfra.StartNATS(t)
//	cfg := events.DefaultBusConfig()
//	cfg.NATSURL, cfg.JetStream = srv.URL, true
func StartNATS(t *testing.T, opts ...NATSOption) *NATS {
	t.Helper()
	RequireDocker(t)

	o := natsOptions{image: DefaultNATSImage, startTimeout: time.Minute}
	for _, opt := range opts {
		opt(&o)
	}

	ctx, cancel := context.WithTimeout(context.Background(), o.startTimeout+30*time.Second)
	defer cancel()

	srv, err := startNATS(ctx, o)
	if err != nil {
		t.Fatalf("start NATS container: %v", err)
	}
	terminateOnCleanup(t, srv.Container)
	return srv
}

func startNATS(ctx context.Context, o natsOptions) (*NATS, error) {
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        o.image,
			ExposedPorts: []string{natsClientPort},
			Cmd:          []string{"-js"},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort(natsClientPort),
				wait.ForLog("Server is ready"),
			).WithStartupTimeout(o.startTimeout),
		},
		Started: true,
	})
	if err != nil {
		if c != nil {
			_ = testcontainers.TerminateContainer(c)
		}
		return nil, err
	}

	endpoint, err := c.PortEndpoint(ctx, natsClientPort, "nats")
	if err != nil {
		_ = testcontainers.TerminateContainer(c)
		return nil, fmt.Errorf("resolve client endpoint: %w", err)
	}
	return &NATS{Container: c, URL: endpoint}, nil
}
