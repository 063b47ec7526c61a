// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

// Package testinfra provides containers for integration tests.
//
// It uses testcontainers-go to run a real NATS JetStream server so the event
// bus can be exercised against the same broker it talks to in production:
//
//	func TestBusOverNATS(t *testing.T) {
//	    srv := testinfra.StartNATS(t)
//	    // connect events.NewBus to srv.URL
//	}
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./...
//
// StartNATS skips the test when Docker is unavailable and terminates the
// container when the test ends. The first run pulls the image.
package testinfra
