// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

/*
Package events carries video lifecycle notifications over Watermill.

Two topics are published by the HTTP layer:

  - video.indexed: a keyphrase map was stored for a video
  - video.deleted: a video and everything under it was removed

The Bus picks its transport from configuration. With no NATS URL it uses an
in-process gochannel pub/sub; otherwise it connects to NATS, optionally through
JetStream. Publishing goes through a circuit breaker so a dead broker cannot
stall caption submissions.

Consumers register on a Router, which rebuilds a Watermill router with
Recoverer and Retry middleware each time the supervisor starts it:

	router := events.NewRouter(bus, events.DefaultRouterConfig(), logger)
	router.AddConsumer("search-indexed", events.TopicVideoIndexed, index.HandleIndexed)
	tree.AddMessagingService(router)
*/
package events
