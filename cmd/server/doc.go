// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

/*
Package main is the entry point for the Captionmap server.

Captionmap turns timed video captions into a keyphrase index. Caption
fragments are grouped into fixed-length windows, each window is run through
an entity extractor, and the resulting map from keyphrase to window start
times is stored per video alongside user bookmarks.

# Application Architecture

Long-running components run under Suture v4 supervision:

	RootSupervisor ("captionmap")
	├── DataSupervisor ("data-layer")
	│   ├── BadgerDB value log GC
	│   └── Pipeline result cache janitor
	├── MessagingSupervisor ("messaging-layer")
	│   └── Watermill event router (keyphrase search index)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Document store: BadgerDB
 4. Entity extractor: Cloud Natural Language behind a circuit breaker, or the mock
 5. Pipeline: segmenter, extractor and aggregator
 6. Event bus: Watermill over gochannel, over NATS when NATS_URL is set, or over
    an embedded nats-server with JetStream when NATS_EMBEDDED=true
 7. Search index: rebuilt from storage, then kept current by events
 8. Supervisor tree and HTTP server

# Configuration

Priority: Environment variables > Config file > Defaults

	HTTP_PORT=8080
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console
	BADGER_PATH=/data/captionmap
	NLP_PROVIDER=cloud           # cloud or mock
	GOOGLE_APPLICATION_CREDENTIALS=/secrets/sa.json
	PIPELINE_THRESHOLD=20        # window length in seconds
	PIPELINE_FAILURE_POLICY=skip # skip or abort
	NATS_URL=nats://localhost:4222
	# or, for a single instance with durable events:
	NATS_EMBEDDED=true
	NATS_STORE_DIR=/data/captionmap/nats

Log settings in the config file are reloaded when the file changes.

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests within HTTP_SHUTDOWN_TIMEOUT, the event router stops consuming, and
the embedded NATS server (if any) stops after the bus, and the store is closed
last.
*/
package main
