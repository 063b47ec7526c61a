// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

/*
Package supervisor provides process supervision for Captionmap using suture v4.

The tree groups long-running services into three layers so a failure in one
restarts only its own subtree:

	RootSupervisor ("captionmap")
	├── DataSupervisor ("data-layer")
	│   ├── storage.GCService ("badger-gc")
	│   └── cache.Cache ("cache-pipeline")
	├── MessagingSupervisor ("messaging-layer")
	│   └── events.Router ("event-router")
	└── APISupervisor ("api-layer")
	    └── services.HTTPServerService ("http-server")

Supervisor events (start, failure, backoff) are logged through sutureslog,
which writes to zerolog via logging.NewSlogHandler.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddDataService(storage.NewGCService(db))
	tree.AddMessagingService(router)
	tree.AddAPIService(services.NewHTTPServerService(newServer, cfg.Server.ShutdownTimeout))

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    logging.Error().Err(err).Msg("Supervisor tree exited")
	}

Every service must return promptly once its context is canceled; services
still running after ShutdownTimeout appear in UnstoppedServiceReport.
*/
package supervisor
