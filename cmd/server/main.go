// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/captionmap/internal/api"
	"github.com/tomtom215/captionmap/internal/cache"
	"github.com/tomtom215/captionmap/internal/config"
	"github.com/tomtom215/captionmap/internal/events"
	"github.com/tomtom215/captionmap/internal/logging"
	"github.com/tomtom215/captionmap/internal/pipeline"
	"github.com/tomtom215/captionmap/internal/search"
	"github.com/tomtom215/captionmap/internal/storage"
	"github.com/tomtom215/captionmap/internal/supervisor"
	"github.com/tomtom215/captionmap/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(loggingConfig(cfg.Logging))
	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("nlp_provider", cfg.NLP.Provider).
		Int64("threshold", cfg.Pipeline.Threshold).
		Msg("Starting Captionmap")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := storage.Open(storageConfig(cfg.Storage))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open document store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing document store")
		}
	}()
	logging.Info().Str("path", cfg.Storage.Path).Bool("in_memory", cfg.Storage.InMemory).Msg("Document store opened")

	extractor, extractorCloser, err := initExtractor(ctx, cfg.NLP)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize entity extractor")
	}
	defer func() {
		if err := extractorCloser.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing entity extractor")
		}
	}()

	driver, err := newPipeline(cfg.Pipeline, extractor)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to configure pipeline")
	}

	var resultCache *api.ResultCache
	if cfg.Cache.Enabled {
		resultCache = cache.New[*pipeline.Result]("pipeline", cfg.Cache.TTL)
	}

	natsServer, err := initEmbeddedNATS(&cfg.Events)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to start embedded NATS server")
	}
	if natsServer != nil {
		defer func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer shutdownCancel()
			if err := natsServer.Shutdown(shutdownCtx); err != nil {
				logging.Error().Err(err).Msg("Error stopping embedded NATS server")
			}
		}()
	}

	watermillLogger := logging.NewWatermillAdapter()
	bus, err := events.NewBus(ctx, busConfig(cfg.Events), watermillLogger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create event bus")
	}
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing event bus")
		}
	}()
	eventRouter := events.NewRouter(bus, routerConfig(cfg.Events), watermillLogger)

	index := search.NewKeyphraseIndex()
	if err := index.Rebuild(ctx, db.Captions()); err != nil {
		logging.Fatal().Err(err).Msg("Failed to build keyphrase index")
	}
	index.Register(eventRouter)
	logging.Info().Int("keyphrases", index.Size()).Msg("Keyphrase index built")

	handler := api.NewHandler(api.Options{
		Captions:  db.Captions(),
		Bookmarks: db.Bookmarks(),
		Pipeline:  driver,
		Provider:  cfg.NLP.Provider,
		Cache:     resultCache,
		Publisher: bus,
		Search:    index,
		Checks: map[string]api.ReadinessCheck{
			"storage": db.Ping,
			"events":  api.RouterReadiness(eventRouter.Running()),
		},
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	})
	router := api.NewRouter(handler, api.EdgeConfigFrom(cfg.Security))
	chiHandler := router.SetupChi()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  cfg.Server.ShutdownTimeout + 5*time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if cfg.Storage.GCInterval > 0 && !cfg.Storage.InMemory {
		tree.AddDataService(storage.NewGCService(db))
	}
	if resultCache != nil {
		tree.AddDataService(resultCache)
	}
	tree.AddMessagingService(eventRouter)
	tree.AddAPIService(services.NewHTTPServerService(func() services.HTTPServer {
		return &http.Server{
			Addr:         cfg.Server.Addr(),
			Handler:      chiHandler,
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
			IdleTimeout:  cfg.Server.IdleTimeout,
		}
	}, cfg.Server.ShutdownTimeout))

	supervised := tree.Services()
	for _, layer := range supervisor.Layers {
		logging.Debug().Str("layer", string(layer)).Strs("services", supervised[layer]).Msg("Supervised services")
	}

	if path := config.ConfigFilePath(); path != "" {
		if err := config.WatchConfigFile(path, reloadLogging); err != nil {
			logging.Warn().Err(err).Str("path", path).Msg("Config file watch disabled")
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := tree.ServeBackground(ctx)
	logging.Info().Str("addr", cfg.Server.Addr()).Msg("Captionmap listening")

	var treeErr error
	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
		cancel()
		treeErr = <-errCh
	case treeErr = <-errCh:
		cancel()
	}
	if treeErr != nil && !errors.Is(treeErr, context.Canceled) {
		logging.Error().Err(treeErr).Msg("Supervisor tree stopped with error")
	}

	if unstopped, _ := tree.UnstoppedServiceReport(); len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop in time")
		}
	}

	logging.Info().Msg("Captionmap stopped")
}

// reloadLogging re-reads the configuration after a config file change and
// applies the new logging settings. Everything else needs a restart.
func reloadLogging() {
	cfg, err := config.Load()
	if err != nil {
		logging.Warn().Err(err).Msg("Ignoring invalid configuration change")
		return
	}
	logging.Init(loggingConfig(cfg.Logging))
	logging.Info().Str("level", cfg.Logging.Level).Msg("Logging configuration reloaded")
}
