// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/tomtom215/captionmap/internal/captions"
	"github.com/tomtom215/captionmap/internal/config"
	"github.com/tomtom215/captionmap/internal/events"
	"github.com/tomtom215/captionmap/internal/logging"
	"github.com/tomtom215/captionmap/internal/nlp"
	"github.com/tomtom215/captionmap/internal/pipeline"
	"github.com/tomtom215/captionmap/internal/storage"
)

// loggingConfig maps the logging section onto the zerolog setup.
func loggingConfig(cfg config.LoggingConfig) logging.Config {
	lc := logging.DefaultConfig()
	if cfg.Level != "" {
		lc.Level = cfg.Level
	}
	if cfg.Format != "" {
		lc.Format = cfg.Format
	}
	lc.Caller = cfg.Caller
	return lc
}

func storageConfig(cfg config.StorageConfig) storage.Config {
	return storage.Config{
		Path:        cfg.Path,
		InMemory:    cfg.InMemory,
		SyncWrites:  cfg.SyncWrites,
		Compression: cfg.Compression,
		GCInterval:  cfg.GCInterval,
		GCRatio:     cfg.GCRatio,
	}
}

func busConfig(cfg config.EventsConfig) events.BusConfig {
	bc := events.DefaultBusConfig()
	bc.NATSURL = cfg.NATSURL
	bc.JetStream = cfg.JetStream
	if cfg.StreamName != "" {
		bc.StreamName = cfg.StreamName
	}
	if cfg.DurableName != "" {
		bc.DurableName = cfg.DurableName
	}
	if cfg.QueueGroup != "" {
		bc.QueueGroup = cfg.QueueGroup
	}
	if cfg.SubscribersCount > 0 {
		bc.SubscribersCount = cfg.SubscribersCount
	}
	if cfg.BufferSize > 0 {
		bc.BufferSize = cfg.BufferSize
	}
	if cfg.CloseTimeout > 0 {
		bc.CloseTimeout = cfg.CloseTimeout
	}
	return bc
}

func embeddedServerConfig(cfg config.EventsConfig) events.ServerConfig {
	sc := events.DefaultServerConfig()
	sc.Host = cfg.EmbeddedHost
	sc.Port = cfg.EmbeddedPort
	sc.StoreDir = cfg.StoreDir
	return sc
}

// initEmbeddedNATS starts the in-process NATS server when configured and
// points the bus at it with JetStream on. The returned server is nil otherwise.
func initEmbeddedNATS(cfg *config.EventsConfig) (*events.EmbeddedServer, error) {
	if !cfg.Embedded {
		return nil, nil
	}
	srv, err := events.StartEmbeddedServer(embeddedServerConfig(*cfg))
	if err != nil {
		return nil, err
	}
	cfg.NATSURL = srv.ClientURL()
	cfg.JetStream = true
	logging.Info().Str("url", cfg.NATSURL).Str("store_dir", cfg.StoreDir).Msg("Embedded NATS server started")
	return srv, nil
}

func routerConfig(cfg config.EventsConfig) events.RouterConfig {
	rc := events.DefaultRouterConfig()
	if cfg.RetryMaxRetries >= 0 {
		rc.RetryMaxRetries = cfg.RetryMaxRetries
	}
	if cfg.RetryInitialInterval > 0 {
		rc.RetryInitialInterval = cfg.RetryInitialInterval
	}
	if cfg.RetryMaxInterval > 0 {
		rc.RetryMaxInterval = cfg.RetryMaxInterval
	}
	if cfg.CloseTimeout > 0 {
		rc.CloseTimeout = cfg.CloseTimeout
	}
	return rc
}

func cloudConfig(cfg config.NLPConfig) nlp.CloudConfig {
	cc := nlp.DefaultCloudConfig()
	if cfg.SalienceThreshold > 0 {
		cc.SalienceThreshold = float32(cfg.SalienceThreshold)
	}
	if cfg.AcademicSalienceThreshold > 0 {
		cc.AcademicSalienceThreshold = float32(cfg.AcademicSalienceThreshold)
	}
	if cfg.CategoryConfidence > 0 {
		cc.CategoryConfidence = float32(cfg.CategoryConfidence)
	}
	if cfg.MinClassifyTokens > 0 {
		cc.MinClassifyTokens = cfg.MinClassifyTokens
	}
	if len(cfg.AcademicCategories) > 0 {
		cc.AcademicCategories = cfg.AcademicCategories
	}
	return cc
}

func resilienceConfig(cfg config.NLPConfig) nlp.ResilienceConfig {
	rc := nlp.DefaultResilienceConfig(nlp.ProviderCloud)
	if cfg.Timeout > 0 {
		rc.Timeout = cfg.Timeout
	}
	if cfg.RatePerSecond > 0 {
		rc.RatePerSecond = cfg.RatePerSecond
	}
	if cfg.Burst > 0 {
		rc.Burst = cfg.Burst
	}
	if cfg.BreakerFailureRatio > 0 {
		rc.FailureRatio = cfg.BreakerFailureRatio
	}
	if cfg.BreakerOpenTimeout > 0 {
		rc.OpenTimeout = cfg.BreakerOpenTimeout
	}
	return rc
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// initExtractor builds the configured entity extractor. The returned closer
// releases the cloud client and is never nil.
func initExtractor(ctx context.Context, cfg config.NLPConfig) (nlp.EntityExtractor, io.Closer, error) {
	switch cfg.Provider {
	case nlp.ProviderMock:
		logging.Warn().Msg("Using the mock entity extractor (NLP_PROVIDER=mock)")
		return nlp.NewMockExtractor(), closerFunc(func() error { return nil }), nil
	case nlp.ProviderCloud, "":
		client, err := nlp.NewLanguageClient(ctx, cfg.CredentialsFile)
		if err != nil {
			return nil, nil, err
		}
		extractor := nlp.NewResilientExtractor(nlp.NewCloudExtractor(client, cloudConfig(cfg)), resilienceConfig(cfg))
		logging.Info().Dur("timeout", cfg.Timeout).Float64("rate_per_second", cfg.RatePerSecond).Msg("Cloud Natural Language extractor initialized")
		return extractor, client, nil
	default:
		return nil, nil, fmt.Errorf("unknown NLP provider %q", cfg.Provider)
	}
}

// newPipeline returns the driver used for every indexing request.
func newPipeline(cfg config.PipelineConfig, extractor nlp.EntityExtractor) (*pipeline.Driver, error) {
	policy, err := pipeline.ParsePolicy(cfg.FailurePolicy)
	if err != nil {
		return nil, err
	}
	d := pipeline.New(extractor)
	d.Segmenter = captions.NewSegmenter(cfg.Threshold)
	d.Policy = policy
	if cfg.Workers > 0 {
		d.Workers = cfg.Workers
	}
	return d, nil
}
