// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package api

import (
	"context"
	"time"

	"github.com/tomtom215/captionmap/internal/cache"
	"github.com/tomtom215/captionmap/internal/captions"
	"github.com/tomtom215/captionmap/internal/events"
	"github.com/tomtom215/captionmap/internal/logging"
	"github.com/tomtom215/captionmap/internal/models"
	"github.com/tomtom215/captionmap/internal/nlp"
	"github.com/tomtom215/captionmap/internal/pipeline"
	"github.com/tomtom215/captionmap/internal/search"
)

// ResultCache holds pipeline results keyed by cache.Fingerprint.
type ResultCache = cache.Cache[*pipeline.Result]

// CaptionStore is the part of storage.CaptionStore the handlers use.
type CaptionStore interface {
	IndexVideo(ctx context.Context, id string, meta *models.VideoMetadata, full []captions.TimeRangedText, tl *captions.Timeline) error
	Keyphrases(ctx context.Context, id string) (*captions.Timeline, error)
	TimesForKeyphrase(ctx context.Context, id, keyphrase string) ([]int64, error)
	FullCaptions(ctx context.Context, id string) ([]captions.TimeRangedText, error)
	Metadata(ctx context.Context, id string) (*models.VideoMetadata, error)
	AddMetadata(ctx context.Context, id string, meta models.VideoMetadata, mode models.MetadataMode) error
	DeleteMetadata(ctx context.Context, id string) error
	DeleteVideo(ctx context.Context, id string) error
	DeleteClause(ctx context.Context, id, keyphrase string) error
}

// BookmarkStore is the part of storage.BookmarkStore the handlers use.
type BookmarkStore interface {
	Add(ctx context.Context, email, videoID string, b models.Bookmark) (models.Bookmark, error)
	Remove(ctx context.Context, email, videoID, id string) error
	List(ctx context.Context, email, videoID string) ([]models.Bookmark, error)
}

// Suggester answers keyphrase prefix queries.
type Suggester interface {
	Suggest(prefix string, limit int) []search.Suggestion
}

// ReadinessCheck returns nil when a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// Options wires a Handler. Captions, Bookmarks and Pipeline are required;
// everything else is optional.
type Options struct {
	Captions  CaptionStore
	Bookmarks BookmarkStore

	// Pipeline runs indexing with the configured extractor, named by Provider.
	Pipeline *pipeline.Driver
	Provider string

	// Mock serves requests with mock=true. Defaults to Pipeline with the
	// comma-splitting mock extractor.
	Mock *pipeline.Driver

	Cache     *ResultCache
	Publisher events.Publisher
	Search    Suggester
	Checks    map[string]ReadinessCheck

	// MaxBodyBytes caps request bodies. Zero selects defaultMaxBodyBytes.
	MaxBodyBytes int64
}

const defaultMaxBodyBytes = 16 << 20

// Handler serves the captionmap HTTP API.
type Handler struct {
	captions  CaptionStore
	bookmarks BookmarkStore
	driver    *pipeline.Driver
	provider  string
	mock      *pipeline.Driver
	cache     *ResultCache
	publisher events.Publisher
	search    Suggester
	checks    map[string]ReadinessCheck
	maxBody   int64
	startTime time.Time
	now       func() time.Time
}

// NewHandler creates a Handler from opts.
func NewHandler(opts Options) *Handler {
	provider := opts.Provider
	if provider == "" {
		provider = nlp.ProviderCloud
	}

	mock := opts.Mock
	if mock == nil {
		d := *opts.Pipeline
		d.Extractor = nlp.NewMockExtractor()
		mock = &d
	}

	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	return &Handler{
		captions:  opts.Captions,
		bookmarks: opts.Bookmarks,
		driver:    opts.Pipeline,
		provider:  provider,
		mock:      mock,
		cache:     opts.Cache,
		publisher: opts.Publisher,
		search:    opts.Search,
		checks:    opts.Checks,
		maxBody:   maxBody,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// publish sends ev and logs failures. The search index catches up on the next
// rebuild.
func (h *Handler) publish(ctx context.Context, topic string, ev events.VideoEvent) {
	if h.publisher == nil {
		return
	}
	if err := h.publisher.Publish(ctx, topic, ev); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("topic", topic).
			Str("video_id", ev.VideoID).
			Msg("Failed to publish video event")
	}
}
