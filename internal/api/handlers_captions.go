// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/captionmap/internal/cache"
	"github.com/tomtom215/captionmap/internal/captions"
	"github.com/tomtom215/captionmap/internal/events"
	"github.com/tomtom215/captionmap/internal/logging"
	"github.com/tomtom215/captionmap/internal/models"
	"github.com/tomtom215/captionmap/internal/nlp"
	"github.com/tomtom215/captionmap/internal/pipeline"
	"github.com/tomtom215/captionmap/internal/storage"
)

// MetadataKey is the extra keyphrase carrying run statistics when a caller
// asks for metadata=true. It replaces an extracted entity of the same name in
// the response; the stored map is unaffected.
const MetadataKey = "METADATA"

// maxThreshold bounds the threshold query parameter (one hour windows).
const maxThreshold = 3600

// emptyObject encodes as {} for videos that are not stored.
var emptyObject = struct{}{}

type captionRequest struct {
	URL      string                    `json:"url" validate:"required,videourl"`
	Captions []captions.TimeRangedText `json:"captions" validate:"required,dive"`
}

type indexOptions struct {
	mock      bool
	metadata  bool
	threshold int64
}

func (h *Handler) parseIndexOptions(r *http.Request) (indexOptions, error) {
	opts := indexOptions{
		mock:      getBoolParam(r, "mock"),
		metadata:  getBoolParam(r, "metadata"),
		threshold: h.driver.Segmenter.Threshold,
	}
	if opts.threshold == 0 {
		opts.threshold = captions.DefaultThreshold
	}

	if raw := r.URL.Query().Get("threshold"); raw != "" {
		t, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || t < 1 || t > maxThreshold {
			return opts, errors.New("threshold must be an integer between 1 and 3600")
		}
		opts.threshold = t
	}
	return opts, nil
}

// IndexCaptions runs the keyphrase pipeline over the submitted captions,
// stores the result and returns the keyphrase map.
func (h *Handler) IndexCaptions(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx := r.Context()

	var req captionRequest
	if err := decodeJSONBody(w, r, h.maxBody, &req); err != nil {
		rw.BadRequest("Invalid request body: " + err.Error())
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	opts, err := h.parseIndexOptions(r)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	videoID, err := captions.ParseVideoID(req.URL)
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	driver, provider := h.driverFor(opts)
	result, err := h.runPipeline(ctx, driver, provider, opts.threshold, req.Captions)
	if err != nil {
		h.writePipelineError(rw, err)
		return
	}

	meta := models.VideoMetadata{
		URL:            req.URL,
		Provider:       provider,
		Threshold:      opts.threshold,
		CaptionCount:   result.Metadata.CaptionCount,
		EntityCount:    result.Metadata.EntityCount,
		DurationMillis: result.Metadata.DurationMillis,
		IndexedAt:      h.now().UTC(),
	}
	if err := h.captions.IndexVideo(ctx, videoID, &meta, req.Captions, result.Timeline); err != nil {
		rw.StorageError(err)
		return
	}

	h.publish(ctx, events.TopicVideoIndexed, events.VideoEvent{
		VideoID:    videoID,
		Keyphrases: result.Timeline.Keys(),
		IndexedAt:  meta.IndexedAt,
	})

	logging.Ctx(ctx).Info().
		Str("video_id", videoID).
		Str("provider", provider).
		Int("keyphrases", result.Metadata.EntityCount).
		Int("failed_windows", result.Metadata.FailedWindows).
		Msg("Captions indexed")

	out := result.Timeline
	if opts.metadata {
		out = out.Clone()
		out.Set(MetadataKey, []int64{
			int64(result.Metadata.CaptionCount),
			result.Metadata.DurationMillis,
			int64(result.Metadata.EntityCount),
		})
	}
	rw.Raw(http.StatusOK, out)
}

// driverFor returns a copy of the selected driver segmenting at opts.threshold.
func (h *Handler) driverFor(opts indexOptions) (*pipeline.Driver, string) {
	base, provider := h.driver, h.provider
	if opts.mock {
		base, provider = h.mock, nlp.ProviderMock
	}
	d := *base
	d.Segmenter = captions.NewSegmenter(opts.threshold)
	return &d, provider
}

// runPipeline serves identical submissions from the result cache. Runs with
// failed windows are not cached.
func (h *Handler) runPipeline(ctx context.Context, d *pipeline.Driver, provider string, threshold int64, texts []captions.TimeRangedText) (*pipeline.Result, error) {
	if h.cache == nil {
		return d.Run(ctx, texts)
	}

	payload, err := json.Marshal(texts)
	if err != nil {
		return nil, err
	}
	key := cache.Fingerprint(payload, []byte(provider), []byte(strconv.FormatInt(threshold, 10)))

	if res, ok := h.cache.Get(key); ok {
		logging.Ctx(ctx).Debug().Str("cache_key", key).Msg("Pipeline result served from cache")
		return res, nil
	}

	res, err := d.Run(ctx, texts)
	if err != nil {
		return nil, err
	}
	if res.Metadata.FailedWindows == 0 {
		h.cache.Set(key, res)
	}
	return res, nil
}

func (h *Handler) writePipelineError(rw *ResponseWriter, err error) {
	var windowErr *pipeline.WindowError
	switch {
	case errors.Is(err, nlp.ErrCircuitOpen):
		rw.ServiceUnavailable("Entity extraction is temporarily unavailable")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		rw.ServiceUnavailable("Indexing did not finish in time")
	case errors.As(err, &windowErr):
		rw.ExternalServiceError("nlp", err)
	default:
		logging.Ctx(rw.r.Context()).Error().Err(err).Msg("Pipeline failed")
		rw.InternalError("Indexing failed")
	}
}

// videoIDParam reads the video id from the path, falling back to the legacy
// id query parameter.
func videoIDParam(r *http.Request) string {
	if id := pathParam(r, "videoID"); id != "" {
		return id
	}
	return r.URL.Query().Get("id")
}

// GetCaptions returns the stored keyphrase map, or {} for unknown videos.
func (h *Handler) GetCaptions(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := videoIDParam(r)
	if id == "" {
		rw.Raw(http.StatusOK, emptyObject)
		return
	}

	tl, err := h.captions.Keyphrases(r.Context(), id)
	switch {
	case errors.Is(err, storage.ErrVideoNotFound):
		rw.Raw(http.StatusOK, emptyObject)
	case err != nil:
		rw.StorageError(err)
	default:
		rw.Raw(http.StatusOK, tl)
	}
}

// GetFullCaptions returns the stored captions sorted by start time, or {}
// for unknown videos.
func (h *Handler) GetFullCaptions(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := videoIDParam(r)
	if id == "" {
		rw.Raw(http.StatusOK, emptyObject)
		return
	}

	full, err := h.captions.FullCaptions(r.Context(), id)
	switch {
	case errors.Is(err, storage.ErrVideoNotFound):
		rw.Raw(http.StatusOK, emptyObject)
	case err != nil:
		rw.StorageError(err)
	default:
		rw.Raw(http.StatusOK, full)
	}
}

// GetKeyphraseTimes returns the window start times of one keyphrase.
func (h *Handler) GetKeyphraseTimes(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := videoIDParam(r)
	keyphrase := pathParam(r, "keyphrase")

	times, err := h.captions.TimesForKeyphrase(r.Context(), id, keyphrase)
	switch {
	case errors.Is(err, storage.ErrVideoNotFound):
		rw.NotFound("Video not found")
	case errors.Is(err, storage.ErrKeyphraseNotFound):
		rw.NotFound("Keyphrase not found")
	case err != nil:
		rw.StorageError(err)
	default:
		rw.Raw(http.StatusOK, times)
	}
}

// GetMetadata returns the stored metadata, or {} when there is none.
func (h *Handler) GetMetadata(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	meta, err := h.captions.Metadata(r.Context(), videoIDParam(r))
	switch {
	case errors.Is(err, storage.ErrVideoNotFound), errors.Is(err, storage.ErrMetadataNotFound):
		rw.Raw(http.StatusOK, emptyObject)
	case err != nil:
		rw.StorageError(err)
	default:
		rw.Raw(http.StatusOK, meta)
	}
}

type metadataRequest struct {
	Notes string `json:"notes" validate:"max=5000"`
}

// UpdateMetadata sets the notes of a stored video. mode=append concatenates
// them onto the stored notes; the default overwrite replaces them and keeps
// the indexing statistics. Responds with the stored metadata.
func (h *Handler) UpdateMetadata(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx := r.Context()
	id := videoIDParam(r)

	mode, err := models.ParseMetadataMode(r.URL.Query().Get("mode"))
	if err != nil {
		rw.BadRequest(err.Error())
		return
	}

	var req metadataRequest
	if err := decodeJSONBody(w, r, h.maxBody, &req); err != nil {
		rw.BadRequest("Invalid request body: " + err.Error())
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	update := models.VideoMetadata{Notes: req.Notes}
	if mode == models.MetadataOverwrite {
		current, err := h.captions.Metadata(ctx, id)
		switch {
		case err == nil:
			update = *current
			update.Notes = req.Notes
		case errors.Is(err, storage.ErrMetadataNotFound):
		default:
			rw.StorageError(err)
			return
		}
	}

	if err := h.captions.AddMetadata(ctx, id, update, mode); err != nil {
		rw.StorageError(err)
		return
	}
	logging.Ctx(ctx).Debug().Str("video_id", id).Str("mode", string(mode)).Msg("Metadata updated")

	meta, err := h.captions.Metadata(ctx, id)
	if err != nil {
		rw.StorageError(err)
		return
	}
	rw.Raw(http.StatusOK, meta)
}

// DeleteMetadata removes the metadata document of a video.
func (h *Handler) DeleteMetadata(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	id := videoIDParam(r)

	if err := h.captions.DeleteMetadata(r.Context(), id); err != nil {
		rw.StorageError(err)
		return
	}
	rw.NoContent()
}

// DeleteVideo removes a video and everything stored under it.
func (h *Handler) DeleteVideo(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx := r.Context()
	id := videoIDParam(r)

	if err := h.captions.DeleteVideo(ctx, id); err != nil {
		rw.StorageError(err)
		return
	}

	h.publish(ctx, events.TopicVideoDeleted, events.VideoEvent{VideoID: id, IndexedAt: h.now().UTC()})
	logging.Ctx(ctx).Info().Str("video_id", id).Msg("Video deleted")
	rw.NoContent()
}

// DeleteKeyphrase removes one keyphrase from a video.
func (h *Handler) DeleteKeyphrase(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx := r.Context()
	id := videoIDParam(r)
	keyphrase := pathParam(r, "keyphrase")

	if err := h.captions.DeleteClause(ctx, id, keyphrase); err != nil {
		rw.StorageError(err)
		return
	}

	if tl, err := h.captions.Keyphrases(ctx, id); err == nil {
		h.publish(ctx, events.TopicVideoIndexed, events.VideoEvent{
			VideoID:    id,
			Keyphrases: tl.Keys(),
			IndexedAt:  h.now().UTC(),
		})
	} else {
		logging.Ctx(ctx).Warn().Err(err).Str("video_id", id).Msg("Failed to reload keyphrases after delete")
	}

	logging.Ctx(ctx).Info().
		Str("video_id", id).
		Str("keyphrase", sanitizeLogValue(keyphrase)).
		Msg("Keyphrase deleted")
	rw.NoContent()
}
