// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

// Package pipeline drives caption indexing: segment the captions, extract
// entities from every window, and aggregate them into a keyphrase timeline.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/captionmap/internal/captions"
	"github.com/tomtom215/captionmap/internal/logging"
	"github.com/tomtom215/captionmap/internal/metrics"
	"github.com/tomtom215/captionmap/internal/nlp"
)

// FailurePolicy decides what a failed extraction does to the run.
type FailurePolicy string

const (
	// PolicySkip drops the failed window's contribution and continues.
	PolicySkip FailurePolicy = "skip"
	// PolicyAbort fails the whole run on the first extraction error.
	PolicyAbort FailurePolicy = "abort"
)

// ParsePolicy returns the policy named s. Empty selects PolicySkip.
func ParsePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case "", PolicySkip:
		return PolicySkip, nil
	case PolicyAbort:
		return PolicyAbort, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q (want skip or abort)", s)
	}
}

// Metadata summarises a run.
type Metadata struct {
	CaptionCount   int   `json:"captionCount"`
	DurationMillis int64 `json:"durationMillis"`
	EntityCount    int   `json:"entityCount"`
	WindowCount    int   `json:"windowCount"`
	FailedWindows  int   `json:"failedWindows"`
}

// Result is the output of Driver.Run.
type Result struct {
	Timeline *captions.Timeline
	Windows  []captions.TimeRangedText
	Metadata Metadata
}

// Driver runs the indexing pipeline. It holds no per-run state and is safe
// for concurrent use when its extractor is.
type Driver struct {
	Segmenter captions.Segmenter
	Extractor nlp.EntityExtractor
	Policy    FailurePolicy
	// Workers bounds concurrent extraction calls. Values below 2 run
	// sequentially. Output is identical either way.
	Workers int
}

// New returns a Driver with the given extractor and defaults otherwise.
func New(extractor nlp.EntityExtractor) *Driver {
	return &Driver{
		Segmenter: captions.NewSegmenter(captions.DefaultThreshold),
		Extractor: extractor,
		Policy:    PolicySkip,
		Workers:   1,
	}
}

// WindowError reports which window failed under PolicyAbort.
type WindowError struct {
	StartTime int64
	Err       error
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("window at %ds: %v", e.StartTime, e.Err)
}

func (e *WindowError) Unwrap() error { return e.Err }

// extraction is the outcome for one window.
type extraction struct {
	entities []string
	err      error
}

// Run indexes texts.
func (d *Driver) Run(ctx context.Context, texts []captions.TimeRangedText) (*Result, error) {
	start := time.Now()

	windows := d.Segmenter.Segment(texts)
	results, err := d.extractAll(ctx, windows)
	if err != nil {
		metrics.RecordPipelineRun(time.Since(start), len(windows), 0, err)
		return nil, err
	}

	agg := captions.NewAggregator()
	failed := 0
	for i, w := range windows {
		if results[i].err != nil {
			failed++
			logging.Ctx(ctx).Warn().Err(results[i].err).Int64("window_start", w.StartTime).
				Msg("Entity extraction failed, skipping window")
			continue
		}
		agg.AddEntities(results[i].entities, w.StartTime)
	}

	timeline := agg.EntitiesMap()
	elapsed := time.Since(start)
	metrics.RecordPipelineRun(elapsed, len(windows), failed, nil)

	return &Result{
		Timeline: timeline,
		Windows:  windows,
		Metadata: Metadata{
			CaptionCount:   len(texts),
			DurationMillis: elapsed.Milliseconds(),
			EntityCount:    timeline.Len(),
			WindowCount:    len(windows),
			FailedWindows:  failed,
		},
	}, nil
}

// extractAll calls the extractor for every window and returns the outcomes
// indexed like windows. Under PolicyAbort the first failure is returned as
// the error.
func (d *Driver) extractAll(ctx context.Context, windows []captions.TimeRangedText) ([]extraction, error) {
	results := make([]extraction, len(windows))

	if d.Workers < 2 {
		for i, w := range windows {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			entities, err := d.Extractor.Entities(ctx, w.Text)
			if err != nil && d.Policy == PolicyAbort {
				return nil, &WindowError{StartTime: w.StartTime, Err: err}
			}
			results[i] = extraction{entities: entities, err: err}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.Workers)
	for i, w := range windows {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			entities, err := d.Extractor.Entities(gctx, w.Text)
			if err != nil && d.Policy == PolicyAbort {
				return &WindowError{StartTime: w.StartTime, Err: err}
			}
			results[i] = extraction{entities: entities, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
