// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/captionmap/internal/captions"
	"github.com/tomtom215/captionmap/internal/logging"
	"github.com/tomtom215/captionmap/internal/models"
	"github.com/tomtom215/captionmap/internal/nlp"
	"github.com/tomtom215/captionmap/internal/pipeline"
	"github.com/tomtom215/captionmap/internal/storage"
)

// metadataKey matches the key the HTTP API uses for run statistics.
const metadataKey = "METADATA"

type indexOptions struct {
	provider    string
	credentials string
	threshold   int64
	workers     int
	policy      string
	metadata    bool
	store       string
	url         string
	notes       string
}

func newIndexCmd(root *rootOptions) *cobra.Command {
	opts := &indexOptions{}

	cmd := &cobra.Command{
		Use:   "index <file>",
		Short: "Extract keyphrases and print the keyphrase map",
		Long: `Run the full pipeline over a caption file and print the map from keyphrase to
window start times. With --store the video is saved to a Captionmap document
store under the id parsed from --url.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIndex(cmd, root, opts, args[0])
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.provider, "provider", "p", nlp.ProviderMock, "Entity extractor: mock or cloud")
	f.StringVar(&opts.credentials, "credentials", "", "Service account file for the cloud provider (default: application default credentials)")
	f.Int64VarP(&opts.threshold, "threshold", "t", captions.DefaultThreshold, "Window length in seconds")
	f.IntVarP(&opts.workers, "workers", "w", 4, "Concurrent extractor calls")
	f.StringVar(&opts.policy, "policy", string(pipeline.PolicySkip), "Failure policy: skip or abort")
	f.BoolVar(&opts.metadata, "metadata", false, "Add METADATA [captionCount, durationMillis, entityCount] to the output")
	f.StringVar(&opts.store, "store", "", "BadgerDB directory to save the result in")
	f.StringVar(&opts.url, "url", "", "Video URL, required with --store")
	f.StringVar(&opts.notes, "notes", "", "Notes saved with the video metadata")
	return cmd
}

func runIndex(cmd *cobra.Command, root *rootOptions, opts *indexOptions, path string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if opts.threshold <= 0 {
		return fmt.Errorf("threshold must be positive, got %d", opts.threshold)
	}
	policy, err := pipeline.ParsePolicy(opts.policy)
	if err != nil {
		return err
	}

	var videoID string
	if opts.store != "" {
		if opts.url == "" {
			return errors.New("--url is required with --store")
		}
		if videoID, err = captions.ParseVideoID(opts.url); err != nil {
			return err
		}
	}

	texts, err := readCaptions(cmd, path, root.format)
	if err != nil {
		return err
	}

	extractor, closeExtractor, err := newExtractor(ctx, opts)
	if err != nil {
		return err
	}
	defer closeExtractor()

	driver := pipeline.New(extractor)
	driver.Segmenter = captions.NewSegmenter(opts.threshold)
	driver.Policy = policy
	driver.Workers = opts.workers

	result, err := driver.Run(ctx, texts)
	if err != nil {
		return fmt.Errorf("index captions: %w", err)
	}
	if result.Metadata.FailedWindows > 0 {
		logging.Warn().Int("failed_windows", result.Metadata.FailedWindows).Msg("Some windows were skipped")
	}

	if opts.store != "" {
		if err := saveResult(ctx, opts, videoID, texts, result); err != nil {
			return err
		}
		logging.Info().Str("video_id", videoID).Str("store", opts.store).Msg("Video saved")
	}

	out := result.Timeline
	if opts.metadata {
		out = out.Clone()
		out.Set(metadataKey, []int64{
			int64(result.Metadata.CaptionCount),
			result.Metadata.DurationMillis,
			int64(result.Metadata.EntityCount),
		})
	}
	return writeJSON(cmd.OutOrStdout(), out)
}

func newExtractor(ctx context.Context, opts *indexOptions) (nlp.EntityExtractor, func(), error) {
	switch opts.provider {
	case nlp.ProviderMock:
		return nlp.NewMockExtractor(), func() {}, nil
	case nlp.ProviderCloud:
		client, err := nlp.NewLanguageClient(ctx, opts.credentials)
		if err != nil {
			return nil, nil, err
		}
		extractor := nlp.NewResilientExtractor(
			nlp.NewCloudExtractor(client, nlp.DefaultCloudConfig()),
			nlp.DefaultResilienceConfig(nlp.ProviderCloud),
		)
		return extractor, func() {
			if err := client.Close(); err != nil {
				logging.Warn().Err(err).Msg("Error closing language client")
			}
		}, nil
	default:
		return nil, nil, fmt.Errorf("unknown provider %q (want mock or cloud)", opts.provider)
	}
}

func saveResult(ctx context.Context, opts *indexOptions, videoID string, texts []captions.TimeRangedText, result *pipeline.Result) error {
	db, err := storage.Open(storage.DefaultConfig(opts.store))
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing document store")
		}
	}()

	meta := models.VideoMetadata{
		URL:            opts.url,
		Notes:          opts.notes,
		Provider:       opts.provider,
		Threshold:      opts.threshold,
		CaptionCount:   result.Metadata.CaptionCount,
		EntityCount:    result.Metadata.EntityCount,
		DurationMillis: result.Metadata.DurationMillis,
		IndexedAt:      time.Now().UTC(),
	}
	return db.Captions().IndexVideo(ctx, videoID, &meta, texts, result.Timeline)
}
