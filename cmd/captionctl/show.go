// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/tomtom215/captionmap/internal/storage"
)

func newShowCmd() *cobra.Command {
	var (
		store    string
		full     bool
		metadata bool
		list     bool
	)

	cmd := &cobra.Command{
		Use:   "show [videoID]",
		Short: "Print a stored keyphrase map, full captions or metadata",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if store == "" {
				return errors.New("--store is required")
			}
			if !list && len(args) == 0 {
				return errors.New("a video id is required unless --list is set")
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			db, err := storage.Open(storage.DefaultConfig(store))
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck // read-only session
			captionStore := db.Captions()

			var out interface{}
			switch {
			case list:
				out, err = captionStore.ListVideos(ctx)
			case full:
				out, err = captionStore.FullCaptions(ctx, args[0])
			case metadata:
				out, err = captionStore.Metadata(ctx, args[0])
			default:
				out, err = captionStore.Keyphrases(ctx, args[0])
			}
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	f := cmd.Flags()
	f.StringVar(&store, "store", "", "BadgerDB directory")
	f.BoolVar(&full, "full", false, "Print the stored caption fragments")
	f.BoolVar(&metadata, "metadata", false, "Print the indexing metadata")
	f.BoolVar(&list, "list", false, "List stored video ids")
	cmd.MarkFlagsMutuallyExclusive("full", "metadata", "list")
	return cmd
}
