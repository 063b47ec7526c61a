// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/captionmap/internal/captions"
)

func newSegmentCmd(root *rootOptions) *cobra.Command {
	var threshold int64

	cmd := &cobra.Command{
		Use:   "segment <file>",
		Short: "Group caption fragments into windows",
		Long:  "Print the windows the indexer would send to the entity extractor, without extracting anything.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if threshold <= 0 {
				return fmt.Errorf("threshold must be positive, got %d", threshold)
			}
			texts, err := readCaptions(cmd, args[0], root.format)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), captions.NewSegmenter(threshold).Segment(texts))
		},
	}

	cmd.Flags().Int64VarP(&threshold, "threshold", "t", captions.DefaultThreshold, "Window length in seconds")
	return cmd
}
