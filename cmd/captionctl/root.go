// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/captionmap/internal/captions"
	"github.com/tomtom215/captionmap/internal/logging"
)

// Input formats accepted by --format.
const (
	formatAuto = "auto"
	formatJSON = "json"
	formatVTT  = "vtt"
)

type rootOptions struct {
	logLevel string
	format   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "captionctl",
		Short: "Segment and index video captions",
		Long: `captionctl runs the Captionmap caption pipeline from the command line.
It groups caption fragments into fixed-length windows, extracts keyphrases from
each window and prints the keyphrase map, optionally saving it to a Captionmap
document store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if !logging.ValidLevel(opts.logLevel) {
				return fmt.Errorf("invalid log level %q", opts.logLevel)
			}
			logging.Init(logging.Config{
				Level:     opts.logLevel,
				Format:    "console",
				Timestamp: true,
				Output:    cmd.ErrOrStderr(),
			})
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "Log level: trace, debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&opts.format, "format", formatAuto, "Input format: auto, json or vtt")

	cmd.AddCommand(newSegmentCmd(opts))
	cmd.AddCommand(newIndexCmd(opts))
	cmd.AddCommand(newShowCmd())
	return cmd
}

// readCaptions loads fragments from path ("-" is stdin). In auto mode a .vtt
// extension or a leading WEBVTT header selects the WebVTT parser.
func readCaptions(cmd *cobra.Command, path, format string) ([]captions.TimeRangedText, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read captions: %w", err)
	}

	switch detectFormat(path, format, data) {
	case formatVTT:
		texts, err := captions.ParseWebVTT(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("parse WebVTT: %w", err)
		}
		return texts, nil
	case formatJSON:
		var texts []captions.TimeRangedText
		if err := json.Unmarshal(data, &texts); err != nil {
			return nil, fmt.Errorf("parse caption JSON: %w", err)
		}
		return texts, nil
	default:
		return nil, fmt.Errorf("unknown input format %q", format)
	}
}

func detectFormat(path, format string, data []byte) string {
	if format != formatAuto {
		return format
	}
	if strings.EqualFold(filepath.Ext(path), ".vtt") {
		return formatVTT
	}
	if strings.HasPrefix(strings.TrimLeft(string(data), "\ufeff \t\r\n"), "WEBVTT") {
		return formatVTT
	}
	return formatJSON
}

func writeJSON(w io.Writer, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
