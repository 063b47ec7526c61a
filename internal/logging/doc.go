// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

// Package logging provides the zerolog-based logger shared by every Captionmap
// component.
//
// # Quick Start
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Str("video_id", id).Int("windows", n).Msg("Captions indexed")
//	logging.Ctx(ctx).Warn().Err(err).Msg("Entity extraction failed")
//
// # Bridges
//
// Two third-party libraries log through their own interfaces:
//
//   - suture (supervisor events) uses log/slog; NewSlogHandler routes it here.
//   - Watermill (event bus) uses watermill.LoggerAdapter; NewWatermillAdapter
//     routes it here.
//
// Both bridges write to the same global logger, so level and format settings
// apply everywhere.
//
// # Conventions
//
// Always finish an event with Msg or Send. Prefer typed fields over Msgf.
package logging
