// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

// Package services provides suture.Service wrappers for components whose
// lifecycle is not already context-driven.
//
// HTTPServerService translates http.Server's ListenAndServe/Shutdown pair
// into suture's Serve(ctx) pattern. The event router, the badger GC loop and
// the cache sweeper implement Serve themselves and are added to the tree
// directly.
package services
