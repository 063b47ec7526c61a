// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/captionmap/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler *Handler
	edge    EdgeConfig
}

// NewRouter creates a Router.
func NewRouter(handler *Handler, edge EdgeConfig) *Router {
	return &Router{handler: handler, edge: edge}
}

// SetupChi configures all HTTP routes.
func (router *Router) SetupChi() http.Handler {
	r := chi.NewRouter()

	// ========================
	// Global Middleware Stack
	// ========================
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Compress(5))
	r.Use(router.edge.CORS.Handler())
	r.Use(middleware.PrometheusMetrics)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("Route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).MethodNotAllowed()
	})

	// Budgets are shared by the versioned and legacy routes.
	rateLimit := router.edge.General.Handler()
	indexLimit := router.edge.Indexing.Handler()

	// ========================
	// Health and Metrics
	// ========================
	r.Get("/health/live", router.handler.HealthLive)
	r.Get("/health/ready", router.handler.HealthReady)
	r.Handle("/metrics", promhttp.Handler())

	// ========================
	// Core API Endpoints
	// ========================
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit)

		r.Route("/captions", func(r chi.Router) {
			r.With(indexLimit).Post("/", router.handler.IndexCaptions)
			r.Get("/{videoID}", router.handler.GetCaptions)
			r.Delete("/{videoID}", router.handler.DeleteVideo)
			r.Get("/{videoID}/full", router.handler.GetFullCaptions)
			r.Get("/{videoID}/metadata", router.handler.GetMetadata)
			r.Put("/{videoID}/metadata", router.handler.UpdateMetadata)
			r.Delete("/{videoID}/metadata", router.handler.DeleteMetadata)
			r.Get("/{videoID}/keyphrases/{keyphrase}", router.handler.GetKeyphraseTimes)
			r.Delete("/{videoID}/keyphrases/{keyphrase}", router.handler.DeleteKeyphrase)
		})

		r.Get("/search", router.handler.SearchKeyphrases)

		r.Route("/bookmarks", func(r chi.Router) {
			r.Get("/", router.handler.ListBookmarks)
			r.Post("/", router.handler.ModifyBookmarks)
			r.Delete("/{bookmarkID}", router.handler.DeleteBookmark)
		})
	})

	router.registerLegacyRoutes(r, rateLimit, indexLimit)

	return r
}

// registerLegacyRoutes keeps the flat paths served before the /api/v1 prefix.
// Video ids come from the id query parameter.
func (router *Router) registerLegacyRoutes(r chi.Router, rateLimit, indexLimit func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		r.Use(rateLimit)

		r.Get("/caption", router.handler.GetCaptions)
		r.With(indexLimit).Post("/caption", router.handler.IndexCaptions)
		r.Get("/fullcaption", router.handler.GetFullCaptions)
		r.Get("/bookmark", router.handler.ListBookmarks)
		r.Post("/bookmark", router.handler.ModifyBookmarks)
	})
}
