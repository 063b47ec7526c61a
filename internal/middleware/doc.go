// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

/*
Package middleware provides HTTP middleware shared by the API router.

Both middlewares use the chi signature func(http.Handler) http.Handler:

  - RequestID: accepts or generates an X-Request-ID and seeds logging.Ctx
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern

Typical stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Route("/api/v1", func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.Post("/captions", h.IndexCaptions)
	})

CORS, rate limiting, gzip and body size limits come from go-chi/cors,
go-chi/httprate and chi's own middleware package.
*/
package middleware
