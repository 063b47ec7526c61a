// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package api

import (
	"net/http"
	"strings"

	"github.com/tomtom215/captionmap/internal/search"
)

const (
	defaultSuggestLimit = 10
	maxSuggestLimit     = 100
)

type searchRequest struct {
	Query string `json:"q" validate:"required,max=200"`
	Limit int    `json:"limit" validate:"gte=1,lte=100"`
}

// SearchKeyphrases returns keyphrases starting with q together with the
// videos containing them, most widespread first.
func (h *Handler) SearchKeyphrases(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if h.search == nil {
		rw.ServiceUnavailable("Keyphrase search is not enabled")
		return
	}

	req := searchRequest{
		Query: strings.TrimSpace(r.URL.Query().Get("q")),
		Limit: getIntParam(r, "limit", defaultSuggestLimit),
	}
	if !validateRequest(w, r, &req) {
		return
	}

	// One extra result tells whether the list was truncated.
	results := h.search.Suggest(req.Query, req.Limit+1)
	hasMore := len(results) > req.Limit
	if hasMore {
		results = results[:req.Limit]
	}
	if results == nil {
		results = []search.Suggestion{}
	}

	rw.SuccessWithPagination(results, &PaginationMeta{
		Count:   len(results),
		Limit:   req.Limit,
		HasMore: hasMore,
	})
}
