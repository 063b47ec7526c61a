// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package api

import (
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/tomtom215/captionmap/internal/logging"
	"github.com/tomtom215/captionmap/internal/models"
)

// Bookmark functions accepted by ModifyBookmarks.
const (
	bookmarkFunctionAdd    = "add"
	bookmarkFunctionRemove = "remove"
)

type bookmarkListRequest struct {
	Email   string `json:"email" validate:"required,email,keysegment"`
	VideoID string `json:"videoId" validate:"required,keysegment"`
}

type bookmarkRequest struct {
	Function   string `json:"function" validate:"required,oneof=add remove"`
	Email      string `json:"email" validate:"required,email,keysegment"`
	VideoID    string `json:"videoId" validate:"required,keysegment"`
	Timestamp  int64  `json:"timestamp" validate:"gte=0"`
	Title      string `json:"title" validate:"max=200"`
	Content    string `json:"content" validate:"max=5000"`
	BookmarkID string `json:"bookmarkId" validate:"required_if=Function remove,omitempty,keysegment"`
}

// decodeBookmarkRequest accepts a JSON body, a JSON document in the "json"
// form field, or plain form fields named like the JSON keys.
func decodeBookmarkRequest(w http.ResponseWriter, r *http.Request, maxBytes int64) (bookmarkRequest, error) {
	var req bookmarkRequest
	if !isFormRequest(r) {
		err := decodeJSONBody(w, r, maxBytes, &req)
		return req, err
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := parseForm(r, maxBytes); err != nil {
		return req, err
	}
	if doc := r.FormValue(formJSONField); doc != "" {
		err := json.Unmarshal([]byte(doc), &req)
		return req, err
	}

	req.Function = r.FormValue("function")
	req.Email = r.FormValue("email")
	req.VideoID = r.FormValue("videoId")
	req.Title = r.FormValue("title")
	req.Content = r.FormValue("content")
	req.BookmarkID = r.FormValue("bookmarkId")
	if ts := r.FormValue("timestamp"); ts != "" {
		n, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return req, err
		}
		req.Timestamp = n
	}
	return req, nil
}

// ListBookmarks returns the bookmarks of one user on one video.
func (h *Handler) ListBookmarks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := bookmarkListRequest{Email: q.Get("email"), VideoID: q.Get("videoId")}
	if !validateRequest(w, r, &req) {
		return
	}
	h.writeBookmarks(w, r, req.Email, req.VideoID)
}

// ModifyBookmarks adds or removes a bookmark and returns the updated list.
func (h *Handler) ModifyBookmarks(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	ctx := r.Context()

	req, err := decodeBookmarkRequest(w, r, h.maxBody)
	if err != nil {
		rw.BadRequest("Invalid request body: " + err.Error())
		return
	}
	if !validateRequest(w, r, &req) {
		return
	}

	switch req.Function {
	case bookmarkFunctionAdd:
		b, err := h.bookmarks.Add(ctx, req.Email, req.VideoID, models.Bookmark{
			ID:        req.BookmarkID,
			Timestamp: req.Timestamp,
			Title:     req.Title,
			Content:   req.Content,
		})
		if err != nil {
			rw.StorageError(err)
			return
		}
		logging.Ctx(ctx).Debug().Str("video_id", req.VideoID).Str("bookmark_id", b.ID).Msg("Bookmark added")
	case bookmarkFunctionRemove:
		if err := h.bookmarks.Remove(ctx, req.Email, req.VideoID, req.BookmarkID); err != nil {
			rw.StorageError(err)
			return
		}
		logging.Ctx(ctx).Debug().Str("video_id", req.VideoID).Str("bookmark_id", req.BookmarkID).Msg("Bookmark removed")
	}

	h.writeBookmarks(w, r, req.Email, req.VideoID)
}

// DeleteBookmark removes the bookmark named in the path and returns the
// updated list.
func (h *Handler) DeleteBookmark(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := bookmarkRequest{
		Function:   bookmarkFunctionRemove,
		Email:      q.Get("email"),
		VideoID:    q.Get("videoId"),
		BookmarkID: pathParam(r, "bookmarkID"),
	}
	if !validateRequest(w, r, &req) {
		return
	}

	if err := h.bookmarks.Remove(r.Context(), req.Email, req.VideoID, req.BookmarkID); err != nil {
		NewResponseWriter(w, r).StorageError(err)
		return
	}
	h.writeBookmarks(w, r, req.Email, req.VideoID)
}

func (h *Handler) writeBookmarks(w http.ResponseWriter, r *http.Request, email, videoID string) {
	rw := NewResponseWriter(w, r)
	list, err := h.bookmarks.List(r.Context(), email, videoID)
	if err != nil {
		rw.StorageError(err)
		return
	}
	rw.Raw(http.StatusOK, list)
}
