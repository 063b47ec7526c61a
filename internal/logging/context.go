// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type ctxKey int

const (
	requestIDKey ctxKey = iota
	correlationIDKey
)

// ctxFields lists the ids Ctx copies onto log events, in output order.
var ctxFields = []struct {
	key  ctxKey
	name string
}{
	{requestIDKey, "request_id"},
	{correlationIDKey, "correlation_id"},
}

func idFrom(ctx context.Context, key ctxKey) string {
	id, _ := ctx.Value(key).(string)
	return id
}

// GenerateRequestID returns a new UUID string.
func GenerateRequestID() string {
	return uuid.NewString()
}

// GenerateCorrelationID returns a short id tying a pipeline run to the
// video.indexed message it publishes.
func GenerateCorrelationID() string {
	return uuid.NewString()[:8]
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	return idFrom(ctx, requestIDKey)
}

func ContextWithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// ContextWithNewCorrelationID attaches a freshly generated correlation id.
func ContextWithNewCorrelationID(ctx context.Context) context.Context {
	return ContextWithCorrelationID(ctx, GenerateCorrelationID())
}

func CorrelationIDFromContext(ctx context.Context) string {
	return idFrom(ctx, correlationIDKey)
}

// Ctx returns the global logger carrying the ids found in ctx.
func Ctx(ctx context.Context) *zerolog.Logger {
	lc := With()
	for _, f := range ctxFields {
		if id := idFrom(ctx, f.key); id != "" {
			lc = lc.Str(f.name, id)
		}
	}
	l := lc.Logger()
	return &l
}
