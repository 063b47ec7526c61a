// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package nlp

import (
	"context"
	"fmt"
	"strings"

	language "cloud.google.com/go/language/apiv1"
	"cloud.google.com/go/language/apiv1/languagepb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"github.com/tomtom215/captionmap/internal/logging"
)

// LanguageClient is the subset of the Cloud Natural Language client used here.
// *language.Client satisfies it.
type LanguageClient interface {
	AnalyzeEntities(ctx context.Context, req *languagepb.AnalyzeEntitiesRequest, opts ...gax.CallOption) (*languagepb.AnalyzeEntitiesResponse, error)
	ClassifyText(ctx context.Context, req *languagepb.ClassifyTextRequest, opts ...gax.CallOption) (*languagepb.ClassifyTextResponse, error)
}

// DefaultAcademicCategories are the top-level content categories that raise
// the salience threshold.
var DefaultAcademicCategories = []string{
	"Arts & Entertainment",
	"Books & Literature",
	"Business & Industrial",
	"Computers & Electronics",
	"Health",
	"Internet & Telecom",
	"Jobs & Education",
	"Law & Government",
	"Reference",
	"Science",
}

// CloudConfig tunes entity filtering.
type CloudConfig struct {
	SalienceThreshold         float32
	AcademicSalienceThreshold float32
	CategoryConfidence        float32
	// MinClassifyTokens is the space-separated token count below which
	// classification is skipped (the API rejects very short documents).
	MinClassifyTokens  int
	AcademicCategories []string
}

// DefaultCloudConfig returns the production thresholds.
func DefaultCloudConfig() CloudConfig {
	return CloudConfig{
		SalienceThreshold:         0.01,
		AcademicSalienceThreshold: 0.02,
		CategoryConfidence:        0.7,
		MinClassifyTokens:         20,
		AcademicCategories:        DefaultAcademicCategories,
	}
}

// CloudExtractor extracts entities with the Cloud Natural Language API.
type CloudExtractor struct {
	client   LanguageClient
	cfg      CloudConfig
	academic map[string]struct{}
}

// NewLanguageClient dials the Cloud Natural Language API. An empty
// credentialsFile uses Application Default Credentials.
func NewLanguageClient(ctx context.Context, credentialsFile string) (*language.Client, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}
	client, err := language.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create language client: %w", err)
	}
	return client, nil
}

// NewCloudExtractor returns an extractor using client.
func NewCloudExtractor(client LanguageClient, cfg CloudConfig) *CloudExtractor {
	if len(cfg.AcademicCategories) == 0 {
		cfg.AcademicCategories = DefaultAcademicCategories
	}
	academic := make(map[string]struct{}, len(cfg.AcademicCategories))
	for _, c := range cfg.AcademicCategories {
		academic[c] = struct{}{}
	}
	return &CloudExtractor{client: client, cfg: cfg, academic: academic}
}

// Entities implements EntityExtractor. Names are lowercased and deduplicated.
func (e *CloudExtractor) Entities(ctx context.Context, text string) ([]string, error) {
	doc := &languagepb.Document{
		Source: &languagepb.Document_Content{Content: text},
		Type:   languagepb.Document_PLAIN_TEXT,
	}

	resp, err := e.client.AnalyzeEntities(ctx, &languagepb.AnalyzeEntitiesRequest{
		Document:     doc,
		EncodingType: languagepb.EncodingType_UTF16,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: analyze entities: %w", ErrExtractionFailed, err)
	}

	threshold := e.cfg.SalienceThreshold
	if e.isAcademic(ctx, doc, text) {
		threshold = e.cfg.AcademicSalienceThreshold
	}

	names := make([]string, 0, len(resp.GetEntities()))
	for _, entity := range resp.GetEntities() {
		if entity.GetSalience() >= threshold {
			names = append(names, strings.ToLower(entity.GetName()))
		}
	}
	return dedupe(names), nil
}

// isAcademic classifies text and reports whether a confident category is in
// the academic set. Classification errors are logged and treated as false.
func (e *CloudExtractor) isAcademic(ctx context.Context, doc *languagepb.Document, text string) bool {
	if tokenCount(text) < e.cfg.MinClassifyTokens {
		return false
	}

	resp, err := e.client.ClassifyText(ctx, &languagepb.ClassifyTextRequest{Document: doc})
	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Msg("Text classification failed, using default salience threshold")
		return false
	}

	for _, category := range resp.GetCategories() {
		if category.GetConfidence() < e.cfg.CategoryConfidence {
			continue
		}
		if _, ok := e.academic[topLevelCategory(category.GetName())]; ok {
			return true
		}
	}
	return false
}

// topLevelCategory returns "Science" for "/Science/Computer Science".
func topLevelCategory(name string) string {
	parts := strings.Split(name, "/")
	if len(parts) < 2 {
		return name
	}
	return parts[1]
}

// tokenCount counts single-space separated tokens, ignoring trailing
// delimiters left by the segmenter.
func tokenCount(text string) int {
	parts := strings.Split(text, " ")
	n := len(parts)
	for n > 0 && parts[n-1] == "" {
		n--
	}
	return n
}
