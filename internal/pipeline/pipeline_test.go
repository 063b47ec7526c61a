// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package pipeline

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/captionmap/internal/captions"
	"github.com/tomtom215/captionmap/internal/nlp"
)

func TestDriver_MockScenarios(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		captions []captions.TimeRangedText
		want     string
	}{
		{
			name:     "single caption",
			captions: []captions.TimeRangedText{{StartTime: 0, EndTime: 20, Text: "Hello,World"}},
			want:     `{"Hello":[0],"World":[0]}`,
		},
		{
			name:     "no captions",
			captions: nil,
			want:     `{}`,
		},
		{
			name: "merged windows",
			captions: []captions.TimeRangedText{
				{StartTime: 0, EndTime: 10, Text: "Hello World"},
				{StartTime: 10, EndTime: 20, Text: "Goodbye"},
				{StartTime: 20, EndTime: 50, Text: "Return"},
			},
			want: `{"Hello World Goodbye":[0],"Return":[20]}`,
		},
		{
			name: "repeated entity across windows",
			captions: []captions.TimeRangedText{
				{StartTime: 0, EndTime: 20, Text: "Hello,Hello,Hello"},
				{StartTime: 20, EndTime: 50, Text: "Hello"},
				{StartTime: 30, EndTime: 50, Text: "Hello,Hello"},
			},
			want: `{"Hello":[0,20,30]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, err := New(nlp.NewMockExtractor()).Run(context.Background(), tt.captions)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			got, err := res.Timeline.MarshalJSON()
			if err != nil {
				t.Fatalf("MarshalJSON() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("Run() = %s, want %s", got, tt.want)
			}
			if res.Metadata.CaptionCount != len(tt.captions) {
				t.Errorf("CaptionCount = %d, want %d", res.Metadata.CaptionCount, len(tt.captions))
			}
			if res.Metadata.EntityCount != res.Timeline.Len() {
				t.Errorf("EntityCount = %d, want %d", res.Metadata.EntityCount, res.Timeline.Len())
			}
		})
	}
}

// flaky fails for any window whose text contains "fail".
var flaky = nlp.ExtractorFunc(func(ctx context.Context, text string) ([]string, error) {
	if strings.Contains(text, "fail") {
		return nil, nlp.ErrExtractionFailed
	}
	return nlp.NewMockExtractor().Entities(ctx, text)
})

func failingInput() []captions.TimeRangedText {
	return []captions.TimeRangedText{
		{StartTime: 0, EndTime: 20, Text: "alpha"},
		{StartTime: 20, EndTime: 40, Text: "fail"},
		{StartTime: 40, EndTime: 60, Text: "beta,alpha"},
	}
}

func TestDriver_SkipPolicy(t *testing.T) {
	t.Parallel()

	d := New(flaky)
	res, err := d.Run(context.Background(), failingInput())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := map[string][]int64{"alpha": {0, 40}, "beta": {40}}
	if got := res.Timeline.Map(); !reflect.DeepEqual(got, want) {
		t.Errorf("timeline = %v, want %v", got, want)
	}
	if res.Metadata.FailedWindows != 1 {
		t.Errorf("FailedWindows = %d, want 1", res.Metadata.FailedWindows)
	}
	if res.Metadata.WindowCount != 3 {
		t.Errorf("WindowCount = %d, want 3", res.Metadata.WindowCount)
	}
}

func TestDriver_AbortPolicy(t *testing.T) {
	t.Parallel()

	for _, workers := range []int{1, 4} {
		d := New(flaky)
		d.Policy = PolicyAbort
		d.Workers = workers

		_, err := d.Run(context.Background(), failingInput())
		if !errors.Is(err, nlp.ErrExtractionFailed) {
			t.Fatalf("workers=%d: error = %v, want ErrExtractionFailed", workers, err)
		}
		var werr *WindowError
		if !errors.As(err, &werr) || werr.StartTime != 20 {
			t.Errorf("workers=%d: error = %v, want WindowError at 20", workers, err)
		}
	}
}

func TestDriver_ConcurrentMatchesSequential(t *testing.T) {
	t.Parallel()

	var input []captions.TimeRangedText
	for i := int64(0); i < 40; i++ {
		input = append(input, captions.TimeRangedText{
			StartTime: i * 7,
			EndTime:   i*7 + 7,
			Text:      []string{"cell,membrane", "atom", "cell", "energy,atom"}[i%4],
		})
	}

	// Uneven latency makes windows finish out of order.
	slow := nlp.ExtractorFunc(func(ctx context.Context, text string) ([]string, error) {
		time.Sleep(time.Duration(len(text)%5) * time.Millisecond)
		return nlp.NewMockExtractor().Entities(ctx, text)
	})

	seq := New(slow)
	par := New(slow)
	par.Workers = 8

	a, err := seq.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("sequential Run() error = %v", err)
	}
	b, err := par.Run(context.Background(), input)
	if err != nil {
		t.Fatalf("concurrent Run() error = %v", err)
	}

	ja, _ := a.Timeline.MarshalJSON()
	jb, _ := b.Timeline.MarshalJSON()
	if string(ja) != string(jb) {
		t.Errorf("concurrent result %s differs from sequential %s", jb, ja)
	}
}

func TestDriver_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(nlp.NewMockExtractor()).Run(ctx, failingInput())
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestParsePolicy(t *testing.T) {
	t.Parallel()

	if p, err := ParsePolicy(""); err != nil || p != PolicySkip {
		t.Errorf("ParsePolicy(\"\") = %q, %v", p, err)
	}
	if p, err := ParsePolicy("abort"); err != nil || p != PolicyAbort {
		t.Errorf("ParsePolicy(abort) = %q, %v", p, err)
	}
	if _, err := ParsePolicy("retry"); err == nil {
		t.Error("ParsePolicy(retry) should fail")
	}
}
