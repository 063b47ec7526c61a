// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package captions

import (
	"reflect"
	"strings"
	"testing"
)

func TestSetTimeRanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		input     []TimeRangedText
		threshold int64
		want      []TimeRangedText
	}{
		{
			name:      "nil input",
			input:     nil,
			threshold: DefaultThreshold,
			want:      []TimeRangedText{},
		},
		{
			name:      "empty input",
			input:     []TimeRangedText{},
			threshold: DefaultThreshold,
			want:      []TimeRangedText{},
		},
		{
			name: "even split",
			input: []TimeRangedText{
				{0, 1, "A"}, {1, 2, "B"}, {2, 3, "C"}, {3, 4, "D"},
			},
			threshold: 2,
			want: []TimeRangedText{
				{0, 2, "A B "}, {2, 4, "C D "},
			},
		},
		{
			name: "short trailing window kept",
			input: []TimeRangedText{
				{0, 3, "A"}, {3, 5, "B"}, {5, 6, "C"},
			},
			threshold: 5,
			want: []TimeRangedText{
				{0, 5, "A B "}, {5, 6, "C "},
			},
		},
		{
			name: "single fragment under threshold",
			input: []TimeRangedText{
				{4, 7, "only"},
			},
			threshold: DefaultThreshold,
			want: []TimeRangedText{
				{4, 7, "only "},
			},
		},
		{
			name: "every fragment meets threshold",
			input: []TimeRangedText{
				{0, 20, "a"}, {20, 45, "b"}, {45, 70, "c"},
			},
			threshold: DefaultThreshold,
			want: []TimeRangedText{
				{0, 20, "a "}, {20, 45, "b "}, {45, 70, "c "},
			},
		},
		{
			name: "caption servlet grouping",
			input: []TimeRangedText{
				{0, 10, "Hello World"}, {10, 20, "Goodbye"}, {20, 50, "Return"},
			},
			threshold: DefaultThreshold,
			want: []TimeRangedText{
				{0, 20, "Hello World Goodbye "}, {20, 50, "Return "},
			},
		},
		{
			name: "out of order input keeps window open",
			input: []TimeRangedText{
				{10, 12, "late"}, {0, 5, "early"}, {5, 30, "end"},
			},
			threshold: DefaultThreshold,
			want: []TimeRangedText{
				{10, 30, "late early end "},
			},
		},
		{
			name: "zero threshold closes every fragment",
			input: []TimeRangedText{
				{0, 0, "a"}, {0, 1, "b"},
			},
			threshold: 0,
			want: []TimeRangedText{
				{0, 0, "a "}, {0, 1, "b "},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := SetTimeRanges(tt.input, tt.threshold)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SetTimeRanges() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestSetTimeRanges_Properties(t *testing.T) {
	t.Parallel()

	inputs := [][]TimeRangedText{
		{{0, 3, "alpha"}, {3, 9, "beta"}, {9, 11, "gamma"}, {11, 40, "delta"}, {40, 41, "epsilon"}},
		{{0, 100, "long"}},
		{{0, 1, "a"}, {1, 2, "b"}, {2, 3, "c"}},
		{{5, 6, "x"}, {6, 26, "y"}, {26, 27, "z"}},
	}

	for _, input := range inputs {
		out := SetTimeRanges(input, DefaultThreshold)

		var wantText, gotText strings.Builder
		for _, f := range input {
			wantText.WriteString(f.Text)
		}
		for _, w := range out {
			gotText.WriteString(strings.ReplaceAll(w.Text, wordDelimiter, ""))
		}
		if gotText.String() != wantText.String() {
			t.Errorf("text not preserved: got %q, want %q", gotText.String(), wantText.String())
		}

		if last := out[len(out)-1]; last.EndTime != input[len(input)-1].EndTime {
			t.Errorf("last EndTime = %d, want %d", last.EndTime, input[len(input)-1].EndTime)
		}

		for i := 1; i < len(out); i++ {
			if out[i].StartTime < out[i-1].StartTime {
				t.Errorf("window %d starts before window %d", i, i-1)
			}
		}
	}
}

func TestSegmenter_DefaultThreshold(t *testing.T) {
	t.Parallel()

	input := []TimeRangedText{{0, 10, "a"}, {10, 19, "b"}, {19, 20, "c"}, {20, 25, "d"}}

	var zero Segmenter
	got := zero.Segment(input)
	want := []TimeRangedText{{0, 20, "a b c "}, {20, 25, "d "}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Segment() = %+v, want %+v", got, want)
	}

	if s := NewSegmenter(0); s.Threshold != DefaultThreshold {
		t.Errorf("NewSegmenter(0).Threshold = %d, want %d", s.Threshold, DefaultThreshold)
	}
	if s := NewSegmenter(5); s.Threshold != 5 {
		t.Errorf("NewSegmenter(5).Threshold = %d, want 5", s.Threshold)
	}
}

func TestTimeRangedText_Equality(t *testing.T) {
	t.Parallel()

	a := TimeRangedText{StartTime: 1, EndTime: 2, Text: "x"}
	b := TimeRangedText{StartTime: 1, EndTime: 2, Text: "x"}
	c := TimeRangedText{StartTime: 1, EndTime: 3, Text: "x"}

	if a != b {
		t.Error("identical values should be equal")
	}
	if a == c {
		t.Error("values with different end times should differ")
	}
	if c.Duration() != 2 {
		t.Errorf("Duration() = %d, want 2", c.Duration())
	}
}
