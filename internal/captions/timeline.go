// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package captions

import (
	"bytes"

	"github.com/goccy/go-json"
)

// Timeline maps keyphrases to the start times of the windows they were found in.
// Keys iterate in first-insertion order. A Timeline is not safe for concurrent
// mutation; share it read-only or Clone it.
type Timeline struct {
	keys  []string
	times map[string][]int64
}

// NewTimeline returns an empty Timeline.
func NewTimeline() *Timeline {
	return &Timeline{times: make(map[string][]int64)}
}

// Append adds t to the timestamps of keyphrase, creating the entry if needed.
func (tl *Timeline) Append(keyphrase string, t int64) {
	if _, ok := tl.times[keyphrase]; !ok {
		tl.keys = append(tl.keys, keyphrase)
	}
	tl.times[keyphrase] = append(tl.times[keyphrase], t)
}

// Set replaces the timestamps of keyphrase. An existing key keeps its position.
func (tl *Timeline) Set(keyphrase string, times []int64) {
	if _, ok := tl.times[keyphrase]; !ok {
		tl.keys = append(tl.keys, keyphrase)
	}
	cp := make([]int64, len(times))
	copy(cp, times)
	tl.times[keyphrase] = cp
}

// Get returns a copy of the timestamps recorded for keyphrase.
func (tl *Timeline) Get(keyphrase string) ([]int64, bool) {
	times, ok := tl.times[keyphrase]
	if !ok {
		return nil, false
	}
	cp := make([]int64, len(times))
	copy(cp, times)
	return cp, true
}

// Delete removes keyphrase. It reports whether the key existed.
func (tl *Timeline) Delete(keyphrase string) bool {
	if _, ok := tl.times[keyphrase]; !ok {
		return false
	}
	delete(tl.times, keyphrase)
	for i, k := range tl.keys {
		if k == keyphrase {
			tl.keys = append(tl.keys[:i], tl.keys[i+1:]...)
			break
		}
	}
	return true
}

// Keys returns the keyphrases in insertion order.
func (tl *Timeline) Keys() []string {
	keys := make([]string, len(tl.keys))
	copy(keys, tl.keys)
	return keys
}

// Len returns the number of distinct keyphrases.
func (tl *Timeline) Len() int {
	return len(tl.keys)
}

// Range calls fn for each keyphrase in insertion order until fn returns false.
// The slice passed to fn must not be retained or modified.
func (tl *Timeline) Range(fn func(keyphrase string, times []int64) bool) {
	for _, k := range tl.keys {
		if !fn(k, tl.times[k]) {
			return
		}
	}
}

// Clone returns a deep copy.
func (tl *Timeline) Clone() *Timeline {
	out := &Timeline{
		keys:  make([]string, len(tl.keys)),
		times: make(map[string][]int64, len(tl.times)),
	}
	copy(out.keys, tl.keys)
	for k, v := range tl.times {
		cp := make([]int64, len(v))
		copy(cp, v)
		out.times[k] = cp
	}
	return out
}

// Map returns the contents as a plain map. Ordering is lost.
func (tl *Timeline) Map() map[string][]int64 {
	out := make(map[string][]int64, len(tl.times))
	for k, v := range tl.times {
		cp := make([]int64, len(v))
		copy(cp, v)
		out[k] = cp
	}
	return out
}

// MarshalJSON encodes the Timeline as a JSON object with keys in insertion order.
func (tl *Timeline) MarshalJSON() ([]byte, error) {
	if tl == nil {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range tl.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		times := tl.times[k]
		if times == nil {
			times = []int64{}
		}
		val, err := json.Marshal(times)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
