// Captionmap - Caption Keyphrase Indexing and Video Bookmarks
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/captionmap

package captions

// Aggregator accumulates extracted entities into a Timeline for a single
// pipeline run. It only grows; nothing is ever removed. It is not safe for
// concurrent use.
type Aggregator struct {
	timeline *Timeline
}

// NewAggregator returns an empty Aggregator.
func NewAggregator() *Aggregator {
	return &Aggregator{timeline: NewTimeline()}
}

// AddEntities appends startTime to the timeline of every entity, in order.
// Repeated entities in one call produce repeated timestamps.
func (a *Aggregator) AddEntities(entities []string, startTime int64) {
	for _, entity := range entities {
		a.timeline.Append(entity, startTime)
	}
}

// EntitiesMap returns a snapshot of the timeline built so far. Later calls to
// AddEntities do not affect a returned snapshot.
func (a *Aggregator) EntitiesMap() *Timeline {
	return a.timeline.Clone()
}
