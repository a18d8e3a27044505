// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package mapevents

import (
	"cmp"
	"slices"
	"sync"

	"github.com/tomtom215/hydroalert/internal/metrics"
)

// Index maps connection ids to their current viewport.
type Index struct {
	mu        sync.RWMutex
	viewports map[string]BoundingBox
}

// NewIndex creates an empty index.
func NewIndex() *Index {
	return &Index{viewports: make(map[string]BoundingBox)}
}

// Register validates box and stores it for connectionID, replacing any
// earlier viewport.
func (x *Index) Register(connectionID string, box BoundingBox) error {
	if err := box.Validate(); err != nil {
		return err
	}
	x.mu.Lock()
	x.viewports[connectionID] = box
	n := len(x.viewports)
	x.mu.Unlock()
	metrics.MapViewports.Set(float64(n))
	return nil
}

// Unregister removes the viewport of connectionID if there is one.
func (x *Index) Unregister(connectionID string) {
	x.mu.Lock()
	delete(x.viewports, connectionID)
	n := len(x.viewports)
	x.mu.Unlock()
	metrics.MapViewports.Set(float64(n))
}

// Lookup returns the viewport registered for connectionID.
func (x *Index) Lookup(connectionID string) (BoundingBox, bool) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	box, ok := x.viewports[connectionID]
	return box, ok
}

// Len returns the number of registered viewports.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.viewports)
}

// Overlapping returns the connection ids whose viewport overlaps box.
func (x *Index) Overlapping(box BoundingBox) []string {
	x.mu.RLock()
	defer x.mu.RUnlock()
	var ids []string
	for id, vp := range x.viewports {
		if vp.Overlaps(box) {
			ids = append(ids, id)
		}
	}
	return ids
}

// Affected returns the connection ids whose viewport overlaps the envelope
// of radiusKm around (lat, lng).
func (x *Index) Affected(lat, lng, radiusKm float64) []string {
	return x.Overlapping(AroundPoint(lat, lng, radiusKm))
}

// ViewportEntry is one registration in Stats.
type ViewportEntry struct {
	ConnectionID string      `json:"connection_id"`
	Bounds       BoundingBox `json:"bounds"`
}

// Stats describes every registered viewport.
type Stats struct {
	TotalRegisteredViewports int             `json:"total_registered_viewports"`
	ViewportRegistrations    []ViewportEntry `json:"viewport_registrations"`
}

// Stats returns a snapshot ordered by connection id.
func (x *Index) Stats() Stats {
	x.mu.RLock()
	entries := make([]ViewportEntry, 0, len(x.viewports))
	for id, box := range x.viewports {
		entries = append(entries, ViewportEntry{ConnectionID: id, Bounds: box})
	}
	x.mu.RUnlock()

	slices.SortFunc(entries, func(a, b ViewportEntry) int {
		return cmp.Compare(a.ConnectionID, b.ConnectionID)
	})
	return Stats{TotalRegisteredViewports: len(entries), ViewportRegistrations: entries}
}
