// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package mapevents

import (
	"errors"
	"fmt"
	"math"

	"github.com/tomtom215/hydroalert/internal/validation"
)

const (
	// DefaultRadiusKm is the event radius used when none is configured.
	DefaultRadiusKm = 1.0

	kmPerDegree = 111.0

	// featureHalfSpan is the half-width in degrees of the bounds attached
	// to every map_update.
	featureHalfSpan = 0.01
)

// ErrInvalidBounds wraps every viewport validation failure.
var ErrInvalidBounds = errors.New("invalid map bounds")

// BoundingBox is an axis-aligned geographic rectangle in degrees.
type BoundingBox struct {
	North float64 `json:"north" validate:"latitude,gtfield=South"`
	South float64 `json:"south" validate:"latitude"`
	East  float64 `json:"east" validate:"longitude,gtfield=West"`
	West  float64 `json:"west" validate:"longitude"`
}

// Validate checks ranges and that north > south and east > west.
func (b BoundingBox) Validate() error {
	if verr := validation.ValidateStruct(&b); verr != nil {
		return fmt.Errorf("%w: %s", ErrInvalidBounds, verr.Error())
	}
	return nil
}

// Overlaps reports rectangle intersection. Touching edges overlap.
func (b BoundingBox) Overlaps(o BoundingBox) bool {
	return !(b.East < o.West || b.West > o.East || b.North < o.South || b.South > o.North)
}

// AroundPoint builds the envelope used to match an event at (lat, lng).
func AroundPoint(lat, lng, radiusKm float64) BoundingBox {
	latDelta := radiusKm / kmPerDegree
	lngDelta := radiusKm / (kmPerDegree * math.Abs(lat/90.0))
	return BoundingBox{
		North: lat + latDelta,
		South: lat - latDelta,
		East:  lng + lngDelta,
		West:  lng - lngDelta,
	}
}

// featureBounds is the fixed small box sent alongside a feature.
func featureBounds(lat, lng float64) BoundingBox {
	return BoundingBox{
		North: lat + featureHalfSpan,
		South: lat - featureHalfSpan,
		East:  lng + featureHalfSpan,
		West:  lng - featureHalfSpan,
	}
}
