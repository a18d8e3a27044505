// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

/*
Package mapevents filters geo-tagged events by the map viewport each client
has declared and delivers them as map_update messages.

Key Components:

  - BoundingBox: an axis-aligned north/south/east/west rectangle
  - Index: connection id to viewport, one entry per connection (replace, not merge)
  - Broadcaster: turns an Event into a GeoJSON map_update and sends it to the
    connections whose viewport overlaps the event envelope

Geometry:

Overlap is plain rectangle intersection and does not handle boxes crossing
the antimeridian. The event envelope uses a flat-earth conversion of the
radius to degrees:

	latDelta = radiusKm / 111
	lngDelta = radiusKm / (111 * |lat / 90|)

lngDelta grows without bound as lat approaches 0 and is +Inf at lat == 0, so
events on the equator match every viewport in their latitude band.

Viewports are removed automatically when the owning connection leaves the
registry.
*/
package mapevents
