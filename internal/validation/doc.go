// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is built once and shared; it caches struct
// metadata, so callers should always go through ValidateStruct.
//
// Field names in error messages use the json tag of the field, so a client
// sees the same name it sent:
//
//	type Viewport struct {
//	    North float64 `json:"north" validate:"latitude,gtfield=South"`
//	    South float64 `json:"south" validate:"latitude"`
//	}
//
//	if verr := validation.ValidateStruct(&v); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
//	    return
//	}
//
// Supported message templates cover required, latitude, longitude, oneof,
// gt/gte/lt/lte, gtfield/ltfield and min/max (length for strings, value for
// numbers). Any other tag falls back to "<field> failed <tag> validation".
package validation
