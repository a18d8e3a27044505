// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package api

import (
	"net/http"

	"github.com/tomtom215/hydroalert/internal/validation"
)

// ReportUpdateRequest is the body of POST broadcast/report-update.
type ReportUpdateRequest struct {
	ReportID int64  `json:"report_id" validate:"gt=0"`
	Message  string `json:"message" validate:"required,min=5,max=500"`
}

// validateRequest writes a 400 VALIDATION_ERROR response and returns false
// when v fails its validate tags.
func validateRequest(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return true
	}
	apiErr := verr.ToAPIError()
	respondError(w, r, http.StatusBadRequest, &APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	})
	return false
}
