// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/hydroalert/internal/logging"
	"github.com/tomtom215/hydroalert/internal/middleware"
)

// maxBodyBytes bounds admin request bodies.
const maxBodyBytes = 1 << 20

// APIResponse is the envelope for admin endpoint responses.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *APIMeta    `json:"meta,omitempty"`
}

// APIError is the error part of APIResponse.
type APIError struct {
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIMeta carries tracing metadata.
type APIMeta struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func respondSuccess(w http.ResponseWriter, r *http.Request, data interface{}) {
	writeJSON(w, http.StatusOK, &APIResponse{
		Success: true,
		Data:    data,
		Meta:    &APIMeta{RequestID: middleware.GetRequestID(r.Context()), Timestamp: time.Now().UTC()},
	})
}

func respondError(w http.ResponseWriter, r *http.Request, status int, apiErr *APIError) {
	apiErr.RequestID = middleware.GetRequestID(r.Context())
	writeJSON(w, status, &APIResponse{
		Success: false,
		Error:   apiErr,
		Meta:    &APIMeta{RequestID: apiErr.RequestID, Timestamp: time.Now().UTC()},
	})
}

// decodeBody reads a JSON body into v. It writes the 400 response itself
// and returns false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		logging.Ctx(r.Context()).Debug().Err(err).Msg("invalid request body")
		respondError(w, r, http.StatusBadRequest, &APIError{Code: "INVALID_REQUEST", Message: "Invalid request body"})
		return false
	}
	return true
}
