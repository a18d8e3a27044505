// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package notify

import (
	"errors"
	"time"

	"github.com/goccy/go-json"
)

var (
	// ErrUnknownKind is returned by Dispatch for an unrecognized event kind.
	ErrUnknownKind = errors.New("unknown event kind")
	// ErrInvalidPayload is returned when an event payload cannot be decoded.
	ErrInvalidPayload = errors.New("invalid event payload")
)

// Kind identifies what a DomainEvent is about.
type Kind string

const (
	KindReading      Kind = "reading"
	KindReport       Kind = "report"
	KindCenter       Kind = "center"
	KindAlert        Kind = "alert"
	KindNotification Kind = "notification"
	KindTriage       Kind = "triage"
)

// Location is a WGS84 point.
type Location struct {
	Lat float64 `json:"lat" validate:"latitude"`
	Lng float64 `json:"lng" validate:"longitude"`
}

// DomainEvent is produced outside this service and consumed only by the
// Notifier.
type DomainEvent struct {
	Kind     Kind            `json:"kind"`
	Action   string          `json:"action,omitempty"`
	Location *Location       `json:"location,omitempty"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

// Severity levels of an emergency report or alert.
const (
	SeverityLow      = "LOW"
	SeverityMedium   = "MEDIUM"
	SeverityHigh     = "HIGH"
	SeverityCritical = "CRITICAL"
)

// Report is the subset of an emergency report the notifications need.
type Report struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Severity    string    `json:"severity"`
	Category    string    `json:"category"`
	Status      string    `json:"status"`
	UserID      string    `json:"user_id"`
	SubmittedAt time.Time `json:"submitted_at"`
	Lat         float64   `json:"location_lat"`
	Lng         float64   `json:"location_lng"`
}

// IsCritical reports whether admins must be alerted immediately.
func (r Report) IsCritical() bool {
	return r.Severity == SeverityHigh || r.Severity == SeverityCritical
}

// Triage describes a status change made by an admin.
type Triage struct {
	ReportID  int64  `json:"report_id"`
	Status    string `json:"status"`
	TriagedBy string `json:"triaged_by"`
	UserID    string `json:"user_id"`
}

// Alert is an emergency alert sent to every connection.
type Alert struct {
	Title    string    `json:"title" validate:"required,min=5,max=200"`
	Message  string    `json:"message" validate:"required,min=10,max=1000"`
	Severity string    `json:"severity,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
	Location *Location `json:"location,omitempty"`
}

// Notification is a system notice sent to every connection.
type Notification struct {
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Message string `json:"message" validate:"required,min=1,max=1000"`
	Level   string `json:"level,omitempty" validate:"omitempty,oneof=info warning error success"`
}
