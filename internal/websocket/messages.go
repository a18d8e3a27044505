// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package websocket

import "time"

// Message types for WebSocket communication
const (
	// Lifecycle
	MessageTypeConnectionEstablished    = "connection_established"
	MessageTypeMapConnectionEstablished = "map_connection_established"
	MessageTypeConnectionTest           = "connection_test"

	// Client requests and their replies
	MessageTypePing             = "ping"
	MessageTypePong             = "pong"
	MessageTypeViewportUpdate   = "viewport_update"
	MessageTypeViewportUpdated  = "viewport_updated"
	MessageTypeRequestRefresh   = "request_refresh"
	MessageTypeRefreshRequested = "refresh_requested"
	MessageTypeGetViewportStats = "get_viewport_stats"
	MessageTypeViewportStats    = "viewport_stats"
	MessageTypeError            = "error"

	// Server pushes
	MessageTypeMapUpdate          = "map_update"
	MessageTypeMapRefresh         = "map_refresh"
	MessageTypeNewCriticalReport  = "new_critical_report"
	MessageTypeReportSubmitted    = "report_submitted"
	MessageTypeReportTriaged      = "report_triaged"
	MessageTypeReportUpdate       = "report_update"
	MessageTypeEmergencyAlert     = "emergency_alert"
	MessageTypeSystemNotification = "system_notification"
	MessageTypeAdminMessage       = "admin_message"
)

// Channel names
const (
	ChannelGlobal    = "global"
	ChannelAdmin     = "admin"
	ChannelBroadcast = "broadcast"
)

// UserChannel is the private channel of one identity.
func UserChannel(id string) string {
	return "user:" + id
}

// Message is the envelope for every frame in both directions.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ErrorData is the payload of an "error" message.
type ErrorData struct {
	Message string `json:"message"`
}

// ErrorMessage builds an in-band error envelope.
func ErrorMessage(text string) Message {
	return Message{Type: MessageTypeError, Data: ErrorData{Message: text}}
}

// Timestamp formats t the way every outbound payload carries time.
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
