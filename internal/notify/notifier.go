// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/hydroalert/internal/logging"
	"github.com/tomtom215/hydroalert/internal/mapevents"
	"github.com/tomtom215/hydroalert/internal/websocket"
)

// Notifier routes domain events to the registry and map broadcaster.
type Notifier struct {
	registry    *websocket.Registry
	broadcaster *mapevents.Broadcaster
	now         func() time.Time
	log         zerolog.Logger
}

// NewNotifier creates a Notifier.
func NewNotifier(registry *websocket.Registry, broadcaster *mapevents.Broadcaster) *Notifier {
	return &Notifier{
		registry:    registry,
		broadcaster: broadcaster,
		now:         time.Now,
		log:         logging.WithComponent("notify"),
	}
}

func (n *Notifier) timestamp() string {
	return websocket.Timestamp(n.now())
}

var layerByKind = map[Kind]mapevents.Layer{
	KindReading: mapevents.LayerFloodReadings,
	KindReport:  mapevents.LayerEmergencyReports,
	KindCenter:  mapevents.LayerEvacuationCenters,
}

// Dispatch handles one domain event and returns the number of successful
// sends it caused.
func (n *Notifier) Dispatch(ctx context.Context, ev DomainEvent) (int, error) {
	action := ev.Action
	if action == "" {
		action = mapevents.ActionCreate
	}

	switch ev.Kind {
	case KindAlert:
		var a Alert
		if err := decode(ev.Payload, &a); err != nil {
			return 0, err
		}
		if a.Location == nil {
			a.Location = ev.Location
		}
		return n.EmergencyAlert(ctx, a), nil

	case KindNotification:
		var nt Notification
		if err := decode(ev.Payload, &nt); err != nil {
			return 0, err
		}
		return n.SystemNotification(ctx, nt), nil

	case KindTriage:
		var t Triage
		if err := decode(ev.Payload, &t); err != nil {
			return 0, err
		}
		return n.ReportTriaged(ctx, t), nil

	case KindReport:
		delivered := 0
		switch action {
		case mapevents.ActionCreate:
			var r Report
			if err := decode(ev.Payload, &r); err != nil {
				return 0, err
			}
			if ev.Location != nil {
				r.Lat, r.Lng = ev.Location.Lat, ev.Location.Lng
			}
			delivered += n.NewReport(ctx, r)
		case mapevents.ActionUpdate:
			var r Report
			if err := decode(ev.Payload, &r); err != nil {
				return 0, err
			}
			if r.UserID != "" {
				delivered += n.ReportUpdate(ctx, r.UserID, r.ID, map[string]interface{}{
					"title":     r.Title,
					"status":    r.Status,
					"message":   "Your emergency report has been updated",
					"timestamp": n.timestamp(),
				})
			}
		}
		geo, err := n.mapUpdate(ctx, ev, action)
		return delivered + geo, err

	case KindReading, KindCenter:
		return n.mapUpdate(ctx, ev, action)

	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}
}

// mapUpdate broadcasts ev to viewports when it carries a location.
func (n *Notifier) mapUpdate(ctx context.Context, ev DomainEvent, action string) (int, error) {
	if ev.Location == nil {
		return 0, nil
	}
	props := map[string]interface{}{}
	if len(ev.Payload) > 0 {
		if err := decode(ev.Payload, &props); err != nil {
			return 0, err
		}
	}
	return n.broadcaster.BroadcastEvent(ctx, mapevents.Event{
		Layer:      layerByKind[ev.Kind],
		Action:     action,
		Lat:        ev.Location.Lat,
		Lng:        ev.Location.Lng,
		Properties: props,
	}), nil
}

func decode(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return fmt.Errorf("%w: empty", ErrInvalidPayload)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return nil
}

// NewReport alerts admins about HIGH and CRITICAL reports and acknowledges
// the submission to the submitter.
func (n *Notifier) NewReport(ctx context.Context, r Report) int {
	delivered := 0
	if r.IsCritical() {
		delivered += n.registry.BroadcastToAdmins(ctx, websocket.Message{
			Type: websocket.MessageTypeNewCriticalReport,
			Data: map[string]interface{}{
				"report_id": r.ID,
				"title":     r.Title,
				"severity":  r.Severity,
				"category":  r.Category,
				"location":  Location{Lat: r.Lat, Lng: r.Lng},
				"timestamp": n.timestamp(),
			},
		})
	}

	if r.UserID != "" {
		submitted := r.SubmittedAt
		if submitted.IsZero() {
			submitted = n.now()
		}
		delivered += n.registry.BroadcastToUser(ctx, r.UserID, websocket.Message{
			Type: websocket.MessageTypeReportSubmitted,
			Data: map[string]interface{}{
				"report_id": r.ID,
				"title":     r.Title,
				"status":    r.Status,
				"message":   "Your emergency report has been submitted and is being reviewed",
				"timestamp": websocket.Timestamp(submitted),
			},
		})
	}

	n.log.Info().
		Int64("report_id", r.ID).
		Str("severity", r.Severity).
		Int("delivered", delivered).
		Msg("new report notified")
	return delivered
}

// ReportTriaged notifies the report owner and every admin.
func (n *Notifier) ReportTriaged(ctx context.Context, t Triage) int {
	msg := websocket.Message{
		Type: websocket.MessageTypeReportTriaged,
		Data: map[string]interface{}{
			"report_id":  t.ReportID,
			"status":     t.Status,
			"triaged_by": t.TriagedBy,
			"timestamp":  n.timestamp(),
		},
	}
	delivered := n.registry.BroadcastToUser(ctx, t.UserID, msg)
	delivered += n.registry.BroadcastToAdmins(ctx, msg)
	n.log.Info().Int64("report_id", t.ReportID).Str("status", t.Status).Int("delivered", delivered).Msg("triage notified")
	return delivered
}

// EmergencyAlert sends the alert to every connection. Severity defaults
// to HIGH.
func (n *Notifier) EmergencyAlert(ctx context.Context, a Alert) int {
	if a.Severity == "" {
		a.Severity = SeverityHigh
	}
	delivered := n.registry.BroadcastToAll(ctx, websocket.Message{
		Type: websocket.MessageTypeEmergencyAlert,
		Data: map[string]interface{}{
			"title":     a.Title,
			"message":   a.Message,
			"severity":  a.Severity,
			"location":  a.Location,
			"timestamp": n.timestamp(),
		},
	})
	n.log.Warn().Str("title", a.Title).Str("severity", a.Severity).Int("delivered", delivered).Msg("emergency alert broadcast")
	return delivered
}

// SystemNotification sends nt to every connection. Level defaults to info.
func (n *Notifier) SystemNotification(ctx context.Context, nt Notification) int {
	if nt.Level == "" {
		nt.Level = "info"
	}
	delivered := n.registry.BroadcastToAll(ctx, websocket.Message{
		Type: websocket.MessageTypeSystemNotification,
		Data: map[string]interface{}{
			"title":     nt.Title,
			"message":   nt.Message,
			"level":     nt.Level,
			"timestamp": n.timestamp(),
		},
	})
	n.log.Info().Str("title", nt.Title).Int("delivered", delivered).Msg("system notification broadcast")
	return delivered
}

// AdminMessage sends data to every admin connection.
func (n *Notifier) AdminMessage(ctx context.Context, data map[string]interface{}) int {
	return n.registry.BroadcastToAdmins(ctx, websocket.Message{
		Type: websocket.MessageTypeAdminMessage,
		Data: data,
	})
}

// ReportUpdate sends a report_update to one user. Keys in data are merged
// into the payload next to report_id.
func (n *Notifier) ReportUpdate(ctx context.Context, userID string, reportID int64, data map[string]interface{}) int {
	payload := make(map[string]interface{}, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	payload["report_id"] = reportID
	return n.registry.BroadcastToUser(ctx, userID, websocket.Message{
		Type: websocket.MessageTypeReportUpdate,
		Data: payload,
	})
}

// ConnectionTest sends a connection_test to userID, or to everybody when
// userID is empty. ok is false when userID has no live connection.
func (n *Notifier) ConnectionTest(ctx context.Context, userID string) (delivered int, ok bool) {
	msg := websocket.Message{
		Type: websocket.MessageTypeConnectionTest,
		Data: map[string]interface{}{
			"message":   "WebSocket connection test",
			"timestamp": n.timestamp(),
		},
	}
	if userID == "" {
		return n.registry.BroadcastToAll(ctx, msg), true
	}
	if !n.registry.IsUserConnected(userID) {
		return 0, false
	}
	return n.registry.BroadcastToUser(ctx, userID, msg), true
}
