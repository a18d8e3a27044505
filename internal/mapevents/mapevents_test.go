// Hydro Alert - Flood Monitoring Realtime Notification Core
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/hydroalert

package mapevents

import (
	"context"
	"errors"
	"io"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/hydroalert/internal/auth"
	"github.com/tomtom215/hydroalert/internal/logging"
	"github.com/tomtom215/hydroalert/internal/websocket"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{
		Level:  "info",
		Format: "console",
		Output: io.Discard,
	})
}

type recorder struct {
	mu     sync.Mutex
	frames []websocket.Message
}

func (r *recorder) Send(_ context.Context, payload []byte) error {
	var msg struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, websocket.Message{Type: msg.Type, Data: msg.Data})
	return nil
}

func (r *recorder) Close(int, string) error { return nil }

func (r *recorder) count(msgType string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, f := range r.frames {
		if f.Type == msgType {
			n++
		}
	}
	return n
}

func (r *recorder) last() websocket.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frames[len(r.frames)-1]
}

func connect(t *testing.T, reg *websocket.Registry, role auth.Role) (*websocket.Connection, *recorder) {
	t.Helper()
	rec := &recorder{}
	c, err := reg.Connect(context.Background(), rec, auth.Identity{ID: "u", Username: "u", Role: role})
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	return c, rec
}

func TestOverlaps(t *testing.T) {
	a := BoundingBox{North: 10, South: 0, East: 10, West: 0}
	b := BoundingBox{North: 5, South: -5, East: 5, West: -5}
	c := BoundingBox{North: 20, South: 15, East: 20, West: 15}
	edge := BoundingBox{North: 20, South: 10, East: 20, West: 10}

	tests := []struct {
		name string
		x, y BoundingBox
		want bool
	}{
		{"A overlaps B", a, b, true},
		{"B overlaps A", b, a, true},
		{"A misses C", a, c, false},
		{"C misses A", c, a, false},
		{"shared corner", a, edge, true},
		{"self", a, a, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.x.Overlaps(tt.y); got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestAroundPoint(t *testing.T) {
	box := AroundPoint(45, 10, 1)
	if math.Abs(box.North-(45+1/111.0)) > 1e-12 {
		t.Errorf("unexpected north %v", box.North)
	}
	if math.Abs(box.East-(10+1/(111.0*0.5))) > 1e-12 {
		t.Errorf("unexpected east %v", box.East)
	}

	eq := AroundPoint(0, 10, 1)
	if !math.IsInf(eq.East, 1) || !math.IsInf(eq.West, -1) {
		t.Errorf("expected unbounded longitude at the equator, got %+v", eq)
	}
}

func TestBoundingBoxValidate(t *testing.T) {
	tests := []struct {
		name string
		box  BoundingBox
		ok   bool
	}{
		{"valid", BoundingBox{North: 10, South: 0, East: 10, West: 0}, true},
		{"inverted latitude", BoundingBox{North: 0, South: 10, East: 10, West: 0}, false},
		{"zero height", BoundingBox{North: 5, South: 5, East: 10, West: 0}, false},
		{"inverted longitude", BoundingBox{North: 10, South: 0, East: 0, West: 10}, false},
		{"north out of range", BoundingBox{North: 95, South: 0, East: 10, West: 0}, false},
		{"west out of range", BoundingBox{North: 10, South: 0, East: 10, West: -200}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.box.Validate()
			if tt.ok && err != nil {
				t.Errorf("expected valid, got %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidBounds) {
				t.Errorf("expected ErrInvalidBounds, got %v", err)
			}
		})
	}
}

func TestIndexReplaceNotMerge(t *testing.T) {
	x := NewIndex()
	first := BoundingBox{North: 10, South: 0, East: 10, West: 0}
	second := BoundingBox{North: 50, South: 40, East: 50, West: 40}

	if err := x.Register("c1", first); err != nil {
		t.Fatal(err)
	}
	if err := x.Register("c1", second); err != nil {
		t.Fatal(err)
	}
	stats := x.Stats()
	if stats.TotalRegisteredViewports != 1 {
		t.Fatalf("expected 1 viewport, got %d", stats.TotalRegisteredViewports)
	}
	if stats.ViewportRegistrations[0].Bounds != second {
		t.Errorf("expected last-registered box, got %+v", stats.ViewportRegistrations[0].Bounds)
	}

	if err := x.Register("c1", BoundingBox{North: 0, South: 10, East: 1, West: 0}); err == nil {
		t.Fatal("expected invalid box to be rejected")
	}
	if box, _ := x.Lookup("c1"); box != second {
		t.Errorf("rejected update must not replace the viewport, got %+v", box)
	}

	x.Unregister("c1")
	x.Unregister("c1")
	if x.Len() != 0 {
		t.Errorf("expected empty index, got %d", x.Len())
	}
}

func TestBroadcastEventReachesOverlappingViewport(t *testing.T) {
	reg := websocket.NewRegistry()
	b := NewBroadcaster(reg, NewIndex(), WithClock(func() time.Time { return time.Unix(0, 0) }))

	near, nearRec := connect(t, reg, auth.RoleStandard)
	far, farRec := connect(t, reg, auth.RoleStandard)
	if err := b.Index().Register(near.ID(), BoundingBox{North: 2, South: 0, East: 2, West: 0}); err != nil {
		t.Fatal(err)
	}
	if err := b.Index().Register(far.ID(), BoundingBox{North: 51, South: 49, East: 51, West: 49}); err != nil {
		t.Fatal(err)
	}

	n := b.BroadcastEvent(context.Background(), Event{
		Layer:      LayerEmergencyReports,
		Action:     ActionCreate,
		Lat:        1,
		Lng:        1,
		Properties: map[string]interface{}{"id": 7, "severity": "HIGH"},
	})
	if n != 1 {
		t.Fatalf("expected 1 delivery, got %d", n)
	}
	if farRec.count(websocket.MessageTypeMapUpdate) != 0 {
		t.Error("distant viewport must not receive the update")
	}
	if nearRec.count(websocket.MessageTypeMapUpdate) != 1 {
		t.Fatal("overlapping viewport should receive the update")
	}

	var data UpdateData
	if err := json.Unmarshal(nearRec.last().Data.(json.RawMessage), &data); err != nil {
		t.Fatal(err)
	}
	if data.Layer != LayerEmergencyReports || data.Action != ActionCreate {
		t.Errorf("unexpected layer/action %s/%s", data.Layer, data.Action)
	}
	if data.Feature.Geometry.Coordinates != [2]float64{1, 1} {
		t.Errorf("unexpected coordinates %v", data.Feature.Geometry.Coordinates)
	}
	if data.Feature.Properties["layer"] != string(LayerEmergencyReports) {
		t.Errorf("expected layer property, got %v", data.Feature.Properties)
	}
	if math.Abs(data.Bounds.North-1.01) > 1e-9 || math.Abs(data.Bounds.West-0.99) > 1e-9 {
		t.Errorf("unexpected bounds %+v", data.Bounds)
	}
}

func TestViewportDroppedOnDisconnect(t *testing.T) {
	reg := websocket.NewRegistry()
	b := NewBroadcaster(reg, NewIndex())
	c, _ := connect(t, reg, auth.RoleStandard)
	if err := b.Index().Register(c.ID(), BoundingBox{North: 2, South: 0, East: 2, West: 0}); err != nil {
		t.Fatal(err)
	}
	reg.Disconnect(c)
	if _, ok := b.Index().Lookup(c.ID()); ok {
		t.Error("viewport should be removed with its connection")
	}
}

func TestViewportUpdateAfterDisconnectLeavesNoEntry(t *testing.T) {
	reg := websocket.NewRegistry()
	b := NewBroadcaster(reg, NewIndex())
	d := websocket.NewDispatcher()
	b.Register(d)

	c, _ := connect(t, reg, auth.RoleStandard)
	reg.Disconnect(c)

	reply := d.Dispatch(context.Background(), c, []byte(`{"type":"viewport_update","data":{"viewport":{"north":10,"south":0,"east":10,"west":0}}}`))
	if reply != nil {
		t.Errorf("expected no reply for a gone connection, got %+v", reply)
	}
	if _, ok := b.Index().Lookup(c.ID()); ok {
		t.Error("viewport registered for a disconnected connection")
	}
	if n := b.Index().Stats().TotalRegisteredViewports; n != 0 {
		t.Errorf("expected 0 viewports, got %d", n)
	}
}

func TestTrackRejectsGoneConnection(t *testing.T) {
	reg := websocket.NewRegistry()
	b := NewBroadcaster(reg, NewIndex())
	box := BoundingBox{North: 2, South: 0, East: 2, West: 0}

	live, _ := connect(t, reg, auth.RoleStandard)
	if err := b.Track(live, box); err != nil {
		t.Fatalf("Track: %v", err)
	}

	gone, _ := connect(t, reg, auth.RoleStandard)
	reg.Disconnect(gone)
	if err := b.Track(gone, box); !errors.Is(err, websocket.ErrConnectionGone) {
		t.Errorf("expected ErrConnectionGone, got %v", err)
	}
	if _, ok := b.Index().Lookup(gone.ID()); ok {
		t.Error("viewport left behind for disconnected connection")
	}
	if _, ok := b.Index().Lookup(live.ID()); !ok {
		t.Error("live viewport should remain")
	}
}

func TestBroadcastRefresh(t *testing.T) {
	reg := websocket.NewRegistry()
	b := NewBroadcaster(reg, NewIndex())
	c, rec := connect(t, reg, auth.RoleStandard)
	if err := b.Index().Register(c.ID(), BoundingBox{North: 2, South: 0, East: 2, West: 0}); err != nil {
		t.Fatal(err)
	}
	if n := b.BroadcastRefresh(context.Background(), BoundingBox{North: 1, South: -1, East: 1, West: -1}); n != 1 {
		t.Errorf("expected 1 delivery, got %d", n)
	}
	if n := b.BroadcastRefresh(context.Background(), BoundingBox{North: 30, South: 20, East: 30, West: 20}); n != 0 {
		t.Errorf("expected no delivery, got %d", n)
	}
	if rec.count(websocket.MessageTypeMapRefresh) != 1 {
		t.Error("expected one map_refresh frame")
	}
}

func TestMapHandlers(t *testing.T) {
	reg := websocket.NewRegistry()
	b := NewBroadcaster(reg, NewIndex())
	d := websocket.NewDispatcher()
	b.Register(d)

	user, _ := connect(t, reg, auth.RoleStandard)
	admin, _ := connect(t, reg, auth.RoleAdmin)
	ctx := context.Background()

	reply := d.Dispatch(ctx, user, []byte(`{"type":"viewport_update","data":{"viewport":{"north":10,"south":0,"east":10,"west":0}}}`))
	if reply == nil || reply.Type != websocket.MessageTypeViewportUpdated {
		t.Fatalf("expected viewport_updated, got %+v", reply)
	}
	if _, ok := b.Index().Lookup(user.ID()); !ok {
		t.Error("viewport should be registered")
	}

	reply = d.Dispatch(ctx, user, []byte(`{"type":"viewport_update","data":{"viewport":{"north":0,"south":10,"east":10,"west":0}}}`))
	if reply == nil || reply.Type != websocket.MessageTypeError {
		t.Errorf("expected error for inverted viewport, got %+v", reply)
	}

	reply = d.Dispatch(ctx, user, []byte(`{"type":"request_refresh"}`))
	if reply == nil || reply.Type != websocket.MessageTypeRefreshRequested {
		t.Errorf("expected refresh_requested, got %+v", reply)
	}

	reply = d.Dispatch(ctx, user, []byte(`{"type":"get_viewport_stats"}`))
	if reply == nil || reply.Type != websocket.MessageTypeError {
		t.Errorf("standard connection should get an error, got %+v", reply)
	}

	reply = d.Dispatch(ctx, admin, []byte(`{"type":"get_viewport_stats"}`))
	if reply == nil || reply.Type != websocket.MessageTypeViewportStats {
		t.Fatalf("expected viewport_stats, got %+v", reply)
	}
	stats := reply.Data.(map[string]interface{})["stats"].(Stats)
	if stats.TotalRegisteredViewports != 1 {
		t.Errorf("expected 1 viewport, got %d", stats.TotalRegisteredViewports)
	}
}
