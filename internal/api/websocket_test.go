package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lumastack/pixeld/internal/infrastructure/config"
)

// dialWS connects a WebSocket client to the rig's /api/v1/events
// endpoint through a live httptest server.
func dialWS(t *testing.T, rig *testRig, query string) *websocket.Conn {
	t.Helper()

	srv := httptest.NewServer(rig.router)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		status := 0
		if resp != nil {
			status = resp.StatusCode
		}
		t.Fatalf("dial: %v (status %d)", err, status)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func subscribe(t *testing.T, conn *websocket.Conn, channels ...string) {
	t.Helper()

	msg := WSMessage{
		Type:    WSTypeSubscribe,
		ID:      "sub-1",
		Payload: WSSubscribePayload{Channels: channels},
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("subscribe write: %v", err)
	}

	var reply WSMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("subscribe reply: %v", err)
	}
	if reply.Type != WSTypeResponse {
		t.Fatalf("reply type = %s, want response", reply.Type)
	}
}

func TestWebSocket_ReceivesStripEvents(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.initStrip(t, "porch", 10)

	conn := dialWS(t, rig, "")
	subscribe(t, conn, "strip.filled")

	rec := rig.do(t, http.MethodPost, "/fill/porch", `{"color":"0xff0000"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("fill status = %d", rec.Code)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var event WSMessage
	if err := conn.ReadJSON(&event); err != nil {
		t.Fatalf("event read: %v", err)
	}
	if event.Type != WSTypeEvent || event.EventType != "strip.filled" {
		t.Fatalf("event = %+v", event)
	}

	payload, _ := event.Payload.(map[string]any)
	if payload["strip_id"] != "porch" {
		t.Errorf("payload = %v", payload)
	}
	if id, _ := payload["event_id"].(string); id == "" {
		t.Error("event has no event_id")
	}
}

func TestWebSocket_UnsubscribedChannelIsSilent(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.initStrip(t, "porch", 10)

	conn := dialWS(t, rig, "")
	subscribe(t, conn, "animation.started")

	rig.do(t, http.MethodPost, "/fill/porch", `{"color":"0xff0000"}`)

	_ = conn.SetReadDeadline(time.Now().Add(300 * time.Millisecond))
	var event WSMessage
	if err := conn.ReadJSON(&event); err == nil {
		t.Fatalf("got event %+v on unsubscribed channel", event)
	}
}

func TestWebSocket_Ping(t *testing.T) {
	rig := newTestRig(t, nil)

	conn := dialWS(t, rig, "")

	msg := WSMessage{Type: WSTypePing, ID: "ping-1"}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("ping write: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply WSMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("pong read: %v", err)
	}
	if reply.Type != WSTypePong || reply.ID != "ping-1" {
		t.Errorf("reply = %+v, want pong", reply)
	}
}

func TestWebSocket_InvalidMessage(t *testing.T) {
	rig := newTestRig(t, nil)

	conn := dialWS(t, rig, "")

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var reply WSMessage
	if err := conn.ReadJSON(&reply); err != nil {
		t.Fatalf("read: %v", err)
	}
	if reply.Type != WSTypeError {
		t.Errorf("reply type = %s, want error", reply.Type)
	}
}

func TestWebSocket_TokenAuth(t *testing.T) {
	rig := newTestRig(t, func(d *Deps) {
		d.Auth = config.AuthConfig{Mode: config.AuthModeToken, Token: "sekrit"}
	})

	srv := httptest.NewServer(rig.router)
	t.Cleanup(srv.Close)
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/events"

	// Without a token the upgrade is refused.
	_, resp, err := websocket.DefaultDialer.Dial(base, nil)
	if err == nil {
		t.Fatal("dial without token should fail")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("dial status = %v, want 401", resp)
	}

	conn, _, err := websocket.DefaultDialer.Dial(base+"?token=sekrit", nil)
	if err != nil {
		t.Fatalf("dial with token: %v", err)
	}
	_ = conn.Close()
}

func TestHub_ClientCount(t *testing.T) {
	hub := NewHub(testWSConfig(), testLogger())
	if hub.ClientCount() != 0 {
		t.Errorf("ClientCount() = %d, want 0", hub.ClientCount())
	}
}

func TestHub_BroadcastMarshalsPayload(t *testing.T) {
	// Broadcast with no clients must not panic and must marshal cleanly.
	hub := NewHub(testWSConfig(), testLogger())
	hub.Publish("strip.filled", map[string]any{"strip_id": "porch"})

	// Round-trip the message type for shape sanity.
	raw, err := json.Marshal(WSMessage{Type: WSTypeEvent, EventType: "strip.filled"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(raw), "strip.filled") {
		t.Errorf("message = %s", raw)
	}
}
