package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/lumastack/pixeld/internal/animation"
	"github.com/lumastack/pixeld/internal/controller"
	"github.com/lumastack/pixeld/internal/driver"
	"github.com/lumastack/pixeld/internal/infrastructure/config"
	"github.com/lumastack/pixeld/internal/infrastructure/logging"
	"github.com/lumastack/pixeld/internal/store"
	"github.com/lumastack/pixeld/internal/strip"
)

type testRig struct {
	server *Server
	router http.Handler
	actor  *controller.Actor
	hub    *Hub
}

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{Level: "error", Format: "text", Output: "stdout"}, "test")
}

func testWSConfig() config.WebSocketConfig {
	return config.WebSocketConfig{
		MaxMessageSize: 1 << 16,
		PingInterval:   30,
		PongTimeout:    60,
	}
}

// newTestRig builds a server over a real controller on memory drivers.
// The hub is wired as the controller's event sink so WebSocket tests
// see real events.
func newTestRig(t *testing.T, mutate func(*Deps)) *testRig {
	t.Helper()
	return buildRig(t, nil, mutate)
}

// newTestRigWithOpLog additionally wires an operation log into the
// actor and the /api/v1/ops handler.
func newTestRigWithOpLog(t *testing.T, st *store.Store) *testRig {
	t.Helper()
	return buildRig(t, st, func(d *Deps) { d.Store = st })
}

func buildRig(t *testing.T, oplog controller.OpLog, mutate func(*Deps)) *testRig {
	t.Helper()

	logger := testLogger()
	hub := NewHub(testWSConfig(), logger)

	factory, err := driver.NewFactory(driver.Config{Platform: driver.PlatformMemory})
	if err != nil {
		t.Fatalf("driver.NewFactory: %v", err)
	}
	ctrl, err := controller.New(controller.Deps{
		Strips:     strip.NewRegistry(),
		Animations: animation.NewRegistry(),
		Devices:    factory,
		Events:     hub,
	})
	if err != nil {
		t.Fatalf("controller.New: %v", err)
	}

	actor := controller.NewActor(ctrl, controller.ActorConfig{
		TickInterval: time.Hour,
		OpLog:        oplog,
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = actor.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	deps := Deps{
		Config:      config.ServerConfig{Host: "127.0.0.1", Port: 0},
		WS:          testWSConfig(),
		Auth:        config.AuthConfig{Mode: config.AuthModeNone},
		Logger:      logger,
		Actor:       actor,
		ExternalHub: hub,
		Version:     "test",
	}
	if mutate != nil {
		mutate(&deps)
	}

	server, err := New(deps)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	return &testRig{
		server: server,
		router: server.buildRouter(),
		actor:  actor,
		hub:    hub,
	}
}

func (rig *testRig) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	rig.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response not JSON: %v (%s)", err, rec.Body.String())
	}
	return body
}

func (rig *testRig) initStrip(t *testing.T, id string, pixelCount int) {
	t.Helper()
	rec := rig.do(t, http.MethodPost, "/init/neopixels",
		fmt.Sprintf(`{"pin":"D18","pixel_count":%d,"id":%q}`, pixelCount, id))
	if rec.Code != http.StatusOK {
		t.Fatalf("init strip: status %d body %s", rec.Code, rec.Body.String())
	}
}

func TestNew_RequiresDeps(t *testing.T) {
	if _, err := New(Deps{Logger: testLogger()}); err == nil {
		t.Error("New() without actor should fail")
	}
	if _, err := New(Deps{}); err == nil {
		t.Error("New() without logger should fail")
	}
}

func TestInitNeoPixels(t *testing.T) {
	rig := newTestRig(t, nil)

	rec := rig.do(t, http.MethodPost, "/init/neopixels", `{"pin":"D18","pixel_count":10}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["success"] != true {
		t.Errorf("success = %v", body["success"])
	}
	// Default strip id is the pin name.
	if body["strip_id"] != "D18" {
		t.Errorf("strip_id = %v, want D18", body["strip_id"])
	}
}

func TestInitNeoPixels_MissingField(t *testing.T) {
	rig := newTestRig(t, nil)

	rec := rig.do(t, http.MethodPost, "/init/neopixels", `{"pin":"D18"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Missing Required Argument(s): [ pixel_count ]" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestInitNeoPixels_EmptyBody(t *testing.T) {
	rig := newTestRig(t, nil)

	rec := rig.do(t, http.MethodPost, "/init/neopixels", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Missing Required JSON Body" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestInitNeoPixels_MalformedJSON(t *testing.T) {
	rig := newTestRig(t, nil)

	rec := rig.do(t, http.MethodPost, "/init/neopixels", `{"pin":`)
	body := decodeBody(t, rec)
	if rec.Code != http.StatusBadRequest || body["error"] != "Invalid JSON" {
		t.Errorf("status = %d error = %v", rec.Code, body["error"])
	}
}

func TestInitDotStars(t *testing.T) {
	rig := newTestRig(t, nil)

	rec := rig.do(t, http.MethodPost, "/init/dotstars",
		`{"clock_pin":"SCK","data_pin":"MOSI","pixel_count":5}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["strip_id"] != "SCKMOSI" {
		t.Errorf("strip_id = %v, want SCKMOSI", body["strip_id"])
	}
}

func TestFill_RoundTrip(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.initStrip(t, "porch", 10)

	rec := rig.do(t, http.MethodPost, "/fill/porch", `{"color":"#ff0000"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("fill status = %d, body %s", rec.Code, rec.Body.String())
	}

	rec = rig.do(t, http.MethodGet, "/pixels/porch?color_type=hex", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("pixels status = %d", rec.Code)
	}
	// Pixels come back as an object keyed by the pixel index, the same
	// shape existing clients read.
	body := decodeBody(t, rec)
	pixels, ok := body["pixels"].(map[string]any)
	if !ok || len(pixels) != 10 {
		t.Fatalf("pixels = %v", body["pixels"])
	}
	if pixels["0"] != "0xff0000" || pixels["9"] != "0xff0000" {
		t.Errorf("pixels = %v, want 0xff0000 at every index key", pixels)
	}
}

func TestFill_MissingColor(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.initStrip(t, "porch", 10)

	rec := rig.do(t, http.MethodPost, "/fill/porch", `{}`)
	body := decodeBody(t, rec)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["error"] != "Missing Required Argument(s): [ color ]" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestFill_UnknownStrip(t *testing.T) {
	rig := newTestRig(t, nil)

	rec := rig.do(t, http.MethodPost, "/fill/ghost", `{"color":"0xff0000"}`)
	body := decodeBody(t, rec)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["success"] != false {
		t.Errorf("success = %v", body["success"])
	}
}

func TestSetPixels_IndexError(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.initStrip(t, "porch", 30)

	rec := rig.do(t, http.MethodPost, "/pixels/porch",
		`{"pixels":{"0":"0xff0000","40":"0x00ff00"}}`)
	body := decodeBody(t, rec)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["error"] != "Index Error on Key: 40" {
		t.Errorf("error = %v", body["error"])
	}

	// The in-range key was applied before the failure.
	rec = rig.do(t, http.MethodGet, "/pixels/porch?color_type=hex", "")
	pixels := decodeBody(t, rec)["pixels"].(map[string]any)
	if pixels["0"] != "0xff0000" {
		t.Errorf("pixel 0 = %v, want applied 0xff0000", pixels["0"])
	}
}

func TestBrightness_RoundTrip(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.initStrip(t, "porch", 10)

	rec := rig.do(t, http.MethodPost, "/brightness/porch", `{"brightness":0.25}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set status = %d", rec.Code)
	}

	rec = rig.do(t, http.MethodGet, "/brightness/porch", "")
	body := decodeBody(t, rec)
	if body["brightness"] != 0.25 {
		t.Errorf("brightness = %v, want 0.25", body["brightness"])
	}
}

func TestAutoWrite_RoundTrip(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.initStrip(t, "porch", 10)

	rec := rig.do(t, http.MethodPost, "/auto_write/porch", `{"auto_write":false}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("set status = %d", rec.Code)
	}

	rec = rig.do(t, http.MethodGet, "/auto_write/porch", "")
	body := decodeBody(t, rec)
	if body["auto_write"] != false {
		t.Errorf("auto_write = %v, want false", body["auto_write"])
	}
}

func TestShow(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.initStrip(t, "porch", 10)

	rec := rig.do(t, http.MethodPost, "/show/porch", "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestAnimationLifecycle(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.initStrip(t, "porch", 10)

	rec := rig.do(t, http.MethodPost, "/init/animation",
		`{"strip_id":"porch","animation_id":"flash","animation":"blink"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("init status = %d, body %s", rec.Code, rec.Body.String())
	}
	body := decodeBody(t, rec)
	if body["animation_id"] != "flash" || body["strip_id"] != "porch" {
		t.Errorf("body = %v", body)
	}

	rec = rig.do(t, http.MethodPost, "/start/animation/flash", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("start status = %d", rec.Code)
	}

	rec = rig.do(t, http.MethodPost, "/animation/flash/setprop",
		`{"name":"color","value":"0x00ff00"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("setprop status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestSetProperty_Invalid(t *testing.T) {
	rig := newTestRig(t, nil)
	rig.initStrip(t, "porch", 10)
	rig.do(t, http.MethodPost, "/init/animation",
		`{"strip_id":"porch","animation_id":"flash","animation":"blink"}`)

	rec := rig.do(t, http.MethodPost, "/animation/flash/setprop",
		`{"name":"wobble","value":1}`)
	body := decodeBody(t, rec)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if body["error"] != "Invalid property wobble" {
		t.Errorf("error = %v", body["error"])
	}
}

func TestStartAnimation_Unknown(t *testing.T) {
	rig := newTestRig(t, nil)

	rec := rig.do(t, http.MethodPost, "/start/animation/ghost", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}
