package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lumastack/pixeld/internal/controller"
)

// sourceHTTP tags operations dispatched from this surface in the
// operation log.
const sourceHTTP = "http"

// readBody drains the (size-limited) request body.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	raw, err := io.ReadAll(r.Body)
	if err != nil {
		writeControlError(w, controller.NewValidationError("Invalid JSON"))
		return nil, false
	}
	return raw, true
}

// dispatch runs one operation on the controller goroutine.
func (s *Server) dispatch(r *http.Request, name, target string, fn func(*controller.Controller) error) error {
	op := controller.Op{Name: name, Target: target, Source: sourceHTTP}
	return s.actor.Do(r.Context(), op, fn)
}

// handleInitNeoPixels creates a single-wire strip.
//
//	POST /init/neopixels {pin, pixel_count, id?, brightness?, auto_write?}
func (s *Server) handleInitNeoPixels(w http.ResponseWriter, r *http.Request) {
	raw, ok := readBody(w, r)
	if !ok {
		return
	}
	f, err := controller.Validate(raw, "pin", "pixel_count")
	if err != nil {
		writeControlError(w, err)
		return
	}

	var stripID string
	err = s.dispatch(r, "init_neopixels", initTarget(f, "pin"), func(c *controller.Controller) error {
		var err error
		stripID, err = c.InitNeoPixels(f)
		return err
	})
	if err != nil {
		writeControlError(w, err)
		return
	}
	writeControlSuccess(w, map[string]any{"strip_id": stripID})
}

// handleInitDotStars creates a two-wire strip.
//
//	POST /init/dotstars {clock_pin, data_pin, pixel_count, id?, brightness?, auto_write?}
func (s *Server) handleInitDotStars(w http.ResponseWriter, r *http.Request) {
	raw, ok := readBody(w, r)
	if !ok {
		return
	}
	f, err := controller.Validate(raw, "clock_pin", "data_pin", "pixel_count")
	if err != nil {
		writeControlError(w, err)
		return
	}

	var stripID string
	err = s.dispatch(r, "init_dotstars", initTarget(f, "clock_pin"), func(c *controller.Controller) error {
		var err error
		stripID, err = c.InitDotStars(f)
		return err
	})
	if err != nil {
		writeControlError(w, err)
		return
	}
	writeControlSuccess(w, map[string]any{"strip_id": stripID})
}

// initTarget resolves the operation-log target of an init request: the
// explicit id when given, otherwise the field the default id derives
// from.
func initTarget(f controller.Fields, defaultField string) string {
	if id, ok := f["id"].(string); ok {
		return id
	}
	target, _ := f[defaultField].(string)
	return target
}

// handleGetPixels reads the strip's pixel buffer.
//
//	GET /pixels/{stripID}?color_type=rgb|hex
func (s *Server) handleGetPixels(w http.ResponseWriter, r *http.Request) {
	stripID := chi.URLParam(r, "stripID")
	colorType := r.URL.Query().Get("color_type")

	var pixels map[string]any
	err := s.dispatch(r, "get_pixels", stripID, func(c *controller.Controller) error {
		var err error
		pixels, err = c.Pixels(stripID, colorType)
		return err
	})
	if err != nil {
		writeControlError(w, err)
		return
	}
	writeControlSuccess(w, map[string]any{"strip_id": stripID, "pixels": pixels})
}

// handleSetPixels writes a map of pixel indices.
//
//	POST /pixels/{stripID} {pixels: {"<index>": color}, blank_pixels?}
func (s *Server) handleSetPixels(w http.ResponseWriter, r *http.Request) {
	stripID := chi.URLParam(r, "stripID")
	raw, ok := readBody(w, r)
	if !ok {
		return
	}
	f, err := controller.Validate(raw, "pixels")
	if err != nil {
		writeControlError(w, err)
		return
	}

	err = s.dispatch(r, "pixels", stripID, func(c *controller.Controller) error {
		return c.SetPixels(stripID, f)
	})
	if err != nil {
		writeControlError(w, err)
		return
	}
	writeControlSuccess(w, map[string]any{"strip_id": stripID})
}

// handleShow forces a hardware write of the buffer.
//
//	POST /show/{stripID}
func (s *Server) handleShow(w http.ResponseWriter, r *http.Request) {
	stripID := chi.URLParam(r, "stripID")

	err := s.dispatch(r, "show", stripID, func(c *controller.Controller) error {
		return c.Show(stripID)
	})
	if err != nil {
		writeControlError(w, err)
		return
	}
	writeControlSuccess(w, map[string]any{"strip_id": stripID})
}

// handleFill writes one color to every pixel.
//
//	POST /fill/{stripID} {color}
func (s *Server) handleFill(w http.ResponseWriter, r *http.Request) {
	stripID := chi.URLParam(r, "stripID")
	raw, ok := readBody(w, r)
	if !ok {
		return
	}
	f, err := controller.Validate(raw)
	if err != nil {
		writeControlError(w, err)
		return
	}

	err = s.dispatch(r, "fill", stripID, func(c *controller.Controller) error {
		return c.Fill(stripID, f)
	})
	if err != nil {
		writeControlError(w, err)
		return
	}
	writeControlSuccess(w, map[string]any{"strip_id": stripID})
}

// handleGetBrightness reads the strip's brightness.
//
//	GET /brightness/{stripID}
func (s *Server) handleGetBrightness(w http.ResponseWriter, r *http.Request) {
	stripID := chi.URLParam(r, "stripID")

	var brightness float64
	err := s.dispatch(r, "get_brightness", stripID, func(c *controller.Controller) error {
		var err error
		brightness, err = c.Brightness(stripID)
		return err
	})
	if err != nil {
		writeControlError(w, err)
		return
	}
	writeControlSuccess(w, map[string]any{"strip_id": stripID, "brightness": brightness})
}

// handleSetBrightness writes the strip's brightness.
//
//	POST /brightness/{stripID} {brightness}
func (s *Server) handleSetBrightness(w http.ResponseWriter, r *http.Request) {
	stripID := chi.URLParam(r, "stripID")
	raw, ok := readBody(w, r)
	if !ok {
		return
	}
	f, err := controller.Validate(raw, "brightness")
	if err != nil {
		writeControlError(w, err)
		return
	}

	var brightness float64
	err = s.dispatch(r, "brightness", stripID, func(c *controller.Controller) error {
		var err error
		brightness, err = c.SetBrightness(stripID, f)
		return err
	})
	if err != nil {
		writeControlError(w, err)
		return
	}
	writeControlSuccess(w, map[string]any{"strip_id": stripID, "brightness": brightness})
}

// handleGetAutoWrite reads the strip's auto-write flag.
//
//	GET /auto_write/{stripID}
func (s *Server) handleGetAutoWrite(w http.ResponseWriter, r *http.Request) {
	stripID := chi.URLParam(r, "stripID")

	var autoWrite bool
	err := s.dispatch(r, "get_auto_write", stripID, func(c *controller.Controller) error {
		var err error
		autoWrite, err = c.AutoWrite(stripID)
		return err
	})
	if err != nil {
		writeControlError(w, err)
		return
	}
	writeControlSuccess(w, map[string]any{"strip_id": stripID, "auto_write": autoWrite})
}

// handleSetAutoWrite writes the strip's auto-write flag.
//
//	POST /auto_write/{stripID} {auto_write}
func (s *Server) handleSetAutoWrite(w http.ResponseWriter, r *http.Request) {
	stripID := chi.URLParam(r, "stripID")
	raw, ok := readBody(w, r)
	if !ok {
		return
	}
	f, err := controller.Validate(raw, "auto_write")
	if err != nil {
		writeControlError(w, err)
		return
	}

	var autoWrite bool
	err = s.dispatch(r, "auto_write", stripID, func(c *controller.Controller) error {
		var err error
		autoWrite, err = c.SetAutoWrite(stripID, f)
		return err
	})
	if err != nil {
		writeControlError(w, err)
		return
	}
	writeControlSuccess(w, map[string]any{"strip_id": stripID, "auto_write": autoWrite})
}

// handleInitAnimation constructs and registers an animation.
//
//	POST /init/animation {strip_id, animation_id, animation, kwargs?, start?}
func (s *Server) handleInitAnimation(w http.ResponseWriter, r *http.Request) {
	raw, ok := readBody(w, r)
	if !ok {
		return
	}
	f, err := controller.Validate(raw, "strip_id", "animation_id", "animation")
	if err != nil {
		writeControlError(w, err)
		return
	}
	animationID, _ := f["animation_id"].(string)
	stripID, _ := f["strip_id"].(string)

	err = s.dispatch(r, "init_animation", animationID, func(c *controller.Controller) error {
		return c.InitAnimation(f)
	})
	if err != nil {
		writeControlError(w, err)
		return
	}
	writeControlSuccess(w, map[string]any{"animation_id": animationID, "strip_id": stripID})
}

// handleStartAnimation selects an animation as current for its strip.
//
//	POST /start/animation/{animationID}
func (s *Server) handleStartAnimation(w http.ResponseWriter, r *http.Request) {
	animationID := chi.URLParam(r, "animationID")

	err := s.dispatch(r, "start_animation", animationID, func(c *controller.Controller) error {
		return c.StartAnimation(animationID)
	})
	if err != nil {
		writeControlError(w, err)
		return
	}
	writeControlSuccess(w, map[string]any{"animation_id": animationID})
}

// handleSetAnimationProperty writes a named property on an animation.
//
//	POST /animation/{animationID}/setprop {name, value}
func (s *Server) handleSetAnimationProperty(w http.ResponseWriter, r *http.Request) {
	animationID := chi.URLParam(r, "animationID")
	raw, ok := readBody(w, r)
	if !ok {
		return
	}
	f, err := controller.Validate(raw, "name", "value")
	if err != nil {
		writeControlError(w, err)
		return
	}

	err = s.dispatch(r, "set_property", animationID, func(c *controller.Controller) error {
		return c.SetAnimationProperty(animationID, f)
	})
	if err != nil {
		writeControlError(w, err)
		return
	}
	writeControlSuccess(w, map[string]any{"animation_id": animationID})
}
