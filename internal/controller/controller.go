package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/lumastack/pixeld/internal/animation"
	"github.com/lumastack/pixeld/internal/driver"
	"github.com/lumastack/pixeld/internal/strip"
)

// Logger is the minimal logging interface the controller needs. The
// infrastructure logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger discards all log output. Used when no logger is configured.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// EventSink receives state-change events. The WebSocket hub and the
// MQTT event publisher implement it; a nil sink disables events.
type EventSink interface {
	Publish(eventType string, payload map[string]any)
}

// SinkList fans one event out to several sinks, for wiring both the
// WebSocket hub and the MQTT publisher.
type SinkList []EventSink

// Publish forwards the event to every sink in order.
func (l SinkList) Publish(eventType string, payload map[string]any) {
	for _, sink := range l {
		sink.Publish(eventType, payload)
	}
}

// StripDefinition is the persisted form of an init-strip operation,
// replayed at boot when persistence is enabled.
type StripDefinition struct {
	ID         string
	Kind       string
	Pin        string
	ClockPin   string
	DataPin    string
	PixelCount int
	Brightness float64
	AutoWrite  bool
}

// AnimationDefinition is the persisted form of an init-animation
// operation.
type AnimationDefinition struct {
	ID        string
	StripID   string
	Kind      string
	Options   json.RawMessage
	AutoStart bool
}

// DefinitionStore persists strip and animation definitions. A nil store
// disables persistence.
type DefinitionStore interface {
	SaveStrip(ctx context.Context, def StripDefinition) error
	SaveAnimation(ctx context.Context, def AnimationDefinition) error
}

// Deps holds the dependencies required by the controller.
type Deps struct {
	Strips     *strip.Registry
	Animations *animation.Registry
	Devices    *driver.Factory

	// Optional collaborators.
	Logger      Logger
	Events      EventSink
	Definitions DefinitionStore
}

// Controller dispatches control operations against the strip and
// animation registries and enforces the mode-transition rules between
// direct pixel control and animation playback.
//
// All methods must be called from the single Actor goroutine.
type Controller struct {
	strips      *strip.Registry
	anims       *animation.Registry
	devices     *driver.Factory
	logger      Logger
	events      EventSink
	definitions DefinitionStore
}

// New creates a controller over its registries and device factory.
func New(deps Deps) (*Controller, error) {
	if deps.Strips == nil {
		return nil, fmt.Errorf("strip registry is required")
	}
	if deps.Animations == nil {
		return nil, fmt.Errorf("animation registry is required")
	}
	if deps.Devices == nil {
		return nil, fmt.Errorf("device factory is required")
	}

	logger := deps.Logger
	if logger == nil {
		logger = noopLogger{}
	}

	return &Controller{
		strips:      deps.Strips,
		anims:       deps.Animations,
		devices:     deps.Devices,
		logger:      logger,
		events:      deps.Events,
		definitions: deps.Definitions,
	}, nil
}

// publish sends an event with a fresh event id. Nil-safe.
func (c *Controller) publish(eventType string, payload map[string]any) {
	if c.events == nil {
		return
	}
	payload["event_id"] = uuid.New().String()
	c.events.Publish(eventType, payload)
}

// ensurePixelsMode performs the implicit Animation to Pixels transition
// triggered by a direct pixel write. The transition runs before the
// triggering write so the restored auto-write governs whether that very
// write flushes. A strip that entered animation mode without a captured
// auto-write restores to true.
func (c *Controller) ensurePixelsMode(stripID string) error {
	mode, err := c.strips.Mode(stripID)
	if err != nil {
		return err
	}
	if mode != strip.ModeAnimation {
		return nil
	}

	if err := c.strips.SetMode(stripID, strip.ModePixels); err != nil {
		return err
	}
	s, err := c.strips.Get(stripID)
	if err != nil {
		return err
	}
	restored, captured := c.strips.SavedAutoWrite(stripID)
	if !captured {
		restored = true
	}
	s.SetAutoWrite(restored)

	c.logger.Debug("strip left animation mode",
		"strip_id", stripID,
		"auto_write", restored,
	)
	c.publish("strip.mode_changed", map[string]any{
		"strip_id": stripID,
		"mode":     string(strip.ModePixels),
	})
	return nil
}

// Animate advances every strip currently in animation mode by one
// frame. It returns the number of strips animated; a frame error stops
// the pass.
func (c *Controller) Animate(now time.Time) (int, error) {
	animated := 0
	for _, stripID := range c.strips.IDs() {
		mode, err := c.strips.Mode(stripID)
		if err != nil || mode != strip.ModeAnimation {
			continue
		}
		animationID, ok := c.anims.CurrentFor(stripID)
		if !ok {
			continue
		}
		a, err := c.anims.Get(animationID)
		if err != nil {
			continue
		}
		if err := a.Tick(now); err != nil {
			return animated, fmt.Errorf("animating %q on %q: %w", animationID, stripID, err)
		}
		animated++
	}
	return animated, nil
}

// StripStatus is the externally visible state of one strip.
type StripStatus struct {
	ID               string  `json:"id"`
	Kind             string  `json:"kind"`
	PixelCount       int     `json:"pixel_count"`
	Mode             string  `json:"mode"`
	Brightness       float64 `json:"brightness"`
	AutoWrite        bool    `json:"auto_write"`
	CurrentAnimation string  `json:"current_animation,omitempty"`
}

// AnimationStatus is the externally visible state of one animation.
type AnimationStatus struct {
	ID      string `json:"id"`
	Kind    string `json:"kind"`
	StripID string `json:"strip_id"`
	Running bool   `json:"running"`
}

// StripStatus reports one strip's state.
func (c *Controller) StripStatus(stripID string) (StripStatus, error) {
	s, err := c.strips.Get(stripID)
	if err != nil {
		return StripStatus{}, err
	}
	mode, err := c.strips.Mode(stripID)
	if err != nil {
		return StripStatus{}, err
	}

	status := StripStatus{
		ID:         s.ID(),
		Kind:       string(s.Kind()),
		PixelCount: s.Len(),
		Mode:       string(mode),
		Brightness: s.Brightness(),
		AutoWrite:  s.AutoWrite(),
	}
	if current, ok := c.anims.CurrentFor(stripID); ok {
		status.CurrentAnimation = current
	}
	return status, nil
}

// StripStatuses reports every registered strip in id order.
func (c *Controller) StripStatuses() []StripStatus {
	ids := c.strips.IDs()
	statuses := make([]StripStatus, 0, len(ids))
	for _, id := range ids {
		status, err := c.StripStatus(id)
		if err != nil {
			continue
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// AnimationStatuses reports every registered animation in id order. An
// animation is running when it is the current selection of a strip that
// is in animation mode.
func (c *Controller) AnimationStatuses() []AnimationStatus {
	ids := c.anims.IDs()
	statuses := make([]AnimationStatus, 0, len(ids))
	for _, id := range ids {
		a, err := c.anims.Get(id)
		if err != nil {
			continue
		}
		stripID, err := c.anims.BoundStrip(id)
		if err != nil {
			continue
		}

		running := false
		if current, ok := c.anims.CurrentFor(stripID); ok && current == id {
			mode, err := c.strips.Mode(stripID)
			running = err == nil && mode == strip.ModeAnimation
		}
		statuses = append(statuses, AnimationStatus{
			ID:      id,
			Kind:    string(a.Kind()),
			StripID: stripID,
			Running: running,
		})
	}
	return statuses
}

// Counts reports registry sizes for periodic telemetry gauges.
func (c *Controller) Counts() (strips, animations int) {
	return c.strips.Count(), c.anims.Count()
}
