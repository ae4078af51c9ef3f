package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/lumastack/pixeld/internal/animation"
	"github.com/lumastack/pixeld/internal/color"
	"github.com/lumastack/pixeld/internal/strip"
)

// InitAnimation constructs an animation from validated fields
// (strip_id, animation_id, animation kind; optional kwargs object and
// start flag) and registers it bound to its strip.
//
// The strip's auto-write value is captured before the first animation
// attaches to it; the capture is what a later pixel write restores.
// Construction failures leave the registries untouched.
func (c *Controller) InitAnimation(f Fields) error {
	stripID, err := f.String("strip_id")
	if err != nil {
		return err
	}
	animationID, err := f.String("animation_id")
	if err != nil {
		return err
	}
	kind, err := f.String("animation")
	if err != nil {
		return err
	}
	start, err := f.BoolOr("start", false)
	if err != nil {
		return err
	}
	rawOptions, err := f.RawJSON("kwargs")
	if err != nil {
		return err
	}

	s, err := c.strips.Get(stripID)
	if err != nil {
		return err
	}
	if _, err := c.anims.Get(animationID); err == nil {
		return fmt.Errorf("%w: %q", animation.ErrDuplicateID, animationID)
	}

	a, err := animation.New(kind, s, rawOptions)
	if err != nil {
		return err
	}

	// Capture first, then disable auto-write: the saved value is the one
	// from immediately before this animation attached. First capture for
	// a strip wins.
	if err := c.strips.CaptureAutoWrite(stripID); err != nil {
		return err
	}
	s.SetAutoWrite(false)

	if err := c.anims.Register(animationID, stripID, a); err != nil {
		return err
	}

	c.saveAnimationDefinition(AnimationDefinition{
		ID:        animationID,
		StripID:   stripID,
		Kind:      kind,
		Options:   rawOptions,
		AutoStart: start,
	})
	c.publish("animation.initialized", map[string]any{
		"animation_id": animationID,
		"strip_id":     stripID,
		"kind":         kind,
	})

	if start {
		return c.StartAnimation(animationID)
	}
	return nil
}

func (c *Controller) saveAnimationDefinition(def AnimationDefinition) {
	if c.definitions == nil {
		return
	}
	if err := c.definitions.SaveAnimation(context.Background(), def); err != nil {
		c.logger.Warn("saving animation definition failed", "animation_id", def.ID, "error", err)
	}
}

// StartAnimation selects an animation as current for its strip and
// puts the strip in animation mode. The per-tick scheduler picks it up
// from there; there is no stop operation, a pixel write ends playback.
func (c *Controller) StartAnimation(animationID string) error {
	stripID, err := c.anims.BoundStrip(animationID)
	if err != nil {
		return err
	}
	if err := c.anims.SetCurrent(stripID, animationID); err != nil {
		return err
	}
	if err := c.strips.SetMode(stripID, strip.ModeAnimation); err != nil {
		return err
	}

	c.logger.Info("animation started",
		"animation_id", animationID,
		"strip_id", stripID,
	)
	c.publish("animation.started", map[string]any{
		"animation_id": animationID,
		"strip_id":     stripID,
	})
	return nil
}

// SetAnimationProperty writes a named property on an animation (fields
// "name" and "value"). Values for names containing "colors" decode as a
// color list, names containing "color" as a single color; anything else
// passes through raw.
func (c *Controller) SetAnimationProperty(animationID string, f Fields) error {
	name, err := f.String("name")
	if err != nil {
		return err
	}
	value := f["value"]

	a, err := c.anims.Get(animationID)
	if err != nil {
		return err
	}

	decoded, err := decodePropertyValue(name, value)
	if err != nil {
		return err
	}
	if err := a.SetProperty(name, decoded); err != nil {
		return &PropertyError{Name: name, Err: err}
	}

	c.publish("animation.property_set", map[string]any{
		"animation_id": animationID,
		"name":         name,
	})
	return nil
}

// decodePropertyValue applies the color-decoding convention keyed off
// the property name. The plural check runs first: "colors" contains
// "color".
func decodePropertyValue(name string, value any) (any, error) {
	switch {
	case strings.Contains(name, "colors"):
		list, ok := value.([]any)
		if !ok {
			return nil, NewValidationError("Argument value must be a list of colors")
		}
		values := make([]color.Value, len(list))
		for i, elem := range list {
			v, err := color.Parse(elem)
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return values, nil
	case strings.Contains(name, "color"):
		return color.Parse(value)
	default:
		return value, nil
	}
}
