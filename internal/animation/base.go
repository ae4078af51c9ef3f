package animation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lumastack/pixeld/internal/color"
	"github.com/lumastack/pixeld/internal/strip"
)

// defaultSpeed is the per-frame interval, in seconds, used when kwargs
// omit speed.
const defaultSpeed = 0.1

// property is one named, typed accessor pair registered at construction.
type property struct {
	get func() any
	set func(value any) error
}

// base carries the plumbing every kind shares: the bound strip, the
// frame interval with its throttle, and the property table.
type base struct {
	strip    *strip.Strip
	interval time.Duration
	next     time.Time
	props    map[string]property
}

// initBase must be called on the embedding struct's final address so the
// property closures see later mutations.
func (b *base) initBase(s *strip.Strip, speed float64) {
	b.strip = s
	b.interval = speedInterval(speed)
	b.props = make(map[string]property)
	b.props["speed"] = property{
		get: func() any { return b.interval.Seconds() },
		set: func(v any) error {
			spd, ok := floatValue(v)
			if !ok || spd <= 0 {
				return fmt.Errorf("%w: speed %v", ErrInvalidProperty, v)
			}
			b.interval = speedInterval(spd)
			return nil
		},
	}
}

// due reports whether the next frame is owed and, if so, schedules the
// one after. The first call always draws.
func (b *base) due(now time.Time) bool {
	if !b.next.IsZero() && now.Before(b.next) {
		return false
	}
	b.next = now.Add(b.interval)
	return true
}

func (b *base) addProperty(name string, get func() any, set func(value any) error) {
	b.props[name] = property{get: get, set: set}
}

// SetProperty writes through the registered table; unknown names fail.
func (b *base) SetProperty(name string, value any) error {
	p, ok := b.props[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrInvalidProperty, name)
	}
	return p.set(value)
}

// Property reads through the registered table.
func (b *base) Property(name string) (any, error) {
	p, ok := b.props[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidProperty, name)
	}
	return p.get(), nil
}

func speedInterval(speed float64) time.Duration {
	return time.Duration(speed * float64(time.Second))
}

// decodeOptions strictly decodes kwargs into a kind's options struct.
// Unknown fields are an error rather than silently forwarded.
func decodeOptions(raw []byte, into any) error {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(into); err != nil {
		return fmt.Errorf("%w: %v", ErrBadOptions, err)
	}
	return nil
}

// speedOrDefault resolves the optional speed option.
func speedOrDefault(speed *float64) (float64, error) {
	if speed == nil {
		return defaultSpeed, nil
	}
	if *speed <= 0 {
		return 0, fmt.Errorf("%w: speed must be positive", ErrBadOptions)
	}
	return *speed, nil
}

// ColorOption decodes a single color in any accepted wire form.
type ColorOption struct {
	color.Value
}

func (c *ColorOption) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := color.Parse(raw)
	if err != nil {
		return err
	}
	c.Value = v
	return nil
}

// packedList converts decoded colors to packed buffer values.
func packedList(colors []ColorOption) []uint32 {
	out := make([]uint32, len(colors))
	for i, c := range colors {
		out[i] = uint32(c.RGB())
	}
	return out
}

// colorProperty builds the accessor pair for a single-color property.
func colorProperty(target *uint32) property {
	return property{
		get: func() any { return int(*target) },
		set: func(v any) error {
			c, ok := v.(color.Value)
			if !ok {
				return fmt.Errorf("%w: color value %v", ErrInvalidProperty, v)
			}
			*target = uint32(c.RGB())
			return nil
		},
	}
}

// colorsProperty builds the accessor pair for a color-list property.
func colorsProperty(target *[]uint32) property {
	return property{
		get: func() any {
			out := make([]int, len(*target))
			for i, c := range *target {
				out[i] = int(c)
			}
			return out
		},
		set: func(v any) error {
			values, ok := v.([]color.Value)
			if !ok || len(values) == 0 {
				return fmt.Errorf("%w: colors value %v", ErrInvalidProperty, v)
			}
			packed := make([]uint32, len(values))
			for i, c := range values {
				packed[i] = uint32(c.RGB())
			}
			*target = packed
			return nil
		},
	}
}

// boolProperty builds the accessor pair for a boolean property.
func boolProperty(target *bool) property {
	return property{
		get: func() any { return *target },
		set: func(v any) error {
			b, ok := v.(bool)
			if !ok {
				return fmt.Errorf("%w: boolean value %v", ErrInvalidProperty, v)
			}
			*target = b
			return nil
		},
	}
}

// intProperty builds the accessor pair for a positive integer property.
func intProperty(target *int) property {
	return property{
		get: func() any { return *target },
		set: func(v any) error {
			f, ok := floatValue(v)
			if !ok || f < 1 || f != float64(int(f)) {
				return fmt.Errorf("%w: integer value %v", ErrInvalidProperty, v)
			}
			*target = int(f)
			return nil
		},
	}
}

func floatValue(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
