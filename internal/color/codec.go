// Package color decodes the color forms accepted on the control surface
// into a canonical representation and encodes them back for reads.
//
// Three input forms are accepted:
//   - an integer, passed through unchanged as a packed 0xRRGGBB value
//   - a string prefixed "0x" or "#" with up to six hex digits
//   - an ordered list of 3 or 4 channel values in [0,255]; lists are kept
//     as-is rather than packed, preserving the wire-level pass-through
//     behavior clients depend on
//
// Anything else fails with ErrInvalid carrying the offending value.
package color

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Channel bounds and hex string limits.
const (
	maxChannel   = 255
	maxHexDigits = 6
	minChannels  = 3
	maxChannels  = 4
)

// Value is one decoded color. Exactly one representation is active:
// List is non-nil for channel-list inputs and nil for packed inputs.
type Value struct {
	Packed int
	List   []int
}

// IsList reports whether the value came from (and reads back as) a
// channel list rather than a packed integer.
func (v Value) IsList() bool {
	return v.List != nil
}

// RGB returns the value as a single packed 0xRRGGBB integer. For list
// values the first three channels are packed; a fourth (white/alpha)
// channel is not merged.
func (v Value) RGB() int {
	if v.List != nil {
		return RGBToPacked(v.List[0], v.List[1], v.List[2])
	}
	return v.Packed
}

// White returns the fourth channel of a list value, or 0 when absent.
func (v Value) White() int {
	if len(v.List) == maxChannels {
		return v.List[3]
	}
	return 0
}

// Parse decodes a color in any accepted form. The input is typically a
// value decoded from JSON, so numbers arrive as float64; integral floats
// are accepted, fractional ones are not.
func Parse(value any) (Value, error) {
	switch v := value.(type) {
	case int:
		return Value{Packed: v}, nil
	case int64:
		return Value{Packed: int(v)}, nil
	case float64:
		if v != math.Trunc(v) {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalid, value)
		}
		return Value{Packed: int(v)}, nil
	case string:
		return parseHex(v)
	case []any:
		return parseList(v)
	case []int:
		converted := make([]any, len(v))
		for i, n := range v {
			converted[i] = n
		}
		return parseList(converted)
	default:
		return Value{}, fmt.Errorf("%w: %v", ErrInvalid, value)
	}
}

// parseHex decodes a "0x"- or "#"-prefixed hex string. The "#" prefix is
// rewritten to "0x" before parsing.
func parseHex(s string) (Value, error) {
	normalized := s
	if strings.HasPrefix(normalized, "#") {
		normalized = "0x" + normalized[1:]
	}
	if !strings.HasPrefix(normalized, "0x") {
		return Value{}, fmt.Errorf("%w: %v", ErrInvalid, s)
	}

	digits := normalized[2:]
	if len(digits) == 0 || len(digits) > maxHexDigits {
		return Value{}, fmt.Errorf("%w: %v", ErrInvalid, s)
	}

	packed, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %v", ErrInvalid, s)
	}
	return Value{Packed: int(packed)}, nil
}

// parseList validates an ordered channel list. The list itself is
// preserved: callers reading the color back receive it unchanged.
func parseList(list []any) (Value, error) {
	if len(list) < minChannels || len(list) > maxChannels {
		return Value{}, fmt.Errorf("%w: %v", ErrInvalid, list)
	}

	channels := make([]int, len(list))
	for i, elem := range list {
		n, ok := channelValue(elem)
		if !ok || n < 0 || n > maxChannel {
			return Value{}, fmt.Errorf("%w: %v", ErrInvalid, list)
		}
		channels[i] = n
	}
	return Value{Packed: RGBToPacked(channels[0], channels[1], channels[2]), List: channels}, nil
}

// channelValue extracts an integral channel value from a JSON-decoded
// element. Booleans are excluded explicitly: they are not channel values
// even though some decoders coerce them.
func channelValue(elem any) (int, bool) {
	switch n := elem.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// ToHex encodes a packed color as "0x" plus lowercase hex with no fixed
// width, matching the form clients receive on hex-typed pixel reads.
func ToHex(packed int) string {
	return fmt.Sprintf("%#x", packed)
}

// RGBToPacked packs three 0-255 channel values as (r<<16)|(g<<8)|b.
func RGBToPacked(r, g, b int) int {
	return r<<16 | g<<8 | b
}

// PackedChannels splits a packed color into its r, g, b channels.
func PackedChannels(packed int) (r, g, b int) {
	return (packed >> 16) & maxChannel, (packed >> 8) & maxChannel, packed & maxChannel
}
