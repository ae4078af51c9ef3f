package strip

import (
	"fmt"

	"github.com/lumastack/pixeld/internal/color"
	"github.com/lumastack/pixeld/internal/driver"
)

// Kind identifies the strip's wire protocol family.
type Kind string

// Supported strip kinds.
const (
	KindNeoPixel Kind = "neopixel"
	KindDotStar  Kind = "dotstar"
)

// Mode is a strip's control state: direct pixel writes or animation
// playback own the visual output.
type Mode string

// Strip modes.
const (
	ModePixels    Mode = "pixels"
	ModeAnimation Mode = "animation"
)

// Pixel channel layout within a buffered value.
const (
	whiteShift = 24
	rgbMask    = 0xffffff
)

// Strip is one registered LED strip: a fixed-length pixel buffer, the
// device it renders through, and the flags governing when renders happen.
// Pixels are stored packed as 0xWWRRGGBB.
type Strip struct {
	id         string
	kind       Kind
	dev        driver.Device
	pixels     []uint32
	scaled     []uint32
	brightness float64
	autoWrite  bool
}

// New creates a strip over its output device. The buffer starts zeroed;
// callers blank the hardware explicitly (init fills and flushes once).
func New(id string, kind Kind, dev driver.Device, pixelCount int, brightness float64, autoWrite bool) *Strip {
	return &Strip{
		id:         id,
		kind:       kind,
		dev:        dev,
		pixels:     make([]uint32, pixelCount),
		scaled:     make([]uint32, pixelCount),
		brightness: brightness,
		autoWrite:  autoWrite,
	}
}

// ID returns the strip identifier.
func (s *Strip) ID() string { return s.id }

// Kind returns the strip's protocol family.
func (s *Strip) Kind() Kind { return s.kind }

// Len returns the pixel count.
func (s *Strip) Len() int { return len(s.pixels) }

// SetPixel writes one pixel. Under auto-write the frame flushes
// immediately, mirroring per-mutation hardware writes.
func (s *Strip) SetPixel(index int, c color.Value) error {
	if index < 0 || index >= len(s.pixels) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	s.pixels[index] = packBuffered(c)
	if s.autoWrite {
		return s.Show()
	}
	return nil
}

// Pixel reads one buffered pixel as stored (0xWWRRGGBB).
func (s *Strip) Pixel(index int) (uint32, error) {
	if index < 0 || index >= len(s.pixels) {
		return 0, fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	return s.pixels[index], nil
}

// Fill writes every pixel to one color. Under auto-write the frame
// flushes once after the fill.
func (s *Strip) Fill(c color.Value) error {
	v := packBuffered(c)
	for i := range s.pixels {
		s.pixels[i] = v
	}
	if s.autoWrite {
		return s.Show()
	}
	return nil
}

// FillPacked is Fill for an already-packed value; animations render
// through it and SetPixelPacked without re-entering the codec.
func (s *Strip) FillPacked(packed uint32) error {
	for i := range s.pixels {
		s.pixels[i] = packed
	}
	if s.autoWrite {
		return s.Show()
	}
	return nil
}

// SetPixelPacked writes one already-packed pixel value.
func (s *Strip) SetPixelPacked(index int, packed uint32) error {
	if index < 0 || index >= len(s.pixels) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}
	s.pixels[index] = packed
	if s.autoWrite {
		return s.Show()
	}
	return nil
}

// Show flushes the buffer to the device regardless of auto-write,
// scaling every channel by the current brightness.
func (s *Strip) Show() error {
	for i, p := range s.pixels {
		s.scaled[i] = scale(p, s.brightness)
	}
	return s.dev.Show(s.scaled)
}

// Brightness returns the stored brightness value.
func (s *Strip) Brightness() float64 { return s.brightness }

// SetBrightness stores a new brightness. The value is deliberately not
// range-checked; clamping happens only when frames are scaled for
// output. Under auto-write the strip redraws at the new level.
func (s *Strip) SetBrightness(v float64) error {
	s.brightness = v
	if s.autoWrite {
		return s.Show()
	}
	return nil
}

// AutoWrite returns the auto-write flag.
func (s *Strip) AutoWrite() bool { return s.autoWrite }

// SetAutoWrite sets the auto-write flag directly.
func (s *Strip) SetAutoWrite(v bool) { s.autoWrite = v }

// Close releases the output device.
func (s *Strip) Close() error { return s.dev.Close() }

// packBuffered converts a decoded color to buffer form, folding a list's
// white channel into the high byte.
func packBuffered(c color.Value) uint32 {
	return uint32(c.White())<<whiteShift | uint32(c.RGB())&rgbMask
}

// scale multiplies each channel by brightness, clamping to [0,255] so an
// out-of-range stored brightness cannot overflow a channel.
func scale(p uint32, brightness float64) uint32 {
	var out uint32
	for shift := 0; shift < 32; shift += 8 {
		v := float64((p>>shift)&0xff) * brightness
		if v < 0 {
			v = 0
		}
		if v > 255 {
			v = 255
		}
		out |= uint32(v) << shift
	}
	return out
}
