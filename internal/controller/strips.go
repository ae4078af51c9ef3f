package controller

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/lumastack/pixeld/internal/color"
	"github.com/lumastack/pixeld/internal/driver"
	"github.com/lumastack/pixeld/internal/strip"
)

// Pixel read encodings accepted on the color_type option.
const (
	ColorTypeRGB = "rgb"
	ColorTypeHex = "hex"
)

// InitNeoPixels creates a single-wire strip from validated fields
// (pin, pixel_count; optional id, brightness, auto_write). The default
// strip id is the pin name. The new strip is blanked and flushed once.
func (c *Controller) InitNeoPixels(f Fields) (string, error) {
	pin, err := f.String("pin")
	if err != nil {
		return "", err
	}
	pixelCount, err := f.Int("pixel_count")
	if err != nil {
		return "", err
	}
	id, err := f.StringOr("id", pin)
	if err != nil {
		return "", err
	}

	return c.initStrip(f, initStripParams{
		id:         id,
		kind:       strip.KindNeoPixel,
		pin:        pin,
		pixelCount: pixelCount,
	})
}

// InitDotStars creates a two-wire strip from validated fields
// (clock_pin, data_pin, pixel_count; optional id, brightness,
// auto_write). The default strip id is the clock pin name followed by
// the data pin name.
func (c *Controller) InitDotStars(f Fields) (string, error) {
	clockPin, err := f.String("clock_pin")
	if err != nil {
		return "", err
	}
	dataPin, err := f.String("data_pin")
	if err != nil {
		return "", err
	}
	pixelCount, err := f.Int("pixel_count")
	if err != nil {
		return "", err
	}
	id, err := f.StringOr("id", clockPin+dataPin)
	if err != nil {
		return "", err
	}

	return c.initStrip(f, initStripParams{
		id:         id,
		kind:       strip.KindDotStar,
		clockPin:   clockPin,
		dataPin:    dataPin,
		pixelCount: pixelCount,
	})
}

type initStripParams struct {
	id         string
	kind       strip.Kind
	pin        string
	clockPin   string
	dataPin    string
	pixelCount int
}

func (c *Controller) initStrip(f Fields, p initStripParams) (string, error) {
	brightness, err := f.FloatOr("brightness", 1.0)
	if err != nil {
		return "", err
	}
	autoWrite, err := f.BoolOr("auto_write", true)
	if err != nil {
		return "", err
	}
	if p.pixelCount < 1 {
		return "", NewValidationError("Argument pixel_count must be a positive integer")
	}

	// Duplicate check before the device exists, so a failed init leaves
	// no handle behind.
	if c.strips.Has(p.id) {
		return "", fmt.Errorf("%w: %q", strip.ErrDuplicateID, p.id)
	}

	dev, err := c.newDevice(p)
	if err != nil {
		return "", err
	}

	s := strip.New(p.id, p.kind, dev, p.pixelCount, brightness, autoWrite)
	if err := c.strips.Register(s); err != nil {
		_ = dev.Close()
		return "", err
	}

	// Blank the hardware exactly once regardless of auto-write.
	if err := s.FillPacked(0); err != nil {
		return "", err
	}
	if !s.AutoWrite() {
		if err := s.Show(); err != nil {
			return "", err
		}
	}

	c.saveStripDefinition(StripDefinition{
		ID:         p.id,
		Kind:       string(p.kind),
		Pin:        p.pin,
		ClockPin:   p.clockPin,
		DataPin:    p.dataPin,
		PixelCount: p.pixelCount,
		Brightness: brightness,
		AutoWrite:  autoWrite,
	})
	c.publish("strip.initialized", map[string]any{
		"strip_id":    p.id,
		"kind":        string(p.kind),
		"pixel_count": p.pixelCount,
	})
	return p.id, nil
}

func (c *Controller) newDevice(p initStripParams) (driver.Device, error) {
	if p.kind == strip.KindDotStar {
		return c.devices.DotStar(p.clockPin, p.dataPin, p.pixelCount)
	}
	return c.devices.NeoPixel(p.pin, p.pixelCount)
}

func (c *Controller) saveStripDefinition(def StripDefinition) {
	if c.definitions == nil {
		return
	}
	if err := c.definitions.SaveStrip(context.Background(), def); err != nil {
		c.logger.Warn("saving strip definition failed", "strip_id", def.ID, "error", err)
	}
}

// Pixels reads a strip's buffered pixels, either as channel lists
// (color_type "rgb", the default) or as hex strings ("hex"). The
// result is keyed by the pixel index as a string, the shape clients of
// the pixel read endpoint already depend on.
func (c *Controller) Pixels(stripID, colorType string) (map[string]any, error) {
	if colorType == "" {
		colorType = ColorTypeRGB
	}
	if colorType != ColorTypeRGB && colorType != ColorTypeHex {
		return nil, NewValidationError("Argument color_type must be rgb or hex")
	}

	s, err := c.strips.Get(stripID)
	if err != nil {
		return nil, err
	}

	pixels := make(map[string]any, s.Len())
	for i := 0; i < s.Len(); i++ {
		p, err := s.Pixel(i)
		if err != nil {
			return nil, err
		}
		key := strconv.Itoa(i)
		if colorType == ColorTypeHex {
			pixels[key] = color.ToHex(int(p) & 0xffffff)
			continue
		}
		r, g, b := color.PackedChannels(int(p) & 0xffffff)
		if white := int(p >> 24); white != 0 {
			pixels[key] = []int{r, g, b, white}
		} else {
			pixels[key] = []int{r, g, b}
		}
	}
	return pixels, nil
}

// SetPixels applies a map of index keys to color values (field
// "pixels"; optional "blank_pixels" zeroes the strip first). A strip in
// animation mode drops back to pixels mode before any write. Keys are
// applied in index order and a failing key aborts the loop with the
// earlier keys already applied.
func (c *Controller) SetPixels(stripID string, f Fields) error {
	s, err := c.strips.Get(stripID)
	if err != nil {
		return err
	}
	pixels, err := f.Map("pixels")
	if err != nil {
		return err
	}
	blank, err := f.BoolOr("blank_pixels", false)
	if err != nil {
		return err
	}

	if err := c.ensurePixelsMode(stripID); err != nil {
		return err
	}

	if blank {
		if err := s.FillPacked(0); err != nil {
			return err
		}
		if !s.AutoWrite() {
			if err := s.Show(); err != nil {
				return err
			}
		}
	}

	for _, key := range sortedPixelKeys(pixels) {
		index, convErr := strconv.Atoi(key)
		if convErr != nil {
			return &KeyError{Key: key, Err: convErr}
		}
		value, err := color.Parse(pixels[key])
		if err != nil {
			return err
		}
		if err := s.SetPixel(index, value); err != nil {
			return &KeyError{Key: key, Err: err}
		}
	}

	c.publish("strip.pixels_written", map[string]any{
		"strip_id": stripID,
		"count":    len(pixels),
	})
	return nil
}

// sortedPixelKeys orders pixel-map keys numerically so application
// order, and therefore where a bad key aborts, is deterministic.
// Non-numeric keys sort last and fail there.
func sortedPixelKeys(pixels map[string]any) []string {
	keys := make([]string, 0, len(pixels))
	for key := range pixels {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, errI := strconv.Atoi(keys[i])
		nj, errJ := strconv.Atoi(keys[j])
		switch {
		case errI == nil && errJ == nil:
			return ni < nj
		case errI == nil:
			return true
		case errJ == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})
	return keys
}

// Fill writes one color (field "color") to every pixel. A strip in
// animation mode drops back to pixels mode first.
func (c *Controller) Fill(stripID string, f Fields) error {
	s, err := c.strips.Get(stripID)
	if err != nil {
		return err
	}
	raw, present := f["color"]
	if !present {
		return NewValidationError("Missing Required Argument(s): [ color ]")
	}
	value, err := color.Parse(raw)
	if err != nil {
		return err
	}

	if err := c.ensurePixelsMode(stripID); err != nil {
		return err
	}
	if err := s.Fill(value); err != nil {
		return err
	}

	c.publish("strip.filled", map[string]any{
		"strip_id": stripID,
		"color":    color.ToHex(value.RGB()),
	})
	return nil
}

// Show forces a hardware write of the strip's buffer regardless of
// auto-write. It is not a pixel mutation and does not change mode.
func (c *Controller) Show(stripID string) error {
	s, err := c.strips.Get(stripID)
	if err != nil {
		return err
	}
	return s.Show()
}

// Brightness reads a strip's brightness.
func (c *Controller) Brightness(stripID string) (float64, error) {
	s, err := c.strips.Get(stripID)
	if err != nil {
		return 0, err
	}
	return s.Brightness(), nil
}

// SetBrightness writes a strip's brightness (field "brightness"). The
// value is an unvalidated passthrough; output scaling clamps per
// channel.
func (c *Controller) SetBrightness(stripID string, f Fields) (float64, error) {
	s, err := c.strips.Get(stripID)
	if err != nil {
		return 0, err
	}
	value, err := f.FloatOr("brightness", 0)
	if err != nil {
		return 0, err
	}
	if err := s.SetBrightness(value); err != nil {
		return 0, err
	}

	c.publish("strip.brightness_set", map[string]any{
		"strip_id":   stripID,
		"brightness": value,
	})
	return value, nil
}

// AutoWrite reads a strip's auto-write flag.
func (c *Controller) AutoWrite(stripID string) (bool, error) {
	s, err := c.strips.Get(stripID)
	if err != nil {
		return false, err
	}
	return s.AutoWrite(), nil
}

// SetAutoWrite writes a strip's auto-write flag (field "auto_write")
// directly. It bypasses the saved auto-write bookkeeping: a manual set
// while in animation mode is not reflected in any pending capture.
func (c *Controller) SetAutoWrite(stripID string, f Fields) (bool, error) {
	s, err := c.strips.Get(stripID)
	if err != nil {
		return false, err
	}
	value, err := f.Bool("auto_write")
	if err != nil {
		return false, err
	}
	s.SetAutoWrite(value)

	c.publish("strip.auto_write_set", map[string]any{
		"strip_id":   stripID,
		"auto_write": value,
	})
	return value, nil
}
