package driver

import (
	"fmt"

	ws2811 "github.com/rpi-ws281x/rpi-ws281x-go"
)

const ws281xFullBrightness = 255

// ws281xDevice drives a single-wire NeoPixel strip through the ws281x
// PWM/DMA engine. Frames arrive pre-scaled, so the engine's own
// brightness stays pinned at full.
type ws281xDevice struct {
	engine *ws2811.WS2811
	closed bool
}

func newWS281xDevice(gpio, pixelCount, frequencyHz, dma int) (Device, error) {
	opt := ws2811.DefaultOptions
	opt.Frequency = frequencyHz
	opt.DmaNum = dma
	opt.Channels = []ws2811.ChannelOption{{
		GpioPin:    gpio,
		LedCount:   pixelCount,
		Brightness: ws281xFullBrightness,
		StripeType: ws2811.WS2812Strip,
	}}

	engine, err := ws2811.MakeWS2811(&opt)
	if err != nil {
		return nil, fmt.Errorf("ws281x engine: %w", err)
	}
	if err := engine.Init(); err != nil {
		return nil, fmt.Errorf("ws281x init: %w", err)
	}
	return &ws281xDevice{engine: engine}, nil
}

func (d *ws281xDevice) Show(frame []uint32) error {
	if d.closed {
		return ErrClosed
	}
	copy(d.engine.Leds(0), frame)
	if err := d.engine.Render(); err != nil {
		return fmt.Errorf("ws281x render: %w", err)
	}
	return nil
}

func (d *ws281xDevice) Close() error {
	if !d.closed {
		d.closed = true
		d.engine.Fini()
	}
	return nil
}
