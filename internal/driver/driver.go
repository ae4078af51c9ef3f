package driver

import "fmt"

// Platform names accepted in hardware configuration.
const (
	PlatformMemory = "memory"
	PlatformGPIO   = "gpio"
)

// Default transport parameters.
const (
	defaultSPIFrequencyHz    = 2_000_000
	defaultWS281xFrequencyHz = 800_000
	defaultWS281xDMA         = 10
)

// Device is the output end of one strip. Show pushes a complete frame,
// one packed 0xWWRRGGBB value per pixel with brightness already applied.
// Implementations are accessed from a single goroutine per device.
type Device interface {
	Show(frame []uint32) error
	Close() error
}

// Config selects the hardware platform and its transport parameters.
type Config struct {
	// Platform is "memory" or "gpio".
	Platform string

	// SPIFrequencyHz is the DotStar clock rate on the gpio platform.
	SPIFrequencyHz int

	// WS281xFrequencyHz is the NeoPixel signal rate, normally 800kHz.
	WS281xFrequencyHz int

	// WS281xDMA is the DMA channel the ws281x engine claims.
	WS281xDMA int
}

// Factory creates devices for the configured platform. One factory is
// shared by every strip init; DotStar devices on the gpio platform share
// its single SPI bus.
type Factory struct {
	cfg Config
	spi *spiBus
}

// NewFactory validates the platform name and prepares a factory.
func NewFactory(cfg Config) (*Factory, error) {
	if cfg.Platform == "" {
		cfg.Platform = PlatformMemory
	}
	if cfg.Platform != PlatformMemory && cfg.Platform != PlatformGPIO {
		return nil, fmt.Errorf("%w: %q", ErrUnknownPlatform, cfg.Platform)
	}
	if cfg.SPIFrequencyHz <= 0 {
		cfg.SPIFrequencyHz = defaultSPIFrequencyHz
	}
	if cfg.WS281xFrequencyHz <= 0 {
		cfg.WS281xFrequencyHz = defaultWS281xFrequencyHz
	}
	if cfg.WS281xDMA <= 0 {
		cfg.WS281xDMA = defaultWS281xDMA
	}
	return &Factory{cfg: cfg, spi: newSPIBus(cfg.SPIFrequencyHz)}, nil
}

// NeoPixel creates the output device for a single-wire strip on the named
// pin. The pin must resolve even on the memory platform so development
// requests mirror hardware ones.
func (f *Factory) NeoPixel(pin string, pixelCount int) (Device, error) {
	gpio, err := ResolvePin(pin)
	if err != nil {
		return nil, err
	}
	if f.cfg.Platform == PlatformMemory {
		return newMemoryDevice(pixelCount), nil
	}
	return newWS281xDevice(gpio, pixelCount, f.cfg.WS281xFrequencyHz, f.cfg.WS281xDMA)
}

// DotStar creates the output device for a two-wire strip. On the gpio
// platform the pins must name the hardware SPI pair (SCK/MOSI or their
// D-number equivalents); the memory platform accepts any known pins.
func (f *Factory) DotStar(clockPin, dataPin string, pixelCount int) (Device, error) {
	clock, err := ResolvePin(clockPin)
	if err != nil {
		return nil, err
	}
	data, err := ResolvePin(dataPin)
	if err != nil {
		return nil, err
	}
	if f.cfg.Platform == PlatformMemory {
		return newMemoryDevice(pixelCount), nil
	}
	if clock != spiClockPin || data != spiDataPin {
		return nil, fmt.Errorf("%w: clock=%q data=%q", ErrSPIPins, clockPin, dataPin)
	}
	return newDotStarDevice(f.spi, pixelCount)
}

// Close releases shared transport resources. Individual devices are
// closed by their owners before this is called.
func (f *Factory) Close() error {
	return f.spi.close()
}
