package driver

import (
	"fmt"
	"sync"

	"github.com/stianeikeland/go-rpio/v4"
)

// APA102 framing constants: a frame opens with four zero bytes, carries
// {brightness, B, G, R} per LED, and closes with one 0xFF byte per 16
// LEDs (plus one) to clock the last pixels through.
const (
	dotStarStartFrameLen = 4
	dotStarBytesPerLED   = 4
	dotStarEndFrameDiv   = 16
	dotStarGlobalFull    = 0xE0 | 0x1F
)

// spiBus owns the single hardware SPI bus DotStar devices share. The bus
// is opened on first use and reference-counted so the last device (or the
// factory at shutdown) releases it.
type spiBus struct {
	frequencyHz int

	mu   sync.Mutex
	open bool
	refs int
}

func newSPIBus(frequencyHz int) *spiBus {
	return &spiBus{frequencyHz: frequencyHz}
}

func (b *spiBus) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		if err := rpio.Open(); err != nil {
			return fmt.Errorf("gpio open: %w", err)
		}
		if err := rpio.SpiBegin(rpio.Spi0); err != nil {
			rpio.Close() //nolint:errcheck // already failing; surface the SPI error
			return fmt.Errorf("spi begin: %w", err)
		}
		rpio.SpiSpeed(b.frequencyHz)
		b.open = true
	}
	b.refs++
	return nil
}

func (b *spiBus) release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.refs > 0 {
		b.refs--
	}
	if b.refs == 0 && b.open {
		rpio.SpiEnd(rpio.Spi0)
		rpio.Close() //nolint:errcheck // shutdown path
		b.open = false
	}
}

func (b *spiBus) exchange(buf []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	rpio.SpiExchange(buf)
}

// close force-releases the bus regardless of refcount. Called by the
// factory during shutdown after devices are closed.
func (b *spiBus) close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.open {
		rpio.SpiEnd(rpio.Spi0)
		b.open = false
		b.refs = 0
		return rpio.Close()
	}
	return nil
}

// dotStarDevice frames pixels for APA102-class strips over the shared
// SPI bus. The white channel of a frame value is ignored; APA102 has no
// white LED.
type dotStarDevice struct {
	bus    *spiBus
	buf    []byte
	closed bool
}

func newDotStarDevice(bus *spiBus, pixelCount int) (Device, error) {
	if err := bus.acquire(); err != nil {
		return nil, err
	}
	endLen := pixelCount/dotStarEndFrameDiv + 1
	size := dotStarStartFrameLen + dotStarBytesPerLED*pixelCount + endLen
	return &dotStarDevice{bus: bus, buf: make([]byte, size)}, nil
}

func (d *dotStarDevice) Show(frame []uint32) error {
	if d.closed {
		return ErrClosed
	}

	for i := 0; i < dotStarStartFrameLen; i++ {
		d.buf[i] = 0x00
	}

	offset := dotStarStartFrameLen
	for _, c := range frame {
		d.buf[offset] = dotStarGlobalFull
		d.buf[offset+1] = byte(c)       // blue
		d.buf[offset+2] = byte(c >> 8)  // green
		d.buf[offset+3] = byte(c >> 16) // red
		offset += dotStarBytesPerLED
	}
	for i := offset; i < len(d.buf); i++ {
		d.buf[i] = 0xFF
	}

	d.bus.exchange(d.buf)
	return nil
}

func (d *dotStarDevice) Close() error {
	if !d.closed {
		d.closed = true
		d.bus.release()
	}
	return nil
}
