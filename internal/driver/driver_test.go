package driver

import (
	"errors"
	"testing"
)

func TestResolvePin(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"D0", 0},
		{"D18", 18},
		{"D27", 27},
		{"SCK", 11},
		{"MOSI", 10},
	}

	for _, tt := range tests {
		got, err := ResolvePin(tt.name)
		if err != nil {
			t.Fatalf("ResolvePin(%q) error = %v", tt.name, err)
		}
		if got != tt.want {
			t.Errorf("ResolvePin(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestResolvePin_Unknown(t *testing.T) {
	for _, name := range []string{"D28", "GP5", "", "d18"} {
		if _, err := ResolvePin(name); !errors.Is(err, ErrUnknownPin) {
			t.Errorf("ResolvePin(%q) error = %v, want ErrUnknownPin", name, err)
		}
		if HasPin(name) {
			t.Errorf("HasPin(%q) = true, want false", name)
		}
	}
	if !HasPin("D6") {
		t.Error("HasPin(D6) = false, want true")
	}
}

func TestNewFactory(t *testing.T) {
	t.Run("defaults to memory", func(t *testing.T) {
		f, err := NewFactory(Config{})
		if err != nil {
			t.Fatalf("NewFactory() error = %v", err)
		}
		if f.cfg.Platform != PlatformMemory {
			t.Errorf("Platform = %q, want %q", f.cfg.Platform, PlatformMemory)
		}
	})

	t.Run("rejects unknown platform", func(t *testing.T) {
		if _, err := NewFactory(Config{Platform: "simulated"}); !errors.Is(err, ErrUnknownPlatform) {
			t.Errorf("NewFactory() error = %v, want ErrUnknownPlatform", err)
		}
	})
}

func TestFactory_MemoryDevices(t *testing.T) {
	f, err := NewFactory(Config{Platform: PlatformMemory})
	if err != nil {
		t.Fatalf("NewFactory() error = %v", err)
	}

	t.Run("neopixel", func(t *testing.T) {
		dev, err := f.NeoPixel("D18", 8)
		if err != nil {
			t.Fatalf("NeoPixel() error = %v", err)
		}
		mem, ok := dev.(*MemoryDevice)
		if !ok {
			t.Fatalf("NeoPixel() device type = %T, want *MemoryDevice", dev)
		}
		if len(mem.Frame()) != 8 {
			t.Errorf("Frame() length = %d, want 8", len(mem.Frame()))
		}
	})

	t.Run("neopixel bad pin", func(t *testing.T) {
		if _, err := f.NeoPixel("D95", 8); !errors.Is(err, ErrUnknownPin) {
			t.Errorf("NeoPixel() error = %v, want ErrUnknownPin", err)
		}
	})

	t.Run("dotstar any known pins", func(t *testing.T) {
		if _, err := f.DotStar("D5", "D6", 4); err != nil {
			t.Fatalf("DotStar() error = %v", err)
		}
	})

	t.Run("dotstar bad pin", func(t *testing.T) {
		if _, err := f.DotStar("SCK", "nope", 4); !errors.Is(err, ErrUnknownPin) {
			t.Errorf("DotStar() error = %v, want ErrUnknownPin", err)
		}
	})
}

func TestMemoryDevice(t *testing.T) {
	dev := newMemoryDevice(4)

	frame := []uint32{0xff0000, 0x00ff00, 0x0000ff, 0xffffff}
	if err := dev.Show(frame); err != nil {
		t.Fatalf("Show() error = %v", err)
	}

	// Mutating the caller's buffer must not alter the shown frame.
	frame[0] = 0
	if dev.Frame()[0] != 0xff0000 {
		t.Errorf("Frame()[0] = %#x, want 0xff0000", dev.Frame()[0])
	}
	if dev.Shows() != 1 {
		t.Errorf("Shows() = %d, want 1", dev.Shows())
	}

	if err := dev.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := dev.Show(frame); !errors.Is(err, ErrClosed) {
		t.Errorf("Show() after Close error = %v, want ErrClosed", err)
	}
}
