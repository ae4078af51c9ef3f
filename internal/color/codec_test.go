package color

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse_PackedForms(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  int
	}{
		{"int", 0xff00ff, 0xff00ff},
		{"int64", int64(0x00ff00), 0x00ff00},
		{"integral float", float64(255), 255},
		{"zero", 0, 0},
		{"hex lowercase", "0xff00ff", 0xff00ff},
		{"hex uppercase digits", "0xFF00FF", 0xff00ff},
		{"hex short", "0xf", 0xf},
		{"hash prefix", "#ff0000", 0xff0000},
		{"hash short", "#0", 0x0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%v) error = %v", tt.input, err)
			}
			if got.IsList() {
				t.Fatalf("Parse(%v) returned list form, want packed", tt.input)
			}
			if got.Packed != tt.want {
				t.Errorf("Parse(%v) = %#x, want %#x", tt.input, got.Packed, tt.want)
			}
		})
	}
}

func TestParse_ListPassThrough(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  []int
	}{
		{"three channels", []any{float64(1), float64(2), float64(3)}, []int{1, 2, 3}},
		{"four channels", []any{float64(10), float64(20), float64(30), float64(40)}, []int{10, 20, 30, 40}},
		{"int slice", []int{255, 0, 255}, []int{255, 0, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%v) error = %v", tt.input, err)
			}
			if !got.IsList() {
				t.Fatalf("Parse(%v) returned packed form, want list", tt.input)
			}
			if !reflect.DeepEqual(got.List, tt.want) {
				t.Errorf("Parse(%v).List = %v, want %v", tt.input, got.List, tt.want)
			}
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	inputs := []any{
		true,
		nil,
		map[string]any{"r": 1},
		"ff00ff",
		"0x",
		"0x1234567",
		"0xzz",
		"#gggggg",
		1.5,
		[]any{float64(1), float64(2)},
		[]any{float64(1), float64(2), float64(3), float64(4), float64(5)},
		[]any{float64(1), float64(2), float64(300)},
		[]any{float64(1), float64(2), float64(-1)},
		[]any{float64(1), float64(2), 2.5},
		[]any{"1", "2", "3"},
		[]any{float64(1), float64(2), true},
	}

	for _, input := range inputs {
		if _, err := Parse(input); !errors.Is(err, ErrInvalid) {
			t.Errorf("Parse(%v) error = %v, want ErrInvalid", input, err)
		}
	}
}

func TestParse_Idempotent(t *testing.T) {
	// parse(to_hex(parse(x))) == parse(x) for packed forms.
	inputs := []any{0, 0xff00ff, "0xff", "#abcdef", float64(42)}

	for _, input := range inputs {
		first, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%v) error = %v", input, err)
		}
		second, err := Parse(ToHex(first.Packed))
		if err != nil {
			t.Fatalf("Parse(ToHex(%#x)) error = %v", first.Packed, err)
		}
		if second.Packed != first.Packed {
			t.Errorf("Parse(ToHex(Parse(%v))) = %#x, want %#x", input, second.Packed, first.Packed)
		}
	}
}

func TestToHex(t *testing.T) {
	tests := []struct {
		packed int
		want   string
	}{
		{0, "0x0"},
		{0xff, "0xff"},
		{0xff00ff, "0xff00ff"},
		{0xABC, "0xabc"},
	}

	for _, tt := range tests {
		if got := ToHex(tt.packed); got != tt.want {
			t.Errorf("ToHex(%#x) = %q, want %q", tt.packed, got, tt.want)
		}
	}
}

func TestRGBToPacked(t *testing.T) {
	if got := RGBToPacked(255, 0, 255); got != 0xff00ff {
		t.Errorf("RGBToPacked(255, 0, 255) = %#x, want 0xff00ff", got)
	}
	if got := RGBToPacked(0x12, 0x34, 0x56); got != 0x123456 {
		t.Errorf("RGBToPacked(0x12, 0x34, 0x56) = %#x, want 0x123456", got)
	}

	r, g, b := PackedChannels(0x123456)
	if r != 0x12 || g != 0x34 || b != 0x56 {
		t.Errorf("PackedChannels(0x123456) = %d, %d, %d", r, g, b)
	}
}

func TestValue_RGBAndWhite(t *testing.T) {
	listVal, err := Parse([]int{10, 20, 30, 40})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := listVal.RGB(); got != RGBToPacked(10, 20, 30) {
		t.Errorf("RGB() = %#x, want %#x", got, RGBToPacked(10, 20, 30))
	}
	if got := listVal.White(); got != 40 {
		t.Errorf("White() = %d, want 40", got)
	}

	packedVal, err := Parse(0xff00ff)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := packedVal.White(); got != 0 {
		t.Errorf("White() = %d, want 0", got)
	}
}
