package animation

import (
	"fmt"
	"time"

	"github.com/lumastack/pixeld/internal/strip"
)

type customColorChaseOptions struct {
	Colors  []ColorOption `json:"colors"`
	Speed   *float64      `json:"speed"`
	Size    *int          `json:"size"`
	Spacing *int          `json:"spacing"`
	Reverse bool          `json:"reverse"`
}

// customColorChase is a theatre chase whose lit blocks cycle through a
// caller-supplied palette instead of a single color.
type customColorChase struct {
	base
	colors  []uint32
	size    int
	spacing int
	reverse bool
	offset  int
}

func newCustomColorChase(s *strip.Strip, rawOptions []byte) (Animation, error) {
	var opts customColorChaseOptions
	if err := decodeOptions(rawOptions, &opts); err != nil {
		return nil, err
	}
	if len(opts.Colors) == 0 {
		return nil, fmt.Errorf("%w: colors is required", ErrBadOptions)
	}
	speed, err := speedOrDefault(opts.Speed)
	if err != nil {
		return nil, err
	}
	size, spacing, err := chaseGeometry(opts.Size, opts.Spacing)
	if err != nil {
		return nil, err
	}

	a := &customColorChase{
		colors:  packedList(opts.Colors),
		size:    size,
		spacing: spacing,
		reverse: opts.Reverse,
	}
	a.initBase(s, speed)
	a.props["colors"] = colorsProperty(&a.colors)
	a.props["size"] = intProperty(&a.size)
	a.props["spacing"] = intProperty(&a.spacing)
	a.props["reverse"] = boolProperty(&a.reverse)
	return a, nil
}

func (a *customColorChase) Kind() Kind { return KindCustomColorChase }

func (a *customColorChase) Tick(now time.Time) error {
	if !a.due(now) {
		return nil
	}

	stride := a.size + a.spacing
	for i := 0; i < a.strip.Len(); i++ {
		v := uint32(0)
		if (i+a.offset)%stride < a.size {
			group := (i + a.offset) / stride
			v = a.colors[group%len(a.colors)]
		}
		if err := a.strip.SetPixelPacked(i, v); err != nil {
			return err
		}
	}

	if a.reverse {
		a.offset = ((a.offset+1)%stride + stride) % stride
	} else {
		a.offset = ((a.offset-1)%stride + stride) % stride
	}
	return a.strip.Show()
}
