package animation

import (
	"fmt"
	"time"

	"github.com/lumastack/pixeld/internal/strip"
)

// Theatre-chase block defaults.
const (
	defaultChaseSize    = 2
	defaultChaseSpacing = 3
)

type chaseOptions struct {
	Color   *ColorOption `json:"color"`
	Speed   *float64     `json:"speed"`
	Size    *int         `json:"size"`
	Spacing *int         `json:"spacing"`
	Reverse bool         `json:"reverse"`
}

// chase marches lit blocks of size pixels separated by spacing dark
// pixels along the strip.
type chase struct {
	base
	color   uint32
	size    int
	spacing int
	reverse bool
	offset  int
}

func newChase(s *strip.Strip, rawOptions []byte) (Animation, error) {
	var opts chaseOptions
	if err := decodeOptions(rawOptions, &opts); err != nil {
		return nil, err
	}
	if opts.Color == nil {
		return nil, fmt.Errorf("%w: color is required", ErrBadOptions)
	}
	speed, err := speedOrDefault(opts.Speed)
	if err != nil {
		return nil, err
	}
	size, spacing, err := chaseGeometry(opts.Size, opts.Spacing)
	if err != nil {
		return nil, err
	}

	a := &chase{
		color:   uint32(opts.Color.RGB()),
		size:    size,
		spacing: spacing,
		reverse: opts.Reverse,
	}
	a.initBase(s, speed)
	a.props["color"] = colorProperty(&a.color)
	a.props["size"] = intProperty(&a.size)
	a.props["spacing"] = intProperty(&a.spacing)
	a.props["reverse"] = boolProperty(&a.reverse)
	return a, nil
}

func chaseGeometry(size, spacing *int) (int, int, error) {
	outSize, outSpacing := defaultChaseSize, defaultChaseSpacing
	if size != nil {
		if *size < 1 {
			return 0, 0, fmt.Errorf("%w: size must be positive", ErrBadOptions)
		}
		outSize = *size
	}
	if spacing != nil {
		if *spacing < 1 {
			return 0, 0, fmt.Errorf("%w: spacing must be positive", ErrBadOptions)
		}
		outSpacing = *spacing
	}
	return outSize, outSpacing, nil
}

func (a *chase) Kind() Kind { return KindChase }

func (a *chase) Tick(now time.Time) error {
	if !a.due(now) {
		return nil
	}

	stride := a.size + a.spacing
	for i := 0; i < a.strip.Len(); i++ {
		v := uint32(0)
		if (i+a.offset)%stride < a.size {
			v = a.color
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
