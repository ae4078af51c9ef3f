package animation

import (
	"fmt"
	"time"

	"github.com/lumastack/pixeld/internal/strip"
)

type cometOptions struct {
	Color      *ColorOption `json:"color"`
	Speed      *float64     `json:"speed"`
	TailLength *int         `json:"tail_length"`
	Reverse    bool         `json:"reverse"`
	Bounce     bool         `json:"bounce"`
}

// comet sweeps a bright head with a fading tail along the strip,
// wrapping at the end or bouncing back when configured.
type comet struct {
	base
	color      uint32
	tailLength int
	reverse    bool
	bounce     bool
	head       int
	direction  int
}

func newComet(s *strip.Strip, rawOptions []byte) (Animation, error) {
	var opts cometOptions
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

	tail := s.Len() / 4
	if tail < 2 {
		tail = 2
	}
	if opts.TailLength != nil {
		if *opts.TailLength < 1 {
			return nil, fmt.Errorf("%w: tail_length must be positive", ErrBadOptions)
		}
		tail = *opts.TailLength
	}

	a := &comet{
		color:      uint32(opts.Color.RGB()),
		tailLength: tail,
		reverse:    opts.Reverse,
		bounce:     opts.Bounce,
		direction:  1,
	}
	if opts.Reverse {
		a.head = s.Len() - 1
		a.direction = -1
	}
	a.initBase(s, speed)
	a.props["color"] = colorProperty(&a.color)
	a.props["tail_length"] = intProperty(&a.tailLength)
	a.props["reverse"] = boolProperty(&a.reverse)
	a.props["bounce"] = boolProperty(&a.bounce)
	return a, nil
}

func (a *comet) Kind() Kind { return KindComet }

func (a *comet) Tick(now time.Time) error {
	if !a.due(now) {
		return nil
	}

	n := a.strip.Len()
	if err := a.strip.FillPacked(0); err != nil {
		return err
	}

	// Head at full color, tail dimming linearly behind it.
	for k := 0; k <= a.tailLength; k++ {
		pos := a.head - k*a.direction
		if a.bounce {
			if pos < 0 || pos >= n {
				continue
			}
		} else {
			pos = ((pos % n) + n) % n
		}
		factor := float64(a.tailLength-k) / float64(a.tailLength)
		if err := a.strip.SetPixelPacked(pos, dim(a.color, factor)); err != nil {
			return err
		}
	}

	a.head += a.direction
	if a.bounce {
		if a.head >= n {
			a.head = n - 1
			a.direction = -1
		} else if a.head < 0 {
			a.head = 0
			a.direction = 1
		}
	} else if a.head >= n {
		a.head = 0
	} else if a.head < 0 {
		a.head = n - 1
	}

	return a.strip.Show()
}

// dim scales each channel of a packed color by factor in [0,1].
func dim(c uint32, factor float64) uint32 {
	var out uint32
	for shift := 0; shift < 24; shift += 8 {
		ch := float64((c >> shift) & 0xff)
		out |= uint32(ch*factor) << shift
	}
	return out
}
