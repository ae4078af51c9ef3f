package animation

import (
	"fmt"
	"math"
	"time"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/lumastack/pixeld/internal/strip"
)

const (
	fullCircle           = 360.0
	defaultRainbowPeriod = 5.0
)

type rainbowOptions struct {
	Speed  *float64 `json:"speed"`
	Period *float64 `json:"period"`
}

// rainbow spreads the hue wheel across the strip and rotates it, one
// full revolution per period.
type rainbow struct {
	base
	period float64
	offset float64
}

func newRainbow(s *strip.Strip, rawOptions []byte) (Animation, error) {
	var opts rainbowOptions
	if err := decodeOptions(rawOptions, &opts); err != nil {
		return nil, err
	}
	speed, err := speedOrDefault(opts.Speed)
	if err != nil {
		return nil, err
	}
	period := defaultRainbowPeriod
	if opts.Period != nil {
		if *opts.Period <= 0 {
			return nil, fmt.Errorf("%w: period must be positive", ErrBadOptions)
		}
		period = *opts.Period
	}

	a := &rainbow{period: period}
	a.initBase(s, speed)
	a.addProperty("period",
		func() any { return a.period },
		func(v any) error {
			p, ok := floatValue(v)
			if !ok || p <= 0 {
				return fmt.Errorf("%w: period %v", ErrInvalidProperty, v)
			}
			a.period = p
			return nil
		},
	)
	return a, nil
}

func (a *rainbow) Kind() Kind { return KindRainbow }

func (a *rainbow) Tick(now time.Time) error {
	if !a.due(now) {
		return nil
	}

	n := a.strip.Len()
	for i := 0; i < n; i++ {
		hue := math.Mod(a.offset+float64(i)*fullCircle/float64(n), fullCircle)
		r, g, b := colorful.Hsv(hue, 1, 1).RGB255()
		packed := uint32(r)<<16 | uint32(g)<<8 | uint32(b)
		if err := a.strip.SetPixelPacked(i, packed); err != nil {
			return err
		}
	}

	// Advance the wheel by one interval's worth of the period.
	a.offset = math.Mod(a.offset+fullCircle*a.interval.Seconds()/a.period, fullCircle)
	return a.strip.Show()
}
