package animation

import (
	"fmt"
	"math"
	"time"

	"github.com/lumastack/pixeld/internal/strip"
)

const defaultPulsePeriod = 5.0

type pulseOptions struct {
	Color  *ColorOption `json:"color"`
	Speed  *float64     `json:"speed"`
	Period *float64     `json:"period"`
}

// pulse breathes the whole strip through a sine envelope of its color,
// one full breath per period.
type pulse struct {
	base
	color  uint32
	period float64
	phase  float64
}

func newPulse(s *strip.Strip, rawOptions []byte) (Animation, error) {
	var opts pulseOptions
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
	period := defaultPulsePeriod
	if opts.Period != nil {
		if *opts.Period <= 0 {
			return nil, fmt.Errorf("%w: period must be positive", ErrBadOptions)
		}
		period = *opts.Period
	}

	a := &pulse{color: uint32(opts.Color.RGB()), period: period}
	a.initBase(s, speed)
	a.props["color"] = colorProperty(&a.color)
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

func (a *pulse) Kind() Kind { return KindPulse }

func (a *pulse) Tick(now time.Time) error {
	if !a.due(now) {
		return nil
	}

	// Envelope in [0,1]: starts dark, peaks mid-period.
	envelope := (1 - math.Cos(a.phase)) / 2
	if err := a.strip.FillPacked(dim(a.color, envelope)); err != nil {
		return err
	}
	a.phase = math.Mod(a.phase+2*math.Pi*a.interval.Seconds()/a.period, 2*math.Pi)
	return a.strip.Show()
}
