package animation

import (
	"fmt"
	"time"

	"github.com/lumastack/pixeld/internal/strip"
)

type blinkOptions struct {
	Color *ColorOption `json:"color"`
	Speed *float64     `json:"speed"`
}

// blink alternates the whole strip between its color and off.
type blink struct {
	base
	color uint32
	lit   bool
}

func newBlink(s *strip.Strip, rawOptions []byte) (Animation, error) {
	var opts blinkOptions
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

	a := &blink{color: uint32(opts.Color.RGB())}
	a.initBase(s, speed)
	a.props["color"] = colorProperty(&a.color)
	return a, nil
}

func (a *blink) Kind() Kind { return KindBlink }

func (a *blink) Tick(now time.Time) error {
	if !a.due(now) {
		return nil
	}

	a.lit = !a.lit
	v := a.color
	if !a.lit {
		v = 0
	}
	if err := a.strip.FillPacked(v); err != nil {
		return err
	}
	return a.strip.Show()
}
