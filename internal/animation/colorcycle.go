package animation

import (
	"fmt"
	"time"

	"github.com/lumastack/pixeld/internal/strip"
)

type colorCycleOptions struct {
	Colors []ColorOption `json:"colors"`
	Speed  *float64      `json:"speed"`
}

// colorCycle fills the whole strip with each color in turn.
type colorCycle struct {
	base
	colors []uint32
	index  int
}

func newColorCycle(s *strip.Strip, rawOptions []byte) (Animation, error) {
	var opts colorCycleOptions
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

	a := &colorCycle{colors: packedList(opts.Colors)}
	a.initBase(s, speed)
	a.props["colors"] = colorsProperty(&a.colors)
	return a, nil
}

func (a *colorCycle) Kind() Kind { return KindColorCycle }

func (a *colorCycle) Tick(now time.Time) error {
	if !a.due(now) {
		return nil
	}

	// A colors property write may have shortened the list.
	if a.index >= len(a.colors) {
		a.index = 0
	}
	if err := a.strip.FillPacked(a.colors[a.index]); err != nil {
		return err
	}
	a.index = (a.index + 1) % len(a.colors)
	return a.strip.Show()
}
