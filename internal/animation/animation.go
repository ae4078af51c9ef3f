package animation

import (
	"fmt"
	"time"

	"github.com/lumastack/pixeld/internal/strip"
)

// Kind enumerates the animation kinds the factory can build.
type Kind string

// Known animation kinds.
const (
	KindBlink            Kind = "blink"
	KindColorCycle       Kind = "colorcycle"
	KindComet            Kind = "comet"
	KindRainbow          Kind = "rainbow"
	KindPulse            Kind = "pulse"
	KindChase            Kind = "chase"
	KindCustomColorChase Kind = "customcolorchase"
)

// Animation is one constructed instance bound to a strip.
type Animation interface {
	// Kind returns the instance's kind.
	Kind() Kind

	// Tick advances at most one frame. Instances throttle themselves to
	// their speed interval, so calling faster than that is a no-op.
	Tick(now time.Time) error

	// SetProperty writes a named property. Color-valued properties expect
	// a decoded color.Value (or []color.Value for lists); everything else
	// takes the raw JSON-decoded value.
	SetProperty(name string, value any) error

	// Property reads a named property.
	Property(name string) (any, error)
}

// constructor builds one kind from its strictly-decoded options.
type constructor func(s *strip.Strip, rawOptions []byte) (Animation, error)

// constructors is the compile-time kind table. An unknown kind string
// fails the same way a missing kind implementation would.
var constructors = map[Kind]constructor{
	KindBlink:            newBlink,
	KindColorCycle:       newColorCycle,
	KindComet:            newComet,
	KindRainbow:          newRainbow,
	KindPulse:            newPulse,
	KindChase:            newChase,
	KindCustomColorChase: newCustomColorChase,
}

// Kinds returns all known kind names, for error messages and listings.
func Kinds() []Kind {
	return []Kind{
		KindBlink, KindColorCycle, KindComet, KindRainbow,
		KindPulse, KindChase, KindCustomColorChase,
	}
}

// New constructs an animation of the named kind against a strip.
// rawOptions is the kwargs object as JSON; nil means no options.
//
// Construction does not touch the strip: the caller captures the
// pre-animation auto-write value and turns auto-write off afterwards
// (animations buffer a whole frame and flush once per tick).
func New(kind string, s *strip.Strip, rawOptions []byte) (Animation, error) {
	ctor, ok := constructors[Kind(kind)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	return ctor(s, rawOptions)
}
