package color

import "errors"

// Codec errors.
var (
	// ErrInvalid indicates a color value whose shape or content is not one
	// of the accepted forms (integer, 0x/# hex string, 3-4 channel list).
	ErrInvalid = errors.New("color: invalid value")
)
