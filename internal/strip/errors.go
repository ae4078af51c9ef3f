package strip

import "errors"

// Strip registry errors.
var (
	// ErrNotFound indicates an unregistered strip id.
	ErrNotFound = errors.New("strip: not found")

	// ErrDuplicateID indicates a register with an id already present.
	ErrDuplicateID = errors.New("strip: duplicate id")

	// ErrInvalidID indicates an empty or unusable strip id.
	ErrInvalidID = errors.New("strip: invalid id")

	// ErrIndexOutOfRange indicates a pixel index outside the strip.
	ErrIndexOutOfRange = errors.New("strip: pixel index out of range")
)
