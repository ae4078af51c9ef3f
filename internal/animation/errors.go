package animation

import "errors"

// Animation registry and factory errors.
var (
	// ErrNotFound indicates an unregistered animation id.
	ErrNotFound = errors.New("animation: not found")

	// ErrDuplicateID indicates a register with an id already present.
	ErrDuplicateID = errors.New("animation: duplicate id")

	// ErrUnknownKind indicates an animation kind the factory does not know.
	ErrUnknownKind = errors.New("animation: unknown kind")

	// ErrStripMismatch indicates selecting an animation as current for a
	// strip other than the one it was built against.
	ErrStripMismatch = errors.New("animation: bound to a different strip")

	// ErrInvalidProperty indicates a property name outside the instance's
	// registered table, or a value of the wrong type for it.
	ErrInvalidProperty = errors.New("animation: invalid property")

	// ErrBadOptions indicates kwargs that do not decode into the kind's
	// options structure: unknown fields, missing required fields, or
	// out-of-range values.
	ErrBadOptions = errors.New("animation: invalid options")
)
