package controller

import (
	"errors"

	"github.com/lumastack/pixeld/internal/animation"
	"github.com/lumastack/pixeld/internal/color"
	"github.com/lumastack/pixeld/internal/driver"
	"github.com/lumastack/pixeld/internal/strip"
)

// Status classifies an operation result for the boundary layer, which
// translates it into a wire-level response code.
type Status int

// Result classifications.
const (
	StatusOK Status = iota
	StatusBadRequest
	StatusServerError
)

// ValidationError reports a malformed or incomplete request body. Its
// message is the exact text returned to the caller.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// NewValidationError builds a ValidationError with a caller-facing
// message.
func NewValidationError(msg string) *ValidationError {
	return &ValidationError{msg: msg}
}

// KeyError reports the pixels-map key whose application failed, either
// because it does not parse as an index or because the index is outside
// the strip. Keys applied before it stay applied.
type KeyError struct {
	Key string
	Err error
}

func (e *KeyError) Error() string { return "Index Error on Key: " + e.Key }

func (e *KeyError) Unwrap() error { return e.Err }

// PropertyError reports an animation property write that was rejected:
// unknown name or a value of the wrong type.
type PropertyError struct {
	Name string
	Err  error
}

func (e *PropertyError) Error() string { return "Invalid property " + e.Name }

func (e *PropertyError) Unwrap() error { return e.Err }

// StatusOf maps an operation error onto its wire classification. Every
// modeled failure is recoverable and reported to the caller; anything
// unrecognized is an internal fault.
func StatusOf(err error) Status {
	if err == nil {
		return StatusOK
	}

	var (
		validationErr *ValidationError
		keyErr        *KeyError
		propertyErr   *PropertyError
	)
	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &keyErr),
		errors.As(err, &propertyErr):
		return StatusBadRequest
	}

	recoverable := []error{
		strip.ErrNotFound,
		strip.ErrDuplicateID,
		strip.ErrInvalidID,
		strip.ErrIndexOutOfRange,
		animation.ErrNotFound,
		animation.ErrDuplicateID,
		animation.ErrUnknownKind,
		animation.ErrStripMismatch,
		animation.ErrInvalidProperty,
		animation.ErrBadOptions,
		color.ErrInvalid,
		driver.ErrUnknownPin,
		driver.ErrUnknownPlatform,
		driver.ErrSPIPins,
	}
	for _, kind := range recoverable {
		if errors.Is(err, kind) {
			return StatusBadRequest
		}
	}
	return StatusServerError
}
