package driver

import "errors"

// Driver errors.
var (
	// ErrUnknownPin indicates a pin name absent from the board table.
	ErrUnknownPin = errors.New("driver: unknown pin")

	// ErrUnknownPlatform indicates a hardware platform name the factory
	// does not recognize.
	ErrUnknownPlatform = errors.New("driver: unknown platform")

	// ErrSPIPins indicates a DotStar init whose clock/data pins do not map
	// onto the hardware SPI pair required by the gpio platform.
	ErrSPIPins = errors.New("driver: dotstar requires hardware SPI pins")

	// ErrClosed indicates a write to a device that has been closed.
	ErrClosed = errors.New("driver: device closed")
)
