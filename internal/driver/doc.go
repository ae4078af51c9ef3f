// Package driver provides the hardware output devices strips render
// through, plus the pin-name resolver used when strips are initialized.
//
// A Device receives fully composed frames (one packed 0xWWRRGGBB value per
// pixel, brightness already applied) and pushes them to its transport:
//
//   - memory: keeps the last frame in process; the default on hosts
//     without GPIO and the device used throughout the tests
//   - ws281x: single-wire NeoPixel output via the rpi-ws281x PWM/DMA engine
//   - dotstar: two-wire APA102 output framed over hardware SPI (go-rpio)
//
// The Factory selects between them from the hardware platform configured
// at boot, so the packages above it never branch on hardware.
package driver
