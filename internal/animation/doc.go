// Package animation provides the animation kinds that render onto strips
// and the registry tracking which animation is current for which strip.
//
// Each kind is constructed through the compile-time factory from a typed
// options structure decoded strictly from the request's kwargs (unknown
// fields are rejected). Instances expose a small capability set: advance
// one frame, and get/set a closed table of named properties registered at
// construction. Color-valued properties receive values already decoded by
// the caller.
//
// Animations self-throttle: Tick is called at the scheduler rate and a
// frame is only drawn when the instance's speed interval has elapsed.
// Drawing buffers pixels and flushes once per frame, which is why
// construction forces the bound strip's auto-write off.
//
// # Thread Safety
//
// Like the strip registry, everything here is owned by the controller
// goroutine and is not locked.
package animation
