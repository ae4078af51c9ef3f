// Package strip owns the registered LED strips and their per-strip
// control state.
//
// A Strip couples a pixel buffer with the output device it renders
// through, plus the brightness and auto-write flags that govern flushing.
// The Registry maps strip ids to strips and additionally tracks each
// strip's mode (pixels / animation) and the auto-write value captured
// before the first animation was attached, which mode transitions restore.
//
// # Thread Safety
//
// The registry and every strip in it are owned by the controller's single
// goroutine. Nothing here locks; all access must come from that owner.
package strip
