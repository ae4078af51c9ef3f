// Package controller owns the strip and animation registries and the
// state machine that arbitrates between direct pixel control and
// animation playback.
//
// Architecture:
//
//	┌──────────┐   Do(op)   ┌───────┐          ┌────────────┐
//	│ HTTP/MQTT│ ─────────▶ │ Actor │ ───────▶ │ Controller │
//	│ boundary │ ◀───────── │ loop  │  tick    │ registries │
//	└──────────┘   result   └───────┘ ───────▶ └────────────┘
//
// Key Types:
//   - Controller: dispatches validated operations against the strip and
//     animation registries and enforces the per-strip mode transitions.
//   - Actor: the single goroutine that owns the Controller; boundary
//     layers submit closures through Do and the same loop advances
//     animation frames on a fixed tick.
//   - Fields / Validate: request-body validation shared by the HTTP and
//     MQTT boundaries.
//
// Thread Safety:
//   - Controller and the registries it owns are confined to the Actor
//     goroutine. Nothing here takes locks; serialization is by design
//     of the loop, which services at most one request between ticks.
package controller
