// Package bridge connects the controller to MQTT.
//
// It has two halves. The command bridge subscribes to the command
// topics and turns incoming payloads into controller operations
// dispatched through the actor; commands carry the same JSON fields as
// the HTTP bodies plus the target strip or animation id. Commands get
// no per-message reply: failures are logged and show up in the
// operation log and telemetry like any other failed operation.
//
// The event publisher is the MQTT side of the controller's event sink.
// Every state-change event is published to its category topic
// ({prefix}/event/strip or {prefix}/event/animation) as a JSON object
// carrying the event type and payload.
//
// Init operations are not bridged. Hardware construction stays on the
// HTTP surface.
package bridge
