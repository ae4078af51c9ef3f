package mqtt

import "fmt"

// DefaultTopicPrefix is used when the configuration leaves the prefix
// empty.
const DefaultTopicPrefix = "pixeld"

// Topics builds the daemon's MQTT topic names from a configurable
// prefix. Using these helpers keeps topic naming consistent between the
// command bridge, the event publisher and the status announcements.
//
//	topics := mqtt.NewTopics("pixeld")
//	topics.Command("fill")      // "pixeld/command/fill"
//	topics.Event("strip")       // "pixeld/event/strip"
//	topics.Status()             // "pixeld/status"
type Topics struct {
	prefix string
}

// NewTopics creates a topic builder for a prefix. An empty prefix falls
// back to DefaultTopicPrefix.
func NewTopics(prefix string) Topics {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return Topics{prefix: prefix}
}

// Command returns the topic a single operation is commanded on.
//
// Example: pixeld/command/fill
func (t Topics) Command(op string) string {
	return fmt.Sprintf("%s/command/%s", t.prefix, op)
}

// AllCommands returns a pattern matching every command topic.
//
// Pattern: pixeld/command/+
func (t Topics) AllCommands() string {
	return fmt.Sprintf("%s/command/+", t.prefix)
}

// CommandOp extracts the operation name from a command topic. Returns
// false if the topic is not under this builder's command prefix.
func (t Topics) CommandOp(topic string) (string, bool) {
	prefix := t.prefix + "/command/"
	if len(topic) <= len(prefix) || topic[:len(prefix)] != prefix {
		return "", false
	}
	return topic[len(prefix):], true
}

// Event returns the topic state-change events publish on, grouped by
// category ("strip" or "animation").
//
// Example: pixeld/event/strip
func (t Topics) Event(category string) string {
	return fmt.Sprintf("%s/event/%s", t.prefix, category)
}

// AllEvents returns a pattern matching every event topic.
//
// Pattern: pixeld/event/+
func (t Topics) AllEvents() string {
	return fmt.Sprintf("%s/event/+", t.prefix)
}

// Status returns the online/offline status topic, also used as the LWT
// target.
//
// Example: pixeld/status
func (t Topics) Status() string {
	return fmt.Sprintf("%s/status", t.prefix)
}
