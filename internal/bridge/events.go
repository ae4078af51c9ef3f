package bridge

import (
	"encoding/json"
	"strings"

	"github.com/lumastack/pixeld/internal/infrastructure/mqtt"
)

// EventPublisher forwards controller events to the MQTT event topics.
// It satisfies the controller's event sink.
type EventPublisher struct {
	conn   Conn
	topics mqtt.Topics
	qos    byte
	logger Logger
}

// NewEventPublisher creates a publisher over a connected MQTT client.
func NewEventPublisher(conn Conn, cfg Config) *EventPublisher {
	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &EventPublisher{
		conn:   conn,
		topics: cfg.Topics,
		qos:    cfg.QoS,
		logger: logger,
	}
}

// Publish sends one event to its category topic. The category is the
// part of the event type before the first dot ("strip.filled" goes to
// the strip topic). Publish failures are logged, never propagated: the
// controller treats the sink as fire-and-forget.
func (p *EventPublisher) Publish(eventType string, payload map[string]any) {
	category, _, _ := strings.Cut(eventType, ".")

	msg := make(map[string]any, len(payload)+1)
	for k, v := range payload {
		msg[k] = v
	}
	msg["type"] = eventType

	raw, err := json.Marshal(msg)
	if err != nil {
		p.logger.Warn("event encode failed", "type", eventType, "error", err)
		return
	}
	if err := p.conn.Publish(p.topics.Event(category), raw, p.qos, false); err != nil {
		p.logger.Warn("event publish failed", "type", eventType, "error", err)
	}
}
