package bridge

import (
	"context"
	"fmt"

	"github.com/lumastack/pixeld/internal/controller"
	"github.com/lumastack/pixeld/internal/infrastructure/mqtt"
)

// Logger is the minimal logging interface the bridge needs. The
// infrastructure logger satisfies it.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger discards all log output. Used when no logger is configured.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Conn is the slice of the MQTT client the bridge uses.
type Conn interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// Config tunes the bridge and the event publisher.
type Config struct {
	// QoS applies to the command subscription and event publishes.
	QoS byte

	// Topics names the command and event topics.
	Topics mqtt.Topics

	// Logger is optional.
	Logger Logger
}

// Bridge subscribes to the command topics and dispatches incoming
// payloads as controller operations.
type Bridge struct {
	actor  *controller.Actor
	conn   Conn
	topics mqtt.Topics
	qos    byte
	logger Logger
}

// New creates a command bridge over a connected MQTT client.
func New(actor *controller.Actor, conn Conn, cfg Config) *Bridge {
	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Bridge{
		actor:  actor,
		conn:   conn,
		topics: cfg.Topics,
		qos:    cfg.QoS,
		logger: logger,
	}
}

// Start subscribes to every command topic. The subscription survives
// reconnects through the client's resubscribe handling.
func (b *Bridge) Start() error {
	if err := b.conn.Subscribe(b.topics.AllCommands(), b.qos, b.handleCommand); err != nil {
		return fmt.Errorf("subscribing to commands: %w", err)
	}
	b.logger.Info("command bridge started", "topic", b.topics.AllCommands())
	return nil
}

// handleCommand services one command message. Commands have no reply
// channel, so failures end here: logged, and already counted by the
// dispatch path's operation log and telemetry.
func (b *Bridge) handleCommand(topic string, payload []byte) error {
	op, ok := b.topics.CommandOp(topic)
	if !ok || op == "" {
		b.logger.Debug("ignoring message outside command topics", "topic", topic)
		return nil
	}

	if err := b.dispatch(context.Background(), op, payload); err != nil {
		b.logger.Warn("mqtt command failed", "op", op, "error", err)
	}
	return nil
}

func (b *Bridge) dispatch(ctx context.Context, op string, payload []byte) error {
	switch op {
	case "fill":
		f, stripID, err := stripCommand(payload, "color")
		if err != nil {
			return err
		}
		return b.do(ctx, op, stripID, func(c *controller.Controller) error {
			return c.Fill(stripID, f)
		})

	case "pixels":
		f, stripID, err := stripCommand(payload, "pixels")
		if err != nil {
			return err
		}
		return b.do(ctx, op, stripID, func(c *controller.Controller) error {
			return c.SetPixels(stripID, f)
		})

	case "show":
		_, stripID, err := stripCommand(payload)
		if err != nil {
			return err
		}
		return b.do(ctx, op, stripID, func(c *controller.Controller) error {
			return c.Show(stripID)
		})

	case "brightness":
		f, stripID, err := stripCommand(payload, "brightness")
		if err != nil {
			return err
		}
		return b.do(ctx, op, stripID, func(c *controller.Controller) error {
			_, err := c.SetBrightness(stripID, f)
			return err
		})

	case "auto_write":
		f, stripID, err := stripCommand(payload, "auto_write")
		if err != nil {
			return err
		}
		return b.do(ctx, op, stripID, func(c *controller.Controller) error {
			_, err := c.SetAutoWrite(stripID, f)
			return err
		})

	case "start_animation":
		_, animationID, err := animationCommand(payload)
		if err != nil {
			return err
		}
		return b.do(ctx, op, animationID, func(c *controller.Controller) error {
			return c.StartAnimation(animationID)
		})

	case "set_property":
		f, animationID, err := animationCommand(payload, "name", "value")
		if err != nil {
			return err
		}
		return b.do(ctx, op, animationID, func(c *controller.Controller) error {
			return c.SetAnimationProperty(animationID, f)
		})

	default:
		return fmt.Errorf("unknown command %q", op)
	}
}

func (b *Bridge) do(ctx context.Context, name, target string, fn func(*controller.Controller) error) error {
	op := controller.Op{Name: name, Target: target, Source: "mqtt"}
	return b.actor.Do(ctx, op, fn)
}

// stripCommand validates a strip-addressed payload: strip_id plus the
// operation's own required fields.
func stripCommand(payload []byte, required ...string) (controller.Fields, string, error) {
	f, err := controller.Validate(payload, append([]string{"strip_id"}, required...)...)
	if err != nil {
		return nil, "", err
	}
	stripID, err := f.String("strip_id")
	if err != nil {
		return nil, "", err
	}
	return f, stripID, nil
}

// animationCommand validates an animation-addressed payload.
func animationCommand(payload []byte, required ...string) (controller.Fields, string, error) {
	f, err := controller.Validate(payload, append([]string{"animation_id"}, required...)...)
	if err != nil {
		return nil, "", err
	}
	animationID, err := f.String("animation_id")
	if err != nil {
		return nil, "", err
	}
	return f, animationID, nil
}
