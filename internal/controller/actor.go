package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Default actor parameters.
const (
	defaultTickInterval = 10 * time.Millisecond
	requestBuffer       = 16
)

// Op identifies one dispatched operation for the operation log and
// telemetry.
type Op struct {
	// Name is the operation, e.g. "fill" or "init_animation".
	Name string

	// Target is the strip or animation id the operation addresses, when
	// it has one.
	Target string

	// Source is where the request came from: http, mqtt, startup or
	// replay.
	Source string
}

// OpRecord is one operation-log row.
type OpRecord struct {
	ID      string
	Time    time.Time
	Source  string
	Name    string
	Target  string
	Outcome string
	Error   string
}

// OpLog appends operation records. A nil log disables the trail.
type OpLog interface {
	Append(ctx context.Context, rec OpRecord) error
}

// Telemetry records operation and tick metrics. A nil sink disables
// them.
type Telemetry interface {
	RecordOperation(op, source, outcome string)
	RecordTick(stripsAnimated int)
}

// ActorConfig tunes the actor loop.
type ActorConfig struct {
	// TickInterval is how often animation frames are advanced.
	TickInterval time.Duration

	// Optional collaborators.
	OpLog     OpLog
	Telemetry Telemetry
	Logger    Logger
}

// Actor is the single goroutine that owns a Controller. Boundary
// layers submit operations through Do; the same loop advances every
// running animation once per tick, so requests and frames never
// interleave mid-mutation.
type Actor struct {
	ctrl      *Controller
	requests  chan request
	interval  time.Duration
	oplog     OpLog
	telemetry Telemetry
	logger    Logger
}

type request struct {
	op    Op
	fn    func(*Controller) error
	reply chan error

	// quiet skips the operation log and telemetry, for periodic
	// internal reads.
	quiet bool
}

// NewActor wraps a controller in its serving loop. Run must be called
// before Do is useful.
func NewActor(ctrl *Controller, cfg ActorConfig) *Actor {
	interval := cfg.TickInterval
	if interval <= 0 {
		interval = defaultTickInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Actor{
		ctrl:      ctrl,
		requests:  make(chan request, requestBuffer),
		interval:  interval,
		oplog:     cfg.OpLog,
		telemetry: cfg.Telemetry,
		logger:    logger,
	}
}

// Run services requests and animation ticks until the context is
// cancelled. A frame error is fatal to the loop and is returned.
func (a *Actor) Run(ctx context.Context) error {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.logger.Info("control loop started", "tick_interval", a.interval.String())
	for {
		select {
		case <-ctx.Done():
			a.logger.Info("control loop stopped")
			return nil
		case req := <-a.requests:
			a.handle(ctx, req)
		case <-ticker.C:
			animated, err := a.ctrl.Animate(time.Now())
			if err != nil {
				a.logger.Error("animation frame failed", "error", err)
				return fmt.Errorf("animation tick: %w", err)
			}
			if a.telemetry != nil && animated > 0 {
				a.telemetry.RecordTick(animated)
			}
		}
	}
}

// Do runs one operation on the controller goroutine and waits for its
// result. It is safe for concurrent use from any number of callers.
func (a *Actor) Do(ctx context.Context, op Op, fn func(*Controller) error) error {
	req := request{op: op, fn: fn, reply: make(chan error, 1)}

	select {
	case a.requests <- req:
	case <-ctx.Done():
		return fmt.Errorf("submitting %s: %w", op.Name, ctx.Err())
	}

	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return fmt.Errorf("awaiting %s: %w", op.Name, ctx.Err())
	}
}

// Inspect runs a read on the controller goroutine without recording it
// as an operation. Gauge collection uses it so periodic reads do not
// fill the operation log.
func (a *Actor) Inspect(ctx context.Context, fn func(*Controller)) error {
	req := request{
		fn:    func(c *Controller) error { fn(c); return nil },
		reply: make(chan error, 1),
		quiet: true,
	}

	select {
	case a.requests <- req:
	case <-ctx.Done():
		return fmt.Errorf("submitting inspect: %w", ctx.Err())
	}

	select {
	case err := <-req.reply:
		return err
	case <-ctx.Done():
		return fmt.Errorf("awaiting inspect: %w", ctx.Err())
	}
}

func (a *Actor) handle(ctx context.Context, req request) {
	err := req.fn(a.ctrl)

	if req.quiet {
		req.reply <- err
		return
	}

	outcome := "ok"
	errText := ""
	if err != nil {
		outcome = "error"
		errText = err.Error()
		a.logger.Debug("operation failed",
			"op", req.op.Name,
			"target", req.op.Target,
			"source", req.op.Source,
			"error", err,
		)
	}

	if a.oplog != nil {
		rec := OpRecord{
			ID:      uuid.New().String(),
			Time:    time.Now().UTC(),
			Source:  req.op.Source,
			Name:    req.op.Name,
			Target:  req.op.Target,
			Outcome: outcome,
			Error:   errText,
		}
		if logErr := a.oplog.Append(ctx, rec); logErr != nil {
			a.logger.Warn("operation log append failed", "op", req.op.Name, "error", logErr)
		}
	}
	if a.telemetry != nil {
		a.telemetry.RecordOperation(req.op.Name, req.op.Source, outcome)
	}

	req.reply <- err
}
