package strip

import (
	"fmt"
	"sort"
)

// Logger is the minimal logging interface the registry needs. The
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

// Registry maps strip ids to strips and carries the per-strip mode and
// saved auto-write bookkeeping. Strips are never removed once registered.
//
// The registry is owned by the controller goroutine and is not locked.
type Registry struct {
	strips         map[string]*Strip
	modes          map[string]Mode
	savedAutoWrite map[string]bool
	logger         Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		strips:         make(map[string]*Strip),
		modes:          make(map[string]Mode),
		savedAutoWrite: make(map[string]bool),
		logger:         noopLogger{},
	}
}

// SetLogger attaches a logger.
func (r *Registry) SetLogger(l Logger) {
	if l != nil {
		r.logger = l
	}
}

// Register adds a strip under its id, starting in pixels mode.
func (r *Registry) Register(s *Strip) error {
	if s.ID() == "" {
		return fmt.Errorf("%w: empty", ErrInvalidID)
	}
	if _, exists := r.strips[s.ID()]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateID, s.ID())
	}

	r.strips[s.ID()] = s
	r.modes[s.ID()] = ModePixels

	r.logger.Info("strip registered",
		"strip_id", s.ID(),
		"kind", string(s.Kind()),
		"pixel_count", s.Len(),
	)
	return nil
}

// Get returns the strip for an id.
func (r *Registry) Get(id string) (*Strip, error) {
	s, ok := r.strips[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return s, nil
}

// Has reports whether an id is registered.
func (r *Registry) Has(id string) bool {
	_, ok := r.strips[id]
	return ok
}

// IDs returns all registered ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.strips))
	for id := range r.strips {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of registered strips.
func (r *Registry) Count() int {
	return len(r.strips)
}

// Mode returns a strip's current mode.
func (r *Registry) Mode(id string) (Mode, error) {
	m, ok := r.modes[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return m, nil
}

// SetMode records a strip's mode. Transition rules live with the caller;
// the registry only stores the result.
func (r *Registry) SetMode(id string, m Mode) error {
	if _, ok := r.modes[id]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	r.modes[id] = m
	return nil
}

// CaptureAutoWrite saves the strip's current auto-write value, once. The
// first capture for a strip wins: later calls are no-ops so the value
// restored on leaving animation mode is always the one from before the
// first animation was attached.
func (r *Registry) CaptureAutoWrite(id string) error {
	s, ok := r.strips[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	if _, captured := r.savedAutoWrite[id]; captured {
		return nil
	}
	r.savedAutoWrite[id] = s.AutoWrite()
	r.logger.Debug("auto-write captured", "strip_id", id, "value", s.AutoWrite())
	return nil
}

// SavedAutoWrite returns the captured value and whether a capture exists.
func (r *Registry) SavedAutoWrite(id string) (value, captured bool) {
	value, captured = r.savedAutoWrite[id]
	return value, captured
}
