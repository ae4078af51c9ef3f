package animation

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

// Registry maps animation ids to constructed instances and tracks, per
// strip, which animation is currently selected to run. Instances are
// never removed once registered; selecting a different animation for a
// strip only moves the current pointer.
//
// The registry is owned by the controller goroutine and is not locked.
type Registry struct {
	anims   map[string]Animation
	bound   map[string]string // animation id -> strip id
	current map[string]string // strip id -> animation id
	logger  Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		anims:   make(map[string]Animation),
		bound:   make(map[string]string),
		current: make(map[string]string),
		logger:  noopLogger{},
	}
}

// SetLogger attaches a logger.
func (r *Registry) SetLogger(l Logger) {
	if l != nil {
		r.logger = l
	}
}

// Register adds an animation under its id, bound to the strip it was
// constructed against.
func (r *Registry) Register(id, stripID string, a Animation) error {
	if _, exists := r.anims[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateID, id)
	}

	r.anims[id] = a
	r.bound[id] = stripID

	r.logger.Info("animation registered",
		"animation_id", id,
		"strip_id", stripID,
		"kind", string(a.Kind()),
	)
	return nil
}

// Get returns the animation for an id.
func (r *Registry) Get(id string) (Animation, error) {
	a, ok := r.anims[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return a, nil
}

// BoundStrip returns the strip an animation renders onto.
func (r *Registry) BoundStrip(id string) (string, error) {
	stripID, ok := r.bound[id]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	return stripID, nil
}

// SetCurrent selects an animation as the one to run for a strip. The
// animation must be registered and bound to that exact strip; selecting
// it for any other strip fails. A previous selection is overwritten, its
// instance left registered.
func (r *Registry) SetCurrent(stripID, animationID string) error {
	boundTo, ok := r.bound[animationID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, animationID)
	}
	if boundTo != stripID {
		return fmt.Errorf("%w: %q is bound to %q, not %q", ErrStripMismatch, animationID, boundTo, stripID)
	}
	r.current[stripID] = animationID
	return nil
}

// CurrentFor returns the animation currently selected for a strip.
func (r *Registry) CurrentFor(stripID string) (string, bool) {
	id, ok := r.current[stripID]
	return id, ok
}

// IDs returns all registered animation ids in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.anims))
	for id := range r.anims {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Count returns the number of registered animations.
func (r *Registry) Count() int {
	return len(r.anims)
}
