package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lumastack/pixeld/internal/controller"
	"github.com/lumastack/pixeld/internal/infrastructure/database"
)

// Logger is the minimal logging interface the store needs. The
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

// Options tunes the store.
type Options struct {
	// OpLogMaxRows caps the operations table; rows beyond the cap are
	// trimmed oldest-first on append. Zero disables trimming.
	OpLogMaxRows int

	Logger Logger
}

// Store persists strip and animation definitions and the operation log
// in SQLite. It implements the controller's DefinitionStore and OpLog
// interfaces.
type Store struct {
	db           *database.DB
	opLogMaxRows int
	logger       Logger
}

// New wraps an open database. The schema must already be migrated.
func New(db *database.DB, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = noopLogger{}
	}
	return &Store{
		db:           db,
		opLogMaxRows: opts.OpLogMaxRows,
		logger:       logger,
	}
}

// SaveStrip upserts one strip definition. Re-initialising a strip id
// after a config change updates the stored row.
func (s *Store) SaveStrip(ctx context.Context, def controller.StripDefinition) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO strip_definitions
			(id, kind, pin, clock_pin, data_pin, pixel_count, brightness, auto_write, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			pin = excluded.pin,
			clock_pin = excluded.clock_pin,
			data_pin = excluded.data_pin,
			pixel_count = excluded.pixel_count,
			brightness = excluded.brightness,
			auto_write = excluded.auto_write,
			updated_at = excluded.updated_at
	`, def.ID, def.Kind, def.Pin, def.ClockPin, def.DataPin,
		def.PixelCount, def.Brightness, boolInt(def.AutoWrite), now, now)
	if err != nil {
		return fmt.Errorf("saving strip definition %q: %w", def.ID, err)
	}
	return nil
}

// SaveAnimation upserts one animation definition.
func (s *Store) SaveAnimation(ctx context.Context, def controller.AnimationDefinition) error {
	options := "{}"
	if len(def.Options) > 0 {
		options = string(def.Options)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO animation_definitions
			(id, strip_id, kind, options, auto_start, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			strip_id = excluded.strip_id,
			kind = excluded.kind,
			options = excluded.options,
			auto_start = excluded.auto_start,
			updated_at = excluded.updated_at
	`, def.ID, def.StripID, def.Kind, options, boolInt(def.AutoStart), now, now)
	if err != nil {
		return fmt.Errorf("saving animation definition %q: %w", def.ID, err)
	}
	return nil
}

// StripDefinitions returns every stored strip definition in creation
// order, for boot replay.
func (s *Store) StripDefinitions(ctx context.Context) ([]controller.StripDefinition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, pin, clock_pin, data_pin, pixel_count, brightness, auto_write
		FROM strip_definitions
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying strip definitions: %w", err)
	}
	defer rows.Close()

	var defs []controller.StripDefinition
	for rows.Next() {
		var def controller.StripDefinition
		var autoWrite int
		if err := rows.Scan(&def.ID, &def.Kind, &def.Pin, &def.ClockPin,
			&def.DataPin, &def.PixelCount, &def.Brightness, &autoWrite); err != nil {
			return nil, fmt.Errorf("scanning strip definition: %w", err)
		}
		def.AutoWrite = autoWrite != 0
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating strip definitions: %w", err)
	}
	return defs, nil
}

// AnimationDefinitions returns every stored animation definition in
// creation order.
func (s *Store) AnimationDefinitions(ctx context.Context) ([]controller.AnimationDefinition, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, strip_id, kind, options, auto_start
		FROM animation_definitions
		ORDER BY rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("querying animation definitions: %w", err)
	}
	defer rows.Close()

	var defs []controller.AnimationDefinition
	for rows.Next() {
		var def controller.AnimationDefinition
		var options string
		var autoStart int
		if err := rows.Scan(&def.ID, &def.StripID, &def.Kind, &options, &autoStart); err != nil {
			return nil, fmt.Errorf("scanning animation definition: %w", err)
		}
		def.Options = []byte(options)
		def.AutoStart = autoStart != 0
		defs = append(defs, def)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating animation definitions: %w", err)
	}
	return defs, nil
}

// Append writes one operation record and trims the log to its row cap.
func (s *Store) Append(ctx context.Context, rec controller.OpRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO operations (id, time, source, op, target, outcome, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Time.UTC().Format(time.RFC3339Nano),
		rec.Source, rec.Name, rec.Target, rec.Outcome, rec.Error)
	if err != nil {
		return fmt.Errorf("appending operation %q: %w", rec.Name, err)
	}

	if s.opLogMaxRows > 0 {
		if err := s.trimOperations(ctx); err != nil {
			s.logger.Warn("trimming operation log failed", "error", err)
		}
	}
	return nil
}

func (s *Store) trimOperations(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM operations
		WHERE rowid NOT IN (
			SELECT rowid FROM operations ORDER BY rowid DESC LIMIT ?
		)
	`, s.opLogMaxRows)
	return err
}

// RecentOps returns the newest operation records, newest first.
func (s *Store) RecentOps(ctx context.Context, limit int) ([]controller.OpRecord, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, time, source, op, target, outcome, error
		FROM operations
		ORDER BY rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying operations: %w", err)
	}
	defer rows.Close()

	var recs []controller.OpRecord
	for rows.Next() {
		var rec controller.OpRecord
		var ts string
		if err := rows.Scan(&rec.ID, &ts, &rec.Source, &rec.Name,
			&rec.Target, &rec.Outcome, &rec.Error); err != nil {
			return nil, fmt.Errorf("scanning operation: %w", err)
		}
		rec.Time, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			s.logger.Warn("operation row has a bad timestamp", "id", rec.ID, "time", ts, "error", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating operations: %w", err)
	}
	return recs, nil
}

// OpCount returns the number of rows in the operation log.
func (s *Store) OpCount(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM operations").Scan(&n)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("counting operations: %w", err)
	}
	return n, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
