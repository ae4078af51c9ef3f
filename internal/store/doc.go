// Package store persists strip and animation definitions and the
// operation log in SQLite.
//
// Definitions are the durable part of the registries: what was
// initialised, not its runtime state. Pixel contents, modes and the
// current animation selection are rebuilt by the startup actions and
// definition replay at boot. The operation log is an append-only audit
// trail with row-cap retention.
package store
