// Package jobstore persists translation job aggregates in SQLite. Jobs are
// written whole on every chunk boundary and loaded whole on read, so the
// database is the restart-safe source of truth for job state.
package jobstore
