package state

import (
	"io"
	"time"
)

// RunStore handles run persistence.
type RunStore interface {
	CreateRun(r *Run) error
	FinishRun(id string, status RunStatus, runErr string, finishedAt time.Time) error
	GetRun(id string) (*Run, error)
	ListRuns(limit int) ([]Run, error)
}

// InvocationStore handles invocation persistence.
type InvocationStore interface {
	AddInvocation(inv *Invocation) error
	ListInvocations(runID string) ([]Invocation, error)
}

// Migrator handles database schema migrations.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// HistoryStore is the full history backend.
type HistoryStore interface {
	io.Closer
	Migrator
	RunStore
	InvocationStore
}

// Compile-time verification that DB implements all interfaces.
var (
	_ RunStore        = (*DB)(nil)
	_ InvocationStore = (*DB)(nil)
	_ Migrator        = (*DB)(nil)
	_ HistoryStore    = (*DB)(nil)
)
