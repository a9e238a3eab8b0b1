package state

import (
	"database/sql"
	"fmt"
	"time"
)

// RunStatus represents the outcome of a driver run.
type RunStatus string

const (
	RunRunning     RunStatus = "running"
	RunPassed      RunStatus = "passed"
	RunFailed      RunStatus = "failed"
	RunInterrupted RunStatus = "interrupted"
)

// InvocationKind tells seed checkpoint creation apart from training runs.
type InvocationKind string

const (
	KindSeed  InvocationKind = "seed"
	KindTrain InvocationKind = "train"
)

// Run is one execution of the integration driver.
type Run struct {
	ID         string     `json:"id"`
	OutputDir  string     `json:"output_dir"`
	ConfigDir  string     `json:"config_dir"`
	Revision   string     `json:"revision"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	Status     RunStatus  `json:"status"`
	Error      string     `json:"error"`
}

// Invocation is one process launched during a run.
type Invocation struct {
	ID         int64          `json:"id"`
	RunID      string         `json:"run_id"`
	ConfigFile string         `json:"config_file"`
	Flavor     string         `json:"flavor"`
	GroupIndex int            `json:"group_index"`
	Kind       InvocationKind `json:"kind"`
	Command    string         `json:"command"`
	ExitCode   int            `json:"exit_code"`
	Duration   time.Duration  `json:"duration"`
	StartedAt  time.Time      `json:"started_at"`
}

// CreateRun inserts a new run.
func (db *DB) CreateRun(r *Run) error {
	_, err := db.Exec(`
		INSERT INTO runs (id, output_dir, config_dir, revision, started_at, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.OutputDir, r.ConfigDir, nullString(r.Revision), formatTime(r.StartedAt), string(r.Status))
	if err != nil {
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// FinishRun stores the final status of a run.
func (db *DB) FinishRun(id string, status RunStatus, runErr string, finishedAt time.Time) error {
	res, err := db.Exec(`
		UPDATE runs SET status = ?, error = ?, finished_at = ? WHERE id = ?
	`, string(status), nullString(runErr), formatTime(finishedAt), id)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("finish run: run %s not found", id)
	}
	return nil
}

// GetRun retrieves a run by ID. It returns nil, nil when no run matches.
func (db *DB) GetRun(id string) (*Run, error) {
	row := db.QueryRow(`
		SELECT id, output_dir, config_dir, revision, started_at, finished_at, status, error
		FROM runs WHERE id = ?
	`, id)

	r, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return r, nil
}

// ListRuns returns the most recent runs first. A limit <= 0 returns all.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	query := `
		SELECT id, output_dir, config_dir, revision, started_at, finished_at, status, error
		FROM runs ORDER BY started_at DESC
	`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *r)
	}
	return runs, rows.Err()
}

// AddInvocation records a launched process and sets its ID.
func (db *DB) AddInvocation(inv *Invocation) error {
	res, err := db.Exec(`
		INSERT INTO invocations (run_id, config_file, flavor, group_index, kind, command, exit_code, duration_ms, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, inv.RunID, inv.ConfigFile, inv.Flavor, inv.GroupIndex, string(inv.Kind), inv.Command,
		inv.ExitCode, inv.Duration.Milliseconds(), formatTime(inv.StartedAt))
	if err != nil {
		return fmt.Errorf("add invocation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("get invocation id: %w", err)
	}
	inv.ID = id
	return nil
}

// ListInvocations returns a run's invocations in launch order.
func (db *DB) ListInvocations(runID string) ([]Invocation, error) {
	rows, err := db.Query(`
		SELECT id, run_id, config_file, flavor, group_index, kind, command, exit_code, duration_ms, started_at
		FROM invocations WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("list invocations: %w", err)
	}
	defer rows.Close()

	var invs []Invocation
	for rows.Next() {
		var inv Invocation
		var durationMS int64
		var startedAt string
		if err := rows.Scan(&inv.ID, &inv.RunID, &inv.ConfigFile, &inv.Flavor, &inv.GroupIndex,
			&inv.Kind, &inv.Command, &inv.ExitCode, &durationMS, &startedAt); err != nil {
			return nil, fmt.Errorf("scan invocation: %w", err)
		}
		inv.Duration = time.Duration(durationMS) * time.Millisecond
		inv.StartedAt, _ = parseTime(startedAt)
		invs = append(invs, inv)
	}
	return invs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var r Run
	var startedAt string
	var revision, finishedAt, runErr sql.NullString
	if err := s.Scan(&r.ID, &r.OutputDir, &r.ConfigDir, &revision, &startedAt, &finishedAt, &r.Status, &runErr); err != nil {
		return nil, err
	}
	r.StartedAt, _ = parseTime(startedAt)
	r.FinishedAt = parseNullableTime(finishedAt)
	r.Revision = revision.String
	r.Error = runErr.String
	return &r, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
