package state

import (
	"fmt"
	"time"
)

// MarkInterrupted closes out runs still marked running, which happens when
// a previous driver process was killed before it could record its result.
// It returns the number of runs updated.
func (db *DB) MarkInterrupted(now time.Time) (int64, error) {
	res, err := db.Exec(`
		UPDATE runs SET status = ?, finished_at = ?, error = ?
		WHERE status = ?
	`, string(RunInterrupted), formatTime(now), "driver exited before the run finished", string(RunRunning))
	if err != nil {
		return 0, fmt.Errorf("mark interrupted runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return n, nil
}
