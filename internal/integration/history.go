package integration

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/titantest/internal/state"
)

// Recorder receives every process the driver launches.
type Recorder interface {
	Record(inv *state.Invocation) error
}

// NopRecorder discards invocations.
type NopRecorder struct{}

// Record implements Recorder.
func (NopRecorder) Record(*state.Invocation) error { return nil }

// Store is the part of the history database the driver writes to.
type Store interface {
	state.RunStore
	state.InvocationStore
}

// History records one driver run and its invocations in a Store.
type History struct {
	store Store
	runID string
	now   func() time.Time
}

// HistoryOption customizes the run record created by StartHistory.
type HistoryOption func(*state.Run)

// WithRevision stores the source revision the run was launched from.
func WithRevision(rev string) HistoryOption {
	return func(r *state.Run) {
		r.Revision = rev
	}
}

// StartHistory creates a run record and returns a Recorder bound to it.
func StartHistory(store Store, outputDir, configDir string, opts ...HistoryOption) (*History, error) {
	h := &History{
		store: store,
		runID: uuid.New().String(),
		now:   time.Now,
	}
	run := &state.Run{
		ID:        h.runID,
		OutputDir: outputDir,
		ConfigDir: configDir,
		StartedAt: h.now(),
		Status:    state.RunRunning,
	}
	for _, o := range opts {
		o(run)
	}
	err := store.CreateRun(run)
	if err != nil {
		return nil, fmt.Errorf("start history: %w", err)
	}
	return h, nil
}

// RunID returns the ID of the recorded run.
func (h *History) RunID() string {
	return h.runID
}

// Record implements Recorder.
func (h *History) Record(inv *state.Invocation) error {
	inv.RunID = h.runID
	return h.store.AddInvocation(inv)
}

// Finish stores the run outcome. A nil runErr marks the run as passed.
func (h *History) Finish(runErr error) error {
	status, msg := state.RunPassed, ""
	if runErr != nil {
		status, msg = state.RunFailed, runErr.Error()
	}
	return h.store.FinishRun(h.runID, status, msg, h.now())
}
