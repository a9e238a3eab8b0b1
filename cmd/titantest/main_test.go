package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/titantest/internal/flavors"
	"github.com/ShayCichocki/titantest/internal/integration"
	"github.com/ShayCichocki/titantest/internal/state"
)

func init() {
	color.NoColor = true
}

func TestFlavorRows(t *testing.T) {
	defs := []flavors.OverrideDefinition{
		flavors.New([][]string{{"--a"}, {"--b", "--c"}}, "two groups", flavors.WithSeedCheckpoint()),
		flavors.New(nil, "no overrides", flavors.WithNGPU(2)),
	}

	rows := flavorRows(defs)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"two groups", "4", "yes", "0", "--a"}, rows[0])
	assert.Equal(t, []string{"", "", "", "1", "--b --c"}, rows[1])
	assert.Equal(t, []string{"no overrides", "2", "", "0", ""}, rows[2])
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"A", "LONG HEADER"}, [][]string{
		{"first", "x"},
		{"second row", "y"},
	})

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "LONG HEADER")
	assert.Contains(t, lines[2], "second row")
	// Columns line up: the second column starts at the same offset on every line.
	col := strings.Index(lines[0], "LONG HEADER")
	assert.Equal(t, col, strings.Index(lines[1], "x"))
	assert.Equal(t, col, strings.Index(lines[2], "y"))
}

func TestPrintSummary(t *testing.T) {
	s := integration.Summary{ConfigsScanned: 3, ConfigsSelected: 1, Flavors: 2, Invocations: 4, SeedCheckpoints: 1}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "passed", err: nil, want: "✓ Integration tests passed"},
		{
			name: "precondition",
			err:  &integration.PreconditionError{Flavor: "Seed", Err: integration.ErrMissingDumpFolder},
			want: `✗ Invalid flavor "Seed"`,
		},
		{
			name: "test failed",
			err:  &integration.TestFailedError{Flavor: "1D compile", Command: "./run.sh", ExitCode: 1},
			want: `✗ Flavor "1D compile" failed`,
		},
		{name: "cancelled", err: context.Canceled, want: "✗ Integration tests aborted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printSummary(&buf, s, 1500*time.Millisecond, tt.err)
			assert.Contains(t, buf.String(), "configs: 3 scanned, 1 selected")
			assert.Contains(t, buf.String(), "runs: 4  seed checkpoints: 1")
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestPrintSummaryWrappedError(t *testing.T) {
	var buf bytes.Buffer
	err := errors.Join(errors.New("context"), &integration.TestFailedError{Flavor: "Default", ExitCode: 2})
	printSummary(&buf, integration.Summary{}, 0, err)
	assert.Contains(t, buf.String(), `Flavor "Default" failed`)
}

func TestStatusText(t *testing.T) {
	for _, s := range []state.RunStatus{state.RunRunning, state.RunPassed, state.RunFailed, state.RunInterrupted} {
		assert.Equal(t, string(s), statusText(s))
	}
}

func TestRunDuration(t *testing.T) {
	start := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "-", runDuration(state.Run{StartedAt: start}))

	end := start.Add(90 * time.Second)
	assert.Equal(t, "1m30s", runDuration(state.Run{StartedAt: start, FinishedAt: &end}))
}
