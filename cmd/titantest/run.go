package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ShayCichocki/titantest/internal/config"
	"github.com/ShayCichocki/titantest/internal/exec"
	"github.com/ShayCichocki/titantest/internal/git"
	"github.com/ShayCichocki/titantest/internal/integration"
	"github.com/ShayCichocki/titantest/internal/state"
)

const gitTimeout = 10 * time.Second

func runIntegration(cmd *cobra.Command, args []string) error {
	outputDir := args[0]

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	lg, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer lg.Sync()

	reg, err := loadRegistry(cfg, outputDir)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(os.Stderr, "\nReceived interrupt, stopping the current run...")
			cancel()
		case <-ctx.Done():
		}
	}()

	out := cmd.OutOrStdout()
	var runner exec.CommandRunner = exec.NewRunner(cfg.Run.Timeout)
	if flagDryRun {
		runner = &exec.DryRunner{Out: out}
	}

	options := []integration.Option{
		integration.WithOutput(out),
		integration.WithLogger(lg),
	}

	var hist *integration.History
	if cfg.History.Enabled && !flagDryRun {
		db, h, err := openHistory(cfg, outputDir, lg)
		if err != nil {
			return err
		}
		defer db.Close()
		hist = h
		options = append(options, integration.WithRecorder(hist))
	}

	d := integration.New(runner, reg, integration.Options{
		TrainScript: cfg.Paths.TrainScript,
		SeedScript:  cfg.Paths.SeedScript,
		LogRank:     cfg.Run.LogRank,
	}, options...)

	start := time.Now()
	runErr := d.DiscoverAndRun(ctx, cfg.Paths.ConfigDir)

	if hist != nil {
		if err := hist.Finish(runErr); err != nil {
			lg.Warn("failed to record run result", zap.Error(err))
		}
	}

	printSummary(out, d.Summary(), time.Since(start), runErr)
	return runErr
}

// openHistory opens the history database and starts a run record in it.
// Runs left open by a killed driver are closed out first.
func openHistory(cfg *config.Config, outputDir string, lg *zap.Logger) (*state.DB, *integration.History, error) {
	db, err := state.Open(cfg.History.DBPath)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate history database: %w", err)
	}

	if n, err := db.MarkInterrupted(time.Now()); err != nil {
		lg.Warn("failed to close out interrupted runs", zap.Error(err))
	} else if n > 0 {
		lg.Info("marked interrupted runs", zap.Int64("count", n))
	}

	var opts []integration.HistoryOption
	if rev := sourceRevision(lg); rev != "" {
		opts = append(opts, integration.WithRevision(rev))
	}

	hist, err := integration.StartHistory(db, outputDir, cfg.Paths.ConfigDir, opts...)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	lg.Debug("recording run", zap.String("run-id", hist.RunID()), zap.String("db", db.Path()))
	return db, hist, nil
}

// sourceRevision describes the git checkout the driver runs in. It returns ""
// outside a repository.
func sourceRevision(lg *zap.Logger) string {
	ctx, cancel := context.WithTimeout(context.Background(), gitTimeout)
	defer cancel()

	rev, err := git.NewRunner(exec.NewRunner(gitTimeout), ".").Describe(ctx)
	if err != nil {
		lg.Debug("source revision unavailable", zap.Error(err))
		return ""
	}
	return rev.String()
}

// printSummary prints the final verdict of a run.
func printSummary(w io.Writer, s integration.Summary, elapsed time.Duration, runErr error) {
	fmt.Fprintf(w, "\nconfigs: %d scanned, %d selected  flavors: %d passed  runs: %d  seed checkpoints: %d  (%s)\n",
		s.ConfigsScanned, s.ConfigsSelected, s.Flavors, s.Invocations, s.SeedCheckpoints, elapsed.Round(time.Millisecond))

	var (
		perr *integration.PreconditionError
		terr *integration.TestFailedError
	)
	switch {
	case runErr == nil:
		printStatus(w, "✓", "Integration tests passed", color.FgGreen)
	case errors.As(runErr, &perr):
		printStatus(w, "✗", fmt.Sprintf("Invalid flavor %q: %v", perr.Flavor, perr.Err), color.FgRed)
	case errors.As(runErr, &terr):
		printStatus(w, "✗", fmt.Sprintf("Flavor %q failed", terr.Flavor), color.FgRed)
	default:
		printStatus(w, "✗", "Integration tests aborted", color.FgRed)
	}
}

// printStatus prints a status line with color
func printStatus(w io.Writer, symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	fmt.Fprintf(w, "%s %s\n", c.Sprint(symbol), message)
}
