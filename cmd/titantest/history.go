package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/titantest/internal/state"
)

var (
	historyLimit int
	historyPurge time.Duration
)

var historyCmd = &cobra.Command{
	Use:   "history [run-id]",
	Short: "Show past integration runs",
	Long: `Without arguments, list the most recent integration runs.
With a run ID, list every process launched during that run.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Number of runs to list (0 for all)")
	historyCmd.Flags().DurationVar(&historyPurge, "purge", 0, "Delete runs older than this before listing (e.g. 720h)")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if _, err := os.Stat(cfg.History.DBPath); os.IsNotExist(err) {
		fmt.Fprintln(out, "No runs recorded yet. Run 'titantest <output_dir>' to start.")
		return nil
	}

	db, err := state.Open(cfg.History.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate history database: %w", err)
	}

	if historyPurge > 0 {
		n, err := db.PurgeOldRuns(historyPurge)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Purged %d runs older than %s\n\n", n, historyPurge)
	}

	if len(args) == 1 {
		return showRun(cmd, db, args[0])
	}

	runs, err := db.ListRuns(historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			runDuration(r),
			statusText(r.Status),
			r.OutputDir,
		})
	}
	fmt.Fprintln(out, renderTable([]string{"RUN", "STARTED", "DURATION", "STATUS", "OUTPUT"}, rows))
	return nil
}

func showRun(cmd *cobra.Command, db *state.DB, id string) error {
	run, err := db.GetRun(id)
	if err != nil {
		return err
	}
	if run == nil {
		return fmt.Errorf("run %s not found", id)
	}

	invs, err := db.ListInvocations(id)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("run"), valueStyle.Render(run.ID))
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("status"), statusText(run.Status))
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("configs"), run.ConfigDir)
	fmt.Fprintf(out, "%s %s\n", labelStyle.Render("output"), run.OutputDir)
	if run.Revision != "" {
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("revision"), run.Revision)
	}
	if run.Error != "" {
		fmt.Fprintf(out, "%s %s\n", labelStyle.Render("error"), run.Error)
	}
	fmt.Fprintln(out)

	rows := make([][]string, 0, len(invs))
	for _, inv := range invs {
		rows = append(rows, []string{
			inv.ConfigFile,
			inv.Flavor,
			strconv.Itoa(inv.GroupIndex),
			string(inv.Kind),
			strconv.Itoa(inv.ExitCode),
			inv.Duration.Round(time.Millisecond).String(),
		})
	}
	fmt.Fprintln(out, renderTable([]string{"CONFIG", "FLAVOR", "GROUP", "KIND", "EXIT", "DURATION"}, rows))
	return nil
}

func runDuration(r state.Run) string {
	if r.FinishedAt == nil {
		return "-"
	}
	return r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String()
}

func statusText(s state.RunStatus) string {
	switch s {
	case state.RunPassed:
		return color.GreenString(string(s))
	case state.RunFailed:
		return color.RedString(string(s))
	case state.RunInterrupted:
		return color.YellowString(string(s))
	default:
		return string(s)
	}
}
