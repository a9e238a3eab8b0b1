package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "titantest [flags] <output_dir>",
	Short: "Training integration test driver",
	Long: `titantest launches the training integration tests.

Every *.toml file in the config directory whose [job] table sets
use_for_integration_test = true is run once per registered flavor.
A flavor is a list of override groups; each group becomes one call of
the training launch script:

  CONFIG_FILE=<config> NGPU=<n> LOG_RANK=0,1,2,3 ./run_llama_train.sh <overrides>

Flavors that need a seed checkpoint run ./create_seed_checkpoint.sh first.
Every run writes under <output_dir>. The first failing run stops everything
and titantest exits non-zero.

Configuration is read from ~/.config/titantest/config.yaml, then
.titantest.yaml in the current directory or a parent, then TITANTEST_*
environment variables. Flags override all of them.`,
	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runIntegration,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("✗"), err)
		os.Exit(1)
	}
}

func init() {
	addCommonFlags(rootCmd.PersistentFlags())
	addRunFlags(rootCmd.Flags())

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(lrCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
