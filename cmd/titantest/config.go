package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/titantest/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Manage configuration",
	Long: `View or modify titantest configuration.

Without arguments, displays current configuration.
With one argument (key), displays the value for that key.
With two arguments (key value), sets the configuration value.

Configuration is stored at ~/.config/titantest/config.yaml
Project-specific overrides can be placed in .titantest.yaml`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		out := cmd.OutOrStdout()
		switch len(args) {
		case 0:
			for _, key := range config.Keys() {
				value, _ := cfg.Get(key)
				if value == "" {
					value = mutedStyle.Render("(not set)")
				}
				fmt.Fprintf(out, "%s: %s\n", key, value)
			}
		case 1:
			value, err := cfg.Get(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(out, value)
		default:
			if err := cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err := config.Save(cfg); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			fmt.Fprintf(out, "Set %s = %s\n", args[0], args[1])
		}
		return nil
	},
}
