package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/titantest/internal/flavors"
)

var listCmd = &cobra.Command{
	Use:   "list [output_dir]",
	Short: "List the registered flavors",
	Long: `List every flavor that runs against each config file, with the
override groups it launches. Dump folders are shown under output_dir
(default ./outputs).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	outputDir := "./outputs"
	if len(args) == 1 {
		outputDir = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg, outputDir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(reg) == 0 {
		fmt.Fprintln(out, "No flavors registered.")
		return nil
	}

	for _, name := range reg.Names() {
		defs := reg.Lookup(name)
		fmt.Fprintf(out, "%s %s\n\n", valueStyle.Render(name), mutedStyle.Render(fmt.Sprintf("(%d flavors)", len(defs))))
		fmt.Fprintln(out, renderTable([]string{"FLAVOR", "NGPU", "SEED", "GROUP", "OVERRIDES"}, flavorRows(defs)))
		fmt.Fprintln(out)
	}
	return nil
}

// flavorRows renders one row per override group.
func flavorRows(defs []flavors.OverrideDefinition) [][]string {
	var rows [][]string
	for _, d := range defs {
		seed := ""
		if d.RequiresSeedCheckpoint {
			seed = "yes"
		}
		for i, g := range d.Groups() {
			name, ngpu := d.Description, strconv.Itoa(d.NGPU)
			if i > 0 {
				name, ngpu, seed = "", "", ""
			}
			rows = append(rows, []string{name, ngpu, seed, strconv.Itoa(i), strings.Join(g, " ")})
		}
	}
	return rows
}
