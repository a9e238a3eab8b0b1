// Package flavors defines the override variants ("flavors") the integration
// driver runs against each training config.
//
// A flavor is a named scenario made of one or more override-argument groups.
// Each group is applied to one invocation of the training entry point, so a
// two-group flavor models "save a checkpoint" followed by "load it and keep
// training".
package flavors

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kballard/go-shellquote"
)

const (
	// DefaultDescription is used for flavors that do not name themselves.
	DefaultDescription = "default"
	// DefaultNGPU is the GPU count of a flavor that does not set one.
	DefaultNGPU = 4
	// DumpFolderFlag is the override that points a run at its output folder.
	DumpFolderFlag = "--job.dump_folder"
)

// OverrideDefinition is one integration test scenario.
type OverrideDefinition struct {
	// OverrideArgs holds one group of flag strings per invocation. A single
	// string may carry several whitespace-separated flags.
	OverrideArgs [][]string `yaml:"override_args"`
	// Description is the human-readable flavor name.
	Description string `yaml:"description"`
	// RequiresSeedCheckpoint makes the driver create a seed checkpoint in the
	// group's dump folder before each invocation.
	RequiresSeedCheckpoint bool `yaml:"requires_seed_checkpoint"`
	// NGPU is the number of GPUs passed to the launch script.
	NGPU int `yaml:"ngpu"`
}

// Option customizes an OverrideDefinition built with New.
type Option func(*OverrideDefinition)

// WithSeedCheckpoint marks the flavor as needing a seed checkpoint.
func WithSeedCheckpoint() Option {
	return func(d *OverrideDefinition) {
		d.RequiresSeedCheckpoint = true
	}
}

// WithNGPU overrides the GPU count.
func WithNGPU(n int) Option {
	return func(d *OverrideDefinition) {
		d.NGPU = n
	}
}

// New builds a definition with the package defaults applied.
func New(groups [][]string, description string, opts ...Option) OverrideDefinition {
	d := OverrideDefinition{
		OverrideArgs: groups,
		Description:  description,
		NGPU:         DefaultNGPU,
	}
	for _, opt := range opts {
		opt(&d)
	}
	d.applyDefaults()
	return d
}

func (d *OverrideDefinition) applyDefaults() {
	if d.Description == "" {
		d.Description = DefaultDescription
	}
	if d.NGPU == 0 {
		d.NGPU = DefaultNGPU
	}
}

// Groups returns the override groups to run. A definition without groups
// still runs once, with no overrides.
func (d OverrideDefinition) Groups() [][]string {
	if len(d.OverrideArgs) == 0 {
		return [][]string{nil}
	}
	return d.OverrideArgs
}

// Validate checks the fields a loaded definition cannot do without.
func (d OverrideDefinition) Validate() error {
	if d.NGPU < 1 {
		return fmt.Errorf("flavor %q: ngpu must be positive, got %d", d.Description, d.NGPU)
	}
	for i, group := range d.OverrideArgs {
		if _, err := Args(group); err != nil {
			return fmt.Errorf("flavor %q group %d: %w", d.Description, i, err)
		}
	}
	return nil
}

// Args splits a group's flag strings into individual arguments using shell
// word rules, so "--a 1 --b=2" becomes three arguments.
func Args(group []string) ([]string, error) {
	var args []string
	for _, s := range group {
		words, err := shellquote.Split(s)
		if err != nil {
			return nil, fmt.Errorf("splitting %q: %w", s, err)
		}
		args = append(args, words...)
	}
	return args, nil
}

// DumpFolder returns the value of the group's --job.dump_folder override.
// When several strings carry the flag the last one wins.
func DumpFolder(group []string) (string, bool) {
	folder, found := "", false
	for _, s := range group {
		if !strings.Contains(s, DumpFolderFlag) {
			continue
		}
		words, err := shellquote.Split(s)
		if err != nil {
			continue
		}
		for i, w := range words {
			switch {
			case w == DumpFolderFlag && i+1 < len(words):
				folder, found = words[i+1], true
			case strings.HasPrefix(w, DumpFolderFlag+"="):
				folder, found = strings.TrimPrefix(w, DumpFolderFlag+"="), true
			}
		}
	}
	return folder, found
}

// Registry maps a config file name to the flavors run against it.
type Registry map[string][]OverrideDefinition

// Lookup returns the flavors for a config file name. Unregistered names
// have no flavors.
func (r Registry) Lookup(configFile string) []OverrideDefinition {
	return r[configFile]
}

// Names returns the registered config file names in sorted order.
func (r Registry) Names() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks every definition in the registry.
func (r Registry) Validate() error {
	for _, name := range r.Names() {
		for _, d := range r[name] {
			if err := d.Validate(); err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
		}
	}
	return nil
}
