package flavors

import (
	"fmt"
	"os"
	"strings"

	"github.com/kballard/go-shellquote"
	"gopkg.in/yaml.v3"
)

// OutputDirPlaceholder is replaced by the shell-quoted output directory in
// flavor files.
const OutputDirPlaceholder = "{{output_dir}}"

// Parse decodes a YAML flavor registry. Keys are config file names, values
// are lists of definitions.
//
//	debug_model.toml:
//	  - description: Default
//	    override_args:
//	      - ["--job.dump_folder {{output_dir}}/default/"]
func Parse(data []byte, outputDir string) (Registry, error) {
	var raw map[string][]OverrideDefinition
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	quoted := shellquote.Join(outputDir)
	reg := make(Registry, len(raw))
	for name, defs := range raw {
		out := make([]OverrideDefinition, 0, len(defs))
		for _, d := range defs {
			for _, group := range d.OverrideArgs {
				for i, s := range group {
					group[i] = strings.ReplaceAll(s, OutputDirPlaceholder, quoted)
				}
			}
			d.applyDefaults()
			out = append(out, d)
		}
		reg[name] = out
	}

	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return reg, nil
}

// LoadFile reads a YAML flavor registry from path.
func LoadFile(path, outputDir string) (Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	reg, err := Parse(data, outputDir)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return reg, nil
}
