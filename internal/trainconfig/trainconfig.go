// Package trainconfig reads the TOML training configs consumed by the
// training entry point. Only the keys this tool acts on are decoded; the rest
// of the file is ignored.
package trainconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Ext is the extension of training config files.
const Ext = ".toml"

// JobConfig is the subset of a training config this tool reads.
type JobConfig struct {
	Job       Job       `toml:"job"`
	Training  Training  `toml:"training"`
	Optimizer Optimizer `toml:"optimizer"`
}

// Job holds the [job] table.
type Job struct {
	DumpFolder            string `toml:"dump_folder"`
	Description           string `toml:"description"`
	UseForIntegrationTest bool   `toml:"use_for_integration_test"`
}

// Training holds the [training] table.
type Training struct {
	BatchSize            int  `toml:"batch_size"`
	SeqLen               int  `toml:"seq_len"`
	WarmupSteps          int  `toml:"warmup_steps"`
	Steps                int  `toml:"steps"`
	DataParallelDegree   int  `toml:"data_parallel_degree"`
	TensorParallelDegree int  `toml:"tensor_parallel_degree"`
	Compile              bool `toml:"compile"`
}

// Optimizer holds the [optimizer] table.
type Optimizer struct {
	Name string  `toml:"name"`
	LR   float64 `toml:"lr"`
}

// Default returns the values the training entry point assumes for keys a
// config file leaves out.
func Default() *JobConfig {
	return &JobConfig{
		Job: Job{
			DumpFolder:  "./torchtitan/outputs",
			Description: "default job",
		},
		Training: Training{
			BatchSize:            8,
			SeqLen:               2048,
			WarmupSteps:          200,
			Steps:                10000,
			DataParallelDegree:   -1,
			TensorParallelDegree: 1,
		},
		Optimizer: Optimizer{
			Name: "AdamW",
			LR:   8e-4,
		},
	}
}

// Parse decodes a training config from TOML bytes on top of Default.
func Parse(data []byte) (*JobConfig, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and decodes the training config at path.
func Load(path string) (*JobConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return cfg, nil
}

// Discover returns the paths of the config files directly inside dir,
// sorted by file name. Subdirectories are not searched.
func Discover(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), Ext) {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	return paths, nil
}
