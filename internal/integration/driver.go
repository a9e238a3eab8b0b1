package integration

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/ShayCichocki/titantest/internal/exec"
	"github.com/ShayCichocki/titantest/internal/flavors"
	"github.com/ShayCichocki/titantest/internal/state"
	"github.com/ShayCichocki/titantest/internal/trainconfig"
)

// Environment variables read by the launch scripts.
const (
	EnvConfigFile = "CONFIG_FILE"
	EnvNGPU       = "NGPU"
	EnvLogRank    = "LOG_RANK"
)

// Options configures the commands the driver launches.
type Options struct {
	// TrainScript launches one training run.
	TrainScript string
	// SeedScript creates a seed checkpoint in a dump folder.
	SeedScript string
	// LogRank is exported as LOG_RANK to every training run.
	LogRank string
}

// DefaultOptions returns the stock script locations.
func DefaultOptions() Options {
	return Options{
		TrainScript: "./run_llama_train.sh",
		SeedScript:  "./create_seed_checkpoint.sh",
		LogRank:     "0,1,2,3",
	}
}

// Summary counts what a run touched.
type Summary struct {
	// ConfigsScanned is the number of config files decoded.
	ConfigsScanned int
	// ConfigsSelected is the number flagged for integration testing.
	ConfigsSelected int
	// Flavors is the number of flavors that completed.
	Flavors int
	// Invocations is the number of training runs launched.
	Invocations int
	// SeedCheckpoints is the number of seed checkpoint runs launched.
	SeedCheckpoints int
}

// Driver runs integration test flavors against training configs.
type Driver struct {
	runner   exec.CommandRunner
	registry flavors.Registry
	opts     Options
	out      io.Writer
	logger   *zap.Logger
	recorder Recorder
	summary  Summary
}

// Option customizes a Driver.
type Option func(*Driver)

// WithOutput sets where banners and captured process output are written.
func WithOutput(w io.Writer) Option {
	return func(d *Driver) {
		d.out = w
	}
}

// WithLogger sets the structured logger.
func WithLogger(lg *zap.Logger) Option {
	return func(d *Driver) {
		if lg != nil {
			d.logger = lg
		}
	}
}

// WithRecorder sets the invocation recorder.
func WithRecorder(r Recorder) Option {
	return func(d *Driver) {
		if r != nil {
			d.recorder = r
		}
	}
}

// New creates a Driver. Output is discarded and nothing is logged or
// recorded unless the matching options are given.
func New(runner exec.CommandRunner, registry flavors.Registry, opts Options, options ...Option) *Driver {
	defaults := DefaultOptions()
	if opts.TrainScript == "" {
		opts.TrainScript = defaults.TrainScript
	}
	if opts.SeedScript == "" {
		opts.SeedScript = defaults.SeedScript
	}
	if opts.LogRank == "" {
		opts.LogRank = defaults.LogRank
	}

	d := &Driver{
		runner:   runner,
		registry: registry,
		opts:     opts,
		out:      io.Discard,
		logger:   zap.NewNop(),
		recorder: NopRecorder{},
	}
	for _, o := range options {
		o(d)
	}
	return d
}

// Summary returns the counters accumulated so far.
func (d *Driver) Summary() Summary {
	return d.summary
}

// DiscoverAndRun runs every registered flavor of every flagged config file in
// configDir. It stops at the first error.
func (d *Driver) DiscoverAndRun(ctx context.Context, configDir string) error {
	paths, err := trainconfig.Discover(configDir)
	if err != nil {
		return err
	}
	d.logger.Info("discovered training configs", zap.String("config-dir", configDir), zap.Int("count", len(paths)))

	for _, path := range paths {
		if err := d.RunFile(ctx, path); err != nil {
			return err
		}
	}

	d.logger.Info("integration tests passed",
		zap.Int("configs", d.summary.ConfigsSelected),
		zap.Int("flavors", d.summary.Flavors),
		zap.Int("invocations", d.summary.Invocations),
	)
	return nil
}

// DiscoverAndRun runs the built-in flavors against the configs in configDir,
// dumping every run under outputDir.
func DiscoverAndRun(ctx context.Context, runner exec.CommandRunner, configDir, outputDir string, options ...Option) error {
	return New(runner, flavors.Builtin(outputDir), DefaultOptions(), options...).DiscoverAndRun(ctx, configDir)
}

// RunFile runs the flavors registered for one config file, if the file is
// flagged for integration testing.
func (d *Driver) RunFile(ctx context.Context, path string) error {
	cfg, err := trainconfig.Load(path)
	if err != nil {
		return err
	}
	d.summary.ConfigsScanned++

	name := filepath.Base(path)
	if !cfg.Job.UseForIntegrationTest {
		d.logger.Debug("skipping config not used for integration tests", zap.String("config", name))
		return nil
	}
	d.summary.ConfigsSelected++

	defs := d.registry.Lookup(name)
	if len(defs) == 0 {
		d.logger.Warn("config is flagged for integration tests but has no flavors", zap.String("config", name))
		return nil
	}

	for _, def := range defs {
		if err := d.RunFlavor(ctx, path, def); err != nil {
			return err
		}
	}
	return nil
}

// step is one override group turned into processes.
type step struct {
	seed  *exec.Command
	train exec.Command
}

// RunFlavor runs every override group of def against the config file.
// All groups are validated before the first process starts.
func (d *Driver) RunFlavor(ctx context.Context, configPath string, def flavors.OverrideDefinition) error {
	steps, err := d.plan(configPath, def)
	if err != nil {
		return err
	}

	lg := d.logger.With(zap.String("config", filepath.Base(configPath)), zap.String("flavor", def.Description))
	for i, s := range steps {
		cmdline := s.train.String()
		fmt.Fprintf(d.out, "=====Integration test, flavor : %s, command : %s=====\n", def.Description, cmdline)

		if s.seed != nil {
			fmt.Fprintln(d.out, "Creating seed checkpoint")
			res, err := d.launch(ctx, configPath, def, i, state.KindSeed, *s.seed)
			fmt.Fprintln(d.out, string(res.Output))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// A failed seed run does not stop the flavor; the training run
			// that needs the checkpoint fails instead.
			if err != nil || !res.Success() {
				lg.Warn("seed checkpoint creation failed",
					zap.Int("group", i), zap.Int("exit-code", res.ExitCode), zap.Error(err))
			}
		}

		lg.Info("launching training run", zap.Int("group", i), zap.Int("ngpu", def.NGPU))
		res, err := d.launch(ctx, configPath, def, i, state.KindTrain, s.train)
		fmt.Fprintln(d.out, string(res.Output))
		if err != nil || !res.Success() {
			lg.Error("training run failed", zap.Int("group", i), zap.Int("exit-code", res.ExitCode), zap.Error(err))
			return &TestFailedError{
				Flavor:   def.Description,
				Command:  cmdline,
				ExitCode: res.ExitCode,
				Output:   res.Output,
				Err:      err,
			}
		}
	}

	d.summary.Flavors++
	return nil
}

// plan builds the commands for every group of def without running anything.
func (d *Driver) plan(configPath string, def flavors.OverrideDefinition) ([]step, error) {
	groups := def.Groups()
	steps := make([]step, 0, len(groups))

	for i, group := range groups {
		args, err := flavors.Args(group)
		if err != nil {
			return nil, &PreconditionError{Flavor: def.Description, Group: i, Err: err}
		}

		s := step{
			train: exec.Command{
				Name: d.opts.TrainScript,
				Args: args,
				Env: map[string]string{
					EnvConfigFile: configPath,
					EnvNGPU:       strconv.Itoa(def.NGPU),
					EnvLogRank:    d.opts.LogRank,
				},
			},
		}

		if def.RequiresSeedCheckpoint {
			folder, ok := flavors.DumpFolder(group)
			if !ok {
				return nil, &PreconditionError{Flavor: def.Description, Group: i, Err: ErrMissingDumpFolder}
			}
			s.seed = &exec.Command{
				Name: d.opts.SeedScript,
				Args: []string{flavors.DumpFolderFlag, folder},
				Env:  map[string]string{EnvConfigFile: configPath},
			}
		}
		steps = append(steps, s)
	}
	return steps, nil
}

// launch runs one process and records it.
func (d *Driver) launch(ctx context.Context, configPath string, def flavors.OverrideDefinition, group int, kind state.InvocationKind, cmd exec.Command) (exec.Result, error) {
	if kind == state.KindSeed {
		d.summary.SeedCheckpoints++
	} else {
		d.summary.Invocations++
	}

	start := time.Now()
	res, err := d.runner.Run(ctx, cmd)
	if err != nil && res.ExitCode == 0 {
		res.ExitCode = -1
	}

	rerr := d.recorder.Record(&state.Invocation{
		ConfigFile: filepath.Base(configPath),
		Flavor:     def.Description,
		GroupIndex: group,
		Kind:       kind,
		Command:    cmd.String(),
		ExitCode:   res.ExitCode,
		Duration:   time.Since(start),
		StartedAt:  start,
	})
	if rerr != nil {
		d.logger.Warn("failed to record invocation", zap.Error(rerr))
	}
	return res, err
}
