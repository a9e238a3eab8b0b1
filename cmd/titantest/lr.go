package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ShayCichocki/titantest/internal/lrsched"
	"github.com/ShayCichocki/titantest/internal/trainconfig"
)

var (
	lrSteps  int
	lrWarmup int
	lrBase   float64
	lrEvery  int
)

var lrCmd = &cobra.Command{
	Use:   "lr [config.toml]",
	Short: "Print the learning-rate schedule of a training config",
	Long: `Print the linear warmup, linear decay schedule a training run uses.

With a config file, training.steps, training.warmup_steps and optimizer.lr
are read from it. --steps, --warmup and --lr override those values.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLR,
}

func init() {
	lrCmd.Flags().IntVar(&lrSteps, "steps", 0, "Total training steps")
	lrCmd.Flags().IntVar(&lrWarmup, "warmup", -1, "Warmup steps")
	lrCmd.Flags().Float64Var(&lrBase, "lr", 0, "Base learning rate")
	lrCmd.Flags().IntVar(&lrEvery, "every", 0, "Print every Nth step (default: about 20 rows)")
}

func runLR(cmd *cobra.Command, args []string) error {
	job := trainconfig.Default()
	if len(args) == 1 {
		var err error
		if job, err = trainconfig.Load(args[0]); err != nil {
			return err
		}
	}
	if lrSteps > 0 {
		job.Training.Steps = lrSteps
	}
	if lrWarmup >= 0 {
		job.Training.WarmupSteps = lrWarmup
	}
	if lrBase > 0 {
		job.Optimizer.LR = lrBase
	}

	opt := lrsched.NewSimpleOptimizer(job.Optimizer.LR)
	sched, err := lrsched.Build(opt, job.Training)
	if err != nil {
		return err
	}
	shape := lrsched.New(job.Training.Steps, job.Training.WarmupSteps)

	every := lrEvery
	if every <= 0 {
		every = max(1, job.Training.Steps/20)
	}

	var rows [][]string
	for {
		step := sched.LastStep()
		if step%every == 0 || step == shape.WarmupSteps || step == job.Training.Steps {
			rows = append(rows, []string{
				strconv.Itoa(step),
				strconv.FormatFloat(shape.Factor(step), 'f', 6, 64),
				strconv.FormatFloat(sched.LastLR()[0], 'e', 4, 64),
			})
		}
		if step >= job.Training.Steps {
			break
		}
		sched.Step()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s %d  %s %d  %s %d  %s %g\n\n",
		labelStyle.Render("steps"), job.Training.Steps,
		labelStyle.Render("warmup"), shape.WarmupSteps,
		labelStyle.Render("decay"), shape.DecaySteps,
		labelStyle.Render("lr"), job.Optimizer.LR)
	fmt.Fprintln(out, renderTable([]string{"STEP", "FACTOR", "LR"}, rows))
	return nil
}
