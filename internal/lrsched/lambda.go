package lrsched

import (
	"errors"

	"github.com/ShayCichocki/titantest/internal/trainconfig"
)

// ParamGroup is a set of parameters sharing one learning rate.
type ParamGroup struct {
	Name string
	LR   float64
}

// Optimizer exposes the parameter groups whose learning rates a scheduler
// adjusts.
type Optimizer interface {
	ParamGroups() []*ParamGroup
}

// SimpleOptimizer is an Optimizer holding plain parameter groups.
type SimpleOptimizer struct {
	Groups []*ParamGroup
}

// NewSimpleOptimizer returns an optimizer with a single group at lr.
func NewSimpleOptimizer(lr float64) *SimpleOptimizer {
	return &SimpleOptimizer{Groups: []*ParamGroup{{Name: "default", LR: lr}}}
}

// ParamGroups implements Optimizer.
func (o *SimpleOptimizer) ParamGroups() []*ParamGroup {
	return o.Groups
}

// LambdaLR sets each group's learning rate to its initial value times
// lambda(step). Construction applies lambda(0); each Step advances by one.
//
// LambdaLR is not safe for concurrent use.
type LambdaLR struct {
	opt     Optimizer
	lambda  func(step int) float64
	baseLRs []float64
	step    int
}

// NewLambdaLR captures the optimizer's current learning rates as base rates
// and applies lambda(0).
func NewLambdaLR(opt Optimizer, lambda func(step int) float64) (*LambdaLR, error) {
	if opt == nil {
		return nil, errors.New("optimizer is required")
	}
	if lambda == nil {
		return nil, errors.New("lambda is required")
	}

	groups := opt.ParamGroups()
	base := make([]float64, len(groups))
	for i, g := range groups {
		base[i] = g.LR
	}

	s := &LambdaLR{opt: opt, lambda: lambda, baseLRs: base}
	s.apply()
	return s, nil
}

// Step advances the schedule by one step.
func (s *LambdaLR) Step() {
	s.step++
	s.apply()
}

// LastStep returns the step the current learning rates were computed for.
func (s *LambdaLR) LastStep() int {
	return s.step
}

// LastLR returns the learning rate of every group after the last update.
func (s *LambdaLR) LastLR() []float64 {
	groups := s.opt.ParamGroups()
	lrs := make([]float64, len(groups))
	for i, g := range groups {
		lrs[i] = g.LR
	}
	return lrs
}

// BaseLRs returns the learning rates captured at construction.
func (s *LambdaLR) BaseLRs() []float64 {
	return append([]float64(nil), s.baseLRs...)
}

func (s *LambdaLR) apply() {
	f := s.lambda(s.step)
	for i, g := range s.opt.ParamGroups() {
		if i < len(s.baseLRs) {
			g.LR = s.baseLRs[i] * f
		}
	}
}

// Build returns a linear warmup, linear decay scheduler configured from the
// [training] table of a training config.
func Build(opt Optimizer, training trainconfig.Training) (*LambdaLR, error) {
	sched := New(training.Steps, training.WarmupSteps)
	return NewLambdaLR(opt, sched.Lambda())
}
