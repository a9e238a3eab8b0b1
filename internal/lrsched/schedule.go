// Package lrsched implements learning-rate schedules expressed as
// multiplicative factors over an optimizer's base learning rate.
package lrsched

// LinearWarmupLinearDecay ramps the learning rate up linearly for
// WarmupSteps steps and then decays it linearly over DecaySteps steps.
//
// The zero value is not usable: with DecaySteps == 0 every step past the
// warmup divides by zero. Build schedules with New.
type LinearWarmupLinearDecay struct {
	WarmupSteps int
	DecaySteps  int
}

// New returns the schedule for a run of totalSteps steps whose first
// warmupSteps steps are warmup. The decay window is at least one step.
func New(totalSteps, warmupSteps int) LinearWarmupLinearDecay {
	return LinearWarmupLinearDecay{
		WarmupSteps: warmupSteps,
		DecaySteps:  max(1, totalSteps-warmupSteps),
	}
}

// Default returns the schedule state seen before any run is configured:
// 200 warmup steps and an empty decay window.
func Default() LinearWarmupLinearDecay {
	return LinearWarmupLinearDecay{WarmupSteps: 200}
}

// Factor returns the multiplier for the 0-indexed step.
//
// During warmup the factor is (step+1)/(warmup+1). Afterwards it falls by
// 1/decay per step, reaching zero at warmup+decay. It is not clamped and
// goes negative past the end of the decay window.
func (s LinearWarmupLinearDecay) Factor(step int) float64 {
	if step < s.WarmupSteps {
		return float64(step+1) / float64(s.WarmupSteps+1)
	}

	decay := float64(s.DecaySteps)
	normalized := decay - float64(step-s.WarmupSteps)
	return 1 - (decay-normalized)/decay
}

// Lambda returns Factor as a step callback for LambdaLR.
func (s LinearWarmupLinearDecay) Lambda() func(step int) float64 {
	return s.Factor
}
