package lrsched

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		total      int
		warmup     int
		wantWarmup int
		wantDecay  int
	}{
		{"regular", 1000, 200, 200, 800},
		{"no decay window", 200, 200, 200, 1},
		{"warmup longer than run", 100, 200, 200, 1},
		{"no warmup", 10, 0, 0, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.total, tt.warmup)
			assert.Equal(t, tt.wantWarmup, s.WarmupSteps)
			assert.Equal(t, tt.wantDecay, s.DecaySteps)
		})
	}
}

func TestFactor(t *testing.T) {
	s := New(1000, 200)

	tests := []struct {
		step int
		want float64
	}{
		{0, 1.0 / 201},
		{99, 100.0 / 201},
		{199, 200.0 / 201},
		{200, 1.0},
		{600, 0.5},
		{1000, 0.0},
		{1400, -0.5},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, s.Factor(tt.step), 1e-12, "step %d", tt.step)
	}
}

func TestFactor_ExactBoundaries(t *testing.T) {
	s := New(1000, 200)
	assert.Equal(t, float64(1)/float64(201), s.Factor(0))
	assert.Equal(t, 1.0, s.Factor(200))
}

func TestFactor_WarmupIsMonotonic(t *testing.T) {
	s := New(50, 10)
	prev := 0.0
	for step := 0; step < s.WarmupSteps; step++ {
		f := s.Factor(step)
		assert.Greater(t, f, prev)
		assert.Less(t, f, 1.0)
		prev = f
	}
	assert.Equal(t, 1.0, s.Factor(s.WarmupSteps))
	prev = 1.0
	for step := s.WarmupSteps + 1; step <= s.WarmupSteps+s.DecaySteps; step++ {
		f := s.Factor(step)
		assert.Less(t, f, prev)
		prev = f
	}
	assert.Equal(t, 0.0, prev)
}

func TestFactor_SingleStepDecay(t *testing.T) {
	s := New(200, 200)
	assert.Equal(t, 1.0, s.Factor(200))
	assert.Equal(t, 0.0, s.Factor(201))
}

func TestDefault_UnconfiguredDecay(t *testing.T) {
	s := Default()
	assert.Equal(t, 200, s.WarmupSteps)
	assert.Equal(t, 0, s.DecaySteps)

	assert.InDelta(t, 200.0/201, s.Factor(199), 1e-12)
	assert.True(t, math.IsNaN(s.Factor(200)))
	assert.True(t, math.IsInf(s.Factor(201), -1))
}

func TestLambda(t *testing.T) {
	s := New(10, 2)
	fn := s.Lambda()
	for step := 0; step < 15; step++ {
		assert.Equal(t, s.Factor(step), fn(step))
	}
}
