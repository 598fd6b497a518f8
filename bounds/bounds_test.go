// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bounds

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStepSizeToBoundUpper(t *testing.T) {
	x := []float64{0, 0}
	s := []float64{1, 2}
	lb := []float64{-1, -1}
	ub := []float64{1, 1}
	step, hits := StepSizeToBound(x, s, lb, ub)
	assert.InDelta(t, 0.5, step, 1e-12)
	assert.Equal(t, []int{0, 1}, hits)
}

func TestStepSizeToBoundNoConstraint(t *testing.T) {
	x := []float64{0, 0}
	s := []float64{0, 0}
	lb := []float64{-1, -1}
	ub := []float64{1, 1}
	step, hits := StepSizeToBound(x, s, lb, ub)
	assert.True(t, math.IsInf(step, 1))
	assert.Equal(t, []int{0, 0}, hits)
}

func TestScalingVectorSigns(t *testing.T) {
	x := []float64{0, 0}
	g := []float64{-1, 1}
	lb := []float64{-2, -2}
	ub := []float64{2, 2}
	v, jv := ScalingVector(x, g, lb, ub)
	assert.InDelta(t, 2, v[0], 1e-12)
	assert.InDelta(t, 2, v[1], 1e-12)
	assert.Equal(t, 1, jv[0])
	assert.Equal(t, -1, jv[1])
}

func TestScalingVectorUnboundedFallsBackToOne(t *testing.T) {
	x := []float64{0}
	g := []float64{-1}
	lb := []float64{math.Inf(-1)}
	ub := []float64{math.Inf(1)}
	v, jv := ScalingVector(x, g, lb, ub)
	assert.Equal(t, 1.0, v[0])
	assert.Equal(t, 0, jv[0])
}

func TestMakeStrictlyFeasibleNudgesOffBound(t *testing.T) {
	x := []float64{-1, 1, 5}
	lb := []float64{-1, -1, -1}
	ub := []float64{1, 1, 1}
	out := MakeStrictlyFeasible(x, lb, ub, 0.1)
	for i := range out {
		assert.True(t, out[i] > lb[i] && out[i] < ub[i])
	}
}

func TestMakeStrictlyFeasibleFixedEqualBounds(t *testing.T) {
	x := []float64{3}
	lb := []float64{2}
	ub := []float64{2}
	out := MakeStrictlyFeasible(x, lb, ub, 0.1)
	assert.Equal(t, 3.0, out[0])
}

func TestFindActiveConstraints(t *testing.T) {
	x := []float64{-1, 0, 1, 5}
	lb := []float64{-1, -1, -1, 5}
	ub := []float64{1, 1, 1, 5}
	active := FindActiveConstraints(x, lb, ub, 1e-8)
	assert.Equal(t, []int{-1, 0, 1, 1}, active)
}
