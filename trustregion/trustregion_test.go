// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trustregion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestIntersectTrustRegion(t *testing.T) {
	x := []float64{0, 0}
	s := []float64{1, 0}
	tMinus, tPlus := IntersectTrustRegion(x, s, 2)
	assert.InDelta(t, -2, tMinus, 1e-9)
	assert.InDelta(t, 2, tPlus, 1e-9)
}

func TestSolveTrustRegion2DInteriorMinimum(t *testing.T) {
	b := mat.NewDense(2, 2, []float64{2, 0, 0, 2})
	g := []float64{0, 0}
	p, info := SolveTrustRegion2D(b, g, 5)
	assert.True(t, info)
	assert.InDeltaSlice(t, []float64{0, 0}, p, 1e-9)
}

func TestSolveTrustRegion2DBoundaryMinimum(t *testing.T) {
	b := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	g := []float64{-10, 0}
	delta := 1.0
	p, info := SolveTrustRegion2D(b, g, delta)
	assert.False(t, info)
	norm := math.Hypot(p[0], p[1])
	assert.InDelta(t, delta, norm, 1e-6)
	assert.InDelta(t, delta, p[0], 1e-6)
}

func TestSolveTrustRegion2DBoundaryMinimumAsymmetricB(t *testing.T) {
	// B=[[2,1],[1,2]], g=(3,0), Delta=1: the true constrained minimizer is
	// not symmetric about the x-axis, so a sign error in the quartic
	// coefficients (which reflects the candidate across the x-axis) would
	// not be caught by a diagonal-B test.
	b := mat.NewDense(2, 2, []float64{2, 1, 1, 2})
	g := []float64{3, 0}
	delta := 1.0
	p, info := SolveTrustRegion2D(b, g, delta)
	assert.False(t, info)
	assert.InDelta(t, -0.9597, p[0], 1e-3)
	assert.InDelta(t, 0.2808, p[1], 1e-3)
	value := 0.5*(p[0]*(b.At(0, 0)*p[0]+b.At(0, 1)*p[1])+p[1]*(b.At(1, 0)*p[0]+b.At(1, 1)*p[1])) + g[0]*p[0] + g[1]*p[1]
	assert.InDelta(t, -2.148, value, 1e-3)
}

func TestSolveLSQTrustRegionWithinRadius(t *testing.T) {
	// Diagonal augmented system: s = [2, 1], uf chosen so the unconstrained
	// least-squares solution already lies inside the trust region.
	s := []float64{2, 1}
	uf := []float64{2, 1}
	v := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	p, alpha, _ := SolveLSQTrustRegion(2, 2, uf, s, v, 10, 0)
	assert.Equal(t, 0.0, alpha)
	assert.InDeltaSlice(t, []float64{-1, -1}, p, 1e-9)
}

func TestSolveLSQTrustRegionOnBoundary(t *testing.T) {
	s := []float64{2, 1}
	uf := []float64{2, 1}
	v := mat.NewDense(2, 2, []float64{1, 0, 0, 1})
	delta := 0.5
	p, _, _ := SolveLSQTrustRegion(2, 2, uf, s, v, delta, 0)
	norm := math.Hypot(p[0], p[1])
	assert.InDelta(t, delta, norm, 1e-6)
}
