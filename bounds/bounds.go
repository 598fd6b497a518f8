// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bounds implements the small bound-geometry helpers the trust
// region reflective iteration builds on: how far a step may travel before
// it leaves an open box, the Coleman-Li scaling vector, projection back
// into strict feasibility, and the active-constraint mask used for
// reporting.
package bounds

import "math"

// StepSizeToBound returns the largest t >= 0 such that x + t*s remains
// inside [lb, ub], together with hits[i] set to +1 if coordinate i reaches
// its upper bound at that t, -1 if it reaches its lower bound, and 0
// otherwise. Coordinates with s[i] == 0 never constrain the step. When no
// coordinate constrains the step, t is +Inf.
func StepSizeToBound(x, s, lb, ub []float64) (step float64, hits []int) {
	n := len(x)
	nonZero := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if s[i] != 0 {
			nonZero = append(nonZero, i)
		}
	}
	step = math.Inf(1)
	stepPerCoord := make([]float64, n)
	for i := range stepPerCoord {
		stepPerCoord[i] = math.Inf(1)
	}
	for _, i := range nonZero {
		var t float64
		if s[i] > 0 {
			t = (ub[i] - x[i]) / s[i]
		} else {
			t = (lb[i] - x[i]) / s[i]
		}
		stepPerCoord[i] = t
		if t < step {
			step = t
		}
	}
	hits = make([]int, n)
	if math.IsInf(step, 1) {
		return step, hits
	}
	const tol = 1e-10
	for _, i := range nonZero {
		if stepPerCoord[i] <= step*(1+tol) {
			if s[i] > 0 {
				hits[i] = 1
			} else {
				hits[i] = -1
			}
		}
	}
	return step, hits
}

// ScalingVector computes the Coleman-Li affine scaling vector v and the
// sign mask jv: v[i] = u[i]-x[i] when the antigradient points at a finite
// upper bound, x[i]-l[i] when it points at a finite lower bound, and 1
// otherwise; jv carries the corresponding sign (+1 upper, -1 lower, 0
// neither).
func ScalingVector(x, g, lb, ub []float64) (v []float64, jv []int) {
	n := len(x)
	v = make([]float64, n)
	jv = make([]int, n)
	for i := 0; i < n; i++ {
		if g[i] < 0 && !math.IsInf(ub[i], 1) {
			v[i] = ub[i] - x[i]
			jv[i] = 1
		} else if g[i] > 0 && !math.IsInf(lb[i], -1) {
			v[i] = x[i] - lb[i]
			jv[i] = -1
		} else {
			v[i] = 1
			jv[i] = 0
		}
	}
	return v, jv
}

// MakeStrictlyFeasible projects x into the open box (lb, ub) with relative
// slack rstep: a coordinate closer to a finite bound than
// rstep*max(1, |bound|) (including one on or past it) is moved to that
// distance inside the bound; when the two slacks overlap it is set to the
// midpoint. With rstep == 0 only coordinates on or past a bound move: by
// 1e-10*max(1, |bound|) when the opposite bound is infinite, otherwise by
// 0.5% of the box width, so the result never lands exactly on the bound.
// Coordinates with lb >= ub are left unchanged.
func MakeStrictlyFeasible(x, lb, ub []float64, rstep float64) []float64 {
	n := len(x)
	out := make([]float64, n)
	copy(out, x)
	for i := 0; i < n; i++ {
		lo, hi := lb[i], ub[i]
		if lo >= hi {
			continue
		}
		if rstep == 0 {
			if out[i] <= lo {
				out[i] = nextAfterBound(lo, hi, true)
			} else if out[i] >= hi {
				out[i] = nextAfterBound(hi, lo, false)
			}
			continue
		}
		var loSlack, hiSlack float64
		if !math.IsInf(lo, -1) {
			loSlack = lo + rstep*math.Max(1, math.Abs(lo))
		} else {
			loSlack = math.Inf(-1)
		}
		if !math.IsInf(hi, 1) {
			hiSlack = hi - rstep*math.Max(1, math.Abs(hi))
		} else {
			hiSlack = math.Inf(1)
		}
		if loSlack > hiSlack {
			loSlack = 0.5 * (lo + hi)
			hiSlack = loSlack
		}
		if out[i] < loSlack {
			out[i] = loSlack
		} else if out[i] > hiSlack {
			out[i] = hiSlack
		}
	}
	return out
}

func nextAfterBound(bound, other float64, towardsPositive bool) float64 {
	if math.IsInf(other, 0) {
		if towardsPositive {
			return bound + 1e-10*math.Max(1, math.Abs(bound))
		}
		return bound - 1e-10*math.Max(1, math.Abs(bound))
	}
	return bound + 0.5*(other-bound)*1e-2
}

// FindActiveConstraints reports, for each coordinate, -1 if x sits within
// rtol of its lower bound, +1 if it sits within rtol of its upper bound,
// and 0 otherwise. Unbounded coordinates are always inactive.
func FindActiveConstraints(x, lb, ub []float64, rtol float64) []int {
	n := len(x)
	active := make([]int, n)
	for i := 0; i < n; i++ {
		lo, hi := lb[i], ub[i]
		if lo == hi {
			active[i] = 1
			continue
		}
		if !math.IsInf(lo, -1) {
			if nearlyEqual(x[i], lo, rtol) {
				active[i] = -1
				continue
			}
		}
		if !math.IsInf(hi, 1) {
			if nearlyEqual(x[i], hi, rtol) {
				active[i] = 1
				continue
			}
		}
	}
	return active
}

func nearlyEqual(a, b, rtol float64) bool {
	if rtol <= 0 {
		return a == b
	}
	scale := math.Max(1, math.Max(math.Abs(a), math.Abs(b)))
	return math.Abs(a-b) <= rtol*scale
}
