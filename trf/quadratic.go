// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trf

import (
	"github.com/cpmech/lsqtrf/operator"
	"gonum.org/v1/gonum/floats"
)

// minimizeQuadratic minimizes y = a*t^2 + b*t (the free term is omitted)
// over t in [lb, ub]. The unconstrained stationary point -b/(2a) is a
// candidate when a != 0 and it falls inside [lb, ub]. Ties among candidates
// are broken by keeping the first (smallest-index) minimizer found.
func minimizeQuadratic(a, b, lb, ub float64) (t, y float64) {
	candidates := make([]float64, 0, 3)
	candidates = append(candidates, lb, ub)
	if a != 0 {
		extremum := -0.5 * b / a
		if lb <= extremum && extremum <= ub {
			candidates = append(candidates, extremum)
		}
	}
	best := 0
	bestY := a*candidates[0]*candidates[0] + b*candidates[0]
	for i := 1; i < len(candidates); i++ {
		v := a*candidates[i]*candidates[i] + b*candidates[i]
		if v < bestY {
			bestY = v
			best = i
		}
	}
	return candidates[best], bestY
}

// build1DQuadratic computes the coefficients (a, b) of the 1-D quadratic
//
//	f(t) = 0.5*(s0+t*s)^T*(J^T*J+diag)*(s0+t*s) + g^T*(s0+t*s)
//
// restricted to the line s0 + t*s. s0 may be nil, meaning the zero vector.
// The free term is never needed by callers and is not returned.
func build1DQuadratic(J operator.Operator, diag, g, s, s0 []float64) (a, b float64) {
	_, n := J.Dims()
	m, _ := J.Dims()
	v := make([]float64, m)
	J.MatVec(v, s)

	var sDiagS float64
	for i := 0; i < n; i++ {
		sDiagS += s[i] * diag[i] * s[i]
	}
	a = 0.5 * (floats.Dot(v, v) + sDiagS)
	b = floats.Dot(g, s)

	if s0 != nil {
		u := make([]float64, m)
		J.MatVec(u, s0)
		var s0DiagS float64
		for i := 0; i < n; i++ {
			s0DiagS += s0[i] * diag[i] * s[i]
		}
		b += floats.Dot(u, v) + s0DiagS
	}
	return a, b
}

// evaluateQuadratic computes, for each row of steps,
//
//	Q(s) = 0.5*(||J*s||^2 + s^T*diag*s) + g^T*s
func evaluateQuadratic(J operator.Operator, diag, g []float64, steps [][]float64) []float64 {
	m, n := J.Dims()
	values := make([]float64, len(steps))
	Js := make([]float64, m)
	for k, s := range steps {
		J.MatVec(Js, s)
		var quad float64
		for i := 0; i < n; i++ {
			quad += diag[i] * s[i] * s[i]
		}
		values[k] = 0.5*(floats.Dot(Js, Js)+quad) + floats.Dot(s, g)
	}
	return values
}
