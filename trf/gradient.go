// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trf

import (
	"github.com/cpmech/lsqtrf/bounds"
	"github.com/cpmech/lsqtrf/operator"
	"gonum.org/v1/gonum/floats"
)

// findGradientStep returns the constrained Cauchy step c_h, the minimizer
// of the quadratic model along -g_h within both the trust region and the
// box.
func findGradientStep(x []float64, JH operator.Operator, diagH, gH, d []float64, delta float64, lb, ub []float64, theta float64) []float64 {
	n := len(gH)
	negGD := make([]float64, n)
	for i := 0; i < n; i++ {
		negGD[i] = -gH[i] * d[i]
	}
	toBound, _ := bounds.StepSizeToBound(x, negGD, lb, ub)
	toBound *= theta

	gNorm := floats.Norm(gH, 2)
	toTR := delta / gNorm
	gStride := toBound
	if toTR < gStride {
		gStride = toTR
	}

	negG := make([]float64, n)
	for i := range gH {
		negG[i] = -gH[i]
	}
	a, b := build1DQuadratic(JH, diagH, gH, negG, nil)
	gStride, _ = minimizeQuadratic(a, b, 0, gStride)

	cH := make([]float64, n)
	for i := 0; i < n; i++ {
		cH[i] = -gStride * gH[i]
	}
	return cH
}
