// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trf

import (
	"github.com/cpmech/lsqtrf/bounds"
	"github.com/cpmech/lsqtrf/operator"
	"github.com/cpmech/lsqtrf/trustregion"
)

// findReflectedStep corrects a trust-region step p_h that leaves the box at
// x, and when geometrically viable also returns a reflected candidate r_h
// in hat space. It must only be called once p = d⊙p_h has already been
// found to exit [lb,ub]. p is mutated in place to the face-snapped step and
// pH to theta times the face-snapped step, matching the Python reference's
// in-place style; pH is also the returned pHOut.
func findReflectedStep(x []float64, JH operator.Operator, diagH, gH, p, pH, d []float64, delta float64, lb, ub []float64, theta float64) (pHOut, rHOut []float64) {
	pStride, hits := bounds.StepSizeToBound(x, p, lb, ub)

	rH := make([]float64, len(pH))
	copy(rH, pH)
	for i, h := range hits {
		if h != 0 {
			rH[i] = -rH[i]
		}
	}
	r := make([]float64, len(rH))
	for i := range r {
		r[i] = d[i] * rH[i]
	}

	for i := range p {
		p[i] *= pStride
		pH[i] *= pStride
	}
	xOnBound := make([]float64, len(x))
	for i := range x {
		xOnBound[i] = x[i] + p[i]
	}

	_, toTR := trustregion.IntersectTrustRegion(pH, rH, delta)
	toBound, _ := bounds.StepSizeToBound(xOnBound, r, lb, ub)
	toBound *= theta

	rStrideU := toBound
	if toTR < rStrideU {
		rStrideU = toTR
	}

	var rStrideL float64
	if rStrideU > 0 {
		rStrideL = (1 - theta) * pStride / rStrideU
	} else {
		rStrideL = -1
	}

	var reflected bool
	if rStrideL <= rStrideU {
		a, b := build1DQuadratic(JH, diagH, gH, rH, pH)
		rStride, _ := minimizeQuadratic(a, b, rStrideL, rStrideU)
		for i := range rH {
			rH[i] = pH[i] + rH[i]*rStride
		}
		reflected = true
	}

	for i := range pH {
		pH[i] *= theta
	}

	if !reflected {
		return pH, pH
	}
	return pH, rH
}
