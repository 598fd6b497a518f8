// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trf

import (
	"github.com/cpmech/lsqtrf/lsmr"
	"github.com/cpmech/lsqtrf/operator"
	"github.com/cpmech/lsqtrf/trustregion"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// lsmrSubproblem holds the 2-D reduced model built from an approximate
// Gauss-Newton direction; like exactSubproblem it is rebuilt once per outer
// iteration and reused across every inner trial.
type lsmrSubproblem struct {
	basis *mat.Dense // n x 2 orthonormal basis [g_h | gn_h]
	bS    *mat.Dense // 2 x 2 projected model matrix
	gS    []float64  // length-2 projected gradient
}

// buildLSMRSubproblem regularizes the augmented operator (when
// opts.Regularize, the default), solves it approximately with LSMR to get
// a Gauss-Newton direction gn_h, orthonormalizes {g_h, gn_h} into a 2-D
// basis S via QR, and projects the quadratic model onto that subspace.
func buildLSMRSubproblem(J operator.Operator, diagH, gH, f []float64, delta float64, opts *LSMROptions) *lsmrSubproblem {
	m, n := J.Dims()

	regTerm := 0.0
	if opts.regularize() {
		gValue := minAlongNegGradient(J, diagH, gH, delta)
		regTerm = -gValue / (delta * delta)
	}

	r := make([]float64, n)
	for i := 0; i < n; i++ {
		r[i] = sqrtNonNeg(diagH[i] + regTerm)
	}
	aug := newAugmentedOp(J, r)
	fAug := make([]float64, m+n)
	copy(fAug, f)

	gnH, _ := lsmr.Solve(aug, fAug, opts.toLSMR())

	basisRaw := mat.NewDense(n, 2, nil)
	for i := 0; i < n; i++ {
		basisRaw.Set(i, 0, gH[i])
		basisRaw.Set(i, 1, gnH[i])
	}
	var qr mat.QR
	qr.Factorize(basisRaw)
	var basis mat.Dense
	qr.QTo(&basis)
	basis2 := basis.Slice(0, n, 0, 2)

	JS := mat.NewDense(m, 2, nil)
	for col := 0; col < 2; col++ {
		s := make([]float64, n)
		for i := 0; i < n; i++ {
			s[i] = basis2.At(i, col)
		}
		js := make([]float64, m)
		J.MatVec(js, s)
		for i := 0; i < m; i++ {
			JS.Set(i, col, js[i])
		}
	}

	bS := mat.NewDense(2, 2, nil)
	bS.Mul(JS.T(), JS)
	for a := 0; a < 2; a++ {
		for b := 0; b < 2; b++ {
			var extra float64
			for i := 0; i < n; i++ {
				extra += basis2.At(i, a) * diagH[i] * basis2.At(i, b)
			}
			bS.Set(a, b, bS.At(a, b)+extra)
		}
	}

	gS := make([]float64, 2)
	for col := 0; col < 2; col++ {
		var sum float64
		for i := 0; i < n; i++ {
			sum += basis2.At(i, col) * gH[i]
		}
		gS[col] = sum
	}

	basisDense := mat.NewDense(n, 2, nil)
	basisDense.Copy(basis2)
	return &lsmrSubproblem{basis: basisDense, bS: bS, gS: gS}
}

// step solves the projected 2-D trust-region problem and lifts the result
// back to hat-space.
func (sp *lsmrSubproblem) step(delta float64) (pH []float64) {
	pS, _ := trustregion.SolveTrustRegion2D(sp.bS, sp.gS, delta)
	n, _ := sp.basis.Dims()
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = sp.basis.At(i, 0)*pS[0] + sp.basis.At(i, 1)*pS[1]
	}
	return out
}

// scaleAlpha is a no-op: the 2-D subspace solver carries no
// Levenberg-Marquardt warm start between iterations.
func (sp *lsmrSubproblem) scaleAlpha(factor float64) {}

// currentAlpha always reports 0; lsmr's subproblem ignores it.
func (sp *lsmrSubproblem) currentAlpha() float64 { return 0 }

// minAlongNegGradient returns the minimum of the 1-D quadratic model along
// -g_h restricted to [0, delta/||g_h||], used to build the Levenberg-style
// regularization floor that keeps the LSMR operator from being singular.
func minAlongNegGradient(J operator.Operator, diagH, gH []float64, delta float64) float64 {
	n := len(gH)
	negG := make([]float64, n)
	for i := range gH {
		negG[i] = -gH[i]
	}
	gNorm := floats.Norm(gH, 2)
	if gNorm == 0 {
		return 0
	}
	a, b := build1DQuadratic(J, diagH, gH, negG, nil)
	_, y := minimizeQuadratic(a, b, 0, delta/gNorm)
	return y
}
