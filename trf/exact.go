// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trf

import (
	"math"

	"github.com/cpmech/lsqtrf/operator"
	"github.com/cpmech/lsqtrf/trustregion"
	"gonum.org/v1/gonum/mat"
)

// exactSubproblem assembles the augmented system [J; diag(sqrt(diag_h))]
// and [f; 0], factorizes it with a thin SVD, and delegates to
// trustregion.SolveLSQTrustRegion for the damped Gauss-Newton step. alpha
// is the Levenberg-Marquardt parameter carried between outer iterations as
// a warm start; the returned value replaces it.
type exactSubproblem struct {
	n, m  int
	uf    []float64
	s     []float64
	v     *mat.Dense
	alpha float64
}

// buildExactSubproblem factorizes the augmented Jacobian once per outer
// iteration; the resulting artifacts are reused across every inner trial.
func buildExactSubproblem(J operator.Operator, diagH, f []float64, alpha float64) *exactSubproblem {
	m, n := J.Dims()
	dense, ok := J.(operator.Denser)
	if !ok {
		panic("trf: exact subproblem requires a Denser operator")
	}
	Jd := dense.ToDense()

	augmented := mat.NewDense(m+n, n, nil)
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			augmented.Set(i, j, Jd.At(i, j))
		}
	}
	for i := 0; i < n; i++ {
		augmented.Set(m+i, i, sqrtNonNeg(diagH[i]))
	}

	fAug := make([]float64, m+n)
	copy(fAug, f)

	var svd mat.SVD
	if !svd.Factorize(augmented, mat.SVDThin) {
		panic("trf: SVD factorization of the augmented Jacobian failed")
	}
	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	values := svd.Values(nil)

	uf := make([]float64, n)
	uv := mat.NewVecDense(n, uf)
	uv.MulVec(u.T(), mat.NewVecDense(m+n, fAug))

	return &exactSubproblem{n: n, m: m, uf: append([]float64(nil), uv.RawVector().Data...), s: values, v: &v, alpha: alpha}
}

// step solves the current trust-region radius's subproblem and updates
// alpha for the next warm start.
func (sp *exactSubproblem) step(delta float64) (pH []float64) {
	p, alpha, _ := trustregion.SolveLSQTrustRegion(sp.n, sp.m, sp.uf, sp.s, sp.v, delta, sp.alpha)
	sp.alpha = alpha
	return p
}

// scaleAlpha rescales the warm-started Levenberg-Marquardt parameter after
// a trust-region radius change.
func (sp *exactSubproblem) scaleAlpha(factor float64) {
	sp.alpha *= factor
}

// currentAlpha returns the warm-start value to carry into the next outer
// iteration's subproblem.
func (sp *exactSubproblem) currentAlpha() float64 {
	return sp.alpha
}

func sqrtNonNeg(x float64) float64 {
	if x < 0 {
		return 0
	}
	return math.Sqrt(x)
}
