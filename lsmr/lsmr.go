// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lsmr implements the LSMR iterative method (Fong & Saunders,
// 2011) for the least-squares problem min ||A*x - b||, given only matvec
// and rmatvec products. It underlies the large-scale ("lsmr") trust-region
// subproblem, which needs an approximate Gauss-Newton direction without
// ever forming A^T*A.
package lsmr

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Operator is the minimal contract LSMR needs from its coefficient matrix.
type Operator interface {
	Dims() (m, n int)
	MatVec(dst, x []float64)
	RMatVec(dst, y []float64)
}

// Options controls the LSMR iteration. Zero-valued fields fall back to the
// defaults scipy.sparse.linalg.lsmr itself uses.
type Options struct {
	// ATol, BTol bound the relative error in A and b respectively that the
	// stopping criteria tolerate. Default 1e-6 each.
	ATol, BTol float64
	// MaxIter caps the number of iterations. Default min(m,n)*10.
	MaxIter int
	// Damp adds Tikhonov regularization damp^2*||x||^2 to the objective.
	Damp float64
}

func (o *Options) withDefaults(m, n int) Options {
	out := Options{ATol: 1e-6, BTol: 1e-6, MaxIter: 10 * minInt(m, n)}
	if o == nil {
		return out
	}
	if o.ATol > 0 {
		out.ATol = o.ATol
	}
	if o.BTol > 0 {
		out.BTol = o.BTol
	}
	if o.MaxIter > 0 {
		out.MaxIter = o.MaxIter
	}
	out.Damp = o.Damp
	return out
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Stats reports diagnostic information about a finished LSMR call.
type Stats struct {
	Iterations int
	Converged  bool
	NormR      float64 // residual norm ||A*x-b|| at termination
	NormAR     float64 // ||A^T*r|| at termination, the normal-equation residual
}

// Solve approximately solves min ||A*x-b||_2 (or the damped variant when
// opts.Damp > 0) using LSMR's Golub-Kahan bidiagonalization recurrence,
// returning the iterate x and diagnostics.
//
// The stopping rule is the simplified two-test form common to production
// LSMR/LSQR ports: stop when the relative residual or the relative
// normal-equation residual falls below tolerance, or MaxIter is reached.
func Solve(a Operator, b []float64, opts *Options) ([]float64, Stats) {
	m, n := a.Dims()
	o := opts.withDefaults(m, n)
	damp := o.Damp

	u := append([]float64(nil), b...)
	beta := floats.Norm(u, 2)
	x := make([]float64, n)

	if beta == 0 {
		return x, Stats{Converged: true}
	}
	floats.Scale(1/beta, u)

	v := make([]float64, n)
	a.RMatVec(v, u)
	alpha := floats.Norm(v, 2)
	if alpha > 0 {
		floats.Scale(1/alpha, v)
	}

	normB := floats.Norm(b, 2)
	normA2 := alpha * alpha

	zetaBar := alpha * beta
	alphaBar := alpha
	rho := 1.0
	rhoBar := 1.0
	cBar := 1.0
	sBar := 0.0

	h := append([]float64(nil), v...)
	hBar := make([]float64, n)

	av := make([]float64, m)
	atu := make([]float64, n)

	it := 0
	converged := false
	normR := beta
	normAR := alpha * beta
	for ; it < o.MaxIter; it++ {
		// Bidiagonalization: extend u.
		a.MatVec(av, v)
		for i := 0; i < m; i++ {
			av[i] -= alpha * u[i]
		}
		beta = floats.Norm(av, 2)
		if beta > 0 {
			for i := 0; i < m; i++ {
				u[i] = av[i] / beta
			}
		}
		normA2 += beta * beta

		// Bidiagonalization: extend v.
		a.RMatVec(atu, u)
		for j := 0; j < n; j++ {
			atu[j] -= beta * v[j]
		}
		alpha = floats.Norm(atu, 2)
		if alpha > 0 {
			for j := 0; j < n; j++ {
				v[j] = atu[j] / alpha
			}
		}
		normA2 += alpha * alpha

		// Eliminate the damping parameter (Tikhonov regularization): combine
		// alphaBar, carried from the previous iteration's rotation below,
		// with damp through its own SymOrtho. rho is untouched here; it
		// still holds the previous iteration's value until the next
		// rotation computes rhoOld/rho below.
		alphaHat := math.Hypot(alphaBar, damp)

		// Rotation Qhat_{k,2k-1}: combine alphaHat and beta.
		rhoOld := rho
		rho = math.Hypot(alphaHat, beta)
		cHat := alphaHat / rho
		sHat := beta / rho
		thetaNew := sHat * alpha
		alphaBar = cHat * alpha

		// Rotation Qtilde_{k-1}: propagate zetaBar into the x update.
		rhoBarOld := rhoBar
		thetaBar := sBar * rho
		rhoTemp := cBar * rho
		rhoBar = math.Hypot(rhoTemp, thetaNew)
		cBar = rhoTemp / rhoBar
		sBar = thetaNew / rhoBar
		zeta := cBar * zetaBar
		zetaBar = -sBar * zetaBar

		// Update the solution and its search directions.
		for j := 0; j < n; j++ {
			hBar[j] = h[j] - (thetaBar*rho/(rhoOld*rhoBarOld))*hBar[j]
			x[j] += (zeta / (rho * rhoBar)) * hBar[j]
			h[j] = v[j] - (thetaNew/rho)*h[j]
		}

		normR = math.Abs(zetaBar)
		normAR = alpha * math.Abs(sHat*zeta)

		if normB > 0 && normR <= o.BTol*normB {
			converged = true
			it++
			break
		}
		normA := math.Sqrt(normA2)
		normX := floats.Norm(x, 2)
		if normA*normX > 0 && normAR <= o.ATol*normA*normR {
			converged = true
			it++
			break
		}
		if alpha == 0 || beta == 0 {
			converged = true
			it++
			break
		}
	}

	return x, Stats{Iterations: it, Converged: converged, NormR: normR, NormAR: normAR}
}
