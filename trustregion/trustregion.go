// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package trustregion implements the one-dimensional and two-dimensional
// trust-region subproblem solvers that the exact and large-scale TRF
// subproblems reduce to: the 1-D ball/line intersection, the SVD-based
// secular-equation Newton iteration, and the 2-D subspace quartic.
package trustregion

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// IntersectTrustRegion finds the two roots t-, t+ (t- <= t+) of
// ||x+t*s||^2 = Delta^2, i.e. where the ray x+t*s crosses the ball of
// radius Delta. x is assumed to already lie strictly inside the ball. The
// quadratic is solved with the numerically stable form from "Numerical
// Recipes" that avoids cancellation between the two roots.
func IntersectTrustRegion(x, s []float64, delta float64) (tMinus, tPlus float64) {
	a := floats.Dot(s, s)
	b := floats.Dot(x, s)
	c := floats.Dot(x, x) - delta*delta
	d := math.Sqrt(b*b - a*c)

	q := -(b + math.Copysign(d, b))
	t1 := q / a
	t2 := c / q
	if t1 <= t2 {
		return t1, t2
	}
	return t2, t1
}

const maxSecularIter = 10

// SolveLSQTrustRegion finds p minimizing ||U*diag(s)*V^T*p + f||^2 subject
// to ||p|| <= delta, given the thin SVD factors (uf = U^T*f, the singular
// values s, and V) of the augmented Jacobian. It performs the classical
// Levenberg-Marquardt secular-equation Newton iteration on ||p(alpha)|| =
// delta, warm-started from alpha0 (the previous outer iteration's damping
// parameter), and returns the updated alpha for the next warm start.
func SolveLSQTrustRegion(n, m int, uf []float64, s []float64, v *mat.Dense, delta, alpha0 float64) (p []float64, alpha float64, iters int) {
	const eps = 2.220446049250313e-16

	suf := make([]float64, len(s))
	for i := range s {
		suf[i] = s[i] * uf[i]
	}

	fullRank := false
	if m >= n {
		threshold := eps * float64(m) * s[0]
		fullRank = s[len(s)-1] > threshold
	}

	if fullRank {
		q := make([]float64, len(s))
		for i := range s {
			q[i] = uf[i] / s[i]
		}
		p = vDot(v, q, n)
		for i := range p {
			p[i] = -p[i]
		}
		if floats.Norm(p, 2) <= delta {
			return p, 0, 0
		}
	}

	phiAndDerivative := func(alpha float64) (phi, phiPrime float64) {
		var sumSq float64
		denom := make([]float64, len(s))
		for i := range s {
			denom[i] = s[i]*s[i] + alpha
			sumSq += (suf[i] / denom[i]) * (suf[i] / denom[i])
		}
		pNorm := math.Sqrt(sumSq)
		phi = pNorm - delta
		var cubeSum float64
		for i := range s {
			cubeSum += (suf[i] * suf[i]) / (denom[i] * denom[i] * denom[i])
		}
		phiPrime = -cubeSum / pNorm
		return phi, phiPrime
	}

	alphaUpper := floats.Norm(suf, 2) / delta
	var alphaLower float64
	if fullRank {
		phi0, phiPrime0 := phiAndDerivative(0)
		alphaLower = -phi0 / phiPrime0
	}

	if alpha0 <= 0 {
		alpha = math.Max(0.001*alphaUpper, math.Sqrt(alphaLower*alphaUpper))
	} else {
		alpha = alpha0
	}

	it := 0
	for ; it < maxSecularIter; it++ {
		if alpha < alphaLower || alpha > alphaUpper {
			alpha = math.Max(0.001*alphaUpper, math.Sqrt(alphaLower*alphaUpper))
		}
		phi, phiPrime := phiAndDerivative(alpha)
		if phi < 0 {
			alphaUpper = alpha
		}
		ratio := phi / phiPrime
		alphaLower = math.Max(alphaLower, alpha-ratio)
		alpha -= (phi + delta) * ratio / delta
		if math.Abs(phi) < 0.01*delta {
			break
		}
	}

	q := make([]float64, len(s))
	for i := range s {
		q[i] = suf[i] / (s[i]*s[i] + alpha)
	}
	p = vDot(v, q, n)
	for i := range p {
		p[i] = -p[i]
	}
	pn := floats.Norm(p, 2)
	if pn > 0 {
		floats.Scale(delta/pn, p)
	}
	return p, alpha, it + 1
}

// vDot computes V*q where V is n-by-k (k=len(q)).
func vDot(v *mat.Dense, q []float64, n int) []float64 {
	k := len(q)
	qv := mat.NewVecDense(k, q)
	out := mat.NewVecDense(n, nil)
	out.MulVec(v, qv)
	return append([]float64(nil), out.RawVector().Data...)
}

// SolveTrustRegion2D minimizes the quadratic 0.5*p^T*B*p + g^T*p over the
// disk ||p|| <= delta in two dimensions. It first tries the unconstrained
// Cholesky solution; if that lies inside the disk it is the global
// minimizer (info=true). Otherwise the minimizer lies on the boundary and
// is found by reducing the problem to a quartic in tan(theta/2) via the
// trigonometric parametrization p = delta*(2t/(1+t^2), (1-t^2)/(1+t^2)),
// whose real roots are recovered as the eigenvalues of the quartic's
// companion matrix.
func SolveTrustRegion2D(b *mat.Dense, g []float64, delta float64) (p []float64, info bool) {
	var chol mat.Cholesky
	if ok := chol.Factorize(mat.NewSymDense(2, []float64{b.At(0, 0), b.At(0, 1), b.At(1, 0), b.At(1, 1)})); ok {
		var x mat.VecDense
		if err := chol.SolveVecTo(&x, mat.NewVecDense(2, []float64{-g[0], -g[1]})); err == nil {
			cand := []float64{x.AtVec(0), x.AtVec(1)}
			if cand[0]*cand[0]+cand[1]*cand[1] <= delta*delta {
				return cand, true
			}
		}
	}

	a := b.At(0, 0) * delta * delta
	bb := b.At(0, 1) * delta * delta
	c := b.At(1, 1) * delta * delta
	d := g[0] * delta
	f := g[1] * delta

	coeffs := []float64{-bb + d, 2 * (a - c + f), 6 * bb, 2*(-a+c+f), -bb - d}
	roots := realQuarticRoots(coeffs)

	bestValue := math.Inf(1)
	var best []float64
	for _, t := range roots {
		denom := 1 + t*t
		cand := []float64{delta * 2 * t / denom, delta * (1 - t*t) / denom}
		Bp := []float64{
			b.At(0, 0)*cand[0] + b.At(0, 1)*cand[1],
			b.At(1, 0)*cand[0] + b.At(1, 1)*cand[1],
		}
		value := 0.5*(cand[0]*Bp[0]+cand[1]*Bp[1]) + g[0]*cand[0] + g[1]*cand[1]
		if value < bestValue {
			bestValue = value
			best = cand
		}
	}
	if best == nil {
		// Degenerate (no real root): fall back to the steepest-descent
		// direction scaled to the boundary.
		gn := floats.Norm(g, 2)
		if gn == 0 {
			return []float64{0, 0}, false
		}
		return []float64{-delta * g[0] / gn, -delta * g[1] / gn}, false
	}
	return best, false
}

// realQuarticRoots returns the real roots of coeffs[0]*t^4 + coeffs[1]*t^3 +
// coeffs[2]*t^2 + coeffs[3]*t + coeffs[4], found as the eigenvalues of the
// polynomial's companion matrix.
func realQuarticRoots(coeffs []float64) []float64 {
	lead := coeffs[0]
	if lead == 0 {
		return cubicFallback(coeffs[1:])
	}
	n := len(coeffs) - 1
	companion := mat.NewDense(n, n, nil)
	for i := 0; i < n-1; i++ {
		companion.Set(i+1, i, 1)
	}
	for i := 0; i < n; i++ {
		companion.Set(i, n-1, -coeffs[n-i]/lead)
	}

	var eig mat.Eigen
	if !eig.Factorize(companion, mat.EigenRight) {
		return nil
	}
	values := eig.Values(nil)
	roots := make([]float64, 0, n)
	for _, z := range values {
		if math.Abs(imag(z)) < 1e-9*(1+math.Abs(real(z))) {
			roots = append(roots, real(z))
		}
	}
	return roots
}

// cubicFallback handles the degenerate case where the quartic's leading
// coefficient vanishes, reducing to a cubic (or lower) companion matrix.
func cubicFallback(coeffs []float64) []float64 {
	if len(coeffs) < 2 {
		return nil
	}
	if coeffs[0] == 0 {
		return cubicFallback(coeffs[1:])
	}
	return realQuarticRoots(coeffs)
}
