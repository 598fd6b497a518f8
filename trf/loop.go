// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trf

import (
	"math"

	"github.com/cpmech/lsqtrf/bounds"
	"github.com/cpmech/lsqtrf/operator"
	"gonum.org/v1/gonum/floats"
)

// subproblem is the common surface the outer loop needs from whichever
// trust-region subsolver is active; it is rebuilt once per outer iteration
// and reused across every inner (radius-shrinking) trial.
type subproblem interface {
	step(delta float64) []float64
	scaleAlpha(factor float64)
	currentAlpha() float64
}

// solverState carries everything the outer iteration touches; it exists so
// run() isn't a single 200-line function with a dozen named returns.
type solverState struct {
	fun Func
	jac JacFunc
	lb, ub []float64

	x    []float64
	f    []float64
	cost float64
	J    operator.Operator
	g    []float64
	v    []float64
	jv   []int

	scale      []float64
	scaleIsJac bool

	delta float64
	alpha float64

	nfev, njev, maxNFev int
	ftol, xtol, gtol    float64

	trSolver TRSolver
	lsmr     *LSMROptions
	onIter   func(Snapshot)
}

// run drives the outer iteration to termination and builds the Result.
func (st *solverState) run() (*Result, error) {
	n := len(st.x)
	status := StatusMaxNFev
	iter := 0

	for {
		gScaled := make([]float64, n)
		for i := 0; i < n; i++ {
			gScaled[i] = st.g[i] * st.v[i]
		}
		gNorm := floats.Norm(gScaled, math.Inf(1))
		if gNorm < st.gtol {
			status = StatusConvergedGTol
			break
		}
		if st.nfev >= st.maxNFev {
			status = StatusMaxNFev
			break
		}

		if st.scaleIsJac {
			fresh := operator.ColumnNorms(st.J)
			fixupZeroScale(fresh)
			for i := range st.scale {
				if fresh[i] > st.scale[i] {
					st.scale[i] = fresh[i]
				}
			}
		}

		d := make([]float64, n)
		diagH := make([]float64, n)
		gH := make([]float64, n)
		for i := 0; i < n; i++ {
			d[i] = math.Sqrt(st.v[i]) / st.scale[i]
			gH[i] = d[i] * st.g[i]
			diagH[i] = st.g[i] * float64(st.jv[i]) / (st.scale[i] * st.scale[i])
		}

		JH := hatJacobian(st.J, d)

		theta := math.Max(0.995, 1-gNorm)

		var sp subproblem
		if st.trSolver == TRExact {
			sp = buildExactSubproblem(JH, diagH, st.f, st.alpha)
		} else {
			sp = buildLSMRSubproblem(JH, diagH, gH, st.f, st.delta, st.lsmr)
		}

		actualReduction := -1.0
		var ftolSatisfied, xtolSatisfied bool
		accepted := false

		for actualReduction <= 0 && st.nfev < st.maxNFev {
			pH := sp.step(st.delta)
			p := make([]float64, n)
			for i := 0; i < n; i++ {
				p[i] = d[i] * pH[i]
			}

			toBound, _ := bounds.StepSizeToBound(st.x, p, st.lb, st.ub)

			var candidates [][]float64
			if toBound >= 1 {
				factor := math.Min(theta*toBound, 1)
				for i := range pH {
					pH[i] *= factor
				}
				candidates = [][]float64{pH}
			} else {
				pCopy := append([]float64(nil), p...)
				pHCopy := append([]float64(nil), pH...)
				pHOut, rHOut := findReflectedStep(st.x, JH, diagH, gH, pCopy, pHCopy, d, st.delta, st.lb, st.ub, theta)
				cH := findGradientStep(st.x, JH, diagH, gH, d, st.delta, st.lb, st.ub, theta)
				candidates = [][]float64{pHOut, rHOut, cH}
			}

			qpValues := evaluateQuadratic(JH, diagH, gH, candidates)
			best := 0
			for k := 1; k < len(qpValues); k++ {
				if qpValues[k] < qpValues[best] {
					best = k
				}
			}
			stepH := candidates[best]
			predictedReduction := -qpValues[best]

			step := make([]float64, n)
			xNew := make([]float64, n)
			for i := 0; i < n; i++ {
				step[i] = d[i] * stepH[i]
				xNew[i] = st.x[i] + step[i]
			}
			xNew = bounds.MakeStrictlyFeasible(xNew, st.lb, st.ub, 0)

			fNew := st.fun(xNew)
			st.nfev++
			costNew := 0.5 * floats.Dot(fNew, fNew)
			actualReduction = st.cost - costNew

			var correction float64
			for i := 0; i < n; i++ {
				correction += stepH[i] * diagH[i] * stepH[i]
			}
			correction *= 0.5

			var ratio float64
			if predictedReduction > 0 {
				ratio = (actualReduction - correction) / predictedReduction
			}

			stepHNorm := floats.Norm(stepH, 2)
			if ratio < 0.25 {
				deltaNew := 0.25 * stepHNorm
				if st.delta > 0 {
					sp.scaleAlpha(st.delta / deltaNew)
				}
				st.delta = deltaNew
			} else if ratio > 0.75 && stepHNorm > 0.95*st.delta {
				st.delta *= 2
				sp.scaleAlpha(0.5)
			}

			ftolSatisfied = math.Abs(actualReduction) < st.ftol*st.cost && ratio > 0.25
			stepNorm := floats.Norm(step, 2)
			xNorm := floats.Norm(st.x, 2)
			xtolSatisfied = stepNorm < st.xtol*math.Max(sqrtEPS, xNorm)

			if actualReduction > 0 {
				st.x = xNew
				st.f = fNew
				st.cost = costNew
				accepted = true
			}

			if ftolSatisfied || xtolSatisfied {
				break
			}
		}

		st.alpha = sp.currentAlpha()

		if accepted {
			st.J = st.jac(st.x, st.f)
			st.njev++
			g := make([]float64, n)
			st.J.RMatVec(g, st.f)
			st.g = g
			st.v, st.jv = bounds.ScalingVector(st.x, st.g, st.lb, st.ub)
		}

		if st.onIter != nil {
			st.onIter(Snapshot{Iter: iter, X: append([]float64(nil), st.x...), Cost: st.cost, Optimality: gNorm, Delta: st.delta, Accepted: accepted})
		}
		iter++

		switch {
		case ftolSatisfied && xtolSatisfied:
			status = StatusConvergedFTolXTol
		case ftolSatisfied:
			status = StatusConvergedFTol
		case xtolSatisfied:
			status = StatusConvergedXTol
		default:
			if st.nfev >= st.maxNFev {
				status = StatusMaxNFev
			} else {
				continue
			}
		}
		break
	}

	gFinal := make([]float64, n)
	st.J.RMatVec(gFinal, st.f)
	gScaled := make([]float64, n)
	for i := 0; i < n; i++ {
		gScaled[i] = gFinal[i] * st.v[i]
	}
	optimality := floats.Norm(gScaled, math.Inf(1))

	return &Result{
		X:          st.x,
		Fun:        st.f,
		Jac:        st.J,
		Cost:       st.cost,
		Optimality: optimality,
		ActiveMask: bounds.FindActiveConstraints(st.x, st.lb, st.ub, st.xtol),
		NFev:       st.nfev,
		NJev:       st.njev,
		Status:     status,
		Iterations: iter,
	}, nil
}
