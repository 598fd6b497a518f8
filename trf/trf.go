// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package trf implements the Trust Region Reflective algorithm for
// bound-constrained nonlinear least squares: minimize 0.5*||f(x)||^2
// subject to lb <= x <= ub. It follows the same scaled-variable,
// reflected/Cauchy-step, Levenberg-Marquardt-secular-equation design as
// scipy.optimize.least_squares' "trf" method, built on gonum for the
// dense linear algebra and on the sibling lsmr/trustregion/bounds
// packages for the pieces the original treats as external collaborators.
package trf

import (
	"fmt"
	"log"
	"math"

	"github.com/cpmech/lsqtrf/bounds"
	"github.com/cpmech/lsqtrf/operator"
	"gonum.org/v1/gonum/floats"
)

// Func evaluates the residual vector at x.
type Func func(x []float64) []float64

// JacFunc evaluates the Jacobian operator at x, given the residual f
// already computed at that point (so an analytic Jacobian routine can
// reuse intermediate results from the residual evaluation if it wants to).
type JacFunc func(x, f []float64) operator.Operator

const epsMach = 2.220446049250313e-16

var sqrtEPS = math.Sqrt(epsMach)

// Solve runs the trust region reflective iteration from x0 within [lb, ub]
// until one of FTol, XTol, GTol is satisfied or MaxNFev residual
// evaluations have been spent.
func Solve(fun Func, jac JacFunc, x0, lb, ub []float64, opts *Options) (*Result, error) {
	n := len(x0)
	if len(lb) != n || len(ub) != n {
		return nil, fmt.Errorf("trf: len(lb)=%d, len(ub)=%d must both equal len(x0)=%d", len(lb), len(ub), n)
	}
	for i := 0; i < n; i++ {
		if lb[i] > ub[i] {
			return nil, fmt.Errorf("trf: lb[%d]=%g > ub[%d]=%g", i, lb[i], i, ub[i])
		}
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	maxNFev := opts.MaxNFev
	if maxNFev <= 0 {
		maxNFev = 100 * n
	}
	warnf := opts.Warnf
	if warnf == nil {
		warnf = func(format string, args ...interface{}) { log.Printf(format, args...) }
	}

	x := bounds.MakeStrictlyFeasible(x0, lb, ub, 1e-10)
	f := fun(x)
	nfev := 1
	J := jac(x, f)
	njev := 1

	sparse := !isDenser(J)
	solver := opts.TRSolver
	if solver == TRAuto {
		if sparse {
			solver = TRLSMR
		} else {
			solver = TRExact
		}
	} else if solver == TRExact && sparse {
		dense, ok := J.(operator.Denser)
		if !ok {
			return nil, fmt.Errorf("trf: tr_solver=exact requires a Denser operator, got %T with no dense representation", J)
		}
		warnf("trf: tr_solver=exact forced on a sparse Jacobian; densifying every iteration is wasteful, consider tr_solver=lsmr")
		J = operator.NewDense(dense.ToDense())
	}

	scaleFixed, scaleIsJac := resolveScaling(opts.Scaling, n)
	var scale []float64
	if scaleIsJac {
		scale = operator.ColumnNorms(J)
		fixupZeroScale(scale)
	} else {
		scale = append([]float64(nil), scaleFixed...)
	}

	cost := 0.5 * floats.Dot(f, f)

	g := make([]float64, n)
	J.RMatVec(g, f)

	v, jv := bounds.ScalingVector(x, g, lb, ub)
	d0 := make([]float64, n)
	for i := 0; i < n; i++ {
		d0[i] = x0[i] * scale[i] / math.Sqrt(v[i])
	}
	delta := floats.Norm(d0, 2)
	if delta == 0 {
		delta = 1
	}

	lsmrOpts := opts.LSMR
	if lsmrOpts == nil {
		lsmrOpts = DefaultLSMROptions()
	}

	st := &solverState{
		fun: fun, jac: jac,
		lb: lb, ub: ub,
		x: x, f: f, cost: cost,
		J: J, g: g, v: v, jv: jv,
		scale: scale, scaleIsJac: scaleIsJac,
		delta: delta,
		nfev:  nfev, njev: njev,
		maxNFev: maxNFev,
		ftol: opts.FTol, xtol: opts.XTol, gtol: opts.GTol,
		trSolver: solver,
		lsmr:     lsmrOpts,
		onIter:   opts.OnIteration,
	}
	return st.run()
}

func isDenser(J operator.Operator) bool {
	_, ok := J.(operator.Denser)
	return ok && !operator.IsSparse(J)
}

func resolveScaling(scaling interface{}, n int) (fixed []float64, isJac bool) {
	switch s := scaling.(type) {
	case nil:
		return nil, true
	case JacScaling:
		return nil, true
	case []float64:
		if len(s) != n {
			panic(fmt.Errorf("trf: Scaling has length %d, want %d", len(s), n))
		}
		for i, v := range s {
			if v <= 0 {
				panic(fmt.Errorf("trf: Scaling[%d]=%g must be strictly positive", i, v))
			}
		}
		return s, false
	default:
		panic(fmt.Errorf("trf: Options.Scaling must be nil, JacScaling{} or []float64, got %T", scaling))
	}
}

func fixupZeroScale(scale []float64) {
	for i, v := range scale {
		if v == 0 {
			scale[i] = 1
		}
	}
}
