// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trf

import (
	"testing"

	"github.com/cpmech/lsqtrf/operator"
	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

// linearResidual builds f(x) = A*x - b with a constant Jacobian A, the
// simplest possible least-squares problem, useful for checking convergence
// to a known interior or boundary optimum.
func linearResidual(a *mat.Dense, b []float64) (Func, JacFunc) {
	fun := func(x []float64) []float64 {
		m, _ := a.Dims()
		f := make([]float64, m)
		av := mat.NewVecDense(m, f)
		av.MulVec(a, mat.NewVecDense(len(x), x))
		for i := range f {
			f[i] -= b[i]
		}
		return f
	}
	jac := func(x, f []float64) operator.Operator {
		return operator.NewDense(a)
	}
	return fun, jac
}

func TestSolveInteriorOptimum(t *testing.T) {
	a := mat.NewDense(1, 1, []float64{1})
	fun, jac := linearResidual(a, []float64{2})
	lb := []float64{-10}
	ub := []float64{10}
	res, err := Solve(fun, jac, []float64{0}, lb, ub, DefaultOptions())
	assert.NoError(t, err)
	assert.InDelta(t, 2, res.X[0], 1e-4)
	assert.Equal(t, 0, res.ActiveMask[0])
}

func TestSolveActiveUpperBound(t *testing.T) {
	a := mat.NewDense(1, 1, []float64{1})
	fun, jac := linearResidual(a, []float64{5})
	lb := []float64{0}
	ub := []float64{3}
	res, err := Solve(fun, jac, []float64{1}, lb, ub, DefaultOptions())
	assert.NoError(t, err)
	assert.InDelta(t, 3, res.X[0], 1e-4)
	assert.Equal(t, 1, res.ActiveMask[0])
}

func rosenbrockResiduals() (Func, JacFunc) {
	fun := func(x []float64) []float64 {
		return []float64{10 * (x[1] - x[0]*x[0]), 1 - x[0]}
	}
	jac := func(x, f []float64) operator.Operator {
		a := mat.NewDense(2, 2, []float64{-20 * x[0], 10, -1, 0})
		return operator.NewDense(a)
	}
	return fun, jac
}

func TestSolveRosenbrockConvergesToKnownMinimum(t *testing.T) {
	fun, jac := rosenbrockResiduals()
	lb := []float64{-5, -5}
	ub := []float64{5, 5}
	res, err := Solve(fun, jac, []float64{-1.2, 1}, lb, ub, DefaultOptions())
	assert.NoError(t, err)
	assert.InDelta(t, 1, res.X[0], 1e-3)
	assert.InDelta(t, 1, res.X[1], 1e-3)
	assert.Less(t, res.Cost, 1e-6)
}

func TestSolveRespectsMaxNFev(t *testing.T) {
	fun, jac := rosenbrockResiduals()
	lb := []float64{-5, -5}
	ub := []float64{5, 5}
	opts := DefaultOptions()
	opts.MaxNFev = 1
	res, err := Solve(fun, jac, []float64{-1.2, 1}, lb, ub, opts)
	assert.NoError(t, err)
	assert.Equal(t, StatusMaxNFev, res.Status)
	assert.LessOrEqual(t, res.NFev, 2)
}

func TestSolveRejectsMismatchedBounds(t *testing.T) {
	fun, jac := rosenbrockResiduals()
	_, err := Solve(fun, jac, []float64{0, 0}, []float64{0}, []float64{1, 1}, DefaultOptions())
	assert.Error(t, err)
}

func TestSolveSparseJacobianUsesLSMRPath(t *testing.T) {
	// Diagonal sparse residual f_i(x) = d_i*x_i - b_i, solvable exactly.
	d := []float64{2, 3, 4}
	bTarget := []float64{4, 9, 8}
	fun := func(x []float64) []float64 {
		f := make([]float64, 3)
		for i := range f {
			f[i] = d[i]*x[i] - bTarget[i]
		}
		return f
	}
	jac := func(x, f []float64) operator.Operator {
		data := append([]float64(nil), d...)
		return operator.NewCSR(3, 3, data, []int{0, 1, 2}, []int{0, 1, 2, 3})
	}
	lb := []float64{-10, -10, -10}
	ub := []float64{10, 10, 10}
	res, err := Solve(fun, jac, []float64{0, 0, 0}, lb, ub, DefaultOptions())
	assert.NoError(t, err)
	assert.InDelta(t, 2, res.X[0], 1e-3)
	assert.InDelta(t, 3, res.X[1], 1e-3)
	assert.InDelta(t, 2, res.X[2], 1e-3)
}

func TestSolveOnIterationCallback(t *testing.T) {
	fun, jac := rosenbrockResiduals()
	lb := []float64{-5, -5}
	ub := []float64{5, 5}
	opts := DefaultOptions()
	var snaps []Snapshot
	opts.OnIteration = func(s Snapshot) { snaps = append(snaps, s) }
	_, err := Solve(fun, jac, []float64{-1.2, 1}, lb, ub, opts)
	assert.NoError(t, err)
	assert.NotEmpty(t, snaps)
	for i := 1; i < len(snaps); i++ {
		assert.True(t, snaps[i].Cost <= snaps[i-1].Cost+1e-9 || !snaps[i].Accepted)
	}
}

func TestStatusStringCoversAllValues(t *testing.T) {
	for s := StatusMaxNFev; s <= StatusConvergedFTolXTol; s++ {
		assert.NotEqual(t, "unknown status", s.String())
	}
	assert.Equal(t, "unknown status", Status(99).String())
}

func TestFromParamsPanicsOnUnknownKey(t *testing.T) {
	assert.Panics(t, func() {
		FromParams(map[string]float64{"bogus": 1})
	})
}

func TestFromParamsAppliesValues(t *testing.T) {
	o := FromParams(map[string]float64{"ftol": 1e-10, "maxNFev": 50, "trSolver": float64(TRLSMR)})
	assert.InDelta(t, 1e-10, o.FTol, 1e-20)
	assert.Equal(t, 50, o.MaxNFev)
	assert.Equal(t, TRLSMR, o.TRSolver)
}

func TestColumnNormsMatchesManualComputation(t *testing.T) {
	a := mat.NewDense(2, 2, []float64{3, 0, 4, 0})
	op := operator.NewDense(a)
	norms := operator.ColumnNorms(op)
	assert.InDelta(t, 5, norms[0], 1e-9)
	assert.InDelta(t, 0, norms[1], 1e-9)
}

func TestMakeStrictlyFeasibleUsedAtEntry(t *testing.T) {
	fun, jac := linearResidual(mat.NewDense(1, 1, []float64{1}), []float64{0})
	lb := []float64{0}
	ub := []float64{1}
	res, err := Solve(fun, jac, []float64{0}, lb, ub, DefaultOptions())
	assert.NoError(t, err)
	assert.True(t, res.X[0] >= 0 && res.X[0] <= 1)
}
