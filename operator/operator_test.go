// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package operator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

func TestDenseMatVecRMatVec(t *testing.T) {
	a := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	op := NewDense(a)
	m, n := op.Dims()
	assert.Equal(t, 2, m)
	assert.Equal(t, 3, n)

	x := []float64{1, 1, 1}
	dst := make([]float64, 2)
	op.MatVec(dst, x)
	assert.InDeltaSlice(t, []float64{6, 15}, dst, 1e-12)

	y := []float64{1, 1}
	rdst := make([]float64, 3)
	op.RMatVec(rdst, y)
	assert.InDeltaSlice(t, []float64{5, 7, 9}, rdst, 1e-12)
}

func TestDenseAdjointIdentity(t *testing.T) {
	a := mat.NewDense(3, 2, []float64{1, 2, 3, 4, 5, 6})
	op := NewDense(a)
	x := []float64{2, -1}
	y := []float64{1, 0, -2}
	ax := make([]float64, 3)
	aty := make([]float64, 2)
	op.MatVec(ax, x)
	op.RMatVec(aty, y)

	var lhs, rhs float64
	for i := range ax {
		lhs += ax[i] * y[i]
	}
	for i := range aty {
		rhs += aty[i] * x[i]
	}
	assert.InDelta(t, lhs, rhs, 1e-10)
}

func TestCSRMatchesDense(t *testing.T) {
	// [[1 0 2] [0 3 0]]
	csr := NewCSR(2, 3, []float64{1, 2, 3}, []int{0, 2, 1}, []int{0, 2, 3})
	dense := NewDense(mat.NewDense(2, 3, []float64{1, 0, 2, 0, 3, 0}))

	x := []float64{1, -1, 2}
	dstCSR := make([]float64, 2)
	dstDense := make([]float64, 2)
	csr.MatVec(dstCSR, x)
	dense.MatVec(dstDense, x)
	assert.InDeltaSlice(t, dstDense, dstCSR, 1e-12)

	y := []float64{2, -3}
	rCSR := make([]float64, 3)
	rDense := make([]float64, 3)
	csr.RMatVec(rCSR, y)
	dense.RMatVec(rDense, y)
	assert.InDeltaSlice(t, rDense, rCSR, 1e-12)
}

func TestCSRScaleColumnsAndSparseMarker(t *testing.T) {
	csr := NewCSR(2, 2, []float64{1, 1}, []int{0, 1}, []int{0, 1, 2})
	assert.True(t, csr.SparseJacobian())
	csr.ScaleColumns([]float64{2, 3})
	assert.InDeltaSlice(t, []float64{2, 3}, csr.Data, 1e-12)
}

func TestColumnNormsFallsBackForLinear(t *testing.T) {
	lin := &Linear{
		M: 2, N: 2,
		MatVecFn:  func(dst, x []float64) { dst[0] = x[0]; dst[1] = 2 * x[1] },
		RMatVecFn: func(dst, y []float64) { dst[0] = y[0]; dst[1] = 2 * y[1] },
	}
	norms := ColumnNorms(lin)
	assert.InDeltaSlice(t, []float64{1, 2}, norms, 1e-12)
	assert.False(t, IsSparse(lin))
}
