// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package operator defines the Jacobian representations consumed by the
// trust-region solver: a dense matrix, a sparse matrix in CSR layout, and an
// opaque matvec/rmatvec linear operator. Only the shape and the two products
// are required by the solver; ToDense and ScaleColumns are optional
// capabilities probed for with type assertions.
package operator

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Operator is the minimal contract the solver needs from a Jacobian
// representation: its shape and the two matrix-vector products.
type Operator interface {
	Dims() (m, n int)
	MatVec(dst, x []float64)
	RMatVec(dst, y []float64)
}

// Denser is implemented by operators that can materialize themselves as a
// dense matrix (required by the exact trust-region subproblem).
type Denser interface {
	Operator
	ToDense() *mat.Dense
}

// ColumnScaler is implemented by operators that can scale their columns by a
// vector d in place, without rebuilding the underlying storage.
type ColumnScaler interface {
	Operator
	ScaleColumns(d []float64)
}

// ColumnNormer is implemented by operators that can report the Euclidean
// norm of each column without densifying or probing with unit vectors.
type ColumnNormer interface {
	Operator
	ColumnNorms() []float64
}

// Sparse is implemented by operators whose natural storage is sparse; the
// solver's tr_solver="auto" uses it to prefer lsmr over the exact subsolver.
type Sparse interface {
	Operator
	SparseJacobian() bool
}

// ColumnNorms returns the Euclidean norm of every column of J. Operators
// implementing ColumnNormer are asked directly; everything else is probed
// one unit vector at a time, which costs n matvecs.
func ColumnNorms(J Operator) []float64 {
	if cn, ok := J.(ColumnNormer); ok {
		return cn.ColumnNorms()
	}
	m, n := J.Dims()
	norms := make([]float64, n)
	e := make([]float64, n)
	col := make([]float64, m)
	for j := 0; j < n; j++ {
		e[j] = 1
		J.MatVec(col, e)
		norms[j] = Norm2(col)
		e[j] = 0
	}
	return norms
}

// IsSparse reports whether J identifies itself as sparse (implements Sparse
// and returns true from SparseJacobian).
func IsSparse(J Operator) bool {
	if s, ok := J.(Sparse); ok {
		return s.SparseJacobian()
	}
	return false
}

// Dense wraps a *mat.Dense Jacobian.
type Dense struct {
	A *mat.Dense
}

// NewDense wraps an existing dense matrix.
func NewDense(a *mat.Dense) *Dense {
	return &Dense{A: a}
}

// Dims returns (m, n).
func (o *Dense) Dims() (m, n int) {
	return o.A.Dims()
}

// MatVec computes dst = A*x.
func (o *Dense) MatVec(dst, x []float64) {
	m, _ := o.A.Dims()
	dv := mat.NewVecDense(m, dst)
	dv.MulVec(o.A, mat.NewVecDense(len(x), x))
}

// RMatVec computes dst = A^T*y.
func (o *Dense) RMatVec(dst, y []float64) {
	_, n := o.A.Dims()
	dv := mat.NewVecDense(n, dst)
	dv.MulVec(o.A.T(), mat.NewVecDense(len(y), y))
}

// ToDense returns the underlying matrix unchanged.
func (o *Dense) ToDense() *mat.Dense {
	return o.A
}

// ColumnNorms returns the Euclidean norm of each column of A.
func (o *Dense) ColumnNorms() []float64 {
	m, n := o.A.Dims()
	norms := make([]float64, n)
	for j := 0; j < n; j++ {
		var sum float64
		for i := 0; i < m; i++ {
			v := o.A.At(i, j)
			sum += v * v
		}
		norms[j] = math.Sqrt(sum)
	}
	return norms
}

// ScaleColumns multiplies column j of A by d[j], in place.
func (o *Dense) ScaleColumns(d []float64) {
	m, n := o.A.Dims()
	if len(d) != n {
		panic(fmt.Errorf("operator: ScaleColumns: len(d)=%d != n=%d", len(d), n))
	}
	for j := 0; j < n; j++ {
		for i := 0; i < m; i++ {
			o.A.Set(i, j, o.A.At(i, j)*d[j])
		}
	}
}

// CSR is a Jacobian stored in compressed-sparse-row form: Data[Indptr[i]:
// Indptr[i+1]] are the nonzero values of row i, with column indices in the
// matching slice of Indices. Column scaling multiplies Data in place by
// d[Indices[k]], the scikit-learn recipe referenced in scipy's own trf.py.
type CSR struct {
	M, N    int
	Data    []float64
	Indices []int
	Indptr  []int
}

// NewCSR builds a CSR matrix from raw arrays; no copy is made.
func NewCSR(m, n int, data []float64, indices, indptr []int) *CSR {
	return &CSR{M: m, N: n, Data: data, Indices: indices, Indptr: indptr}
}

// Dims returns (m, n).
func (o *CSR) Dims() (m, n int) {
	return o.M, o.N
}

// MatVec computes dst = A*x.
func (o *CSR) MatVec(dst, x []float64) {
	for i := 0; i < o.M; i++ {
		var sum float64
		for k := o.Indptr[i]; k < o.Indptr[i+1]; k++ {
			sum += o.Data[k] * x[o.Indices[k]]
		}
		dst[i] = sum
	}
}

// RMatVec computes dst = A^T*y.
func (o *CSR) RMatVec(dst, y []float64) {
	for j := 0; j < o.N; j++ {
		dst[j] = 0
	}
	for i := 0; i < o.M; i++ {
		yi := y[i]
		if yi == 0 {
			continue
		}
		for k := o.Indptr[i]; k < o.Indptr[i+1]; k++ {
			dst[o.Indices[k]] += o.Data[k] * yi
		}
	}
}

// ToDense materializes the sparse matrix as a dense one, used only when
// tr_solver="exact" is forced on a sparse Jacobian.
func (o *CSR) ToDense() *mat.Dense {
	a := mat.NewDense(o.M, o.N, nil)
	for i := 0; i < o.M; i++ {
		for k := o.Indptr[i]; k < o.Indptr[i+1]; k++ {
			a.Set(i, o.Indices[k], o.Data[k])
		}
	}
	return a
}

// ScaleColumns multiplies Data in place by d[Indices[k]], never rebuilding
// the sparsity structure.
func (o *CSR) ScaleColumns(d []float64) {
	for k, j := range o.Indices {
		o.Data[k] *= d[j]
	}
}

// ColumnNorms returns the Euclidean norm of each column without
// densifying.
func (o *CSR) ColumnNorms() []float64 {
	sums := make([]float64, o.N)
	for k, j := range o.Indices {
		v := o.Data[k]
		sums[j] += v * v
	}
	for j := range sums {
		sums[j] = math.Sqrt(sums[j])
	}
	return sums
}

// SparseJacobian always reports true: CSR's point is to avoid densifying,
// so tr_solver="auto" should prefer lsmr over the exact subsolver.
func (o *CSR) SparseJacobian() bool {
	return true
}

// Linear wraps a black-box matvec/rmatvec pair with no further structure;
// it implements only Operator, so the solver must fall back to tr_solver
// "lsmr" and the non-in-place column-scaling wrapper (trf's postMulOp) for it.
type Linear struct {
	M, N    int
	MatVecFn  func(dst, x []float64)
	RMatVecFn func(dst, y []float64)
}

// Dims returns (m, n).
func (o *Linear) Dims() (m, n int) {
	return o.M, o.N
}

// MatVec delegates to the user-supplied function.
func (o *Linear) MatVec(dst, x []float64) {
	o.MatVecFn(dst, x)
}

// RMatVec delegates to the user-supplied function.
func (o *Linear) RMatVec(dst, y []float64) {
	o.RMatVecFn(dst, y)
}

// Norm2 returns the Euclidean norm of v; a thin floats.Norm wrapper kept
// here so callers needn't import gonum/floats solely for this.
func Norm2(v []float64) float64 {
	return floats.Norm(v, 2)
}
