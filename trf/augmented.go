// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trf

import (
	"github.com/cpmech/lsqtrf/operator"
	"gonum.org/v1/gonum/mat"
)

// hatJacobian builds J*diag(d) for the current outer iteration without
// mutating the committed Jacobian: Dense and CSR are copied and scaled in
// place on the copy, keeping a sparse Jacobian sparse instead of forcing a
// densify-every-iteration path; any other operator falls back to the
// non-materializing postMulOp wrapper.
func hatJacobian(J operator.Operator, d []float64) operator.Operator {
	switch v := J.(type) {
	case *operator.Dense:
		m, n := v.A.Dims()
		cp := mat.NewDense(m, n, nil)
		cp.Copy(v.A)
		scaled := operator.NewDense(cp)
		scaled.ScaleColumns(d)
		return scaled
	case *operator.CSR:
		data := append([]float64(nil), v.Data...)
		cp := operator.NewCSR(v.M, v.N, data, v.Indices, v.Indptr)
		cp.ScaleColumns(d)
		return cp
	default:
		return newPostMulOp(J, d)
	}
}

// augmentedOp wraps an (m,n) operator Jop into an (m+n,n) operator whose
// extra n rows append r ⊙ x. It is used to hand LSMR a never-singular
// regularized system without materializing the augmentation.
type augmentedOp struct {
	jop operator.Operator
	r   []float64 // length n, componentwise sqrt(diag_h + reg_term)
	m   int
	n   int
}

func newAugmentedOp(jop operator.Operator, r []float64) *augmentedOp {
	m, n := jop.Dims()
	return &augmentedOp{jop: jop, r: r, m: m, n: n}
}

// Dims returns (m+n, n).
func (o *augmentedOp) Dims() (m, n int) {
	return o.m + o.n, o.n
}

// MatVec computes dst = [Jop*x ; r ⊙ x].
func (o *augmentedOp) MatVec(dst, x []float64) {
	o.jop.MatVec(dst[:o.m], x)
	for i := 0; i < o.n; i++ {
		dst[o.m+i] = o.r[i] * x[i]
	}
}

// RMatVec computes dst = Jop^T*y[:m] + r ⊙ y[m:].
func (o *augmentedOp) RMatVec(dst, y []float64) {
	o.jop.RMatVec(dst, y[:o.m])
	for i := 0; i < o.n; i++ {
		dst[i] += o.r[i] * y[o.m+i]
	}
}

// postMulOp wraps Jop as Jop*diag(d), used for the black-box operator case
// where columns cannot be scaled in place (operator.ColumnScaler absent).
type postMulOp struct {
	jop operator.Operator
	d   []float64
}

func newPostMulOp(jop operator.Operator, d []float64) *postMulOp {
	return &postMulOp{jop: jop, d: d}
}

// Dims returns the same shape as the wrapped operator.
func (o *postMulOp) Dims() (m, n int) {
	return o.jop.Dims()
}

// MatVec computes dst = Jop*(d ⊙ x).
func (o *postMulOp) MatVec(dst, x []float64) {
	n := len(o.d)
	scaled := make([]float64, n)
	for i := 0; i < n; i++ {
		scaled[i] = o.d[i] * x[i]
	}
	o.jop.MatVec(dst, scaled)
}

// RMatVec computes dst = d ⊙ (Jop^T*y).
func (o *postMulOp) RMatVec(dst, y []float64) {
	o.jop.RMatVec(dst, y)
	for i, di := range o.d {
		dst[i] *= di
	}
}
