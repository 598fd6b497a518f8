// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trf

import "github.com/cpmech/lsqtrf/operator"

// Status reports why Solve stopped.
type Status int

const (
	StatusMaxNFev           Status = 0
	StatusConvergedGTol     Status = 1
	StatusConvergedFTol     Status = 2
	StatusConvergedXTol     Status = 3
	StatusConvergedFTolXTol Status = 4
)

// String renders a Status for diagnostics.
func (s Status) String() string {
	switch s {
	case StatusMaxNFev:
		return "max_nfev reached"
	case StatusConvergedGTol:
		return "converged (gtol)"
	case StatusConvergedFTol:
		return "converged (ftol)"
	case StatusConvergedXTol:
		return "converged (xtol)"
	case StatusConvergedFTolXTol:
		return "converged (ftol and xtol)"
	default:
		return "unknown status"
	}
}

// Result is the only externally visible value Solve produces.
type Result struct {
	X          []float64
	Fun        []float64
	Jac        operator.Operator
	Cost       float64
	Optimality float64
	ActiveMask []int
	NFev       int
	NJev       int
	Status     Status
	Iterations int
}
