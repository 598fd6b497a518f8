// Copyright 2016 The Gosl Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package trf

import "github.com/cpmech/lsqtrf/lsmr"

// TRSolver selects which trust-region subproblem solver drives the outer
// loop.
type TRSolver int

const (
	// TRAuto picks "lsmr" for sparse/operator Jacobians and "exact"
	// otherwise, mirroring scipy's own default.
	TRAuto TRSolver = iota
	TRExact
	TRLSMR
)

// JacScaling is the sentinel scaling value meaning "recompute scale from
// the column norms of J every iteration" (spec's scaling=="jac").
type JacScaling struct{}

// LSMROptions configures the large-scale ("lsmr") trust-region subproblem.
// Regularize defaults to true: without it the augmented LSMR operator can
// be numerically singular near the optimum (spec.md §9).
type LSMROptions struct {
	Regularize bool
	ATol, BTol float64
	MaxIter    int
	Damp       float64
}

// DefaultLSMROptions returns the scipy-matching defaults.
func DefaultLSMROptions() *LSMROptions {
	return &LSMROptions{Regularize: true}
}

func (o *LSMROptions) toLSMR() *lsmr.Options {
	if o == nil {
		return &lsmr.Options{}
	}
	return &lsmr.Options{ATol: o.ATol, BTol: o.BTol, MaxIter: o.MaxIter, Damp: o.Damp}
}

func (o *LSMROptions) regularize() bool {
	return o == nil || o.Regularize
}

// Options bundles every tolerance and configuration knob spec.md §3 lists.
type Options struct {
	FTol, XTol, GTol float64
	MaxNFev          int

	// Scaling is either JacScaling{} or a []float64 of strictly positive
	// per-component scale factors.
	Scaling interface{}

	TRSolver TRSolver
	LSMR     *LSMROptions

	// Warnf receives the solver-mismatch warning (tr_solver=="exact" with a
	// sparse Jacobian); defaults to a log.Printf-backed implementation.
	// See SPEC_FULL.md §7 for why this, rather than a logging framework,
	// is the faithful continuation of the teacher's io.Pf idiom.
	Warnf func(format string, args ...interface{})

	// OnIteration, if non-nil, is called after every accepted or rejected
	// outer iteration with the committed iterate. It is a diagnostics hook
	// only (spec.md §9's "streaming callback API" extension) and never
	// drives control flow.
	OnIteration func(it Snapshot)
}

// Snapshot is the read-only iterate state handed to Options.OnIteration.
type Snapshot struct {
	Iter       int
	X          []float64
	Cost       float64
	Optimality float64
	Delta      float64
	Accepted   bool
}

// DefaultOptions returns the scipy-matching defaults: FTol=XTol=GTol=1e-8,
// MaxNFev computed as 100*n by Solve when left at 0, TRSolver=TRAuto.
func DefaultOptions() *Options {
	return &Options{
		FTol: 1e-8,
		XTol: 1e-8,
		GTol: 1e-8,
	}
}

// FromParams builds Options from a string-keyed map of scalars, in the
// teacher's own NlSolver.Init configuration idiom, for callers migrating
// from a scripting-style configuration surface. Recognized keys: "ftol",
// "xtol", "gtol", "maxNFev", "trSolver" (0=auto,1=exact,2=lsmr),
// "lsmrRegularize" (>0 true).
func FromParams(params map[string]float64) *Options {
	o := DefaultOptions()
	for k, v := range params {
		switch k {
		case "ftol":
			o.FTol = v
		case "xtol":
			o.XTol = v
		case "gtol":
			o.GTol = v
		case "maxNFev":
			o.MaxNFev = int(v)
		case "trSolver":
			o.TRSolver = TRSolver(int(v))
		case "lsmrRegularize":
			if o.LSMR == nil {
				o.LSMR = DefaultLSMROptions()
			}
			o.LSMR.Regularize = v > 0
		default:
			panic("trf: FromParams: unknown parameter " + k)
		}
	}
	return o
}
