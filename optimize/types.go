// Copyright ©2014 The Gonum Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package optimize implements the derivative-free refinement step used
// to polish an EI candidate's continuous coordinates: Powell's method,
// run as a sequence of bounded 1-D line searches.
//
// The vocabulary here (Problem, Settings, Result, Stats) is adapted from
// gonum's own optimize package, trimmed to what a single synchronous
// Powell call needs: the engine runs single-threaded and synchronous per
// suggest call, so the generic Operation/Method/Recorder scheduler
// gonum's optimize package uses to support many different iterative
// algorithms concurrently has no role here — there is exactly one method
// (Powell) invoked exactly once per refinement.
package optimize

import "time"

// Problem describes the optimization problem to be solved: a bounded,
// derivative-free scalar objective.
type Problem struct {
	// Func evaluates the objective function at x. Func must not modify x.
	// Points outside Bounds should not be rejected by Func itself — the
	// Minimize driver applies the out-of-bounds penalty instead.
	Func func(x []float64) float64

	// Bounds gives the per-coordinate [low, high) box the optimizer must
	// stay within; out-of-bounds evaluations return PenaltyValue instead
	// of calling Func, so a penalized objective never has to handle
	// invalid input itself.
	Bounds [][2]float64
}

// Settings configures a Minimize run.
type Settings struct {
	// FuncEvaluations caps the number of calls to Problem.Func.
	FuncEvaluations int

	// PenaltyValue is returned for any candidate outside Bounds instead
	// of calling Func.
	PenaltyValue float64

	// Deadline, if non-zero, is a cooperative cutoff: Minimize checks it
	// before each line search (not inside one) and returns the best
	// point seen so far once it passes.
	Deadline time.Time
}

// Result is the answer of a Minimize run.
type Result struct {
	X     []float64
	F     float64
	Stats Stats
}

// Stats reports how much work a Minimize run did.
type Stats struct {
	FuncEvaluations int
}
