// Package cqknp defines the contract shared by every solver of the
// Continuous Quadratic Knapsack Problem (CQKnP):
//
//	Minimize:   Σ cᵢxᵢ + dᵢxᵢ²
//	Subject to: Σ xᵢ = V   (or Σ xᵢ ≤ V)
//	And:        aᵢ ≤ xᵢ ≤ bᵢ
//
// A solver is loaded once with LoadSet, changed incrementally with the Chg*
// methods, solved with SolveKNP and queried with the KNP* methods. Engines
// are interchangeable: the HiGHS adapter (package highsknp), the pure-Go
// breakpoint engine (package dualknp) and the cross-checking oracle (package
// oracle) all implement Problem.
//
// # Addressing
//
// Every bulk mutator and read-back takes (idx, start, stop):
//
//	p.ChgLCosts(vals, nil, 2, 5)          // items 2, 3, 4 get vals[0..2]
//	p.ChgLBnds(vals, []int{1, 4, 7}, 0, End) // items 1, 4, 7 get vals[0..2]
//
// See Select for the exact rules.
//
// # Infinity
//
// Unbounded bounds and infinite objective values are written and returned as
// the sentinel Inf (and -Inf). Engines translate it to and from their own
// representation at every boundary.
package cqknp

import "github.com/go-logr/logr"

// Sense is the kind of the knapsack constraint.
type Sense int

const (
	// Equality requires Σ xᵢ = V.
	Equality Sense = iota
	// LessOrEqual requires Σ xᵢ ≤ V.
	LessOrEqual
)

// String returns a human-readable representation of the sense.
func (s Sense) String() string {
	switch s {
	case Equality:
		return "Equality"
	case LessOrEqual:
		return "LessOrEqual"
	default:
		return "Unknown"
	}
}

// Status is the outcome of the last call to SolveKNP.
type Status int

const (
	// NotSolved means the current data has not been solved yet.
	NotSolved Status = iota
	// OK means an optimal solution was found.
	OK
	// Unfeasible means the problem has no feasible solution.
	Unfeasible
	// Unbounded means the objective is unbounded below.
	Unbounded
	// Stopped means the engine hit a numerical, iteration or time limit;
	// the solution is the best one known and may be usable.
	Stopped
	// Error means the engine failed to reach any conclusion.
	Error
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	names := []string{"NotSolved", "OK", "Unfeasible", "Unbounded", "Stopped", "Error"}
	if int(s) >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// HasSolution reports whether a primal solution can be read.
func (s Status) HasSolution() bool {
	return s == OK || s == Stopped
}

// HasObjective reports whether KNPGetFO is defined for the status.
func (s Status) HasObjective() bool {
	return s == OK || s == Stopped || s == Unfeasible || s == Unbounded
}

// Problem is implemented by every CQKnP engine.
//
// Engines are not safe for concurrent use; all calls are synchronous.
type Problem interface {
	// LoadSet replaces all the data of the problem. Nil c and d mean zero
	// costs, nil a and b mean -Inf and +Inf bounds. The slices are copied.
	LoadSet(n int, c, d, a, b []float64, v float64, sense Sense) error

	// SetEps sets the engine's own convergence tolerance.
	SetEps(eps float64) error

	// SetLog sets the diagnostic sink and its verbosity. logr.Discard()
	// disables output.
	SetLog(log logr.Logger, level int)

	// SolveKNP solves the problem with the current data.
	SolveKNP() (Status, error)

	// KNPGetX returns the primal solution; requires OK or Stopped.
	KNPGetX() ([]float64, error)

	// KNPGetPi returns the dual price of the knapsack constraint; requires
	// OK or Stopped.
	KNPGetPi() (float64, error)

	// KNPGetFO returns the objective value: +Inf when Unfeasible, -Inf when
	// Unbounded.
	KNPGetFO() (float64, error)

	KNPLCosts(out []float64, idx []int, start, stop int) error
	KNPQCosts(out []float64, idx []int, start, stop int) error
	KNPLBnds(out []float64, idx []int, start, stop int) error
	KNPUBnds(out []float64, idx []int, start, stop int) error

	// KNPLCost, KNPQCost, KNPLBnd and KNPUBnd read the data of item i.
	KNPLCost(i int) (float64, error)
	KNPQCost(i int) (float64, error)
	KNPLBnd(i int) (float64, error)
	KNPUBnd(i int) (float64, error)

	// KNPVlm returns the knapsack volume.
	KNPVlm() float64
	// KNPSense returns the sense of the knapsack constraint.
	KNPSense() Sense
	// KNPNum returns the number of items.
	KNPNum() int

	ChgLCosts(vals []float64, idx []int, start, stop int) error
	ChgQCosts(vals []float64, idx []int, start, stop int) error
	ChgLBnds(vals []float64, idx []int, start, stop int) error
	ChgUBnds(vals []float64, idx []int, start, stop int) error

	ChgLCost(i int, v float64) error
	ChgQCost(i int, v float64) error
	ChgLBnd(i int, v float64) error
	ChgUBnd(i int, v float64) error

	// ChgVlm changes the knapsack volume.
	ChgVlm(v float64) error

	// Close releases every resource held by the engine.
	Close() error
}
