// Package oracle cross-validates two Continuous Quadratic Knapsack engines.
//
// An Oracle is itself a cqknp.Problem. Every mutation goes to both engines;
// SolveKNP and KNPGetFO compare their answers and fail with a
// *cqknp.ConsistencyError when they disagree. All other reads come from the
// reference engine.
//
//	o := oracle.New(dualknp.New(), highsSolver)
//	defer o.Close()
//	if err := o.LoadSet(n, c, d, a, b, v, cqknp.Equality); err != nil { ... }
//	status, err := o.SolveKNP()
//	if errors.Is(err, cqknp.ErrConsistency) { ... }
package oracle

import (
	"errors"
	"math"

	"github.com/go-logr/logr"

	"github.com/bartolsthoorn/gocqknp/cqknp"
)

// RelTol is the relative tolerance on objective values.
const RelTol = 1e-6

// Oracle wraps a reference and a candidate engine and owns both.
type Oracle[R, C cqknp.Problem] struct {
	ref  R
	cand C
	log  logr.Logger
}

var _ cqknp.Problem = (*Oracle[cqknp.Problem, cqknp.Problem])(nil)

// New returns an oracle over ref and cand. Closing the oracle closes both.
func New[R, C cqknp.Problem](ref R, cand C) *Oracle[R, C] {
	return &Oracle[R, C]{
		ref:  ref,
		cand: cand,
		log:  logr.Discard(),
	}
}

// Reference returns the reference engine.
func (o *Oracle[R, C]) Reference() R {
	return o.ref
}

// Candidate returns the candidate engine.
func (o *Oracle[R, C]) Candidate() C {
	return o.cand
}

// both applies fn to the reference, then, if that succeeded, to the
// candidate.
func (o *Oracle[R, C]) both(fn func(cqknp.Problem) error) error {
	if err := fn(o.ref); err != nil {
		return err
	}
	return fn(o.cand)
}

// Agree reports whether two objective values match within RelTol, relative
// to the reference value and never tighter than RelTol in absolute terms.
func Agree(ref, cand float64) bool {
	return math.Abs(ref-cand) < max(math.Abs(ref), 1)*RelTol
}

// LoadSet loads the problem into both engines.
func (o *Oracle[R, C]) LoadSet(n int, c, d, a, b []float64, v float64, sense cqknp.Sense) error {
	return o.both(func(p cqknp.Problem) error {
		return p.LoadSet(n, c, d, a, b, v, sense)
	})
}

// SetEps sets the tolerance of both engines.
func (o *Oracle[R, C]) SetEps(eps float64) error {
	return o.both(func(p cqknp.Problem) error {
		return p.SetEps(eps)
	})
}

// SetLog sets the log sink of both engines. Disagreements are logged at
// level 0 with the oracle's own sink.
func (o *Oracle[R, C]) SetLog(log logr.Logger, level int) {
	o.log = log
	o.ref.SetLog(log.WithName("reference"), level)
	o.cand.SetLog(log.WithName("candidate"), level)
}

// SolveKNP solves with both engines and returns the common status.
func (o *Oracle[R, C]) SolveKNP() (cqknp.Status, error) {
	rs, err := o.ref.SolveKNP()
	if err != nil {
		return rs, err
	}
	cs, err := o.cand.SolveKNP()
	if err != nil {
		return rs, err
	}
	if rs != cs {
		return rs, o.disagree("SolveKNP", rs, cs)
	}
	return rs, nil
}

// KNPGetFO returns the reference objective after checking it against the
// candidate's.
func (o *Oracle[R, C]) KNPGetFO() (float64, error) {
	rf, err := o.ref.KNPGetFO()
	if err != nil {
		return rf, err
	}
	cf, err := o.cand.KNPGetFO()
	if err != nil {
		return rf, err
	}
	if !Agree(rf, cf) {
		return rf, o.disagree("KNPGetFO", rf, cf)
	}
	return rf, nil
}

func (o *Oracle[R, C]) disagree(op string, ref, cand any) error {
	err := &cqknp.ConsistencyError{Op: op, Reference: ref, Candidate: cand}
	o.log.Error(err, "engines disagree", "op", op)
	return err
}

// KNPGetX returns the reference solution.
func (o *Oracle[R, C]) KNPGetX() ([]float64, error) {
	return o.ref.KNPGetX()
}

// KNPGetPi returns the reference multiplier.
func (o *Oracle[R, C]) KNPGetPi() (float64, error) {
	return o.ref.KNPGetPi()
}

// KNPLCosts reads linear costs from the reference.
func (o *Oracle[R, C]) KNPLCosts(out []float64, idx []int, start, stop int) error {
	return o.ref.KNPLCosts(out, idx, start, stop)
}

// KNPQCosts reads quadratic costs from the reference.
func (o *Oracle[R, C]) KNPQCosts(out []float64, idx []int, start, stop int) error {
	return o.ref.KNPQCosts(out, idx, start, stop)
}

// KNPLBnds reads lower bounds from the reference.
func (o *Oracle[R, C]) KNPLBnds(out []float64, idx []int, start, stop int) error {
	return o.ref.KNPLBnds(out, idx, start, stop)
}

// KNPUBnds reads upper bounds from the reference.
func (o *Oracle[R, C]) KNPUBnds(out []float64, idx []int, start, stop int) error {
	return o.ref.KNPUBnds(out, idx, start, stop)
}

// KNPLCost reads the linear cost of item i from the reference.
func (o *Oracle[R, C]) KNPLCost(i int) (float64, error) {
	return o.ref.KNPLCost(i)
}

// KNPQCost reads the quadratic cost of item i from the reference.
func (o *Oracle[R, C]) KNPQCost(i int) (float64, error) {
	return o.ref.KNPQCost(i)
}

// KNPLBnd reads the lower bound of item i from the reference.
func (o *Oracle[R, C]) KNPLBnd(i int) (float64, error) {
	return o.ref.KNPLBnd(i)
}

// KNPUBnd reads the upper bound of item i from the reference.
func (o *Oracle[R, C]) KNPUBnd(i int) (float64, error) {
	return o.ref.KNPUBnd(i)
}

// KNPVlm returns the reference volume.
func (o *Oracle[R, C]) KNPVlm() float64 {
	return o.ref.KNPVlm()
}

// KNPSense returns the reference sense.
func (o *Oracle[R, C]) KNPSense() cqknp.Sense {
	return o.ref.KNPSense()
}

// KNPNum returns the reference item count.
func (o *Oracle[R, C]) KNPNum() int {
	return o.ref.KNPNum()
}

// ChgLCosts changes linear costs in both engines.
func (o *Oracle[R, C]) ChgLCosts(vals []float64, idx []int, start, stop int) error {
	return o.both(func(p cqknp.Problem) error {
		return p.ChgLCosts(vals, idx, start, stop)
	})
}

// ChgQCosts changes quadratic costs in both engines.
func (o *Oracle[R, C]) ChgQCosts(vals []float64, idx []int, start, stop int) error {
	return o.both(func(p cqknp.Problem) error {
		return p.ChgQCosts(vals, idx, start, stop)
	})
}

// ChgLBnds changes lower bounds in both engines.
func (o *Oracle[R, C]) ChgLBnds(vals []float64, idx []int, start, stop int) error {
	return o.both(func(p cqknp.Problem) error {
		return p.ChgLBnds(vals, idx, start, stop)
	})
}

// ChgUBnds changes upper bounds in both engines.
func (o *Oracle[R, C]) ChgUBnds(vals []float64, idx []int, start, stop int) error {
	return o.both(func(p cqknp.Problem) error {
		return p.ChgUBnds(vals, idx, start, stop)
	})
}

// ChgLCost changes a linear cost in both engines.
func (o *Oracle[R, C]) ChgLCost(i int, v float64) error {
	return o.both(func(p cqknp.Problem) error {
		return p.ChgLCost(i, v)
	})
}

// ChgQCost changes a quadratic cost in both engines.
func (o *Oracle[R, C]) ChgQCost(i int, v float64) error {
	return o.both(func(p cqknp.Problem) error {
		return p.ChgQCost(i, v)
	})
}

// ChgLBnd changes a lower bound in both engines.
func (o *Oracle[R, C]) ChgLBnd(i int, v float64) error {
	return o.both(func(p cqknp.Problem) error {
		return p.ChgLBnd(i, v)
	})
}

// ChgUBnd changes an upper bound in both engines.
func (o *Oracle[R, C]) ChgUBnd(i int, v float64) error {
	return o.both(func(p cqknp.Problem) error {
		return p.ChgUBnd(i, v)
	})
}

// ChgVlm changes the volume in both engines.
func (o *Oracle[R, C]) ChgVlm(v float64) error {
	return o.both(func(p cqknp.Problem) error {
		return p.ChgVlm(v)
	})
}

// Close closes the candidate, then the reference, and returns both errors.
func (o *Oracle[R, C]) Close() error {
	return errors.Join(o.cand.Close(), o.ref.Close())
}
