package highsknp

import (
	"github.com/bartolsthoorn/gocqknp/cqknp"
	"github.com/bartolsthoorn/gocqknp/highs"
)

// changed invalidates the last solution after a mutation.
func (s *Solver) changed() {
	s.status = cqknp.NotSolved
	s.sol = nil
}

// positions checks the solver and resolves the addressed items.
func (s *Solver) positions(op string, bufLen int, idx []int, start, stop int) ([]int, error) {
	if err := s.check(op); err != nil {
		return nil, err
	}
	if !s.loaded {
		return nil, cqknp.Usagef(op, "no problem loaded")
	}
	return cqknp.Positions(op, s.n, bufLen, idx, start, stop)
}

// columns reads costs and bounds of the columns in pos from HiGHS. A range
// read is used when the positions are contiguous.
func (s *Solver) columns(pos []int, contiguous bool) (costs, lower, upper []float64, err error) {
	costs = make([]float64, len(pos))
	lower = make([]float64, len(pos))
	upper = make([]float64, len(pos))
	if len(pos) == 0 {
		return costs, lower, upper, nil
	}
	if contiguous {
		err = s.lp.GetColsByRange(pos[0], pos[len(pos)-1], costs, lower, upper)
	} else {
		err = s.lp.GetColsBySet(pos, costs, lower, upper)
	}
	return costs, lower, upper, err
}

// ChgLCosts changes the linear costs of the addressed items.
func (s *Solver) ChgLCosts(vals []float64, idx []int, start, stop int) error {
	pos, err := s.positions("ChgLCosts", len(vals), idx, start, stop)
	if err != nil {
		return err
	}
	for k, i := range pos {
		if err := s.lp.ChangeColCost(i, vals[k]); err != nil {
			return s.fail("ChgLCosts", err)
		}
	}
	s.changed()
	return nil
}

// ChgQCosts changes the quadratic costs of the addressed items. HiGHS has
// no per-entry Hessian update, so the whole diagonal is passed again.
func (s *Solver) ChgQCosts(vals []float64, idx []int, start, stop int) error {
	pos, err := s.positions("ChgQCosts", len(vals), idx, start, stop)
	if err != nil {
		return err
	}
	for k, i := range pos {
		s.hessian[i] = 2 * vals[k]
	}
	if len(pos) > 0 {
		if err := s.lp.PassHessian(s.hessian); err != nil {
			return s.fail("ChgQCosts", err)
		}
	}
	s.changed()
	return nil
}

// ChgLBnds changes the lower bounds of the addressed items.
func (s *Solver) ChgLBnds(vals []float64, idx []int, start, stop int) error {
	return s.chgBounds("ChgLBnds", vals, idx, start, stop, true)
}

// ChgUBnds changes the upper bounds of the addressed items.
func (s *Solver) ChgUBnds(vals []float64, idx []int, start, stop int) error {
	return s.chgBounds("ChgUBnds", vals, idx, start, stop, false)
}

// chgBounds sets one side of each addressed column, keeping the side HiGHS
// already holds for the other.
func (s *Solver) chgBounds(op string, vals []float64, idx []int, start, stop int, lowerSide bool) error {
	pos, err := s.positions(op, len(vals), idx, start, stop)
	if err != nil {
		return err
	}
	_, lower, upper, err := s.columns(pos, idx == nil)
	if err != nil {
		return s.fail(op, err)
	}

	inf := s.infinity()
	for k, i := range pos {
		lo, up := lower[k], upper[k]
		if lowerSide {
			lo = cqknp.ToEngine(vals[k], inf)
		} else {
			up = cqknp.ToEngine(vals[k], inf)
		}
		if err := s.lp.ChangeColBounds(i, lo, up); err != nil {
			return s.fail(op, err)
		}
	}
	s.changed()
	return nil
}

// ChgLCost changes the linear cost of item i.
func (s *Solver) ChgLCost(i int, v float64) error {
	return s.chgOne("ChgLCost", i, v, s.ChgLCosts)
}

// ChgQCost changes the quadratic cost of item i.
func (s *Solver) ChgQCost(i int, v float64) error {
	return s.chgOne("ChgQCost", i, v, s.ChgQCosts)
}

// ChgLBnd changes the lower bound of item i.
func (s *Solver) ChgLBnd(i int, v float64) error {
	return s.chgOne("ChgLBnd", i, v, s.ChgLBnds)
}

// ChgUBnd changes the upper bound of item i.
func (s *Solver) ChgUBnd(i int, v float64) error {
	return s.chgOne("ChgUBnd", i, v, s.ChgUBnds)
}

func (s *Solver) chgOne(op string, i int, v float64, bulk func([]float64, []int, int, int) error) error {
	if err := s.check(op); err != nil {
		return err
	}
	if err := cqknp.CheckItem(op, s.n, i); err != nil {
		return err
	}
	return bulk([]float64{v}, []int{i}, 0, cqknp.End)
}

// ChgVlm changes the knapsack volume.
func (s *Solver) ChgVlm(v float64) error {
	if err := s.check("ChgVlm"); err != nil {
		return err
	}
	if !s.loaded {
		return cqknp.Usagef("ChgVlm", "no problem loaded")
	}
	s.v = cqknp.Canon(v)
	if s.lp != nil {
		lower, upper := s.rowBounds()
		if err := s.lp.ChangeRowBounds(0, lower, upper); err != nil {
			return s.fail("ChgVlm", err)
		}
	}
	s.changed()
	return nil
}

// KNPLCosts reads the linear costs of the addressed items into out.
func (s *Solver) KNPLCosts(out []float64, idx []int, start, stop int) error {
	return s.readColumns("KNPLCosts", out, idx, start, stop, func(c, _, _ float64) float64 {
		return c
	})
}

// KNPLBnds reads the lower bounds of the addressed items into out.
func (s *Solver) KNPLBnds(out []float64, idx []int, start, stop int) error {
	inf := s.infinity()
	return s.readColumns("KNPLBnds", out, idx, start, stop, func(_, lo, _ float64) float64 {
		return cqknp.FromEngine(lo, inf)
	})
}

// KNPUBnds reads the upper bounds of the addressed items into out.
func (s *Solver) KNPUBnds(out []float64, idx []int, start, stop int) error {
	inf := s.infinity()
	return s.readColumns("KNPUBnds", out, idx, start, stop, func(_, _, up float64) float64 {
		return cqknp.FromEngine(up, inf)
	})
}

func (s *Solver) readColumns(op string, out []float64, idx []int, start, stop int, pick func(cost, lower, upper float64) float64) error {
	pos, err := s.positions(op, len(out), idx, start, stop)
	if err != nil {
		return err
	}
	costs, lower, upper, err := s.columns(pos, idx == nil)
	if err != nil {
		return s.fail(op, err)
	}
	for k := range pos {
		out[k] = pick(costs[k], lower[k], upper[k])
	}
	return nil
}

// item reads one value of item i through a range reader.
func (s *Solver) item(op string, i int, read func([]float64, []int, int, int) error) (float64, error) {
	if err := s.check(op); err != nil {
		return 0, err
	}
	if !s.loaded {
		return 0, cqknp.Usagef(op, "no problem loaded")
	}
	if err := cqknp.CheckItem(op, s.n, i); err != nil {
		return 0, err
	}
	out := make([]float64, 1)
	if err := read(out, []int{i}, 0, cqknp.End); err != nil {
		return 0, err
	}
	return out[0], nil
}

// KNPLCost returns the linear cost of item i.
func (s *Solver) KNPLCost(i int) (float64, error) {
	return s.item("KNPLCost", i, s.KNPLCosts)
}

// KNPQCost returns the quadratic cost of item i.
func (s *Solver) KNPQCost(i int) (float64, error) {
	return s.item("KNPQCost", i, s.KNPQCosts)
}

// KNPLBnd returns the lower bound of item i.
func (s *Solver) KNPLBnd(i int) (float64, error) {
	return s.item("KNPLBnd", i, s.KNPLBnds)
}

// KNPUBnd returns the upper bound of item i.
func (s *Solver) KNPUBnd(i int) (float64, error) {
	return s.item("KNPUBnd", i, s.KNPUBnds)
}

// KNPQCosts reads the quadratic costs of the addressed items into out.
func (s *Solver) KNPQCosts(out []float64, idx []int, start, stop int) error {
	pos, err := s.positions("KNPQCosts", len(out), idx, start, stop)
	if err != nil {
		return err
	}
	for k, i := range pos {
		out[k] = 0.5 * s.hessian[i]
	}
	return nil
}

// KNPVlm returns the knapsack volume.
func (s *Solver) KNPVlm() float64 {
	return s.v
}

// KNPSense returns the sense of the knapsack constraint.
func (s *Solver) KNPSense() cqknp.Sense {
	return s.sense
}

// KNPNum returns the number of items.
func (s *Solver) KNPNum() int {
	return s.n
}

// SolveKNP runs HiGHS on the current problem. Engine statuses map to
// cqknp statuses as follows:
//
//	Optimal                          OK
//	Infeasible                       Unfeasible
//	Unbounded                        Unbounded
//	UnboundedOrInfeasible            Unfeasible or Unbounded, decided on the bounds
//	time, iteration or bound limits  Stopped
//	anything else                    Error
func (s *Solver) SolveKNP() (cqknp.Status, error) {
	if err := s.check("SolveKNP"); err != nil {
		return cqknp.Error, err
	}
	if !s.loaded {
		return cqknp.NotSolved, cqknp.Usagef("SolveKNP", "no problem loaded")
	}
	s.changed()

	if s.n == 0 {
		s.status = cqknp.OK
		return s.status, nil
	}
	if s.outOfReach() {
		s.status = cqknp.Unfeasible
		s.log.V(1).Info("no solution", "status", s.status, "volume", s.v)
		return s.status, nil
	}

	if s.dump != "" {
		if err := s.lp.WriteModel(s.dump); err != nil {
			s.log.Error(err, "writing model", "path", s.dump)
		}
	}

	sol, err := s.lp.Run()
	if err != nil {
		s.status = cqknp.Error
		return s.status, s.fail("SolveKNP", err)
	}

	s.sol = sol
	s.status, err = s.mapStatus(sol.Status)
	if err != nil {
		s.status = cqknp.Error
		return s.status, s.fail("SolveKNP", err)
	}

	if s.level >= 1 {
		s.logResult()
	}
	return s.status, nil
}

func (s *Solver) logResult() {
	log := s.log.WithValues("status", s.status, "highsStatus", s.sol.Status)
	if !s.status.HasSolution() {
		log.V(1).Info("no solution")
		return
	}
	log.V(1).Info("solved", "objective", s.sol.Objective)
	if s.level >= 2 {
		log.V(2).Info("solution", "x", s.sol.ColValues, "pi", s.sol.RowDual(0))
	}
}

func (s *Solver) mapStatus(ms highs.ModelStatus) (cqknp.Status, error) {
	switch {
	case ms == highs.ModelStatusOptimal:
		return cqknp.OK, nil
	case ms == highs.ModelStatusInfeasible:
		return cqknp.Unfeasible, nil
	case ms == highs.ModelStatusUnbounded:
		return cqknp.Unbounded, nil
	case ms == highs.ModelStatusUnboundedOrInfeasible:
		feasible, err := s.feasible()
		if err != nil {
			return cqknp.Error, err
		}
		if feasible {
			return cqknp.Unbounded, nil
		}
		return cqknp.Unfeasible, nil
	case ms.IsLimit():
		return cqknp.Stopped, nil
	default:
		return cqknp.Error, nil
	}
}

// feasible rebuilds the box and knapsack data from HiGHS and checks it.
func (s *Solver) feasible() (bool, error) {
	pos := cqknp.Select(s.n, nil, 0, s.n)
	_, lower, upper, err := s.columns(pos, true)
	if err != nil {
		return false, err
	}
	data, err := cqknp.NewData(s.n, nil, nil, s.fromEngine(lower), s.fromEngine(upper), s.v, s.sense)
	if err != nil {
		return false, err
	}
	return data.Feasible(s.eps), nil
}

func (s *Solver) fromEngine(vals []float64) []float64 {
	inf := s.infinity()
	out := make([]float64, len(vals))
	for i, v := range vals {
		out[i] = cqknp.FromEngine(v, inf)
	}
	return out
}

// Status returns the status of the last SolveKNP, NotSolved after any
// change to the problem.
func (s *Solver) Status() cqknp.Status {
	return s.status
}

// KNPGetX returns a copy of the optimal solution.
func (s *Solver) KNPGetX() ([]float64, error) {
	if err := s.solved("KNPGetX"); err != nil {
		return nil, err
	}
	if s.n == 0 {
		return []float64{}, nil
	}
	if len(s.sol.ColValues) != s.n {
		return nil, cqknp.Usagef("KNPGetX", "HiGHS returned no primal values in status %s", s.sol.Status)
	}
	return s.fromEngine(s.sol.ColValues), nil
}

// KNPGetPi returns the multiplier of the knapsack constraint.
func (s *Solver) KNPGetPi() (float64, error) {
	if err := s.solved("KNPGetPi"); err != nil {
		return 0, err
	}
	if s.n == 0 {
		return 0, nil
	}
	return s.sol.RowDual(0), nil
}

// KNPGetFO returns the optimal objective value, +Inf for an infeasible and
// -Inf for an unbounded problem.
func (s *Solver) KNPGetFO() (float64, error) {
	if err := s.check("KNPGetFO"); err != nil {
		return 0, err
	}
	switch s.status {
	case cqknp.OK, cqknp.Stopped:
		if s.n == 0 {
			return 0, nil
		}
		return s.sol.Objective, nil
	case cqknp.Unfeasible:
		return cqknp.Inf, nil
	case cqknp.Unbounded:
		return -cqknp.Inf, nil
	default:
		return 0, cqknp.Usagef("KNPGetFO", "no objective in status %s", s.status)
	}
}

func (s *Solver) solved(op string) error {
	if err := s.check(op); err != nil {
		return err
	}
	if !s.status.HasSolution() {
		return cqknp.Usagef(op, "no solution in status %s", s.status)
	}
	return nil
}
