// Package dualknp is a pure-Go Continuous Quadratic Knapsack solver.
//
// It searches the multiplier of the knapsack row over the breakpoints of
// the separable item problems, which is exact and needs no external
// engine. It is the usual reference engine of an oracle.
package dualknp

import (
	"github.com/go-logr/logr"

	"github.com/bartolsthoorn/gocqknp/cqknp"
)

// Solver is a cqknp.Problem that keeps the problem in memory.
type Solver struct {
	data   *cqknp.Data
	last   result
	status cqknp.Status

	eps    float64
	log    logr.Logger
	level  int
	closed bool
}

var _ cqknp.Problem = (*Solver)(nil)

// New returns an empty solver.
func New() *Solver {
	return &Solver{
		eps: cqknp.DefaultEps,
		log: logr.Discard(),
	}
}

func (s *Solver) check(op string) error {
	if s.closed {
		return cqknp.Usagef(op, "solver is closed")
	}
	return nil
}

func (s *Solver) loaded(op string) error {
	if err := s.check(op); err != nil {
		return err
	}
	if s.data == nil {
		return cqknp.Usagef(op, "no problem loaded")
	}
	return nil
}

func (s *Solver) changed() {
	s.status = cqknp.NotSolved
	s.last = result{}
}

// LoadSet replaces the problem.
func (s *Solver) LoadSet(n int, c, d, a, b []float64, v float64, sense cqknp.Sense) error {
	if err := s.check("LoadSet"); err != nil {
		return err
	}
	data, err := cqknp.NewData(n, c, d, a, b, v, sense)
	if err != nil {
		return err
	}
	s.data = data
	s.changed()
	s.log.V(2).Info("loaded problem", "items", n, "volume", v, "sense", sense)
	return nil
}

// SetEps sets the tolerance of the feasibility checks.
func (s *Solver) SetEps(eps float64) error {
	if err := s.check("SetEps"); err != nil {
		return err
	}
	if eps <= 0 {
		return cqknp.Usagef("SetEps", "tolerance must be positive, got %g", eps)
	}
	s.eps = eps
	return nil
}

// SetLog sets the log sink. Level 1 logs objective values, level 2 and
// above also the solution vectors.
func (s *Solver) SetLog(log logr.Logger, level int) {
	s.log = log
	s.level = level
}

// SolveKNP solves the loaded problem.
func (s *Solver) SolveKNP() (cqknp.Status, error) {
	if err := s.loaded("SolveKNP"); err != nil {
		return cqknp.NotSolved, err
	}

	s.last = solve(s.data, s.eps)
	s.status = s.last.status

	if s.level >= 1 {
		s.logResult()
	}
	return s.status, nil
}

func (s *Solver) logResult() {
	log := s.log.WithValues("status", s.status)
	if !s.status.HasSolution() {
		log.V(1).Info("no solution")
		return
	}
	log.V(1).Info("solved", "objective", s.last.fo)
	if s.level >= 2 {
		log.V(2).Info("solution", "x", s.last.x, "pi", -s.last.lambda)
	}
}

// Status returns the status of the last SolveKNP, NotSolved after any
// change to the problem.
func (s *Solver) Status() cqknp.Status {
	return s.status
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

// KNPGetX returns a copy of the optimal solution.
func (s *Solver) KNPGetX() ([]float64, error) {
	if err := s.solved("KNPGetX"); err != nil {
		return nil, err
	}
	x := make([]float64, len(s.last.x))
	copy(x, s.last.x)
	return x, nil
}

// KNPGetPi returns the multiplier of the knapsack constraint, with the sign
// for which cᵢ + 2dᵢxᵢ = π holds on items inside their bounds.
func (s *Solver) KNPGetPi() (float64, error) {
	if err := s.solved("KNPGetPi"); err != nil {
		return 0, err
	}
	if s.last.lambda == 0 {
		return 0, nil
	}
	return -s.last.lambda, nil
}

// KNPGetFO returns the optimal objective value, +Inf for an infeasible and
// -Inf for an unbounded problem.
func (s *Solver) KNPGetFO() (float64, error) {
	if err := s.check("KNPGetFO"); err != nil {
		return 0, err
	}
	switch s.status {
	case cqknp.OK, cqknp.Stopped:
		return s.last.fo, nil
	case cqknp.Unfeasible:
		return cqknp.Inf, nil
	case cqknp.Unbounded:
		return -cqknp.Inf, nil
	}
	return 0, cqknp.Usagef("KNPGetFO", "no objective in status %s", s.status)
}

// KNPLCosts reads the linear costs of the addressed items into out.
func (s *Solver) KNPLCosts(out []float64, idx []int, start, stop int) error {
	if err := s.loaded("KNPLCosts"); err != nil {
		return err
	}
	return cqknp.Gather("KNPLCosts", s.data.C, out, idx, start, stop)
}

// KNPQCosts reads the quadratic costs of the addressed items into out.
func (s *Solver) KNPQCosts(out []float64, idx []int, start, stop int) error {
	if err := s.loaded("KNPQCosts"); err != nil {
		return err
	}
	return cqknp.Gather("KNPQCosts", s.data.D, out, idx, start, stop)
}

// KNPLBnds reads the lower bounds of the addressed items into out.
func (s *Solver) KNPLBnds(out []float64, idx []int, start, stop int) error {
	if err := s.loaded("KNPLBnds"); err != nil {
		return err
	}
	return cqknp.Gather("KNPLBnds", s.data.A, out, idx, start, stop)
}

// KNPUBnds reads the upper bounds of the addressed items into out.
func (s *Solver) KNPUBnds(out []float64, idx []int, start, stop int) error {
	if err := s.loaded("KNPUBnds"); err != nil {
		return err
	}
	return cqknp.Gather("KNPUBnds", s.data.B, out, idx, start, stop)
}

func (s *Solver) item(op string, src func(*cqknp.Data) []float64, i int) (float64, error) {
	if err := s.loaded(op); err != nil {
		return 0, err
	}
	if err := cqknp.CheckItem(op, s.data.N(), i); err != nil {
		return 0, err
	}
	return src(s.data)[i], nil
}

// KNPLCost returns the linear cost of item i.
func (s *Solver) KNPLCost(i int) (float64, error) {
	return s.item("KNPLCost", linear, i)
}

// KNPQCost returns the quadratic cost of item i.
func (s *Solver) KNPQCost(i int) (float64, error) {
	return s.item("KNPQCost", quadratic, i)
}

// KNPLBnd returns the lower bound of item i.
func (s *Solver) KNPLBnd(i int) (float64, error) {
	return s.item("KNPLBnd", lower, i)
}

// KNPUBnd returns the upper bound of item i.
func (s *Solver) KNPUBnd(i int) (float64, error) {
	return s.item("KNPUBnd", upper, i)
}

// KNPVlm returns the knapsack volume.
func (s *Solver) KNPVlm() float64 {
	if s.data == nil {
		return 0
	}
	return s.data.V
}

// KNPSense returns the sense of the knapsack constraint.
func (s *Solver) KNPSense() cqknp.Sense {
	if s.data == nil {
		return cqknp.Equality
	}
	return s.data.Sense
}

// KNPNum returns the number of items.
func (s *Solver) KNPNum() int {
	if s.data == nil {
		return 0
	}
	return s.data.N()
}

func (s *Solver) scatter(op string, dst func(*cqknp.Data) []float64, vals []float64, idx []int, start, stop int, conv func(float64) float64) error {
	if err := s.loaded(op); err != nil {
		return err
	}
	if err := cqknp.Scatter(op, dst(s.data), vals, idx, start, stop, conv); err != nil {
		return err
	}
	s.changed()
	return nil
}

func linear(d *cqknp.Data) []float64    { return d.C }
func quadratic(d *cqknp.Data) []float64 { return d.D }
func lower(d *cqknp.Data) []float64     { return d.A }
func upper(d *cqknp.Data) []float64     { return d.B }

// ChgLCosts changes the linear costs of the addressed items.
func (s *Solver) ChgLCosts(vals []float64, idx []int, start, stop int) error {
	return s.scatter("ChgLCosts", linear, vals, idx, start, stop, nil)
}

// ChgQCosts changes the quadratic costs of the addressed items.
func (s *Solver) ChgQCosts(vals []float64, idx []int, start, stop int) error {
	return s.scatter("ChgQCosts", quadratic, vals, idx, start, stop, nil)
}

// ChgLBnds changes the lower bounds of the addressed items.
func (s *Solver) ChgLBnds(vals []float64, idx []int, start, stop int) error {
	return s.scatter("ChgLBnds", lower, vals, idx, start, stop, cqknp.Canon)
}

// ChgUBnds changes the upper bounds of the addressed items.
func (s *Solver) ChgUBnds(vals []float64, idx []int, start, stop int) error {
	return s.scatter("ChgUBnds", upper, vals, idx, start, stop, cqknp.Canon)
}

func (s *Solver) chgOne(op string, dst func(*cqknp.Data) []float64, i int, v float64, conv func(float64) float64) error {
	if err := s.loaded(op); err != nil {
		return err
	}
	if err := cqknp.CheckItem(op, s.data.N(), i); err != nil {
		return err
	}
	if conv != nil {
		v = conv(v)
	}
	dst(s.data)[i] = v
	s.changed()
	return nil
}

// ChgLCost changes the linear cost of item i.
func (s *Solver) ChgLCost(i int, v float64) error {
	return s.chgOne("ChgLCost", linear, i, v, nil)
}

// ChgQCost changes the quadratic cost of item i.
func (s *Solver) ChgQCost(i int, v float64) error {
	return s.chgOne("ChgQCost", quadratic, i, v, nil)
}

// ChgLBnd changes the lower bound of item i.
func (s *Solver) ChgLBnd(i int, v float64) error {
	return s.chgOne("ChgLBnd", lower, i, v, cqknp.Canon)
}

// ChgUBnd changes the upper bound of item i.
func (s *Solver) ChgUBnd(i int, v float64) error {
	return s.chgOne("ChgUBnd", upper, i, v, cqknp.Canon)
}

// ChgVlm changes the knapsack volume.
func (s *Solver) ChgVlm(v float64) error {
	if err := s.loaded("ChgVlm"); err != nil {
		return err
	}
	s.data.V = cqknp.Canon(v)
	s.changed()
	return nil
}

// Close marks the solver closed. It is safe to call Close multiple times.
func (s *Solver) Close() error {
	s.closed = true
	s.data = nil
	s.changed()
	return nil
}
