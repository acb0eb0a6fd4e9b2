// Package highsknp solves Continuous Quadratic Knapsack Problems with
// HiGHS.
//
// The knapsack is a HiGHS model with one column per item and a single row
// of unit coefficients; the quadratic costs form a diagonal Hessian.
// Changes are forwarded to HiGHS one coefficient or bound at a time, so
// consecutive solves can warm start.
package highsknp

import (
	"slices"

	"github.com/go-logr/logr"

	"github.com/bartolsthoorn/gocqknp/cqknp"
	"github.com/bartolsthoorn/gocqknp/highs"
)

// Solver is a cqknp.Problem backed by a HiGHS instance.
//
// Every Solver holds a reference to the process-wide highs.Environment
// from New until Close, and owns one HiGHS instance for the currently
// loaded problem.
type Solver struct {
	env  *highs.Environment
	lp   *highs.Solver
	opts []highs.SolveOption

	loaded  bool
	n       int
	hessian []float64 // 2·dᵢ, as handed to HiGHS
	v       float64
	sense   cqknp.Sense

	status cqknp.Status
	sol    *highs.Solution

	eps   float64
	alg   string
	log   logr.Logger
	level int
	dump  string

	closed bool
	broken error
}

var _ cqknp.Problem = (*Solver)(nil)

// Option configures a Solver.
type Option func(*Solver)

// WithSolveOptions passes options to every HiGHS instance of the solver.
func WithSolveOptions(opts ...highs.SolveOption) Option {
	return func(s *Solver) {
		s.opts = append(s.opts, opts...)
	}
}

// WithEps sets the initial convergence tolerance, see SetEps.
func WithEps(eps float64) Option {
	return func(s *Solver) {
		s.eps = eps
	}
}

// WithLogger sets the initial log sink and verbosity, see SetLog.
func WithLogger(log logr.Logger, level int) Option {
	return func(s *Solver) {
		s.log = log
		s.level = level
	}
}

// WithModelDump makes every SolveKNP write the HiGHS model to path first.
func WithModelDump(path string) Option {
	return func(s *Solver) {
		s.dump = path
	}
}

// New acquires the HiGHS environment and returns an empty solver.
func New(opts ...Option) (*Solver, error) {
	env, err := highs.Acquire()
	if err != nil {
		return nil, &cqknp.EngineError{Op: "New", Err: err}
	}

	s := &Solver{
		env: env,
		eps: cqknp.DefaultEps,
		log: logr.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.eps <= 0 {
		s.eps = cqknp.DefaultEps
	}
	return s, nil
}

// Close frees the HiGHS instance and releases the environment.
// It is safe to call Close multiple times.
func (s *Solver) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.free()
	if err := s.env.Release(); err != nil {
		return &cqknp.EngineError{Op: "Close", Err: err}
	}
	return nil
}

func (s *Solver) free() {
	if s.lp != nil {
		s.lp.Close()
		s.lp = nil
	}
	s.sol = nil
	s.status = cqknp.NotSolved
}

// check fails once the solver is closed or its engine has failed.
func (s *Solver) check(op string) error {
	if s.closed {
		return cqknp.Usagef(op, "solver is closed")
	}
	if s.broken != nil {
		return &cqknp.EngineError{Op: op, Err: s.broken}
	}
	return nil
}

// fail records an engine failure; the solver refuses every later call.
func (s *Solver) fail(op string, err error) error {
	s.broken = err
	s.log.Error(err, "HiGHS failure", "op", op)
	return &cqknp.EngineError{Op: op, Err: err}
}

func (s *Solver) infinity() float64 {
	return s.env.Infinity()
}

// rowBounds returns the bounds of the knapsack row. HiGHS rejects infinite
// row bounds on the wrong side, so an infinite volume leaves the row free:
// that is exact for LessOrEqual with +Inf, and every other infinite volume
// is out of reach, which SolveKNP decides without HiGHS.
func (s *Solver) rowBounds() (lower, upper float64) {
	inf := s.infinity()
	v := s.volume()
	switch {
	case cqknp.IsPosInf(v), cqknp.IsNegInf(v):
		return -inf, inf
	case s.sense == cqknp.Equality:
		return v, v
	default:
		return -inf, v
	}
}

// volume returns the volume as HiGHS sees it: values beyond the HiGHS
// infinity are infinite.
func (s *Solver) volume() float64 {
	inf := s.infinity()
	return cqknp.FromEngine(cqknp.ToEngine(s.v, inf), inf)
}

// outOfReach reports whether no point can meet an infinite volume.
func (s *Solver) outOfReach() bool {
	v := s.volume()
	return cqknp.IsNegInf(v) || s.sense == cqknp.Equality && cqknp.IsPosInf(v)
}

// LoadSet replaces the problem. The previous HiGHS instance is freed and a
// new one receives the whole model.
func (s *Solver) LoadSet(n int, c, d, a, b []float64, v float64, sense cqknp.Sense) error {
	if err := s.check("LoadSet"); err != nil {
		return err
	}
	data, err := cqknp.NewData(n, c, d, a, b, v, sense)
	if err != nil {
		return err
	}

	s.free()
	s.loaded = true
	s.n = n
	s.v = data.V
	s.sense = sense
	s.hessian = make([]float64, n)
	for i, q := range data.D {
		s.hessian[i] = 2 * q
	}

	if n == 0 {
		s.log.V(2).Info("loaded empty problem")
		return nil
	}

	lp, err := s.env.NewSolver()
	if err != nil {
		return s.fail("LoadSet", err)
	}
	s.lp = lp

	if err := s.configure(); err != nil {
		return s.fail("LoadSet", err)
	}

	inf := s.infinity()
	lower := make([]float64, n)
	upper := make([]float64, n)
	for i := range lower {
		lower[i] = cqknp.ToEngine(data.A[i], inf)
		upper[i] = cqknp.ToEngine(data.B[i], inf)
	}
	rowLower, rowUpper := s.rowBounds()

	model := highs.Model{
		ColCosts: data.C,
		ColLower: lower,
		ColUpper: upper,
		Hessian:  s.hessian,
	}
	model.AddDenseRow(rowLower, ones(n), rowUpper)
	if err := model.Load(lp); err != nil {
		return s.fail("LoadSet", err)
	}

	s.log.V(2).Info("loaded problem", "items", n, "volume", v, "sense", sense)
	return nil
}

func ones(n int) []float64 {
	row := make([]float64, n)
	for i := range row {
		row[i] = 1
	}
	return row
}

// configure applies output, tolerance and user options to the instance.
func (s *Solver) configure() error {
	opts := []highs.SolveOption{
		highs.WithOutput(s.level >= 3),
		highs.WithFeasibilityTolerance(s.eps),
	}
	if s.alg != "" {
		opts = append(opts, highs.WithStringOption("solver", s.alg))
	}
	opts = append(opts, s.opts...)
	return highs.ApplyOptions(s.lp, opts...)
}

// SetEps sets the HiGHS primal and dual feasibility tolerances.
func (s *Solver) SetEps(eps float64) error {
	if err := s.check("SetEps"); err != nil {
		return err
	}
	if eps <= 0 {
		return cqknp.Usagef("SetEps", "tolerance must be positive, got %g", eps)
	}
	s.eps = eps
	if s.lp == nil {
		return nil
	}
	if err := highs.ApplyOptions(s.lp, highs.WithFeasibilityTolerance(eps)); err != nil {
		// HiGHS rejects out-of-range values without harm to the model
		return cqknp.Usagef("SetEps", "%v", err)
	}
	return nil
}

// SetLog sets the log sink. Level 1 logs objective values, level 2 the
// solution vectors and level 3 also turns on HiGHS's own output.
func (s *Solver) SetLog(log logr.Logger, level int) {
	s.log = log
	s.level = level
	if s.lp != nil && s.broken == nil {
		if err := highs.ApplyOptions(s.lp, highs.WithOutput(level >= 3)); err != nil {
			s.log.Error(err, "setting HiGHS output")
		}
	}
}

// Algorithms lists the values SetAlg accepts.
var Algorithms = []string{"choose", "simplex", "ipm", "pdlp"}

// SetAlg selects the HiGHS algorithm, one of Algorithms. HiGHS honours it
// when no item has a quadratic cost; any other problem goes to its QP
// solver regardless.
func (s *Solver) SetAlg(alg string) error {
	if err := s.check("SetAlg"); err != nil {
		return err
	}
	if !slices.Contains(Algorithms, alg) {
		return cqknp.Usagef("SetAlg", "unknown algorithm %q", alg)
	}
	s.alg = alg
	if s.lp == nil {
		return nil
	}
	if err := highs.ApplyOptions(s.lp, highs.WithStringOption("solver", alg)); err != nil {
		return cqknp.Usagef("SetAlg", "%v", err)
	}
	return nil
}
