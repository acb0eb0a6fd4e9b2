package highs

// SolveOption configures the solver behavior.
type SolveOption func(*solveConfig)

type solveConfig struct {
	output         *bool
	timeLimit      *float64
	iterationLimit *int
	feasibilityTol *float64
	threads        *int
	presolve       *string
	extraString    map[string]string
}

func defaultSolveConfig() *solveConfig {
	return &solveConfig{
		extraString: make(map[string]string),
	}
}

// ApplyOptions sets the options on the solver.
func ApplyOptions(s *Solver, opts ...SolveOption) error {
	cfg := defaultSolveConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg.apply(s)
}

func (c *solveConfig) apply(s *Solver) error {
	if c.output != nil {
		if err := s.SetBoolOption("output_flag", *c.output); err != nil {
			return err
		}
	}
	if c.timeLimit != nil {
		if err := s.SetFloatOption("time_limit", *c.timeLimit); err != nil {
			return err
		}
	}
	if c.iterationLimit != nil {
		if err := s.SetIntOption("qp_iteration_limit", *c.iterationLimit); err != nil {
			return err
		}
	}
	if c.feasibilityTol != nil {
		if err := s.SetFloatOption("primal_feasibility_tolerance", *c.feasibilityTol); err != nil {
			return err
		}
		if err := s.SetFloatOption("dual_feasibility_tolerance", *c.feasibilityTol); err != nil {
			return err
		}
	}
	if c.threads != nil {
		if err := s.SetIntOption("threads", *c.threads); err != nil {
			return err
		}
	}
	if c.presolve != nil {
		if err := s.SetStringOption("presolve", *c.presolve); err != nil {
			return err
		}
	}
	for k, v := range c.extraString {
		if err := s.SetStringOption(k, v); err != nil {
			return err
		}
	}
	return nil
}

// WithOutput enables or disables solver output.
func WithOutput(enabled bool) SolveOption {
	return func(c *solveConfig) {
		c.output = &enabled
	}
}

// WithTimeLimit sets the time limit in seconds.
func WithTimeLimit(seconds float64) SolveOption {
	return func(c *solveConfig) {
		c.timeLimit = &seconds
	}
}

// WithIterationLimit caps the iterations of the QP solver.
func WithIterationLimit(n int) SolveOption {
	return func(c *solveConfig) {
		c.iterationLimit = &n
	}
}

// WithFeasibilityTolerance sets both the primal and the dual feasibility
// tolerance.
func WithFeasibilityTolerance(tol float64) SolveOption {
	return func(c *solveConfig) {
		c.feasibilityTol = &tol
	}
}

// WithThreads sets the number of threads to use.
func WithThreads(n int) SolveOption {
	return func(c *solveConfig) {
		c.threads = &n
	}
}

// WithPresolve sets the presolve mode ("off", "choose", "on").
func WithPresolve(mode string) SolveOption {
	return func(c *solveConfig) {
		c.presolve = &mode
	}
}

// WithStringOption sets a custom string option.
func WithStringOption(name, value string) SolveOption {
	return func(c *solveConfig) {
		c.extraString[name] = value
	}
}
