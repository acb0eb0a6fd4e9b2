package highs

import "math"

// Nonzero represents a non-zero entry in a sparse matrix.
// Row and Col are zero-indexed.
type Nonzero struct {
	Row int
	Col int
	Val float64
}

// Model represents a high-level continuous QP model with a diagonal
// Hessian, the shape of every separable quadratic problem.
//
// The model solves problems of the form:
//
//	Minimize:   ColCosts · x + 0.5 * Σ Hessian[i] * x[i]²
//	Subject to: RowLower ≤ A·x ≤ RowUpper
//	And:        ColLower ≤ x ≤ ColUpper
//
// Where A is the constraint matrix specified by ConstMatrix.
type Model struct {
	// ColCosts are the objective function coefficients for each variable.
	ColCosts []float64

	// ColLower are the lower bounds for each variable.
	// If empty, defaults to -∞.
	ColLower []float64

	// ColUpper are the upper bounds for each variable.
	// If empty, defaults to +∞.
	ColUpper []float64

	// RowLower are the lower bounds for each constraint.
	// Use NegInf() for no lower bound.
	RowLower []float64

	// RowUpper are the upper bounds for each constraint.
	// Use Inf() for no upper bound.
	RowUpper []float64

	// ConstMatrix defines the constraint matrix as a list of non-zero entries.
	// Each entry specifies (row, column, value).
	ConstMatrix []Nonzero

	// Hessian is the diagonal of the Hessian matrix. For a term d*x_i^2,
	// set Hessian[i] = 2*d. If empty, the model is an LP.
	Hessian []float64
}

// AddDenseRow adds a constraint to the model using a dense coefficient vector.
// Zero coefficients are automatically filtered out.
//
// Example:
//
//	model.AddDenseRow(1.0, []float64{1.0, 2.0, 0.0, 3.0}, 10.0)
//	// Adds constraint: 1.0 <= x0 + 2*x1 + 3*x3 <= 10.0
func (m *Model) AddDenseRow(lower float64, coeffs []float64, upper float64) {
	row := len(m.RowLower)
	m.RowLower = append(m.RowLower, lower)
	m.RowUpper = append(m.RowUpper, upper)

	for col, val := range coeffs {
		if val != 0.0 {
			m.ConstMatrix = append(m.ConstMatrix, Nonzero{
				Row: row,
				Col: col,
				Val: val,
			})
		}
	}
}

// NumVars returns the number of variables in the model.
func (m *Model) NumVars() int {
	maxCol := -1
	for _, nz := range m.ConstMatrix {
		if nz.Col > maxCol {
			maxCol = nz.Col
		}
	}
	n := maxCol + 1
	for _, l := range []int{len(m.ColCosts), len(m.ColLower), len(m.ColUpper), len(m.Hessian)} {
		if l > n {
			n = l
		}
	}
	return n
}

// NumConstraints returns the number of constraints in the model.
func (m *Model) NumConstraints() int {
	maxRow := -1
	for _, nz := range m.ConstMatrix {
		if nz.Row > maxRow {
			maxRow = nz.Row
		}
	}
	if len(m.RowLower) > maxRow+1 {
		return len(m.RowLower)
	}
	if len(m.RowUpper) > maxRow+1 {
		return len(m.RowUpper)
	}
	return maxRow + 1
}

// Load passes the model to the solver, replacing whatever it held.
func (m *Model) Load(solver *Solver) error {
	// Determine dimensions
	numCol := m.NumVars()
	numRow := m.NumConstraints()

	// Prepare column data with defaults
	colCosts, err := expandSlice(numCol, m.ColCosts, 0.0)
	if err != nil {
		return newErrorMsg("Load", "inconsistent ColCosts length")
	}
	colLower, err := expandSlice(numCol, m.ColLower, math.Inf(-1))
	if err != nil {
		return newErrorMsg("Load", "inconsistent ColLower length")
	}
	colUpper, err := expandSlice(numCol, m.ColUpper, math.Inf(1))
	if err != nil {
		return newErrorMsg("Load", "inconsistent ColUpper length")
	}
	hessian, err := expandSlice(numCol, m.Hessian, 0.0)
	if err != nil {
		return newErrorMsg("Load", "inconsistent Hessian length")
	}

	// Prepare row data with defaults
	rowLower, err := expandSlice(numRow, m.RowLower, math.Inf(-1))
	if err != nil {
		return newErrorMsg("Load", "inconsistent RowLower length")
	}
	rowUpper, err := expandSlice(numRow, m.RowUpper, math.Inf(1))
	if err != nil {
		return newErrorMsg("Load", "inconsistent RowUpper length")
	}

	// Convert constraint matrix to CSR format
	aStart, aIndex, aValue, err := nonzerosToCSR(m.ConstMatrix, numRow)
	if err != nil {
		return err
	}

	return solver.PassModel(
		numCol, numRow,
		colCosts, colLower, colUpper,
		rowLower, rowUpper,
		aStart, aIndex, aValue,
		hessian,
	)
}

// Solve builds and solves the model on a fresh solver of env, returning
// the solution.
//
// Options can be set using SolveOptions:
//
//	solution, err := model.Solve(env,
//		highs.WithTimeLimit(60),
//		highs.WithOutput(false),
//	)
func (m *Model) Solve(env *Environment, opts ...SolveOption) (*Solution, error) {
	solver, err := env.NewSolver()
	if err != nil {
		return nil, err
	}
	defer solver.Close()

	if err := ApplyOptions(solver, opts...); err != nil {
		return nil, err
	}

	if m.NumVars() == 0 {
		return &Solution{Status: ModelStatusOptimal}, nil
	}

	if err := m.Load(solver); err != nil {
		return nil, err
	}

	// Solve
	return solver.Run()
}
