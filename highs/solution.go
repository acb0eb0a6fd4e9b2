package highs

// Solution contains the results from solving an optimization model.
type Solution struct {
	// Status indicates the outcome of the solve.
	Status ModelStatus

	// ColValues contains the primal solution values for each column (variable).
	ColValues []float64

	// ColDuals contains the reduced costs of each column.
	ColDuals []float64

	// RowValues contains the activity of each row (constraint).
	RowValues []float64

	// RowDuals contains the dual value of each row.
	RowDuals []float64

	// Objective is the value of the objective function at the solution.
	Objective float64
}

// IsOptimal returns true if the solution is optimal.
func (s *Solution) IsOptimal() bool {
	return s.Status.IsOptimal()
}

// IsInfeasible returns true if the model is infeasible.
func (s *Solution) IsInfeasible() bool {
	return s.Status == ModelStatusInfeasible ||
		s.Status == ModelStatusUnboundedOrInfeasible
}

// RowDual returns the dual value of a row by index.
// Returns 0 if the index is out of range.
func (s *Solution) RowDual(index int) float64 {
	if index < 0 || index >= len(s.RowDuals) {
		return 0
	}
	return s.RowDuals[index]
}
