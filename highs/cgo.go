//go:build (linux || darwin) && (amd64 || arm64)

// Package highs provides Go bindings for the parts of the HiGHS solver
// used by the knapsack adapter.
//
// HiGHS is a high-performance solver for linear programming (LP),
// mixed-integer programming (MIP), and quadratic programming (QP) problems.
// Only continuous QP models are exposed here, together with the
// incremental primitives (single cost, bound and row changes) that let
// HiGHS warm start between consecutive solves.
//
// The package links against the HiGHS library installed on the system and
// located with pkg-config.
//
// # High-Level API Example
//
// The high-level API uses the Model struct to define optimization problems:
//
//	model := highs.Model{
//		ColCosts: []float64{1.0, 1.0},
//		ColLower: []float64{0.0, 0.0},
//		ColUpper: []float64{10.0, 10.0},
//		Hessian:  []float64{2.0, 2.0},
//	}
//	model.AddDenseRow(1.0, []float64{1.0, 1.0}, 1.0) // x + y = 1
//
//	env, err := highs.Acquire()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer env.Release()
//
//	solution, err := model.Solve(env, highs.WithOutput(false))
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println("Optimal values:", solution.ColValues)
//
// # Low-Level API Example
//
// The low-level API provides direct access to the HiGHS solver:
//
//	env, err := highs.Acquire()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer env.Release()
//
//	solver, err := env.NewSolver()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer solver.Close()
//
//	solver.SetBoolOption("output_flag", false)
//	// ... pass a model, change costs and bounds
//	solution, err := solver.Run()
package highs

/*
#cgo pkg-config: highs

#include <stdlib.h>
#include <stdint.h>
#include "highs_c_api.h"
*/
import "C"
import (
	"fmt"
	"runtime"
	"unsafe"
)

// HighsInt is the integer type used by HiGHS (matches C's HighsInt).
type HighsInt = C.HighsInt

// ----------------------------------------------------------------------------
// Types
// ----------------------------------------------------------------------------

// Status represents the result status of a HiGHS operation.
type Status int

const (
	// StatusError indicates the operation failed with an error.
	StatusError Status = -1
	// StatusOK indicates the operation succeeded.
	StatusOK Status = 0
	// StatusWarning indicates the operation succeeded with warnings.
	StatusWarning Status = 1
)

// String returns a human-readable representation of the status.
func (s Status) String() string {
	switch s {
	case StatusError:
		return "Error"
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "Warning"
	default:
		return "Unknown"
	}
}

// ModelStatus represents the status of a solved model.
type ModelStatus int

const (
	// ModelStatusNotSet indicates the model status has not been set.
	ModelStatusNotSet ModelStatus = iota
	// ModelStatusLoadError indicates an error loading the model.
	ModelStatusLoadError
	// ModelStatusModelError indicates an error in the model.
	ModelStatusModelError
	// ModelStatusPresolveError indicates an error during presolve.
	ModelStatusPresolveError
	// ModelStatusSolveError indicates an error during solve.
	ModelStatusSolveError
	// ModelStatusPostsolveError indicates an error during postsolve.
	ModelStatusPostsolveError
	// ModelStatusModelEmpty indicates the model is empty.
	ModelStatusModelEmpty
	// ModelStatusOptimal indicates an optimal solution was found.
	ModelStatusOptimal
	// ModelStatusInfeasible indicates the model is infeasible.
	ModelStatusInfeasible
	// ModelStatusUnboundedOrInfeasible indicates the model is unbounded or infeasible.
	ModelStatusUnboundedOrInfeasible
	// ModelStatusUnbounded indicates the model is unbounded.
	ModelStatusUnbounded
	// ModelStatusObjectiveBound indicates the objective bound was reached.
	ModelStatusObjectiveBound
	// ModelStatusObjectiveTarget indicates the objective target was reached.
	ModelStatusObjectiveTarget
	// ModelStatusTimeLimit indicates the time limit was reached.
	ModelStatusTimeLimit
	// ModelStatusIterationLimit indicates the iteration limit was reached.
	ModelStatusIterationLimit
	// ModelStatusUnknown indicates an unknown status.
	ModelStatusUnknown
)

// String returns a human-readable representation of the model status.
func (s ModelStatus) String() string {
	names := []string{
		"NotSet", "LoadError", "ModelError", "PresolveError",
		"SolveError", "PostsolveError", "ModelEmpty", "Optimal",
		"Infeasible", "UnboundedOrInfeasible", "Unbounded",
		"ObjectiveBound", "ObjectiveTarget", "TimeLimit",
		"IterationLimit", "Unknown",
	}
	if int(s) >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "Unknown"
}

// IsOptimal returns true if the model was solved to optimality.
func (s ModelStatus) IsOptimal() bool {
	return s == ModelStatusOptimal
}

// IsLimit returns true if the solve stopped on a limit rather than a proof.
func (s ModelStatus) IsLimit() bool {
	return s == ModelStatusObjectiveBound ||
		s == ModelStatusObjectiveTarget ||
		s == ModelStatusTimeLimit ||
		s == ModelStatusIterationLimit
}

func modelStatusFromC(status C.HighsInt) ModelStatus {
	switch status {
	case C.kHighsModelStatusNotset:
		return ModelStatusNotSet
	case C.kHighsModelStatusLoadError:
		return ModelStatusLoadError
	case C.kHighsModelStatusModelError:
		return ModelStatusModelError
	case C.kHighsModelStatusPresolveError:
		return ModelStatusPresolveError
	case C.kHighsModelStatusSolveError:
		return ModelStatusSolveError
	case C.kHighsModelStatusPostsolveError:
		return ModelStatusPostsolveError
	case C.kHighsModelStatusModelEmpty:
		return ModelStatusModelEmpty
	case C.kHighsModelStatusOptimal:
		return ModelStatusOptimal
	case C.kHighsModelStatusInfeasible:
		return ModelStatusInfeasible
	case C.kHighsModelStatusUnboundedOrInfeasible:
		return ModelStatusUnboundedOrInfeasible
	case C.kHighsModelStatusUnbounded:
		return ModelStatusUnbounded
	case C.kHighsModelStatusObjectiveBound:
		return ModelStatusObjectiveBound
	case C.kHighsModelStatusObjectiveTarget:
		return ModelStatusObjectiveTarget
	case C.kHighsModelStatusTimeLimit:
		return ModelStatusTimeLimit
	case C.kHighsModelStatusIterationLimit:
		return ModelStatusIterationLimit
	default:
		return ModelStatusUnknown
	}
}

// ----------------------------------------------------------------------------
// Errors
// ----------------------------------------------------------------------------

// Error represents a HiGHS error with context about which operation failed.
type Error struct {
	Op     string // Operation that failed (e.g., "Run", "ChangeColBounds")
	Status Status // HiGHS status code
	Msg    string // Additional context
}

func (e *Error) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("highs: %s failed: %s", e.Op, e.Msg)
	}
	return fmt.Sprintf("highs: %s failed with status %s", e.Op, e.Status)
}

// newError creates a new Error if status is not OK.
// Returns nil if status is OK or Warning.
func newError(op string, status Status) error {
	if status == StatusOK || status == StatusWarning {
		return nil
	}
	return &Error{Op: op, Status: status}
}

// newErrorMsg creates a new Error with an additional message.
func newErrorMsg(op, msg string) error {
	return &Error{Op: op, Status: StatusError, Msg: msg}
}

// ----------------------------------------------------------------------------
// Solver (Low-Level API)
// ----------------------------------------------------------------------------

// Solver provides low-level access to one HiGHS instance, i.e. one model
// and its solver state.
//
// Always call Close() when done to release resources:
//
//	solver, _ := env.NewSolver()
//	defer solver.Close()
type Solver struct {
	ptr unsafe.Pointer
}

// newSolver creates a new HiGHS instance. Callers go through an
// Environment so that the process-wide runtime stays referenced.
func newSolver() (*Solver, error) {
	ptr := C.Highs_create()
	if ptr == nil {
		return nil, newErrorMsg("NewSolver", "failed to create HiGHS instance")
	}

	s := &Solver{ptr: ptr}
	runtime.SetFinalizer(s, (*Solver).Close)
	return s, nil
}

// Close releases the resources held by the solver.
// It is safe to call Close multiple times.
func (s *Solver) Close() {
	if s.ptr != nil {
		C.Highs_destroy(s.ptr)
		s.ptr = nil
	}
}

// Infinity returns the value used by HiGHS to represent infinity.
func (s *Solver) Infinity() float64 {
	return float64(C.Highs_getInfinity(s.ptr))
}

// SetBoolOption sets a boolean option.
func (s *Solver) SetBoolOption(name string, value bool) error {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	var cVal C.HighsInt
	if value {
		cVal = 1
	}
	status := Status(C.Highs_setBoolOptionValue(s.ptr, cName, cVal))
	return newError("SetBoolOption", status)
}

// SetIntOption sets an integer option.
func (s *Solver) SetIntOption(name string, value int) error {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	status := Status(C.Highs_setIntOptionValue(s.ptr, cName, C.HighsInt(value)))
	return newError("SetIntOption", status)
}

// SetFloatOption sets a floating-point option.
func (s *Solver) SetFloatOption(name string, value float64) error {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	status := Status(C.Highs_setDoubleOptionValue(s.ptr, cName, C.double(value)))
	return newError("SetFloatOption", status)
}

// SetStringOption sets a string option.
func (s *Solver) SetStringOption(name, value string) error {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	cVal := C.CString(value)
	defer C.free(unsafe.Pointer(cVal))

	status := Status(C.Highs_setStringOptionValue(s.ptr, cName, cVal))
	return newError("SetStringOption", status)
}

// GetFloatOption returns the value of a floating-point option.
func (s *Solver) GetFloatOption(name string) (float64, error) {
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))

	var val C.double
	status := Status(C.Highs_getDoubleOptionValue(s.ptr, cName, &val))
	if err := newError("GetFloatOption", status); err != nil {
		return 0, err
	}
	return float64(val), nil
}

// PassModel passes a complete continuous QP model to the solver in one
// call. The constraint matrix is row-wise, the Hessian is given by its
// diagonal (hessianDiag may be nil for an LP).
func (s *Solver) PassModel(
	numCol, numRow int,
	colCost, colLower, colUpper []float64,
	rowLower, rowUpper []float64,
	aStart, aIndex []int,
	aValue []float64,
	hessianDiag []float64,
) error {
	// Convert starts and indices
	cAStart := make([]C.HighsInt, len(aStart))
	for i, v := range aStart {
		cAStart[i] = C.HighsInt(v)
	}
	cAIndex := make([]C.HighsInt, len(aIndex))
	for i, v := range aIndex {
		cAIndex[i] = C.HighsInt(v)
	}

	qStart, qIndex, qValue := diagonalToCSC(hessianDiag)
	cQStart := make([]C.HighsInt, len(qStart))
	for i, v := range qStart {
		cQStart[i] = C.HighsInt(v)
	}
	cQIndex := make([]C.HighsInt, len(qIndex))
	for i, v := range qIndex {
		cQIndex[i] = C.HighsInt(v)
	}

	// Get pointers
	var pColCost, pColLower, pColUpper *C.double
	var pRowLower, pRowUpper *C.double
	var pAStart, pAIndex, pQStart, pQIndex *C.HighsInt
	var pAValue, pQValue *C.double

	if len(colCost) > 0 {
		pColCost = (*C.double)(&colCost[0])
	}
	if len(colLower) > 0 {
		pColLower = (*C.double)(&colLower[0])
	}
	if len(colUpper) > 0 {
		pColUpper = (*C.double)(&colUpper[0])
	}
	if len(rowLower) > 0 {
		pRowLower = (*C.double)(&rowLower[0])
	}
	if len(rowUpper) > 0 {
		pRowUpper = (*C.double)(&rowUpper[0])
	}
	if len(cAStart) > 0 {
		pAStart = &cAStart[0]
	}
	if len(cAIndex) > 0 {
		pAIndex = &cAIndex[0]
	}
	if len(aValue) > 0 {
		pAValue = (*C.double)(&aValue[0])
	}
	if len(qValue) > 0 {
		pQStart = &cQStart[0]
		pQIndex = &cQIndex[0]
		pQValue = (*C.double)(&qValue[0])
	}

	status := Status(C.Highs_passModel(s.ptr,
		C.HighsInt(numCol), C.HighsInt(numRow),
		C.HighsInt(len(aValue)), C.HighsInt(len(qValue)),
		C.kHighsMatrixFormatRowwise, C.kHighsHessianFormatTriangular,
		C.kHighsObjSenseMinimize, 0,
		pColCost, pColLower, pColUpper,
		pRowLower, pRowUpper,
		pAStart, pAIndex, pAValue,
		pQStart, pQIndex, pQValue,
		nil))
	return newError("PassModel", status)
}

// PassHessian replaces the Hessian with a diagonal one. HiGHS minimizes
// 0.5·x'Qx, so a term dᵢxᵢ² needs the entry 2·dᵢ.
func (s *Solver) PassHessian(diag []float64) error {
	start, index, value := diagonalToCSC(diag)

	cStart := make([]C.HighsInt, len(start))
	for i, v := range start {
		cStart[i] = C.HighsInt(v)
	}
	cIndex := make([]C.HighsInt, len(index))
	for i, v := range index {
		cIndex[i] = C.HighsInt(v)
	}

	var pStart, pIndex *C.HighsInt
	var pValue *C.double
	if len(cStart) > 0 {
		pStart = &cStart[0]
	}
	if len(value) > 0 {
		pIndex = &cIndex[0]
		pValue = (*C.double)(&value[0])
	}

	status := Status(C.Highs_passHessian(s.ptr,
		C.HighsInt(len(diag)), C.HighsInt(len(value)),
		C.kHighsHessianFormatTriangular,
		pStart, pIndex, pValue))
	return newError("PassHessian", status)
}

// ChangeColCost sets the objective coefficient for a column.
func (s *Solver) ChangeColCost(col int, cost float64) error {
	status := Status(C.Highs_changeColCost(s.ptr, C.HighsInt(col), C.double(cost)))
	return newError("ChangeColCost", status)
}

// ChangeColBounds sets the bounds for a column.
func (s *Solver) ChangeColBounds(col int, lower, upper float64) error {
	status := Status(C.Highs_changeColBounds(s.ptr,
		C.HighsInt(col), C.double(lower), C.double(upper)))
	return newError("ChangeColBounds", status)
}

// ChangeRowBounds sets the bounds for a row.
func (s *Solver) ChangeRowBounds(row int, lower, upper float64) error {
	status := Status(C.Highs_changeRowBounds(s.ptr,
		C.HighsInt(row), C.double(lower), C.double(upper)))
	return newError("ChangeRowBounds", status)
}

// GetColsByRange reads costs and bounds of the columns from..to
// (inclusive) into the given slices, which must hold to-from+1 values.
func (s *Solver) GetColsByRange(from, to int, costs, lower, upper []float64) error {
	if to < from {
		return nil
	}
	want := to - from + 1
	if len(costs) < want || len(lower) < want || len(upper) < want {
		return newErrorMsg("GetColsByRange", "output slices too short")
	}

	var numCol, numNz C.HighsInt
	status := Status(C.Highs_getColsByRange(s.ptr,
		C.HighsInt(from), C.HighsInt(to), &numCol,
		(*C.double)(&costs[0]), (*C.double)(&lower[0]), (*C.double)(&upper[0]),
		&numNz, nil, nil, nil))
	return newError("GetColsByRange", status)
}

// GetColsBySet reads costs and bounds of the listed columns into the given
// slices, which must hold len(set) values.
func (s *Solver) GetColsBySet(set []int, costs, lower, upper []float64) error {
	if len(set) == 0 {
		return nil
	}
	if len(costs) < len(set) || len(lower) < len(set) || len(upper) < len(set) {
		return newErrorMsg("GetColsBySet", "output slices too short")
	}

	cSet := make([]C.HighsInt, len(set))
	for i, v := range set {
		cSet[i] = C.HighsInt(v)
	}

	var numCol, numNz C.HighsInt
	status := Status(C.Highs_getColsBySet(s.ptr,
		C.HighsInt(len(set)), &cSet[0], &numCol,
		(*C.double)(&costs[0]), (*C.double)(&lower[0]), (*C.double)(&upper[0]),
		&numNz, nil, nil, nil))
	return newError("GetColsBySet", status)
}

// GetRowBounds returns the bounds of a row.
func (s *Solver) GetRowBounds(row int) (lower, upper float64, err error) {
	var numRow, numNz C.HighsInt
	var lo, up C.double
	status := Status(C.Highs_getRowsByRange(s.ptr,
		C.HighsInt(row), C.HighsInt(row), &numRow,
		&lo, &up, &numNz, nil, nil, nil))
	if err := newError("GetRowBounds", status); err != nil {
		return 0, 0, err
	}
	return float64(lo), float64(up), nil
}

// ModelStatus returns the status of the last run.
func (s *Solver) ModelStatus() ModelStatus {
	return modelStatusFromC(C.Highs_getModelStatus(s.ptr))
}

// Run solves the model and returns the solution.
func (s *Solver) Run() (*Solution, error) {
	status := Status(C.Highs_run(s.ptr))
	if status == StatusError {
		return nil, newError("Run", status)
	}

	// Get model status
	modelStatus := s.ModelStatus()

	// Get dimensions
	numCol := int(C.Highs_getNumCol(s.ptr))
	numRow := int(C.Highs_getNumRow(s.ptr))

	// Allocate solution arrays
	colValue := make([]float64, numCol)
	colDual := make([]float64, numCol)
	rowValue := make([]float64, numRow)
	rowDual := make([]float64, numRow)

	var pColValue, pColDual, pRowValue, pRowDual *C.double
	if numCol > 0 {
		pColValue = (*C.double)(&colValue[0])
		pColDual = (*C.double)(&colDual[0])
	}
	if numRow > 0 {
		pRowValue = (*C.double)(&rowValue[0])
		pRowDual = (*C.double)(&rowDual[0])
	}

	// Get solution
	C.Highs_getSolution(s.ptr, pColValue, pColDual, pRowValue, pRowDual)

	// Get objective value
	objective := float64(C.Highs_getObjectiveValue(s.ptr))

	return &Solution{
		Status:    modelStatus,
		ColValues: colValue,
		ColDuals:  colDual,
		RowValues: rowValue,
		RowDuals:  rowDual,
		Objective: objective,
	}, nil
}

// WriteModel writes the model to a file; the format follows the extension
// (".lp", ".mps").
func (s *Solver) WriteModel(filename string) error {
	cFilename := C.CString(filename)
	defer C.free(unsafe.Pointer(cFilename))

	status := Status(C.Highs_writeModel(s.ptr, cFilename))
	return newError("WriteModel", status)
}

// resetGlobalScheduler stops the HiGHS worker threads shared by all
// instances of the process.
func resetGlobalScheduler() {
	C.Highs_resetGlobalScheduler(1)
}
