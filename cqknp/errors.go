package cqknp

import (
	"errors"
	"fmt"
)

var (
	// ErrUsage matches every *UsageError.
	ErrUsage = errors.New("cqknp: usage error")
	// ErrEngine matches every *EngineError.
	ErrEngine = errors.New("cqknp: engine error")
	// ErrConsistency matches every *ConsistencyError.
	ErrConsistency = errors.New("cqknp: consistency error")
)

// UsageError reports a call made in a state or with arguments that violate
// its precondition, such as reading a solution before a successful solve.
type UsageError struct {
	Op  string // Operation that was called (e.g., "KNPGetX")
	Msg string
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("cqknp: %s: %s", e.Op, e.Msg)
}

// Is makes errors.Is(err, ErrUsage) true.
func (e *UsageError) Is(target error) bool {
	return target == ErrUsage
}

// Usagef builds a *UsageError.
func Usagef(op, format string, args ...any) error {
	return &UsageError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// EngineError reports a fault of the underlying engine unrelated to the
// mathematical status. The engine must not be used afterwards.
type EngineError struct {
	Op  string
	Err error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("cqknp: %s: engine failure: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrEngine) true.
func (e *EngineError) Is(target error) bool {
	return target == ErrEngine
}

// ConsistencyError reports that two engines fed with the same data disagree.
// Reference and Candidate hold the observed values (Status or float64).
type ConsistencyError struct {
	Op        string
	Reference any
	Candidate any
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("cqknp: %s: engines disagree: reference %v, candidate %v",
		e.Op, e.Reference, e.Candidate)
}

// Is makes errors.Is(err, ErrConsistency) true.
func (e *ConsistencyError) Is(target error) bool {
	return target == ErrConsistency
}
