package highs

import "sync"

// Environment is the process-wide HiGHS runtime: the worker threads that
// every HiGHS instance of the process shares.
//
// It is reference counted. The first Acquire initializes it, the last
// Release shuts the workers down; a later Acquire starts a fresh one.
// Acquire and Release may be called from any goroutine.
type Environment struct {
	users    int
	infinity float64
}

var (
	envMu  sync.Mutex
	shared *Environment
)

// Acquire returns the process-wide environment and adds a user to it.
// Every successful Acquire must be paired with one Release.
func Acquire() (*Environment, error) {
	envMu.Lock()
	defer envMu.Unlock()

	if shared == nil {
		// a throwaway instance proves the library is usable
		s, err := newSolver()
		if err != nil {
			return nil, err
		}
		inf := s.Infinity()
		s.Close()

		shared = &Environment{infinity: inf}
	}
	shared.users++
	return shared, nil
}

// Release removes a user from the environment.
func (e *Environment) Release() error {
	envMu.Lock()
	defer envMu.Unlock()

	if e.users == 0 {
		return newErrorMsg("Release", "environment released more times than acquired")
	}
	e.users--
	if e.users == 0 {
		resetGlobalScheduler()
		if shared == e {
			shared = nil
		}
	}
	return nil
}

// Users returns the number of outstanding Acquire calls on e.
func (e *Environment) Users() int {
	envMu.Lock()
	defer envMu.Unlock()

	return e.users
}

// Infinity returns the value HiGHS uses for an infinite bound.
func (e *Environment) Infinity() float64 {
	return e.infinity
}

// NewSolver creates a new HiGHS instance within the environment.
// The solver must be closed with Close() when no longer needed.
func (e *Environment) NewSolver() (*Solver, error) {
	if e.Users() == 0 {
		return nil, newErrorMsg("NewSolver", "environment has been released")
	}
	return newSolver()
}

// ActiveUsers returns the number of users of the process-wide environment,
// zero when it is not initialized.
func ActiveUsers() int {
	envMu.Lock()
	defer envMu.Unlock()

	if shared == nil {
		return 0
	}
	return shared.users
}
