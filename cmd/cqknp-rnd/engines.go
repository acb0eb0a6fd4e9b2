package main

import (
	"fmt"
	"slices"
	"time"

	"github.com/bartolsthoorn/gocqknp/cqknp"
	"github.com/bartolsthoorn/gocqknp/dualknp"
	"github.com/bartolsthoorn/gocqknp/highs"
	"github.com/bartolsthoorn/gocqknp/highsknp"
)

const (
	engineDual  = "dual"
	engineHiGHS = "highs"
)

var engines = []string{engineDual, engineHiGHS}

func knownEngine(name string) bool {
	return slices.Contains(engines, name)
}

// newEngine returns the named engine. An eps of zero keeps its default; a
// time limit of zero means none.
func newEngine(name string, eps, timeLimit float64) (cqknp.Problem, error) {
	var (
		p   cqknp.Problem
		err error
	)
	switch name {
	case engineDual:
		p = dualknp.New()
	case engineHiGHS:
		var opts []highsknp.Option
		if timeLimit > 0 {
			opts = append(opts, highsknp.WithSolveOptions(highs.WithTimeLimit(timeLimit)))
		}
		p, err = highsknp.New(opts...)
	default:
		return nil, fmt.Errorf("unknown engine %q", name)
	}
	if err != nil {
		return nil, fmt.Errorf("error creating %s engine: %w", name, err)
	}
	if eps > 0 {
		if err := p.SetEps(eps); err != nil {
			_ = p.Close()
			return nil, err
		}
	}
	return p, nil
}

// timed accumulates the time an engine spends solving and producing its
// solution.
type timed struct {
	cqknp.Problem
	elapsed time.Duration
}

func (t *timed) SolveKNP() (cqknp.Status, error) {
	defer t.track(time.Now())
	return t.Problem.SolveKNP()
}

func (t *timed) KNPGetX() ([]float64, error) {
	defer t.track(time.Now())
	return t.Problem.KNPGetX()
}

func (t *timed) track(start time.Time) {
	t.elapsed += time.Since(start)
}
