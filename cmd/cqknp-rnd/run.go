package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"

	"github.com/bartolsthoorn/gocqknp/cqknp"
	"github.com/bartolsthoorn/gocqknp/internal/instance"
	"github.com/bartolsthoorn/gocqknp/oracle"
)

// cycles is the number of change-and-solve cycles in one reopt round, one
// per combination of instance.Change bits.
const cycles = 8

// report summarises a driver run.
type report struct {
	Runs      int
	Solves    int
	Failures  int
	Reference *timed
	Candidate *timed
}

// errFailures is returned when at least one check disagreed.
var errFailures = errors.New("engines disagree")

// run cross-checks the configured engines on cfg.Runs random instances.
// Disagreements are logged and counted; any other engine error ends the run.
func run(ctx context.Context, cfg Config, log logr.Logger) (*report, error) {
	ref, err := newEngine(cfg.Reference, cfg.Eps, cfg.TimeLimit)
	if err != nil {
		return nil, err
	}
	cand, err := newEngine(cfg.Candidate, cfg.Eps, cfg.TimeLimit)
	if err != nil {
		_ = ref.Close()
		return nil, err
	}

	rep := &report{
		Reference: &timed{Problem: ref},
		Candidate: &timed{Problem: cand},
	}
	o := oracle.New(rep.Reference, rep.Candidate)
	o.SetLog(log.WithName("engine"), cfg.Verbose)

	err = rep.loop(ctx, cfg, o, log)
	return rep, errors.Join(err, o.Close())
}

func (rep *report) loop(ctx context.Context, cfg Config, o *oracle.Oracle[*timed, *timed], log logr.Logger) error {
	for i := 1; i <= cfg.Runs; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		seed := cfg.Seed + uint64(i)
		gen, err := instance.New(cfg.instanceConfig(), seed)
		if err != nil {
			return err
		}
		in := gen.Next()
		log := log.WithValues("run", i, "seed", seed)
		log.V(1).Info("Instance generated", "items", in.N(), "sense", in.Sense.String())

		if err := in.Load(o); err != nil {
			return fmt.Errorf("run %d: %w", i, err)
		}
		for k := 0; k < cfg.Reopt*cycles; k++ {
			if err := gen.Perturb(in, instance.Change(k%cycles), o); err != nil {
				return fmt.Errorf("run %d, cycle %d: %w", i, k, err)
			}
			if err := rep.check(o, log.WithValues("cycle", k)); err != nil {
				return fmt.Errorf("run %d, cycle %d: %w", i, k, err)
			}
		}
		rep.Runs++
	}
	return nil
}

// check solves once and compares the engines.
func (rep *report) check(o *oracle.Oracle[*timed, *timed], log logr.Logger) error {
	rep.Solves++
	status, err := o.SolveKNP()
	if rep.disagree(err, log) {
		return nil
	}
	if err != nil {
		return err
	}

	switch status {
	case cqknp.OK:
	case cqknp.Unfeasible, cqknp.Unbounded:
		log.V(1).Info("Check passed", "status", status.String())
		return nil
	default:
		return fmt.Errorf("no solution found, status %s", status)
	}

	if _, err := o.KNPGetX(); err != nil {
		return err
	}
	fo, err := o.KNPGetFO()
	if rep.disagree(err, log) {
		return nil
	}
	if err != nil {
		return err
	}
	log.V(1).Info("Check passed", "status", status.String(), "objective", fo)
	return nil
}

// disagree counts and logs err if it is a consistency error.
func (rep *report) disagree(err error, log logr.Logger) bool {
	var ce *cqknp.ConsistencyError
	if !errors.As(err, &ce) {
		return false
	}
	rep.Failures++
	log.Error(err, "Check failed", "op", ce.Op)
	return true
}
