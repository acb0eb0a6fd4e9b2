// Command cqknp-rnd cross-checks two Continuous Quadratic Knapsack engines on
// random instances and random sequences of changes, and exits non-zero if
// they ever disagree.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cqknp-rnd",
		Short: "Cross-check knapsack engines on random instances",
		Long: `cqknp-rnd loads random Continuous Quadratic Knapsack instances into a
reference and a candidate engine, applies the same random changes to both,
and compares status and objective after every solve.`,
		SilenceUsage: true,
		Args:         cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}
			zl, err := newZapLogger(cfg.Verbose)
			if err != nil {
				return err
			}
			defer func() { _ = zl.Sync() }()
			return execute(cmd.Context(), cfg, zapr.NewLogger(zl))
		},
	}
	bindFlags(cmd.Flags())
	return cmd
}

// newZapLogger maps the verbosity onto zap levels so that logr V(n) lines
// show up from -v n onwards.
func newZapLogger(verbose int) (*zap.Logger, error) {
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(zapcore.Level(-verbose))
	zc.DisableStacktrace = true
	return zc.Build()
}

func execute(ctx context.Context, cfg Config, log logr.Logger) error {
	log.Info("Starting",
		"reference", cfg.Reference, "candidate", cfg.Candidate,
		"runs", cfg.Runs, "minSize", cfg.MinSize, "maxSize", cfg.MaxSize,
		"change", cfg.Change, "reopt", cfg.Reopt, "seed", cfg.Seed)

	rep, err := run(ctx, cfg, log)
	if rep != nil {
		log.Info("Done",
			"runs", rep.Runs, "solves", rep.Solves, "failures", rep.Failures,
			"total", rep.Reference.elapsed+rep.Candidate.elapsed,
			"referenceTime", rep.Reference.elapsed,
			"candidateTime", rep.Candidate.elapsed)
	}
	if err != nil {
		log.Error(err, "Run aborted")
		return err
	}
	if rep.Failures > 0 {
		return fmt.Errorf("%w: %d of %d checks failed", errFailures, rep.Failures, rep.Solves)
	}
	return nil
}
