package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/bartolsthoorn/gocqknp/internal/instance"
)

const envPrefix = "CQKNP"

// Config holds the driver settings. Flags override environment variables
// (CQKNP_MAX_SIZE, ...), which override the config file.
type Config struct {
	Runs      int     `mapstructure:"runs"`
	MaxSize   int     `mapstructure:"max-size"`
	MinSize   int     `mapstructure:"min-size"`
	Change    float64 `mapstructure:"change"`
	Reopt     int     `mapstructure:"reopt"`
	Seed      uint64  `mapstructure:"seed"`
	Reference string  `mapstructure:"reference"`
	Candidate string  `mapstructure:"candidate"`
	Eps       float64 `mapstructure:"eps"`
	TimeLimit float64 `mapstructure:"time-limit"`
	Verbose   int     `mapstructure:"verbose"`
}

func bindFlags(fs *pflag.FlagSet) {
	fs.Int("runs", 100, "number of random instances")
	fs.Int("max-size", 1000, "item counts are drawn below this size")
	fs.Int("min-size", 1, "smallest item count")
	fs.Float64("change", 1.0, "share of the items touched by each change, 1 for all")
	fs.Int("reopt", 2, "rounds of 8 change-and-solve cycles per instance")
	fs.Uint64("seed", 1, "seed of the first instance; instance i uses seed+i")
	fs.String("reference", engineDual, "reference engine (dual, highs)")
	fs.String("candidate", engineHiGHS, "candidate engine (dual, highs)")
	fs.Float64("eps", 0, "engine tolerance, 0 keeps each engine's default")
	fs.Float64("time-limit", 0, "HiGHS time limit per solve in seconds, 0 for none")
	fs.String("config", "", "YAML config file")
	fs.CountP("verbose", "v", "log verbosity, repeat for more")
}

// loadConfig merges the config file, the environment and the flags.
func loadConfig(fs *pflag.FlagSet) (Config, error) {
	var cfg Config

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return cfg, fmt.Errorf("error binding flags: %w", err)
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return cfg, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("error unmarshalling config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the settings.
func (c Config) Validate() error {
	if c.Runs < 0 {
		return fmt.Errorf("runs must not be negative, got %d", c.Runs)
	}
	if c.Reopt < 0 {
		return fmt.Errorf("reopt must not be negative, got %d", c.Reopt)
	}
	if c.Eps < 0 {
		return fmt.Errorf("eps must not be negative, got %g", c.Eps)
	}
	if c.TimeLimit < 0 {
		return fmt.Errorf("time limit must not be negative, got %g", c.TimeLimit)
	}
	for _, name := range []string{c.Reference, c.Candidate} {
		if !knownEngine(name) {
			return fmt.Errorf("unknown engine %q, want one of %s", name, strings.Join(engines, ", "))
		}
	}
	return c.instanceConfig().Validate()
}

func (c Config) instanceConfig() instance.Config {
	return instance.Config{
		MinSize: c.MinSize,
		MaxSize: c.MaxSize,
		Change:  c.Change,
	}
}
