package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/bestfit/internal/fit"
	"github.com/cwbudde/bestfit/internal/opt"
)

// Format is a configuration file format.
type Format int

const (
	// FormatTOML is the default format
	FormatTOML Format = iota

	// FormatYAML is selected by a .yaml or .yml extension
	FormatYAML
)

func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	default:
		return "unknown"
	}
}

// Strategies accepted by FitConfig.Strategy.
const (
	StrategyCompass    = "compass"
	StrategyMayfly     = "mayfly"
	StrategyNelderMead = "neldermead"
)

// Config holds the complete bestfit configuration
type Config struct {
	LogLevel   string           `toml:"log_level" yaml:"log_level"`
	Fit        FitConfig        `toml:"fit" yaml:"fit"`
	Mayfly     MayflyConfig     `toml:"mayfly" yaml:"mayfly"`
	NelderMead NelderMeadConfig `toml:"neldermead" yaml:"neldermead"`
	Server     ServerConfig     `toml:"server" yaml:"server"`
}

// FitConfig holds the search settings shared by the fit, auto and serve commands
type FitConfig struct {
	Iterations    int    `toml:"iterations" yaml:"iterations"`
	BatchSize     int    `toml:"batch_size" yaml:"batch_size"`
	MinimumStepDp int    `toml:"min_step_dp" yaml:"min_step_dp"`
	Precision     int    `toml:"precision" yaml:"precision"`
	Format        bool   `toml:"format" yaml:"format"`
	Round         bool   `toml:"round" yaml:"round"`
	Score         bool   `toml:"score" yaml:"score"`
	Strategy      string `toml:"strategy" yaml:"strategy"`
}

// MayflyConfig holds the population search settings used by the mayfly strategy
type MayflyConfig struct {
	Iterations int     `toml:"iterations" yaml:"iterations"`
	PopSize    int     `toml:"pop_size" yaml:"pop_size"`
	Seed       int64   `toml:"seed" yaml:"seed"`
	Bound      float64 `toml:"bound" yaml:"bound"`
}

// NelderMeadConfig holds the simplex search settings used by the neldermead strategy
type NelderMeadConfig struct {
	MaxEvals    int     `toml:"max_evals" yaml:"max_evals"`
	SimplexSize float64 `toml:"simplex_size" yaml:"simplex_size"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr         string   `toml:"addr" yaml:"addr"`
	DataDir      string   `toml:"data_dir" yaml:"data_dir"`
	ReadTimeout  Duration `toml:"read_timeout" yaml:"read_timeout"`
	WriteTimeout Duration `toml:"write_timeout" yaml:"write_timeout"`
}

// Duration wraps time.Duration for text decoding
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string
func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText formats the duration as a string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	opts := fit.DefaultOptions()
	return &Config{
		LogLevel: "info",
		Fit: FitConfig{
			Iterations:    opts.Iterations,
			BatchSize:     opts.BatchSize,
			MinimumStepDp: opts.MinimumStepDp,
			Precision:     opts.Precision,
			Format:        opts.Format,
			Round:         opts.Round,
			Score:         opts.ReturnScore,
			Strategy:      StrategyCompass,
		},
		Mayfly: MayflyConfig{
			Iterations: 200,
			PopSize:    30,
			Seed:       1,
			Bound:      100,
		},
		NelderMead: NelderMeadConfig{
			MaxEvals: 20000,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  Duration{30 * time.Second},
			WriteTimeout: Duration{5 * time.Minute},
		},
	}
}

// Load reads a TOML or YAML file over the defaults. Keys missing from the
// file keep their default values.
func Load(path string) (*Config, error) {
	path = os.ExpandEnv(path)

	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return Parse(content, detectFormat(path))
}

// Parse decodes content in the given format over the defaults.
func Parse(content []byte, format Format) (*Config, error) {
	cfg := Default()

	switch format {
	case FormatTOML:
		if _, err := toml.Decode(string(content), cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", format)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// detectFormat determines the configuration format from file extension
func detectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatTOML
	}
}

// Validate checks values the fit options cannot express on their own.
func (c *Config) Validate() error {
	switch c.Fit.Strategy {
	case StrategyCompass:
	case StrategyMayfly:
		if c.Mayfly.PopSize < 20 {
			return fmt.Errorf("invalid config: mayfly pop_size must be at least 20, got %d", c.Mayfly.PopSize)
		}
		if c.Mayfly.Iterations < 1 {
			return fmt.Errorf("invalid config: mayfly iterations must be at least 1, got %d", c.Mayfly.Iterations)
		}
	case StrategyNelderMead:
		if c.NelderMead.MaxEvals < 1 {
			return fmt.Errorf("invalid config: neldermead max_evals must be at least 1, got %d", c.NelderMead.MaxEvals)
		}
	default:
		return fmt.Errorf("invalid config: unknown strategy %q (want %s, %s or %s)",
			c.Fit.Strategy, StrategyCompass, StrategyMayfly, StrategyNelderMead)
	}
	if err := c.Options().Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Optimizer returns the optimizer selected by the strategy. Compass search is
// built from the fit options themselves, so it yields nil.
func (c *Config) Optimizer() opt.Optimizer {
	switch c.Fit.Strategy {
	case StrategyMayfly:
		return opt.NewMayfly(c.Mayfly.Iterations, c.Mayfly.PopSize, c.Mayfly.Seed, c.Mayfly.Bound)
	case StrategyNelderMead:
		return opt.NewNelderMead(c.NelderMead.MaxEvals, c.NelderMead.SimplexSize)
	default:
		return nil
	}
}

// Options converts the fit section into fit.Options.
func (c *Config) Options() fit.Options {
	return fit.Options{
		Iterations:    c.Fit.Iterations,
		BatchSize:     c.Fit.BatchSize,
		MinimumStepDp: c.Fit.MinimumStepDp,
		Precision:     c.Fit.Precision,
		Format:        c.Fit.Format,
		Round:         c.Fit.Round,
		ReturnScore:   c.Fit.Score,
		Optimizer:     c.Optimizer(),
	}
}
