// Package config provides unified configuration loading for powerplay.
// It supports loading from YAML files, a local .env file and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nvandessel/powerplay/internal/constants"
)

// DotEnvFile is read from the working directory before environment overrides
// are applied. Variables already set in the environment win.
const DotEnvFile = ".env"

var validate = validator.New()

// PowerplayConfig contains all powerplay configuration settings.
type PowerplayConfig struct {
	// Simulation contains settings for the Monte Carlo power estimate.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// Curve contains settings for the power curve sweep and its controls.
	Curve CurveConfig `json:"curve" yaml:"curve"`

	// Serve contains settings for the browser curve server.
	Serve ServeConfig `json:"serve" yaml:"serve"`

	// Logging contains settings for operational logging and run tracing.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// SimulationConfig configures simulated power.
type SimulationConfig struct {
	// Reps is the number of simulated experiments per sample size.
	Reps int `json:"reps" yaml:"reps" env:"POWERPLAY_REPS" validate:"gte=1"`

	// Alpha is the significance level for both simulated and analytical power.
	Alpha float64 `json:"alpha" yaml:"alpha" env:"POWERPLAY_ALPHA" validate:"gt=0,lt=1"`

	// Seed fixes the random source. 0 seeds from the clock.
	Seed uint64 `json:"seed" yaml:"seed" env:"POWERPLAY_SEED"`

	// Welch uses the unequal-variance t-test in simulations.
	Welch bool `json:"welch" yaml:"welch" env:"POWERPLAY_WELCH"`
}

// CurveConfig configures the power curve sweep and the initial control values.
type CurveConfig struct {
	// Start is the first sample size on the curve.
	Start int `json:"start" yaml:"start" env:"POWERPLAY_CURVE_START" validate:"gte=2"`

	// Step is the distance between sample sizes on the curve.
	Step int `json:"step" yaml:"step" env:"POWERPLAY_CURVE_STEP" validate:"gte=1"`

	// ReferenceN is the sample size of the printed point estimates.
	ReferenceN int `json:"reference_n" yaml:"reference_n" env:"POWERPLAY_REFERENCE_N" validate:"gte=2"`

	// TargetPower is drawn as a horizontal reference line.
	TargetPower float64 `json:"target_power" yaml:"target_power" env:"POWERPLAY_TARGET_POWER" validate:"gt=0,lt=1"`

	// MeanA, MeanB, SD and MaxN are the initial control values.
	MeanA float64 `json:"mean_a" yaml:"mean_a" env:"POWERPLAY_MEAN_A"`
	MeanB float64 `json:"mean_b" yaml:"mean_b" env:"POWERPLAY_MEAN_B"`
	SD    float64 `json:"sd" yaml:"sd" env:"POWERPLAY_SD" validate:"gt=0"`
	MaxN  int     `json:"max_n" yaml:"max_n" env:"POWERPLAY_MAX_N" validate:"gtefield=Start"`
}

// ServeConfig limits how often one client may rebuild the curve.
type ServeConfig struct {
	// RequestsPerSecond is the steady per-client rebuild rate. 0 disables limiting.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" env:"POWERPLAY_SERVE_RATE" validate:"gte=0"`

	// Burst is the number of rebuilds a client may make back to back.
	Burst int `json:"burst" yaml:"burst" env:"POWERPLAY_SERVE_BURST" validate:"gte=1"`
}

// LoggingConfig configures powerplay's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables run tracing to ~/.powerplay/runs.jsonl.
	// "trace" additionally logs every point of every curve.
	Level string `json:"level" yaml:"level" env:"POWERPLAY_LOG_LEVEL" validate:"omitempty,oneof=info debug trace"`
}

// Default returns a PowerplayConfig with sensible defaults.
func Default() *PowerplayConfig {
	return &PowerplayConfig{
		Simulation: SimulationConfig{
			Reps:  constants.DefaultReps,
			Alpha: constants.DefaultAlpha,
		},
		Curve: CurveConfig{
			Start:       constants.SweepStart,
			Step:        constants.SweepStep,
			ReferenceN:  constants.ReferenceSampleSize,
			TargetPower: constants.TargetPower,
			MeanA:       constants.MeanADefault,
			MeanB:       constants.MeanBDefault,
			SD:          constants.SDDefault,
			MaxN:        int(constants.MaxNDefault),
		},
		Serve: ServeConfig{
			RequestsPerSecond: constants.CurveRequestsPerSecond,
			Burst:             constants.CurveRequestBurst,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Dir returns the powerplay state directory (~/.powerplay).
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(homeDir, ".powerplay"), nil
}

// DefaultPath returns the default config file path (~/.powerplay/config.yaml).
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.powerplay/config.yaml -> .env -> environment variables
func Load() (*PowerplayConfig, error) {
	return LoadWithPath("")
}

// LoadWithPath is Load with an explicit config file. An empty path uses the
// default location, which may be absent; an explicit path must exist.
func LoadWithPath(path string) (*PowerplayConfig, error) {
	config := Default()

	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	} else if configPath, err := DefaultPath(); err == nil {
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	if err := applyEnvOverrides(config, DotEnvFile); err != nil {
		return nil, err
	}

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*PowerplayConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *PowerplayConfig) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "oneof":
		return fmt.Errorf("invalid log level: %v (valid: info, debug, trace, or empty for default)", fe.Value())
	case "gtefield":
		return fmt.Errorf("%s must be at least %s, got %v", fe.Namespace(), fe.Param(), fe.Value())
	default:
		return fmt.Errorf("%s must satisfy %s %s, got %v", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value())
	}
}

// applyEnvOverrides loads dotenv (when present) into the process environment
// and then applies POWERPLAY_* variables to the config.
func applyEnvOverrides(config *PowerplayConfig, dotenv string) error {
	if dotenv != "" {
		if _, err := os.Stat(dotenv); err == nil {
			if err := godotenv.Load(dotenv); err != nil {
				return fmt.Errorf("load %s: %w", dotenv, err)
			}
		}
	}

	if err := env.Parse(config); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
