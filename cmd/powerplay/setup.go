package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/nvandessel/powerplay/internal/config"
	"github.com/nvandessel/powerplay/internal/constants"
	"github.com/nvandessel/powerplay/internal/curve"
	"github.com/nvandessel/powerplay/internal/logging"
	"github.com/nvandessel/powerplay/internal/simulation"
)

// loadConfig loads the effective configuration for cmd: the config file
// (--config or the default location), .env, environment variables and the
// --log-level flag, in that order.
func loadConfig(cmd *cobra.Command) (*config.PowerplayConfig, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadWithPath(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newLogger returns the operational logger writing to the command's stderr.
func newLogger(cmd *cobra.Command, cfg *config.PowerplayConfig) *slog.Logger {
	return logging.NewLogger(cfg.Logging.Level, cmd.ErrOrStderr())
}

// newRunLogger returns the run trace logger, or nil at info level.
func newRunLogger(cfg *config.PowerplayConfig) *logging.RunLogger {
	dir, err := config.Dir()
	if err != nil {
		return nil
	}
	return logging.NewRunLogger(dir, cfg.Logging.Level)
}

// signalContext returns a context cancelled by Ctrl-C (and SIGTERM on Unix).
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, shutdownSignals...)
}

// addInputFlags registers the four curve controls.
func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("mean-a", constants.MeanADefault, "Mean of group A")
	cmd.Flags().Float64("mean-b", constants.MeanBDefault, "Mean of group B")
	cmd.Flags().Float64("sd", constants.SDDefault, "Shared standard deviation")
	cmd.Flags().Int("max-n", int(constants.MaxNDefault), "Largest sample size per group on the curve")
}

// addMeanFlags registers the two means and the standard deviation only.
func addMeanFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("mean-a", constants.MeanADefault, "Mean of group A")
	cmd.Flags().Float64("mean-b", constants.MeanBDefault, "Mean of group B")
	cmd.Flags().Float64("sd", constants.SDDefault, "Shared standard deviation")
}

// addSimulationFlags registers the Monte Carlo settings.
func addSimulationFlags(cmd *cobra.Command) {
	cmd.Flags().Int("reps", constants.DefaultReps, "Simulated experiments per sample size")
	cmd.Flags().Float64("alpha", constants.DefaultAlpha, "Significance level")
	cmd.Flags().Uint64("seed", 0, "Random seed (0 seeds from the clock)")
	cmd.Flags().Bool("welch", false, "Use Welch's unequal-variance t-test in simulations")
}

// inputsFromFlags starts from the configured control values and applies
// any flags the user set.
func inputsFromFlags(cmd *cobra.Command, cfg *config.PowerplayConfig) curve.Inputs {
	in := curve.Inputs{
		MeanA: cfg.Curve.MeanA,
		MeanB: cfg.Curve.MeanB,
		SD:    cfg.Curve.SD,
		MaxN:  cfg.Curve.MaxN,
	}
	if cmd.Flags().Changed("mean-a") {
		in.MeanA, _ = cmd.Flags().GetFloat64("mean-a")
	}
	if cmd.Flags().Changed("mean-b") {
		in.MeanB, _ = cmd.Flags().GetFloat64("mean-b")
	}
	if cmd.Flags().Changed("sd") {
		in.SD, _ = cmd.Flags().GetFloat64("sd")
	}
	if cmd.Flags().Changed("max-n") {
		in.MaxN, _ = cmd.Flags().GetInt("max-n")
	}
	return in
}

// curveInputs returns the validated control values for a curve command.
func curveInputs(cmd *cobra.Command, cfg *config.PowerplayConfig) (curve.Inputs, error) {
	in := inputsFromFlags(cmd, cfg)
	if err := in.Validate(); err != nil {
		return curve.Inputs{}, err
	}
	if in.MaxN < cfg.Curve.Start {
		return curve.Inputs{}, fmt.Errorf("%w: max n %d is below the sweep start %d", curve.ErrInvalidInputs, in.MaxN, cfg.Curve.Start)
	}
	return in, nil
}

// simulationFromFlags starts from the configured simulation settings and
// applies any flags the user set.
func simulationFromFlags(cmd *cobra.Command, cfg *config.PowerplayConfig) config.SimulationConfig {
	sc := cfg.Simulation
	if cmd.Flags().Changed("reps") {
		sc.Reps, _ = cmd.Flags().GetInt("reps")
	}
	if cmd.Flags().Changed("alpha") {
		sc.Alpha, _ = cmd.Flags().GetFloat64("alpha")
	}
	if cmd.Flags().Changed("seed") {
		sc.Seed, _ = cmd.Flags().GetUint64("seed")
	}
	if cmd.Flags().Changed("welch") {
		sc.Welch, _ = cmd.Flags().GetBool("welch")
	}
	return sc
}

// alphaFromFlags returns --alpha when set, else the configured alpha.
func alphaFromFlags(cmd *cobra.Command, cfg *config.PowerplayConfig) float64 {
	if cmd.Flags().Changed("alpha") {
		alpha, _ := cmd.Flags().GetFloat64("alpha")
		return alpha
	}
	return cfg.Simulation.Alpha
}

// newPresenter wires a presenter for cmd from configuration and flags.
func newPresenter(cmd *cobra.Command, cfg *config.PowerplayConfig, logger *slog.Logger, runs *logging.RunLogger) *curve.Presenter {
	sc := simulationFromFlags(cmd, cfg)
	sim := simulation.NewSeededSimulator(sc.Seed, simulation.WithLogger(logger))
	opts := curve.Options{
		Alpha:       sc.Alpha,
		Reps:        sc.Reps,
		Start:       cfg.Curve.Start,
		Step:        cfg.Curve.Step,
		ReferenceN:  cfg.Curve.ReferenceN,
		TargetPower: cfg.Curve.TargetPower,
		Welch:       sc.Welch,
	}
	return curve.NewPresenter(sim, opts, logger, runs)
}

// writeJSON writes v as indented JSON.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}
