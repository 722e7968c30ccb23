package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Set via -ldflags at release build time.
var (
	version = "0.1.0-dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "powerplay",
		Short: "Statistical power explorer for two-sample t-tests",
		Long: `powerplay compares the simulated and analytical power of the two-sample
t-test for two group means with a shared standard deviation.

It sweeps sample sizes, draws the power curve against an 80% power line
and reports both estimates at n=30. The explore and serve commands bind
the two means, the standard deviation and the maximum sample size to
interactive controls.`,
		SilenceUsage: true,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.powerplay/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug, or trace (overrides config)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newSimulateCmd(),
		newPowerCmd(),
		newSolveCmd(),
		newCurveCmd(),
		newExploreCmd(),
		newServeCmd(),
		newConfigCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
