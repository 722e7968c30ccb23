package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/powerplay/internal/tui"
)

func newExploreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore power interactively in the terminal",
		Long: `Open an interactive terminal view of the power curve. Select a control
with up/down and change it with left/right; every change re-runs the
simulation and redraws the chart and the summary lines.

Controls: mean A 30-60 step 1, mean B 30-60 step 1, sd 5-20 step 1,
max n 30-300 step 10.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			// Log lines would tear the alternate screen; keep them for the run trace.
			runs := newRunLogger(cfg)
			defer runs.Close()

			in, err := curveInputs(cmd, cfg)
			if err != nil {
				return err
			}
			p := newPresenter(cmd, cfg, nil, runs)

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			final, err := tui.Run(ctx, p, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Final controls: mean A %g, mean B %g, sd %g, max n %d\n",
				final.MeanA, final.MeanB, final.SD, final.MaxN)
			return nil
		},
	}

	addInputFlags(cmd)
	addSimulationFlags(cmd)

	return cmd
}
