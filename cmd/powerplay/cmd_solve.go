package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/powerplay/internal/constants"
	"github.com/nvandessel/powerplay/internal/power"
)

func newSolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve",
		Short: "Find the sample size that reaches a target power",
		Long: `Solve for the per-group sample size at which the two-sample t-test
reaches the target power, using the analytical power function.

Examples:
  powerplay solve                         # d=1.1 at 80% power
  powerplay solve --effect 0.5            # 64 per group
  powerplay solve --effect 0.2 --power 0.9`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			target, _ := cmd.Flags().GetFloat64("power")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("power") {
				target = cfg.Curve.TargetPower
			}

			d, err := designFromFlags(cmd, cfg)
			if err != nil {
				return err
			}

			exact, err := power.RequiredSampleSize(d, target)
			if err != nil {
				return fmt.Errorf("solve: %w", err)
			}
			n := power.SampleSizeCeil(exact)

			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, map[string]any{
					"effect":      d.Effect,
					"alpha":       d.Alpha,
					"ratio":       d.Ratio,
					"alternative": d.Alternative,
					"power":       target,
					"nobs1":       n,
					"nobs1_exact": exact,
				})
			}

			fmt.Fprintf(out, "Required sample size for %.0f%% power: %d per group (exact %.2f)\n", target*100, n, exact)
			fmt.Fprintf(out, "  effect size: %.3f, alpha: %g, ratio: %g, alternative: %s\n", d.Effect, d.Alpha, d.Ratio, d.Alternative)
			return nil
		},
	}

	cmd.Flags().Float64("power", constants.TargetPower, "Target power")
	addDesignFlags(cmd)

	return cmd
}
