package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvandessel/powerplay/internal/config"
	"github.com/nvandessel/powerplay/internal/constants"
	"github.com/nvandessel/powerplay/internal/power"
)

func newPowerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "power",
		Short: "Compute the analytical power of the two-sample t-test",
		Long: `Compute the exact power of the independent two-sample t-test from the
noncentral t distribution.

The effect size is taken from --effect, or computed as
(mean B - mean A) / sd from the mean flags.

Examples:
  powerplay power                                  # d=1.1, n=30
  powerplay power --effect 0.5 --n 64
  powerplay power --effect 0.5 --n 50 --ratio 2 --alternative larger`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			n, _ := cmd.Flags().GetFloat64("n")

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			d, err := designFromFlags(cmd, cfg)
			if err != nil {
				return err
			}
			d.NObs1 = n

			pw, err := d.Power()
			if err != nil {
				return fmt.Errorf("power: %w", err)
			}

			out := cmd.OutOrStdout()
			if jsonOut {
				return writeJSON(out, map[string]any{
					"design":        d,
					"power":         pw,
					"df":            d.DF(),
					"noncentrality": d.Noncentrality(),
				})
			}

			fmt.Fprintf(out, "Analytical power at n=%g: %.3f\n", n, pw)
			fmt.Fprintf(out, "  effect size: %.3f, alpha: %g, ratio: %g, alternative: %s\n", d.Effect, d.Alpha, d.Ratio, d.Alternative)
			fmt.Fprintf(out, "  df: %g, noncentrality: %.4f\n", d.DF(), d.Noncentrality())
			return nil
		},
	}

	cmd.Flags().Float64("n", constants.ReferenceSampleSize, "Sample size of group A (group B has n * ratio)")
	addDesignFlags(cmd)

	return cmd
}

// addDesignFlags registers the flags shared by power and solve.
func addDesignFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("effect", 0, "Standardized effect size (overrides the mean flags)")
	addMeanFlags(cmd)
	cmd.Flags().Float64("alpha", constants.DefaultAlpha, "Significance level")
	cmd.Flags().Float64("ratio", constants.DefaultRatio, "Allocation ratio n_B / n_A")
	cmd.Flags().String("alternative", string(power.TwoSided), "Alternative hypothesis: two-sided, larger, or smaller")
}

// designFromFlags builds a test design; NObs1 is left for the caller.
func designFromFlags(cmd *cobra.Command, cfg *config.PowerplayConfig) (power.Design, error) {
	altFlag, _ := cmd.Flags().GetString("alternative")
	alt, err := power.ParseAlternative(altFlag)
	if err != nil {
		return power.Design{}, err
	}
	ratio, _ := cmd.Flags().GetFloat64("ratio")

	var effect float64
	if cmd.Flags().Changed("effect") {
		effect, _ = cmd.Flags().GetFloat64("effect")
	} else {
		in := inputsFromFlags(cmd, cfg)
		effect, err = power.EffectSize(in.MeanA, in.MeanB, in.SD)
		if err != nil {
			return power.Design{}, err
		}
	}

	return power.Design{
		Effect:      effect,
		Alpha:       alphaFromFlags(cmd, cfg),
		Ratio:       ratio,
		Alternative: alt,
	}, nil
}
