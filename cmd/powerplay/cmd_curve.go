package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/nvandessel/powerplay/internal/curve"
	"github.com/nvandessel/powerplay/internal/visualization"
)

func newCurveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Draw the simulated and analytical power curve",
		Long: `Sweep sample sizes n = 10, 20, ... up to --max-n, estimate power by
simulation and analytically at each, and draw both series with an 80%
power line. Two summary lines report both estimates at n=30.

Formats: text (terminal chart), json, svg, or html (self-contained page,
opened in the browser unless --no-open).

Examples:
  powerplay curve
  powerplay curve --mean-a 45 --mean-b 50 --sd 12 --max-n 300
  powerplay curve --format svg -o curve.svg
  powerplay curve --format html --no-open -o curve.html`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			formatFlag, _ := cmd.Flags().GetString("format")
			output, _ := cmd.Flags().GetString("output")
			noOpen, _ := cmd.Flags().GetBool("no-open")

			format, err := visualization.ParseFormat(formatFlag)
			if err != nil {
				return err
			}
			if jsonOut {
				format = visualization.FormatJSON
			}

			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			logger := newLogger(cmd, cfg)
			runs := newRunLogger(cfg)
			defer runs.Close()

			in, err := curveInputs(cmd, cfg)
			if err != nil {
				return err
			}
			p := newPresenter(cmd, cfg, logger, runs)

			ctx, stop := signalContext(cmd.Context())
			defer stop()

			out := cmd.OutOrStdout()
			switch format {
			case visualization.FormatText:
				if output == "" {
					_, err := p.Present(ctx, out, visualization.NewTextRenderer(), in)
					return err
				}
				return writeCurveFile(cmd, ctx, p, in, format, output, noOpen)

			case visualization.FormatJSON, visualization.FormatSVG:
				if output == "" {
					// The document alone goes to stdout; the JSON carries
					// the summary lines itself.
					c, err := p.Build(ctx, in)
					if err != nil {
						return err
					}
					r, err := visualization.NewRenderer(format)
					if err != nil {
						return err
					}
					return r.Render(out, c)
				}
				return writeCurveFile(cmd, ctx, p, in, format, output, noOpen)

			case visualization.FormatHTML:
				if output == "" {
					output = filepath.Join(os.TempDir(), "powerplay-curve.html")
				}
				return writeCurveFile(cmd, ctx, p, in, format, output, noOpen)
			}
			return fmt.Errorf("unsupported format %q", format)
		},
	}

	addInputFlags(cmd)
	addSimulationFlags(cmd)
	cmd.Flags().String("format", string(visualization.FormatText), "Output format: text, json, svg, or html")
	cmd.Flags().StringP("output", "o", "", "Output file path (html defaults to a temp file)")
	cmd.Flags().Bool("no-open", false, "Don't open browser after generating HTML")

	return cmd
}

// writeCurveFile renders the curve to path, then prints where it went and
// the summary lines. HTML files are opened in the browser unless noOpen.
func writeCurveFile(cmd *cobra.Command, ctx context.Context, p *curve.Presenter, in curve.Inputs, format visualization.Format, path string, noOpen bool) error {
	c, err := p.Build(ctx, in)
	if err != nil {
		return err
	}
	r, err := visualization.NewRenderer(format)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := r.Render(f, c); err != nil {
		f.Close()
		return fmt.Errorf("render %s: %w", format, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write output file: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Curve written to %s\n", path)
	if err := curve.WriteSummary(out, c); err != nil {
		return err
	}

	if format == visualization.FormatHTML && !noOpen {
		if err := visualization.OpenBrowser(path); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser: %v\nOpen %s manually.\n", err, path)
		}
	}
	return nil
}
