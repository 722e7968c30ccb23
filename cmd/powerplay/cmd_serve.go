package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nvandessel/powerplay/internal/ratelimit"
	"github.com/nvandessel/powerplay/internal/visualization"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Explore power interactively in the browser",
		Long: `Start a local web server with slider controls for the two means, the
standard deviation and the maximum sample size. Moving a slider asks the
server for a new curve, which is simulated and drawn synchronously.

The server listens on an OS-assigned localhost port until Ctrl-C. Each
client may rebuild the curve serve.requests_per_second times per second
(burst serve.burst); set the rate to 0 to disable the limit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			noOpen, _ := cmd.Flags().GetBool("no-open")

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

			var opts []visualization.ServerOption
			if cfg.Serve.RequestsPerSecond > 0 {
				opts = append(opts, visualization.WithLimiter(ratelimit.NewLimiter(cfg.Serve.RequestsPerSecond, cfg.Serve.Burst)))
			}

			return runCurveServer(cmd, ctx, visualization.NewServer(p, in, logger, opts...), noOpen)
		},
	}

	addInputFlags(cmd)
	addSimulationFlags(cmd)
	cmd.Flags().Bool("no-open", false, "Don't open the browser")

	return cmd
}

// runCurveServer starts the curve server and blocks until ctx is cancelled.
func runCurveServer(cmd *cobra.Command, ctx context.Context, srv *visualization.Server, noOpen bool) error {
	srvCtx, srvCancel := context.WithCancel(ctx)
	defer srvCancel()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe(srvCtx) }()

	// Wait for server to start
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if srv.Addr() != "" {
			break
		}
		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		case <-time.After(10 * time.Millisecond):
		}
	}

	addr := srv.Addr()
	if addr == "" {
		return fmt.Errorf("server failed to start")
	}

	url := "http://" + addr
	fmt.Fprintf(cmd.OutOrStdout(), "Power curve server running at %s\n", url)
	fmt.Fprintf(cmd.OutOrStdout(), "Press Ctrl-C to stop.\n")

	if !noOpen {
		if err := visualization.OpenBrowser(url); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Could not open browser: %v\nOpen %s manually.\n", err, url)
		}
	}

	// Block until server exits
	if err := <-errCh; err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
