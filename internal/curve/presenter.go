// Package curve builds simulated and analytical power curves over a sweep of
// sample sizes and presents them through a Renderer followed by a two-line
// summary at the reference sample size.
package curve

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/nvandessel/powerplay/internal/constants"
	"github.com/nvandessel/powerplay/internal/logging"
	"github.com/nvandessel/powerplay/internal/power"
	"github.com/nvandessel/powerplay/internal/simulation"
)

// Point is one sample size on the curve.
type Point struct {
	N          int     `json:"n"`
	Simulated  float64 `json:"simulated"`
	Analytical float64 `json:"analytical"`
}

// Curve is a fully evaluated power curve.
type Curve struct {
	RunID       string  `json:"run_id"`
	Inputs      Inputs  `json:"inputs"`
	Effect      float64 `json:"effect"`
	Points      []Point `json:"points"`
	Reference   Point   `json:"reference"`
	TargetPower float64 `json:"target_power"`
	Alpha       float64 `json:"alpha"`
	Reps        int     `json:"reps"`

	// RequiredN is the smallest per-group n reaching TargetPower
	// analytically, or 0 when no sample size does.
	RequiredN int `json:"required_n"`
}

// Renderer draws a curve.
type Renderer interface {
	Render(w io.Writer, c *Curve) error
}

// RendererFunc adapts a function to the Renderer interface.
type RendererFunc func(w io.Writer, c *Curve) error

// Render calls f(w, c).
func (f RendererFunc) Render(w io.Writer, c *Curve) error {
	return f(w, c)
}

// Options control how a curve is evaluated.
type Options struct {
	Alpha       float64
	Reps        int
	Start       int
	Step        int
	ReferenceN  int
	TargetPower float64
	Welch       bool
}

// DefaultOptions returns the standard sweep: n = 10, 20, ... with 500
// repetitions per point at alpha 0.05, and the summary at n = 30.
func DefaultOptions() Options {
	return Options{
		Alpha:       constants.DefaultAlpha,
		Reps:        constants.DefaultReps,
		Start:       constants.SweepStart,
		Step:        constants.SweepStep,
		ReferenceN:  constants.ReferenceSampleSize,
		TargetPower: constants.TargetPower,
	}
}

func (o Options) validate() error {
	switch {
	case !(o.Alpha > 0 && o.Alpha < 1):
		return fmt.Errorf("%w: alpha must be in (0,1), got %v", ErrInvalidInputs, o.Alpha)
	case o.Reps < 1:
		return fmt.Errorf("%w: reps must be at least 1, got %d", ErrInvalidInputs, o.Reps)
	case o.Start < constants.MinSampleSize:
		return fmt.Errorf("%w: sweep start must be at least %d, got %d", ErrInvalidInputs, constants.MinSampleSize, o.Start)
	case o.Step < 1:
		return fmt.Errorf("%w: sweep step must be at least 1, got %d", ErrInvalidInputs, o.Step)
	case o.ReferenceN < constants.MinSampleSize:
		return fmt.Errorf("%w: reference n must be at least %d, got %d", ErrInvalidInputs, constants.MinSampleSize, o.ReferenceN)
	case !(o.TargetPower > 0 && o.TargetPower < 1):
		return fmt.Errorf("%w: target power must be in (0,1), got %v", ErrInvalidInputs, o.TargetPower)
	}
	return nil
}

// Presenter evaluates and presents power curves. Calls are synchronous and
// share the simulator's random source, so a Presenter is not safe for
// concurrent use.
type Presenter struct {
	sim    *simulation.Simulator
	opts   Options
	logger *slog.Logger
	runs   *logging.RunLogger
}

// NewPresenter creates a presenter. logger and runs may be nil.
func NewPresenter(sim *simulation.Simulator, opts Options, logger *slog.Logger, runs *logging.RunLogger) *Presenter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Presenter{sim: sim, opts: opts, logger: logger, runs: runs}
}

// Options returns the presenter's evaluation options.
func (p *Presenter) Options() Options {
	return p.opts
}

// SampleSizes returns the swept sample sizes start, start+step, ... <= maxN.
func SampleSizes(start, step, maxN int) []int {
	if step < 1 {
		return nil
	}
	var ns []int
	for n := start; n <= maxN; n += step {
		ns = append(ns, n)
	}
	return ns
}

// Build evaluates the curve for in. The context is checked before every
// sample size.
func (p *Presenter) Build(ctx context.Context, in Inputs) (*Curve, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := p.opts.validate(); err != nil {
		return nil, err
	}
	if in.MaxN < p.opts.Start {
		return nil, fmt.Errorf("%w: max n %d is below the sweep start %d", ErrInvalidInputs, in.MaxN, p.opts.Start)
	}

	effect, err := power.EffectSize(in.MeanA, in.MeanB, in.SD)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInputs, err)
	}

	started := time.Now()
	c := &Curve{
		RunID:       logging.NewRunID(),
		Inputs:      in,
		Effect:      effect,
		TargetPower: p.opts.TargetPower,
		Alpha:       p.opts.Alpha,
		Reps:        p.opts.Reps,
	}

	for _, n := range SampleSizes(p.opts.Start, p.opts.Step, in.MaxN) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pt, err := p.point(in, effect, n)
		if err != nil {
			return nil, err
		}
		p.logger.Log(ctx, logging.LevelTrace, "curve point",
			"run_id", c.RunID,
			"n", pt.N,
			"simulated", pt.Simulated,
			"analytical", pt.Analytical)
		c.Points = append(c.Points, pt)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	// The reference is simulated afresh so it does not depend on the sweep grid.
	c.Reference, err = p.point(in, effect, p.opts.ReferenceN)
	if err != nil {
		return nil, err
	}

	c.RequiredN, err = p.requiredN(effect)
	if err != nil {
		return nil, err
	}

	elapsed := time.Since(started)
	p.logger.Debug("curve built",
		"run_id", c.RunID,
		"effect", effect,
		"points", len(c.Points),
		"required_n", c.RequiredN,
		"duration", elapsed)

	p.runs.Log(map[string]any{
		"run_id":      c.RunID,
		"mean_a":      in.MeanA,
		"mean_b":      in.MeanB,
		"sd":          in.SD,
		"max_n":       in.MaxN,
		"effect":      effect,
		"alpha":       p.opts.Alpha,
		"reps":        p.opts.Reps,
		"welch":       p.opts.Welch,
		"points":      c.Points,
		"reference":   c.Reference,
		"required_n":  c.RequiredN,
		"duration_ms": elapsed.Milliseconds(),
	})

	return c, nil
}

func (p *Presenter) point(in Inputs, effect float64, n int) (Point, error) {
	res, err := p.sim.Power(simulation.Params{
		N:     n,
		MeanA: in.MeanA,
		MeanB: in.MeanB,
		SD:    in.SD,
		Reps:  p.opts.Reps,
		Alpha: p.opts.Alpha,
		Welch: p.opts.Welch,
	})
	if err != nil {
		return Point{}, fmt.Errorf("simulating n=%d: %w", n, err)
	}
	exact, err := power.TTestIndPower(effect, float64(n), p.opts.Alpha, constants.DefaultRatio, power.TwoSided)
	if err != nil {
		return Point{}, fmt.Errorf("analytical power at n=%d: %w", n, err)
	}
	return Point{N: n, Simulated: res.Power, Analytical: exact}, nil
}

func (p *Presenter) requiredN(effect float64) (int, error) {
	d := power.NewDesign(effect, constants.MinSampleSize)
	d.Alpha = p.opts.Alpha
	n, err := power.RequiredSampleSize(d, p.opts.TargetPower)
	if errors.Is(err, power.ErrUnreachablePower) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("solving sample size: %w", err)
	}
	return power.SampleSizeCeil(n), nil
}

// Present builds the curve for in, renders it to w and writes the summary.
func (p *Presenter) Present(ctx context.Context, w io.Writer, r Renderer, in Inputs) (*Curve, error) {
	c, err := p.Build(ctx, in)
	if err != nil {
		return nil, err
	}
	if r != nil {
		if err := r.Render(w, c); err != nil {
			return nil, fmt.Errorf("rendering curve: %w", err)
		}
	}
	if err := WriteSummary(w, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SummaryLines returns the two point-estimate lines at the reference n.
func SummaryLines(c *Curve) [2]string {
	return [2]string{
		fmt.Sprintf("Simulated power at n=%d: %.3f", c.Reference.N, c.Reference.Simulated),
		fmt.Sprintf("Analytical power at n=%d: %.3f", c.Reference.N, c.Reference.Analytical),
	}
}

// WriteSummary writes the two summary lines to w.
func WriteSummary(w io.Writer, c *Curve) error {
	lines := SummaryLines(c)
	if _, err := fmt.Fprintf(w, "%s\n%s\n", lines[0], lines[1]); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}
