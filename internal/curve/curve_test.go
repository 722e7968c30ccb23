package curve_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nvandessel/powerplay/internal/curve"
	"github.com/nvandessel/powerplay/internal/logging"
	"github.com/nvandessel/powerplay/internal/power"
	"github.com/nvandessel/powerplay/internal/simulation"
)

func newPresenter(seed uint64, opts curve.Options) *curve.Presenter {
	return curve.NewPresenter(simulation.NewSeededSimulator(seed), opts, nil, nil)
}

func fastOptions() curve.Options {
	opts := curve.DefaultOptions()
	opts.Reps = 200
	return opts
}

func TestSampleSizes(t *testing.T) {
	assert.Equal(t, []int{10, 20, 30}, curve.SampleSizes(10, 10, 30))
	assert.Equal(t, []int{10, 20, 30}, curve.SampleSizes(10, 10, 39))
	assert.Equal(t, []int{10}, curve.SampleSizes(10, 10, 10))
	assert.Empty(t, curve.SampleSizes(10, 10, 9))
	assert.Empty(t, curve.SampleSizes(10, 0, 100))
}

func TestBuild_SweepAndReference(t *testing.T) {
	p := newPresenter(11, fastOptions())
	in := curve.DefaultInputs()

	c, err := p.Build(context.Background(), in)
	require.NoError(t, err)

	require.Len(t, c.Points, 10)
	for i, pt := range c.Points {
		assert.Equal(t, 10*(i+1), pt.N)
		assert.GreaterOrEqual(t, pt.Simulated, 0.0)
		assert.LessOrEqual(t, pt.Simulated, 1.0)
		want, err := power.TTestIndPower(c.Effect, float64(pt.N), 0.05, 1, power.TwoSided)
		require.NoError(t, err)
		assert.Equal(t, want, pt.Analytical)
	}

	assert.InDelta(t, 1.1, c.Effect, 1e-12)
	assert.Equal(t, 30, c.Reference.N)
	assert.InDelta(t, 0.987, c.Reference.Analytical, 0.002)
	assert.InDelta(t, c.Reference.Analytical, c.Reference.Simulated, 0.05)
	assert.Equal(t, 0.8, c.TargetPower)
	assert.Equal(t, 200, c.Reps)
	assert.Len(t, c.RunID, 36)
	// d = 1.1 needs 15 per group for 80% power.
	assert.Equal(t, 15, c.RequiredN)
}

func TestBuild_MaxNNotOnGrid(t *testing.T) {
	p := newPresenter(1, fastOptions())
	in := curve.DefaultInputs()
	in.MaxN = 45

	c, err := p.Build(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, c.Points, 4)
	assert.Equal(t, 40, c.Points[3].N)
}

func TestBuild_NoEffect(t *testing.T) {
	p := newPresenter(5, fastOptions())
	in := curve.Inputs{MeanA: 50, MeanB: 50, SD: 10, MaxN: 60}

	c, err := p.Build(context.Background(), in)
	require.NoError(t, err)
	for _, pt := range c.Points {
		assert.InDelta(t, 0.05, pt.Analytical, 1e-6)
	}
	assert.Equal(t, 0, c.RequiredN)
}

func TestBuild_InvalidInputs(t *testing.T) {
	p := newPresenter(1, fastOptions())
	tests := []struct {
		name string
		in   curve.Inputs
	}{
		{"sd zero", curve.Inputs{MeanA: 40, MeanB: 50, SD: 0, MaxN: 100}},
		{"sd negative", curve.Inputs{MeanA: 40, MeanB: 50, SD: -3, MaxN: 100}},
		{"max n one", curve.Inputs{MeanA: 40, MeanB: 50, SD: 10, MaxN: 1}},
		{"max n below start", curve.Inputs{MeanA: 40, MeanB: 50, SD: 10, MaxN: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Build(context.Background(), tt.in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, curve.ErrInvalidInputs), "got %v", err)
		})
	}
}

func TestBuild_InvalidOptions(t *testing.T) {
	opts := fastOptions()
	opts.Alpha = 1.5
	_, err := newPresenter(1, opts).Build(context.Background(), curve.DefaultInputs())
	assert.True(t, errors.Is(err, curve.ErrInvalidInputs))

	opts = fastOptions()
	opts.Reps = 0
	_, err = newPresenter(1, opts).Build(context.Background(), curve.DefaultInputs())
	assert.True(t, errors.Is(err, curve.ErrInvalidInputs))
}

func TestBuild_Cancelled(t *testing.T) {
	p := newPresenter(1, fastOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Build(ctx, curve.DefaultInputs())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPresent_RendersThenWritesTwoSummaryLines(t *testing.T) {
	p := newPresenter(3, fastOptions())
	var rendered bool
	r := curve.RendererFunc(func(w io.Writer, c *curve.Curve) error {
		rendered = true
		_, err := io.WriteString(w, "CHART\n")
		return err
	})

	var buf bytes.Buffer
	c, err := p.Present(context.Background(), &buf, r, curve.DefaultInputs())
	require.NoError(t, err)
	assert.True(t, rendered)

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "CHART", lines[0])
	summary := curve.SummaryLines(c)
	assert.Equal(t, summary[0], lines[1])
	assert.Equal(t, summary[1], lines[2])
	assert.Regexp(t, `^Simulated power at n=30: [01]\.\d{3}$`, lines[1])
	assert.Equal(t, "Analytical power at n=30: 0.987", lines[2])
}

func TestPresent_RenderError(t *testing.T) {
	p := newPresenter(3, fastOptions())
	boom := errors.New("boom")
	r := curve.RendererFunc(func(io.Writer, *curve.Curve) error { return boom })

	var buf bytes.Buffer
	_, err := p.Present(context.Background(), &buf, r, curve.DefaultInputs())
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, buf.String())
}

func TestWriteSummary_Format(t *testing.T) {
	c := &curve.Curve{Reference: curve.Point{N: 30, Simulated: 0.9834, Analytical: 0.98709}}
	var buf bytes.Buffer
	require.NoError(t, curve.WriteSummary(&buf, c))
	assert.Equal(t, "Simulated power at n=30: 0.983\nAnalytical power at n=30: 0.987\n", buf.String())
}

func TestBuild_WritesRunTrace(t *testing.T) {
	dir := t.TempDir()
	runs := logging.NewRunLogger(dir, "debug")
	require.NotNil(t, runs)

	p := curve.NewPresenter(simulation.NewSeededSimulator(9), fastOptions(), nil, runs)
	c, err := p.Build(context.Background(), curve.Inputs{MeanA: 40, MeanB: 45, SD: 10, MaxN: 30})
	require.NoError(t, err)
	runs.Close()

	data, err := os.ReadFile(filepath.Join(dir, logging.RunLogFile))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, c.RunID, entry["run_id"])
	assert.Equal(t, 40.0, entry["mean_a"])
	assert.Equal(t, 30.0, entry["max_n"])
	points, ok := entry["points"].([]any)
	require.True(t, ok)
	assert.Len(t, points, 3)
}

func TestControls(t *testing.T) {
	cs := curve.Controls()
	require.Len(t, cs, 4)

	want := []curve.Control{
		{Key: curve.KeyMeanA, Label: "Mean A", Min: 30, Max: 60, Step: 1, Default: 39},
		{Key: curve.KeyMeanB, Label: "Mean B", Min: 30, Max: 60, Step: 1, Default: 50},
		{Key: curve.KeySD, Label: "Std dev", Min: 5, Max: 20, Step: 1, Default: 10},
		{Key: curve.KeyMaxN, Label: "Max n", Min: 30, Max: 300, Step: 10, Default: 100},
	}
	assert.Equal(t, want, cs)

	// The returned slice is a copy.
	cs[0].Max = 1000
	again := curve.Controls()
	assert.Equal(t, 60.0, again[0].Max)

	in := curve.DefaultInputs()
	for _, c := range want {
		v, err := in.Get(c.Key)
		require.NoError(t, err)
		assert.Equal(t, c.Default, v, c.Key)
	}
}

func TestInputs_SetClampsAndSnaps(t *testing.T) {
	tests := []struct {
		key  string
		v    float64
		want float64
	}{
		{curve.KeyMeanA, 45.4, 45},
		{curve.KeyMeanA, 10, 30},
		{curve.KeyMeanB, 75, 60},
		{curve.KeySD, 4, 5},
		{curve.KeySD, 12.6, 13},
		{curve.KeyMaxN, 144, 140},
		{curve.KeyMaxN, 146, 150},
		{curve.KeyMaxN, 5000, 300},
		{curve.KeyMaxN, 0, 30},
	}
	for _, tt := range tests {
		in := curve.DefaultInputs()
		require.NoError(t, in.Set(tt.key, tt.v))
		got, err := in.Get(tt.key)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s=%v", tt.key, tt.v)
	}

	in := curve.DefaultInputs()
	assert.Error(t, in.Set("alpha", 0.1))
	_, err := in.Get("alpha")
	assert.Error(t, err)
}

func TestInputs_Nudge(t *testing.T) {
	in := curve.DefaultInputs()
	require.NoError(t, in.Nudge(curve.KeyMaxN, 1))
	assert.Equal(t, 110, in.MaxN)
	require.NoError(t, in.Nudge(curve.KeySD, -2))
	assert.Equal(t, 8.0, in.SD)
	require.NoError(t, in.Nudge(curve.KeyMeanB, 20))
	assert.Equal(t, 60.0, in.MeanB)
}
