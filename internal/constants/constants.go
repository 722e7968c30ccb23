// Package constants provides named constants used throughout the powerplay codebase.
// This centralizes magic numbers for better maintainability and documentation.
package constants

// Hypothesis test constants
const (
	// DefaultAlpha is the significance level used when none is configured.
	DefaultAlpha = 0.05

	// DefaultRatio is the allocation ratio nobs2/nobs1 for balanced designs.
	DefaultRatio = 1.0

	// MinSampleSize is the smallest per-group sample size for which the
	// two-sample t-test is defined.
	MinSampleSize = 2
)

// Monte Carlo constants
const (
	// DefaultReps is the number of simulated experiments per sample size.
	// Sampling noise in simulated power is roughly 0.5/sqrt(DefaultReps).
	DefaultReps = 500
)

// Power curve sweep constants
const (
	// SweepStart is the first sample size of the power curve.
	SweepStart = 10

	// SweepStep is the distance between consecutive sample sizes on the curve.
	SweepStep = 10

	// ReferenceSampleSize is the sample size at which point estimates are reported.
	ReferenceSampleSize = 30

	// TargetPower is the conventional power level drawn as a reference line.
	TargetPower = 0.8
)

// Curve server constants
const (
	// CurveRequestsPerSecond is the steady rate of curve rebuilds a single
	// client may request from the server.
	CurveRequestsPerSecond = 4.0

	// CurveRequestBurst is how many rebuilds a client may request at once.
	CurveRequestBurst = 8
)

// Control bounds for the interactive surfaces. Means are batting averages.
const (
	MeanMin      = 30.0
	MeanMax      = 60.0
	MeanStep     = 1.0
	MeanADefault = 39.0
	MeanBDefault = 50.0

	SDMin     = 5.0
	SDMax     = 20.0
	SDStep    = 1.0
	SDDefault = 10.0

	MaxNMin     = 30.0
	MaxNMax     = 300.0
	MaxNStep    = 10.0
	MaxNDefault = 100.0
)

// Solver constants for the required-sample-size search.
const (
	// SolverMaxSampleSize caps the per-group sample size the solver will consider.
	SolverMaxSampleSize = 1e8

	// SolverTolerance is the absolute tolerance on sample size for bisection.
	SolverTolerance = 1e-6
)

// Chart dimensions for the terminal renderer.
const (
	DefaultChartWidth  = 60
	DefaultChartHeight = 16
)
