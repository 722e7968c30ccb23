// Package simulation estimates the power of the independent two-sample t-test
// by Monte Carlo.
//
// Each repetition draws two normal samples of size N with the configured
// means and a shared standard deviation, runs the t-test, and counts a
// rejection when p < alpha. Simulated power is rejections / reps, so its
// sampling noise shrinks like 1/sqrt(reps).
//
// The random source is always passed in. A Simulator built from a fixed seed
// reproduces its draws exactly within one build; across builds only the
// statistical bounds hold, and tests assert those, not exact values.
//
// Usage:
//
//	sim := simulation.NewSeededSimulator(42)
//	res, err := sim.Power(simulation.Params{
//	    N: 30, MeanA: 39, MeanB: 50, SD: 10, Reps: 500, Alpha: 0.05,
//	})
//	simulation.AssertNearAnalytical(t, res, 0.987, 4)
package simulation
