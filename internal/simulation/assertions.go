package simulation

import (
	"math"
	"testing"
)

// AssertPowerInRange asserts that the simulated power is a proportion.
func AssertPowerInRange(t testing.TB, r Result) {
	t.Helper()
	if math.IsNaN(r.Power) || r.Power < 0 || r.Power > 1 {
		t.Errorf("AssertPowerInRange: n=%d power %.6f not in [0, 1]", r.Params.N, r.Power)
	}
	if r.Rejections < 0 || r.Rejections > r.Params.Reps {
		t.Errorf("AssertPowerInRange: n=%d rejections %d not in [0, %d]", r.Params.N, r.Rejections, r.Params.Reps)
	}
}

// AssertNearAnalytical asserts that the simulated power lies within k binomial
// standard errors of the analytical power. The standard error is taken at the
// analytical value so a simulated 0 or 1 still gets a non-zero band.
func AssertNearAnalytical(t testing.TB, r Result, analytical float64, k float64) {
	t.Helper()
	se := math.Sqrt(analytical * (1 - analytical) / float64(r.Params.Reps))
	// One repetition's worth of slack for powers pinned near 0 or 1.
	band := k*se + 1/float64(r.Params.Reps)
	if d := math.Abs(r.Power - analytical); d > band {
		t.Errorf("AssertNearAnalytical: n=%d simulated %.4f vs analytical %.4f differ by %.4f > %.4f",
			r.Params.N, r.Power, analytical, d, band)
	}
}

// AssertNonDecreasing asserts that vals never drop by more than slack from
// one element to the next. Simulated curves need a slack of a few standard
// errors; analytical curves can use zero.
func AssertNonDecreasing(t testing.TB, vals []float64, slack float64) {
	t.Helper()
	for i := 1; i < len(vals); i++ {
		if vals[i] < vals[i-1]-slack {
			t.Errorf("AssertNonDecreasing: index %d: %.6f < previous %.6f (slack %.4f)", i, vals[i], vals[i-1], slack)
		}
	}
}

// AssertMeanNear asserts that the mean of vals is within tol of want.
func AssertMeanNear(t testing.TB, vals []float64, want, tol float64) {
	t.Helper()
	if len(vals) == 0 {
		t.Fatal("AssertMeanNear: no values")
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	mean := sum / float64(len(vals))
	if math.Abs(mean-want) > tol {
		t.Errorf("AssertMeanNear: mean %.6f not within %.4f of %.6f", mean, tol, want)
	}
}
