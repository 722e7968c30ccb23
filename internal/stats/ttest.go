// Package stats implements the t-distribution machinery behind powerplay's
// power calculations: the independent two-sample t-test and the CDF of the
// noncentral t distribution.
//
// Sample moments and the incomplete beta function come from gonum; this
// package only combines them.
package stats

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat"
)

// ErrSampleTooSmall is returned when a sample has fewer than two observations.
var ErrSampleTooSmall = errors.New("sample must contain at least 2 observations")

// TTestResult is the outcome of a two-sample t-test.
type TTestResult struct {
	// Statistic is the t statistic for mean(a) - mean(b).
	Statistic float64

	// DF is the degrees of freedom of the reference t distribution.
	// Non-integer for the Welch test.
	DF float64

	// PValue is the two-sided p-value. NaN when the statistic is undefined
	// (both samples constant with equal means).
	PValue float64
}

// TTestInd runs an independent two-sample t-test on a and b.
//
// With equalVar set, the pooled-variance Student test is used; otherwise the
// Welch test with Welch-Satterthwaite degrees of freedom.
func TTestInd(a, b []float64, equalVar bool) (TTestResult, error) {
	n1, n2 := float64(len(a)), float64(len(b))
	if len(a) < 2 || len(b) < 2 {
		return TTestResult{}, ErrSampleTooSmall
	}

	m1, v1 := stat.MeanVariance(a, nil)
	m2, v2 := stat.MeanVariance(b, nil)

	var se, df float64
	if equalVar {
		df = n1 + n2 - 2
		pooled := ((n1-1)*v1 + (n2-1)*v2) / df
		se = math.Sqrt(pooled * (1/n1 + 1/n2))
	} else {
		s1, s2 := v1/n1, v2/n2
		se = math.Sqrt(s1 + s2)
		df = welchDF(s1, s2, n1, n2)
	}

	diff := m1 - m2
	if se == 0 {
		if diff == 0 {
			return TTestResult{Statistic: math.NaN(), DF: df, PValue: math.NaN()}, nil
		}
		return TTestResult{Statistic: math.Copysign(math.Inf(1), diff), DF: df, PValue: 0}, nil
	}

	t := diff / se
	return TTestResult{Statistic: t, DF: df, PValue: TwoSidedP(t, df)}, nil
}

// TwoSidedP returns P(|T| >= |t|) for a central t distribution with df
// degrees of freedom, computed directly from the incomplete beta function
// so small p-values keep their precision.
func TwoSidedP(t, df float64) float64 {
	if math.IsNaN(t) || math.IsNaN(df) || df <= 0 {
		return math.NaN()
	}
	if math.IsInf(t, 0) {
		return 0
	}
	return mathext.RegIncBeta(df/2, 0.5, df/(df+t*t))
}

// welchDF is the Welch-Satterthwaite approximation. s1 and s2 are the
// squared standard errors var/n of each sample.
func welchDF(s1, s2, n1, n2 float64) float64 {
	num := (s1 + s2) * (s1 + s2)
	den := s1*s1/(n1-1) + s2*s2/(n2-1)
	if den == 0 {
		return n1 + n2 - 2
	}
	return num / den
}
