// Package power computes the closed-form statistical power of the independent
// two-sample t-test under the normal-theory (noncentral t) assumption, and
// solves for the sample size that reaches a target power.
//
// Everything here is pure and deterministic: identical inputs give
// bit-identical outputs.
package power

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/nvandessel/powerplay/internal/constants"
	"github.com/nvandessel/powerplay/internal/stats"
)

var (
	ErrInvalidAlpha      = errors.New("alpha must be in (0, 1)")
	ErrInvalidSampleSize = errors.New("sample size must be at least 2 per group")
	ErrInvalidRatio      = errors.New("ratio must be positive")
	ErrInvalidEffect     = errors.New("effect size must be finite")
	ErrInvalidSD         = errors.New("standard deviation must be positive")
	ErrInvalidPower      = errors.New("target power must be in (0, 1)")
	ErrUnreachablePower  = errors.New("target power is unreachable for this design")
)

// Alternative names the alternative hypothesis of the test.
type Alternative string

const (
	// TwoSided tests mean(B) != mean(A).
	TwoSided Alternative = "two-sided"

	// Larger tests a positive effect.
	Larger Alternative = "larger"

	// Smaller tests a negative effect.
	Smaller Alternative = "smaller"
)

// Valid returns true if the alternative is a recognized value.
func (a Alternative) Valid() bool {
	switch a {
	case TwoSided, Larger, Smaller:
		return true
	}
	return false
}

// String returns the string representation of the alternative.
func (a Alternative) String() string {
	return string(a)
}

// ParseAlternative maps a flag value to an Alternative. Empty means two-sided.
func ParseAlternative(s string) (Alternative, error) {
	if s == "" {
		return TwoSided, nil
	}
	a := Alternative(s)
	if !a.Valid() {
		return "", fmt.Errorf("invalid alternative %q (valid: two-sided, larger, smaller)", s)
	}
	return a, nil
}

// Design describes a two-sample t-test design.
type Design struct {
	// Effect is the standardized mean difference (meanB - meanA) / sd.
	Effect float64 `json:"effect"`

	// NObs1 is the sample size of the first group. Fractional values are
	// allowed so the solver can work on a continuous scale.
	NObs1 float64 `json:"nobs1"`

	// Alpha is the significance level.
	Alpha float64 `json:"alpha"`

	// Ratio is nobs2 / nobs1.
	Ratio float64 `json:"ratio"`

	// Alternative is the alternative hypothesis.
	Alternative Alternative `json:"alternative"`
}

// NewDesign returns a balanced two-sided design at the default alpha.
func NewDesign(effect, nobs1 float64) Design {
	return Design{
		Effect:      effect,
		NObs1:       nobs1,
		Alpha:       constants.DefaultAlpha,
		Ratio:       constants.DefaultRatio,
		Alternative: TwoSided,
	}
}

// Validate checks the design parameters.
func (d Design) Validate() error {
	if math.IsNaN(d.Effect) || math.IsInf(d.Effect, 0) {
		return ErrInvalidEffect
	}
	if !(d.Alpha > 0 && d.Alpha < 1) {
		return fmt.Errorf("%w, got %v", ErrInvalidAlpha, d.Alpha)
	}
	if !(d.Ratio > 0) || math.IsInf(d.Ratio, 0) {
		return fmt.Errorf("%w, got %v", ErrInvalidRatio, d.Ratio)
	}
	if !(d.NObs1 >= constants.MinSampleSize) || math.IsInf(d.NObs1, 0) {
		return fmt.Errorf("%w, got %v", ErrInvalidSampleSize, d.NObs1)
	}
	if d.df() <= 0 {
		return fmt.Errorf("%w: design has %v degrees of freedom", ErrInvalidSampleSize, d.df())
	}
	if d.Alternative != "" && !d.Alternative.Valid() {
		return fmt.Errorf("invalid alternative %q", d.Alternative)
	}
	return nil
}

// Power returns the power of the design.
func (d Design) Power() (float64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	return d.power(), nil
}

// DF returns the degrees of freedom nobs1 + nobs2 - 2.
func (d Design) DF() float64 {
	return d.df()
}

// Noncentrality returns effect * sqrt(1 / (1/nobs1 + 1/nobs2)).
func (d Design) Noncentrality() float64 {
	nobs2 := d.NObs1 * d.Ratio
	return d.Effect * math.Sqrt(1/(1/d.NObs1+1/nobs2))
}

func (d Design) df() float64 {
	return d.NObs1 + d.NObs1*d.Ratio - 2
}

// power assumes a validated design.
func (d Design) power() float64 {
	df := d.df()
	nc := d.Noncentrality()
	central := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}

	switch d.Alternative {
	case Larger:
		crit := central.Quantile(1 - d.Alpha)
		return stats.NonCentralTSurvival(crit, df, nc)
	case Smaller:
		crit := central.Quantile(d.Alpha)
		return stats.NonCentralTCDF(crit, df, nc)
	default:
		crit := central.Quantile(1 - d.Alpha/2)
		p := stats.NonCentralTSurvival(crit, df, nc) + stats.NonCentralTCDF(-crit, df, nc)
		return math.Min(p, 1)
	}
}

// TTestIndPower returns the power of an independent two-sample t-test with
// the given standardized effect size, first-group sample size, significance
// level and allocation ratio nobs2/nobs1.
func TTestIndPower(effect, nobs1, alpha, ratio float64, alt Alternative) (float64, error) {
	return Design{
		Effect:      effect,
		NObs1:       nobs1,
		Alpha:       alpha,
		Ratio:       ratio,
		Alternative: alt,
	}.Power()
}

// EffectSize returns the standardized difference (meanB - meanA) / sd.
func EffectSize(meanA, meanB, sd float64) (float64, error) {
	if !(sd > 0) || math.IsInf(sd, 0) {
		return 0, fmt.Errorf("%w, got %v", ErrInvalidSD, sd)
	}
	return (meanB - meanA) / sd, nil
}
