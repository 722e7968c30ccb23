package power

import (
	"fmt"
	"math"

	"github.com/nvandessel/powerplay/internal/constants"
)

// RequiredSampleSize returns the first-group sample size at which the design
// reaches the target power. d.NObs1 is ignored.
//
// The result is continuous; use SampleSizeCeil for a whole number of
// observations. ErrUnreachablePower is returned when no sample size up to
// constants.SolverMaxSampleSize reaches the target, which is always the case
// for a zero effect and a target above alpha.
func RequiredSampleSize(d Design, target float64) (float64, error) {
	if !(target > 0 && target < 1) {
		return 0, fmt.Errorf("%w, got %v", ErrInvalidPower, target)
	}

	lo := float64(constants.MinSampleSize)
	d.NObs1 = lo
	if err := d.Validate(); err != nil {
		return 0, err
	}
	if d.power() >= target {
		return lo, nil
	}

	hi := lo
	for {
		hi *= 2
		if hi > constants.SolverMaxSampleSize {
			return 0, fmt.Errorf("%w: target %.3f, effect %.4f", ErrUnreachablePower, target, d.Effect)
		}
		d.NObs1 = hi
		if d.power() >= target {
			break
		}
		lo = hi
	}

	for hi-lo > constants.SolverTolerance {
		mid := lo + (hi-lo)/2
		d.NObs1 = mid
		if d.power() >= target {
			hi = mid
		} else {
			lo = mid
		}
	}
	return hi, nil
}

// SampleSizeCeil rounds a continuous sample size up to whole observations,
// ignoring solver noise just above an integer.
func SampleSizeCeil(n float64) int {
	return int(math.Ceil(n - 10*constants.SolverTolerance))
}
