package simulation

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/nvandessel/powerplay/internal/constants"
)

// ErrInvalidParams wraps every parameter validation failure.
var ErrInvalidParams = errors.New("invalid simulation parameters")

var validate = validator.New()

// Params defines one simulated power experiment.
type Params struct {
	// N is the sample size drawn for each group.
	N int `json:"n" validate:"gte=2"`

	// MeanA and MeanB are the population means of the two groups.
	MeanA float64 `json:"mean_a"`
	MeanB float64 `json:"mean_b"`

	// SD is the standard deviation shared by both populations.
	SD float64 `json:"sd" validate:"gt=0"`

	// Reps is the number of simulated experiments.
	Reps int `json:"reps" validate:"gte=1"`

	// Alpha is the rejection threshold for the p-value.
	Alpha float64 `json:"alpha" validate:"gt=0,lt=1"`

	// Welch selects the unequal-variance test. The default is the
	// pooled-variance Student test.
	Welch bool `json:"welch,omitempty"`
}

// DefaultParams returns the reference scenario at n=30.
func DefaultParams() Params {
	return Params{
		N:     constants.ReferenceSampleSize,
		MeanA: constants.MeanADefault,
		MeanB: constants.MeanBDefault,
		SD:    constants.SDDefault,
		Reps:  constants.DefaultReps,
		Alpha: constants.DefaultAlpha,
	}
}

// Validate checks the parameters against the domain constraints of the test.
func (p Params) Validate() error {
	if math.IsNaN(p.MeanA) || math.IsNaN(p.MeanB) || math.IsInf(p.MeanA, 0) || math.IsInf(p.MeanB, 0) {
		return fmt.Errorf("%w: means must be finite", ErrInvalidParams)
	}
	if math.IsNaN(p.SD) || math.IsNaN(p.Alpha) || math.IsInf(p.SD, 0) {
		return fmt.Errorf("%w: sd and alpha must be finite", ErrInvalidParams)
	}
	if err := validate.Struct(p); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s must satisfy %s=%s, got %v", ErrInvalidParams, fe.Field(), fe.Tag(), fe.Param(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}

// Effect returns the standardized effect size (MeanB - MeanA) / SD.
func (p Params) Effect() float64 {
	return (p.MeanB - p.MeanA) / p.SD
}
