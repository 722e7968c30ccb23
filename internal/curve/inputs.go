package curve

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-playground/validator/v10"

	"github.com/nvandessel/powerplay/internal/constants"
)

// ErrInvalidInputs wraps every input validation failure.
var ErrInvalidInputs = errors.New("invalid curve inputs")

var validate = validator.New()

// Control keys, shared by the terminal and browser surfaces and the
// /api/curve query string.
const (
	KeyMeanA = "mean_a"
	KeyMeanB = "mean_b"
	KeySD    = "sd"
	KeyMaxN  = "max_n"
)

// Inputs are the four adjustable parameters of a power curve.
type Inputs struct {
	MeanA float64 `json:"mean_a"`
	MeanB float64 `json:"mean_b"`
	SD    float64 `json:"sd" validate:"gt=0"`
	MaxN  int     `json:"max_n" validate:"gte=2"`
}

// DefaultInputs returns the initial control values.
func DefaultInputs() Inputs {
	return Inputs{
		MeanA: constants.MeanADefault,
		MeanB: constants.MeanBDefault,
		SD:    constants.SDDefault,
		MaxN:  int(constants.MaxNDefault),
	}
}

// Validate checks the inputs against the domain constraints.
func (in Inputs) Validate() error {
	for _, v := range []float64{in.MeanA, in.MeanB, in.SD} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: means and sd must be finite", ErrInvalidInputs)
		}
	}
	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("%w: %s must satisfy %s=%s, got %v", ErrInvalidInputs, fe.Field(), fe.Tag(), fe.Param(), fe.Value())
		}
		return fmt.Errorf("%w: %v", ErrInvalidInputs, err)
	}
	return nil
}

// Get returns the value of the control with the given key.
func (in Inputs) Get(key string) (float64, error) {
	switch key {
	case KeyMeanA:
		return in.MeanA, nil
	case KeyMeanB:
		return in.MeanB, nil
	case KeySD:
		return in.SD, nil
	case KeyMaxN:
		return float64(in.MaxN), nil
	}
	return 0, fmt.Errorf("unknown control %q", key)
}

// Set assigns v to the control with the given key, clamped to the control's
// bounds and snapped to its step.
func (in *Inputs) Set(key string, v float64) error {
	c, ok := LookupControl(key)
	if !ok {
		return fmt.Errorf("unknown control %q", key)
	}
	v = c.Snap(v)
	switch key {
	case KeyMeanA:
		in.MeanA = v
	case KeyMeanB:
		in.MeanB = v
	case KeySD:
		in.SD = v
	case KeyMaxN:
		in.MaxN = int(v)
	}
	return nil
}

// Nudge moves the control by steps increments of its step size.
func (in *Inputs) Nudge(key string, steps int) error {
	c, ok := LookupControl(key)
	if !ok {
		return fmt.Errorf("unknown control %q", key)
	}
	cur, err := in.Get(key)
	if err != nil {
		return err
	}
	return in.Set(key, cur+float64(steps)*c.Step)
}

// Control describes one bounded, stepped numeric input.
type Control struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Step    float64 `json:"step"`
	Default float64 `json:"default"`
}

// Snap clamps v to [Min, Max] and rounds it to the nearest step from Min.
func (c Control) Snap(v float64) float64 {
	if math.IsNaN(v) {
		return c.Default
	}
	v = math.Max(c.Min, math.Min(c.Max, v))
	steps := math.Round((v - c.Min) / c.Step)
	return math.Min(c.Max, c.Min+steps*c.Step)
}

var controls = []Control{
	{Key: KeyMeanA, Label: "Mean A", Min: constants.MeanMin, Max: constants.MeanMax, Step: constants.MeanStep, Default: constants.MeanADefault},
	{Key: KeyMeanB, Label: "Mean B", Min: constants.MeanMin, Max: constants.MeanMax, Step: constants.MeanStep, Default: constants.MeanBDefault},
	{Key: KeySD, Label: "Std dev", Min: constants.SDMin, Max: constants.SDMax, Step: constants.SDStep, Default: constants.SDDefault},
	{Key: KeyMaxN, Label: "Max n", Min: constants.MaxNMin, Max: constants.MaxNMax, Step: constants.MaxNStep, Default: constants.MaxNDefault},
}

// Controls returns the four controls in display order.
func Controls() []Control {
	out := make([]Control, len(controls))
	copy(out, controls)
	return out
}

// LookupControl returns the control with the given key.
func LookupControl(key string) (Control, bool) {
	for _, c := range controls {
		if c.Key == key {
			return c, true
		}
	}
	return Control{}, false
}
