package main

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/nvandessel/powerplay/internal/power"
	"github.com/nvandessel/powerplay/internal/simulation"
)

func TestSimulateCmd(t *testing.T) {
	isolateHome(t, t.TempDir())

	out, err := runCmd(t, newSimulateCmd(), "simulate", "--seed", "7", "--reps", "300")
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}
	if !strings.HasPrefix(out, "Simulated power at n=30: ") {
		t.Errorf("unexpected first line: %q", out)
	}
	if !strings.Contains(out, "analytical power: 0.987") {
		t.Errorf("expected analytical comparison:\n%s", out)
	}
	if !strings.Contains(out, "of 300") || !strings.Contains(out, "test: pooled") {
		t.Errorf("expected repetition count and test name:\n%s", out)
	}
}

func TestSimulateCmd_JSON(t *testing.T) {
	isolateHome(t, t.TempDir())

	out, err := runCmd(t, newSimulateCmd(), "simulate", "--json", "--seed", "11", "--reps", "400", "--n", "20", "--welch")
	if err != nil {
		t.Fatalf("simulate failed: %v", err)
	}

	var got struct {
		Result     simulation.Result `json:"result"`
		Effect     float64           `json:"effect"`
		Analytical float64           `json:"analytical"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.Result.Params.N != 20 || !got.Result.Params.Welch || got.Result.Params.Reps != 400 {
		t.Errorf("flags not applied: %+v", got.Result.Params)
	}
	if math.Abs(got.Result.Power-got.Analytical) > 4*0.025 {
		t.Errorf("simulated %.3f too far from analytical %.3f", got.Result.Power, got.Analytical)
	}
}

func TestSimulateCmd_InvalidParams(t *testing.T) {
	isolateHome(t, t.TempDir())

	for _, args := range [][]string{
		{"simulate", "--sd", "0"},
		{"simulate", "--n", "1"},
		{"simulate", "--alpha", "1.5"},
		{"simulate", "--reps", "0"},
	} {
		_, err := runCmd(t, newSimulateCmd(), args...)
		if !errors.Is(err, simulation.ErrInvalidParams) {
			t.Errorf("%v: expected ErrInvalidParams, got %v", args, err)
		}
	}
}

func TestPowerCmd(t *testing.T) {
	isolateHome(t, t.TempDir())

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"defaults", []string{"power"}, "Analytical power at n=30: 0.987"},
		{"effect flag", []string{"power", "--effect", "0.5", "--n", "64"}, "Analytical power at n=64: 0.801"},
		{"no difference", []string{"power", "--mean-a", "50", "--mean-b", "50"}, "Analytical power at n=30: 0.050"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCmd(t, newPowerCmd(), tt.args...)
			if err != nil {
				t.Fatalf("power failed: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, out)
			}
		})
	}
}

func TestPowerCmd_JSON(t *testing.T) {
	isolateHome(t, t.TempDir())

	out, err := runCmd(t, newPowerCmd(), "power", "--json", "--effect", "0.5", "--n", "30", "--ratio", "2")
	if err != nil {
		t.Fatalf("power failed: %v", err)
	}
	var got struct {
		Design power.Design `json:"design"`
		Power  float64      `json:"power"`
		DF     float64      `json:"df"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.DF != 88 {
		t.Errorf("df = %v, want 88", got.DF)
	}
	if got.Design.Alternative != power.TwoSided {
		t.Errorf("alternative = %q, want two-sided", got.Design.Alternative)
	}
	if got.Power <= 0 || got.Power >= 1 {
		t.Errorf("power out of range: %v", got.Power)
	}
}

func TestPowerCmd_Errors(t *testing.T) {
	isolateHome(t, t.TempDir())

	for _, args := range [][]string{
		{"power", "--alternative", "sideways"},
		{"power", "--n", "1"},
		{"power", "--sd", "0"},
		{"power", "--ratio", "0"},
	} {
		if _, err := runCmd(t, newPowerCmd(), args...); err == nil {
			t.Errorf("%v: expected error", args)
		}
	}
}

func TestSolveCmd(t *testing.T) {
	isolateHome(t, t.TempDir())

	out, err := runCmd(t, newSolveCmd(), "solve", "--effect", "0.5")
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if !strings.Contains(out, "Required sample size for 80% power: 64 per group") {
		t.Errorf("unexpected output:\n%s", out)
	}

	out, err = runCmd(t, newSolveCmd(), "solve", "--json", "--effect", "0.8")
	if err != nil {
		t.Fatalf("solve --json failed: %v", err)
	}
	var got struct {
		NObs1 int     `json:"nobs1"`
		Power float64 `json:"power"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if got.NObs1 != 26 || got.Power != 0.8 {
		t.Errorf("got %+v, want nobs1 26 at power 0.8", got)
	}
}

func TestSolveCmd_Unreachable(t *testing.T) {
	isolateHome(t, t.TempDir())

	_, err := runCmd(t, newSolveCmd(), "solve", "--mean-a", "50", "--mean-b", "50")
	if !errors.Is(err, power.ErrUnreachablePower) {
		t.Errorf("expected ErrUnreachablePower, got %v", err)
	}
}
