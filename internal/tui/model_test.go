package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nvandessel/powerplay/internal/curve"
	"github.com/nvandessel/powerplay/internal/simulation"
)

func newTestModel(t *testing.T) Model {
	t.Helper()
	opts := curve.DefaultOptions()
	opts.Reps = 20
	p := curve.NewPresenter(simulation.NewSeededSimulator(42), opts, nil, nil)
	in := curve.DefaultInputs()
	in.MaxN = 50
	return NewModel(context.Background(), p, in)
}

func press(t *testing.T, m Model, msg tea.KeyMsg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return nm, cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestNewModel_BuildsInitialCurve(t *testing.T) {
	m := newTestModel(t)

	if m.Err() != nil {
		t.Fatalf("unexpected error: %v", m.Err())
	}
	if m.Curve() == nil {
		t.Fatal("expected an initial curve")
	}
	if got := len(m.Curve().Points); got != 5 {
		t.Errorf("points = %d, want 5", got)
	}
	if m.Selected() != curve.KeyMeanA {
		t.Errorf("selected = %q, want %q", m.Selected(), curve.KeyMeanA)
	}
	if m.Init() != nil {
		t.Error("Init should not return a command")
	}
}

func TestModel_Navigation(t *testing.T) {
	m := newTestModel(t)

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.Selected() != curve.KeyMeanB {
		t.Errorf("after down: %q", m.Selected())
	}
	m, _ = press(t, m, runes("j"))
	m, _ = press(t, m, runes("j"))
	if m.Selected() != curve.KeyMaxN {
		t.Errorf("after j j: %q", m.Selected())
	}
	// Wraps around.
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.Selected() != curve.KeyMeanA {
		t.Errorf("expected wrap to mean_a, got %q", m.Selected())
	}
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	if m.Selected() != curve.KeyMaxN {
		t.Errorf("expected wrap to max_n, got %q", m.Selected())
	}
}

func TestModel_AdjustRebuildsCurve(t *testing.T) {
	m := newTestModel(t)
	first := m.Curve()

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	if m.Inputs().MeanA != 40 {
		t.Errorf("MeanA = %v, want 40", m.Inputs().MeanA)
	}
	if m.Curve() == first {
		t.Error("expected a new curve after adjusting a control")
	}
	if m.Curve().Inputs.MeanA != 40 {
		t.Errorf("curve built for MeanA %v, want 40", m.Curve().Inputs.MeanA)
	}

	// max_n steps by 10 and adds a point.
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = press(t, m, runes("l"))
	if m.Inputs().MaxN != 60 {
		t.Errorf("MaxN = %d, want 60", m.Inputs().MaxN)
	}
	if got := len(m.Curve().Points); got != 6 {
		t.Errorf("points = %d, want 6", got)
	}
}

func TestModel_AdjustClampsAtBounds(t *testing.T) {
	m := newTestModel(t)
	// Select sd, then decrease past the lower bound of 5.
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyDown})
	for range 10 {
		m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	}
	if m.Inputs().SD != 5 {
		t.Errorf("SD = %v, want 5", m.Inputs().SD)
	}

	// At the bound the curve is not rebuilt.
	before := m.Curve()
	m, _ = press(t, m, runes("-"))
	if m.Curve() != before {
		t.Error("curve rebuilt although the value did not change")
	}
}

func TestModel_Resample(t *testing.T) {
	m := newTestModel(t)
	first := m.Curve()

	m, _ = press(t, m, runes("r"))
	if m.Curve() == first {
		t.Error("r should rebuild the curve")
	}
	if m.Inputs() != first.Inputs {
		t.Error("r should keep the inputs")
	}
}

func TestModel_Reset(t *testing.T) {
	m := newTestModel(t)
	initial := m.Inputs()

	m, _ = press(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = press(t, m, runes("d"))
	if m.Inputs() != initial {
		t.Errorf("inputs = %+v, want %+v", m.Inputs(), initial)
	}
}

func TestModel_Help(t *testing.T) {
	m := newTestModel(t)

	m, _ = press(t, m, runes("?"))
	if !m.help.ShowAll {
		t.Error("? key should show full help")
	}
	m, _ = press(t, m, runes("?"))
	if m.help.ShowAll {
		t.Error("? key again should hide full help")
	}
}

func TestModel_Quit(t *testing.T) {
	for _, msg := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}, {Type: tea.KeyEsc}} {
		m := newTestModel(t)
		m, cmd := press(t, m, msg)
		if cmd == nil {
			t.Errorf("%s should return quit command", msg)
		}
		if !m.quitting {
			t.Errorf("%s should mark the model as quitting", msg)
		}
		if m.View() != "" {
			t.Errorf("%s: view should be empty after quitting", msg)
		}
	}
}

func TestModel_View(t *testing.T) {
	m := newTestModel(t)
	view := m.View()

	for _, want := range []string{
		"Mean A", "Mean B", "Std dev", "Max n",
		"[30..60 step 1]", "[30..300 step 10]",
		"Simulated power at n=30:", "Analytical power at n=30: 0.987",
		"n=50",
	} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
	if !strings.Contains(view, "> ") {
		t.Error("expected a cursor on the selected control")
	}
}

func TestModel_WindowSize(t *testing.T) {
	m := newTestModel(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(Model)

	if m.width != 100 {
		t.Errorf("width = %d, want 100", m.width)
	}
	if m.renderer.Width != 88 {
		t.Errorf("chart width = %d, want 88", m.renderer.Width)
	}
}

func TestModel_BuildErrorShown(t *testing.T) {
	opts := curve.DefaultOptions()
	opts.Reps = 0
	p := curve.NewPresenter(simulation.NewSeededSimulator(1), opts, nil, nil)
	m := NewModel(context.Background(), p, curve.DefaultInputs())

	if m.Err() == nil {
		t.Fatal("expected build error")
	}
	if !strings.Contains(m.View(), "error:") {
		t.Error("expected error in view")
	}
}
