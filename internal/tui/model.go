// Package tui provides the interactive terminal explorer for power curves.
//
// The explorer binds the four curve controls to key presses. Every change
// re-runs the presenter synchronously inside the bubbletea event loop and
// redraws the chart and the summary lines. Models are not safe for use
// outside that loop.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nvandessel/powerplay/internal/curve"
	"github.com/nvandessel/powerplay/internal/visualization"
)

// Model is the bubbletea model of the explorer.
type Model struct {
	ctx       context.Context
	presenter *curve.Presenter
	renderer  *visualization.TextRenderer
	controls  []curve.Control
	initial   curve.Inputs

	inputs   curve.Inputs
	selected int
	curve    *curve.Curve
	err      error
	runs     int

	keys     KeyMap
	help     help.Model
	styles   Styles
	width    int
	quitting bool
}

// NewModel creates an explorer starting at in and builds the first curve.
func NewModel(ctx context.Context, p *curve.Presenter, in curve.Inputs) Model {
	m := Model{
		ctx:       ctx,
		presenter: p,
		renderer:  visualization.NewTextRenderer(),
		controls:  curve.Controls(),
		initial:   in,
		inputs:    in,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		styles:    DefaultStyles(),
	}
	m.refresh()
	return m
}

// Inputs returns the current control values.
func (m Model) Inputs() curve.Inputs {
	return m.inputs
}

// Curve returns the most recently built curve, or nil after an error.
func (m Model) Curve() *curve.Curve {
	return m.curve
}

// Err returns the error of the most recent build.
func (m Model) Err() error {
	return m.err
}

// Selected returns the key of the selected control.
func (m Model) Selected() string {
	return m.controls[m.selected].Key
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		m.renderer.Width = max(msg.Width-12, 20)
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Up):
			m.selected = (m.selected + len(m.controls) - 1) % len(m.controls)
		case key.Matches(msg, m.keys.Down):
			m.selected = (m.selected + 1) % len(m.controls)
		case key.Matches(msg, m.keys.Left):
			m.adjust(-1)
		case key.Matches(msg, m.keys.Right):
			m.adjust(1)
		case key.Matches(msg, m.keys.Resample):
			m.refresh()
		case key.Matches(msg, m.keys.Reset):
			if m.inputs != m.initial {
				m.inputs = m.initial
				m.refresh()
			}
		}
	}
	return m, nil
}

// adjust moves the selected control by steps and rebuilds the curve when
// the value changed.
func (m *Model) adjust(steps int) {
	before := m.inputs
	if err := m.inputs.Nudge(m.controls[m.selected].Key, steps); err != nil {
		m.err = err
		return
	}
	if m.inputs != before {
		m.refresh()
	}
}

func (m *Model) refresh() {
	c, err := m.presenter.Build(m.ctx, m.inputs)
	m.runs++
	if err != nil {
		m.curve = nil
		m.err = err
		return
	}
	m.curve = c
	m.err = nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("powerplay: simulated vs analytical power"))
	b.WriteString("\n\n")

	for i, ctl := range m.controls {
		v, _ := m.inputs.Get(ctl.Key)
		cursor := "  "
		label := fmt.Sprintf("%-8s", ctl.Label)
		if i == m.selected {
			cursor = "> "
			label = m.styles.Selected.Render(label)
		}
		line := fmt.Sprintf("%s%s %s %s", cursor, label,
			m.styles.Value.Render(fmt.Sprintf("%4g", v)),
			m.styles.Bounds.Render(fmt.Sprintf("[%g..%g step %g]", ctl.Min, ctl.Max, ctl.Step)))
		b.WriteString(m.styles.Control.Render(line))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	switch {
	case m.err != nil:
		b.WriteString(m.styles.Error.Render("error: " + m.err.Error()))
		b.WriteString("\n")
	case m.curve != nil:
		b.WriteString(m.renderer.Chart(m.curve))
		var summary strings.Builder
		// Writes to a strings.Builder cannot fail.
		_ = curve.WriteSummary(&summary, m.curve)
		b.WriteString(m.styles.Summary.Render(strings.TrimRight(summary.String(), "\n")))
		b.WriteString("\n")
		b.WriteString(m.styles.Status.Render(fmt.Sprintf("run %d, %d reps per point", m.runs, m.curve.Reps)))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

// Run starts the explorer on the terminal and blocks until the user quits or
// ctx is cancelled. It returns the final control values.
func Run(ctx context.Context, p *curve.Presenter, in curve.Inputs, opts ...tea.ProgramOption) (curve.Inputs, error) {
	opts = append([]tea.ProgramOption{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)
	prog := tea.NewProgram(NewModel(ctx, p, in), opts...)
	final, err := prog.Run()
	if err != nil {
		return in, fmt.Errorf("running explorer: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return in, fmt.Errorf("unexpected model type from bubbletea: %T", final)
	}
	return m.inputs, nil
}
