package visualization

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nvandessel/powerplay/internal/constants"
	"github.com/nvandessel/powerplay/internal/curve"
)

// Chart palette.
var (
	ColorSimulated  = lipgloss.Color("#F39C12")
	ColorAnalytical = lipgloss.Color("#20B9B4")
	ColorTarget     = lipgloss.Color("#E74C3C")
	ColorAxis       = lipgloss.Color("#5C7A84")
)

// ChartStyles holds the styles of the terminal chart.
type ChartStyles struct {
	Title      lipgloss.Style
	Axis       lipgloss.Style
	Simulated  lipgloss.Style
	Analytical lipgloss.Style
	Target     lipgloss.Style
	Legend     lipgloss.Style
}

// DefaultChartStyles returns the standard chart styles.
func DefaultChartStyles() ChartStyles {
	return ChartStyles{
		Title:      lipgloss.NewStyle().Bold(true),
		Axis:       lipgloss.NewStyle().Foreground(ColorAxis),
		Simulated:  lipgloss.NewStyle().Foreground(ColorSimulated).Bold(true),
		Analytical: lipgloss.NewStyle().Foreground(ColorAnalytical),
		Target:     lipgloss.NewStyle().Foreground(ColorTarget),
		Legend:     lipgloss.NewStyle().Faint(true),
	}
}

// Chart glyphs.
const (
	glyphSimulated  = 'o'
	glyphAnalytical = '*'
	glyphLine       = '.'
	glyphTarget     = '-'
)

// TextRenderer draws a curve as a character chart for terminals.
type TextRenderer struct {
	Width  int
	Height int
	Styles ChartStyles
}

// NewTextRenderer returns a text renderer with the default size and styles.
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{
		Width:  constants.DefaultChartWidth,
		Height: constants.DefaultChartHeight,
		Styles: DefaultChartStyles(),
	}
}

// Render writes the chart to w.
func (r *TextRenderer) Render(w io.Writer, c *curve.Curve) error {
	_, err := io.WriteString(w, r.Chart(c))
	return err
}

type cell uint8

const (
	cellEmpty cell = iota
	cellTarget
	cellLine
	cellAnalytical
	cellSimulated
)

// Chart returns the chart as a string ending in a newline.
func (r *TextRenderer) Chart(c *curve.Curve) string {
	width := max(r.Width, 10)
	height := max(r.Height, 5)

	var b strings.Builder
	b.WriteString(r.Styles.Title.Render(fmt.Sprintf("Power curve: mean A %g, mean B %g, sd %g (d = %.2f, alpha %g, %d reps)",
		c.Inputs.MeanA, c.Inputs.MeanB, c.Inputs.SD, c.Effect, c.Alpha, c.Reps)))
	b.WriteString("\n")

	if len(c.Points) == 0 {
		b.WriteString("(no sample sizes in range)\n")
		return b.String()
	}

	grid := make([][]cell, height)
	for i := range grid {
		grid[i] = make([]cell, width)
	}

	minN := float64(c.Points[0].N)
	maxN := float64(c.Points[len(c.Points)-1].N)
	col := func(n float64) int {
		if maxN == minN {
			return 0
		}
		return int(math.Round((n - minN) / (maxN - minN) * float64(width-1)))
	}
	row := func(p float64) int {
		p = math.Max(0, math.Min(1, p))
		return int(math.Round((1 - p) * float64(height-1)))
	}

	if c.TargetPower > 0 {
		tr := row(c.TargetPower)
		for x := range grid[tr] {
			grid[tr][x] = cellTarget
		}
	}

	for i := 0; i+1 < len(c.Points); i++ {
		p0, p1 := c.Points[i], c.Points[i+1]
		c0, c1 := col(float64(p0.N)), col(float64(p1.N))
		for x := c0; x <= c1; x++ {
			frac := 0.0
			if c1 > c0 {
				frac = float64(x-c0) / float64(c1-c0)
			}
			grid[row(p0.Analytical+frac*(p1.Analytical-p0.Analytical))][x] = cellLine
		}
	}
	for _, pt := range c.Points {
		grid[row(pt.Analytical)][col(float64(pt.N))] = cellAnalytical
	}
	for _, pt := range c.Points {
		grid[row(pt.Simulated)][col(float64(pt.N))] = cellSimulated
	}

	labels := map[int]string{}
	for _, p := range []float64{1, c.TargetPower, 0.5, 0} {
		if _, taken := labels[row(p)]; !taken {
			labels[row(p)] = fmt.Sprintf("%4.2f", p)
		}
	}

	for y, line := range grid {
		label := labels[y]
		if label == "" {
			label = "    "
		}
		b.WriteString(r.Styles.Axis.Render(label + " |"))
		for _, k := range line {
			b.WriteString(r.glyph(k))
		}
		b.WriteString("\n")
	}

	b.WriteString(r.Styles.Axis.Render("     +" + strings.Repeat("-", width)))
	b.WriteString("\n")
	first := fmt.Sprintf("%d", c.Points[0].N)
	last := fmt.Sprintf("n=%d", c.Points[len(c.Points)-1].N)
	pad := max(width-len(first)-len(last), 1)
	b.WriteString(r.Styles.Axis.Render("      " + first + strings.Repeat(" ", pad) + last))
	b.WriteString("\n")

	legend := fmt.Sprintf("%s simulated   %s analytical   %s %.0f%% power",
		r.Styles.Simulated.Render(string(glyphSimulated)),
		r.Styles.Analytical.Render(string(glyphAnalytical)),
		r.Styles.Target.Render(string(glyphTarget)),
		c.TargetPower*100)
	b.WriteString(r.Styles.Legend.Render(legend))
	b.WriteString("\n")

	if c.RequiredN > 0 {
		fmt.Fprintf(&b, "Analytical n for %.0f%% power: %d per group\n", c.TargetPower*100, c.RequiredN)
	} else {
		fmt.Fprintf(&b, "Analytical n for %.0f%% power: unreachable\n", c.TargetPower*100)
	}
	return b.String()
}

func (r *TextRenderer) glyph(k cell) string {
	switch k {
	case cellTarget:
		return r.Styles.Target.Render(string(glyphTarget))
	case cellLine:
		return r.Styles.Analytical.Render(string(glyphLine))
	case cellAnalytical:
		return r.Styles.Analytical.Render(string(glyphAnalytical))
	case cellSimulated:
		return r.Styles.Simulated.Render(string(glyphSimulated))
	}
	return " "
}
