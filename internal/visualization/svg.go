package visualization

import (
	"fmt"
	"math"
	"strings"

	"github.com/nvandessel/powerplay/internal/curve"
)

// Default SVG canvas size in pixels.
const (
	DefaultSVGWidth  = 720
	DefaultSVGHeight = 420
)

// Series colors, matching the terminal palette.
const (
	svgSimulated  = "#F39C12"
	svgAnalytical = "#20B9B4"
	svgTarget     = "#E74C3C"
	svgAxis       = "#5C7A84"
)

const (
	svgMarginLeft   = 56
	svgMarginRight  = 150
	svgMarginTop    = 36
	svgMarginBottom = 48
)

// RenderSVG draws c as a standalone SVG line/marker chart: sample size on
// the x-axis, power on the y-axis, simulated and analytical series and a
// dashed target power line.
func RenderSVG(c *curve.Curve, width, height int) string {
	plotW := float64(width - svgMarginLeft - svgMarginRight)
	plotH := float64(height - svgMarginTop - svgMarginBottom)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" font-family="Helvetica, Arial, sans-serif" font-size="12">`+"\n",
		width, height, width, height)
	fmt.Fprintf(&b, `  <rect width="%d" height="%d" fill="white"/>`+"\n", width, height)
	fmt.Fprintf(&b, `  <text x="%d" y="20" font-size="14" font-weight="bold">Power: mean A %g vs mean B %g, sd %g (d = %.2f)</text>`+"\n",
		svgMarginLeft, c.Inputs.MeanA, c.Inputs.MeanB, c.Inputs.SD, c.Effect)

	if len(c.Points) == 0 {
		b.WriteString("</svg>\n")
		return b.String()
	}

	minN := float64(c.Points[0].N)
	maxN := float64(c.Points[len(c.Points)-1].N)
	x := func(n float64) float64 {
		if maxN == minN {
			return svgMarginLeft + plotW/2
		}
		return svgMarginLeft + (n-minN)/(maxN-minN)*plotW
	}
	y := func(p float64) float64 {
		p = math.Max(0, math.Min(1, p))
		return svgMarginTop + (1-p)*plotH
	}

	// Axes and grid.
	fmt.Fprintf(&b, `  <g stroke="%s" fill="none">`+"\n", svgAxis)
	fmt.Fprintf(&b, `    <line x1="%d" y1="%.1f" x2="%d" y2="%.1f"/>`+"\n", svgMarginLeft, y(0), svgMarginLeft, y(1))
	fmt.Fprintf(&b, `    <line x1="%d" y1="%.1f" x2="%.1f" y2="%.1f"/>`+"\n", svgMarginLeft, y(0), svgMarginLeft+plotW, y(0))
	b.WriteString("  </g>\n")
	for i := 0; i <= 5; i++ {
		p := float64(i) / 5
		fmt.Fprintf(&b, `  <line x1="%d" y1="%.1f" x2="%.1f" y2="%.1f" stroke="#EEEEEE"/>`+"\n", svgMarginLeft, y(p), svgMarginLeft+plotW, y(p))
		fmt.Fprintf(&b, `  <text x="%d" y="%.1f" text-anchor="end" fill="%s">%.1f</text>`+"\n", svgMarginLeft-6, y(p)+4, svgAxis, p)
	}
	every := int(math.Ceil(float64(len(c.Points)) / 10))
	for i, pt := range c.Points {
		if i%every != 0 && i != len(c.Points)-1 {
			continue
		}
		fmt.Fprintf(&b, `  <text x="%.1f" y="%.1f" text-anchor="middle" fill="%s">%d</text>`+"\n", x(float64(pt.N)), y(0)+18, svgAxis, pt.N)
	}
	fmt.Fprintf(&b, `  <text x="%.1f" y="%d" text-anchor="middle">Sample size per group</text>`+"\n", svgMarginLeft+plotW/2, height-8)
	fmt.Fprintf(&b, `  <text x="14" y="%.1f" text-anchor="middle" transform="rotate(-90 14 %.1f)">Power</text>`+"\n", svgMarginTop+plotH/2, svgMarginTop+plotH/2)

	if c.TargetPower > 0 {
		fmt.Fprintf(&b, `  <line class="target" x1="%d" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-dasharray="6 4"/>`+"\n",
			svgMarginLeft, y(c.TargetPower), svgMarginLeft+plotW, y(c.TargetPower), svgTarget)
	}

	series := func(class, color string, value func(curve.Point) float64) {
		pts := make([]string, len(c.Points))
		for i, pt := range c.Points {
			pts[i] = fmt.Sprintf("%.1f,%.1f", x(float64(pt.N)), y(value(pt)))
		}
		fmt.Fprintf(&b, `  <polyline class="%s" points="%s" fill="none" stroke="%s" stroke-width="2"/>`+"\n", class, strings.Join(pts, " "), color)
		for _, pt := range c.Points {
			fmt.Fprintf(&b, `  <circle cx="%.1f" cy="%.1f" r="3" fill="%s"><title>n=%d: %.3f</title></circle>`+"\n",
				x(float64(pt.N)), y(value(pt)), color, pt.N, value(pt))
		}
	}
	series("analytical", svgAnalytical, func(p curve.Point) float64 { return p.Analytical })
	series("simulated", svgSimulated, func(p curve.Point) float64 { return p.Simulated })

	// Legend.
	lx := float64(width - svgMarginRight + 16)
	legend := []struct {
		label, color, dash string
	}{
		{"Simulated", svgSimulated, ""},
		{"Analytical", svgAnalytical, ""},
		{fmt.Sprintf("%.0f%% power", c.TargetPower*100), svgTarget, ` stroke-dasharray="6 4"`},
	}
	for i, item := range legend {
		ly := float64(svgMarginTop + 12 + i*20)
		fmt.Fprintf(&b, `  <line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s" stroke-width="2"%s/>`+"\n", lx, ly, lx+24, ly, item.color, item.dash)
		fmt.Fprintf(&b, `  <text x="%.1f" y="%.1f">%s</text>`+"\n", lx+30, ly+4, item.label)
	}

	b.WriteString("</svg>\n")
	return b.String()
}
