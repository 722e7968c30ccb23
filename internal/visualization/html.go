package visualization

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/nvandessel/powerplay/internal/curve"
)

// controlView is one slider on the page.
type controlView struct {
	curve.Control
	Value float64
}

// htmlTemplateData holds the data passed to the explorer HTML template.
// SVG is generated from numeric curve data only.
// CurveJSON is pre-sanitized JSON (via json.HTMLEscape) safe for inline <script>.
type htmlTemplateData struct {
	Title       string
	SVG         template.HTML
	Summary     []string
	Controls    []controlView
	Interactive bool
	APIBaseURL  string
	CurveJSON   template.JS
}

// RenderHTML produces a self-contained HTML page with the curve chart, the
// summary lines and the four controls. With an empty apiBaseURL the page is
// a static snapshot and the controls are disabled; otherwise moving a slider
// requests a new curve from apiBaseURL + "/api/curve".
func RenderHTML(c *curve.Curve, apiBaseURL string) ([]byte, error) {
	curveJSON, err := json.Marshal(NewCurveData(c))
	if err != nil {
		return nil, fmt.Errorf("marshal curve data: %w", err)
	}

	tmplBytes, err := templates.ReadFile("templates/explorer.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("read HTML template: %w", err)
	}

	tmpl, err := template.New("explorer").Parse(string(tmplBytes))
	if err != nil {
		return nil, fmt.Errorf("parse HTML template: %w", err)
	}

	var controls []controlView
	for _, ctl := range curve.Controls() {
		v, err := c.Inputs.Get(ctl.Key)
		if err != nil {
			return nil, err
		}
		controls = append(controls, controlView{Control: ctl, Value: v})
	}

	// json.HTMLEscape converts <, >, & to unicode escapes, preventing
	// </script> breakout.
	var escaped bytes.Buffer
	json.HTMLEscape(&escaped, curveJSON)

	lines := curve.SummaryLines(c)
	data := htmlTemplateData{
		Title:       fmt.Sprintf("mean A %g vs mean B %g, sd %g", c.Inputs.MeanA, c.Inputs.MeanB, c.Inputs.SD),
		SVG:         template.HTML(RenderSVG(c, DefaultSVGWidth, DefaultSVGHeight)), // #nosec G203
		Summary:     lines[:],
		Controls:    controls,
		Interactive: apiBaseURL != "",
		APIBaseURL:  apiBaseURL,
		CurveJSON:   template.JS(escaped.String()), // #nosec G203
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("execute HTML template: %w", err)
	}
	return buf.Bytes(), nil
}
