// Package visualization renders power curves in various output formats and
// serves them through a local interactive page.
package visualization

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/nvandessel/powerplay/internal/curve"
)

// Format specifies the output format for curve rendering.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatSVG  Format = "svg"
	FormatHTML Format = "html"
)

// Formats lists the supported formats in help order.
var Formats = []Format{FormatText, FormatJSON, FormatSVG, FormatHTML}

// ParseFormat validates a format name. An empty name selects text.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatText, nil
	}
	for _, f := range Formats {
		if Format(s) == f {
			return f, nil
		}
	}
	return "", fmt.Errorf("invalid format %q (valid: text, json, svg, html)", s)
}

// NewRenderer returns the renderer for format f.
func NewRenderer(f Format) (curve.Renderer, error) {
	switch f {
	case FormatText, "":
		return NewTextRenderer(), nil
	case FormatJSON:
		return curve.RendererFunc(writeJSON), nil
	case FormatSVG:
		return curve.RendererFunc(func(w io.Writer, c *curve.Curve) error {
			_, err := io.WriteString(w, RenderSVG(c, DefaultSVGWidth, DefaultSVGHeight))
			return err
		}), nil
	case FormatHTML:
		return curve.RendererFunc(func(w io.Writer, c *curve.Curve) error {
			html, err := RenderHTML(c, "")
			if err != nil {
				return err
			}
			_, err = w.Write(html)
			return err
		}), nil
	}
	return nil, fmt.Errorf("invalid format %q", f)
}

// CurveData is the JSON shape of a curve, shared by the json format and the
// /api/curve endpoint.
type CurveData struct {
	RunID       string        `json:"run_id"`
	Inputs      curve.Inputs  `json:"inputs"`
	Effect      float64       `json:"effect"`
	Alpha       float64       `json:"alpha"`
	Reps        int           `json:"reps"`
	TargetPower float64       `json:"target_power"`
	RequiredN   int           `json:"required_n"`
	Points      []curve.Point `json:"points"`
	Reference   curve.Point   `json:"reference"`
	Summary     []string      `json:"summary"`
	SVG         string        `json:"svg,omitempty"`
}

// NewCurveData converts c to its JSON shape without the SVG.
func NewCurveData(c *curve.Curve) CurveData {
	lines := curve.SummaryLines(c)
	points := c.Points
	if points == nil {
		points = []curve.Point{}
	}
	return CurveData{
		RunID:       c.RunID,
		Inputs:      c.Inputs,
		Effect:      c.Effect,
		Alpha:       c.Alpha,
		Reps:        c.Reps,
		TargetPower: c.TargetPower,
		RequiredN:   c.RequiredN,
		Points:      points,
		Reference:   c.Reference,
		Summary:     lines[:],
	}
}

// RenderJSON returns the indented JSON representation of c.
func RenderJSON(c *curve.Curve) ([]byte, error) {
	data, err := json.MarshalIndent(NewCurveData(c), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal curve: %w", err)
	}
	return data, nil
}

func writeJSON(w io.Writer, c *curve.Curve) error {
	data, err := RenderJSON(c)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}
