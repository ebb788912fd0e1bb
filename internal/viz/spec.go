// Package viz turns a textual query result into a rendered chart via a
// constrained chart-spec DSL rather than free-form generated code.
package viz

import (
	"fmt"
	"strings"

	"github.com/sqlpilot/sqlpilot/internal/llm"
)

const (
	ChartBar  = "bar"
	ChartLine = "line"
	ChartPie  = "pie"
)

// Bounds on what a generated spec may ask for.
const (
	maxSeries          = 8
	maxPointsPerSeries = 200
	maxLabelLen        = 80
	maxTitleLen        = 160
)

// ChartSpec is the declarative plotting DSL the model emits. It is
// validated and drawn by the renderer; nothing in it is executed.
type ChartSpec struct {
	Chart  string   `json:"chart"`
	Title  string   `json:"title"`
	XLabel string   `json:"x_label"`
	YLabel string   `json:"y_label"`
	Series []Series `json:"series"`
}

type Series struct {
	Name   string  `json:"name"`
	Points []Point `json:"points"`
}

type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

func (r *ChartSpec) validate() error {
	switch r.Chart {
	case ChartBar, ChartLine, ChartPie:
	default:
		return fmt.Errorf("unknown chart type %q", r.Chart)
	}
	if len(r.Series) == 0 {
		return fmt.Errorf("no series")
	}
	if len(r.Series) > maxSeries {
		return fmt.Errorf("too many series: %d", len(r.Series))
	}
	for i, s := range r.Series {
		if len(s.Points) == 0 {
			return fmt.Errorf("series %d has no points", i)
		}
		if len(s.Points) > maxPointsPerSeries {
			return fmt.Errorf("series %d has too many points: %d", i, len(s.Points))
		}
	}
	r.Title = clip(r.Title, maxTitleLen)
	r.XLabel = clip(r.XLabel, maxLabelLen)
	r.YLabel = clip(r.YLabel, maxLabelLen)
	for i := range r.Series {
		r.Series[i].Name = clip(r.Series[i].Name, maxLabelLen)
		for j := range r.Series[i].Points {
			r.Series[i].Points[j].Label = clip(r.Series[i].Points[j].Label, maxLabelLen)
		}
	}
	return nil
}

func clip(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) > max {
		return s[:max]
	}
	return s
}

type visualizationCode struct {
	Code string `json:"code"`
}

type visualizationAdvice struct {
	Advice string `json:"advice"`
}

func objectSchema(properties map[string]any, required []string) map[string]any {
	return map[string]any{
		"type":                 "object",
		"properties":           properties,
		"required":             required,
		"additionalProperties": false,
	}
}

var codeSchema = &llm.Schema{
	Name: "visualization_code",
	Parameters: objectSchema(map[string]any{
		"code": map[string]string{
			"type":        "string",
			"description": "A single JSON chart specification document",
		},
	}, []string{"code"}),
}

var adviceSchema = &llm.Schema{
	Name: "visualization_advice",
	Parameters: objectSchema(map[string]any{
		"advice": map[string]string{
			"type":        "string",
			"description": "Short charting guidance for the result",
		},
	}, []string{"advice"}),
}
