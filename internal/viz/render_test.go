package viz

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"
)

const barSpec = `{
	"chart": "bar",
	"title": "Total sales by artist",
	"y_label": "Sales",
	"series": [
		{
			"name": "Sales",
			"points": [
				{"label": "Led Zeppelin", "value": 86.13},
				{"label": "Queen", "value": 36.63}
			]
		}
	]
}`

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestRenderBar(t *testing.T) {
	uri, err := Render(barSpec)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(uri, DataURIPrefix) {
		t.Fatalf("expected data URI, got %q", uri[:min(len(uri), 40)])
	}

	// round-trip: the encoded payload must be valid image bytes
	data, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, DataURIPrefix))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("empty image")
	}
	if !bytes.HasPrefix(data, pngMagic) {
		t.Errorf("not a PNG")
	}
}

func TestRenderLineMultiSeries(t *testing.T) {
	spec := `{
		"chart": "line",
		"title": "Sales per year",
		"x_label": "Year",
		"y_label": "Sales",
		"series": [
			{"name": "Led Zeppelin", "points": [
				{"label": "2009", "value": 22.77},
				{"label": "2010", "value": 21.78},
				{"label": "2011", "value": 2.97}
			]},
			{"name": "Queen", "points": [
				{"label": "2009", "value": 4.95},
				{"label": "2010", "value": 0.99},
				{"label": "2011", "value": 10.89}
			]}
		]
	}`

	uri, err := Render(spec)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(uri, DataURIPrefix) {
		t.Errorf("expected data URI")
	}
}

func TestRenderPie(t *testing.T) {
	spec := `{
		"chart": "pie",
		"title": "Share",
		"series": [
			{"name": "Share", "points": [
				{"label": "Rock", "value": 60},
				{"label": "Jazz", "value": 25},
				{"label": "Other", "value": 15}
			]}
		]
	}`

	uri, err := Render(spec)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !strings.HasPrefix(uri, DataURIPrefix) {
		t.Errorf("expected data URI")
	}
}

func TestRenderRepairsSpecJSON(t *testing.T) {
	// trailing comma, as models like to emit
	spec := `{"chart": "bar", "title": "t", "series": [{"name": "s", "points": [{"label": "a", "value": 1},]}],}`

	if _, err := Render(spec); err != nil {
		t.Errorf("expected repairable spec to render, got %v", err)
	}
}

func TestRenderInvalidSpecs(t *testing.T) {
	tests := []struct {
		name string
		spec string
	}{
		{"unknown chart", `{"chart": "scatter3d", "series": [{"name": "s", "points": [{"label": "a", "value": 1}]}]}`},
		{"no series", `{"chart": "bar", "series": []}`},
		{"empty series", `{"chart": "bar", "series": [{"name": "s", "points": []}]}`},
		{"not json at all", `import matplotlib.pyplot as plt`},
		{"pie without positive values", `{"chart": "pie", "series": [{"name": "s", "points": [{"label": "a", "value": -1}]}]}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Render(tc.spec); err == nil {
				t.Errorf("expected error")
			}
		})
	}
}
