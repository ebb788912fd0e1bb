package viz

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/kaptinlin/jsonrepair"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// DataURIPrefix marks a successful render; anything else the pipeline
// returns is an error message.
const DataURIPrefix = "data:image/png;base64,"

const (
	chartWidth  = 1000
	chartHeight = 600
)

// Fixed visual style: indigo palette on white, gray-800 text.
var (
	colorPrimary    = drawing.ColorFromHex("6366F1")
	colorSecondary  = drawing.ColorFromHex("818CF8")
	colorTertiary   = drawing.ColorFromHex("A5B4FC")
	colorAccent     = drawing.ColorFromHex("E11D48")
	colorBackground = drawing.ColorFromHex("FFFFFF")
	colorText       = drawing.ColorFromHex("1F2937")
	colorAxisText   = drawing.ColorFromHex("6B7280")
)

func seriesColor(i int) drawing.Color {
	switch i % 4 {
	case 0:
		return colorPrimary
	case 1:
		return colorSecondary
	case 2:
		return colorTertiary
	default:
		return colorAccent
	}
}

// Render parses, validates and draws a chart spec, returning a PNG data
// URI.
func Render(code string) (string, error) {
	var spec ChartSpec
	if err := tryUnmarshal(code, &spec); err != nil {
		return "", fmt.Errorf("invalid chart spec: %w", err)
	}
	if err := spec.validate(); err != nil {
		return "", fmt.Errorf("invalid chart spec: %w", err)
	}

	var buf bytes.Buffer
	var err error
	switch spec.Chart {
	case ChartBar:
		err = renderBar(&spec, &buf)
	case ChartLine:
		err = renderLine(&spec, &buf)
	case ChartPie:
		err = renderPie(&spec, &buf)
	}
	if err != nil {
		return "", err
	}

	return DataURIPrefix + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func backgroundStyle() chart.Style {
	return chart.Style{
		FillColor: colorBackground,
		Padding:   chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
	}
}

func titleStyle() chart.Style {
	return chart.Style{
		FontColor: colorText,
		FontSize:  14,
	}
}

func axisStyle() chart.Style {
	return chart.Style{
		FontColor: colorAxisText,
		FontSize:  10,
	}
}

func renderBar(spec *ChartSpec, buf *bytes.Buffer) error {
	series := spec.Series[0]

	values := make([]chart.Value, len(series.Points))
	for i, p := range series.Points {
		values[i] = chart.Value{
			Label: p.Label,
			Value: p.Value,
			Style: chart.Style{
				FillColor:   seriesColor(i % 3),
				StrokeColor: colorBackground,
				StrokeWidth: 1,
			},
		}
	}

	graph := chart.BarChart{
		Title:      spec.Title,
		TitleStyle: titleStyle(),
		Background: backgroundStyle(),
		Canvas:     chart.Style{FillColor: colorBackground},
		Width:      chartWidth,
		Height:     chartHeight,
		BarWidth:   60,
		XAxis:      axisStyle(),
		YAxis: chart.YAxis{
			Name:  spec.YLabel,
			Style: axisStyle(),
		},
		Bars: values,
	}
	return graph.Render(chart.PNG, buf)
}

func renderLine(spec *ChartSpec, buf *bytes.Buffer) error {
	var series []chart.Series
	for i, s := range spec.Series {
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for j, p := range s.Points {
			xs[j] = float64(j)
			ys[j] = p.Value
		}
		series = append(series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			Style: chart.Style{
				StrokeColor: seriesColor(i),
				StrokeWidth: 2.5,
			},
		})
	}

	graph := chart.Chart{
		Title:      spec.Title,
		TitleStyle: titleStyle(),
		Background: backgroundStyle(),
		Canvas:     chart.Style{FillColor: colorBackground},
		Width:      chartWidth,
		Height:     chartHeight,
		XAxis: chart.XAxis{
			Name:  spec.XLabel,
			Style: axisStyle(),
			Ticks: lineTicks(spec.Series[0]),
		},
		YAxis: chart.YAxis{
			Name:  spec.YLabel,
			Style: axisStyle(),
		},
		Series: series,
	}
	if len(spec.Series) > 1 {
		graph.Elements = []chart.Renderable{chart.Legend(&graph)}
	}
	return graph.Render(chart.PNG, buf)
}

// lineTicks labels the x axis with the point labels of the first series,
// thinned to keep the axis readable.
func lineTicks(series Series) []chart.Tick {
	const maxTicks = 20
	step := 1
	if len(series.Points) > maxTicks {
		step = len(series.Points) / maxTicks
	}
	var ticks []chart.Tick
	for i, p := range series.Points {
		if i%step != 0 {
			continue
		}
		label := p.Label
		if label == "" {
			label = fmt.Sprintf("%d", i)
		}
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: label})
	}
	return ticks
}

func renderPie(spec *ChartSpec, buf *bytes.Buffer) error {
	var values []chart.Value
	for _, p := range spec.Series[0].Points {
		if p.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{Label: p.Label, Value: p.Value})
	}
	if len(values) == 0 {
		return fmt.Errorf("pie chart has no positive values")
	}

	graph := chart.PieChart{
		Title:      spec.Title,
		TitleStyle: titleStyle(),
		Background: backgroundStyle(),
		Canvas:     chart.Style{FillColor: colorBackground},
		Width:      chartHeight, // square canvas
		Height:     chartHeight,
		Values:     values,
	}
	return graph.Render(chart.PNG, buf)
}

func tryUnmarshal(data string, v any) error {
	err := json.Unmarshal([]byte(data), v)
	if err == nil {
		return nil
	}

	repaired, err := jsonrepair.JSONRepair(data)
	if err != nil {
		return fmt.Errorf("failed to repair JSON: %v", err)
	}
	return json.Unmarshal([]byte(repaired), v)
}
