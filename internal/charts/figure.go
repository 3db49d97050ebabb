// Package charts builds the report figures and renders them to SVG and PNG.
//
// Figures are plain data. SVG turns a figure into standalone markup and a
// Renderer rasterizes it for embedding in exported workbooks.
package charts

import (
	"fmt"
	"strconv"
)

// Kind selects the figure layout.
type Kind string

const (
	KindBar Kind = "bar"
	KindPie Kind = "pie"
	KindMix Kind = "mix"
)

// Metric is the aggregate a figure plots.
type Metric string

const (
	MetricVolume  Metric = "Volumen"
	MetricClients Metric = "CCC"
)

// ParseMetric accepts the metric name used in URLs and flags.
func ParseMetric(s string) (Metric, error) {
	switch s {
	case "", "volumen", "Volumen":
		return MetricVolume, nil
	case "ccc", "CCC":
		return MetricClients, nil
	}
	return "", fmt.Errorf("unknown metric %q", s)
}

// Fixed colors.
const (
	ColorYear2024   = "#1f77b4"
	ColorYear2025   = "#ff7f0e"
	ColorOtherYear  = "#2ca02c"
	ColorGapUp      = "#2E7D32"
	ColorGapDown    = "#C62828"
	ColorGapMissing = "#757575"
)

// palette is the default series color cycle.
var palette = []string{
	"#636efa", "#EF553B", "#00cc96", "#ab63fa", "#FFA15A",
	"#19d3f3", "#FF6692", "#B6E880", "#FF97FF", "#FECB52",
}

// Point is one bar of a series.
type Point struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// Series is a named group of bars sharing a color.
type Series struct {
	Name   string  `json:"name"`
	Color  string  `json:"color"`
	Points []Point `json:"points"`
}

// Slice is one pie sector.
type Slice struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Pie is a titled donut chart.
type Pie struct {
	Title  string  `json:"title"`
	Slices []Slice `json:"slices"`
}

// GapRow compares one channel between the two most recent years.
type GapRow struct {
	Channel  string  `json:"channel"`
	Current  float64 `json:"current"`
	Previous float64 `json:"previous"`
	Gap      float64 `json:"gap"`
	HasGap   bool    `json:"has_gap"`
}

// Text formats the gap as a percentage, or "s/d" when there is no base.
func (g GapRow) Text() string {
	if !g.HasGap {
		return "s/d"
	}
	return strconv.FormatFloat(g.Gap*100, 'f', 1, 64) + "%"
}

// Color is green for growth, red for decline and grey without a base.
func (g GapRow) Color() string {
	switch {
	case !g.HasGap:
		return ColorGapMissing
	case g.Gap >= 0:
		return ColorGapUp
	default:
		return ColorGapDown
	}
}

// Figure is a chart ready to render.
type Figure struct {
	Name       string   `json:"name"`
	Kind       Kind     `json:"kind"`
	Title      string   `json:"title"`
	XTitle     string   `json:"x_title,omitempty"`
	YTitle     string   `json:"y_title,omitempty"`
	Categories []string `json:"categories,omitempty"`
	Series     []Series `json:"series,omitempty"`
	Pies       []Pie    `json:"pies,omitempty"`
	Gap        []GapRow `json:"gap,omitempty"`
	Width      int      `json:"width"`
	Height     int      `json:"height"`
}

// Empty reports whether the figure has nothing to draw.
func (f Figure) Empty() bool {
	return len(f.Series) == 0 && len(f.Pies) == 0
}

func (f Figure) size() (int, int) {
	w, h := f.Width, f.Height
	if w <= 0 {
		w = 1400
	}
	if h <= 0 {
		h = 700
	}
	return w, h
}
