// Package chart turns aggregated series into chart configurations: Chart.js
// JSON for browsers and PNG images for files.
package chart

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/klytics/sheetviz/internal/aggregate"
	"github.com/klytics/sheetviz/internal/sheet"
)

// Type is a chart kind as offered to the user.
type Type string

const (
	Bar        Type = "bar"
	Line       Type = "line"
	Pie        Type = "pie"
	Doughnut   Type = "doughnut"
	StackedBar Type = "stackedBar"
)

// Types lists the supported chart kinds.
func Types() []Type { return []Type{Bar, Line, Pie, Doughnut, StackedBar} }

// ParseType validates a chart kind name. An empty name is Bar.
func ParseType(s string) (Type, error) {
	if s == "" {
		return Bar, nil
	}
	for _, t := range Types() {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown chart type %q — available: bar, line, pie, doughnut, stackedBar", s)
}

// Circular reports whether the chart draws slices rather than axes.
func (t Type) Circular() bool { return t == Pie || t == Doughnut }

// Stacked reports whether datasets are stacked on shared axes.
func (t Type) Stacked() bool { return t == StackedBar }

// Base is the Chart.js type the chart is drawn with.
func (t Type) Base() string {
	if t == StackedBar {
		return string(Bar)
	}
	return string(t)
}

// Fill is a dataset background: one color for the whole dataset or one
// color per data point.
type Fill struct {
	Solid    string
	PerPoint []string
}

// MarshalJSON emits a string for solid fills and an array otherwise.
func (f Fill) MarshalJSON() ([]byte, error) {
	if f.PerPoint != nil {
		return json.Marshal(f.PerPoint)
	}
	return json.Marshal(f.Solid)
}

// At returns the color of data point i.
func (f Fill) At(i int) string {
	if f.PerPoint != nil && i < len(f.PerPoint) {
		return f.PerPoint[i]
	}
	return f.Solid
}

// Dataset is one plotted series.
type Dataset struct {
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor Fill      `json:"backgroundColor"`
	BorderColor     string    `json:"borderColor"`
	BorderWidth     int       `json:"borderWidth"`
}

// MarshalJSON writes non-finite values as null, as JSON.stringify does.
func (d Dataset) MarshalJSON() ([]byte, error) {
	type plain Dataset
	data := make([]*float64, len(d.Data))
	for i, v := range d.Data {
		if !math.IsInf(v, 0) && !math.IsNaN(v) {
			v := v
			data[i] = &v
		}
	}
	return json.Marshal(struct {
		plain
		Data []*float64 `json:"data"`
	}{plain(d), data})
}

// Data is the Chart.js data block.
type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Titles holds the editable chart captions.
type Titles struct {
	Title string `json:"title" yaml:"title,omitempty"`
	XAxis string `json:"xAxis" yaml:"x_axis,omitempty"`
	YAxis string `json:"yAxis" yaml:"y_axis,omitempty"`
}

// merge returns t with every non-empty field of o applied on top.
func (t Titles) merge(o Titles) Titles {
	if o.Title != "" {
		t.Title = o.Title
	}
	if o.XAxis != "" {
		t.XAxis = o.XAxis
	}
	if o.YAxis != "" {
		t.YAxis = o.YAxis
	}
	return t
}

// DefaultTitles derives captions from the selected columns, e.g.
// "Sales and Cost vs. Month".
func DefaultTitles(header []string, cfg aggregate.Config) Titles {
	labelName := columnName(header, cfg.LabelColumn)
	names := make([]string, 0, len(cfg.ValueColumns))
	for _, c := range cfg.ValueColumns {
		names = append(names, columnName(header, c))
	}

	y := "Value"
	switch {
	case len(names) > 1:
		y = "Aggregated values"
	case len(names) == 1 && names[0] != "":
		y = names[0]
	}
	return Titles{
		Title: strings.Join(names, " and ") + " vs. " + labelName,
		XAxis: labelName,
		YAxis: y,
	}
}

func columnName(header []string, i int) string {
	if i < 0 || i >= len(header) {
		return ""
	}
	return header[i]
}

// BuildData aggregates s with cfg and converts the result into datasets
// colored with palette p.
func BuildData(t Type, s *sheet.Sheet, cfg aggregate.Config, p PaletteKind) Data {
	series := aggregate.Aggregate(s, cfg)
	return DataFromSeries(t, s.Header(), series, cfg, p)
}

// DataFromSeries converts an already aggregated series into datasets.
// Circular charts keep only the first value column.
func DataFromSeries(t Type, header []string, series aggregate.Series, cfg aggregate.Config, p PaletteKind) Data {
	labels := series.LabelStrings()
	out := Data{Labels: labels, Datasets: []Dataset{}}

	for i, col := range cfg.ValueColumns {
		if t.Circular() && i > 0 {
			break
		}
		values := series.Column(i)
		swatch := p.Swatch(i)

		var fill Fill
		switch {
		case t.Circular():
			fill.PerPoint = make([]string, len(labels))
			for j := range labels {
				fill.PerPoint[j] = p.Swatch(j).Fill()
			}
		case p == PaletteSequential && !t.Stacked():
			fill.PerPoint = SequentialColors(values, sequentialBase)
		default:
			fill.Solid = swatch.Fill()
		}

		border := swatch.Border()
		if p == PaletteSequential {
			border = sequentialBase.Border()
		}

		name := columnName(header, col)
		if name == "" {
			name = fmt.Sprintf("Values %d", i+1)
		}

		out.Datasets = append(out.Datasets, Dataset{
			Label:           name,
			Data:            values,
			BackgroundColor: fill,
			BorderColor:     border,
			BorderWidth:     1,
		})
	}
	return out
}

// Advisories reports configuration problems the caller may want to show.
// They never stop a chart from rendering.
func Advisories(t Type, cfg aggregate.Config) []string {
	var out []string
	if t.Stacked() && len(cfg.ValueColumns) < 2 {
		out = append(out, "stacked bar charts need at least two value columns")
	}
	if t.Circular() && len(cfg.ValueColumns) > 1 {
		out = append(out, fmt.Sprintf("%s charts show one value column; %d extra column(s) ignored", t, len(cfg.ValueColumns)-1))
	}
	return out
}

// Percentages returns each value as a percentage of the total. A zero total
// yields zeros.
func Percentages(values []float64) []float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	out := make([]float64, len(values))
	if total == 0 {
		return out
	}
	for i, v := range values {
		out[i] = v / total * 100
	}
	return out
}

// DataLabel is the caption drawn on a data point. Circular charts show the
// value and its share, hiding slices under 3%; other charts show non-zero
// values only.
func DataLabel(t Type, value, total float64) string {
	if t.Circular() {
		if total == 0 {
			return ""
		}
		pct := math.Round(value/total*1000) / 10
		if pct < 3 {
			return ""
		}
		return fmt.Sprintf("%s\n(%.1f%%)", sheet.FormatNumber(value), pct)
	}
	if value == 0 || math.IsNaN(value) {
		return ""
	}
	return sheet.FormatNumber(value)
}
