package chart

import (
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ImageSize is the pixel size of an exported chart.
type ImageSize struct {
	Width  int
	Height int
}

// DefaultImageSize is used when no size is given.
var DefaultImageSize = ImageSize{Width: 1024, Height: 640}

// WritePNG draws the chart held by h as a PNG on a white background.
func WritePNG(h *Handle, w io.Writer, size ImageSize) error {
	if !h.Rendered() {
		return fmt.Errorf("no chart to export — render a chart first")
	}
	if size.Width <= 0 || size.Height <= 0 {
		size = DefaultImageSize
	}
	cfg := h.Config()
	if len(cfg.Data.Labels) == 0 || len(cfg.Data.Datasets) == 0 {
		return fmt.Errorf("chart has no data to draw")
	}

	for _, ds := range cfg.Data.Datasets {
		for i, v := range ds.Data {
			if math.IsInf(v, 0) || math.IsNaN(v) {
				return fmt.Errorf("cannot draw %q: %s for %q is not a finite number — check the value column for overflowing cells", ds.Label, strconv.FormatFloat(v, 'g', -1, 64), label(cfg.Data.Labels, i))
			}
		}
	}

	var r renderable
	switch h.Type() {
	case Pie, Doughnut:
		if !anyPositive(cfg.Data.Datasets[0].Data) {
			return fmt.Errorf("nothing to draw — every %s slice is zero or negative", h.Type())
		}
		r = circular(h.Type(), cfg, size)
	case StackedBar:
		if !anyNonZero(cfg) {
			r = bars(cfg, size)
			break
		}
		r = stackedBars(cfg, size)
	case Line:
		r = lines(cfg, size)
	default:
		r = bars(cfg, size)
	}

	if err := r.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("could not render chart image: %w", err)
	}
	return nil
}

// renderable is satisfied by every go-chart chart kind.
type renderable interface {
	Render(rp gochart.RendererProvider, w io.Writer) error
}

var white = gochart.Style{FillColor: drawing.ColorWhite}

func circular(t Type, cfg *Config, size ImageSize) renderable {
	ds := cfg.Data.Datasets[0]
	total := 0.0
	for _, v := range ds.Data {
		total += v
	}

	values := make([]gochart.Value, 0, len(ds.Data))
	for i, v := range ds.Data {
		if v <= 0 {
			continue
		}
		label := cfg.Data.Labels[i]
		if dl := DataLabel(t, v, total); dl != "" {
			label = fmt.Sprintf("%s: %s", label, flatten(dl))
		}
		values = append(values, gochart.Value{
			Label: label,
			Value: v,
			Style: gochart.Style{
				FillColor:   cssColor(ds.BackgroundColor.At(i)),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 1,
			},
		})
	}

	if t == Doughnut {
		return &gochart.DonutChart{
			Title:      cfg.Options.Plugins.Title.Text,
			Width:      size.Width,
			Height:     size.Height,
			Background: white,
			Values:     values,
		}
	}
	return &gochart.PieChart{
		Title:      cfg.Options.Plugins.Title.Text,
		Width:      size.Width,
		Height:     size.Height,
		Background: white,
		Values:     values,
	}
}

// bars draws one bar per label and dataset, grouped by label.
func bars(cfg *Config, size ImageSize) renderable {
	multi := len(cfg.Data.Datasets) > 1
	var values []gochart.Value
	for i, label := range cfg.Data.Labels {
		for _, ds := range cfg.Data.Datasets {
			name := label
			if multi {
				name = fmt.Sprintf("%s (%s)", label, ds.Label)
			}
			values = append(values, gochart.Value{
				Label: name,
				Value: at(ds.Data, i),
				Style: gochart.Style{
					FillColor:   cssColor(ds.BackgroundColor.At(i)),
					StrokeColor: cssColor(ds.BorderColor),
					StrokeWidth: float64(ds.BorderWidth),
				},
			})
		}
	}
	return &gochart.BarChart{
		Title:      cfg.Options.Plugins.Title.Text,
		Width:      size.Width,
		Height:     size.Height,
		Background: white,
		BarWidth:   barWidth(size.Width, len(values)),
		YAxis:      gochart.YAxis{Name: cfg.Options.Scales.Y.Title.Text, Range: flatRange(cfg)},
		Bars:       values,
	}
}

func stackedBars(cfg *Config, size ImageSize) renderable {
	stacks := make([]gochart.StackedBar, 0, len(cfg.Data.Labels))
	for i, label := range cfg.Data.Labels {
		sb := gochart.StackedBar{Name: label}
		for _, ds := range cfg.Data.Datasets {
			sb.Values = append(sb.Values, gochart.Value{
				Label: ds.Label,
				Value: at(ds.Data, i),
				Style: gochart.Style{
					FillColor:   cssColor(ds.BackgroundColor.At(i)),
					StrokeColor: cssColor(ds.BorderColor),
					StrokeWidth: float64(ds.BorderWidth),
				},
			})
		}
		stacks = append(stacks, sb)
	}
	return &gochart.StackedBarChart{
		Title:      cfg.Options.Plugins.Title.Text,
		Width:      size.Width,
		Height:     size.Height,
		Background: white,
		BarSpacing: 20,
		Bars:       stacks,
	}
}

func lines(cfg *Config, size ImageSize) renderable {
	xs := make([]float64, len(cfg.Data.Labels))
	ticks := make([]gochart.Tick, len(cfg.Data.Labels))
	for i, l := range cfg.Data.Labels {
		xs[i] = float64(i)
		ticks[i] = gochart.Tick{Value: float64(i), Label: l}
	}
	// go-chart needs two points to draw a line.
	if len(xs) == 1 {
		xs = append(xs, 1)
	}

	series := make([]gochart.Series, 0, len(cfg.Data.Datasets))
	for _, ds := range cfg.Data.Datasets {
		ys := append([]float64(nil), ds.Data...)
		if len(ys) == 1 {
			ys = append(ys, ys[0])
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    ds.Label,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeColor: cssColor(ds.BorderColor),
				StrokeWidth: 2,
				DotColor:    cssColor(ds.BorderColor),
				DotWidth:    3,
			},
		})
	}

	c := &gochart.Chart{
		Title:      cfg.Options.Plugins.Title.Text,
		Width:      size.Width,
		Height:     size.Height,
		Background: gochart.Style{FillColor: drawing.ColorWhite, Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: cfg.Options.Scales.X.Title.Text, Ticks: ticks},
		YAxis:      gochart.YAxis{Name: cfg.Options.Scales.Y.Title.Text, Range: flatRange(cfg)},
		Series:     series,
	}
	c.Elements = []gochart.Renderable{gochart.Legend(c)}
	return c
}

// flatRange returns an explicit y range when every value is the same,
// since go-chart refuses to scale a zero-height range. It returns nil
// otherwise.
func flatRange(cfg *Config) gochart.Range {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, ds := range cfg.Data.Datasets {
		for _, v := range ds.Data {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if math.IsInf(lo, 1) || lo != hi {
		return nil
	}
	lo, hi = math.Min(lo, 0), math.Max(hi, 0)
	if lo == hi {
		hi = 1
	}
	return &gochart.ContinuousRange{Min: lo, Max: hi}
}

func anyNonZero(cfg *Config) bool {
	for _, ds := range cfg.Data.Datasets {
		for _, v := range ds.Data {
			if v != 0 {
				return true
			}
		}
	}
	return false
}

func anyPositive(values []float64) bool {
	for _, v := range values {
		if v > 0 {
			return true
		}
	}
	return false
}

func barWidth(width, bars int) int {
	if bars == 0 {
		return 40
	}
	w := width / (bars * 2)
	return int(math.Max(8, math.Min(60, float64(w))))
}

func at(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func label(labels []string, i int) string {
	if i < len(labels) {
		return labels[i]
	}
	return ""
}

func flatten(s string) string {
	out := []rune(s)
	for i, r := range out {
		if r == '\n' {
			out[i] = ' '
		}
	}
	return string(out)
}

var rgbaPattern = regexp.MustCompile(`rgba\((\d+),\s*(\d+),\s*(\d+),\s*([\d.]+)\)`)

// cssColor converts an rgba() string produced by this package into a
// drawing color. Anything unparseable is drawn black.
func cssColor(s string) drawing.Color {
	m := rgbaPattern.FindStringSubmatch(s)
	if m == nil {
		return drawing.ColorBlack
	}
	r, _ := strconv.Atoi(m[1])
	g, _ := strconv.Atoi(m[2])
	b, _ := strconv.Atoi(m[3])
	a, _ := strconv.ParseFloat(m[4], 64)
	return drawing.Color{R: uint8(r), G: uint8(g), B: uint8(b), A: uint8(math.Round(a * 255))}
}
