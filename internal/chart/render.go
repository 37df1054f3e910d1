package chart

import (
	"github.com/klytics/sheetviz/internal/aggregate"
	"github.com/klytics/sheetviz/internal/sheet"
)

// Font is a Chart.js font block.
type Font struct {
	Size   int    `json:"size,omitempty"`
	Weight string `json:"weight,omitempty"`
}

// Padding is a Chart.js padding block.
type Padding struct {
	Top    int `json:"top"`
	Bottom int `json:"bottom"`
}

// TitleOptions configures the chart or axis caption.
type TitleOptions struct {
	Display bool     `json:"display"`
	Text    string   `json:"text"`
	Font    Font     `json:"font"`
	Padding *Padding `json:"padding,omitempty"`
}

// Axis configures one cartesian scale.
type Axis struct {
	Display bool         `json:"display"`
	Stacked bool         `json:"stacked"`
	Title   TitleOptions `json:"title"`
}

// Scales holds both cartesian axes.
type Scales struct {
	X Axis `json:"x"`
	Y Axis `json:"y"`
}

// Legend configures the legend plugin.
type Legend struct {
	Position string `json:"position"`
}

// DataLabels configures the data labels plugin.
type DataLabels struct {
	Color  string `json:"color"`
	Font   Font   `json:"font"`
	Anchor string `json:"anchor"`
}

// Plugins groups plugin options.
type Plugins struct {
	Legend     Legend       `json:"legend"`
	Title      TitleOptions `json:"title"`
	DataLabels DataLabels   `json:"datalabels"`
}

// ChartOptions is the Chart.js options block.
type ChartOptions struct {
	Responsive          bool    `json:"responsive"`
	MaintainAspectRatio bool    `json:"maintainAspectRatio"`
	Plugins             Plugins `json:"plugins"`
	Scales              Scales  `json:"scales"`
}

// Config is a complete Chart.js chart definition.
type Config struct {
	Type    string       `json:"type"`
	Data    Data         `json:"data"`
	Options ChartOptions `json:"options"`
}

// Request is everything needed to draw one chart.
type Request struct {
	Type    Type
	Sheet   *sheet.Sheet
	Config  aggregate.Config
	Palette PaletteKind
	// Titles overrides captions. Empty fields keep the current caption, or
	// the generated default on the first render.
	Titles Titles
}

// Handle owns a live chart between renders. The zero value is an empty
// handle ready for its first Render.
type Handle struct {
	kind   Type
	config *Config
	titles Titles
}

// Rendered reports whether the handle holds a chart.
func (h *Handle) Rendered() bool { return h != nil && h.config != nil }

// Config returns the current chart, or nil before the first render.
func (h *Handle) Config() *Config { return h.config }

// Type returns the kind of the current chart, or "" before the first render.
func (h *Handle) Type() Type { return h.kind }

// Titles returns the current captions.
func (h *Handle) Titles() Titles { return h.titles }

// Reset discards the current chart.
func (h *Handle) Reset() { *h = Handle{} }

// Render draws req into h and returns the resulting configuration plus any
// advisories. The first render fills in generated captions; later renders
// keep the captions the handle already has unless req overrides them, and
// only swap the type, data and axis layout.
func Render(h *Handle, req Request) (*Config, []string) {
	t := req.Type
	if t == "" {
		t = Bar
	}
	data := BuildData(t, req.Sheet, req.Config, req.Palette)

	if h.config == nil {
		h.titles = DefaultTitles(req.Sheet.Header(), req.Config)
		h.config = newConfig(data)
	} else {
		h.config.Data = data
	}
	h.titles = h.titles.merge(req.Titles)
	h.kind = t

	cfg := h.config
	cfg.Type = t.Base()
	cfg.Options.Plugins.Title.Text = h.titles.Title
	cfg.Options.Scales.X.Title.Text = h.titles.XAxis
	cfg.Options.Scales.Y.Title.Text = h.titles.YAxis

	showAxes := !t.Circular()
	cfg.Options.Scales.X.Display = showAxes
	cfg.Options.Scales.Y.Display = showAxes
	cfg.Options.Scales.X.Stacked = t.Stacked()
	cfg.Options.Scales.Y.Stacked = t.Stacked()

	return cfg, Advisories(t, req.Config)
}

func newConfig(data Data) *Config {
	axisTitle := TitleOptions{Display: true, Font: Font{Size: 14}}
	return &Config{
		Data: data,
		Options: ChartOptions{
			Responsive:          true,
			MaintainAspectRatio: false,
			Plugins: Plugins{
				Legend: Legend{Position: "top"},
				Title: TitleOptions{
					Display: true,
					Font:    Font{Size: 18},
					Padding: &Padding{Top: 10, Bottom: 20},
				},
				DataLabels: DataLabels{
					Color:  "#000",
					Font:   Font{Weight: "bold"},
					Anchor: "center",
				},
			},
			Scales: Scales{
				X: Axis{Title: axisTitle},
				Y: Axis{Title: axisTitle},
			},
		},
	}
}
