package chart

import (
	"github.com/spf13/cobra"

	"github.com/klytics/sheetviz/internal/chart"
	"github.com/klytics/sheetviz/internal/config"
	"github.com/klytics/sheetviz/internal/formats/xlsx"
	"github.com/klytics/sheetviz/internal/preset"
	"github.com/klytics/sheetviz/internal/sheet"
)

// Flags are the chart options shared by "chart" and "watch start".
type Flags struct {
	Sheet       string
	Label       string
	Values      []string
	MonthColumn string
	Month       string
	Sort        string
	Type        string
	Palette     string
	Title       string
	XTitle      string
	YTitle      string
	Preset      string
}

// Register adds the chart flags to cmd.
func (f *Flags) Register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.Sheet, "sheet", "", "Sheet to chart (default: first sheet)")
	fs.StringVar(&f.Label, "label", "", "Label column name or index (default: first column)")
	fs.StringSliceVar(&f.Values, "values", nil, "Value columns to sum, by name or index (default: second column)")
	fs.StringVar(&f.MonthColumn, "month-column", "", "Month column name or index (default: detected from month.keywords)")
	fs.StringVar(&f.Month, "month", "", "Keep only rows whose month cell equals this value (\"all\" disables the filter)")
	fs.StringVar(&f.Sort, "sort", "", "Sort labels by the first value column: none, asc, desc (default: chart.sort)")
	fs.StringVar(&f.Type, "type", "", "Chart type: bar, line, pie, doughnut, stackedBar (default: chart.type)")
	fs.StringVar(&f.Palette, "palette", "", "Palette: default, ocean, sunset, forest, sequential (default: chart.palette)")
	fs.StringVar(&f.Title, "title", "", "Chart title (default: \"<values> vs. <label>\")")
	fs.StringVar(&f.XTitle, "x-title", "", "X axis title (default: label column)")
	fs.StringVar(&f.YTitle, "y-title", "", "Y axis title (default: value column)")
	fs.StringVar(&f.Preset, "preset", "", "Start from a saved preset name or a preset .yaml file")
}

// Prepare reads the sheet and resolves the request to render. Explicit flags
// win over the preset, which wins over the configured defaults.
func (f *Flags) Prepare(cmd *cobra.Command, path string, cfg *config.Config) (*sheet.Sheet, chart.Request, error) {
	opts := chart.Options{
		Type:          cfg.Chart.Type,
		Palette:       cfg.Chart.Palette,
		Sort:          cfg.Chart.Sort,
		MonthKeywords: cfg.Month.Keywords,
	}
	sheetName := f.Sheet
	changed := cmd.Flags().Changed

	var p *preset.Preset
	if f.Preset != "" {
		loaded, err := loadPreset(f.Preset)
		if err != nil {
			return nil, chart.Request{}, err
		}
		p = &loaded
		opts = mergePreset(opts, p.Options())
		if !changed("sheet") && p.Sheet != "" {
			sheetName = p.Sheet
		}
	}

	s, err := xlsx.OpenSheet(path, sheetName)
	if err != nil {
		return nil, chart.Request{}, err
	}
	if p != nil && !changed("label") && !changed("values") && !changed("month-column") {
		if _, err := p.Resolve(s); err != nil {
			return nil, chart.Request{}, err
		}
	}

	for _, o := range []struct {
		flag string
		dst  *string
		val  string
	}{
		{"label", &opts.Label, f.Label},
		{"month-column", &opts.MonthColumn, f.MonthColumn},
		{"month", &opts.Month, f.Month},
		{"sort", &opts.Sort, f.Sort},
		{"type", &opts.Type, f.Type},
		{"palette", &opts.Palette, f.Palette},
		{"title", &opts.Titles.Title, f.Title},
		{"x-title", &opts.Titles.XAxis, f.XTitle},
		{"y-title", &opts.Titles.YAxis, f.YTitle},
	} {
		if changed(o.flag) {
			*o.dst = o.val
		}
	}
	if changed("values") {
		opts.Values = f.Values
	}

	req, err := opts.Request(s)
	if err != nil {
		return nil, chart.Request{}, err
	}
	return s, req, nil
}

// mergePreset lays the fields a preset sets over the configured defaults.
func mergePreset(base, p chart.Options) chart.Options {
	p.MonthKeywords = base.MonthKeywords
	if p.Type == "" {
		p.Type = base.Type
	}
	if p.Sort == "" {
		p.Sort = base.Sort
	}
	if p.Palette == "" {
		p.Palette = base.Palette
	}
	return p
}

func loadPreset(ref string) (preset.Preset, error) {
	if preset.IsFile(ref) {
		return preset.LoadFile(ref)
	}
	return preset.NewStore(config.PresetDir()).Load(ref)
}
