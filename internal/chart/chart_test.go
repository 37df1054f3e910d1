package chart

import (
	"bytes"
	"encoding/json"
	"math"
	"reflect"
	"regexp"
	"strings"
	"testing"

	"github.com/klytics/sheetviz/internal/aggregate"
	"github.com/klytics/sheetviz/internal/sheet"
)

func salesSheet() *sheet.Sheet {
	s := sheet.FromStrings("Sales", [][]string{
		{"Month", "Sales", "Cost"},
		{"Jan", "10", "2"},
		{"Feb", "5", "1"},
		{"Jan", "3", "1"},
	})
	return &s
}

func TestSequentialOpacities(t *testing.T) {
	got := SequentialOpacities([]float64{2, 4, 6})
	want := []float64{0.3, 0.65, 1.0}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("opacity[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSequentialOpacitiesFlat(t *testing.T) {
	got := SequentialOpacities([]float64{5, 5, 5})
	for i, o := range got {
		if o != 0.7 {
			t.Errorf("opacity[%d] = %v, want 0.7", i, o)
		}
	}
	if len(SequentialOpacities(nil)) != 0 {
		t.Error("expected no opacities for empty input")
	}
}

func TestSequentialColors(t *testing.T) {
	got := SequentialColors([]float64{2, 4, 6}, RGB{54, 162, 235})
	want := []string{
		"rgba(54, 162, 235, 0.3)",
		"rgba(54, 162, 235, 0.65)",
		"rgba(54, 162, 235, 1)",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("colors = %v, want %v", got, want)
	}
}

func TestParsePalette(t *testing.T) {
	for _, name := range PaletteNames() {
		k, err := ParsePalette(name)
		if err != nil {
			t.Errorf("ParsePalette(%q): %v", name, err)
		}
		if k.String() != name {
			t.Errorf("round trip %q -> %q", name, k.String())
		}
	}
	k, err := ParsePalette("neon")
	if err == nil || k != PaletteDefault {
		t.Errorf("ParsePalette(neon) = %v, %v", k, err)
	}
}

func TestSwatchCycles(t *testing.T) {
	n := len(PaletteOcean.Swatches())
	if PaletteOcean.Swatch(n) != PaletteOcean.Swatch(0) {
		t.Error("swatches should cycle by index modulo palette length")
	}
	if !reflect.DeepEqual(PaletteSequential.Swatches(), PaletteDefault.Swatches()) {
		t.Error("sequential palette should fall back to default hues")
	}
}

func TestParseType(t *testing.T) {
	if ty, err := ParseType("stackedbar"); err != nil || ty != StackedBar {
		t.Errorf("ParseType(stackedbar) = %v, %v", ty, err)
	}
	if ty, _ := ParseType(""); ty != Bar {
		t.Errorf("ParseType(\"\") = %v", ty)
	}
	if _, err := ParseType("radar"); err == nil {
		t.Error("expected error for unsupported type")
	}
	if StackedBar.Base() != "bar" || Pie.Base() != "pie" {
		t.Error("unexpected base types")
	}
}

func TestBuildDataBar(t *testing.T) {
	cfg := aggregate.NewConfig(0, 1, 2)
	data := BuildData(Bar, salesSheet(), cfg, PaletteDefault)

	if !reflect.DeepEqual(data.Labels, []string{"Jan", "Feb"}) {
		t.Errorf("labels = %v", data.Labels)
	}
	if len(data.Datasets) != 2 {
		t.Fatalf("expected 2 datasets, got %d", len(data.Datasets))
	}
	sales := data.Datasets[0]
	if sales.Label != "Sales" || !reflect.DeepEqual(sales.Data, []float64{13, 5}) {
		t.Errorf("sales dataset = %+v", sales)
	}
	if sales.BackgroundColor.Solid != "rgba(54, 162, 235, 0.6)" || sales.BorderColor != "rgba(54, 162, 235, 1)" {
		t.Errorf("sales colors = %+v / %s", sales.BackgroundColor, sales.BorderColor)
	}
	if data.Datasets[1].BackgroundColor.Solid != "rgba(255, 99, 132, 0.6)" {
		t.Errorf("cost color = %+v", data.Datasets[1].BackgroundColor)
	}
	if sales.BorderWidth != 1 {
		t.Errorf("border width = %d", sales.BorderWidth)
	}
}

func TestBuildDataCircularDropsExtraSeries(t *testing.T) {
	cfg := aggregate.NewConfig(0, 1, 2)
	data := BuildData(Pie, salesSheet(), cfg, PaletteSunset)

	if len(data.Datasets) != 1 {
		t.Fatalf("expected 1 dataset, got %d", len(data.Datasets))
	}
	fill := data.Datasets[0].BackgroundColor
	if len(fill.PerPoint) != 2 {
		t.Fatalf("expected one color per slice, got %v", fill.PerPoint)
	}
	if fill.PerPoint[1] != PaletteSunset.Swatch(1).Fill() {
		t.Errorf("slice color = %s", fill.PerPoint[1])
	}
}

func TestBuildDataSequential(t *testing.T) {
	s := sheet.FromStrings("S", [][]string{
		{"Name", "Value"},
		{"a", "2"}, {"b", "4"}, {"c", "6"},
	})
	data := BuildData(Bar, &s, aggregate.NewConfig(0, 1), PaletteSequential)
	ds := data.Datasets[0]
	if len(ds.BackgroundColor.PerPoint) != 3 {
		t.Fatalf("expected per-point colors, got %+v", ds.BackgroundColor)
	}
	if ds.BackgroundColor.PerPoint[1] != "rgba(54, 162, 235, 0.65)" {
		t.Errorf("middle color = %s", ds.BackgroundColor.PerPoint[1])
	}
	if ds.BorderColor != "rgba(54, 162, 235, 1)" {
		t.Errorf("border = %s", ds.BorderColor)
	}

	stacked := BuildData(StackedBar, &s, aggregate.NewConfig(0, 1), PaletteSequential)
	if stacked.Datasets[0].BackgroundColor.PerPoint != nil {
		t.Error("stacked charts should not use sequential shading")
	}
}

func TestBuildDataUnnamedColumn(t *testing.T) {
	s := sheet.FromStrings("S", [][]string{{"Name"}, {"a", "1"}})
	data := BuildData(Bar, &s, aggregate.NewConfig(0, 1), PaletteDefault)
	if data.Datasets[0].Label != "Values 1" {
		t.Errorf("label = %q", data.Datasets[0].Label)
	}
}

func TestFillJSON(t *testing.T) {
	solid, _ := json.Marshal(Fill{Solid: "red"})
	if string(solid) != `"red"` {
		t.Errorf("solid = %s", solid)
	}
	list, _ := json.Marshal(Fill{PerPoint: []string{"a", "b"}})
	if string(list) != `["a","b"]` {
		t.Errorf("per point = %s", list)
	}
}

func TestDefaultTitles(t *testing.T) {
	header := []string{"Month", "Sales", "Cost"}
	got := DefaultTitles(header, aggregate.NewConfig(0, 1, 2))
	want := Titles{Title: "Sales and Cost vs. Month", XAxis: "Month", YAxis: "Aggregated values"}
	if got != want {
		t.Errorf("titles = %+v, want %+v", got, want)
	}

	single := DefaultTitles(header, aggregate.NewConfig(0, 1))
	if single.YAxis != "Sales" {
		t.Errorf("y axis = %q", single.YAxis)
	}
}

func TestAdvisories(t *testing.T) {
	if a := Advisories(StackedBar, aggregate.NewConfig(0, 1)); len(a) != 1 {
		t.Errorf("expected stacked advisory, got %v", a)
	}
	if a := Advisories(Doughnut, aggregate.NewConfig(0, 1, 2)); len(a) != 1 {
		t.Errorf("expected circular advisory, got %v", a)
	}
	if a := Advisories(Bar, aggregate.NewConfig(0, 1)); len(a) != 0 {
		t.Errorf("unexpected advisories %v", a)
	}
}

func TestDataLabel(t *testing.T) {
	tests := []struct {
		t     Type
		value float64
		total float64
		want  string
	}{
		{Pie, 50, 100, "50\n(50.0%)"},
		{Pie, 2, 100, ""},
		{Doughnut, 1, 0, ""},
		{Bar, 0, 10, ""},
		{Bar, 7.5, 10, "7.5"},
	}
	for _, tt := range tests {
		if got := DataLabel(tt.t, tt.value, tt.total); got != tt.want {
			t.Errorf("DataLabel(%s, %v, %v) = %q, want %q", tt.t, tt.value, tt.total, got, tt.want)
		}
	}
}

func TestPercentages(t *testing.T) {
	got := Percentages([]float64{1, 3})
	if !reflect.DeepEqual(got, []float64{25, 75}) {
		t.Errorf("Percentages = %v", got)
	}
	if got := Percentages([]float64{0, 0}); !reflect.DeepEqual(got, []float64{0, 0}) {
		t.Errorf("zero total = %v", got)
	}
}

func TestRenderFirstAndUpdate(t *testing.T) {
	var h Handle
	if h.Rendered() {
		t.Fatal("new handle should be empty")
	}

	cfg := aggregate.NewConfig(0, 1)
	out, adv := Render(&h, Request{Type: Bar, Sheet: salesSheet(), Config: cfg})
	if len(adv) != 0 {
		t.Errorf("unexpected advisories %v", adv)
	}
	if out.Type != "bar" || out.Options.Plugins.Title.Text != "Sales vs. Month" {
		t.Errorf("first render = %s / %q", out.Type, out.Options.Plugins.Title.Text)
	}
	if !out.Options.Scales.X.Display {
		t.Error("bar charts should show axes")
	}

	cfg.Sort = aggregate.SortAsc
	out, adv = Render(&h, Request{Type: StackedBar, Sheet: salesSheet(), Config: cfg, Titles: Titles{Title: "Custom"}})
	if len(adv) != 1 {
		t.Errorf("expected stacked advisory, got %v", adv)
	}
	if out.Options.Plugins.Title.Text != "Custom" || out.Options.Scales.X.Title.Text != "Month" {
		t.Errorf("titles after update = %+v", h.Titles())
	}
	if !out.Options.Scales.X.Stacked || out.Type != "bar" {
		t.Error("stacked bar should render as stacked bar")
	}
	if !reflect.DeepEqual(out.Data.Labels, []string{"Feb", "Jan"}) {
		t.Errorf("labels after sort = %v", out.Data.Labels)
	}

	// Captions survive a render that does not override them.
	out, _ = Render(&h, Request{Type: Pie, Sheet: salesSheet(), Config: cfg})
	if out.Options.Plugins.Title.Text != "Custom" {
		t.Errorf("title = %q, want Custom", out.Options.Plugins.Title.Text)
	}
	if out.Options.Scales.X.Display || out.Options.Scales.Y.Display {
		t.Error("pie charts should hide axes")
	}
	if h.Type() != Pie {
		t.Errorf("handle type = %s", h.Type())
	}

	h.Reset()
	if h.Rendered() {
		t.Error("Reset should clear the chart")
	}
}

func TestRenderJSON(t *testing.T) {
	var h Handle
	out, _ := Render(&h, Request{Type: Line, Sheet: salesSheet(), Config: aggregate.NewConfig(0, 1)})
	data, err := json.Marshal(out)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"type":"line"`, `"labels":["Jan","Feb"]`, `"datalabels"`, `"maintainAspectRatio":false`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON missing %s: %s", want, data)
		}
	}
}

func TestWritePNG(t *testing.T) {
	for _, ty := range Types() {
		t.Run(string(ty), func(t *testing.T) {
			var h Handle
			Render(&h, Request{Type: ty, Sheet: salesSheet(), Config: aggregate.NewConfig(0, 1, 2)})

			var buf bytes.Buffer
			if err := WritePNG(&h, &buf, ImageSize{Width: 400, Height: 300}); err != nil {
				t.Fatalf("WritePNG: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
				t.Error("output is not a PNG")
			}
		})
	}
}

func TestWritePNGRequiresChart(t *testing.T) {
	var h Handle
	if err := WritePNG(&h, &bytes.Buffer{}, DefaultImageSize); err == nil {
		t.Error("expected error before first render")
	}
}

func TestWritePNGRejectsNonFinite(t *testing.T) {
	s := sheet.FromStrings("Sales", [][]string{
		{"Region", "Sales"},
		{"North", "1e999"},
		{"South", "5"},
	})
	var h Handle
	cfg, _ := Render(&h, Request{Type: Bar, Sheet: &s, Config: aggregate.NewConfig(0, 1)})

	err := WritePNG(&h, &bytes.Buffer{}, ImageSize{Width: 400, Height: 300})
	if err == nil || !strings.Contains(err.Error(), "North") {
		t.Errorf("WritePNG error = %v, want a non-finite error naming North", err)
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"data":[null,5]`) {
		t.Errorf("JSON should carry null for the overflowing sum: %s", data)
	}
}

func TestWritePNGAllZero(t *testing.T) {
	s := sheet.FromStrings("Sales", [][]string{
		{"Region", "Sales", "Cost"},
		{"North", "0", "0"},
		{"South", "0", "0"},
	})
	for _, ty := range []Type{Bar, StackedBar, Line} {
		t.Run(string(ty), func(t *testing.T) {
			var h Handle
			Render(&h, Request{Type: ty, Sheet: &s, Config: aggregate.NewConfig(0, 1, 2)})
			var buf bytes.Buffer
			if err := WritePNG(&h, &buf, ImageSize{Width: 400, Height: 300}); err != nil {
				t.Fatalf("WritePNG: %v", err)
			}
			if !bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")) {
				t.Error("output is not a PNG")
			}
		})
	}

	for _, ty := range []Type{Pie, Doughnut} {
		var h Handle
		Render(&h, Request{Type: ty, Sheet: &s, Config: aggregate.NewConfig(0, 1)})
		err := WritePNG(&h, &bytes.Buffer{}, ImageSize{Width: 400, Height: 300})
		if err == nil || !strings.Contains(err.Error(), "zero or negative") {
			t.Errorf("%s: WritePNG error = %v", ty, err)
		}
	}
}

func TestWritePNGFlatValues(t *testing.T) {
	s := sheet.FromStrings("Sales", [][]string{
		{"Region", "Sales"},
		{"North", "7"},
		{"South", "7"},
	})
	var h Handle
	Render(&h, Request{Type: Bar, Sheet: &s, Config: aggregate.NewConfig(0, 1)})
	if err := WritePNG(&h, &bytes.Buffer{}, ImageSize{Width: 400, Height: 300}); err != nil {
		t.Errorf("WritePNG: %v", err)
	}
}

func TestCSSColor(t *testing.T) {
	c := cssColor("rgba(10, 20, 30, 1)")
	if c.R != 10 || c.G != 20 || c.B != 30 || c.A != 255 {
		t.Errorf("cssColor = %+v", c)
	}
}

func TestOptionsRequestDefaults(t *testing.T) {
	req, err := Options{}.Request(salesSheet())
	if err != nil {
		t.Fatal(err)
	}
	cfg := req.Config
	if cfg.LabelColumn != 0 || !reflect.DeepEqual(cfg.ValueColumns, []int{1}) {
		t.Errorf("columns = %d %v", cfg.LabelColumn, cfg.ValueColumns)
	}
	if cfg.MonthColumn != 0 {
		t.Errorf("month column = %d, want detected 0", cfg.MonthColumn)
	}
	if req.Type != Bar || req.Palette != PaletteDefault {
		t.Errorf("type=%s palette=%s", req.Type, req.Palette)
	}
}

func TestOptionsRequestResolvesNamesAndIndexes(t *testing.T) {
	req, err := Options{
		Label:   "Month",
		Values:  []string{"2", "Sales"},
		Month:   "Jan",
		Sort:    "desc",
		Type:    "pie",
		Palette: "ocean",
	}.Request(salesSheet())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(req.Config.ValueColumns, []int{2, 1}) {
		t.Errorf("values = %v", req.Config.ValueColumns)
	}
	if req.Config.SelectedMonth != "Jan" || req.Config.Sort != aggregate.SortDesc {
		t.Errorf("config = %+v", req.Config)
	}
	if req.Type != Pie || req.Palette != PaletteOcean {
		t.Errorf("type=%s palette=%s", req.Type, req.Palette)
	}
}

func TestOptionsRequestErrors(t *testing.T) {
	noMonth := sheet.FromStrings("Plain", [][]string{{"Region", "Sales"}, {"North", "1"}})
	cases := []struct {
		name string
		s    *sheet.Sheet
		o    Options
		want string
	}{
		{"unknown label", salesSheet(), Options{Label: "Region"}, "label"},
		{"unknown value", salesSheet(), Options{Values: []string{"Profit"}}, "values"},
		{"bad sort", salesSheet(), Options{Sort: "up"}, "sort"},
		{"bad type", salesSheet(), Options{Type: "radar"}, "chart type"},
		{"bad palette", salesSheet(), Options{Palette: "neon"}, "palette"},
		{"month without column", &noMonth, Options{Month: "Jan"}, "no month column"},
		{"empty sheet", &sheet.Sheet{Name: "Empty"}, Options{}, "no header"},
	}
	for _, tc := range cases {
		_, err := tc.o.Request(tc.s)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: err = %v, want %q", tc.name, err, tc.want)
		}
	}
}

func TestWriteHTML(t *testing.T) {
	var h Handle
	if err := WriteHTML(&h, &bytes.Buffer{}); err == nil {
		t.Error("expected error before first render")
	}

	Render(&h, Request{Type: Doughnut, Sheet: salesSheet(), Config: aggregate.NewConfig(0, 1), Titles: Titles{Title: "Sales <by> month"}})
	var buf bytes.Buffer
	if err := WriteHTML(&h, &buf); err != nil {
		t.Fatal(err)
	}
	page := buf.String()
	for _, want := range []string{"<title>Sales &lt;by&gt; month</title>", `"type":"doughnut"`, "chart.umd.min.js"} {
		if !strings.Contains(page, want) {
			t.Errorf("page missing %q", want)
		}
	}
	if !regexp.MustCompile(`circular = \s*true`).MatchString(page) {
		t.Error("doughnut page should format labels as percentages")
	}
}
