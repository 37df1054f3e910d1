package preset

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/klytics/sheetviz/internal/aggregate"
	"github.com/klytics/sheetviz/internal/chart"
	"github.com/klytics/sheetviz/internal/sheet"
)

func salesSheet() *sheet.Sheet {
	s := sheet.FromStrings("Sales", [][]string{
		{"Region", "Sales", "Cost", "Mes"},
		{"North", "10", "4", "Jan"},
	})
	return &s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "presets"))
	p := Preset{
		Name:        "monthly",
		Sheet:       "Sales",
		Label:       "Region",
		Values:      []string{"Sales", "Cost"},
		MonthColumn: "Mes",
		Month:       "Jan",
		Sort:        aggregate.SortDesc,
		Type:        chart.StackedBar,
		Palette:     chart.PaletteOcean,
		Titles:      chart.Titles{Title: "Custom"},
	}

	if err := store.Save(p); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load("monthly")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.Sets("sort") || !got.Sets("palette") || got.Sets("titles_extra") {
		t.Errorf("loaded keys = %v", got.keys)
	}
	got.keys = nil
	if !reflect.DeepEqual(got, p) {
		t.Errorf("got %+v\nwant %+v", got, p)
	}

	data, err := os.ReadFile(filepath.Join(store.Dir, "monthly.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"sort: desc", "palette: ocean", "type: stackedBar"} {
		if !strings.Contains(string(data), want) {
			t.Errorf("YAML missing %q:\n%s", want, data)
		}
	}
}

func TestLoadMissing(t *testing.T) {
	store := NewStore(t.TempDir())
	if _, err := store.Load("nope"); err == nil {
		t.Error("expected error for missing preset")
	}
}

func TestInvalidName(t *testing.T) {
	store := NewStore(t.TempDir())
	for _, name := range []string{"", "../x", `a\b`, ".."} {
		if err := store.Save(Preset{Name: name}); err == nil {
			t.Errorf("expected error for name %q", name)
		}
	}
}

func TestListAndDelete(t *testing.T) {
	store := NewStore(t.TempDir())
	for _, n := range []string{"b", "a"} {
		if err := store.Save(Preset{Name: n, Label: "Region"}); err != nil {
			t.Fatal(err)
		}
	}
	names, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(names, []string{"a", "b"}) {
		t.Errorf("List = %v", names)
	}

	if err := store.Delete("a"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := store.Delete("a"); err == nil {
		t.Error("expected error deleting twice")
	}
	names, _ = store.List()
	if len(names) != 1 {
		t.Errorf("after delete: %v", names)
	}
}

func TestListMissingDir(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "none"))
	names, err := store.List()
	if err != nil || names != nil {
		t.Errorf("got %v, %v", names, err)
	}
}

func TestResolve(t *testing.T) {
	p := Preset{Name: "p", Label: "region", Values: []string{"Cost"}, MonthColumn: "Mes", Month: "Jan", Sort: aggregate.SortAsc}
	cfg, err := p.Resolve(salesSheet())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if cfg.LabelColumn != 0 || !reflect.DeepEqual(cfg.ValueColumns, []int{2}) {
		t.Errorf("columns = %d %v", cfg.LabelColumn, cfg.ValueColumns)
	}
	if cfg.MonthColumn != 3 || cfg.SelectedMonth != "Jan" || cfg.Sort != aggregate.SortAsc {
		t.Errorf("cfg = %+v", cfg)
	}

	if _, err := (Preset{Label: "Region", Values: []string{"Profit"}}).Resolve(salesSheet()); err == nil {
		t.Error("expected error for unknown value column")
	}
	if _, err := (Preset{Label: "Nope"}).Resolve(salesSheet()); err == nil {
		t.Error("expected error for unknown label column")
	}
}

func TestFromConfig(t *testing.T) {
	cfg := aggregate.NewConfig(0, 1, 2)
	cfg.MonthColumn = 3

	p := FromConfig("x", "Sales", salesSheet(), cfg, chart.Bar, chart.PaletteDefault, chart.Titles{})
	if p.Label != "Region" || !reflect.DeepEqual(p.Values, []string{"Sales", "Cost"}) {
		t.Errorf("got %+v", p)
	}
	if p.MonthColumn != "Mes" || p.Month != "" {
		t.Errorf("month = %q %q", p.MonthColumn, p.Month)
	}

	back, err := p.Resolve(salesSheet())
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(back, cfg) {
		t.Errorf("resolve(from) = %+v, want %+v", back, cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "by-region.yml")
	data := "label: Region\nvalues: [Sales]\nsort: desc\ntype: pie\npalette: sunset\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if p.Name != "by-region" || p.Sort != aggregate.SortDesc || p.Type != chart.Pie || p.Palette != chart.PaletteSunset {
		t.Errorf("got %+v", p)
	}

	os.WriteFile(path, []byte("sort: sideways\n"), 0644)
	if _, err := LoadFile(path); err == nil {
		t.Error("expected error for invalid sort order")
	}
}

func TestIsFile(t *testing.T) {
	cases := map[string]bool{
		"monthly":           false,
		"monthly.yaml":      true,
		"presets/monthly":   true,
		"./p.YML":           true,
		"quarterly-summary": false,
	}
	for ref, want := range cases {
		if got := IsFile(ref); got != want {
			t.Errorf("IsFile(%q) = %v, want %v", ref, got, want)
		}
	}
}

func TestOptions(t *testing.T) {
	p := Preset{Label: "Region", Values: []string{"Sales"}, Sort: aggregate.SortAsc, Type: chart.Line, Palette: chart.PaletteForest}
	req, err := p.Options().Request(salesSheet())
	if err != nil {
		t.Fatal(err)
	}
	if req.Type != chart.Line || req.Palette != chart.PaletteForest || req.Config.Sort != aggregate.SortAsc {
		t.Errorf("request = %+v", req)
	}
	if req.Config.MonthColumn != 3 {
		t.Errorf("month column = %d, want detected 3", req.Config.MonthColumn)
	}
}

func TestOptionsLeavesUnsetFieldsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sparse.yaml")
	if err := os.WriteFile(path, []byte("label: Region\nvalues: [Sales]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	p, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	o := p.Options()
	if o.Type != "" || o.Sort != "" || o.Palette != "" {
		t.Errorf("unset fields should stay empty, got type=%q sort=%q palette=%q", o.Type, o.Sort, o.Palette)
	}

	os.WriteFile(path, []byte("label: Region\nsort: none\npalette: default\n"), 0644)
	p, err = LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if o := p.Options(); o.Sort != "none" || o.Palette != "default" {
		t.Errorf("explicit zero values should survive, got sort=%q palette=%q", o.Sort, o.Palette)
	}
}
