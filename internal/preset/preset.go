// Package preset saves and loads named chart setups as YAML files so a
// chart can be redrawn later without retyping its columns and options.
package preset

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/klytics/sheetviz/internal/aggregate"
	"github.com/klytics/sheetviz/internal/chart"
)

// Preset is a saved chart setup. Columns are stored by header name so the
// preset still works when columns move.
type Preset struct {
	Name        string              `yaml:"name" json:"name"`
	Sheet       string              `yaml:"sheet,omitempty" json:"sheet,omitempty"`
	Label       string              `yaml:"label" json:"label"`
	Values      []string            `yaml:"values" json:"values"`
	MonthColumn string              `yaml:"month_column,omitempty" json:"monthColumn,omitempty"`
	Month       string              `yaml:"month,omitempty" json:"month,omitempty"`
	Sort        aggregate.SortOrder `yaml:"sort" json:"sort"`
	Type        chart.Type          `yaml:"type" json:"type"`
	Palette     chart.PaletteKind   `yaml:"palette" json:"palette"`
	Titles      chart.Titles        `yaml:"titles,omitempty" json:"titles"`

	// keys holds the YAML keys a loaded preset spelled out. It is nil for
	// presets built in code, which count as setting every field.
	keys map[string]bool
}

// UnmarshalYAML decodes a preset and records which keys it sets.
func (p *Preset) UnmarshalYAML(n *yaml.Node) error {
	type plain Preset
	if err := n.Decode((*plain)(p)); err != nil {
		return err
	}
	p.keys = make(map[string]bool)
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			p.keys[n.Content[i].Value] = true
		}
	}
	return nil
}

// Sets reports whether the preset sets the given YAML key.
func (p Preset) Sets(key string) bool {
	return p.keys == nil || p.keys[key]
}

// Header resolves column names to indexes.
type Header interface {
	ColumnIndex(name string) int
	HeaderName(i int) string
}

// Resolve turns the preset's named columns into an aggregation config for
// a sheet with the given header.
func (p Preset) Resolve(h Header) (aggregate.Config, error) {
	label := h.ColumnIndex(p.Label)
	if label < 0 {
		return aggregate.Config{}, fmt.Errorf("preset %q: label column %q not found in sheet", p.Name, p.Label)
	}
	values := make([]int, 0, len(p.Values))
	for _, v := range p.Values {
		i := h.ColumnIndex(v)
		if i < 0 {
			return aggregate.Config{}, fmt.Errorf("preset %q: value column %q not found in sheet", p.Name, v)
		}
		values = append(values, i)
	}

	cfg := aggregate.NewConfig(label, values...)
	cfg.Sort = p.Sort
	if p.MonthColumn != "" {
		cfg.MonthColumn = h.ColumnIndex(p.MonthColumn)
		if cfg.MonthColumn < 0 {
			return aggregate.Config{}, fmt.Errorf("preset %q: month column %q not found in sheet", p.Name, p.MonthColumn)
		}
	}
	if p.Month != "" {
		cfg.SelectedMonth = p.Month
	}
	return cfg, nil
}

// Options returns the preset as chart options, the same shape the command
// line and the HTTP API produce. Sort and palette stay empty when a loaded
// preset leaves them out.
func (p Preset) Options() chart.Options {
	o := chart.Options{
		Label:       p.Label,
		Values:      p.Values,
		MonthColumn: p.MonthColumn,
		Month:       p.Month,
		Type:        string(p.Type),
		Titles:      p.Titles,
	}
	if p.Sets("sort") {
		o.Sort = p.Sort.String()
	}
	if p.Sets("palette") {
		o.Palette = p.Palette.String()
	}
	return o
}

// FromConfig captures an aggregation config as a preset using the header
// names of the columns it refers to.
func FromConfig(name, sheetName string, h Header, cfg aggregate.Config, t chart.Type, p chart.PaletteKind, titles chart.Titles) Preset {
	out := Preset{
		Name:    name,
		Sheet:   sheetName,
		Label:   h.HeaderName(cfg.LabelColumn),
		Values:  make([]string, 0, len(cfg.ValueColumns)),
		Sort:    cfg.Sort,
		Type:    t,
		Palette: p,
		Titles:  titles,
	}
	for _, c := range cfg.ValueColumns {
		out.Values = append(out.Values, h.HeaderName(c))
	}
	if cfg.MonthColumn >= 0 {
		out.MonthColumn = h.HeaderName(cfg.MonthColumn)
		if cfg.SelectedMonth != aggregate.AllMonths {
			out.Month = cfg.SelectedMonth
		}
	}
	return out
}

// Store keeps presets as <name>.yaml files in one directory.
type Store struct {
	Dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

func (s *Store) path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid preset name %q — use letters, digits, dashes or underscores", name)
	}
	return filepath.Join(s.Dir, name+".yaml"), nil
}

// Save writes p, replacing any preset with the same name.
func (s *Store) Save(p Preset) error {
	path, err := s.path(p.Name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(s.Dir, 0700); err != nil {
		return fmt.Errorf("could not create preset directory: %w", err)
	}
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("could not encode preset: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("could not save preset %q: %w", p.Name, err)
	}
	return nil
}

// Load reads the named preset.
func (s *Store) Load(name string) (Preset, error) {
	path, err := s.path(name)
	if err != nil {
		return Preset{}, err
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Preset{}, fmt.Errorf("preset %q not found — list presets with 'sheetviz chart presets list'", name)
	}
	return LoadFile(path)
}

// LoadFile reads a preset from a YAML file anywhere on disk. A preset without
// a name takes the file's base name.
func LoadFile(path string) (Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Preset{}, fmt.Errorf("could not read preset %s: %w", path, err)
	}
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Preset{}, fmt.Errorf("preset %s is not valid YAML: %w", path, err)
	}
	if p.keys == nil {
		p.keys = make(map[string]bool)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// IsFile reports whether ref names a preset file rather than a stored preset.
func IsFile(ref string) bool {
	ext := strings.ToLower(filepath.Ext(ref))
	return ext == ".yaml" || ext == ".yml" || strings.ContainsAny(ref, `/\`)
}

// List returns the saved preset names, sorted.
func (s *Store) List() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not list presets: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".yaml" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes the named preset.
func (s *Store) Delete(name string) error {
	path, err := s.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("preset %q not found", name)
		}
		return fmt.Errorf("could not delete preset %q: %w", name, err)
	}
	return nil
}
