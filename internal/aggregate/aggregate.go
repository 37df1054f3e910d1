// Package aggregate turns a sheet into labeled series: rows are grouped by a
// label column, the selected value columns are summed per group, and the
// result is optionally filtered by a month column and sorted.
//
// Aggregate is pure. It keeps no state between calls, so callers simply run
// it again whenever the configuration changes.
package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/klytics/sheetviz/internal/sheet"
)

// AllMonths disables the month filter.
const AllMonths = "all"

// SortOrder controls the ordering of aggregated labels.
type SortOrder int

const (
	// SortNone keeps labels in first-seen order.
	SortNone SortOrder = iota
	// SortAsc orders by the first value column, smallest first.
	SortAsc
	// SortDesc orders by the first value column, largest first.
	SortDesc
)

// String returns the flag form of the sort order.
func (o SortOrder) String() string {
	switch o {
	case SortAsc:
		return "asc"
	case SortDesc:
		return "desc"
	default:
		return "none"
	}
}

// ParseSortOrder parses "none", "asc" or "desc". An empty string is "none".
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return SortNone, nil
	case "asc":
		return SortAsc, nil
	case "desc":
		return SortDesc, nil
	default:
		return SortNone, fmt.Errorf("unknown sort order %q — use none, asc or desc", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (o SortOrder) MarshalText() ([]byte, error) { return []byte(o.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *SortOrder) UnmarshalText(b []byte) error {
	v, err := ParseSortOrder(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}

// Config selects which columns to aggregate and how.
type Config struct {
	// LabelColumn is the column whose values become category labels.
	LabelColumn int `json:"labelColumn" yaml:"label_column"`
	// ValueColumns are summed per label, in order. The first one is the sort key.
	ValueColumns []int `json:"valueColumns" yaml:"value_columns"`
	// MonthColumn is the column compared against SelectedMonth, or sheet.NoColumn.
	MonthColumn int `json:"monthColumn" yaml:"month_column"`
	// SelectedMonth keeps only rows whose month cell prints as this value.
	// AllMonths or "" disables the filter.
	SelectedMonth string    `json:"selectedMonth" yaml:"selected_month"`
	Sort          SortOrder `json:"sortOrder" yaml:"sort_order"`
}

// NewConfig returns a config with no month filter and no sorting.
func NewConfig(label int, values ...int) Config {
	return Config{
		LabelColumn:   label,
		ValueColumns:  values,
		MonthColumn:   sheet.NoColumn,
		SelectedMonth: AllMonths,
	}
}

// filtersByMonth reports whether the month filter is active.
func (c Config) filtersByMonth() bool {
	return c.MonthColumn >= 0 && c.SelectedMonth != "" && c.SelectedMonth != AllMonths
}

// Series is the aggregated result. Labels and Values are parallel:
// Values[i] holds one sum per configured value column for Labels[i].
type Series struct {
	Labels []sheet.Cell `json:"labels"`
	Values [][]float64  `json:"values"`
}

// Len returns the number of labels.
func (s Series) Len() int { return len(s.Labels) }

// Column returns the sums for value column i across all labels.
func (s Series) Column(i int) []float64 {
	out := make([]float64, len(s.Values))
	for j, v := range s.Values {
		if i < len(v) {
			out[j] = v[i]
		}
	}
	return out
}

// LabelStrings returns the labels in their printed form.
func (s Series) LabelStrings() []string {
	out := make([]string, len(s.Labels))
	for i, l := range s.Labels {
		out[i] = l.String()
	}
	return out
}

// Aggregate groups the data rows of s by cfg.LabelColumn and sums
// cfg.ValueColumns. It never fails: cells that do not parse as numbers count
// as 0, and a missing header or an empty filter result yields an empty series.
func Aggregate(s *sheet.Sheet, cfg Config) Series {
	rows := FilterMonth(s.Data(), cfg)
	out := group(rows, cfg)
	if cfg.Sort != SortNone {
		sortSeries(&out, cfg.Sort)
	}
	return out
}

// MonthOptions lists the choices for the month filter: AllMonths followed
// by the distinct values of the month column.
func MonthOptions(s *sheet.Sheet, monthColumn int) []string {
	return append([]string{AllMonths}, s.UniqueValues(monthColumn)...)
}

// FilterMonth returns the rows whose month cell prints exactly as
// cfg.SelectedMonth. The input is returned unchanged when the filter is off.
func FilterMonth(rows [][]sheet.Cell, cfg Config) [][]sheet.Cell {
	if !cfg.filtersByMonth() {
		return rows
	}
	var out [][]sheet.Cell
	for _, row := range rows {
		if sheet.At(row, cfg.MonthColumn).String() == cfg.SelectedMonth {
			out = append(out, row)
		}
	}
	return out
}

func group(rows [][]sheet.Cell, cfg Config) Series {
	n := len(cfg.ValueColumns)
	index := make(map[sheet.Cell]int)
	out := Series{Labels: []sheet.Cell{}, Values: [][]float64{}}

	for _, row := range rows {
		label := sheet.At(row, cfg.LabelColumn)
		pos, ok := index[label]
		if !ok {
			pos = len(out.Labels)
			index[label] = pos
			out.Labels = append(out.Labels, label)
			out.Values = append(out.Values, make([]float64, n))
		}
		sums := out.Values[pos]
		for i, col := range cfg.ValueColumns {
			if v, ok := sheet.At(row, col).Float(); ok {
				sums[i] += v
			}
		}
	}
	return out
}

// sortSeries orders labels by their first sum. Equal keys keep their
// first-seen order.
func sortSeries(s *Series, order SortOrder) {
	if len(s.Labels) == 0 {
		return
	}
	idx := make([]int, len(s.Labels))
	for i := range idx {
		idx[i] = i
	}
	key := func(i int) float64 {
		if len(s.Values[i]) == 0 {
			return 0
		}
		return s.Values[i][0]
	}
	sort.SliceStable(idx, func(a, b int) bool {
		if order == SortDesc {
			return key(idx[a]) > key(idx[b])
		}
		return key(idx[a]) < key(idx[b])
	})

	labels := make([]sheet.Cell, len(idx))
	values := make([][]float64, len(idx))
	for i, j := range idx {
		labels[i] = s.Labels[j]
		values[i] = s.Values[j]
	}
	s.Labels = labels
	s.Values = values
}
