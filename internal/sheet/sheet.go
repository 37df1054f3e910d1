// Package sheet defines the in-memory model of a spreadsheet: a workbook of
// named sheets, each a header row followed by data rows of typed cells.
package sheet

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// NoColumn marks an unset column index.
const NoColumn = -1

// Sheet is a single worksheet. Rows[0] is the header.
type Sheet struct {
	Name string   `json:"name"`
	Rows [][]Cell `json:"rows"`
}

// Workbook is an ordered collection of sheets.
type Workbook struct {
	Sheets []Sheet `json:"sheets"`
}

// FromStrings builds a sheet from raw string rows, inferring numeric cells.
func FromStrings(name string, rows [][]string) Sheet {
	s := Sheet{Name: name, Rows: make([][]Cell, len(rows))}
	for i, row := range rows {
		cells := make([]Cell, len(row))
		for j, v := range row {
			cells[j] = FromString(v)
		}
		s.Rows[i] = cells
	}
	return s
}

// SheetNames returns the sheet names in workbook order.
func (wb *Workbook) SheetNames() []string {
	names := make([]string, len(wb.Sheets))
	for i, s := range wb.Sheets {
		names[i] = s.Name
	}
	return names
}

// GetSheet returns a specific sheet by name. Returns an error if the sheet is not found.
func (wb *Workbook) GetSheet(name string) (*Sheet, error) {
	for i := range wb.Sheets {
		if wb.Sheets[i].Name == name {
			return &wb.Sheets[i], nil
		}
	}
	return nil, fmt.Errorf("sheet %q not found — available sheets: %v", name, wb.SheetNames())
}

// Select returns the named sheet, or the first sheet when name is empty.
func (wb *Workbook) Select(name string) (*Sheet, error) {
	if name != "" {
		return wb.GetSheet(name)
	}
	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return &wb.Sheets[0], nil
}

// At returns row[i], or a blank cell when i is outside the row.
func At(row []Cell, i int) Cell {
	if i < 0 || i >= len(row) {
		return Empty()
	}
	return row[i]
}

// Header returns the header row as strings. A sheet with no rows has no header.
func (s *Sheet) Header() []string {
	if s == nil || len(s.Rows) == 0 {
		return nil
	}
	h := make([]string, len(s.Rows[0]))
	for i, c := range s.Rows[0] {
		h[i] = c.String()
	}
	return h
}

// Data returns the rows after the header.
func (s *Sheet) Data() [][]Cell {
	if s == nil || len(s.Rows) < 2 {
		return nil
	}
	return s.Rows[1:]
}

// HeaderName returns the name of column i, or "" when out of range.
func (s *Sheet) HeaderName(i int) string {
	h := s.Header()
	if i < 0 || i >= len(h) {
		return ""
	}
	return h[i]
}

// ColumnIndex resolves a column reference: an exact header match first,
// then a case-insensitive one. Returns NoColumn if nothing matches.
func (s *Sheet) ColumnIndex(name string) int {
	h := s.Header()
	for i, col := range h {
		if col == name {
			return i
		}
	}
	for i, col := range h {
		if strings.EqualFold(col, name) {
			return i
		}
	}
	return NoColumn
}

// ResolveColumn resolves a user column reference: a header name, or a
// zero-based index when no header has that name.
func (s *Sheet) ResolveColumn(ref string) (int, error) {
	ref = strings.TrimSpace(ref)
	if i := s.ColumnIndex(ref); i != NoColumn {
		return i, nil
	}
	if i, err := strconv.Atoi(ref); err == nil && i >= 0 && i < len(s.Header()) {
		return i, nil
	}
	return NoColumn, fmt.Errorf("column %q not found — available columns: %s", ref, strings.Join(s.Header(), ", "))
}

// ResolveColumns resolves each reference with ResolveColumn.
func (s *Sheet) ResolveColumns(refs []string) ([]int, error) {
	out := make([]int, 0, len(refs))
	for _, r := range refs {
		i, err := s.ResolveColumn(r)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, nil
}

// DetectColumn returns the first header whose lowercase form contains any
// of the keywords, or NoColumn.
func DetectColumn(header []string, keywords ...string) int {
	for i, h := range header {
		lower := strings.ToLower(h)
		for _, k := range keywords {
			if k != "" && strings.Contains(lower, strings.ToLower(k)) {
				return i
			}
		}
	}
	return NoColumn
}

// DefaultMonthKeywords identify a month column by its header.
var DefaultMonthKeywords = []string{"mes", "month"}

// DetectMonthColumn finds the month column by keyword, falling back to
// DefaultMonthKeywords when none are given.
func DetectMonthColumn(header []string, keywords ...string) int {
	if len(keywords) == 0 {
		keywords = DefaultMonthKeywords
	}
	return DetectColumn(header, keywords...)
}

// DefaultColumns picks the label and value columns offered before the user
// chooses: the first column for labels and the second for values.
func DefaultColumns(header []string) (label int, values []int) {
	if len(header) == 0 {
		return NoColumn, nil
	}
	if len(header) == 1 {
		return 0, []int{0}
	}
	return 0, []int{1}
}

// UniqueValues returns the distinct string forms of column col across the
// data rows, sorted. Blank cells are skipped.
func (s *Sheet) UniqueValues(col int) []string {
	if col < 0 {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, row := range s.Data() {
		v := At(row, col).String()
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Records returns the data rows as maps keyed by header name. Blank cells
// are omitted, so a missing key means the row has no value for that column.
func (s *Sheet) Records() []map[string]Cell {
	header := s.Header()
	data := s.Data()
	out := make([]map[string]Cell, 0, len(data))
	for _, row := range data {
		rec := make(map[string]Cell)
		for i, name := range header {
			c := At(row, i)
			if c.IsEmpty() || name == "" {
				continue
			}
			rec[name] = c
		}
		if len(rec) > 0 {
			out = append(out, rec)
		}
	}
	return out
}

// Width returns the widest row length in the sheet.
func (s *Sheet) Width() int {
	w := 0
	for _, row := range s.Rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// RowCount returns the total number of non-empty rows, header included.
func (s *Sheet) RowCount() int {
	count := 0
	for _, row := range s.Rows {
		for _, c := range row {
			if !c.IsEmpty() {
				count++
				break
			}
		}
	}
	return count
}

// ToCSV converts the sheet to CSV text.
func (s *Sheet) ToCSV() string {
	var b strings.Builder
	for _, row := range s.Rows {
		for j, c := range row {
			if j > 0 {
				b.WriteByte(',')
			}
			v := c.String()
			if strings.ContainsAny(v, ",\"\r\n") {
				b.WriteString(`"` + strings.ReplaceAll(v, `"`, `""`) + `"`)
			} else {
				b.WriteString(v)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
