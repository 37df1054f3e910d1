package chart

import (
	"fmt"

	"github.com/klytics/sheetviz/internal/aggregate"
	"github.com/klytics/sheetviz/internal/sheet"
)

// Options are chart settings as a user types them: columns are header names
// or zero-based indexes, and enums are their flag names. Empty fields take
// the defaults offered before any choice is made.
type Options struct {
	Label       string
	Values      []string
	MonthColumn string
	Month       string
	Sort        string
	Type        string
	Palette     string
	Titles      Titles
	// MonthKeywords locate the month column when MonthColumn is empty.
	MonthKeywords []string
}

// Request resolves o against s.
func (o Options) Request(s *sheet.Sheet) (Request, error) {
	header := s.Header()
	if len(header) == 0 {
		return Request{}, fmt.Errorf("sheet %q has no header row", s.Name)
	}
	label, values := sheet.DefaultColumns(header)

	var err error
	if o.Label != "" {
		if label, err = s.ResolveColumn(o.Label); err != nil {
			return Request{}, fmt.Errorf("label: %w", err)
		}
	}
	if len(o.Values) > 0 {
		if values, err = s.ResolveColumns(o.Values); err != nil {
			return Request{}, fmt.Errorf("values: %w", err)
		}
	}

	cfg := aggregate.NewConfig(label, values...)
	if o.MonthColumn != "" {
		if cfg.MonthColumn, err = s.ResolveColumn(o.MonthColumn); err != nil {
			return Request{}, fmt.Errorf("month column: %w", err)
		}
	} else {
		cfg.MonthColumn = sheet.DetectMonthColumn(header, o.MonthKeywords...)
	}
	if o.Month != "" {
		if cfg.MonthColumn == sheet.NoColumn && o.Month != aggregate.AllMonths {
			return Request{}, fmt.Errorf("no month column in sheet %q — pass the month column explicitly", s.Name)
		}
		cfg.SelectedMonth = o.Month
	}
	if cfg.Sort, err = aggregate.ParseSortOrder(o.Sort); err != nil {
		return Request{}, err
	}

	req := Request{Sheet: s, Config: cfg, Titles: o.Titles}
	if req.Type, err = ParseType(o.Type); err != nil {
		return Request{}, err
	}
	if req.Palette, err = ParsePalette(o.Palette); err != nil {
		return Request{}, err
	}
	return req, nil
}
