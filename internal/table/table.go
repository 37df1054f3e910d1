// Package table renders sheets as HTML tables for the browser and as
// aligned text tables for the terminal.
package table

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/microcosm-cc/bluemonday"

	"github.com/klytics/sheetviz/internal/sheet"
)

const (
	tableClass  = "min-w-full divide-y divide-gray-200"
	theadClass  = "bg-gray-100 sticky top-0 z-10"
	thClass     = "px-4 py-2 text-left text-xs font-semibold text-gray-600 uppercase tracking-wider"
	tbodyClass  = "bg-white"
	trClass     = "border-b border-gray-200 hover:bg-blue-50 transition-colors duration-150 ease-in-out"
	tdClass     = "px-4 py-2 whitespace-nowrap text-sm text-gray-700"
	maxColWidth = 40
	minColWidth = 3
)

var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// cellPolicy strips all markup from cell text and escapes what is left.
func cellPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Clean returns cell text safe to embed in HTML.
func Clean(s string) string {
	if s == "" {
		return ""
	}
	return cellPolicy().Sanitize(s)
}

// HTML renders the sheet as a table: the first row becomes the header and
// every remaining row a body row. An empty sheet renders as "".
func HTML(s *sheet.Sheet) string {
	if s == nil || len(s.Rows) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<table class="%s">`, tableClass)
	fmt.Fprintf(&b, `<thead class="%s"><tr>`, theadClass)
	for _, h := range s.Rows[0] {
		fmt.Fprintf(&b, `<th class="%s">%s</th>`, thClass, Clean(h.String()))
	}
	b.WriteString(`</tr></thead>`)

	fmt.Fprintf(&b, `<tbody class="%s">`, tbodyClass)
	for _, row := range s.Rows[1:] {
		fmt.Fprintf(&b, `<tr class="%s">`, trClass)
		for _, c := range row {
			fmt.Fprintf(&b, `<td class="%s">%s</td>`, tdClass, Clean(c.String()))
		}
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</tbody></table>`)
	return b.String()
}

// Write prints the sheet as an aligned text table with a bold header and
// a row count footer.
func Write(w io.Writer, s *sheet.Sheet) {
	headerStyle := color.New(color.Bold, color.FgCyan)
	dim := color.New(color.FgHiBlack)

	headerStyle.Fprintf(w, "Sheet: %s\n", s.Name)
	if len(s.Rows) == 0 {
		dim.Fprintln(w, "  (empty)")
		return
	}

	rows := make([][]string, len(s.Rows))
	for i, row := range s.Rows {
		rows[i] = make([]string, len(row))
		for j, c := range row {
			rows[i][j] = c.String()
		}
	}
	widths := columnWidths(rows)

	writeRow(w, rows[0], widths, color.New(color.Bold))
	dim.Fprint(w, "  ")
	for j, cw := range widths {
		if j > 0 {
			dim.Fprint(w, "+-")
		}
		dim.Fprint(w, strings.Repeat("-", cw+1))
	}
	dim.Fprintln(w)

	for _, row := range rows[1:] {
		writeRow(w, row, widths, nil)
	}
	dim.Fprintf(w, "  (%d rows)\n", len(rows)-1)
}

func columnWidths(rows [][]string) []int {
	var widths []int
	for _, row := range rows {
		for j, cell := range row {
			for len(widths) <= j {
				widths = append(widths, 0)
			}
			if n := utf8.RuneCountInString(cell); n > widths[j] {
				widths[j] = n
			}
		}
	}
	for i := range widths {
		widths[i] = max(minColWidth, min(maxColWidth, widths[i]))
	}
	return widths
}

func writeRow(w io.Writer, row []string, widths []int, style *color.Color) {
	fmt.Fprint(w, "  ")
	for j, cw := range widths {
		if j > 0 {
			fmt.Fprint(w, "| ")
		}
		cell := ""
		if j < len(row) {
			cell = truncate(row[j], cw)
		}
		padded := cell + strings.Repeat(" ", cw-utf8.RuneCountInString(cell)+1)
		if style != nil {
			style.Fprint(w, padded)
		} else {
			fmt.Fprint(w, padded)
		}
	}
	fmt.Fprintln(w)
}

// truncate cuts s to width runes, marking the cut with "~".
func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-1]) + "~"
}
