// Package xlsx reads and writes spreadsheet workbooks. Modern .xlsx files
// go through excelize; legacy .xls files are read with extrame/xls.
package xlsx

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"github.com/klytics/sheetviz/internal/sheet"
)

// Extensions lists the file extensions the reader accepts.
var Extensions = []string{".xlsx", ".xlsm", ".xls"}

// Supported reports whether path has a readable spreadsheet extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// ReadFile reads a workbook from disk.
func ReadFile(path string) (*sheet.Workbook, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("file not found: %s — check that the path is correct", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}
	wb, err := ReadBytes(data, path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return wb, nil
}

// OpenSheet checks the extension, reads the workbook and selects a sheet.
// An empty sheet name selects the first sheet.
func OpenSheet(path, sheetName string) (*sheet.Sheet, error) {
	if !Supported(path) {
		return nil, fmt.Errorf("expected a spreadsheet (%s), got %q", strings.Join(Extensions, ", "), path)
	}
	wb, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	return wb.Select(sheetName)
}

// ReadBytes parses workbook bytes. The name is only used to pick the format
// by extension; anything other than .xls is treated as .xlsx.
func ReadBytes(data []byte, name string) (*sheet.Workbook, error) {
	if strings.EqualFold(filepath.Ext(name), ".xls") {
		return readXLS(data)
	}
	return readXLSX(data)
}

func readXLSX(data []byte) (*sheet.Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("could not read Excel data — is this a valid .xlsx file? %w", err)
	}
	defer f.Close()

	wb := &sheet.Workbook{}
	for _, name := range f.GetSheetList() {
		// Raw values keep numbers unformatted so they parse back as numbers.
		rows, err := f.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("could not read sheet %q: %w", name, err)
		}
		wb.Sheets = append(wb.Sheets, sheet.FromStrings(name, rows))
	}
	if len(wb.Sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	return wb, nil
}

func readXLS(data []byte) (*sheet.Workbook, error) {
	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("could not read Excel data — is this a valid .xls file? %w", err)
	}
	if book.NumSheets() == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	wb := &sheet.Workbook{}
	for i := 0; i < book.NumSheets(); i++ {
		ws := book.GetSheet(i)
		if ws == nil {
			continue
		}
		var rows [][]string
		for r := 0; r <= int(ws.MaxRow); r++ {
			row := ws.Row(r)
			if row == nil {
				rows = append(rows, nil)
				continue
			}
			cells := make([]string, 0, row.LastCol())
			for c := 0; c < row.LastCol(); c++ {
				cells = append(cells, row.Col(c))
			}
			rows = append(rows, cells)
		}
		wb.Sheets = append(wb.Sheets, sheet.FromStrings(ws.Name, trimTrailingEmpty(rows)))
	}
	return wb, nil
}

// trimTrailingEmpty drops blank rows at the end of the sheet, matching what
// excelize returns for .xlsx files.
func trimTrailingEmpty(rows [][]string) [][]string {
	for len(rows) > 0 {
		last := rows[len(rows)-1]
		blank := true
		for _, c := range last {
			if c != "" {
				blank = false
				break
			}
		}
		if !blank {
			break
		}
		rows = rows[:len(rows)-1]
	}
	return rows
}
