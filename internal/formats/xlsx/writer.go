package xlsx

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/klytics/sheetviz/internal/sheet"
)

// WriteFile creates a new .xlsx file from the given workbook. Number cells
// are stored as numbers and empty cells are left unset.
func WriteFile(wb *sheet.Workbook, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range wb.Sheets {
		sheetName := s.Name
		if sheetName == "" {
			sheetName = fmt.Sprintf("Sheet%d", i+1)
		}

		if i == 0 {
			defaultSheet := f.GetSheetName(0)
			if err := f.SetSheetName(defaultSheet, sheetName); err != nil {
				return fmt.Errorf("could not rename sheet: %w", err)
			}
		} else {
			if _, err := f.NewSheet(sheetName); err != nil {
				return fmt.Errorf("could not create sheet %q: %w", sheetName, err)
			}
		}

		for rowIdx, row := range s.Rows {
			for colIdx, cell := range row {
				if cell.IsEmpty() {
					continue
				}
				cellName, err := excelize.CoordinatesToCellName(colIdx+1, rowIdx+1)
				if err != nil {
					return fmt.Errorf("invalid cell coordinates: %w", err)
				}
				var value any = cell.String()
				if cell.Kind() == sheet.KindNumber {
					value, _ = cell.Float()
				}
				if err := f.SetCellValue(sheetName, cellName, value); err != nil {
					return fmt.Errorf("could not set cell %s: %w", cellName, err)
				}
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("could not save %s: %w", path, err)
	}

	return nil
}
