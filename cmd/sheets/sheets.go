// Package sheets provides the "sheetviz sheets" command.
package sheets

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetviz/internal/formats/xlsx"
	"github.com/klytics/sheetviz/internal/output"
)

// Info describes one sheet of a workbook.
type Info struct {
	Name    string   `json:"name"`
	Rows    int      `json:"rows"`
	Columns []string `json:"columns"`
}

// NewCommand returns the sheets command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sheets <file>",
		Short: "List the sheets of a workbook",
		Long:  "Lists every sheet in an .xlsx, .xlsm or .xls workbook with its data row count and header.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			path := args[0]
			if !xlsx.Supported(path) {
				return fmt.Errorf("expected a spreadsheet, got %q — use 'sheetviz sheets <file.xlsx>'", path)
			}
			wb, err := xlsx.ReadFile(path)
			if err != nil {
				return err
			}

			infos := make([]Info, 0, len(wb.Sheets))
			for i := range wb.Sheets {
				s := &wb.Sheets[i]
				infos = append(infos, Info{Name: s.Name, Rows: s.RowCount(), Columns: s.Header()})
			}

			out := cmd.OutOrStdout()
			if jsonFlag {
				return output.WriteJSON(out, "sheets", infos)
			}

			name := color.New(color.Bold, color.FgCyan)
			dim := color.New(color.FgHiBlack)
			for _, info := range infos {
				name.Fprintf(out, "%s", info.Name)
				dim.Fprintf(out, "  (%d rows, %d columns)\n", info.Rows, len(info.Columns))
			}
			return nil
		},
	}
}
