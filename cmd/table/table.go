// Package table provides the "sheetviz table" command.
package table

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/klytics/sheetviz/internal/formats/xlsx"
	"github.com/klytics/sheetviz/internal/output"
	"github.com/klytics/sheetviz/internal/sheet"
	tbl "github.com/klytics/sheetviz/internal/table"
)

type tableResult struct {
	Sheet  string         `json:"sheet"`
	Header []string       `json:"header"`
	Rows   [][]sheet.Cell `json:"rows"`
}

// NewCommand returns the table command.
func NewCommand() *cobra.Command {
	var (
		sheetName string
		csvOutput bool
		htmlOut   bool
		noPager   bool
	)

	cmd := &cobra.Command{
		Use:   "table <file>",
		Short: "Print a sheet as a table",
		Long: `Prints one sheet of a workbook. The first row is the header.

Output is an aligned terminal table by default; --csv and --html print the
sheet as CSV or as an HTML table fragment instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			if csvOutput && htmlOut {
				return fmt.Errorf("--csv and --html cannot be used together")
			}

			s, err := xlsx.OpenSheet(args[0], sheetName)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			switch {
			case jsonFlag:
				return output.WriteJSON(out, "table", tableResult{Sheet: s.Name, Header: s.Header(), Rows: s.Data()})
			case csvOutput:
				_, err := fmt.Fprint(out, s.ToCSV())
				return err
			case htmlOut:
				_, err := fmt.Fprintln(out, tbl.HTML(s))
				return err
			}

			var buf bytes.Buffer
			tbl.Write(&buf, s)
			if !noPager && out == os.Stdout && output.ShouldPage(buf.String(), 0) {
				return output.Page(buf.String())
			}
			_, err = out.Write(buf.Bytes())
			return err
		},
	}

	cmd.Flags().StringVar(&sheetName, "sheet", "", "Sheet to print (default: first sheet)")
	cmd.Flags().BoolVar(&csvOutput, "csv", false, "Output as CSV")
	cmd.Flags().BoolVar(&htmlOut, "html", false, "Output as an HTML table")
	cmd.Flags().BoolVar(&noPager, "no-pager", false, "Never pipe long tables through $PAGER")

	return cmd
}
