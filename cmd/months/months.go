// Package months provides the "sheetviz months" command.
package months

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetviz/internal/aggregate"
	"github.com/klytics/sheetviz/internal/config"
	"github.com/klytics/sheetviz/internal/formats/xlsx"
	"github.com/klytics/sheetviz/internal/output"
	"github.com/klytics/sheetviz/internal/sheet"
)

type monthsResult struct {
	Sheet   string   `json:"sheet"`
	Column  string   `json:"column,omitempty"`
	Options []string `json:"options"`
}

// NewCommand returns the months command.
func NewCommand() *cobra.Command {
	var (
		sheetName string
		column    string
	)

	cmd := &cobra.Command{
		Use:   "months <file>",
		Short: "List the month filter choices of a sheet",
		Long: `Finds the month column of a sheet and lists the values "chart --month"
accepts. The month column is the first header containing one of the
month.keywords config values ("mes", "month") unless --month-column names one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			s, err := xlsx.OpenSheet(args[0], sheetName)
			if err != nil {
				return err
			}

			col := sheet.DetectMonthColumn(s.Header(), cfg.Month.Keywords...)
			if column != "" {
				if col, err = s.ResolveColumn(column); err != nil {
					return err
				}
			}

			res := monthsResult{Sheet: s.Name, Options: aggregate.MonthOptions(s, col)}
			if col != sheet.NoColumn {
				res.Column = s.HeaderName(col)
			}

			out := cmd.OutOrStdout()
			if jsonFlag {
				return output.WriteJSON(out, "months", res)
			}
			if res.Column == "" {
				color.New(color.FgHiBlack).Fprintf(out, "No month column in %q — pass --month-column\n", s.Name)
				return nil
			}
			color.New(color.Bold, color.FgCyan).Fprintf(out, "%s\n", res.Column)
			for _, o := range res.Options {
				fmt.Fprintf(out, "  %s\n", o)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&sheetName, "sheet", "", "Sheet to read (default: first sheet)")
	cmd.Flags().StringVar(&column, "month-column", "", "Month column name or index (default: detected)")

	return cmd
}
