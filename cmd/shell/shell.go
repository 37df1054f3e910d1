// Package shell provides the "sheetviz shell" interactive REPL command.
package shell

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/klytics/sheetviz/internal/config"
	shellpkg "github.com/klytics/sheetviz/internal/shell"
)

// NewCommand creates the "shell" command.
func NewCommand() *cobra.Command {
	var (
		evalCmd   string
		file      string
		sheetName string
	)

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Start an interactive sheetviz shell",
		Long: `Start an interactive REPL with history and tab completion.

"set file <path>" and "set sheet <name>" make later commands use that
workbook and sheet when they name none, so a session can run
"chart --label Region" repeatedly while changing only the options.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			session, err := shellpkg.NewSession(config.HistoryPath())
			if err != nil {
				return err
			}
			if file != "" {
				if _, err := session.Set("set file " + quote(file)); err != nil {
					return err
				}
			}
			if sheetName != "" {
				session.DefaultSheet = sheetName
			}
			if evalCmd != "" {
				output, err := session.Eval(cmd.Context(), evalCmd)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), output)
				return nil
			}
			return session.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&evalCmd, "eval", "", "Run a single command and exit")
	cmd.Flags().StringVar(&file, "file", "", "Default workbook for the session")
	cmd.Flags().StringVar(&sheetName, "sheet", "", "Default sheet for the session")
	return cmd
}

func quote(s string) string {
	return `"` + s + `"`
}
