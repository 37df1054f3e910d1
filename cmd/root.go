// Package cmd contains all CLI commands for the sheetviz binary.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetviz/cmd/chart"
	"github.com/klytics/sheetviz/cmd/completion"
	cmdconfig "github.com/klytics/sheetviz/cmd/config"
	"github.com/klytics/sheetviz/cmd/doctor"
	"github.com/klytics/sheetviz/cmd/maps"
	"github.com/klytics/sheetviz/cmd/months"
	"github.com/klytics/sheetviz/cmd/serve"
	"github.com/klytics/sheetviz/cmd/sheets"
	cmdshell "github.com/klytics/sheetviz/cmd/shell"
	"github.com/klytics/sheetviz/cmd/table"
	"github.com/klytics/sheetviz/cmd/version"
	cmdwatch "github.com/klytics/sheetviz/cmd/watch"
	"github.com/klytics/sheetviz/internal/config"
	"github.com/klytics/sheetviz/internal/shell"
)

var (
	jsonOutput bool
	verbose    bool
	noColor    bool
)

func init() {
	shell.DefaultRunner = run
}

// NewRootCommand creates and returns the root cobra command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetviz",
		Short: "Turn spreadsheets into charts, tables and maps",
		Long: `sheetviz — spreadsheets in, charts out.

Reads .xlsx, .xlsm and .xls workbooks, aggregates a sheet by a label column
and draws it as a bar, line, pie, doughnut or stacked bar chart, prints it as
a table, or plots its coordinates on a map.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("could not load config: %w", err)
			}
			if noColor || !cfg.Output.Color {
				color.NoColor = true
			}
			return nil
		},
	}

	// Global persistent flags
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI color output")

	// Register subcommands
	rootCmd.AddCommand(sheets.NewCommand())
	rootCmd.AddCommand(table.NewCommand())
	rootCmd.AddCommand(months.NewCommand())
	rootCmd.AddCommand(chart.NewCommand())
	rootCmd.AddCommand(maps.NewCommand())
	rootCmd.AddCommand(cmdwatch.NewCommand())
	rootCmd.AddCommand(serve.NewCommand())
	rootCmd.AddCommand(cmdshell.NewCommand())
	rootCmd.AddCommand(cmdconfig.NewCommand())
	rootCmd.AddCommand(doctor.NewCommand())
	rootCmd.AddCommand(completion.NewCommand(rootCmd))
	rootCmd.AddCommand(version.NewCommand())

	return rootCmd
}

// Execute runs the root command and handles any returned errors.
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

// run executes one command line for the interactive shell.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) > 0 && args[0] == "shell" {
		return fmt.Errorf("already in a sheetviz shell")
	}
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	return rootCmd.ExecuteContext(ctx)
}
