package chart

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetviz/internal/config"
	"github.com/klytics/sheetviz/internal/output"
	"github.com/klytics/sheetviz/internal/preset"
)

func newPresetsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "Manage saved chart presets",
		Long:  "Presets are saved with 'sheetviz chart --save-preset <name>' and reused with --preset <name>.",
	}
	cmd.AddCommand(newPresetsListCommand())
	cmd.AddCommand(newPresetsShowCommand())
	cmd.AddCommand(newPresetsDeleteCommand())
	return cmd
}

func newPresetsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			names, err := preset.NewStore(config.PresetDir()).List()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonFlag {
				if names == nil {
					names = []string{}
				}
				return output.WriteJSON(out, "chart presets list", names)
			}
			if len(names) == 0 {
				color.New(color.FgHiBlack).Fprintln(out, "No presets saved")
				return nil
			}
			for _, n := range names {
				fmt.Fprintln(out, n)
			}
			return nil
		},
	}
}

func newPresetsShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <name>",
		Short: "Show a saved preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			p, err := preset.NewStore(config.PresetDir()).Load(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if jsonFlag {
				return output.WriteJSON(out, "chart presets show", p)
			}
			bold := color.New(color.Bold)
			bold.Fprintf(out, "%s\n", p.Name)
			fmt.Fprintf(out, "  sheet:   %s\n", p.Sheet)
			fmt.Fprintf(out, "  label:   %s\n", p.Label)
			fmt.Fprintf(out, "  values:  %v\n", p.Values)
			if p.MonthColumn != "" {
				fmt.Fprintf(out, "  month:   %s = %s\n", p.MonthColumn, p.Month)
			}
			fmt.Fprintf(out, "  sort:    %s\n", p.Sort)
			fmt.Fprintf(out, "  type:    %s\n", p.Type)
			fmt.Fprintf(out, "  palette: %s\n", p.Palette)
			return nil
		},
	}
}

func newPresetsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a saved preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := preset.NewStore(config.PresetDir()).Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted preset %q\n", args[0])
			return nil
		},
	}
}
