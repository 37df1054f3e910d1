// Package chart provides the "sheetviz chart" command.
package chart

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetviz/internal/chart"
	"github.com/klytics/sheetviz/internal/config"
	"github.com/klytics/sheetviz/internal/output"
	"github.com/klytics/sheetviz/internal/preset"
	"github.com/klytics/sheetviz/internal/sheet"
	"github.com/klytics/sheetviz/internal/table"
)

// NewCommand returns the chart command.
func NewCommand() *cobra.Command {
	var (
		flags      Flags
		pngPath    string
		htmlPath   string
		savePreset string
		width      int
		height     int
	)

	cmd := &cobra.Command{
		Use:   "chart <file>",
		Short: "Aggregate a sheet and draw it as a chart",
		Long: `Groups the rows of a sheet by a label column, sums the value columns per
label and draws the result.

Without output flags the aggregated series is printed as a table; --json
prints the Chart.js configuration. --png and --html export the chart.

Example:
  sheetviz chart sales.xlsx --label Region --values Sales,Cost --sort desc
  sheetviz chart sales.xlsx --type pie --month Jan --png jan.png
  sheetviz chart sales.xlsx --preset monthly --html report.html`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonFlag, _ := cmd.Flags().GetBool("json")
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			s, req, err := flags.Prepare(cmd, args[0], cfg)
			if err != nil {
				return err
			}

			h := &chart.Handle{}
			rendered, advisories := chart.Render(h, req)

			if pngPath != "" {
				if err := writeFile(pngPath, func(w io.Writer) error {
					return chart.WritePNG(h, w, chart.ImageSize{Width: width, Height: height})
				}); err != nil {
					return err
				}
			}
			if htmlPath != "" {
				if err := writeFile(htmlPath, func(w io.Writer) error {
					return chart.WriteHTML(h, w)
				}); err != nil {
					return err
				}
			}
			if savePreset != "" {
				p := preset.FromConfig(savePreset, s.Name, s, req.Config, req.Type, req.Palette, h.Titles())
				if err := preset.NewStore(config.PresetDir()).Save(p); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if jsonFlag {
				return output.WriteJSON(out, "chart", rendered, advisories...)
			}

			for _, a := range advisories {
				output.WriteWarning("%s", a)
			}
			printSummary(out, h)

			done := color.New(color.FgGreen)
			if pngPath != "" {
				done.Fprintf(out, "Wrote %s\n", pngPath)
			}
			if htmlPath != "" {
				done.Fprintf(out, "Wrote %s\n", htmlPath)
			}
			if savePreset != "" {
				done.Fprintf(out, "Saved preset %q\n", savePreset)
			}
			return nil
		},
	}

	flags.Register(cmd)
	cmd.Flags().StringVar(&pngPath, "png", "", "Export the chart as a PNG image")
	cmd.Flags().StringVar(&htmlPath, "html", "", "Export the chart as a standalone HTML page")
	cmd.Flags().StringVar(&savePreset, "save-preset", "", "Save this chart setup as a named preset")
	cmd.Flags().IntVar(&width, "width", chart.DefaultImageSize.Width, "PNG width in pixels")
	cmd.Flags().IntVar(&height, "height", chart.DefaultImageSize.Height, "PNG height in pixels")

	cmd.AddCommand(newPresetsCommand())

	return cmd
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

// printSummary prints the chart title and its series as a table. Circular
// charts get a share column with the percentages drawn on the slices.
func printSummary(w io.Writer, h *chart.Handle) {
	cfg := h.Config()
	color.New(color.Bold, color.FgCyan).Fprintf(w, "%s", h.Titles().Title)
	color.New(color.FgHiBlack).Fprintf(w, "  (%s, %d labels)\n", h.Type(), len(cfg.Data.Labels))

	header := []string{h.Titles().XAxis}
	for _, ds := range cfg.Data.Datasets {
		header = append(header, ds.Label)
	}
	circular := h.Type().Circular() && len(cfg.Data.Datasets) > 0
	var shares []float64
	if circular {
		header = append(header, "Share")
		shares = chart.Percentages(cfg.Data.Datasets[0].Data)
	}

	rows := [][]string{header}
	for i, label := range cfg.Data.Labels {
		row := []string{label}
		for _, ds := range cfg.Data.Datasets {
			v := 0.0
			if i < len(ds.Data) {
				v = ds.Data[i]
			}
			row = append(row, sheet.FormatNumber(v))
		}
		if circular {
			row = append(row, fmt.Sprintf("%.1f%%", shares[i]))
		}
		rows = append(rows, row)
	}
	s := sheet.FromStrings(strings.TrimSpace(h.Titles().Title), rows)
	table.Write(w, &s)
}
