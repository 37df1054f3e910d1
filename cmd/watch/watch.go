// Package watch provides the "sheetviz watch" commands that keep a chart image
// in sync with its workbook.
package watch

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/renameio/v2/maybe"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	cmdchart "github.com/klytics/sheetviz/cmd/chart"
	"github.com/klytics/sheetviz/internal/chart"
	"github.com/klytics/sheetviz/internal/config"
	"github.com/klytics/sheetviz/internal/logging"
	"github.com/klytics/sheetviz/internal/output"
	w "github.com/klytics/sheetviz/internal/watch"
)

// NewCommand creates the "watch" command with subcommands.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render a chart whenever its workbook changes",
		Long: `Watch a workbook and redraw a chart image every time it is saved.

Example:
  sheetviz watch start sales.xlsx --label Region --values Sales --png sales.png
  sheetviz watch status
  sheetviz watch stop`,
	}

	cmd.AddCommand(newStartCmd())
	cmd.AddCommand(newStopCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}

func newStartCmd() *cobra.Command {
	var (
		flags    cmdchart.Flags
		pngPath  string
		htmlPath string
		debounce int
	)

	cmd := &cobra.Command{
		Use:   "start <file>",
		Short: "Start watching a workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if pngPath == "" && htmlPath == "" {
				return fmt.Errorf("nothing to render — pass --png and/or --html")
			}
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("debounce") {
				debounce = cfg.Watch.DebounceMS
			}

			logger, err := logging.New(verbose)
			if err != nil {
				return fmt.Errorf("could not create logger: %w", err)
			}
			defer logger.Sync()

			workbook := args[0]
			render := func(string) error {
				_, req, err := flags.Prepare(cmd, workbook, cfg)
				if err != nil {
					return err
				}
				h := &chart.Handle{}
				_, advisories := chart.Render(h, req)
				for _, a := range advisories {
					logger.Warn(a)
				}
				if pngPath != "" {
					if err := replaceFile(pngPath, func(out io.Writer) error {
						return chart.WritePNG(h, out, chart.DefaultImageSize)
					}); err != nil {
						return err
					}
				}
				if htmlPath != "" {
					return replaceFile(htmlPath, func(out io.Writer) error {
						return chart.WriteHTML(h, out)
					})
				}
				return nil
			}

			// Draw once so the output exists before the first save.
			if err := render(workbook); err != nil {
				return err
			}

			watchCfg := w.WatchConfig{
				Targets:  []string{workbook},
				Debounce: debounce,
				Output:   strings.Trim(pngPath+" "+htmlPath, " "),
			}
			watcher, err := w.New(watchCfg, logger)
			if err != nil {
				return err
			}
			watcher.Handler = render

			stateDir := config.Dir()
			if err := w.WritePIDFile(stateDir); err != nil {
				output.WriteWarning("could not write PID file: %v", err)
			}
			defer w.RemovePIDFile(stateDir)
			if err := w.SaveConfig(stateDir, watcher.Config); err != nil {
				logger.Debug("could not save watch config", zap.Error(err))
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Watching %s → %s\n", workbook, watchCfg.Output)
			color.New(color.FgHiBlack).Fprintln(out, "Press Ctrl+C to stop")

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return watcher.Start(ctx)
		},
	}

	flags.Register(cmd)
	cmd.Flags().StringVar(&pngPath, "png", "", "PNG file to redraw on every change")
	cmd.Flags().StringVar(&htmlPath, "html", "", "HTML page to rewrite on every change")
	cmd.Flags().IntVar(&debounce, "debounce", 500, "Debounce interval in milliseconds (default: watch.debounce_ms)")

	return cmd
}

// replaceFile renders into memory and swaps the result in atomically, so
// viewers never see a half-written image.
func replaceFile(path string, write func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		return err
	}
	if err := maybe.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("could not replace %s: %w", path, err)
	}
	return nil
}

func newStopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the running watcher",
		RunE: func(cmd *cobra.Command, args []string) error {
			stateDir := config.Dir()
			pid, err := w.ReadPIDFile(stateDir)
			if err != nil {
				return fmt.Errorf("no watcher running (PID file not found)")
			}

			process, err := os.FindProcess(pid)
			if err != nil {
				return fmt.Errorf("could not find process %d: %w", pid, err)
			}

			if err := process.Signal(syscall.SIGTERM); err != nil {
				w.RemovePIDFile(stateDir)
				return fmt.Errorf("could not stop watcher (PID %d): %w", pid, err)
			}

			w.RemovePIDFile(stateDir)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return output.WriteJSON(cmd.OutOrStdout(), "watch stop", map[string]any{
					"stopped": true,
					"pid":     pid,
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Stopped watcher (PID %d)\n", pid)
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current watcher status",
		RunE: func(cmd *cobra.Command, args []string) error {
			stateDir := config.Dir()

			pid, err := w.ReadPIDFile(stateDir)
			running := err == nil

			// Signal 0 checks that the process still exists.
			if running {
				process, err := os.FindProcess(pid)
				if err != nil || process.Signal(syscall.Signal(0)) != nil {
					running = false
					w.RemovePIDFile(stateDir)
				}
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()

			if !running {
				if jsonOut {
					return output.WriteJSON(out, "watch status", map[string]any{"running": false})
				}
				fmt.Fprintln(out, "Watcher is not running")
				return nil
			}

			watchCfg, _ := w.LoadConfig(stateDir)

			status := map[string]any{
				"running": true,
				"pid":     pid,
			}
			if watchCfg != nil {
				status["targets"] = watchCfg.Targets
				status["output"] = watchCfg.Output
				status["debounceMs"] = watchCfg.Debounce
			}

			if jsonOut {
				return output.WriteJSON(out, "watch status", status)
			}

			fmt.Fprintf(out, "Watcher is running (PID %d)\n", pid)
			if watchCfg != nil {
				fmt.Fprintf(out, "  Workbook: %s\n", strings.Join(watchCfg.Targets, ", "))
				fmt.Fprintf(out, "  Output:   %s\n", watchCfg.Output)
				fmt.Fprintf(out, "  Debounce: %dms\n", watchCfg.Debounce)
			}
			return nil
		},
	}
}
