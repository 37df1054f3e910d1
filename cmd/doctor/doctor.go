// Package doctor provides the "sheetviz doctor" command for checking the
// local setup.
package doctor

import (
	"fmt"
	"io"
	"net"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetviz/internal/config"
	"github.com/klytics/sheetviz/internal/output"
	"github.com/klytics/sheetviz/internal/preset"
	"github.com/klytics/sheetviz/internal/watch"
)

// Check represents a single health check result.
type Check struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Message string `json:"message"`
}

// NewCommand creates the "doctor" command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration, presets and ports",
		Long:  "Run diagnostic checks to verify sheetviz is properly configured.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			checks := RunChecks(cfg)

			out := cmd.OutOrStdout()
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return output.WriteJSON(out, "doctor", checks)
			}

			errCount := printChecks(out, checks)
			if errCount > 0 {
				return fmt.Errorf("%d check(s) failed", errCount)
			}
			return nil
		},
	}
}

func printChecks(out io.Writer, checks []Check) int {
	green := color.New(color.FgGreen).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintln(out, "sheetviz doctor")
	fmt.Fprintln(out, "===============")
	fmt.Fprintln(out)

	okCount, warnCount, errCount := 0, 0, 0
	for _, c := range checks {
		var icon string
		switch c.Status {
		case "ok":
			icon = green("✓")
			okCount++
		case "warning":
			icon = yellow("!")
			warnCount++
		case "error":
			icon = red("✗")
			errCount++
		}
		fmt.Fprintf(out, "  %s %s: %s\n", icon, c.Name, c.Message)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "  %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)
	return errCount
}

// RunChecks inspects the runtime, the config and preset directories, the
// running watcher and the configured serve address.
func RunChecks(cfg *config.Config) []Check {
	var checks []Check

	checks = append(checks, Check{
		Name:    "Go Runtime",
		Status:  "ok",
		Message: fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
	})

	dir := config.Dir()
	if info, err := os.Stat(dir); err == nil && info.IsDir() {
		checks = append(checks, Check{Name: "Config Directory", Status: "ok", Message: dir})
	} else {
		checks = append(checks, Check{
			Name:    "Config Directory",
			Status:  "warning",
			Message: fmt.Sprintf("%s not found — it is created by 'sheetviz config set' or --save-preset", dir),
		})
	}

	issues := config.Validate()
	bad := 0
	for _, issue := range issues {
		if issue.Severity == "error" {
			bad++
			checks = append(checks, Check{Name: "Config", Status: "error", Message: issue.Message})
		}
	}
	if bad == 0 {
		checks = append(checks, Check{Name: "Config", Status: "ok", Message: config.ConfigPath()})
	}

	checks = append(checks, checkPresets(config.PresetDir()))
	checks = append(checks, checkWatcher(dir))
	checks = append(checks, checkAddr(cfg.Serve.Addr))

	pager := "less"
	if fields := strings.Fields(os.Getenv("PAGER")); len(fields) > 0 {
		pager = fields[0]
	}
	if _, err := exec.LookPath(pager); err == nil {
		checks = append(checks, Check{Name: "Pager", Status: "ok", Message: pager})
	} else {
		checks = append(checks, Check{
			Name:    "Pager",
			Status:  "warning",
			Message: fmt.Sprintf("%s not found in PATH — long tables print without paging", pager),
		})
	}

	return checks
}

func checkPresets(dir string) Check {
	store := preset.NewStore(dir)
	names, err := store.List()
	if err != nil {
		return Check{Name: "Presets", Status: "error", Message: err.Error()}
	}
	for _, n := range names {
		if _, err := store.Load(n); err != nil {
			return Check{Name: "Presets", Status: "error", Message: err.Error()}
		}
	}
	return Check{Name: "Presets", Status: "ok", Message: fmt.Sprintf("%d saved in %s", len(names), dir)}
}

func checkWatcher(dir string) Check {
	pid, err := watch.ReadPIDFile(dir)
	if err != nil {
		return Check{Name: "Watcher", Status: "ok", Message: "not running"}
	}
	process, err := os.FindProcess(pid)
	if err != nil || process.Signal(syscall.Signal(0)) != nil {
		return Check{
			Name:    "Watcher",
			Status:  "warning",
			Message: fmt.Sprintf("stale PID file for %d — run 'sheetviz watch status' to clear it", pid),
		}
	}
	return Check{Name: "Watcher", Status: "ok", Message: fmt.Sprintf("running (PID %d)", pid)}
}

func checkAddr(addr string) Check {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return Check{
			Name:    "Serve Address",
			Status:  "warning",
			Message: fmt.Sprintf("%s is not available (%v) — set serve.addr or pass --addr", addr, err),
		}
	}
	ln.Close()
	return Check{Name: "Serve Address", Status: "ok", Message: addr + " is free"}
}
