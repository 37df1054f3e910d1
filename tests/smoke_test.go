// Package tests provides smoke tests that validate every sheetviz command
// exists, runs, and exits cleanly without panicking.
// These tests run the compiled binary — they are integration tests and are
// skipped until it has been built with 'go build -o bin/sheetviz .'.
package tests

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/klytics/sheetviz/internal/formats/xlsx"
	"github.com/klytics/sheetviz/internal/sheet"
)

// sheetvizBin returns the path to the compiled sheetviz binary.
func sheetvizBin(t *testing.T) string {
	t.Helper()
	_, filename, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(filename), "..")
	bin := filepath.Join(root, "bin", "sheetviz")
	if runtime.GOOS == "windows" {
		bin += ".exe"
	}
	if _, err := os.Stat(bin); os.IsNotExist(err) {
		t.Skipf("sheetviz binary not found at %s — run 'go build -o bin/sheetviz .' first", bin)
	}
	return bin
}

// run executes sheetviz with args and a private HOME, and returns stdout,
// stderr, and exit code.
func run(t *testing.T, args ...string) (string, string, int) {
	t.Helper()
	cmd := exec.Command(sheetvizBin(t), args...)
	cmd.Env = append(os.Environ(), "HOME="+t.TempDir(), "NO_COLOR=1")
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	code := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			code = exitErr.ExitCode()
		}
	}
	return stdout.String(), stderr.String(), code
}

// writeFixture creates a small sales workbook and returns its path.
func writeFixture(t *testing.T) string {
	t.Helper()
	wb := &sheet.Workbook{Sheets: []sheet.Sheet{
		sheet.FromStrings("Sales", [][]string{
			{"Region", "Sales", "Mes"},
			{"North", "10", "Jan"},
			{"South", "5", "Feb"},
			{"North", "3", "Feb"},
		}),
		sheet.FromStrings("Sites", [][]string{
			{"Nombre", "Latitud", "Longitud"},
			{"Bogota", "4.71", "-74.07"},
		}),
	}}
	path := filepath.Join(t.TempDir(), "sales.xlsx")
	if err := xlsx.WriteFile(wb, path); err != nil {
		t.Fatalf("could not write fixture: %v", err)
	}
	return path
}

// TestAllCommandsExist validates that every command appears in --help.
func TestAllCommandsExist(t *testing.T) {
	commands := []string{
		"sheets", "table", "months", "chart", "map",
		"watch", "serve", "shell", "config", "doctor", "completion", "version",
	}

	stdout, _, code := run(t, "--help")
	if code != 0 {
		t.Fatalf("sheetviz --help exited with code %d", code)
	}
	for _, cmd := range commands {
		if !strings.Contains(stdout, cmd) {
			t.Errorf("command %q not found in sheetviz --help output", cmd)
		}
	}
}

// TestVersion validates the version command output.
func TestVersion(t *testing.T) {
	stdout, _, code := run(t, "version")
	if code != 0 {
		t.Fatal("sheetviz version should exit 0")
	}
	if !strings.Contains(stdout, "sheetviz") {
		t.Errorf("version output should name the binary, got %q", stdout)
	}
}

// TestSheetsJSON validates the sheet listing of a generated workbook.
func TestSheetsJSON(t *testing.T) {
	path := writeFixture(t)
	stdout, stderr, code := run(t, "sheets", path, "--json")
	if code != 0 {
		t.Fatalf("sheetviz sheets should exit 0, stderr: %s", stderr)
	}
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(stdout), &result); err != nil {
		t.Fatalf("--json output is not valid JSON: %v\nOutput: %s", err, stdout)
	}
	if !strings.Contains(stdout, "Sites") {
		t.Error("sheets output should list the Sites sheet")
	}
}

// TestChartWritesPNG validates the core read + aggregate + draw path.
func TestChartWritesPNG(t *testing.T) {
	path := writeFixture(t)
	out := filepath.Join(t.TempDir(), "sales.png")

	_, stderr, code := run(t, "chart", path, "--label", "Region", "--values", "Sales", "--png", out)
	if code != 0 {
		t.Fatalf("sheetviz chart should exit 0, stderr: %s", stderr)
	}
	info, err := os.Stat(out)
	if err != nil {
		t.Fatal("PNG file was not created")
	}
	if info.Size() == 0 {
		t.Error("PNG file is empty")
	}
}

// TestChartJSON validates the Chart.js configuration output.
func TestChartJSON(t *testing.T) {
	path := writeFixture(t)
	stdout, _, code := run(t, "chart", path, "--type", "pie", "--json")
	if code != 0 {
		t.Fatal("sheetviz chart --json should exit 0")
	}
	if !strings.Contains(stdout, `"pie"`) {
		t.Errorf("chart JSON should carry the pie type, got %s", stdout)
	}
}

// TestChartBadType validates that an unknown chart type is rejected.
func TestChartBadType(t *testing.T) {
	path := writeFixture(t)
	_, stderr, code := run(t, "chart", path, "--type", "radar")
	if code == 0 {
		t.Error("unknown chart type should exit non-zero")
	}
	if !strings.Contains(stderr, "Error:") {
		t.Errorf("stderr should carry an error message, got %q", stderr)
	}
}

// TestMissingFile validates a clean error for a missing workbook.
func TestMissingFile(t *testing.T) {
	_, stderr, code := run(t, "table", filepath.Join(t.TempDir(), "nope.xlsx"))
	if code != 1 {
		t.Errorf("missing file should exit 1, got %d", code)
	}
	if strings.Contains(stderr, "panic") {
		t.Error("missing file should not panic")
	}
}

// TestMapGeoJSON validates that coordinates become GeoJSON features.
func TestMapGeoJSON(t *testing.T) {
	path := writeFixture(t)
	stdout, _, code := run(t, "map", path, "--sheet", "Sites", "--geojson")
	if code != 0 {
		t.Fatal("sheetviz map --geojson should exit 0")
	}
	if !strings.Contains(stdout, "FeatureCollection") || !strings.Contains(stdout, "Bogota") {
		t.Errorf("unexpected GeoJSON: %s", stdout)
	}
}

// TestWatchStatusNotRunning validates watch status without a watcher.
func TestWatchStatusNotRunning(t *testing.T) {
	stdout, _, code := run(t, "watch", "status")
	if code != 0 {
		t.Errorf("watch status should exit 0, got %d", code)
	}
	if !strings.Contains(stdout, "not running") {
		t.Errorf("expected 'not running', got %q", stdout)
	}
}

// TestConfigShowRuns validates config show does not panic.
func TestConfigShowRuns(t *testing.T) {
	_, _, code := run(t, "config", "show")
	if code > 1 {
		t.Errorf("config show should exit 0 or 1, got %d", code)
	}
}

// TestAllCommandsHaveHelp validates every command accepts --help.
func TestAllCommandsHaveHelp(t *testing.T) {
	commandPaths := [][]string{
		{"sheets"}, {"table"}, {"months"},
		{"chart"}, {"chart", "presets", "list"}, {"chart", "presets", "show"}, {"chart", "presets", "delete"},
		{"map"},
		{"watch", "start"}, {"watch", "status"}, {"watch", "stop"},
		{"serve"}, {"shell"},
		{"config", "show"}, {"config", "set"}, {"config", "get"}, {"config", "reset"},
		{"config", "path"}, {"config", "validate"}, {"config", "env"},
		{"completion", "bash"}, {"completion", "zsh"},
		{"doctor"}, {"version"},
	}

	for _, path := range commandPaths {
		args := append(path, "--help")
		t.Run(strings.Join(path, "_"), func(t *testing.T) {
			_, _, code := run(t, args...)
			if code != 0 {
				t.Errorf("sheetviz %s --help should exit 0", strings.Join(path, " "))
			}
		})
	}
}
