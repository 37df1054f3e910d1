package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func setupTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	viper.Reset()
	t.Setenv("HOME", dir)
	if _, err := Load(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		viper.Reset()
	})
	return dir
}

func TestLoadDefaults(t *testing.T) {
	setupTestConfig(t)
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Chart.Type != "bar" {
		t.Errorf("default chart type = %q", cfg.Chart.Type)
	}
	if cfg.Serve.MaxUploadMB != 10 {
		t.Errorf("default upload limit = %d", cfg.Serve.MaxUploadMB)
	}
	if len(cfg.Month.Keywords) != 2 || cfg.Month.Keywords[0] != "mes" {
		t.Errorf("default month keywords = %v", cfg.Month.Keywords)
	}
	if cfg.Map.Zoom != 5 || cfg.Map.CenterLat != 4.57 {
		t.Errorf("default map = %+v", cfg.Map)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	setupTestConfig(t)
	t.Setenv("SHEETVIZ_CHART_PALETTE", "ocean")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Chart.Palette != "ocean" {
		t.Errorf("palette = %q, want env override", cfg.Chart.Palette)
	}
}

func TestValidateDefaults(t *testing.T) {
	setupTestConfig(t)
	if issues := Validate(); len(issues) != 0 {
		t.Errorf("defaults should validate cleanly, got %+v", issues)
	}
}

func TestValidateBadValues(t *testing.T) {
	setupTestConfig(t)
	viper.Set("chart.type", "radar")
	viper.Set("chart.sort", "sideways")
	viper.Set("serve.addr", "nope")

	keys := map[string]bool{}
	for _, issue := range Validate() {
		if issue.Severity == "error" {
			keys[issue.Key] = true
		}
	}
	for _, k := range []string{"chart.type", "chart.sort", "serve.addr"} {
		if !keys[k] {
			t.Errorf("expected error for %s", k)
		}
	}
}

func TestToEnv(t *testing.T) {
	setupTestConfig(t)
	viper.Set("chart.type", "pie")

	env := ToEnv()
	if env["SHEETVIZ_CHART_TYPE"] != "pie" {
		t.Errorf("SHEETVIZ_CHART_TYPE = %q", env["SHEETVIZ_CHART_TYPE"])
	}
	if env["SHEETVIZ_MONTH_KEYWORDS"] != "mes,month" {
		t.Errorf("SHEETVIZ_MONTH_KEYWORDS = %q", env["SHEETVIZ_MONTH_KEYWORDS"])
	}
}

func TestSetAndGet(t *testing.T) {
	dir := setupTestConfig(t)

	if err := Set("chart.palette", "forest"); err != nil {
		t.Fatal(err)
	}
	if got := Get("chart.palette"); got != "forest" {
		t.Errorf("Get(chart.palette) = %q, want %q", got, "forest")
	}
	if _, err := os.Stat(filepath.Join(dir, ".sheetviz", "config.yaml")); err != nil {
		t.Errorf("config file not written: %v", err)
	}

	if err := Set("month.keywords", "periodo, mes ,"); err != nil {
		t.Fatal(err)
	}
	if got := Get("month.keywords"); got != "periodo,mes" {
		t.Errorf("Get(month.keywords) = %q", got)
	}

	if err := Set("provider", "x"); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestShowConfig(t *testing.T) {
	setupTestConfig(t)
	viper.Set("serve.addr", "0.0.0.0:9000")

	output := ShowConfig()
	for _, want := range []string{"Chart\n", "Serve\n", "0.0.0.0:9000", "palette:"} {
		if !strings.Contains(output, want) {
			t.Errorf("ShowConfig missing %q:\n%s", want, output)
		}
	}
}

func TestConfigPath(t *testing.T) {
	path := ConfigPath()
	if !strings.Contains(path, ".sheetviz") || !strings.Contains(path, "config.yaml") {
		t.Errorf("unexpected path: %q", path)
	}
	if !strings.HasSuffix(PresetDir(), "presets") {
		t.Errorf("unexpected preset dir: %q", PresetDir())
	}
}

func TestResetConfig(t *testing.T) {
	setupTestConfig(t)

	viper.Set("chart.type", "line")
	if err := SaveConfig(); err != nil {
		t.Fatal(err)
	}

	if err := ResetConfig(); err != nil {
		t.Fatal(err)
	}
	if viper.GetString("chart.type") != "bar" {
		t.Errorf("chart.type should reset to default, got %q", viper.GetString("chart.type"))
	}
	if _, err := os.Stat(ConfigPath()); !os.IsNotExist(err) {
		t.Error("config file should be removed")
	}
}
