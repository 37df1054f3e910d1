package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/viper"

	"github.com/klytics/sheetviz/internal/aggregate"
	"github.com/klytics/sheetviz/internal/chart"
)

var envReplacer = strings.NewReplacer(".", "_")

// ConfigIssue represents a validation finding.
type ConfigIssue struct {
	Key      string `json:"key"`
	Severity string `json:"severity"` // "error", "warning"
	Message  string `json:"message"`
	Fix      string `json:"fix"`
}

// Keys returns every known setting, sorted.
func Keys() []string {
	keys := make([]string, 0, len(defaults))
	for k := range defaults {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Known reports whether key is a recognized setting.
func Known(key string) bool {
	_, ok := defaults[key]
	return ok
}

// Validate checks config values and returns a list of issues.
func Validate() []ConfigIssue {
	var issues []ConfigIssue

	if _, err := chart.ParseType(viper.GetString("chart.type")); err != nil {
		issues = append(issues, ConfigIssue{
			Key:      "chart.type",
			Severity: "error",
			Message:  err.Error(),
			Fix:      "sheetviz config set chart.type bar",
		})
	}
	if _, err := chart.ParsePalette(viper.GetString("chart.palette")); err != nil {
		issues = append(issues, ConfigIssue{
			Key:      "chart.palette",
			Severity: "error",
			Message:  err.Error(),
			Fix:      "sheetviz config set chart.palette default",
		})
	}
	if _, err := aggregate.ParseSortOrder(viper.GetString("chart.sort")); err != nil {
		issues = append(issues, ConfigIssue{
			Key:      "chart.sort",
			Severity: "error",
			Message:  err.Error(),
			Fix:      "sheetviz config set chart.sort none",
		})
	}

	if _, _, err := net.SplitHostPort(viper.GetString("serve.addr")); err != nil {
		issues = append(issues, ConfigIssue{
			Key:      "serve.addr",
			Severity: "error",
			Message:  fmt.Sprintf("serve.addr %q is not host:port", viper.GetString("serve.addr")),
			Fix:      "sheetviz config set serve.addr 127.0.0.1:8080",
		})
	}
	if viper.GetInt("serve.max_upload_mb") <= 0 {
		issues = append(issues, ConfigIssue{
			Key:      "serve.max_upload_mb",
			Severity: "warning",
			Message:  "upload limit is not positive — the default of 10 MB will be used",
			Fix:      "sheetviz config set serve.max_upload_mb 10",
		})
	}

	if len(viper.GetStringSlice("month.keywords")) == 0 {
		issues = append(issues, ConfigIssue{
			Key:      "month.keywords",
			Severity: "warning",
			Message:  "no month keywords — month columns will never be detected",
			Fix:      "sheetviz config set month.keywords mes,month",
		})
	}

	return issues
}

// ToEnv returns all config values as a map of env var name -> value.
func ToEnv() map[string]string {
	env := make(map[string]string)
	for _, k := range Keys() {
		if v := Get(k); v != "" {
			env["SHEETVIZ_"+strings.ToUpper(envReplacer.Replace(k))] = v
		}
	}
	return env
}

// Set sets a config value and saves to disk. List settings take a
// comma-separated value.
func Set(key, value string) error {
	if !Known(key) {
		return fmt.Errorf("unknown setting %q — available: %s", key, strings.Join(Keys(), ", "))
	}
	if _, isList := defaults[key].([]string); isList {
		var items []string
		for _, p := range strings.Split(value, ",") {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		viper.Set(key, items)
	} else {
		viper.Set(key, value)
	}
	return SaveConfig()
}

// Get retrieves a config value. List settings come back comma-separated.
func Get(key string) string {
	if _, isList := defaults[key].([]string); isList {
		return strings.Join(viper.GetStringSlice(key), ",")
	}
	return viper.GetString(key)
}

// ResetConfig resets all config to defaults.
func ResetConfig() error {
	path := ConfigPath()
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("could not delete config: %w", err)
	}
	for k, v := range defaults {
		viper.Set(k, v)
	}
	return nil
}

// SaveConfig writes the current config to ~/.sheetviz/config.yaml.
func SaveConfig() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}

	path := filepath.Join(dir, "config.yaml")
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("could not write config: %w", err)
	}

	os.Chmod(path, 0600)
	return nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(Dir(), "config.yaml")
}

// ShowConfig returns a formatted string of the current configuration.
func ShowConfig() string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Config: %s\n\n", ConfigPath()))

	section := ""
	for _, k := range Keys() {
		group, name, _ := strings.Cut(k, ".")
		if group != section {
			if section != "" {
				sb.WriteString("\n")
			}
			sb.WriteString(strings.ToUpper(group[:1]) + group[1:] + "\n")
			section = group
		}
		sb.WriteString(fmt.Sprintf("  %-14s %s\n", name+":", Get(k)))
	}
	sb.WriteString("\n")

	return sb.String()
}
