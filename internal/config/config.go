// Package config manages application configuration from files and environment.
package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the application configuration.
type Config struct {
	Chart struct {
		Type    string `mapstructure:"type"`
		Palette string `mapstructure:"palette"`
		Sort    string `mapstructure:"sort"`
	} `mapstructure:"chart"`
	Month struct {
		Keywords []string `mapstructure:"keywords"`
	} `mapstructure:"month"`
	Serve struct {
		Addr        string `mapstructure:"addr"`
		MaxUploadMB int    `mapstructure:"max_upload_mb"`
	} `mapstructure:"serve"`
	Map struct {
		CenterLat float64 `mapstructure:"center_lat"`
		CenterLon float64 `mapstructure:"center_lon"`
		Zoom      int     `mapstructure:"zoom"`
	} `mapstructure:"map"`
	Watch struct {
		DebounceMS int `mapstructure:"debounce_ms"`
	} `mapstructure:"watch"`
	Output struct {
		Color bool `mapstructure:"color"`
	} `mapstructure:"output"`
}

// defaults are applied by Load and restored by ResetConfig.
var defaults = map[string]any{
	"chart.type":          "bar",
	"chart.palette":       "default",
	"chart.sort":          "none",
	"month.keywords":      []string{"mes", "month"},
	"serve.addr":          "127.0.0.1:8080",
	"serve.max_upload_mb": 10,
	"map.center_lat":      4.57,
	"map.center_lon":      -74.29,
	"map.zoom":            5,
	"watch.debounce_ms":   500,
	"output.color":        true,
}

// Load reads the configuration from ~/.sheetviz/config.yaml and
// SHEETVIZ_* environment variables.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(Dir())

	for k, v := range defaults {
		viper.SetDefault(k, v)
	}

	// SHEETVIZ_CHART_TYPE overrides chart.type and so on.
	viper.SetEnvPrefix("SHEETVIZ")
	viper.SetEnvKeyReplacer(envReplacer)
	viper.AutomaticEnv()

	// Read config file (non-fatal if missing)
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Dir is the per-user sheetviz directory holding the config file, presets,
// shell history and watcher state.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".sheetviz"
	}
	return filepath.Join(home, ".sheetviz")
}

// PresetDir is where saved chart presets live.
func PresetDir() string {
	return filepath.Join(Dir(), "presets")
}

// HistoryPath is the shell history file.
func HistoryPath() string {
	return filepath.Join(Dir(), "history")
}
