package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

func homeDirOrFallback() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return home
}

// Config holds all user-configurable settings.
type Config struct {
	// BarWidth is the number of cells in a usage bar.
	BarWidth int `json:"bar_width"`
	// SI selects decimal (1000) instead of binary (1024) units.
	SI bool `json:"si"`
	// Theme is a built-in theme name, a file in ThemeDir() or a path.
	Theme string `json:"theme"`
	// LVMAlias is one of none, only or both.
	LVMAlias string `json:"lvm_alias"`
	// RefreshSeconds is the watch view refresh interval.
	RefreshSeconds int `json:"refresh_seconds"`
	// StatsPerSecond rate-limits filesystem usage calls.
	StatsPerSecond float64 `json:"stats_per_second"`
	// RecordHistory stores a snapshot on every listing and refresh.
	RecordHistory bool `json:"record_history"`
	// HistoryKeepDays controls how long snapshots are kept.
	HistoryKeepDays int `json:"history_keep_days"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BarWidth:        20,
		Theme:           "default",
		LVMAlias:        "none",
		RefreshSeconds:  2,
		StatsPerSecond:  50,
		RecordHistory:   false,
		HistoryKeepDays: 30,
	}
}

// Delimiter returns the unit base selected by SI.
func (c *Config) Delimiter() float64 {
	if c.SI {
		return 1000
	}
	return 1024
}

// ConfigDir returns the directory where config and data files are stored.
func ConfigDir() string {
	if dir := os.Getenv("DFMON_CONFIG_DIR"); dir != "" {
		return dir
	}
	home := homeDirOrFallback()
	return filepath.Join(home, ".config", "dfmon")
}

// HistoryPath returns the path to the SQLite history database.
func HistoryPath() string {
	return filepath.Join(ConfigDir(), "history.db")
}

// ThemeDir returns the directory searched for TOML theme files.
func ThemeDir() string {
	return filepath.Join(ConfigDir(), "themes")
}

// ConfigPath returns the path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.json")
}

// Load reads config from disk, returning defaults if the file doesn't exist.
func Load() (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			if err := cfg.Save(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if cfg.BarWidth < 0 {
		cfg.BarWidth = 0
	}
	if cfg.RefreshSeconds < 1 {
		cfg.RefreshSeconds = 1
	}
	return cfg, nil
}

// Save writes the config to disk.
func (c *Config) Save() error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(ConfigPath(), data, 0o644)
}
