package config

import (
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"runtrace/internal/store"
)

// StoreConfig selects and locates the event store backend.
type StoreConfig struct {
	Driver   string `yaml:"driver"` // "sqlite" (default) or "postgres"
	Path     string `yaml:"path"`   // sqlite database file
	DSN      string `yaml:"dsn"`    // postgres connection string
	MinLevel string `yaml:"min_level"`
}

// ConsoleConfig controls mirroring events to stderr.
type ConsoleConfig struct {
	Enabled  *bool  `yaml:"enabled"`
	MinLevel string `yaml:"min_level"`
}

// FilesConfig controls the per-severity mirror files.
type FilesConfig struct {
	Enabled    *bool  `yaml:"enabled"`
	Dir        string `yaml:"dir"`
	BackupDays int    `yaml:"backup_days"`
}

// ReportsConfig controls where and how report documents are written.
type ReportsConfig struct {
	Dir            string   `yaml:"dir"`
	HistoryCap     int      `yaml:"history_cap"`
	ReportedLevels []string `yaml:"reported_levels"`
}

// Config is the top-level configuration parsed from runtrace.yaml.
type Config struct {
	DataDir string        `yaml:"data_dir"`
	Store   StoreConfig   `yaml:"store"`
	Console ConsoleConfig `yaml:"console"`
	Files   FilesConfig   `yaml:"files"`
	Reports ReportsConfig `yaml:"reports"`
}

// IsEnabled returns whether the console mirror is on. Defaults to true.
func (c ConsoleConfig) IsEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// IsEnabled returns whether the file mirror is on. Defaults to true.
func (c FilesConfig) IsEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

// ReportedLevels parses the configured reported severities, or the default
// set (WARNING, ERROR, CRITICAL) when none are configured.
func (c *Config) ReportedLevels() ([]store.Level, error) {
	var levels []store.Level
	for _, name := range c.Reports.ReportedLevels {
		lv, err := store.ParseLevel(name)
		if err != nil {
			return nil, err
		}
		levels = append(levels, lv)
	}
	return levels, nil
}

func applyEnv(c *Config) {
	if v := os.Getenv("RUNTRACE_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("RUNTRACE_DB_DRIVER"); v != "" {
		c.Store.Driver = v
	}
	if v := os.Getenv("RUNTRACE_DB_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("RUNTRACE_DB_DSN"); v != "" {
		c.Store.DSN = v
	}
}

func applyDefaults(c *Config) {
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
	c.DataDir = expandPath(c.DataDir)

	if c.Store.Driver == "" {
		c.Store.Driver = "sqlite"
	}
	if c.Store.Path == "" {
		c.Store.Path = filepath.Join(c.DataDir, "runtrace.db")
	} else {
		c.Store.Path = expandPath(c.Store.Path)
	}
	if c.Store.MinLevel == "" {
		c.Store.MinLevel = "INFO"
	}

	if c.Console.MinLevel == "" {
		c.Console.MinLevel = "INFO"
	}

	if c.Files.Dir == "" {
		c.Files.Dir = filepath.Join(c.DataDir, "logs")
	} else {
		c.Files.Dir = expandPath(c.Files.Dir)
	}
	if c.Files.BackupDays <= 0 {
		c.Files.BackupDays = 7
	}

	if c.Reports.Dir == "" {
		c.Reports.Dir = filepath.Join(c.DataDir, "reports")
	} else {
		c.Reports.Dir = expandPath(c.Reports.Dir)
	}
	if c.Reports.HistoryCap <= 0 {
		c.Reports.HistoryCap = 300
	}
	if len(c.Reports.ReportedLevels) == 0 {
		c.Reports.ReportedLevels = []string{"WARNING", "ERROR", "CRITICAL"}
	}
}

func expandPath(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return value
	}

	v = os.ExpandEnv(v)

	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return v
	}

	if v == "~" {
		return home
	}
	if strings.HasPrefix(v, "~/") {
		return filepath.Join(home, v[2:])
	}
	if strings.HasPrefix(v, "~\\") {
		return filepath.Join(home, v[2:])
	}
	return v
}

// Default returns a Config built from environment overrides and defaults
// alone, for hosts that run without a configuration file.
func Default() *Config {
	var cfg Config
	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg
}

// LoadConfig reads a YAML configuration file from path, applies environment
// overrides (RUNTRACE_DATA_DIR, RUNTRACE_DB_DRIVER, RUNTRACE_DB_PATH,
// RUNTRACE_DB_DSN) and fills defaults for any unset fields.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return &cfg, nil
}
