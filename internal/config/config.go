// Package config loads the marks configuration file and applies environment
// overrides on top of it.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nikbrunner/marks/internal/storage"
)

// Environment variables that override file values.
const (
	EnvDataDir  = "MARKS_DATA_DIR"
	EnvBackend  = "MARKS_BACKEND"
	EnvLogLevel = "MARKS_LOG_LEVEL"
	EnvAddr     = "MARKS_ADDR"
	EnvCORS     = "MARKS_CORS_ORIGINS"
)

// LogFileName is the TUI log file inside DataDir.
const LogFileName = "marks.log"

// Config holds application configuration.
type Config struct {
	// Backend selects the key-value store: json, sqlite or memory.
	Backend string `json:"backend"`

	// DataDir holds the store and the TUI log file.
	DataDir string `json:"dataDir"`

	// ExportPath is where the TUI export key writes bookmarks.html.
	ExportPath string `json:"exportPath"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel"`

	// Addr is the listen address for `marks serve`.
	Addr string `json:"addr"`

	// SkipDuplicateImports drops imported bookmarks whose URL already exists.
	SkipDuplicateImports bool `json:"skipDuplicateImports"`

	// CORSOrigins lists browser origins allowed to call `marks serve`.
	CORSOrigins []string `json:"corsOrigins,omitempty"`
}

// DefaultDir returns ~/.config/marks.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".config", "marks"), nil
}

// DefaultConfigFilePath returns the default config path: ~/.config/marks/config.json
func DefaultConfigFilePath() (string, error) {
	dir, err := DefaultDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	cfg := Config{
		Backend:  storage.BackendJSON,
		LogLevel: "info",
		Addr:     "127.0.0.1:8787",
	}
	if dir, err := DefaultDir(); err == nil {
		cfg.DataDir = dir
	}
	if home, err := os.UserHomeDir(); err == nil {
		cfg.ExportPath = filepath.Join(home, "Downloads", "bookmarks.html")
	}
	return cfg
}

// Load reads config from the JSON file at path, creating it with defaults
// if it doesn't exist, then applies environment overrides and validates.
func Load(path string) (*Config, error) {
	cfg, err := loadFile(path)
	if err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.DataDir = expandHome(cfg.DataDir)
	cfg.ExportPath = expandHome(cfg.ExportPath)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			config := DefaultConfig()
			// Non-fatal: defaults still apply if the file can't be written
			_ = Save(path, &config)
			return &config, nil
		}
		return nil, err
	}

	var config Config
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	// Apply defaults for missing fields
	defaults := DefaultConfig()
	if config.Backend == "" {
		config.Backend = defaults.Backend
	}
	if config.DataDir == "" {
		config.DataDir = defaults.DataDir
	}
	if config.ExportPath == "" {
		config.ExportPath = defaults.ExportPath
	}
	if config.LogLevel == "" {
		config.LogLevel = defaults.LogLevel
	}
	if config.Addr == "" {
		config.Addr = defaults.Addr
	}

	return &config, nil
}

// Save writes config to the JSON file.
// Creates the directory if it doesn't exist.
func Save(path string, config *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func (c *Config) applyEnv() {
	c.DataDir = getEnv(EnvDataDir, c.DataDir)
	c.Backend = getEnv(EnvBackend, c.Backend)
	c.LogLevel = getEnv(EnvLogLevel, c.LogLevel)
	c.Addr = getEnv(EnvAddr, c.Addr)
	if raw := getEnv(EnvCORS, ""); raw != "" {
		c.CORSOrigins = splitList(raw)
	}
}

// splitList splits a comma-separated env value, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Validate reports unknown backends and log levels.
func (c *Config) Validate() error {
	var problems []string

	switch c.Backend {
	case storage.BackendJSON, storage.BackendSQLite, storage.BackendMemory:
	default:
		problems = append(problems, fmt.Sprintf("unknown backend %q", c.Backend))
	}
	if _, err := c.SlogLevel(); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Backend != storage.BackendMemory && c.DataDir == "" {
		problems = append(problems, "dataDir is empty")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return level, nil
}

// LogFilePath returns the TUI log file location.
func (c *Config) LogFilePath() string {
	return filepath.Join(c.DataDir, LogFileName)
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
