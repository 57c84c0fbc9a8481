// ABOUTME: Gym configuration management.
// ABOUTME: Reads the JSON config file, then applies .env and GYM_* environment overrides.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/harperreed/gym/internal/storage"
	"github.com/joho/godotenv"
)

// Config stores gym tool configuration.
type Config struct {
	// DataDir is the directory holding gym.db.
	// Supports ~ expansion for home directory. Defaults to ~/.local/share/gym.
	DataDir string `json:"data_dir,omitempty" env:"GYM_DATA_DIR"`

	// LogLevel is one of debug, info, warn, error. Defaults to warn.
	LogLevel string `json:"log_level,omitempty" env:"GYM_LOG_LEVEL"`

	// LogFormat is "text" (default) or "json".
	LogFormat string `json:"log_format,omitempty" env:"GYM_LOG_FORMAT"`
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return storage.DataDir()
	}
	return ExpandPath(c.DataDir)
}

// DBPath returns the SQLite database path inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.GetDataDir(), "gym.db")
}

// GetLogLevel returns the configured log level, defaulting to "warn".
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "warn"
	}
	return strings.ToLower(c.LogLevel)
}

// GetLogFormat returns the configured log format, defaulting to "text".
func (c *Config) GetLogFormat() string {
	if c.LogFormat == "" {
		return "text"
	}
	return strings.ToLower(c.LogFormat)
}

// OpenStorage opens the SQLite store in the configured data directory.
func (c *Config) OpenStorage(opts ...storage.Option) (*storage.DB, error) {
	return storage.Open(c.DBPath(), opts...)
}

// SharedStorage returns the process-wide store, opening it in the
// configured data directory on first use.
func (c *Config) SharedStorage(opts ...storage.Option) (*storage.DB, error) {
	return storage.Shared(c.DBPath(), opts...)
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetConfigDir returns the XDG config directory for gym.
func GetConfigDir() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "gym")
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	return filepath.Join(GetConfigDir(), "config.json")
}

// Load reads config from disk and applies environment overrides.
// A .env file in the working directory is loaded first when present;
// variables already set in the environment win over it.
func Load() (*Config, error) {
	cfg, err := loadFile()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func loadFile() (*Config, error) {
	data, err := os.ReadFile(GetConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", GetConfigPath(), err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	if err := os.MkdirAll(GetConfigDir(), 0750); err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(GetConfigPath(), data, 0600)
}
