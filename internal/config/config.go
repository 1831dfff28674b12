package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// SpreadsheetID is the district workbook holding the Accounts,
	// Report, AOPT, and PrayerRequest tabs.
	SpreadsheetID   string `yaml:"spreadsheetID" validate:"required"`
	CredentialsFile string `yaml:"credentialsFile" validate:"required"`

	DatabasePath string `yaml:"databasePath,omitempty"`
	ListenAddr   string `yaml:"listenAddr,omitempty"`

	// SessionSecret signs the session cookies; it has no default on
	// purpose.
	SessionSecret string `yaml:"sessionSecret" validate:"required,min=16"`

	SyncIntervalSeconds int    `yaml:"syncIntervalSeconds,omitempty" validate:"omitempty,min=1"`
	VerseAPIBaseURL     string `yaml:"verseAPIBaseURL,omitempty" validate:"omitempty,url"`
	Timezone            string `yaml:"timezone,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// SyncInterval returns the configured cache refresh interval, zero when
// unset so callers fall back to their own default.
func (c *Config) SyncInterval() time.Duration {
	return time.Duration(c.SyncIntervalSeconds) * time.Second
}

// Location resolves the configured timezone, defaulting to Asia/Manila,
// the district's local time.
func (c *Config) Location() (*time.Location, error) {
	name := c.Timezone
	if name == "" {
		name = "Asia/Manila"
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", name, err)
	}
	return loc, nil
}

// Load loads and validates the configuration from district4_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	if _, err := cfg.Location(); err != nil {
		return err
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join("data", "district4.db")
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.VerseAPIBaseURL == "" {
		cfg.VerseAPIBaseURL = "https://bible-api.com"
	}
}

// findConfigFile searches for district4_config.yaml in current directory and home directory
func findConfigFile() (string, error) {
	configFileName := "district4_config.yaml"

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
