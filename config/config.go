// Package config handles loading and managing application configuration
// from YAML files, an optional .env file and environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/openclaw/qrpad/qr"
)

// Window controls the initial main window geometry.
type Window struct {
	Title  string  `yaml:"title"`
	Width  float32 `yaml:"width"`
	Height float32 `yaml:"height"`
}

// QR holds the fixed encoding parameters used for every generated code.
type QR struct {
	Level   string `yaml:"level"`
	BoxSize int    `yaml:"box_size"`
	Border  int    `yaml:"border"`
}

// Decode tunes the QR detection backends.
type Decode struct {
	TryHarder bool `yaml:"try_harder"`
	Fallback  bool `yaml:"fallback"`
}

// Config holds all application configuration values.
type Config struct {
	LogLevel string `yaml:"log_level"`
	Window   Window `yaml:"window"`
	QR       QR     `yaml:"qr"`
	Decode   Decode `yaml:"decode"`
}

// defaults returns a Config populated with sensible default values.
func defaults() *Config {
	return &Config{
		LogLevel: "info",
		Window: Window{
			Title:  "QR Code App",
			Width:  400,
			Height: 300,
		},
		QR: QR{
			Level:   "low",
			BoxSize: 10,
			Border:  4,
		},
		Decode: Decode{
			TryHarder: true,
			Fallback:  true,
		},
	}
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "qrpad", "config.yaml")
}

// Load reads configuration from the YAML file at path, falling back to
// defaults if the file does not exist. A .env file in the working directory
// is loaded first; QRPAD_* environment variables then override any file or
// default values.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies QRPAD_* environment variable overrides to cfg.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QRPAD_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("QRPAD_WINDOW_TITLE"); v != "" {
		cfg.Window.Title = v
	}
	if v := os.Getenv("QRPAD_QR_LEVEL"); v != "" {
		cfg.QR.Level = strings.ToLower(v)
	}
	if v := os.Getenv("QRPAD_QR_BOX_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QR.BoxSize = n
		}
	}
	if v := os.Getenv("QRPAD_QR_BORDER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QR.Border = n
		}
	}
	if v := os.Getenv("QRPAD_DECODE_TRY_HARDER"); v != "" {
		if b, ok := parseBool(v); ok {
			cfg.Decode.TryHarder = b
		}
	}
	if v := os.Getenv("QRPAD_DECODE_FALLBACK"); v != "" {
		if b, ok := parseBool(v); ok {
			cfg.Decode.Fallback = b
		}
	}
}

func parseBool(v string) (bool, bool) {
	switch strings.ToLower(v) {
	case "true", "1", "yes":
		return true, true
	case "false", "0", "no":
		return false, true
	}
	return false, false
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if !qr.ValidLevel(c.QR.Level) {
		return fmt.Errorf("invalid qr level %q", c.QR.Level)
	}
	if c.QR.BoxSize < 1 {
		return fmt.Errorf("invalid qr box_size %d", c.QR.BoxSize)
	}
	if c.QR.Border < 0 {
		return fmt.Errorf("invalid qr border %d", c.QR.Border)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("invalid window size %gx%g", c.Window.Width, c.Window.Height)
	}
	return nil
}
