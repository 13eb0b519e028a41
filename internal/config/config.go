// Package config loads engine settings from an optional JSON file and the
// environment.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ironsheep/image-enhance-mcp/internal/imaging"
	"github.com/ironsheep/image-enhance-mcp/internal/realesrgan"
)

const (
	defaultConfigPath     = "~/.config/image-enhance/config.json"
	defaultTimeoutSeconds = 300
)

// Environment overrides, applied after the file.
const (
	EnvConfig      = "IMAGE_ENHANCE_CONFIG"
	EnvLogLevel    = "IMAGE_ENHANCE_LOG_LEVEL"
	EnvTool        = "IMAGE_ENHANCE_TOOL"
	EnvToolDir     = "IMAGE_ENHANCE_TOOL_DIR"
	EnvTempDir     = "IMAGE_ENHANCE_TEMP_DIR"
	EnvToolTimeout = "IMAGE_ENHANCE_TOOL_TIMEOUT"
)

// Config holds user-editable settings.
type Config struct {
	MaxPixels  int64   `json:"max_pixels"`
	WarnPixels int64   `json:"warn_pixels"`
	TempDir    string  `json:"temp_dir"`
	Tool       Tool    `json:"tool"`
	Logging    Logging `json:"logging"`
}

// Tool configures the super-resolution executable.
type Tool struct {
	Binary         string `json:"binary"`
	LocalDir       string `json:"local_dir"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	NativeScale4   bool   `json:"native_scale4"` // run 4x in one pass
}

// Logging controls log verbosity.
type Logging struct {
	Level string `json:"level"` // debug, info, warn, error
}

// Default returns the built-in settings.
func Default() *Config {
	limits := imaging.DefaultSizeLimits()
	return &Config{
		MaxPixels:  limits.MaxPixels,
		WarnPixels: limits.WarnPixels,
		TempDir:    os.TempDir(),
		Tool: Tool{
			Binary:         realesrgan.DefaultBinary,
			LocalDir:       realesrgan.DefaultLocalDir(),
			TimeoutSeconds: defaultTimeoutSeconds,
		},
		Logging: Logging{Level: "info"},
	}
}

// Load reads path (or IMAGE_ENHANCE_CONFIG, or the default location when path is
// empty) over the defaults, then applies environment overrides and validates the
// result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = os.Getenv(EnvConfig)
		explicit = path != ""
	}
	if path == "" {
		path = defaultConfigPath
	}

	expanded, err := expandUser(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(expanded)
	switch {
	case errors.Is(err, os.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("failed to open config: %w", err)
	default:
		defer f.Close()
		if err := json.NewDecoder(f).Decode(cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", expanded, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvTool); v != "" {
		c.Tool.Binary = v
	}
	if v := os.Getenv(EnvToolDir); v != "" {
		c.Tool.LocalDir = v
	}
	if v := os.Getenv(EnvTempDir); v != "" {
		c.TempDir = v
	}
	if v := os.Getenv(EnvToolTimeout); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvToolTimeout, v, err)
		}
		c.Tool.TimeoutSeconds = secs
	}
	return nil
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	if c.MaxPixels <= 0 {
		return fmt.Errorf("max_pixels must be positive, got %d", c.MaxPixels)
	}
	if c.WarnPixels <= 0 {
		return fmt.Errorf("warn_pixels must be positive, got %d", c.WarnPixels)
	}
	if c.WarnPixels > c.MaxPixels {
		return fmt.Errorf("warn_pixels (%d) exceeds max_pixels (%d)", c.WarnPixels, c.MaxPixels)
	}
	if c.Tool.TimeoutSeconds <= 0 {
		return fmt.Errorf("tool.timeout_seconds must be positive, got %d", c.Tool.TimeoutSeconds)
	}
	if c.Tool.Binary == "" {
		return errors.New("tool.binary must not be empty")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown logging.level %q", c.Logging.Level)
	}
	return nil
}

// Limits returns the configured size limits.
func (c *Config) Limits() imaging.SizeLimits {
	return imaging.SizeLimits{MaxPixels: c.MaxPixels, WarnPixels: c.WarnPixels}
}

// ToolTimeout returns the per-invocation timeout.
func (c *Config) ToolTimeout() time.Duration {
	return time.Duration(c.Tool.TimeoutSeconds) * time.Second
}

func expandUser(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if path == "~" {
		return home, nil
	}

	return filepath.Join(home, path[2:]), nil
}
