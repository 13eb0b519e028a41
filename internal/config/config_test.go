package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{EnvConfig, EnvLogLevel, EnvTool, EnvToolDir, EnvTempDir, EnvToolTimeout} {
		t.Setenv(k, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.MaxPixels != 50_000_000 || cfg.WarnPixels != 10_000_000 {
		t.Errorf("limits: got %d/%d", cfg.MaxPixels, cfg.WarnPixels)
	}
	if cfg.Tool.Binary != "realesrgan-ncnn-vulkan" {
		t.Errorf("binary: got %q", cfg.Tool.Binary)
	}
	if cfg.ToolTimeout() != 300*time.Second {
		t.Errorf("timeout: got %s", cfg.ToolTimeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{
		"max_pixels": 20000000,
		"tool": {"binary": "sr-tool", "timeout_seconds": 60, "native_scale4": true},
		"logging": {"level": "debug"}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MaxPixels != 20_000_000 {
		t.Errorf("max_pixels: got %d", cfg.MaxPixels)
	}
	if cfg.WarnPixels != 10_000_000 {
		t.Errorf("warn_pixels should keep default, got %d", cfg.WarnPixels)
	}
	if cfg.Tool.Binary != "sr-tool" || !cfg.Tool.NativeScale4 || cfg.ToolTimeout() != time.Minute {
		t.Errorf("tool: got %+v", cfg.Tool)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("level: got %q", cfg.Logging.Level)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `{"tool": {"binary": "from-file"}}`)
	t.Setenv(EnvTool, "from-env")
	t.Setenv(EnvToolDir, "/opt/sr/bin")
	t.Setenv(EnvTempDir, "/var/tmp/enhance")
	t.Setenv(EnvToolTimeout, "45")
	t.Setenv(EnvLogLevel, "warn")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Tool.Binary != "from-env" || cfg.Tool.LocalDir != "/opt/sr/bin" {
		t.Errorf("tool: got %+v", cfg.Tool)
	}
	if cfg.TempDir != "/var/tmp/enhance" {
		t.Errorf("temp dir: got %q", cfg.TempDir)
	}
	if cfg.ToolTimeout() != 45*time.Second {
		t.Errorf("timeout: got %s", cfg.ToolTimeout())
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("level: got %q", cfg.Logging.Level)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		env     map[string]string
		wantErr string
	}{
		{"bad json", `{"max_pixels": `, nil, "failed to parse"},
		{"warn above max", `{"max_pixels": 100, "warn_pixels": 200}`, nil, "exceeds max_pixels"},
		{"zero max", `{"max_pixels": 0}`, nil, "max_pixels must be positive"},
		{"bad level", `{"logging": {"level": "loud"}}`, nil, "unknown logging.level"},
		{"bad timeout env", `{}`, map[string]string{EnvToolTimeout: "soon"}, "invalid IMAGE_ENHANCE_TOOL_TIMEOUT"},
		{"negative timeout", `{"tool": {"timeout_seconds": -1}}`, nil, "timeout_seconds must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.body))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("missing default config should not fail: %v", err)
	}
	if cfg.MaxPixels != Default().MaxPixels {
		t.Errorf("expected defaults, got %+v", cfg)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("explicit missing config should fail")
	}
}

func TestExpandUser(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/etc/x.json", "/etc/x.json"},
		{"~", home},
		{"~/cfg.json", filepath.Join(home, "cfg.json")},
	}
	for _, tt := range tests {
		got, err := expandUser(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("expandUser(%q): got (%q, %v), want %q", tt.in, got, err, tt.want)
		}
	}
}
