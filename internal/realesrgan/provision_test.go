package realesrgan

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestLocalProvisioner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exec bit checks do not apply on windows")
	}
	const binary = "image-enhance-test-sr-tool"

	tests := []struct {
		name      string
		setup     func(dir string)
		wantFound bool
	}{
		{
			name:      "missing",
			setup:     func(string) {},
			wantFound: false,
		},
		{
			name: "executable",
			setup: func(dir string) {
				os.WriteFile(filepath.Join(dir, binary), []byte("#!/bin/sh\n"), 0o755)
			},
			wantFound: true,
		},
		{
			name: "not executable",
			setup: func(dir string) {
				os.WriteFile(filepath.Join(dir, binary), []byte("#!/bin/sh\n"), 0o644)
			},
			wantFound: false,
		},
		{
			name: "directory",
			setup: func(dir string) {
				os.Mkdir(filepath.Join(dir, binary), 0o755)
			},
			wantFound: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			tt.setup(dir)
			p := NewLocalProvisioner(binary, dir)

			if got := p.IsAvailable(); got != tt.wantFound {
				t.Errorf("IsAvailable: got %v, want %v", got, tt.wantFound)
			}
			path := p.ResolvePath()
			if tt.wantFound && path != filepath.Join(dir, binary) {
				t.Errorf("ResolvePath: got %q", path)
			}
			if !tt.wantFound && path != "" {
				t.Errorf("ResolvePath: got %q, want empty", path)
			}
		})
	}
}

func TestLocalProvisioner_PathLookup(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("exec bit checks do not apply on windows")
	}
	const binary = "image-enhance-test-path-tool"
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, binary), []byte("#!/bin/sh\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", dir)

	p := NewLocalProvisioner(binary, "")
	if got := p.ResolvePath(); got != filepath.Join(dir, binary) {
		t.Errorf("ResolvePath: got %q", got)
	}
}

func TestNewLocalProvisioner_DefaultBinary(t *testing.T) {
	if p := NewLocalProvisioner("", ""); p.Binary != DefaultBinary {
		t.Errorf("Binary: got %q, want %q", p.Binary, DefaultBinary)
	}
}
