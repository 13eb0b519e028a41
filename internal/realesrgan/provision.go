package realesrgan

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/rs/zerolog/log"
)

// DefaultBinary is the executable name looked up on PATH and in the local bin dir.
const DefaultBinary = "realesrgan-ncnn-vulkan"

// Provisioner locates the super-resolution executable.
//
// Availability may change while the process runs (an installer can finish in the
// background), so callers ask again before every attempt.
type Provisioner interface {
	// IsAvailable reports whether the executable can be resolved right now.
	IsAvailable() bool

	// ResolvePath returns the executable path, or "" if it cannot be resolved.
	ResolvePath() string
}

// LocalProvisioner finds the tool on PATH first and then in a local install
// directory.
type LocalProvisioner struct {
	// Binary is the executable name without platform suffix.
	Binary string

	// LocalDir is the fallback install directory. Empty disables the fallback.
	LocalDir string
}

// NewLocalProvisioner creates a provisioner. An empty binary selects DefaultBinary.
func NewLocalProvisioner(binary, localDir string) *LocalProvisioner {
	if binary == "" {
		binary = DefaultBinary
	}
	return &LocalProvisioner{Binary: binary, LocalDir: localDir}
}

// DefaultLocalDir returns the "bin" directory next to the running executable,
// following symlinks. It returns "" if the executable path is unknown.
func DefaultLocalDir() string {
	exePath, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exePath); err == nil {
		exePath = resolved
	}
	return filepath.Join(filepath.Dir(exePath), "bin")
}

// IsAvailable implements Provisioner.
func (p *LocalProvisioner) IsAvailable() bool {
	return p.ResolvePath() != ""
}

// ResolvePath implements Provisioner.
func (p *LocalProvisioner) ResolvePath() string {
	name := p.binaryName()
	if path, err := exec.LookPath(name); err == nil {
		log.Debug().Str("path", path).Msg("super-resolution tool found on PATH")
		return path
	}
	if name != p.Binary {
		if path, err := exec.LookPath(p.Binary); err == nil {
			return path
		}
	}

	if p.LocalDir == "" {
		return ""
	}
	local := filepath.Join(p.LocalDir, name)
	info, err := os.Stat(local)
	if err != nil || !info.Mode().IsRegular() {
		return ""
	}
	if runtime.GOOS != "windows" && info.Mode().Perm()&0o111 == 0 {
		log.Debug().Str("path", local).Msg("super-resolution tool present but not executable")
		return ""
	}
	return local
}

func (p *LocalProvisioner) binaryName() string {
	if runtime.GOOS == "windows" && filepath.Ext(p.Binary) == "" {
		return p.Binary + ".exe"
	}
	return p.Binary
}
