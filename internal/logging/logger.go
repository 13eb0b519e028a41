// Package logging configures the global zerolog logger.
package logging

import (
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sets the global level and writes human-readable logs to stderr. Stdout is
// left alone because the MCP server speaks JSON-RPC on it.
//
// level is one of debug, info, warn, error; anything else selects info.
func Init(level string) {
	InitWithWriter(level, os.Stderr)
}

// InitWithWriter is Init with an explicit destination.
func InitWithWriter(level string, w io.Writer) {
	zerolog.SetGlobalLevel(ParseLevel(level))
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: w, NoColor: w != os.Stderr})
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Startup emits one structured event describing how the process was configured.
type Startup struct {
	name     string
	version  string
	commit   string
	config   map[string]string
	features map[string]bool
}

// NewStartup creates a startup summary for the named command.
func NewStartup(name, version, commit string) *Startup {
	return &Startup{
		name:     name,
		version:  version,
		commit:   commit,
		config:   make(map[string]string),
		features: make(map[string]bool),
	}
}

// Config records a non-sensitive setting.
func (s *Startup) Config(key, value string) *Startup {
	s.config[key] = value
	return s
}

// Feature records a boolean capability.
func (s *Startup) Feature(name string, enabled bool) *Startup {
	s.features[name] = enabled
	return s
}

// Log writes the summary at info level.
func (s *Startup) Log() {
	cfg := zerolog.Dict()
	for k, v := range s.config {
		cfg = cfg.Str(k, v)
	}
	features := zerolog.Dict()
	for k, v := range s.features {
		features = features.Bool(k, v)
	}
	log.Info().
		Str("name", s.name).
		Str("version", s.version).
		Str("commit", s.commit).
		Str("goVersion", runtime.Version()).
		Str("arch", runtime.GOARCH).
		Dict("config", cfg).
		Dict("features", features).
		Msg("Startup")
}
