package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/ironsheep/image-enhance-mcp/internal/config"
	"github.com/ironsheep/image-enhance-mcp/internal/engine"
	"github.com/ironsheep/image-enhance-mcp/internal/logging"
	"github.com/ironsheep/image-enhance-mcp/internal/progress"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	configPath string
	logLevel   string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "image-enhance",
	Short: "Image enhancement and super-resolution, as an MCP server or from the command line",
	Long: `image-enhance sharpens, denoises, colour-adjusts and upscales images.

Run "image-enhance serve" to speak MCP over stdin/stdout, or use the
enhance, upscale and super-resolution commands directly on files.

Super-resolution uses realesrgan-ncnn-vulkan when it is on PATH or in the
bin directory next to this executable, and a filter-based upscale otherwise.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/image-enhance/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// setup loads configuration and initialises logging before any command runs.
func setup(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	logging.Init(cfg.Logging.Level)
	return nil
}

// newEngine builds the engine from cfg and logs how it was configured.
func newEngine(command string) *engine.Engine {
	eng := engine.NewFromConfig(cfg)
	status := eng.ToolStatus()

	logging.NewStartup("image-enhance "+command, Version, GitCommit).
		Config("buildTime", BuildTime).
		Config("logLevel", cfg.Logging.Level).
		Config("tool", cfg.Tool.Binary).
		Config("toolPath", status.Path).
		Config("toolTimeout", cfg.ToolTimeout().String()).
		Config("maxPixels", fmt.Sprint(cfg.MaxPixels)).
		Feature("realesrgan", status.Available).
		Feature("nativeScale4", cfg.Tool.NativeScale4).
		Log()
	return eng
}

// logProgress reports engine progress on the log.
func logProgress(operation string) progress.Func {
	return func(percent int, message string) {
		log.Info().
			Str("operation", operation).
			Int("percent", percent).
			Msg(message)
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
