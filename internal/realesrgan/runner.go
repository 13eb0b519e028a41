package realesrgan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ironsheep/image-enhance-mcp/internal/imaging"
	"github.com/ironsheep/image-enhance-mcp/internal/progress"
)

// DefaultTimeout bounds a single tool invocation.
const DefaultTimeout = 300 * time.Second

// Errors reported by Runner.Run.
var (
	// ErrUnavailable means the executable could not be resolved.
	ErrUnavailable = errors.New("super-resolution tool not available")

	// ErrExecution means the tool exited non-zero or produced no loadable output.
	// The wrapped message carries the tool's diagnostic text.
	ErrExecution = errors.New("super-resolution tool failed")

	// ErrTimeout means an invocation exceeded the timeout and was killed.
	ErrTimeout = errors.New("processing timed out")

	// ErrUnsupportedScale means the requested factor is not 2, 3 or 4.
	ErrUnsupportedScale = errors.New("unsupported scale")
)

// Options configure a Runner.
type Options struct {
	// Timeout bounds each invocation. Zero selects DefaultTimeout.
	Timeout time.Duration

	// TempDir is where per-call scratch directories are created. Empty selects the
	// system temp directory.
	TempDir string

	// NativeScale4 runs 4x as a single invocation instead of two 2x passes.
	NativeScale4 bool

	// Limits are applied to the input image and to the tool's output.
	Limits imaging.SizeLimits

	// Command builds the subprocess. Nil selects exec.CommandContext.
	Command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// Runner invokes the super-resolution executable.
type Runner struct {
	tool Provisioner
	opts Options
}

// NewRunner creates a runner that resolves the executable through tool.
func NewRunner(tool Provisioner, opts Options) *Runner {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Command == nil {
		opts.Command = exec.CommandContext
	}
	return &Runner{tool: tool, opts: opts}
}

// Available reports whether the executable can currently be resolved.
func (r *Runner) Available() bool {
	return r.tool != nil && r.tool.IsAvailable()
}

// pass is one tool invocation.
type pass struct {
	input   string
	output  string
	scale   int
	percent int
	message string
}

// Run upscales img by scale (2, 3 or 4) and returns the tool's output.
//
// img is never modified. Progress is reported at 10 (start), 30 and 70 (two-pass 4x)
// or 50 (single pass), 90 (loading the result) and 100 on success; on failure the
// progress stream stops.
//
// ctx is checked before each pass and a cancelled context returns ctx.Err(). A pass
// in flight is not interrupted by ctx; it is bounded only by Options.Timeout.
func (r *Runner) Run(ctx context.Context, img *image.NRGBA, scale int, report progress.Func) (*image.NRGBA, error) {
	if img == nil {
		return nil, imaging.ErrEmpty
	}
	if scale < 2 || scale > 4 {
		return nil, fmt.Errorf("%w: %d (must be 2, 3 or 4)", ErrUnsupportedScale, scale)
	}
	if _, err := r.opts.Limits.Validate(img); err != nil {
		return nil, err
	}
	b := img.Bounds()
	if check := r.opts.Limits.Check(b.Dx()*scale, b.Dy()*scale); !check.OK {
		return nil, fmt.Errorf("%w: result %s", imaging.ErrTooLarge, check.Reason)
	}

	bin := ""
	if r.tool != nil {
		bin = r.tool.ResolvePath()
	}
	if bin == "" {
		return nil, ErrUnavailable
	}

	report.Report(10, "Starting Real-ESRGAN processing...")

	scratch, err := newScratch(r.opts.TempDir)
	if err != nil {
		return nil, err
	}
	defer scratch.Close()

	input := scratch.Path("input.png")
	output := scratch.Path("output.png")
	if err := imaging.SaveFile(img, input); err != nil {
		return nil, fmt.Errorf("failed to persist working image: %w", err)
	}

	var passes []pass
	intermediate := ""
	if scale == 4 && !r.opts.NativeScale4 {
		intermediate = scratch.Path("intermediate.png")
		passes = []pass{
			{input: input, output: intermediate, scale: 2, percent: 30, message: "First 2x upscale..."},
			{input: intermediate, output: output, scale: 2, percent: 70, message: "Second 2x upscale..."},
		}
	} else {
		passes = []pass{
			{input: input, output: output, scale: scale, percent: 50, message: fmt.Sprintf("Upscaling %dx...", scale)},
		}
	}

	for _, p := range passes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.Report(p.percent, p.message)
		if err := r.invoke(ctx, bin, p); err != nil {
			return nil, err
		}
	}
	if intermediate != "" {
		scratch.Remove(intermediate)
	}

	report.Report(90, "Loading enhanced image...")
	out, _, err := imaging.LoadFile(output, r.opts.Limits)
	if err != nil {
		return nil, fmt.Errorf("%w: output not loadable: %v", ErrExecution, err)
	}

	report.Report(100, progress.Complete)
	return out, nil
}

// invoke runs one pass under its own timeout.
//
// The timeout context is detached from ctx's cancellation so that a caller cancel
// never kills a pass halfway; only the deadline does.
func (r *Runner) invoke(ctx context.Context, bin string, p pass) error {
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.opts.Timeout)
	defer cancel()

	args := []string{"-i", p.input, "-o", p.output, "-s", strconv.Itoa(p.scale), "-f", "png"}
	cmd := r.opts.Command(runCtx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	cmd.WaitDelay = 5 * time.Second

	log.Debug().
		Str("tool", bin).
		Strs("args", args).
		Msg("Running super-resolution pass")

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		log.Warn().
			Str("tool", bin).
			Dur("timeout", r.opts.Timeout).
			Msg("Super-resolution pass timed out")
		return fmt.Errorf("%w after %s", ErrTimeout, r.opts.Timeout)
	}
	if err != nil {
		diag := strings.TrimSpace(stderr.String())
		if diag == "" {
			diag = err.Error()
		}
		log.Warn().
			Err(err).
			Str("stderr", diag).
			Dur("duration", elapsed).
			Msg("Super-resolution pass failed")
		return fmt.Errorf("%w: %s", ErrExecution, diag)
	}
	if _, err := os.Stat(p.output); err != nil {
		return fmt.Errorf("%w: tool produced no output at scale %d", ErrExecution, p.scale)
	}

	log.Debug().
		Int("scale", p.scale).
		Dur("duration", elapsed).
		Msg("Super-resolution pass complete")
	return nil
}

// scratch is a per-call directory owning every temporary artifact of one Run.
type scratch struct {
	dir string
}

func newScratch(parent string) (*scratch, error) {
	if parent != "" {
		if err := os.MkdirAll(parent, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create temp dir: %w", err)
		}
	}
	dir, err := os.MkdirTemp(parent, "realesrgan-"+uuid.NewString()+"-")
	if err != nil {
		return nil, fmt.Errorf("failed to create scratch dir: %w", err)
	}
	return &scratch{dir: dir}, nil
}

func (s *scratch) Path(name string) string {
	return filepath.Join(s.dir, name)
}

// Remove deletes one artifact early, best effort.
func (s *scratch) Remove(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Str("path", path).Msg("Failed to remove temp file")
	}
}

// Close deletes the directory and everything left in it.
func (s *scratch) Close() {
	if err := os.RemoveAll(s.dir); err != nil {
		log.Warn().Err(err).Str("path", s.dir).Msg("Failed to remove scratch dir")
		return
	}
	log.Debug().Str("path", s.dir).Msg("Scratch dir removed")
}
