package engine

import (
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ironsheep/image-enhance-mcp/internal/config"
	"github.com/ironsheep/image-enhance-mcp/internal/filters"
	"github.com/ironsheep/image-enhance-mcp/internal/imaging"
	"github.com/ironsheep/image-enhance-mcp/internal/progress"
	"github.com/ironsheep/image-enhance-mcp/internal/realesrgan"
	"github.com/ironsheep/image-enhance-mcp/internal/upscale"
)

// Options configure an Engine.
type Options struct {
	// Limits bound loaded images and operation results.
	Limits imaging.SizeLimits

	// Tool configures the super-resolution runner. Its Limits are replaced by Limits.
	Tool realesrgan.Options
}

// Engine owns one image buffer and every operation on it.
type Engine struct {
	buffer *imaging.Buffer
	tool   realesrgan.Provisioner
	runner *realesrgan.Runner
}

// New creates an engine. tool may be nil, in which case super-resolution always
// uses the filter chain.
func New(tool realesrgan.Provisioner, opts Options) *Engine {
	if opts.Limits == (imaging.SizeLimits{}) {
		opts.Limits = imaging.DefaultSizeLimits()
	}
	opts.Tool.Limits = opts.Limits

	e := &Engine{
		buffer: imaging.NewBuffer(opts.Limits),
		tool:   tool,
		runner: realesrgan.NewRunner(tool, opts.Tool),
	}
	status := e.ToolStatus()
	log.Debug().
		Bool("available", status.Available).
		Str("path", status.Path).
		Msg("Super-resolution tool status")
	return e
}

// NewFromConfig creates an engine that finds the tool on PATH or in the configured
// local directory.
func NewFromConfig(cfg *config.Config) *Engine {
	tool := realesrgan.NewLocalProvisioner(cfg.Tool.Binary, cfg.Tool.LocalDir)
	return New(tool, Options{
		Limits: cfg.Limits(),
		Tool: realesrgan.Options{
			Timeout:      cfg.ToolTimeout(),
			TempDir:      cfg.TempDir,
			NativeScale4: cfg.Tool.NativeScale4,
		},
	})
}

// Limits returns the size limits in force.
func (e *Engine) Limits() imaging.SizeLimits {
	return e.buffer.Limits()
}

// Load installs img as the original and working image. On failure the previous
// state is untouched. The returned check carries the large-image warning, if any.
func (e *Engine) Load(img image.Image) (imaging.SizeCheck, error) {
	check, err := e.buffer.Load(img)
	if err != nil {
		return check, err
	}
	if check.Warn {
		log.Warn().Int64("pixels", check.Pixels).Msg(check.Reason)
	}
	return check, nil
}

// LoadFile reads path and installs it. On failure the previous state is untouched.
func (e *Engine) LoadFile(path string) (*imaging.ImageInfo, error) {
	img, info, err := imaging.LoadFile(path, e.Limits())
	if err != nil {
		return nil, err
	}
	if _, err := e.Load(img); err != nil {
		return nil, err
	}
	log.Info().
		Str("path", path).
		Int("width", info.Width).
		Int("height", info.Height).
		Str("format", info.Format).
		Msg("Image loaded")
	return info, nil
}

// Save writes the working image to path.
func (e *Engine) Save(path string) error {
	cur := e.buffer.Current()
	if cur == nil {
		return ErrNoImage
	}
	if err := imaging.SaveFile(cur, path); err != nil {
		return err
	}
	log.Info().Str("path", path).Msg("Image saved")
	return nil
}

// Reset restores the working image from the original. It does nothing if no image
// is loaded.
func (e *Engine) Reset() {
	e.buffer.Reset()
}

// Loaded reports whether an image is present.
func (e *Engine) Loaded() bool {
	return e.buffer.Loaded()
}

// Current returns the working image, or nil. The image must not be modified.
func (e *Engine) Current() *image.NRGBA {
	return e.buffer.Current()
}

// Original returns the image captured at load time, or nil.
func (e *Engine) Original() *image.NRGBA {
	return e.buffer.Original()
}

// Info describes the working image.
func (e *Engine) Info() (*imaging.ImageInfo, error) {
	cur := e.buffer.Current()
	if cur == nil {
		return nil, ErrNoImage
	}
	return imaging.Describe(cur, e.Limits()), nil
}

// Compare measures the working image against the original.
func (e *Engine) Compare() (*imaging.Comparison, error) {
	return imaging.Compare(e.buffer.Original(), e.buffer.Current())
}

// Sharpen applies Sharpen{strength}.
func (e *Engine) Sharpen(strength float64) error {
	return e.Apply(Sharpen{Strength: strength})
}

// Denoise applies Denoise{strength}.
func (e *Engine) Denoise(strength float64) error {
	return e.Apply(Denoise{Strength: strength})
}

// AdjustContrast applies Contrast{factor}.
func (e *Engine) AdjustContrast(factor float64) error {
	return e.Apply(Contrast{Factor: factor})
}

// AdjustBrightness applies Brightness{factor}.
func (e *Engine) AdjustBrightness(factor float64) error {
	return e.Apply(Brightness{Factor: factor})
}

// AdjustSaturation applies Saturation{factor}.
func (e *Engine) AdjustSaturation(factor float64) error {
	return e.Apply(Saturation{Factor: factor})
}

// EnhanceDetails applies Details{strength}.
func (e *Engine) EnhanceDetails(strength float64) error {
	return e.Apply(Details{Strength: strength})
}

// Apply runs one operation against the working image.
//
// Invalid parameters are rejected before anything runs. A stage that fails leaves
// the working image unchanged and its error is returned.
func (e *Engine) Apply(op Operation) error {
	if err := Validate(op); err != nil {
		return err
	}
	if !e.buffer.Loaded() {
		return nil
	}

	switch op := op.(type) {
	case Sharpen:
		return e.transform("sharpen", func(img *image.NRGBA) *image.NRGBA {
			return filters.Sharpen(img, op.Strength)
		})
	case Denoise:
		if op.Strength == 0 {
			return nil
		}
		return e.transform("denoise", func(img *image.NRGBA) *image.NRGBA {
			return filters.Denoise(img, op.Strength)
		})
	case Contrast:
		return e.transform("contrast", func(img *image.NRGBA) *image.NRGBA {
			return filters.AdjustContrast(img, op.Factor)
		})
	case Brightness:
		return e.transform("brightness", func(img *image.NRGBA) *image.NRGBA {
			return filters.AdjustBrightness(img, op.Factor)
		})
	case Saturation:
		return e.transform("saturation", func(img *image.NRGBA) *image.NRGBA {
			return filters.AdjustSaturation(img, op.Factor)
		})
	case Details:
		if op.Strength == 0 {
			return nil
		}
		return e.transform("details", func(img *image.NRGBA) *image.NRGBA {
			return filters.EnhanceDetails(img, op.Strength)
		})
	case Upscale:
		return e.BasicUpscale(op.Factor, nil)
	case Reset:
		e.Reset()
		return nil
	default:
		return fmt.Errorf("%w: unknown operation %T", ErrInvalidParameter, op)
	}
}

// transform runs fn on the working image and installs the result on success.
func (e *Engine) transform(stage string, fn func(*image.NRGBA) *image.NRGBA) error {
	cur := e.buffer.Current()
	if cur == nil {
		return nil
	}

	start := time.Now()
	out, err := filters.Safe(stage, cur, fn)
	if err != nil {
		log.Warn().Err(err).Str("stage", stage).Msg("Stage failed, image unchanged")
		return err
	}
	e.buffer.Replace(out)
	log.Debug().
		Str("stage", stage).
		Dur("duration", time.Since(start)).
		Msg("Stage applied")
	return nil
}

// BasicUpscale enlarges the working image by scale (2 or 4) with a Lanczos filter,
// reporting 50 and then 100. It does nothing if no image is loaded.
func (e *Engine) BasicUpscale(scale int, report progress.Func) error {
	if !upscale.ValidScale(scale) {
		return fmt.Errorf("%w: %d (must be 2 or 4)", ErrInvalidScale, scale)
	}
	cur := e.buffer.Current()
	if cur == nil {
		return nil
	}
	if err := e.checkTarget(cur, scale); err != nil {
		return err
	}

	report = progress.Monotonic(report)
	report.Report(50, fmt.Sprintf("Upscaling %dx...", scale))
	if err := e.transform("upscale", func(img *image.NRGBA) *image.NRGBA {
		out, _ := upscale.BasicResample(img, scale)
		return out
	}); err != nil {
		return err
	}
	report.Report(100, progress.Complete)
	return nil
}

// checkTarget validates img and its size after enlargement by scale.
func (e *Engine) checkTarget(img *image.NRGBA, scale int) error {
	limits := e.Limits()
	if _, err := limits.Validate(img); err != nil {
		return err
	}
	w, h := upscale.TargetSize(img, scale)
	if check := limits.Check(w, h); !check.OK {
		return fmt.Errorf("%w: result %s", imaging.ErrTooLarge, check.Reason)
	}
	return nil
}

// ToolStatus describes the super-resolution executable.
type ToolStatus struct {
	Available bool   `json:"available"`
	Path      string `json:"path,omitempty"`
	Method    Method `json:"method"`
}

// ToolStatus resolves the executable now and reports which method
// super-resolution would use.
func (e *Engine) ToolStatus() ToolStatus {
	if e.tool == nil {
		return ToolStatus{Method: MethodFilterChain}
	}
	path := e.tool.ResolvePath()
	if path == "" {
		return ToolStatus{Method: MethodFilterChain}
	}
	return ToolStatus{Available: true, Path: path, Method: MethodRealESRGAN}
}
