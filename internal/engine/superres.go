package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ironsheep/image-enhance-mcp/internal/progress"
	"github.com/ironsheep/image-enhance-mcp/internal/upscale"
)

// Method identifies how super-resolution was (or would be) performed.
type Method string

const (
	MethodNone        Method = ""
	MethodRealESRGAN  Method = "realesrgan"
	MethodFilterChain Method = "filter_chain"
)

// SuperResolution enlarges the working image by scale.
//
// If the Real-ESRGAN executable resolves, it does all the work and its failure is
// this call's failure; there is no fallback after a tool error. Only when the tool
// is absent does the filter chain run, in which case scale must be 2 or 4 and
// strength (0 to 1) controls the sharpening.
//
// The working image is replaced only on success. Progress is non-decreasing and
// ends at 100 on success. ctx is checked between stages and between tool passes;
// a tool pass already running is not interrupted.
//
// It returns the method used and does nothing (MethodNone, nil) if no image is
// loaded.
func (e *Engine) SuperResolution(ctx context.Context, scale int, strength float64, report progress.Func) (Method, error) {
	cur := e.buffer.Current()
	if cur == nil {
		return MethodNone, nil
	}
	if strength < 0 || strength > 1 {
		return MethodNone, fmt.Errorf("%w: strength %.2f outside [0, 1]", ErrInvalidParameter, strength)
	}
	if scale < 2 || scale > 4 {
		return MethodNone, fmt.Errorf("%w: %d (must be 2, 3 or 4)", ErrInvalidScale, scale)
	}
	if err := e.checkTarget(cur, scale); err != nil {
		return MethodNone, err
	}
	report = progress.Monotonic(report)

	// Provisioning may finish after construction, so resolve again now.
	method := MethodFilterChain
	if e.runner.Available() {
		method = MethodRealESRGAN
	}
	if method == MethodFilterChain && !upscale.ValidScale(scale) {
		return method, fmt.Errorf("%w: %d requires the super-resolution tool (filter chain supports 2 or 4)", ErrInvalidScale, scale)
	}

	start := time.Now()
	var (
		out *image.NRGBA
		err error
	)
	switch method {
	case MethodRealESRGAN:
		out, err = e.runner.Run(ctx, cur, scale, report)
	default:
		out, err = upscale.FilterChain(ctx, cur, scale, strength, report)
	}
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", ErrCancelled, err)
		}
		log.Warn().
			Err(err).
			Str("method", string(method)).
			Int("scale", scale).
			Msg("Super-resolution failed, image unchanged")
		return method, err
	}

	e.buffer.Replace(out)
	report.Report(100, progress.Complete)
	log.Info().
		Str("method", string(method)).
		Int("scale", scale).
		Int("width", out.Bounds().Dx()).
		Int("height", out.Bounds().Dy()).
		Dur("duration", time.Since(start)).
		Msg("Super-resolution complete")
	return method, nil
}
