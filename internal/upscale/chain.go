package upscale

import (
	"context"
	"fmt"
	"image"

	"github.com/disintegration/imaging"

	"github.com/ironsheep/image-enhance-mcp/internal/filters"
	"github.com/ironsheep/image-enhance-mcp/internal/progress"
)

// Filter chain constants.
const (
	edgeSigmaS    = 50.0
	edgeSigmaR    = 0.4
	unsharpSigma  = 2.0
	unsharpAmount = 0.5
	claheClip     = 2.0
)

type chainStep struct {
	name    string
	message string
	apply   func(*image.NRGBA) *image.NRGBA
}

// FilterChain upscales img by scale (2 or 4) and enhances the result.
//
// strength (0 to 1) scales the unsharp mask amount (0.5*strength) and the final
// sharpening kernel (center 5, neighbours -0.5, multiplied by 0.3+0.4*strength).
// ctx is checked before every step; a running step always completes. Progress is
// reported before each step between 10 and 90; the caller reports completion.
func FilterChain(ctx context.Context, img *image.NRGBA, scale int, strength float64, report progress.Func) (*image.NRGBA, error) {
	if !ValidScale(scale) {
		return nil, fmt.Errorf("%w: %d (must be 2 or 4)", ErrInvalidScale, scale)
	}
	if strength < 0 {
		strength = 0
	}
	if strength > 1 {
		strength = 1
	}
	w, h := TargetSize(img, scale)

	steps := []chainStep{
		{"resize", fmt.Sprintf("Resizing %dx...", scale), func(in *image.NRGBA) *image.NRGBA { return imaging.Resize(in, w, h, imaging.Lanczos) }},
		{"edge-preserve", "Smoothing...", func(in *image.NRGBA) *image.NRGBA { return filters.EdgePreserve(in, edgeSigmaS, edgeSigmaR) }},
		{"unsharp", "Sharpening details...", func(in *image.NRGBA) *image.NRGBA {
			return filters.UnsharpMask(in, unsharpSigma, unsharpAmount*strength)
		}},
		{"clahe", "Enhancing local contrast...", func(in *image.NRGBA) *image.NRGBA {
			return filters.EqualizeLuminance(in, claheClip, filters.DefaultTileGrid)
		}},
		{"final-sharpen", "Final sharpening...", func(in *image.NRGBA) *image.NRGBA {
			return filters.Convolve3x3(in, 5, -0.5, 0.3+0.4*strength)
		}},
	}

	out := img
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		report.Report(10+i*80/len(steps), step.message)
		next, err := filters.Safe(step.name, out, step.apply)
		if err != nil {
			return nil, err
		}
		out = next
	}
	return out, nil
}
