package engine

import (
	"fmt"

	"github.com/ironsheep/image-enhance-mcp/internal/filters"
	"github.com/ironsheep/image-enhance-mcp/internal/upscale"
)

// Operation is one enhancement request. The set of implementations is closed; use
// the types below.
type Operation interface {
	operation()
}

// Sharpen applies the 3x3 sharpening kernel. Strength is in [0, 2]; 0 is a no-op.
type Sharpen struct{ Strength float64 }

// Denoise applies bilateral smoothing. Strength is in [0, 1]; 0 is a no-op.
type Denoise struct{ Strength float64 }

// Contrast scales distance from mean luma. Factor is in [0.5, 2]; 1 is a no-op.
type Contrast struct{ Factor float64 }

// Brightness scales every channel. Factor is in [0.5, 2]; 1 is a no-op.
type Brightness struct{ Factor float64 }

// Saturation scales distance from per-pixel luma. Factor is in [0, 2]; 1 is a no-op.
type Saturation struct{ Factor float64 }

// Details sharpens and equalises luminance. Strength is in [0, 1]; 0 is a no-op.
type Details struct{ Strength float64 }

// Upscale resamples by Factor (2 or 4) with a Lanczos filter.
type Upscale struct{ Factor int }

// Reset restores the original image.
type Reset struct{}

func (Sharpen) operation()    {}
func (Denoise) operation()    {}
func (Contrast) operation()   {}
func (Brightness) operation() {}
func (Saturation) operation() {}
func (Details) operation()    {}
func (Upscale) operation()    {}
func (Reset) operation()      {}

// Name returns a short identifier for op, used in logs and reports.
func Name(op Operation) string {
	switch op.(type) {
	case Sharpen:
		return "sharpen"
	case Denoise:
		return "denoise"
	case Contrast:
		return "contrast"
	case Brightness:
		return "brightness"
	case Saturation:
		return "saturation"
	case Details:
		return "details"
	case Upscale:
		return "upscale"
	case Reset:
		return "reset"
	default:
		return fmt.Sprintf("%T", op)
	}
}

// IsNoOp reports whether op leaves the image unchanged by definition.
func IsNoOp(op Operation) bool {
	switch op := op.(type) {
	case Sharpen:
		return op.Strength == 0
	case Denoise:
		return op.Strength == 0
	case Contrast:
		return op.Factor == 1
	case Brightness:
		return op.Factor == 1
	case Saturation:
		return op.Factor == 1
	case Details:
		return op.Strength == 0
	default:
		return false
	}
}

// Validate checks op's parameters against their documented ranges.
func Validate(op Operation) error {
	switch op := op.(type) {
	case Sharpen:
		return checkRange("sharpen", op.Strength, 0, 2)
	case Denoise:
		return checkRange("denoise", op.Strength, 0, 1)
	case Contrast:
		return checkRange("contrast", op.Factor, filters.MinToneFactor, filters.MaxToneFactor)
	case Brightness:
		return checkRange("brightness", op.Factor, filters.MinToneFactor, filters.MaxToneFactor)
	case Saturation:
		return checkRange("saturation", op.Factor, filters.MinSaturationFactor, filters.MaxSaturationFactor)
	case Details:
		return checkRange("details", op.Strength, 0, 1)
	case Upscale:
		if !upscale.ValidScale(op.Factor) {
			return fmt.Errorf("%w: %d (must be 2 or 4)", ErrInvalidScale, op.Factor)
		}
		return nil
	case Reset:
		return nil
	case nil:
		return fmt.Errorf("%w: nil operation", ErrInvalidParameter)
	default:
		return fmt.Errorf("%w: unknown operation %T", ErrInvalidParameter, op)
	}
}

func checkRange(name string, v, lo, hi float64) error {
	if v < lo || v > hi {
		return fmt.Errorf("%w: %s %.2f outside [%.1f, %.1f]", ErrInvalidParameter, name, v, lo, hi)
	}
	return nil
}
