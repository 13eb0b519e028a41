package imaging

import (
	"errors"
	"fmt"
	"image"
)

// Pixel-count bounds applied when no explicit limits are configured.
const (
	// DefaultMaxPixels bounds memory for roughly an 8000x6000 frame.
	DefaultMaxPixels = 50_000_000

	// DefaultWarnPixels is the count above which operations are reported as slow.
	DefaultWarnPixels = 10_000_000
)

// ErrTooLarge is returned when an image exceeds the configured maximum pixel count.
var ErrTooLarge = errors.New("image too large")

// SizeLimits bounds the pixel count of images accepted by the engine.
type SizeLimits struct {
	// MaxPixels is the largest accepted width*height. Larger images are rejected.
	MaxPixels int64 `json:"max_pixels"`

	// WarnPixels is the width*height above which a non-fatal warning is produced.
	WarnPixels int64 `json:"warn_pixels"`
}

// DefaultSizeLimits returns the 50MP maximum and 10MP warning threshold.
func DefaultSizeLimits() SizeLimits {
	return SizeLimits{MaxPixels: DefaultMaxPixels, WarnPixels: DefaultWarnPixels}
}

// SizeCheck is the result of validating image dimensions against SizeLimits.
type SizeCheck struct {
	// OK is false when the image must be rejected.
	OK bool `json:"ok"`

	// Warn is true for accepted images that are large enough to be slow.
	Warn bool `json:"warn"`

	// Reason is a human-readable explanation when OK is false or Warn is true.
	Reason string `json:"reason,omitempty"`

	// Pixels is width*height.
	Pixels int64 `json:"pixels"`
}

// Check validates the given dimensions. It is a pure function of its inputs.
func (l SizeLimits) Check(width, height int) SizeCheck {
	pixels := int64(width) * int64(height)
	if width <= 0 || height <= 0 {
		return SizeCheck{Reason: fmt.Sprintf("invalid image dimensions (%dx%d)", width, height), Pixels: pixels}
	}
	if l.MaxPixels > 0 && pixels > l.MaxPixels {
		return SizeCheck{
			Reason: fmt.Sprintf("image too large (%dx%d, %d pixels); maximum is %d pixels", width, height, pixels, l.MaxPixels),
			Pixels: pixels,
		}
	}
	if l.WarnPixels > 0 && pixels > l.WarnPixels {
		return SizeCheck{
			OK:     true,
			Warn:   true,
			Reason: fmt.Sprintf("large image (%dx%d), processing may be slow", width, height),
			Pixels: pixels,
		}
	}
	return SizeCheck{OK: true, Pixels: pixels}
}

// Validate checks an in-memory image. The returned error wraps ErrTooLarge when the
// check fails; warnings are reported through the SizeCheck only.
func (l SizeLimits) Validate(img image.Image) (SizeCheck, error) {
	if img == nil {
		return SizeCheck{Reason: "no image"}, ErrEmpty
	}
	b := img.Bounds()
	check := l.Check(b.Dx(), b.Dy())
	if !check.OK {
		return check, fmt.Errorf("%w: %s", ErrTooLarge, check.Reason)
	}
	return check, nil
}
