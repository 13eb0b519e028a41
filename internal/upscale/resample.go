package upscale

import (
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// ErrInvalidScale is returned for scale factors the chosen method cannot produce.
var ErrInvalidScale = errors.New("invalid scale")

// ValidScale reports whether scale is accepted by the resampling methods.
func ValidScale(scale int) bool {
	return scale == 2 || scale == 4
}

// TargetSize returns the dimensions of img enlarged by scale.
func TargetSize(img image.Image, scale int) (int, int) {
	b := img.Bounds()
	return b.Dx() * scale, b.Dy() * scale
}

// BasicResample enlarges img by scale (2 or 4) with a Lanczos filter.
func BasicResample(img *image.NRGBA, scale int) (*image.NRGBA, error) {
	if !ValidScale(scale) {
		return nil, fmt.Errorf("%w: %d (must be 2 or 4)", ErrInvalidScale, scale)
	}
	w, h := TargetSize(img, scale)
	return imaging.Resize(img, w, h, imaging.Lanczos), nil
}
