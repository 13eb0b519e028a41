package imaging

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

// ErrEmpty is returned when an operation needs an image and none is present.
var ErrEmpty = errors.New("no image loaded")

// Buffer holds the pristine original image and the mutable working image.
//
// Both images are created together by Load. The working image is replaced wholesale
// by Reset or Replace and is never mutated in place, so a reference obtained from
// Current stays valid (and unchanged) after later operations.
type Buffer struct {
	limits   SizeLimits
	original *image.NRGBA
	working  *image.NRGBA
}

// NewBuffer creates an empty buffer that validates loads against limits.
func NewBuffer(limits SizeLimits) *Buffer {
	return &Buffer{limits: limits}
}

// Limits returns the size limits used by the buffer.
func (b *Buffer) Limits() SizeLimits {
	return b.limits
}

// Load validates img and installs it as both original and working image.
//
// The buffer keeps its own deep copies; later changes to img are not observed.
// On failure the previous state is left untouched.
func (b *Buffer) Load(img image.Image) (SizeCheck, error) {
	check, err := b.limits.Validate(img)
	if err != nil {
		return check, err
	}
	original := ToCanonical(img)
	b.original = original
	b.working = imaging.Clone(original)
	return check, nil
}

// Reset replaces the working image with a fresh copy of the original.
// It does nothing if no image is loaded.
func (b *Buffer) Reset() {
	if b.original == nil {
		return
	}
	b.working = imaging.Clone(b.original)
}

// Replace installs img as the new working image. It does nothing if no image is
// loaded or img is nil.
func (b *Buffer) Replace(img *image.NRGBA) {
	if b.original == nil || img == nil {
		return
	}
	b.working = img
}

// Loaded reports whether an image is present.
func (b *Buffer) Loaded() bool {
	return b.original != nil
}

// Current returns the working image, or nil if nothing is loaded.
func (b *Buffer) Current() *image.NRGBA {
	return b.working
}

// Original returns the image captured at load time, or nil if nothing is loaded.
func (b *Buffer) Original() *image.NRGBA {
	return b.original
}

// ToCanonical converts img to an opaque *image.NRGBA with bounds starting at (0,0).
// The result never shares pixel memory with img.
func ToCanonical(img image.Image) *image.NRGBA {
	dst := imaging.Clone(img)
	for i := 3; i < len(dst.Pix); i += 4 {
		dst.Pix[i] = 0xff
	}
	return dst
}
