package filters

import (
	"errors"
	"fmt"
	"image"
)

// ErrTransform is returned when a filter fails internally.
var ErrTransform = errors.New("transform failed")

// Safe applies fn to img and recovers from any panic raised inside it.
//
// On failure the returned image is nil and the error wraps ErrTransform; img itself
// is never touched because filters do not modify their input.
func Safe(name string, img *image.NRGBA, fn func(*image.NRGBA) *image.NRGBA) (out *image.NRGBA, err error) {
	if img == nil {
		return nil, fmt.Errorf("%w: %s: nil image", ErrTransform, name)
	}
	defer func() {
		if r := recover(); r != nil {
			out = nil
			err = fmt.Errorf("%w: %s: %v", ErrTransform, name, r)
		}
	}()

	out = fn(img)
	if out == nil {
		return nil, fmt.Errorf("%w: %s produced no image", ErrTransform, name)
	}
	return out, nil
}

// clamp constrains an integer value to the range [lo, hi].
// Used for border replication in neighbourhood filters.
func clamp(val, lo, hi int) int {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

func clampFloat(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}

// toUint8 rounds v to the nearest integer and saturates it to [0,255].
func toUint8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
