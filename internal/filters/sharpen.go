package filters

import (
	"image"

	"github.com/anthonynsimon/bild/convolution"
	"github.com/disintegration/imaging"
)

// Sharpen convolves img with the 3x3 kernel
//
//	-1 -1 -1
//	-1  9 -1
//	-1 -1 -1
//
// scaled by strength (0 to 2). The kernel sums to strength, so strength 1 keeps the
// overall brightness and strength 2 is aggressive. Strength 0 or below returns img
// unchanged.
func Sharpen(img *image.NRGBA, strength float64) *image.NRGBA {
	if strength <= 0 {
		return img
	}
	return Convolve3x3(img, 9, -1, clampFloat(strength, 0, 2))
}

// Convolve3x3 convolves img with a 3x3 kernel whose center weight is center and whose
// eight neighbours weigh neighbor, all multiplied by scale. Borders are extended and
// results are clamped to [0,255]. Alpha is kept from the source.
func Convolve3x3(img image.Image, center, neighbor, scale float64) *image.NRGBA {
	k := convolution.NewKernel(3, 3)
	for i := range k.Matrix {
		k.Matrix[i] = neighbor * scale
	}
	k.Matrix[4] = center * scale

	out := convolution.Convolve(img, k, &convolution.Options{KeepAlpha: true})
	return imaging.Clone(out)
}
