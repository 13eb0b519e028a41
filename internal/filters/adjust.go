package filters

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Factor ranges accepted by the colour adjustments. Values outside are clamped.
const (
	MinToneFactor       = 0.5
	MaxToneFactor       = 2.0
	MinSaturationFactor = 0.0
	MaxSaturationFactor = 2.0
)

// AdjustContrast scales each channel's distance from the mean luma of the image.
// factor 1.0 returns img unchanged; valid range is [0.5, 2.0].
func AdjustContrast(img *image.NRGBA, factor float64) *image.NRGBA {
	if factor == 1 {
		return img
	}
	factor = clampFloat(factor, MinToneFactor, MaxToneFactor)
	mean := float64(meanLuma(img))
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: blend(mean, c.R, factor),
			G: blend(mean, c.G, factor),
			B: blend(mean, c.B, factor),
			A: c.A,
		}
	})
}

// AdjustBrightness multiplies every channel by factor.
// factor 1.0 returns img unchanged; valid range is [0.5, 2.0].
func AdjustBrightness(img *image.NRGBA, factor float64) *image.NRGBA {
	if factor == 1 {
		return img
	}
	factor = clampFloat(factor, MinToneFactor, MaxToneFactor)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		return color.NRGBA{
			R: blend(0, c.R, factor),
			G: blend(0, c.G, factor),
			B: blend(0, c.B, factor),
			A: c.A,
		}
	})
}

// AdjustSaturation scales each channel's distance from the pixel's own luma, so 0
// produces greyscale and 2 doubles colourfulness.
// factor 1.0 returns img unchanged; valid range is [0.0, 2.0].
func AdjustSaturation(img *image.NRGBA, factor float64) *image.NRGBA {
	if factor == 1 {
		return img
	}
	factor = clampFloat(factor, MinSaturationFactor, MaxSaturationFactor)
	return imaging.AdjustFunc(img, func(c color.NRGBA) color.NRGBA {
		l := float64(luma(c.R, c.G, c.B))
		return color.NRGBA{
			R: blend(l, c.R, factor),
			G: blend(l, c.G, factor),
			B: blend(l, c.B, factor),
			A: c.A,
		}
	})
}

// blend interpolates from base towards v; factors above 1 extrapolate.
func blend(base float64, v uint8, factor float64) uint8 {
	return toUint8(base + factor*(float64(v)-base))
}

// luma returns the ITU-R 601 luma of an 8-bit RGB triple.
func luma(r, g, b uint8) uint8 {
	return uint8((int(r)*299 + int(g)*587 + int(b)*114 + 500) / 1000)
}

// meanLuma returns the rounded average luma of img.
func meanLuma(img *image.NRGBA) int {
	bounds := img.Bounds()
	var sum, n int64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		i := img.PixOffset(bounds.Min.X, y)
		for x := 0; x < bounds.Dx(); x++ {
			sum += int64(luma(img.Pix[i], img.Pix[i+1], img.Pix[i+2]))
			i += 4
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return int((sum + n/2) / n)
}
