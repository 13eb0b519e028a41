package filters

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// Denoise applies edge-preserving smoothing with a bilateral filter.
//
// strength (0 to 1) maps to a window diameter of 5+10*strength pixels and to colour
// and spatial sigmas of 50+50*strength. A bilateral filter is used instead of
// non-local means because it keeps interactive latency on multi-megapixel images.
func Denoise(img *image.NRGBA, strength float64) *image.NRGBA {
	strength = clampFloat(strength, 0, 1)
	d := int(5 + strength*10)
	sigma := 50 + strength*50
	return Bilateral(img, d, sigma, sigma)
}

type bilateralTap struct {
	dx, dy int
	weight float64
}

// Bilateral filters img with a circular window of diameter d.
//
// Each neighbour is weighted by exp(-r²/2σs²) for its distance r and by
// exp(-Δ²/2σc²) where Δ is the sum of absolute channel differences to the center
// pixel. Borders are replicated.
func Bilateral(img *image.NRGBA, d int, sigmaColor, sigmaSpace float64) *image.NRGBA {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	radius := d / 2
	if radius < 1 {
		radius = 1
	}
	spaceCoeff := -0.5 / (sigmaSpace * sigmaSpace)
	colorCoeff := -0.5 / (sigmaColor * sigmaColor)

	taps := make([]bilateralTap, 0, (2*radius+1)*(2*radius+1))
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			r2 := float64(dx*dx + dy*dy)
			if math.Sqrt(r2) > float64(radius) {
				continue
			}
			taps = append(taps, bilateralTap{dx: dx, dy: dy, weight: math.Exp(r2 * spaceCoeff)})
		}
	}

	colorWeight := make([]float64, 3*255+1)
	for i := range colorWeight {
		colorWeight[i] = math.Exp(float64(i*i) * colorCoeff)
	}

	src := img.Pix
	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < width; x++ {
				i := img.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
				r0, g0, b0 := int(src[i]), int(src[i+1]), int(src[i+2])

				var sumR, sumG, sumB, sumW float64
				for _, tap := range taps {
					px := clamp(x+tap.dx, 0, width-1)
					py := clamp(y+tap.dy, 0, height-1)
					j := img.PixOffset(bounds.Min.X+px, bounds.Min.Y+py)
					r, g, b := int(src[j]), int(src[j+1]), int(src[j+2])

					w := tap.weight * colorWeight[absInt(r-r0)+absInt(g-g0)+absInt(b-b0)]
					sumR += w * float64(r)
					sumG += w * float64(g)
					sumB += w * float64(b)
					sumW += w
				}

				o := y*dst.Stride + x*4
				dst.Pix[o] = toUint8(sumR / sumW)
				dst.Pix[o+1] = toUint8(sumG / sumW)
				dst.Pix[o+2] = toUint8(sumB / sumW)
				dst.Pix[o+3] = 0xff
			}
		}
	})
	return dst
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
