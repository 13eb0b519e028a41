package filters

import (
	"image"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/lucasb-eyer/go-colorful"
)

// LabPlanes is an image split into CIE-Lab channels.
//
// Luminance is quantised to 8 bits (0-255 for L* 0-100) so it can be processed by
// grey-level filters; the chroma channels keep full precision.
type LabPlanes struct {
	// L is the luminance plane.
	L *image.Gray

	// A and B are the chroma channels in go-colorful units, row-major.
	A []float64
	B []float64
}

// SplitLab converts img to Lab planes.
func SplitLab(img *image.NRGBA) *LabPlanes {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	planes := &LabPlanes{
		L: image.NewGray(image.Rect(0, 0, width, height)),
		A: make([]float64, width*height),
		B: make([]float64, width*height),
	}

	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < width; x++ {
				i := img.PixOffset(bounds.Min.X+x, bounds.Min.Y+y)
				c := colorful.Color{
					R: float64(img.Pix[i]) / 255,
					G: float64(img.Pix[i+1]) / 255,
					B: float64(img.Pix[i+2]) / 255,
				}
				l, a, b := c.Lab()
				k := y*width + x
				planes.L.Pix[y*planes.L.Stride+x] = toUint8(l * 255)
				planes.A[k] = a
				planes.B[k] = b
			}
		}
	})
	return planes
}

// Merge converts the planes back to an opaque RGB image, clamping out-of-gamut colours.
func (p *LabPlanes) Merge() *image.NRGBA {
	bounds := p.L.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))

	parallel.Line(height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < width; x++ {
				k := y*width + x
				l := float64(p.L.Pix[y*p.L.Stride+x]) / 255
				r, g, b := colorful.Lab(l, p.A[k], p.B[k]).Clamped().RGB255()
				o := y*dst.Stride + x*4
				dst.Pix[o] = r
				dst.Pix[o+1] = g
				dst.Pix[o+2] = b
				dst.Pix[o+3] = 0xff
			}
		}
	})
	return dst
}
