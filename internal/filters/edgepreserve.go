package filters

import (
	"image"
	"math"

	"github.com/anthonynsimon/bild/parallel"
)

// edgePreserveIterations is the number of horizontal+vertical recursive passes.
const edgePreserveIterations = 3

// EdgePreserve smooths img while keeping strong edges, using the recursive
// domain-transform filter of Gastal and Oliveira.
//
// Parameters:
//   - sigmaS: Spatial extent of the smoothing in pixels (e.g. 50).
//   - sigmaR: Range extent on the [0,1] colour scale (e.g. 0.4). Smaller values keep
//     more edges.
//
// # Algorithm
//
// Distances between neighbours are warped by 1 + sigmaS/sigmaR * Σ|ΔI|, summed over
// the three channels, so a step edge looks far away and receives little weight. A
// first-order recursive filter runs left-to-right and right-to-left along rows, then
// top-to-bottom and bottom-to-top along columns. The sequence is repeated three
// times with a shrinking sigma so the combined response approximates a Gaussian of
// sigmaS in flat regions.
func EdgePreserve(img *image.NRGBA, sigmaS, sigmaR float64) *image.NRGBA {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	n := width * height

	var planes [3][]float64
	for c := range planes {
		planes[c] = make([]float64, n)
	}
	for y := 0; y < height; y++ {
		i := img.PixOffset(bounds.Min.X, bounds.Min.Y+y)
		for x := 0; x < width; x++ {
			k := y*width + x
			planes[0][k] = float64(img.Pix[i]) / 255
			planes[1][k] = float64(img.Pix[i+1]) / 255
			planes[2][k] = float64(img.Pix[i+2]) / 255
			i += 4
		}
	}

	// dh[k] is the warped distance between pixel k and its left neighbour,
	// dv[k] between pixel k and the pixel above it.
	ratio := sigmaS / sigmaR
	dh := make([]float64, n)
	dv := make([]float64, n)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			k := y*width + x
			if x > 0 {
				var sum float64
				for c := range planes {
					sum += math.Abs(planes[c][k] - planes[c][k-1])
				}
				dh[k] = 1 + ratio*sum
			}
			if y > 0 {
				var sum float64
				for c := range planes {
					sum += math.Abs(planes[c][k] - planes[c][k-width])
				}
				dv[k] = 1 + ratio*sum
			}
		}
	}

	weights := make([]float64, n)
	for i := 0; i < edgePreserveIterations; i++ {
		sigmaH := sigmaS * math.Sqrt(3) * math.Pow(2, float64(edgePreserveIterations-i-1)) /
			math.Sqrt(math.Pow(4, edgePreserveIterations)-1)
		a := math.Exp(-math.Sqrt2 / sigmaH)

		for k, d := range dh {
			weights[k] = math.Pow(a, d)
		}
		parallel.Line(height, func(start, end int) {
			for y := start; y < end; y++ {
				for c := range planes {
					recursiveFilter(planes[c], weights, y*width, 1, width)
				}
			}
		})

		for k, d := range dv {
			weights[k] = math.Pow(a, d)
		}
		parallel.Line(width, func(start, end int) {
			for x := start; x < end; x++ {
				for c := range planes {
					recursiveFilter(planes[c], weights, x, width, height)
				}
			}
		})
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	for k := 0; k < n; k++ {
		o := k * 4
		dst.Pix[o] = toUint8(planes[0][k] * 255)
		dst.Pix[o+1] = toUint8(planes[1][k] * 255)
		dst.Pix[o+2] = toUint8(planes[2][k] * 255)
		dst.Pix[o+3] = 0xff
	}
	return dst
}

// recursiveFilter runs the causal and anti-causal passes over the count samples of
// plane starting at offset and spaced by stride. weights[k] couples sample k with the
// preceding sample along the same line.
func recursiveFilter(plane, weights []float64, offset, stride, count int) {
	for i := 1; i < count; i++ {
		k := offset + i*stride
		plane[k] += weights[k] * (plane[k-stride] - plane[k])
	}
	for i := count - 2; i >= 0; i-- {
		k := offset + i*stride
		next := k + stride
		plane[k] += weights[next] * (plane[next] - plane[k])
	}
}
