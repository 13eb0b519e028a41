package imaging

import (
	"image"
	"math"

	"github.com/disintegration/imaging"
)

// DiffThreshold is the mean per-channel difference above which a pixel counts as
// changed.
const DiffThreshold = 10

// MaxPSNR is reported for identical images.
const MaxPSNR = 100.0

// Comparison describes how much an image changed relative to a reference.
type Comparison struct {
	SimilarityScore  float64 `json:"similarity_score"` // fraction of unchanged pixels
	PixelsDifferent  int     `json:"pixels_different"`
	TotalPixels      int     `json:"total_pixels"`
	SameSize         bool    `json:"same_size"`
	ReferenceSize    Point   `json:"reference_size"`
	ImageSize        Point   `json:"image_size"`
	AverageColorDiff float64 `json:"average_color_diff"`
	PSNR             float64 `json:"psnr_db"`
}

// Point is a width/height pair.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Compare measures img against ref. When the sizes differ, ref is first resampled
// to img's size with Lanczos, so an upscaled result is judged against a plain
// resize of the reference.
func Compare(ref, img *image.NRGBA) (*Comparison, error) {
	if ref == nil || img == nil {
		return nil, ErrEmpty
	}
	rb, ib := ref.Bounds(), img.Bounds()
	w, h := ib.Dx(), ib.Dy()
	if w == 0 || h == 0 || rb.Empty() {
		return nil, ErrEmpty
	}

	sameSize := rb.Dx() == w && rb.Dy() == h
	if !sameSize {
		ref = imaging.Resize(ref, w, h, imaging.Lanczos)
	}

	totalPixels := w * h
	pixelsDifferent := 0
	var totalColorDiff, sqErr float64

	for y := 0; y < h; y++ {
		ro := ref.PixOffset(0, y)
		po := img.PixOffset(ib.Min.X, ib.Min.Y+y)
		for x := 0; x < w; x++ {
			dr := absDiff(ref.Pix[ro], img.Pix[po])
			dg := absDiff(ref.Pix[ro+1], img.Pix[po+1])
			db := absDiff(ref.Pix[ro+2], img.Pix[po+2])
			diff := float64(dr+dg+db) / 3.0

			totalColorDiff += diff
			sqErr += float64(dr*dr + dg*dg + db*db)
			if diff > DiffThreshold {
				pixelsDifferent++
			}
			ro += 4
			po += 4
		}
	}

	psnr := MaxPSNR
	if mse := sqErr / float64(totalPixels*3); mse > 0 {
		psnr = math.Min(MaxPSNR, 10*math.Log10(255*255/mse))
	}

	similarity := 1.0 - float64(pixelsDifferent)/float64(totalPixels)
	avgColorDiff := totalColorDiff / float64(totalPixels)

	return &Comparison{
		SimilarityScore:  math.Round(similarity*1000) / 1000,
		PixelsDifferent:  pixelsDifferent,
		TotalPixels:      totalPixels,
		SameSize:         sameSize,
		ReferenceSize:    Point{X: rb.Dx(), Y: rb.Dy()},
		ImageSize:        Point{X: w, Y: h},
		AverageColorDiff: math.Round(avgColorDiff*100) / 100,
		PSNR:             math.Round(psnr*100) / 100,
	}, nil
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}
