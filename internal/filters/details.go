package filters

import (
	"image"

	"github.com/disintegration/gift"
)

// EnhanceDetails sharpens fine structure and boosts local contrast on luminance only.
//
// The image is converted to Lab. The L channel gets an unsharp mask (Gaussian sigma
// 1.5, weights 1+0.8*strength and -0.8*strength) followed by CLAHE with clip limit
// 2+strength on an 8x8 grid. The untouched chroma channels are then recombined.
// strength is clamped to [0, 1].
func EnhanceDetails(img *image.NRGBA, strength float64) *image.NRGBA {
	strength = clampFloat(strength, 0, 1)
	lab := SplitLab(img)
	lab.L = CLAHE(unsharpGray(lab.L, 1.5, 0.8*strength), 2.0+strength, DefaultTileGrid)
	return lab.Merge()
}

// EqualizeLuminance applies CLAHE to the Lab luminance of img, leaving chroma intact.
func EqualizeLuminance(img *image.NRGBA, clipLimit float64, grid int) *image.NRGBA {
	lab := SplitLab(img)
	lab.L = CLAHE(lab.L, clipLimit, grid)
	return lab.Merge()
}

// UnsharpMask blends img with its Gaussian blur: img*(1+amount) - blur*amount.
// amount <= 0 returns img unchanged.
func UnsharpMask(img *image.NRGBA, sigma, amount float64) *image.NRGBA {
	if amount <= 0 {
		return img
	}
	g := gift.New(gift.UnsharpMask(float32(sigma), float32(amount), 0))
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}

func unsharpGray(img *image.Gray, sigma, amount float64) *image.Gray {
	if amount <= 0 {
		return img
	}
	g := gift.New(gift.UnsharpMask(float32(sigma), float32(amount), 0))
	dst := image.NewGray(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}
