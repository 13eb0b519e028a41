package filters

import (
	"image"
	"math"
)

// DefaultTileGrid is the number of CLAHE tiles along each axis.
const DefaultTileGrid = 8

// CLAHE performs contrast-limited adaptive histogram equalisation on a grey image.
//
// Parameters:
//   - src: Grey image to equalise.
//   - clipLimit: Contrast limit relative to a uniform histogram. A tile histogram bin
//     may hold at most clipLimit*tileArea/256 pixels; the excess is redistributed
//     evenly over all bins. Values <= 0 disable clipping (plain AHE).
//   - grid: Number of tiles along each axis (8 for an 8x8 grid). It is reduced for
//     images smaller than the grid so every tile holds at least one pixel.
//
// # Algorithm
//
//  1. Split the image into grid x grid tiles and build a 256-bin histogram per tile
//  2. Clip each histogram and redistribute the excess
//  3. Turn each clipped histogram into a cumulative lookup table
//  4. Map every pixel by bilinear interpolation between the lookup tables of the
//     four nearest tile centers (edge pixels use the nearest tiles only)
func CLAHE(src *image.Gray, clipLimit float64, grid int) *image.Gray {
	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	dst := image.NewGray(image.Rect(0, 0, width, height))
	if width == 0 || height == 0 {
		return dst
	}
	if grid < 1 {
		grid = DefaultTileGrid
	}
	tilesX := grid
	if tilesX > width {
		tilesX = width
	}
	tilesY := grid
	if tilesY > height {
		tilesY = height
	}

	// Tile t along an axis of length n covers [t*n/tiles, (t+1)*n/tiles).
	luts := make([][256]uint8, tilesX*tilesY)
	for ty := 0; ty < tilesY; ty++ {
		y0, y1 := ty*height/tilesY, (ty+1)*height/tilesY
		for tx := 0; tx < tilesX; tx++ {
			x0, x1 := tx*width/tilesX, (tx+1)*width/tilesX

			var hist [256]int
			for y := y0; y < y1; y++ {
				row := src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
				for x := x0; x < x1; x++ {
					hist[row[x]]++
				}
			}
			area := (x1 - x0) * (y1 - y0)
			luts[ty*tilesX+tx] = claheLUT(hist, area, clipLimit)
		}
	}

	for y := 0; y < height; y++ {
		fy := (float64(y)+0.5)*float64(tilesY)/float64(height) - 0.5
		ty1 := int(math.Floor(fy))
		ya := fy - float64(ty1)
		ty2 := ty1 + 1
		ty1 = clamp(ty1, 0, tilesY-1)
		ty2 = clamp(ty2, 0, tilesY-1)

		row := src.Pix[src.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		out := dst.Pix[y*dst.Stride:]
		for x := 0; x < width; x++ {
			fx := (float64(x)+0.5)*float64(tilesX)/float64(width) - 0.5
			tx1 := int(math.Floor(fx))
			xa := fx - float64(tx1)
			tx2 := tx1 + 1
			tx1 = clamp(tx1, 0, tilesX-1)
			tx2 = clamp(tx2, 0, tilesX-1)

			v := row[x]
			top := float64(luts[ty1*tilesX+tx1][v])*(1-xa) + float64(luts[ty1*tilesX+tx2][v])*xa
			bottom := float64(luts[ty2*tilesX+tx1][v])*(1-xa) + float64(luts[ty2*tilesX+tx2][v])*xa
			out[x] = toUint8(top*(1-ya) + bottom*ya)
		}
	}
	return dst
}

// claheLUT clips hist and returns its equalisation lookup table.
func claheLUT(hist [256]int, area int, clipLimit float64) [256]uint8 {
	var lut [256]uint8
	if area == 0 {
		for i := range lut {
			lut[i] = uint8(i)
		}
		return lut
	}

	if clipLimit > 0 {
		limit := int(clipLimit * float64(area) / 256)
		if limit < 1 {
			limit = 1
		}
		clipped := 0
		for i := range hist {
			if hist[i] > limit {
				clipped += hist[i] - limit
				hist[i] = limit
			}
		}

		batch := clipped / 256
		residual := clipped - batch*256
		for i := range hist {
			hist[i] += batch
		}
		if residual > 0 {
			step := 256 / residual
			if step < 1 {
				step = 1
			}
			for i := 0; i < 256 && residual > 0; i += step {
				hist[i]++
				residual--
			}
		}
	}

	scale := 255.0 / float64(area)
	sum := 0
	for i := range hist {
		sum += hist[i]
		lut[i] = toUint8(float64(sum) * scale)
	}
	return lut
}
