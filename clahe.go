package enhance

import (
	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"
)

// Contrast-limited adaptive histogram equalization, after Zuiderveld (1994).

// numBins is the number of histogram bins and remapping entries, one per
// 8-bit intensity.
const numBins = 256

// unlimitedClip marks clipping as disabled.
const unlimitedClip = ^uint32(0)

// clipThreshold converts the caller's fractional clip limit into a per-bin
// cap for a tile of the given nominal pixel count. Non-positive limits
// disable clipping.
func clipThreshold(clipLimit float32, tilePixels int) uint32 {
	if clipLimit <= 0 {
		return unlimitedClip
	}

	c := clipLimit * float32(tilePixels) / numBins
	if c < 1 {
		c = 1
	}

	// Saturate absurdly large limits into "no clipping".
	if c >= float32(unlimitedClip) {
		return unlimitedClip
	}

	return uint32(c)
}

// tileRect returns the pixel rectangle [x0,x1)x[y0,y1) of tile (tx, ty).
// The last tile row and column absorb the integer-division remainder, so
// the grid covers the image exactly with no overlap.
func tileRect(width, height, tileGridX, tileGridY, tx, ty int) (x0, y0, x1, y1 int) {
	tileWidth := width / tileGridX
	tileHeight := height / tileGridY

	x0 = tx * tileWidth
	y0 = ty * tileHeight

	x1 = x0 + tileWidth
	if tx == tileGridX-1 {
		x1 = width
	}

	y1 = y0 + tileHeight
	if ty == tileGridY-1 {
		y1 = height
	}

	return x0, y0, x1, y1
}

// tileHistogram counts intensity occurrences inside one tile rectangle.
// The bin sum always equals the rectangle's pixel count.
func tileHistogram(pix []byte, width, x0, y0, x1, y1 int) [numBins]uint32 {
	var hist [numBins]uint32

	for y := y0; y < y1; y++ {
		row := pix[y*width+x0 : y*width+x1]
		for _, v := range row {
			hist[v]++
		}
	}

	return hist
}

// clipHistogram caps every bin at limit and redistributes the clipped
// excess uniformly, handing the integer remainder to the lowest-indexed
// bins one unit each. The resulting low-bin bias is intentional and kept
// bit-compatible; the bin sum is unchanged.
func clipHistogram(hist *[numBins]uint32, limit uint32) {
	if limit == unlimitedClip {
		return
	}

	var excess uint32
	for i := range hist {
		if hist[i] > limit {
			excess += hist[i] - limit
			hist[i] = limit
		}
	}

	if excess == 0 {
		return
	}

	perBin := excess / numBins
	remainder := int(excess % numBins)

	for i := range hist {
		hist[i] += perBin
		if i < remainder {
			hist[i]++
		}
	}
}

// normalizeCDF converts a clipped histogram into a 256-entry remapping
// table written to dst. tilePixels is the tile's true pixel count, which
// for edge tiles differs from the nominal tile size.
func normalizeCDF(hist *[numBins]uint32, tilePixels int, dst []byte) {
	var cdf [numBins]uint32

	cdf[0] = hist[0]
	for i := 1; i < numBins; i++ {
		cdf[i] = cdf[i-1] + hist[i]
	}

	// First non-zero cumulative value.
	var cdfMin uint32
	for _, v := range cdf {
		if v > 0 {
			cdfMin = v
			break
		}
	}

	denom := float32(tilePixels) - float32(cdfMin)
	if denom <= 0 {
		// Degenerate tile, e.g. every pixel sharing one intensity.
		// The identity mapping leaves such a tile visually unchanged.
		for i := range dst[:numBins] {
			dst[i] = byte(i)
		}

		return
	}

	for i := 0; i < numBins; i++ {
		dst[i] = clampF((float32(cdf[i]) - float32(cdfMin)) / denom * 255)
	}
}

// flatTile reports whether a single bin holds every pixel of the tile.
// Clipping is skipped for such tiles: redistributing the excess into empty
// bins would defeat the degenerate-CDF identity mapping that keeps a flat
// tile visually unchanged.
func flatTile(hist *[numBins]uint32, tilePixels int) bool {
	for _, v := range hist {
		if v != 0 {
			return int(v) == tilePixels
		}
	}

	return false
}

// buildTileMaps computes one remapping table per tile, stored back to back
// in tile row-major order (ty*tileGridX+tx). Tiles are independent, so a
// pool processes them concurrently; parallelFor blocks until every table
// is final, which the interpolation phase requires.
func buildTileMaps(pix []byte, width, height, tileGridX, tileGridY int, clipLimit float32, pool *workerpool.Pool) []byte {
	tileWidth := width / tileGridX
	tileHeight := height / tileGridY
	limit := clipThreshold(clipLimit, tileWidth*tileHeight)

	numTiles := tileGridX * tileGridY
	maps := make([]byte, numTiles*numBins)

	parallelFor(pool, numTiles, func(start, end int) {
		for idx := start; idx < end; idx++ {
			tx := idx % tileGridX
			ty := idx / tileGridX

			x0, y0, x1, y1 := tileRect(width, height, tileGridX, tileGridY, tx, ty)
			tilePixels := (x1 - x0) * (y1 - y0)

			hist := tileHistogram(pix, width, x0, y0, x1, y1)
			if !flatTile(&hist, tilePixels) {
				clipHistogram(&hist, limit)
			}
			normalizeCDF(&hist, tilePixels, maps[idx*numBins:(idx+1)*numBins])
		}
	})

	return maps
}

// blendTileMaps remaps one intensity by bilinearly blending the four tile
// tables surrounding position (x, y). The half-tile offset centers the
// blend on tile midpoints, which is what hides tile seams.
func blendTileMaps(maps []byte, tileGridX, tileGridY, tileWidth, tileHeight, x, y, val int) byte {
	fx := float32(x)/float32(tileWidth) - 0.5
	fy := float32(y)/float32(tileHeight) - 0.5

	if fx < 0 {
		fx = 0
	} else if mx := float32(tileGridX - 1); fx > mx {
		fx = mx
	}

	if fy < 0 {
		fy = 0
	} else if my := float32(tileGridY - 1); fy > my {
		fy = my
	}

	tx0 := int(fx)
	ty0 := int(fy)
	tx1 := min(tx0+1, tileGridX-1)
	ty1 := min(ty0+1, tileGridY-1)

	wx := fx - float32(tx0)
	wy := fy - float32(ty0)

	v00 := float32(maps[(ty0*tileGridX+tx0)*numBins+val])
	v10 := float32(maps[(ty0*tileGridX+tx1)*numBins+val])
	v01 := float32(maps[(ty1*tileGridX+tx0)*numBins+val])
	v11 := float32(maps[(ty1*tileGridX+tx1)*numBins+val])

	top := v00*(1-wx) + v10*wx
	bottom := v01*(1-wx) + v11*wx

	return clampF(top*(1-wy) + bottom*wy)
}

// Equalize applies contrast-limited adaptive histogram equalization and
// returns a new buffer with the same dimensions as the input.
//
// The image is partitioned into tileGridX by tileGridY tiles. Each tile's
// histogram is clipped at clipLimit (a fraction of the nominal tile pixel
// count per bin, e.g. 2.0) and normalized into an intensity remapping;
// per-pixel results blend the four nearest tiles bilinearly. A clipLimit
// of zero or below disables clipping, yielding plain adaptive histogram
// equalization.
func Equalize(pix []byte, width, height, tileGridX, tileGridY int, clipLimit float32, opts ...*Options) ([]byte, error) {
	if err := validateImage(pix, width, height); err != nil {
		return nil, err
	}

	if err := validateGrid(width, height, tileGridX, tileGridY); err != nil {
		return nil, err
	}

	pool := newPool(workers(opts))
	if pool != nil {
		defer pool.Close()
	}

	return equalize(pix, width, height, tileGridX, tileGridY, clipLimit, pool), nil
}

// equalize is the full-resolution path with validation already done.
func equalize(pix []byte, width, height, tileGridX, tileGridY int, clipLimit float32, pool *workerpool.Pool) []byte {
	maps := buildTileMaps(pix, width, height, tileGridX, tileGridY, clipLimit, pool)

	tileWidth := width / tileGridX
	tileHeight := height / tileGridY

	out := make([]byte, width*height)

	parallelFor(pool, height, func(start, end int) {
		for y := start; y < end; y++ {
			row := pix[y*width : (y+1)*width]
			dst := out[y*width : (y+1)*width]

			for x, v := range row {
				dst[x] = blendTileMaps(maps, tileGridX, tileGridY, tileWidth, tileHeight, x, y, int(v))
			}
		}
	})

	return out
}
