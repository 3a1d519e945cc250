package enhance

import (
	"fmt"
	"math"
)

// EqualizeAndDownscale fuses Equalize with downsampling to
// targetWidth x targetHeight, skipping the full-resolution intermediate
// the two-step pipeline would allocate. Tile remapping tables are built at
// the source resolution with the caller's tile grid, exactly as in
// Equalize; the grid is never rescaled to the target.
//
// Each output pixel is mapped to its source position via pixel-center
// scaling and rounded to the nearest source pixel. The rounded coordinate
// feeds both the intensity fetch and the tile-blend weights, keeping the
// two consistent. Nearest-neighbor selection trades anti-aliasing at large
// ratios for speed and is kept bit-compatible with existing consumers.
//
// When the target is not strictly smaller than the source in both
// dimensions, the call is equivalent to Equalize at native resolution and
// the target dimensions are ignored.
func EqualizeAndDownscale(pix []byte, width, height, targetWidth, targetHeight, tileGridX, tileGridY int, clipLimit float32, opts ...*Options) ([]byte, error) {
	if err := validateImage(pix, width, height); err != nil {
		return nil, err
	}

	if targetWidth < 1 || targetHeight < 1 {
		return nil, fmt.Errorf("%w: target %dx%d", ErrDimensions, targetWidth, targetHeight)
	}

	if err := validateGrid(width, height, tileGridX, tileGridY); err != nil {
		return nil, err
	}

	pool := newPool(workers(opts))
	if pool != nil {
		defer pool.Close()
	}

	// No downscaling requested.
	if targetWidth >= width && targetHeight >= height {
		return equalize(pix, width, height, tileGridX, tileGridY, clipLimit, pool), nil
	}

	maps := buildTileMaps(pix, width, height, tileGridX, tileGridY, clipLimit, pool)

	tileWidth := width / tileGridX
	tileHeight := height / tileGridY

	sx := float64(width) / float64(targetWidth)
	sy := float64(height) / float64(targetHeight)

	out := make([]byte, targetWidth*targetHeight)

	parallelFor(pool, targetHeight, func(start, end int) {
		for oy := start; oy < end; oy++ {
			srcY := (float64(oy)+0.5)*sy - 0.5
			y := clampInt(int(math.Round(srcY)), 0, height-1)

			dst := out[oy*targetWidth : (oy+1)*targetWidth]

			for ox := range dst {
				srcX := (float64(ox)+0.5)*sx - 0.5
				x := clampInt(int(math.Round(srcX)), 0, width-1)

				val := int(pix[y*width+x])
				dst[ox] = blendTileMaps(maps, tileGridX, tileGridY, tileWidth, tileHeight, x, y, val)
			}
		}
	})

	return out, nil
}
