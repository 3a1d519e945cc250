package enhance

import (
	"math"
)

// gaussianKernel builds a normalized 1-D Gaussian kernel for sigma, with
// radius ceil(3*sigma).
func gaussianKernel(sigma float64) []float64 {
	radius := int(math.Ceil(3 * sigma))
	kernel := make([]float64, 2*radius+1)

	var sum float64
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += kernel[i]
	}

	for i := range kernel {
		kernel[i] /= sum
	}

	return kernel
}

// Blur applies a Gaussian blur with the given standard deviation and
// returns a new buffer. The kernel is separable, so the filter runs as a
// horizontal pass followed by a vertical pass with edge pixels clamped.
// A sigma of zero or below returns an unmodified copy.
func Blur(pix []byte, width, height int, sigma float64, opts ...*Options) ([]byte, error) {
	if err := validateImage(pix, width, height); err != nil {
		return nil, err
	}

	out := make([]byte, width*height)

	if sigma <= 0 {
		copy(out, pix)

		return out, nil
	}

	kernel := gaussianKernel(sigma)
	radius := len(kernel) / 2

	pool := newPool(workers(opts))
	if pool != nil {
		defer pool.Close()
	}

	// Horizontal pass into a float intermediate to avoid double rounding.
	tmp := make([]float64, width*height)

	parallelFor(pool, height, func(start, end int) {
		for y := start; y < end; y++ {
			row := pix[y*width : (y+1)*width]

			for x := 0; x < width; x++ {
				var sum float64
				for k, w := range kernel {
					nx := clampInt(x+k-radius, 0, width-1)
					sum += w * float64(row[nx])
				}

				tmp[y*width+x] = sum
			}
		}
	})

	// Vertical pass with final rounding.
	parallelFor(pool, height, func(start, end int) {
		for y := start; y < end; y++ {
			for x := 0; x < width; x++ {
				var sum float64
				for k, w := range kernel {
					ny := clampInt(y+k-radius, 0, height-1)
					sum += w * tmp[ny*width+x]
				}

				out[y*width+x] = clampF(float32(sum))
			}
		}
	})

	return out, nil
}
