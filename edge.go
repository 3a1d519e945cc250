package enhance

import (
	"math"
)

// Edge detection: Sobel gradient, non-maximum suppression and hysteresis
// thresholding, composed into a Canny detector.

// sobel computes the gradient magnitude and quantized direction for every
// pixel, clamping taps at the image border. Directions are quantized to
// four sectors: 0 horizontal, 1 diagonal (/), 2 vertical, 3 diagonal (\).
func sobel(pix []byte, width, height int) (mag []float32, dir []byte) {
	mag = make([]float32, width*height)
	dir = make([]byte, width*height)

	at := func(x, y int) int32 {
		return int32(pix[clampInt(y, 0, height-1)*width+clampInt(x, 0, width-1)])
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) +
				-2*at(x-1, y) + 2*at(x+1, y) +
				-at(x-1, y+1) + at(x+1, y+1)

			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) +
				at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)

			i := y*width + x
			mag[i] = float32(math.Hypot(float64(gx), float64(gy)))

			// Quantize the gradient angle to the nearest 45 degrees.
			angle := math.Atan2(float64(gy), float64(gx)) * 180 / math.Pi
			if angle < 0 {
				angle += 180
			}

			switch {
			case angle < 22.5 || angle >= 157.5:
				dir[i] = 0
			case angle < 67.5:
				dir[i] = 1
			case angle < 112.5:
				dir[i] = 2
			default:
				dir[i] = 3
			}
		}
	}

	return mag, dir
}

// Gradient computes the Sobel gradient magnitude of the image, clamped to
// [0,255]. It is the raw edge-strength stage; use Canny for a full
// thresholded edge map.
func Gradient(pix []byte, width, height int) ([]byte, error) {
	if err := validateImage(pix, width, height); err != nil {
		return nil, err
	}

	mag, _ := sobel(pix, width, height)

	out := make([]byte, width*height)
	for i, m := range mag {
		out[i] = clampF(m)
	}

	return out, nil
}

// nonMaxSuppression thins gradient ridges to single-pixel width by zeroing
// every pixel that is not a local maximum along its gradient direction.
func nonMaxSuppression(mag []float32, dir []byte, width, height int) []float32 {
	out := make([]float32, width*height)

	neighbor := func(x, y int) float32 {
		if x < 0 || x >= width || y < 0 || y >= height {
			return 0
		}

		return mag[y*width+x]
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x

			var a, b float32
			switch dir[i] {
			case 0: // horizontal gradient, compare left/right
				a, b = neighbor(x-1, y), neighbor(x+1, y)
			case 1:
				a, b = neighbor(x+1, y-1), neighbor(x-1, y+1)
			case 2: // vertical gradient, compare up/down
				a, b = neighbor(x, y-1), neighbor(x, y+1)
			default:
				a, b = neighbor(x-1, y-1), neighbor(x+1, y+1)
			}

			if mag[i] >= a && mag[i] >= b {
				out[i] = mag[i]
			}
		}
	}

	return out
}

// hysteresis produces the final binary edge map: pixels at or above high
// are strong edges, pixels at or above low survive only when 8-connected
// to a strong edge.
func hysteresis(mag []float32, width, height int, low, high float32) []byte {
	out := make([]byte, width*height)

	// Seed with strong edges.
	var stack []int
	for i, m := range mag {
		if m >= high {
			out[i] = 255
			stack = append(stack, i)
		}
	}

	// Grow along weak edges.
	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		x := i % width
		y := i / width

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}

				j := ny*width + nx
				if out[j] == 0 && mag[j] >= low {
					out[j] = 255
					stack = append(stack, j)
				}
			}
		}
	}

	return out
}

// Canny runs the full edge-detection pipeline: Gaussian blur, Sobel
// gradient, non-maximum suppression and hysteresis thresholding. The
// result is a binary edge map with edges at 255 and background at 0.
// low and high are gradient-magnitude thresholds with low <= high.
func Canny(pix []byte, width, height int, sigma float64, low, high float32) ([]byte, error) {
	if err := validateImage(pix, width, height); err != nil {
		return nil, err
	}

	blurred, err := Blur(pix, width, height, sigma)
	if err != nil {
		return nil, err
	}

	mag, dir := sobel(blurred, width, height)
	thin := nonMaxSuppression(mag, dir, width, height)

	return hysteresis(thin, width, height, low, high), nil
}
