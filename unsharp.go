package enhance

import (
	"fmt"
	"math"
)

// UnsharpMask sharpens the image using sharpened = original +
// amount*(original - blurred), where the blur is a separable box filter of
// the given radius (window size 2*radius+1). The box approximation keeps
// the filter cheap; amount is typically in the 1.0-2.0 range.
func UnsharpMask(pix []byte, width, height int, amount float32, radius int) ([]byte, error) {
	if err := validateImage(pix, width, height); err != nil {
		return nil, err
	}

	if radius < 0 {
		return nil, fmt.Errorf("%w: radius %d", ErrDimensions, radius)
	}

	return unsharpMask(pix, width, height, amount, radius), nil
}

// unsharpMask runs the two-pass box blur and mask with validation done.
func unsharpMask(pix []byte, width, height int, amount float32, radius int) []byte {
	// Horizontal box-blur pass, truncating integer means.
	tmp := make([]uint16, width*height)

	for y := 0; y < height; y++ {
		row := pix[y*width : (y+1)*width]

		for x := 0; x < width; x++ {
			var sum, count uint32
			for k := -radius; k <= radius; k++ {
				nx := clampInt(x+k, 0, width-1)
				sum += uint32(row[nx])
				count++
			}

			tmp[y*width+x] = uint16(sum / count)
		}
	}

	// Vertical pass combined with the mask.
	out := make([]byte, width*height)

	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			var sum, count uint32
			for k := -radius; k <= radius; k++ {
				ny := clampInt(y+k, 0, height-1)
				sum += uint32(tmp[ny*width+x])
				count++
			}

			blurred := float32(sum / count)
			original := float32(pix[y*width+x])

			out[y*width+x] = clampF(original + amount*(original-blurred))
		}
	}

	return out
}

// UnsharpMaskAndDownscale fuses UnsharpMask with downsampling to
// targetWidth x targetHeight in a single pass over the output, avoiding
// the full-resolution intermediate. Each output pixel bilinearly samples
// its source position for the original value and box-blurs the window
// around the nearest source pixel for the local mean.
//
// When the target is not strictly smaller than the source in both
// dimensions, the call is equivalent to UnsharpMask at native resolution.
func UnsharpMaskAndDownscale(pix []byte, width, height, targetWidth, targetHeight int, amount float32, radius int) ([]byte, error) {
	if err := validateImage(pix, width, height); err != nil {
		return nil, err
	}

	if targetWidth < 1 || targetHeight < 1 {
		return nil, fmt.Errorf("%w: target %dx%d", ErrDimensions, targetWidth, targetHeight)
	}

	if radius < 0 {
		return nil, fmt.Errorf("%w: radius %d", ErrDimensions, radius)
	}

	if targetWidth >= width && targetHeight >= height {
		return unsharpMask(pix, width, height, amount, radius), nil
	}

	out := make([]byte, targetWidth*targetHeight)

	sx := float64(width) / float64(targetWidth)
	sy := float64(height) / float64(targetHeight)

	for oy := 0; oy < targetHeight; oy++ {
		srcY := (float64(oy)+0.5)*sy - 0.5
		yFloor := int(math.Floor(srcY))
		fy := float32(srcY - float64(yFloor))
		iy := clampInt(int(math.Round(srcY)), 0, height-1)

		for ox := 0; ox < targetWidth; ox++ {
			srcX := (float64(ox)+0.5)*sx - 0.5
			xFloor := int(math.Floor(srcX))
			fx := float32(srcX - float64(xFloor))
			ix := clampInt(int(math.Round(srcX)), 0, width-1)

			original := bilinearSample(pix, width, height, xFloor, yFloor, fx, fy)

			// Box blur centered on the nearest source pixel.
			var sum, count uint32
			for ky := -radius; ky <= radius; ky++ {
				ny := clampInt(iy+ky, 0, height-1)
				for kx := -radius; kx <= radius; kx++ {
					nx := clampInt(ix+kx, 0, width-1)
					sum += uint32(pix[ny*width+nx])
					count++
				}
			}

			blurred := float32(sum) / float32(count)

			out[oy*targetWidth+ox] = clampF(original + amount*(original-blurred))
		}
	}

	return out, nil
}

// bilinearSample interpolates a grayscale value at a fractional source
// position, clamping the four taps to the image bounds.
func bilinearSample(pix []byte, width, height, xFloor, yFloor int, fx, fy float32) float32 {
	x0 := clampInt(xFloor, 0, width-1)
	y0 := clampInt(yFloor, 0, height-1)
	x1 := clampInt(xFloor+1, 0, width-1)
	y1 := clampInt(yFloor+1, 0, height-1)

	p00 := float32(pix[y0*width+x0])
	p10 := float32(pix[y0*width+x1])
	p01 := float32(pix[y1*width+x0])
	p11 := float32(pix[y1*width+x1])

	top := p00*(1-fx) + p10*fx
	bottom := p01*(1-fx) + p11*fx

	return top*(1-fy) + bottom*fy
}
