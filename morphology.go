package enhance

// Binary morphology with square structuring elements. The min/max filters
// are separable, so each operation runs as a horizontal pass followed by a
// vertical pass with edge pixels clamped.

// Erode applies a minimum filter over a kernelSize x kernelSize window and
// returns a new buffer. A kernelSize below 1 defaults to 3.
func Erode(pix []byte, width, height, kernelSize int) ([]byte, error) {
	if err := validateImage(pix, width, height); err != nil {
		return nil, err
	}

	return morphPass(pix, width, height, kernelSize, false), nil
}

// Dilate applies a maximum filter over a kernelSize x kernelSize window
// and returns a new buffer. A kernelSize below 1 defaults to 3.
func Dilate(pix []byte, width, height, kernelSize int) ([]byte, error) {
	if err := validateImage(pix, width, height); err != nil {
		return nil, err
	}

	return morphPass(pix, width, height, kernelSize, true), nil
}

// Close performs morphological closing (dilate then erode) for the given
// number of iterations, closing small gaps in binary edges while keeping
// feature size.
func Close(pix []byte, width, height, kernelSize, iterations int) ([]byte, error) {
	if err := validateImage(pix, width, height); err != nil {
		return nil, err
	}

	current := make([]byte, len(pix))
	copy(current, pix)

	for i := 0; i < iterations; i++ {
		current = morphPass(current, width, height, kernelSize, true)
		current = morphPass(current, width, height, kernelSize, false)
	}

	return current, nil
}

// morphPass runs a separable min or max filter over the image.
func morphPass(pix []byte, width, height, kernelSize int, dilate bool) []byte {
	if kernelSize < 1 {
		kernelSize = 3
	}

	halfKernel := kernelSize / 2

	tmp := make([]byte, width*height)
	out := make([]byte, width*height)

	// Horizontal pass.
	for y := 0; y < height; y++ {
		row := pix[y*width : (y+1)*width]
		dst := tmp[y*width : (y+1)*width]

		for x := 0; x < width; x++ {
			ext := row[clampInt(x-halfKernel, 0, width-1)]

			for k := 1; k < kernelSize; k++ {
				v := row[clampInt(x-halfKernel+k, 0, width-1)]
				if dilate == (v > ext) {
					ext = v
				}
			}

			dst[x] = ext
		}
	}

	// Vertical pass.
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			ext := tmp[clampInt(y-halfKernel, 0, height-1)*width+x]

			for k := 1; k < kernelSize; k++ {
				v := tmp[clampInt(y-halfKernel+k, 0, height-1)*width+x]
				if dilate == (v > ext) {
					ext = v
				}
			}

			out[y*width+x] = ext
		}
	}

	return out
}
