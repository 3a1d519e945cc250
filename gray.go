package enhance

import (
	"image"
	"image/draw"
)

// Bridges between the flat pixel-buffer contract and the standard
// library's image types.

// ToGray converts any image to 8-bit grayscale with a compact stride,
// ready for the buffer-based operations in this package.
func ToGray(img image.Image) *image.Gray {
	b := img.Bounds()

	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)

	return gray
}

// grayPix returns the image's pixels as a compact row-major buffer,
// copying only when the stride carries padding or the image is a subimage.
func grayPix(img *image.Gray) ([]byte, int, int) {
	width, height := img.Rect.Dx(), img.Rect.Dy()

	if img.Stride == width && len(img.Pix) == width*height {
		return img.Pix, width, height
	}

	pix := make([]byte, width*height)
	for y := 0; y < height; y++ {
		row := img.Pix[y*img.Stride:]
		copy(pix[y*width:(y+1)*width], row[:width])
	}

	return pix, width, height
}

// newGray wraps a row-major buffer in an image.Gray without copying.
func newGray(pix []byte, width, height int) *image.Gray {
	return &image.Gray{
		Pix:    pix,
		Stride: width,
		Rect:   image.Rect(0, 0, width, height),
	}
}

// EqualizeGray applies Equalize to an image.Gray and returns the result as
// a new image of the same size.
func EqualizeGray(img *image.Gray, tileGridX, tileGridY int, clipLimit float32, opts ...*Options) (*image.Gray, error) {
	pix, width, height := grayPix(img)

	out, err := Equalize(pix, width, height, tileGridX, tileGridY, clipLimit, opts...)
	if err != nil {
		return nil, err
	}

	return newGray(out, width, height), nil
}

// EqualizeAndDownscaleGray applies EqualizeAndDownscale to an image.Gray
// and returns the result at the target size.
func EqualizeAndDownscaleGray(img *image.Gray, targetWidth, targetHeight, tileGridX, tileGridY int, clipLimit float32, opts ...*Options) (*image.Gray, error) {
	pix, width, height := grayPix(img)

	out, err := EqualizeAndDownscale(pix, width, height, targetWidth, targetHeight, tileGridX, tileGridY, clipLimit, opts...)
	if err != nil {
		return nil, err
	}

	if targetWidth >= width && targetHeight >= height {
		return newGray(out, width, height), nil
	}

	return newGray(out, targetWidth, targetHeight), nil
}
