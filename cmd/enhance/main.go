// Command enhance applies grayscale enhancement operations to an image
// and writes the result as PNG.
//
// Usage:
//
//	enhance -in photo.jpg -out out.png -op clahe -tiles 8 -clip 2.0
//	enhance -in scan.tiff -out out.png -op threshold -sigma 3 -offset 10
//	enhance -in photo.png -out edges.png -op canny -low 40 -high 90
package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"

	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"github.com/gen2brain/enhance"
)

func main() {
	var (
		in      = flag.String("in", "", "input image (png, jpeg, gif, tiff, bmp)")
		out     = flag.String("out", "out.png", "output PNG file")
		op      = flag.String("op", "clahe", "operation: clahe, clahe-scale, blur, threshold, unsharp, canny, close, gradient")
		tiles   = flag.Int("tiles", 8, "tile grid size per axis for clahe")
		clip    = flag.Float64("clip", 2.0, "clahe clip limit (<= 0 disables clipping)")
		twidth  = flag.Int("width", 0, "target width for clahe-scale")
		theight = flag.Int("height", 0, "target height for clahe-scale")
		sigma   = flag.Float64("sigma", 2.0, "gaussian sigma for blur, threshold and canny")
		offset  = flag.Int("offset", 10, "threshold offset")
		invert  = flag.Bool("invert", false, "invert threshold output")
		amount  = flag.Float64("amount", 1.5, "unsharp amount")
		radius  = flag.Int("radius", 2, "unsharp blur radius")
		kernel  = flag.Int("kernel", 3, "morphology kernel size")
		iters   = flag.Int("iter", 1, "morphology iterations")
		low     = flag.Float64("low", 40, "canny low threshold")
		high    = flag.Float64("high", 90, "canny high threshold")
		workers = flag.Int("workers", 0, "worker count (0 sequential, -1 all CPUs)")
	)

	flag.Parse()

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	f, err := os.Open(*in)
	if err != nil {
		log.Fatalf("open input: %v", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		log.Fatalf("decode %s: %v", *in, err)
	}

	gray := enhance.ToGray(img)
	pix := gray.Pix
	width := gray.Rect.Dx()
	height := gray.Rect.Dy()

	log.Printf("input: %s %dx%d (%s)", *in, width, height, format)

	opts := &enhance.Options{Workers: *workers}

	var result []byte
	outWidth, outHeight := width, height

	switch *op {
	case "clahe":
		result, err = enhance.Equalize(pix, width, height, *tiles, *tiles, float32(*clip), opts)

	case "clahe-scale":
		if *twidth < 1 || *theight < 1 {
			log.Fatal("clahe-scale requires -width and -height")
		}

		result, err = enhance.EqualizeAndDownscale(pix, width, height,
			*twidth, *theight, *tiles, *tiles, float32(*clip), opts)
		if *twidth < width || *theight < height {
			outWidth, outHeight = *twidth, *theight
		}

	case "blur":
		result, err = enhance.Blur(pix, width, height, *sigma, opts)

	case "threshold":
		var blurred []byte
		blurred, err = enhance.Blur(pix, width, height, *sigma, opts)
		if err == nil {
			result, err = enhance.AdaptiveThreshold(pix, blurred, width, height, *offset, *invert)
		}

	case "unsharp":
		result, err = enhance.UnsharpMask(pix, width, height, float32(*amount), *radius)

	case "canny":
		result, err = enhance.Canny(pix, width, height, *sigma, float32(*low), float32(*high))

	case "close":
		result, err = enhance.Close(pix, width, height, *kernel, *iters)

	case "gradient":
		result, err = enhance.Gradient(pix, width, height)

	default:
		log.Fatalf("unknown operation: %s", *op)
	}

	if err != nil {
		log.Fatalf("%s: %v", *op, err)
	}

	if err := writePNG(*out, result, outWidth, outHeight); err != nil {
		log.Fatalf("write output: %v", err)
	}

	log.Printf("output: %s %dx%d", *out, outWidth, outHeight)
}

// writePNG encodes a grayscale buffer to a PNG file.
func writePNG(path string, pix []byte, width, height int) error {
	gray := &image.Gray{Pix: pix, Stride: width, Rect: image.Rect(0, 0, width, height)}

	f, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := png.Encode(f, gray); err != nil {
		f.Close()

		return fmt.Errorf("encode PNG: %w", err)
	}

	return f.Close()
}
