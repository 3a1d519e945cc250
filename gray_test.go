package enhance

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

func TestEqualizeGray(t *testing.T) {
	const width, height = 40, 30
	pix := testImage(width, height, 70)

	img := newGray(pix, width, height)

	out, err := EqualizeGray(img, 4, 3, 2)
	if err != nil {
		t.Fatalf("EqualizeGray: %v", err)
	}

	want, err := Equalize(pix, width, height, 4, 3, 2)
	if err != nil {
		t.Fatalf("Equalize: %v", err)
	}

	if !bytes.Equal(out.Pix, want) {
		t.Error("EqualizeGray differs from Equalize on the raw buffer")
	}

	if got := out.Rect; got.Dx() != width || got.Dy() != height {
		t.Errorf("output bounds %v, want %dx%d", got, width, height)
	}
}

func TestEqualizeGraySubimage(t *testing.T) {
	// A subimage has a stride wider than its row, so the bridge must
	// compact rows before processing.
	src := testImage(20, 20, 71)

	base := image.NewGray(image.Rect(0, 0, 20, 20))
	for y := 0; y < 20; y++ {
		for x := 0; x < 20; x++ {
			base.SetGray(x, y, color.Gray{Y: src[y*20+x]})
		}
	}

	sub := base.SubImage(image.Rect(4, 3, 16, 15)).(*image.Gray)

	out, err := EqualizeGray(sub, 2, 2, 2)
	if err != nil {
		t.Fatalf("EqualizeGray: %v", err)
	}

	// Reference: extract the subimage rows by hand.
	pix := make([]byte, 12*12)
	for y := 0; y < 12; y++ {
		for x := 0; x < 12; x++ {
			pix[y*12+x] = base.GrayAt(x+4, y+3).Y
		}
	}

	want, err := Equalize(pix, 12, 12, 2, 2, 2)
	if err != nil {
		t.Fatalf("Equalize: %v", err)
	}

	if !bytes.Equal(out.Pix, want) {
		t.Error("subimage result differs from manual row extraction")
	}
}

func TestEqualizeAndDownscaleGray(t *testing.T) {
	const width, height = 50, 40
	pix := testImage(width, height, 72)

	img := newGray(pix, width, height)

	out, err := EqualizeAndDownscaleGray(img, 25, 20, 2, 2, 2)
	if err != nil {
		t.Fatalf("EqualizeAndDownscaleGray: %v", err)
	}

	if out.Rect.Dx() != 25 || out.Rect.Dy() != 20 {
		t.Errorf("output bounds %v, want 25x20", out.Rect)
	}

	// Native-size target keeps the source dimensions.
	native, err := EqualizeAndDownscaleGray(img, width, height*2, 2, 2, 2)
	if err != nil {
		t.Fatalf("EqualizeAndDownscaleGray: %v", err)
	}

	if native.Rect.Dx() != width || native.Rect.Dy() != height {
		t.Errorf("native output bounds %v, want %dx%d", native.Rect, width, height)
	}
}

func TestToGray(t *testing.T) {
	src := image.NewRGBA(image.Rect(-2, -2, 6, 6))
	for y := -2; y < 6; y++ {
		for x := -2; x < 6; x++ {
			src.Set(x, y, color.RGBA{R: 120, G: 120, B: 120, A: 255})
		}
	}

	gray := ToGray(src)

	if gray.Rect.Min != (image.Point{}) || gray.Rect.Dx() != 8 || gray.Rect.Dy() != 8 {
		t.Fatalf("bounds %v, want 8x8 at origin", gray.Rect)
	}

	if gray.Stride != 8 {
		t.Errorf("stride %d, want compact 8", gray.Stride)
	}

	for i, v := range gray.Pix {
		if v != gray.Pix[0] {
			t.Fatalf("pixel %d = %d, uniform input must stay uniform (got %d at 0)", i, v, gray.Pix[0])
		}
	}
}
