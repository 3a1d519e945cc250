package enhance

import (
	"bytes"
	"testing"
)

func TestDownscalePassthrough(t *testing.T) {
	const width, height = 60, 44
	pix := testImage(width, height, 10)

	want, err := Equalize(pix, width, height, 3, 3, 2)
	if err != nil {
		t.Fatalf("Equalize: %v", err)
	}

	// Same-size and larger targets must both delegate to the
	// full-resolution path, byte for byte.
	targets := []struct{ tw, th int }{
		{width, height},
		{width * 2, height * 2},
		{width, height * 3},
	}

	for _, target := range targets {
		got, err := EqualizeAndDownscale(pix, width, height, target.tw, target.th, 3, 3, 2)
		if err != nil {
			t.Fatalf("target %dx%d: %v", target.tw, target.th, err)
		}

		if !bytes.Equal(got, want) {
			t.Errorf("target %dx%d: passthrough output differs from Equalize", target.tw, target.th)
		}
	}
}

func TestDownscaleFlatImage(t *testing.T) {
	// A uniform image stays uniform through the fused path: the identity
	// mapping commutes with nearest-neighbor resampling.
	const width, height = 100, 100
	pix := bytes.Repeat([]byte{128}, width*height)

	grids := []struct{ gx, gy int }{{1, 1}, {4, 4}, {7, 3}}

	for _, grid := range grids {
		for _, clip := range []float32{0, 2} {
			out, err := EqualizeAndDownscale(pix, width, height, 40, 25, grid.gx, grid.gy, clip)
			if err != nil {
				t.Fatalf("grid %dx%d clip %g: %v", grid.gx, grid.gy, clip, err)
			}

			if len(out) != 40*25 {
				t.Fatalf("grid %dx%d: output length %d, want %d", grid.gx, grid.gy, len(out), 40*25)
			}

			for i, v := range out {
				if v != 128 {
					t.Fatalf("grid %dx%d clip %g: pixel %d = %d, want 128", grid.gx, grid.gy, clip, i, v)
				}
			}
		}
	}
}

func TestDownscaleDimensions(t *testing.T) {
	const width, height = 80, 50
	pix := testImage(width, height, 11)

	testCases := []struct {
		name    string
		tw, th  int
		wantLen int
	}{
		{"HalfBoth", 40, 25, 40 * 25},
		{"Tiny", 1, 1, 1},
		// The fused path runs whenever either axis shrinks; output is
		// always target-sized then.
		{"WidthOnly", 40, 50, 40 * 50},
		{"WidthOnlyTallerTarget", 40, 90, 40 * 90},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			out, err := EqualizeAndDownscale(pix, width, height, tc.tw, tc.th, 4, 4, 2)
			if err != nil {
				t.Fatalf("EqualizeAndDownscale: %v", err)
			}

			if len(out) != tc.wantLen {
				t.Errorf("output length %d, want %d", len(out), tc.wantLen)
			}
		})
	}
}

func TestDownscaleParallelMatchesSequential(t *testing.T) {
	const width, height = 131, 89
	pix := testImage(width, height, 12)

	seq, err := EqualizeAndDownscale(pix, width, height, 47, 31, 4, 3, 1.5)
	if err != nil {
		t.Fatalf("sequential: %v", err)
	}

	par, err := EqualizeAndDownscale(pix, width, height, 47, 31, 4, 3, 1.5, &Options{Workers: -1})
	if err != nil {
		t.Fatalf("parallel: %v", err)
	}

	if !bytes.Equal(seq, par) {
		t.Error("parallel output differs from sequential")
	}
}

func TestDownscaleMatchesNearestOfEqualized(t *testing.T) {
	// The fused path samples the equalized image at rounded source
	// coordinates, so it must agree with equalize-then-nearest-resample.
	const width, height = 64, 64
	pix := testImage(width, height, 13)

	full, err := Equalize(pix, width, height, 4, 4, 2)
	if err != nil {
		t.Fatalf("Equalize: %v", err)
	}

	const tw, th = 24, 24
	fused, err := EqualizeAndDownscale(pix, width, height, tw, th, 4, 4, 2)
	if err != nil {
		t.Fatalf("EqualizeAndDownscale: %v", err)
	}

	sx := float64(width) / tw
	sy := float64(height) / th

	for oy := 0; oy < th; oy++ {
		srcY := clampInt(int((float64(oy)+0.5)*sy-0.5+0.5), 0, height-1)
		for ox := 0; ox < tw; ox++ {
			srcX := clampInt(int((float64(ox)+0.5)*sx-0.5+0.5), 0, width-1)

			want := full[srcY*width+srcX]
			got := fused[oy*tw+ox]

			if got != want {
				t.Fatalf("output (%d,%d): got %d, want %d (source %d,%d)", ox, oy, got, want, srcX, srcY)
			}
		}
	}
}

func BenchmarkEqualizeAndDownscale(b *testing.B) {
	const width, height = 1024, 1024
	pix := testImage(width, height, 14)

	b.SetBytes(width * height)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := EqualizeAndDownscale(pix, width, height, 256, 256, 8, 8, 2); err != nil {
			b.Fatalf("EqualizeAndDownscale: %v", err)
		}
	}
}
