package enhance

import (
	"bytes"
	"errors"
	"testing"
)

func TestBlurFlatImage(t *testing.T) {
	pix := bytes.Repeat([]byte{200}, 16*16)

	out, err := Blur(pix, 16, 16, 2.5)
	if err != nil {
		t.Fatalf("Blur: %v", err)
	}

	for i, v := range out {
		if v != 200 {
			t.Fatalf("pixel %d = %d, want 200", i, v)
		}
	}
}

func TestBlurZeroSigma(t *testing.T) {
	pix := testImage(20, 15, 20)

	out, err := Blur(pix, 20, 15, 0)
	if err != nil {
		t.Fatalf("Blur: %v", err)
	}

	if !bytes.Equal(out, pix) {
		t.Error("sigma 0 should copy the input unchanged")
	}

	out[0] ^= 0xff
	if out[0] == pix[0] {
		t.Error("sigma 0 returned the input buffer instead of a copy")
	}
}

func TestBlurImpulseSymmetry(t *testing.T) {
	// A centered impulse must blur symmetrically in all four directions.
	const size = 11
	pix := make([]byte, size*size)
	pix[5*size+5] = 255

	out, err := Blur(pix, size, size, 1.5)
	if err != nil {
		t.Fatalf("Blur: %v", err)
	}

	for d := 1; d <= 3; d++ {
		left := out[5*size+5-d]
		right := out[5*size+5+d]
		up := out[(5-d)*size+5]
		down := out[(5+d)*size+5]

		if left != right || up != down || left != up {
			t.Errorf("distance %d: asymmetric response l=%d r=%d u=%d d=%d", d, left, right, up, down)
		}
	}

	if out[5*size+5] <= out[5*size+6] {
		t.Error("impulse center should stay the maximum")
	}
}

func TestBlurValidation(t *testing.T) {
	if _, err := Blur(make([]byte, 10), 4, 4, 1); !errors.Is(err, ErrBufferLength) {
		t.Errorf("got %v, want ErrBufferLength", err)
	}

	if _, err := Blur(nil, 0, 4, 1); !errors.Is(err, ErrDimensions) {
		t.Errorf("got %v, want ErrDimensions", err)
	}
}

func BenchmarkBlur(b *testing.B) {
	const width, height = 512, 512
	pix := testImage(width, height, 21)

	b.SetBytes(width * height)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := Blur(pix, width, height, 2); err != nil {
			b.Fatalf("Blur: %v", err)
		}
	}
}
