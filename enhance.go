// Package enhance implements image-enhancement kernels over flat 8-bit
// grayscale pixel buffers.
//
// All functions share the same pixel contract: a row-major []byte of length
// width*height, one byte per pixel, intensity in [0,255]. Input buffers are
// never modified; every operation returns a freshly allocated buffer with
// the same contract, so stages compose into pipelines (e.g. Blur into
// AdaptiveThreshold, or Equalize into Canny).
//
// The core of the package is contrast-limited adaptive histogram
// equalization (CLAHE): Equalize and its fused variant
// EqualizeAndDownscale, which produces a downscaled result without
// allocating a full-resolution intermediate.
package enhance

import (
	"errors"
	"fmt"

	"github.com/ajroetker/go-highway/hwy/contrib/workerpool"
)

// Standard error types for malformed calls.
var (
	// ErrBufferLength is returned when a pixel buffer's length does not equal width*height.
	ErrBufferLength = errors.New("buffer length does not match dimensions")
	// ErrDimensions is returned when a dimension or tile grid parameter is invalid.
	ErrDimensions = errors.New("invalid dimensions")
)

// Options specifies processing parameters shared by all operations.
type Options struct {
	// Workers controls parallelism for the per-tile and per-row phases.
	// 0 (the default) runs fully sequentially. A negative value uses one
	// worker per available CPU. Results are bit-identical regardless of
	// the worker count.
	Workers int
}

// workers extracts the worker count from an optional Options argument.
func workers(opts []*Options) int {
	if len(opts) > 0 && opts[0] != nil {
		return opts[0].Workers
	}

	return 0
}

// newPool creates a worker pool for n workers, or nil for the sequential path.
// The caller owns the pool and must Close it.
func newPool(n int) *workerpool.Pool {
	if n == 0 {
		return nil
	}

	return workerpool.New(n)
}

// parallelFor runs fn over [0, n), using the pool when one is available.
// With a pool it blocks until every index is processed, so it doubles as
// the barrier between the tile-table phase and the interpolation phase.
func parallelFor(pool *workerpool.Pool, n int, fn func(start, end int)) {
	if pool == nil {
		fn(0, n)
		return
	}

	pool.ParallelFor(n, fn)
}

// validateImage checks the shared pixel-buffer preconditions.
func validateImage(pix []byte, width, height int) error {
	if width < 1 || height < 1 {
		return fmt.Errorf("%w: %dx%d", ErrDimensions, width, height)
	}

	if len(pix) != width*height {
		return fmt.Errorf("%w: got %d bytes for %dx%d", ErrBufferLength, len(pix), width, height)
	}

	return nil
}

// validateGrid checks that the tile grid fits the image, with at least one
// pixel row and column per tile.
func validateGrid(width, height, tileGridX, tileGridY int) error {
	if tileGridX < 1 || tileGridY < 1 {
		return fmt.Errorf("%w: tile grid %dx%d", ErrDimensions, tileGridX, tileGridY)
	}

	if width < tileGridX || height < tileGridY {
		return fmt.Errorf("%w: tile grid %dx%d exceeds image %dx%d",
			ErrDimensions, tileGridX, tileGridY, width, height)
	}

	return nil
}

// clamp converts a value to a byte, saturating at the bounds.
func clamp(x int32) byte {
	if x < 0 {
		return 0
	}

	if x > 255 {
		return 255
	}

	return byte(x)
}

// clampF rounds a float32 to the nearest integer and saturates to [0,255].
func clampF(x float32) byte {
	if x <= 0 {
		return 0
	}

	if x >= 255 {
		return 255
	}

	return byte(x + 0.5)
}

// clampInt limits v to [lo, hi].
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}

	if v > hi {
		return hi
	}

	return v
}
