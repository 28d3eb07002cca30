// Package metrics scores restored grids against a reference.
package metrics

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/nvr-ai/go-mrf/grid"
)

// ErrShapeMismatch is returned when the compared grids differ in shape.
var ErrShapeMismatch = errors.New("grids differ in shape")

// Peak is the maximum 8-bit sample value used by PSNR.
const Peak = 255

// MSE returns the mean squared error between a and b.
func MSE(a, b *grid.Grid) (float64, error) {
	if a == nil || b == nil {
		return 0, errors.Wrap(grid.ErrInvalidImageShape, "cannot compare a nil grid")
	}
	if !a.SameShape(b) {
		return 0, errors.Wrapf(ErrShapeMismatch, "%v vs %v", a.Shape(), b.Shape())
	}

	sq := make([]float64, a.Len())
	for i, v := range a.Pix() {
		d := float64(v) - float64(b.Pix()[i])
		sq[i] = d * d
	}
	return stat.Mean(sq, nil), nil
}

// PSNR returns the peak signal-to-noise ratio of im against truth in decibels.
//
// Arguments:
// - im: The estimate, usually a corrupted or restored image.
// - truth: The reference image.
//
// Returns:
// - 10*log10(255^2/MSE), or +Inf for identical grids.
// - error if the shapes differ.
//
// @example
// before, _ := metrics.PSNR(noisy, clean)
// after, _ := metrics.PSNR(res.Final, clean)
func PSNR(im, truth *grid.Grid) (float64, error) {
	mse, err := MSE(im, truth)
	if err != nil {
		return 0, err
	}
	if mse == 0 {
		return math.Inf(1), nil
	}
	return 10 * math.Log10(Peak*Peak/mse), nil
}
