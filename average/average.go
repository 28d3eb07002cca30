// Package average combines repeated exposures of the same scene into one frame.
package average

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"

	"github.com/nvr-ai/go-mrf/grid"
)

var (
	// ErrNoFrames is returned when no frames are supplied.
	ErrNoFrames = errors.New("no frames to average")
	// ErrFrameMismatch is returned when frames do not share one shape.
	ErrFrameMismatch = errors.New("frames differ in shape")
	// ErrInvalidSigma is returned for a non-positive rejection threshold.
	ErrInvalidSigma = errors.New("sigma threshold must be positive")
)

// Mean returns the pixel-wise arithmetic mean of frames, clipped to [0,255] and
// truncated toward zero.
//
// Arguments:
// - frames: One or more grids of identical shape.
//
// Returns:
// - A new grid of the common shape.
// - error if frames is empty or the shapes differ.
//
// @example
// avg, err := average.Mean([]*grid.Grid{a, b, c})
func Mean(frames []*grid.Grid) (*grid.Grid, error) {
	if err := checkFrames(frames); err != nil {
		return nil, err
	}

	out, err := grid.New(frames[0].Shape()...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to allocate mean frame")
	}

	n := float64(len(frames))
	dst := out.Pix()
	for i := range dst {
		var sum float64
		for _, f := range frames {
			sum += float64(f.Pix()[i])
		}
		dst[i] = to8(sum / n)
	}
	return out, nil
}

// SigmaClipped averages frames per pixel after discarding samples further than
// sigma sample standard deviations from that pixel's mean. A pixel whose samples
// are all rejected falls back to the plain mean.
//
// Arguments:
// - frames: One or more grids of identical shape.
// - sigma: Rejection threshold in standard deviations; must be > 0.
//
// Returns:
// - A new grid of the common shape.
// - error for empty input, mismatched shapes or a non-positive sigma.
func SigmaClipped(frames []*grid.Grid, sigma float64) (*grid.Grid, error) {
	if err := checkFrames(frames); err != nil {
		return nil, err
	}
	if !(sigma > 0) {
		return nil, errors.Wrapf(ErrInvalidSigma, "got %v", sigma)
	}
	if len(frames) < 2 {
		return Mean(frames)
	}

	out, err := grid.New(frames[0].Shape()...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to allocate clipped frame")
	}

	samples := make(stats.Float64Data, len(frames))
	kept := make(stats.Float64Data, 0, len(frames))
	dst := out.Pix()
	for i := range dst {
		for k, f := range frames {
			samples[k] = float64(f.Pix()[i])
		}

		mean, err := stats.Mean(samples)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to compute mean at %d", i)
		}
		sd, err := stats.StandardDeviationSample(samples)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to compute deviation at %d", i)
		}

		kept = kept[:0]
		for _, v := range samples {
			if math.Abs(v-mean) <= sigma*sd {
				kept = append(kept, v)
			}
		}
		if len(kept) == 0 {
			dst[i] = to8(mean)
			continue
		}

		clipped, err := stats.Mean(kept)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to compute clipped mean at %d", i)
		}
		dst[i] = to8(clipped)
	}
	return out, nil
}

func checkFrames(frames []*grid.Grid) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	for i, f := range frames {
		if f == nil {
			return errors.Wrapf(grid.ErrInvalidImageShape, "frame %d is nil", i)
		}
		if !f.SameShape(frames[0]) {
			return errors.Wrapf(ErrFrameMismatch, "frame %d has shape %v, want %v", i, f.Shape(), frames[0].Shape())
		}
	}
	return nil
}

func to8(v float64) int32 {
	return int32(math.Max(0, math.Min(255, v)))
}
