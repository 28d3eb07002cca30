// Package noise corrupts grids with synthetic noise for restoration experiments.
//
// Every generator returns a new grid of the input's shape with values clipped to
// [0,255] and truncated toward zero. Every generator requires a caller-seeded
// source so runs are reproducible.
package noise

import (
	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/nvr-ai/go-mrf/grid"
)

// ErrInvalidNoiseParameter is returned for out-of-range generator parameters.
var ErrInvalidNoiseParameter = errors.New("invalid noise parameter")

// Salt and pepper levels.
const (
	Pepper int32 = 0
	Salt   int32 = 255
)

// Gaussian adds independent N(mean, sd) noise to every sample.
//
// Arguments:
// - g: The clean grid.
// - mean: Noise mean.
// - sd: Noise standard deviation; must be >= 0.
// - src: Random source.
//
// Returns:
// - The corrupted grid.
// - error if g or src is nil, or sd is negative.
//
// @example
// noisy, err := noise.Gaussian(clean, 0, 20, rand.NewSource(1))
func Gaussian(g *grid.Grid, mean, sd float64, src rand.Source) (*grid.Grid, error) {
	if err := check(g, src); err != nil {
		return nil, err
	}
	if sd < 0 {
		return nil, errors.Wrapf(ErrInvalidNoiseParameter, "standard deviation must be >= 0, got %v", sd)
	}
	return perSample(g, distuv.Normal{Mu: mean, Sigma: sd, Src: src}), nil
}

// Poisson approximates shot noise with a Gaussian of mean a and deviation a.
func Poisson(g *grid.Grid, a float64, src rand.Source) (*grid.Grid, error) {
	if err := check(g, src); err != nil {
		return nil, err
	}
	if a < 0 {
		return nil, errors.Wrapf(ErrInvalidNoiseParameter, "amount must be >= 0, got %v", a)
	}
	return perSample(g, distuv.Normal{Mu: a, Sigma: a, Src: src}), nil
}

// Uniform adds zero-mean noise drawn from [-amp, amp). One draw is made per
// spatial position and shared by all its channels.
func Uniform(g *grid.Grid, amp float64, src rand.Source) (*grid.Grid, error) {
	if err := check(g, src); err != nil {
		return nil, err
	}
	if amp < 0 {
		return nil, errors.Wrapf(ErrInvalidNoiseParameter, "amplitude must be >= 0, got %v", amp)
	}

	out := g.Clone()
	if amp == 0 {
		return out, nil
	}

	dist := distuv.Uniform{Min: -amp, Max: amp, Src: src}
	pix, ch := out.Pix(), out.Channels()
	for i := 0; i < len(pix); i += ch {
		n := float32(dist.Rand())
		for k := i; k < i+ch; k++ {
			pix[k] = clip(float32(pix[k]) + n)
		}
	}
	return out, nil
}

// SaltPepper replaces a fraction of spatial positions with pepper (0) or salt
// (255) across all channels.
//
// Arguments:
// - g: The clean grid.
// - fraction: Share of positions corrupted, in [0,1].
// - pepper: Share of corrupted positions set to pepper, in [0,1]; the rest are salt.
// - src: Random source.
//
// Returns:
// - The corrupted grid.
// - error if g or src is nil, or a fraction lies outside [0,1].
func SaltPepper(g *grid.Grid, fraction, pepper float64, src rand.Source) (*grid.Grid, error) {
	if err := check(g, src); err != nil {
		return nil, err
	}
	if !(fraction >= 0 && fraction <= 1) || !(pepper >= 0 && pepper <= 1) {
		return nil, errors.Wrapf(ErrInvalidNoiseParameter,
			"noise and pepper fractions must lie within 0 and 1, got %v and %v", fraction, pepper)
	}

	// Outcome 0 is pepper, 1 is salt, 2 leaves the pixel alone.
	token := distuv.NewCategorical([]float64{fraction * pepper, fraction * (1 - pepper), 1 - fraction}, src)

	out := g.Clone()
	pix, ch := out.Pix(), out.Channels()
	for i := 0; i < len(pix); i += ch {
		var v int32
		switch int(token.Rand()) {
		case 0:
			v = Pepper
		case 1:
			v = Salt
		default:
			continue
		}
		for k := i; k < i+ch; k++ {
			pix[k] = v
		}
	}
	return out, nil
}

func perSample(g *grid.Grid, dist distuv.Normal) *grid.Grid {
	out := g.Clone()
	pix := out.Pix()
	for i, v := range pix {
		pix[i] = clip(float32(v) + float32(dist.Rand()))
	}
	return out
}

func clip(v float32) int32 {
	return int32(math32.Trunc(math32.Max(0, math32.Min(255, v))))
}

func check(g *grid.Grid, src rand.Source) error {
	if g == nil {
		return errors.Wrap(grid.ErrInvalidImageShape, "image is nil")
	}
	if src == nil {
		return errors.Wrap(ErrInvalidNoiseParameter, "random source is nil")
	}
	return nil
}
