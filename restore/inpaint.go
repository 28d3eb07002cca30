package restore

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"

	"github.com/nvr-ai/go-mrf/energy"
	"github.com/nvr-ai/go-mrf/grid"
)

// Inpainter fills masked pixels from the robust consensus of their 5x5 window.
// Pixels outside the mask are never written.
type Inpainter struct {
	cutoff  float64
	levels  energy.Levels
	workers int
	logger  *slog.Logger
	cfg     InpaintConfig

	coords   []grid.Coord
	channels int
	seeded   *grid.Grid
	buf      *grid.DoubleBuffer

	iterations int
	changed    int
}

// NewInpainter validates image and mask, derives the mask coordinate list and seeds
// every missing value with a random level.
//
// Arguments:
// - img: The damaged image, 2D or 3D.
// - mask: A 2D grid of the image's spatial shape; values above 200 are missing.
// - cfg: Cutoff, bit depth, border mode, parallelism and random source.
//
// Returns:
// - An Inpainter whose prior is the seeded, padded input.
// - error wrapping grid.ErrInvalidImageShape, grid.ErrInvalidMaskShape,
// grid.ErrMaskMismatch, energy.ErrInvalidBitDepth or ErrInvalidParameter.
func NewInpainter(img, mask *grid.Grid, cfg InpaintConfig) (*Inpainter, error) {
	if err := validateImage(img); err != nil {
		return nil, err
	}
	coords, err := grid.MaskCoords(mask, img.Rows(), img.Cols())
	if err != nil {
		return nil, err
	}
	if err := validateWeights(0, cfg.Cutoff); err != nil {
		return nil, err
	}
	levels, err := energy.NewLevels(cfg.Bit)
	if err != nil {
		return nil, err
	}
	border, err := resolveBorder(cfg.Border)
	if err != nil {
		return nil, err
	}
	workers, err := resolveWorkers(cfg.Workers)
	if err != nil {
		return nil, err
	}

	prior, err := grid.Pad(img, grid.InpaintPad, border)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pad image")
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(cfg.Seed))
	}
	channels := img.Channels()
	for _, pos := range coords {
		for ch := 0; ch < channels; ch++ {
			prior.Set(pos.Row, pos.Col, ch, int32(rng.Intn(levels.Len())))
		}
	}
	prior.RefreshBorder()

	return &Inpainter{
		cutoff:   cfg.Cutoff,
		levels:   levels,
		workers:  workers,
		logger:   resolveLogger(cfg.Logger),
		cfg:      cfg,
		coords:   coords,
		channels: channels,
		seeded:   prior.Unpad(),
		buf:      grid.NewDoubleBuffer(prior),
	}, nil
}

// Execute runs one sweep over the mask coordinate list and publishes it.
func (in *Inpainter) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "inpaint sweep cancelled")
	}
	if in.cfg.Profiler != nil {
		defer in.cfg.Profiler.StartOperation("inpaint_sweep")()
	}
	start := time.Now()

	front, back := in.buf.Front(), in.buf.Back()
	units := len(in.coords) * in.channels

	var changed atomic.Int64
	parallelFor(units, in.workers, func(from, to int) {
		e := in.levels.Scratch()
		var nbrs [grid.InpaintNeighbors]int32
		var n int64
		for u := from; u < to; u++ {
			pos, ch := in.coords[u/in.channels], u%in.channels
			front.Window20(pos.Row, pos.Col, ch, &nbrs)
			energy.Inpaint(e, &nbrs, in.cutoff)
			v := int32(energy.Argmin(e))
			if v != front.At(pos.Row, pos.Col, ch) {
				n++
			}
			back.Set(pos.Row, pos.Col, ch, v)
		}
		changed.Add(n)
	})
	in.buf.Swap()

	in.iterations++
	in.changed = int(changed.Load())
	if in.cfg.Profiler != nil {
		in.cfg.Profiler.RecordMetric("inpaint_changed_pixels", float64(in.changed))
	}
	in.logger.Debug("inpaint sweep complete",
		slog.Int("iteration", in.iterations),
		slog.Int("masked", len(in.coords)),
		slog.Int("changed", in.changed),
		slog.Duration("elapsed", time.Since(start)))

	return nil
}

// Status returns a copy of the current prior without padding.
func (in *Inpainter) Status() *grid.Grid {
	return in.buf.Front().Unpad()
}

// Seeded returns a copy of the prior as it was before the first sweep.
func (in *Inpainter) Seeded() *grid.Grid {
	return in.seeded.Clone()
}

// Coords returns a copy of the mask coordinate list.
func (in *Inpainter) Coords() []grid.Coord {
	out := make([]grid.Coord, len(in.coords))
	copy(out, in.coords)
	return out
}

// Iterations returns the number of completed sweeps.
func (in *Inpainter) Iterations() int { return in.iterations }

// Changed returns how many values the last sweep modified.
func (in *Inpainter) Changed() int { return in.changed }
