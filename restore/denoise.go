package restore

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-mrf/energy"
	"github.com/nvr-ai/go-mrf/grid"
)

// Denoiser restores every pixel of a noisy image with repeated synchronous sweeps
// over an 8-neighbourhood.
type Denoiser struct {
	lambda  float64
	cutoff  float64
	levels  energy.Levels
	workers int
	logger  *slog.Logger
	cfg     DenoiseConfig

	// observed holds the noisy input; it supplies the data term and never changes.
	observed *grid.Grid
	buf      *grid.DoubleBuffer

	iterations int
	changed    int
}

// NewDenoiser validates the input and builds the padded snapshot and working buffer.
//
// Arguments:
// - img: The noisy image, 2D or 3D.
// - cfg: Energy weights, bit depth, border mode and parallelism.
//
// Returns:
// - A Denoiser whose snapshot equals the padded input.
// - error wrapping grid.ErrInvalidImageShape, energy.ErrInvalidBitDepth or
// ErrInvalidParameter. Nothing is allocated when validation fails.
//
// @example
// d, err := restore.NewDenoiser(noisy, restore.DefaultDenoiseConfig())
//
//	for i := 0; i < 5; i++ {
//	    if err := d.Execute(ctx); err != nil {
//	        return err
//	    }
//	}
//
// clean := d.Status()
func NewDenoiser(img *grid.Grid, cfg DenoiseConfig) (*Denoiser, error) {
	if err := validateImage(img); err != nil {
		return nil, err
	}
	if err := validateWeights(cfg.Lambda, cfg.Cutoff); err != nil {
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

	padded, err := grid.Pad(img, grid.DenoisePad, border)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pad image")
	}

	return &Denoiser{
		lambda:   cfg.Lambda,
		cutoff:   cfg.Cutoff,
		levels:   levels,
		workers:  workers,
		logger:   resolveLogger(cfg.Logger),
		cfg:      cfg,
		observed: img.Clone(),
		buf:      grid.NewDoubleBuffer(padded),
	}, nil
}

// Execute runs one full sweep and publishes it. The context is only consulted
// before the sweep starts; a started sweep always completes.
func (d *Denoiser) Execute(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, "denoise sweep cancelled")
	}
	if d.cfg.Profiler != nil {
		defer d.cfg.Profiler.StartOperation("denoise_sweep")()
	}
	start := time.Now()

	front, back := d.buf.Front(), d.buf.Back()
	rows, cols := d.observed.Rows(), d.observed.Cols()
	units := rows * d.observed.Channels()

	var changed atomic.Int64
	parallelFor(units, d.workers, func(from, to int) {
		e := d.levels.Scratch()
		var nbrs [8]int32
		var n int64
		for u := from; u < to; u++ {
			ch, r := u/rows, u%rows
			for c := 0; c < cols; c++ {
				front.Neighbors8(r, c, ch, &nbrs)
				energy.Denoise(e, d.observed.At(r, c, ch), &nbrs, d.lambda, d.cutoff)
				v := int32(energy.Argmin(e))
				if v != front.At(r, c, ch) {
					n++
				}
				back.Set(r, c, ch, v)
			}
		}
		changed.Add(n)
	})
	d.buf.Swap()

	d.iterations++
	d.changed = int(changed.Load())
	if d.cfg.Profiler != nil {
		d.cfg.Profiler.RecordMetric("denoise_changed_pixels", float64(d.changed))
	}
	d.logger.Debug("denoise sweep complete",
		slog.Int("iteration", d.iterations),
		slog.Int("changed", d.changed),
		slog.Duration("elapsed", time.Since(start)))

	return nil
}

// Status returns a copy of the current estimate without padding. Before the first
// sweep it equals the input.
func (d *Denoiser) Status() *grid.Grid {
	return d.buf.Front().Unpad()
}

// Iterations returns the number of completed sweeps.
func (d *Denoiser) Iterations() int { return d.iterations }

// Changed returns how many values the last sweep modified.
func (d *Denoiser) Changed() int { return d.changed }

// Levels returns the candidate level set.
func (d *Denoiser) Levels() energy.Levels { return d.levels }
