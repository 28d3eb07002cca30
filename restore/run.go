package restore

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-mrf/grid"
	"github.com/nvr-ai/go-mrf/profiler"
)

// Options configures a complete Denoise or Inpaint run.
type Options struct {
	// Iterations is the number of sweeps.
	Iterations int `json:"iterations" yaml:"iterations"`
	// Lambda weights smoothness; ignored by Inpaint.
	Lambda float64 `json:"lambda" yaml:"lambda"`
	// Cutoff truncates the quadratic neighbour penalty.
	Cutoff float64 `json:"cutoff" yaml:"cutoff"`
	// Bit is the colour depth.
	Bit int `json:"bit" yaml:"bit"`
	// Border selects the padding mode.
	Border grid.BorderMode `json:"border" yaml:"border"`
	// Workers bounds sweep parallelism. Zero means GOMAXPROCS.
	Workers int `json:"workers" yaml:"workers"`
	// Seed initialises inpainting seeds.
	Seed uint64 `json:"seed" yaml:"seed"`
	// Surplus keeps every intermediate image in Result.History.
	Surplus bool `json:"surplus" yaml:"surplus"`
	// Progress, when set, observes a copy of the estimate after each sweep.
	Progress func(iteration int, estimate *grid.Grid) `json:"-" yaml:"-"`
	// Logger receives per-sweep debug records.
	Logger *slog.Logger `json:"-" yaml:"-"`
	// Profiler records sweep timings.
	Profiler *profiler.RuntimeProfiler `json:"-" yaml:"-"`
}

// DefaultOptions returns one sweep, lambda 1, cutoff 2000, 8-bit levels.
func DefaultOptions() Options {
	return Options{
		Iterations: 1,
		Lambda:     DefaultLambda,
		Cutoff:     DefaultRunCutoff,
		Bit:        DefaultBit,
		Border:     grid.BorderZero,
		Seed:       1,
	}
}

// Result holds the outcome of a run.
type Result struct {
	// Final is the estimate after the last sweep.
	Final *grid.Grid
	// History is the input followed by one estimate per sweep, only with Surplus.
	History []*grid.Grid
}

// engine is the sweep contract shared by Denoiser and Inpainter.
type engine interface {
	Execute(ctx context.Context) error
	Status() *grid.Grid
}

// Denoise runs opts.Iterations denoising sweeps over img.
//
// Arguments:
// - ctx: Checked between sweeps.
// - img: The noisy image, 2D or 3D.
// - opts: Run options; see DefaultOptions.
//
// Returns:
// - The final estimate and, with Surplus, the full history.
// - error if validation fails or ctx is cancelled between sweeps.
//
// @example
// opts := restore.DefaultOptions()
// opts.Iterations = 5
// res, err := restore.Denoise(ctx, noisy, opts)
func Denoise(ctx context.Context, img *grid.Grid, opts Options) (*Result, error) {
	if opts.Iterations < 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "iterations must be >= 0, got %d", opts.Iterations)
	}
	d, err := NewDenoiser(img, DenoiseConfig{
		Lambda:   opts.Lambda,
		Cutoff:   opts.Cutoff,
		Bit:      opts.Bit,
		Border:   opts.Border,
		Workers:  opts.Workers,
		Logger:   opts.Logger,
		Profiler: opts.Profiler,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialise denoiser")
	}
	return run(ctx, d, img, opts)
}

// Inpaint runs opts.Iterations inpainting sweeps over the masked pixels of img.
func Inpaint(ctx context.Context, img, mask *grid.Grid, opts Options) (*Result, error) {
	if opts.Iterations < 0 {
		return nil, errors.Wrapf(ErrInvalidParameter, "iterations must be >= 0, got %d", opts.Iterations)
	}
	in, err := NewInpainter(img, mask, InpaintConfig{
		Cutoff:   opts.Cutoff,
		Bit:      opts.Bit,
		Border:   opts.Border,
		Workers:  opts.Workers,
		Seed:     opts.Seed,
		Logger:   opts.Logger,
		Profiler: opts.Profiler,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialise inpainter")
	}
	return run(ctx, in, img, opts)
}

func run(ctx context.Context, e engine, input *grid.Grid, opts Options) (*Result, error) {
	res := &Result{}
	if opts.Surplus {
		res.History = make([]*grid.Grid, 0, opts.Iterations+1)
		res.History = append(res.History, input.Clone())
	}

	for i := 1; i <= opts.Iterations; i++ {
		if err := e.Execute(ctx); err != nil {
			return nil, errors.Wrapf(err, "sweep %d", i)
		}
		if opts.Surplus {
			res.History = append(res.History, e.Status())
		}
		if opts.Progress != nil {
			opts.Progress(i, e.Status())
		}
	}

	res.Final = e.Status()
	return res, nil
}
