// Package restore - Iterative MAP restoration engines for denoising and inpainting.
//
// Each engine keeps a frozen snapshot and a working buffer. A sweep reads only the
// snapshot, writes only the working buffer, and is published by a single swap once
// every pixel is done, so the visiting order inside a sweep never matters.
package restore

import (
	"log/slog"
	"math"
	"runtime"

	"github.com/pkg/errors"

	"github.com/nvr-ai/go-mrf/grid"
	"github.com/nvr-ai/go-mrf/profiler"
)

// ErrInvalidParameter is returned for negative or non-finite weights, negative
// iteration or worker counts, and unknown border modes.
var ErrInvalidParameter = errors.New("invalid restoration parameter")

const (
	// DefaultLambda is the default smoothness weight.
	DefaultLambda = 1.0
	// DefaultCutoff is the default truncation for engines built directly.
	DefaultCutoff = 1000.0
	// DefaultRunCutoff is the default truncation for Denoise and Inpaint runs.
	DefaultRunCutoff = 2000.0
	// DefaultBit is the default colour depth.
	DefaultBit = 8
)

// DenoiseConfig configures a Denoiser.
type DenoiseConfig struct {
	// Lambda weights the smoothness term against data fidelity.
	Lambda float64 `json:"lambda" yaml:"lambda"`
	// Cutoff truncates the quadratic neighbour penalty.
	Cutoff float64 `json:"cutoff" yaml:"cutoff"`
	// Bit is the colour depth; candidates are 0 .. 2^Bit-1.
	Bit int `json:"bit" yaml:"bit"`
	// Border selects how the padding around the image is filled.
	Border grid.BorderMode `json:"border" yaml:"border"`
	// Workers bounds sweep parallelism. Zero means GOMAXPROCS.
	Workers int `json:"workers" yaml:"workers"`
	// Logger receives per-sweep debug records. Nil means slog.Default().
	Logger *slog.Logger `json:"-" yaml:"-"`
	// Profiler records sweep timings when set.
	Profiler *profiler.RuntimeProfiler `json:"-" yaml:"-"`
}

// DefaultDenoiseConfig returns lambda 1, cutoff 1000, 8-bit levels and zero padding.
func DefaultDenoiseConfig() DenoiseConfig {
	return DenoiseConfig{
		Lambda: DefaultLambda,
		Cutoff: DefaultCutoff,
		Bit:    DefaultBit,
		Border: grid.BorderZero,
	}
}

// InpaintConfig configures an Inpainter.
type InpaintConfig struct {
	// Cutoff truncates the quadratic neighbour penalty.
	Cutoff float64 `json:"cutoff" yaml:"cutoff"`
	// Bit is the colour depth; seeds and candidates are 0 .. 2^Bit-1.
	Bit int `json:"bit" yaml:"bit"`
	// Border selects how the padding around the image is filled.
	Border grid.BorderMode `json:"border" yaml:"border"`
	// Workers bounds sweep parallelism. Zero means GOMAXPROCS.
	Workers int `json:"workers" yaml:"workers"`
	// Seed initialises the random source for prior seeds when Rand is nil.
	Seed uint64 `json:"seed" yaml:"seed"`
	// Rand overrides the seeded random source.
	Rand Rand `json:"-" yaml:"-"`
	// Logger receives per-sweep debug records. Nil means slog.Default().
	Logger *slog.Logger `json:"-" yaml:"-"`
	// Profiler records sweep timings when set.
	Profiler *profiler.RuntimeProfiler `json:"-" yaml:"-"`
}

// Rand is the random source used to seed missing pixels.
type Rand interface {
	Intn(n int) int
}

// DefaultInpaintConfig returns cutoff 1000, 8-bit levels, zero padding and seed 1.
func DefaultInpaintConfig() InpaintConfig {
	return InpaintConfig{
		Cutoff: DefaultCutoff,
		Bit:    DefaultBit,
		Border: grid.BorderZero,
		Seed:   1,
	}
}

func validateWeights(lambda, cutoff float64) error {
	if lambda < 0 || math.IsNaN(lambda) || math.IsInf(lambda, 0) {
		return errors.Wrapf(ErrInvalidParameter, "lambda must be a finite value >= 0, got %v", lambda)
	}
	if cutoff < 0 || math.IsNaN(cutoff) {
		return errors.Wrapf(ErrInvalidParameter, "cutoff must be >= 0, got %v", cutoff)
	}
	return nil
}

func resolveBorder(mode grid.BorderMode) (grid.BorderMode, error) {
	if mode == "" {
		return grid.BorderZero, nil
	}
	if !mode.Valid() {
		return "", errors.Wrapf(ErrInvalidParameter, "unknown border mode %q", mode)
	}
	return mode, nil
}

func resolveWorkers(workers int) (int, error) {
	if workers < 0 {
		return 0, errors.Wrapf(ErrInvalidParameter, "workers must be >= 0, got %d", workers)
	}
	if workers == 0 {
		return runtime.GOMAXPROCS(0), nil
	}
	return workers, nil
}

func resolveLogger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}

func validateImage(img *grid.Grid) error {
	if img == nil || (img.Dims() != 2 && img.Dims() != 3) {
		return errors.Wrap(grid.ErrInvalidImageShape, "image must be 2D or 3D")
	}
	return nil
}
