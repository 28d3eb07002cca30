// Package config - File configuration for the restoration command line.
package config

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/rand"
	"gopkg.in/yaml.v3"

	"github.com/nvr-ai/go-mrf/grid"
	"github.com/nvr-ai/go-mrf/noise"
	"github.com/nvr-ai/go-mrf/profiler"
	"github.com/nvr-ai/go-mrf/restore"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the complete command line configuration.
type Config struct {
	// Channels selects grayscale (1) or RGB (3) loading.
	Channels int `json:"channels" yaml:"channels"`
	// Log configures the slog handler.
	Log LogConfig `json:"log" yaml:"log"`
	// Denoise holds the denoising run options.
	Denoise restore.Options `json:"denoise" yaml:"denoise"`
	// Inpaint holds the inpainting run options.
	Inpaint restore.Options `json:"inpaint" yaml:"inpaint"`
	// Noise configures the synthetic noise generator.
	Noise NoiseConfig `json:"noise" yaml:"noise"`
	// Average configures frame averaging.
	Average AverageConfig `json:"average" yaml:"average"`
	// Profiler configures runtime profiling.
	Profiler ProfilerConfig `json:"profiler" yaml:"profiler"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level"`
	// Format is text or json.
	Format string `json:"format" yaml:"format"`
}

// Noise kinds.
const (
	NoiseGaussian   = "gaussian"
	NoiseUniform    = "uniform"
	NoisePoisson    = "poisson"
	NoiseSaltPepper = "saltpepper"
)

// NoiseConfig configures the noise command.
type NoiseConfig struct {
	Kind     string  `json:"kind" yaml:"kind"`
	Mean     float64 `json:"mean" yaml:"mean"`
	SD       float64 `json:"sd" yaml:"sd"`
	Amp      float64 `json:"amp" yaml:"amp"`
	Amount   float64 `json:"amount" yaml:"amount"`
	Fraction float64 `json:"fraction" yaml:"fraction"`
	Pepper   float64 `json:"pepper" yaml:"pepper"`
	Seed     uint64  `json:"seed" yaml:"seed"`
}

// AverageConfig configures the average command.
type AverageConfig struct {
	// Sigma enables sigma-clipped averaging when > 0.
	Sigma float64 `json:"sigma" yaml:"sigma"`
}

// ProfilerConfig configures runtime profiling.
type ProfilerConfig struct {
	Enabled bool                      `json:"enabled" yaml:"enabled"`
	Options profiler.ProfilingOptions `json:"options" yaml:"options"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Channels: 1,
		Log:      LogConfig{Level: "info", Format: "text"},
		Denoise:  restore.DefaultOptions(),
		Inpaint:  restore.DefaultOptions(),
		Noise: NoiseConfig{
			Kind:     NoiseGaussian,
			SD:       20,
			Amp:      10,
			Amount:   20,
			Fraction: 0.2,
			Pepper:   0.5,
			Seed:     1,
		},
	}
}

// Load reads a YAML file over Default. An empty path returns Default.
//
// Arguments:
// - path: The YAML file to read, or "".
//
// Returns:
// - The merged, validated configuration.
// - error if the file cannot be read, parsed or validated.
//
// @example
// cfg, err := config.Load("mrf.yaml")
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "failed to read config file")
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, errors.Wrapf(err, "failed to parse %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the fields the command line cannot pass through to the engines
// unchecked.
func (c Config) Validate() error {
	if c.Channels != 1 && c.Channels != 3 {
		return errors.Wrapf(ErrInvalidConfig, "channels must be 1 or 3, got %d", c.Channels)
	}
	if _, err := c.Log.level(); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown log format %q", c.Log.Format)
	}
	for name, b := range map[string]grid.BorderMode{"denoise": c.Denoise.Border, "inpaint": c.Inpaint.Border} {
		if b != "" && !b.Valid() {
			return errors.Wrapf(ErrInvalidConfig, "unknown %s border %q", name, b)
		}
	}
	switch c.Noise.Kind {
	case NoiseGaussian, NoiseUniform, NoisePoisson, NoiseSaltPepper:
	default:
		return errors.Wrapf(ErrInvalidConfig, "unknown noise kind %q", c.Noise.Kind)
	}
	if c.Average.Sigma < 0 {
		return errors.Wrapf(ErrInvalidConfig, "average sigma must be >= 0, got %v", c.Average.Sigma)
	}
	return nil
}

// NewLogger builds a slog logger writing to w.
func (l LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := l.level()
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func (l LogConfig) level() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, errors.Wrapf(ErrInvalidConfig, "unknown log level %q", l.Level)
	}
	return level, nil
}

// Apply runs the configured noise generator.
func (n NoiseConfig) Apply(g *grid.Grid, src rand.Source) (*grid.Grid, error) {
	switch n.Kind {
	case NoiseGaussian:
		return noise.Gaussian(g, n.Mean, n.SD, src)
	case NoiseUniform:
		return noise.Uniform(g, n.Amp, src)
	case NoisePoisson:
		return noise.Poisson(g, n.Amount, src)
	case NoiseSaltPepper:
		return noise.SaltPepper(g, n.Fraction, n.Pepper, src)
	default:
		return nil, errors.Wrapf(ErrInvalidConfig, "unknown noise kind %q", n.Kind)
	}
}
