package cli

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nvr-ai/go-mrf/display"
	"github.com/nvr-ai/go-mrf/grid"
	"github.com/nvr-ai/go-mrf/images"
	"github.com/nvr-ai/go-mrf/restore"
)

// runFlags are the restoration flags shared by denoise and inpaint. A flag
// overrides the configuration file only when set explicitly.
type runFlags struct {
	iterations int
	lambda     float64
	cutoff     float64
	bit        int
	border     string
	workers    int
	seed       uint64
	channels   int
	historyDir string
	show       bool
}

func (f *runFlags) register(fs *pflag.FlagSet, defaults restore.Options, withLambda, withSeed bool) {
	fs.IntVarP(&f.iterations, "iterations", "n", defaults.Iterations, "Number of sweeps")
	fs.Float64Var(&f.cutoff, "cutoff", defaults.Cutoff, "Truncation of the quadratic neighbour penalty")
	fs.IntVar(&f.bit, "bit", defaults.Bit, "Colour depth; levels are 0..2^bit-1")
	fs.StringVar(&f.border, "border", string(defaults.Border), "Border mode: zero, replicate or mirror")
	fs.IntVarP(&f.workers, "workers", "w", defaults.Workers, "Sweep parallelism, 0 for GOMAXPROCS")
	fs.IntVar(&f.channels, "channels", 1, "Load images as grayscale (1) or RGB (3)")
	fs.StringVar(&f.historyDir, "history-dir", "", "Write the input and every sweep as frame-N.png into this directory")
	fs.BoolVar(&f.show, "show", false, "Show the sweep sequence in a window when done")
	if withLambda {
		fs.Float64VarP(&f.lambda, "lambda", "l", defaults.Lambda, "Smoothness weight")
	}
	if withSeed {
		fs.Uint64Var(&f.seed, "seed", defaults.Seed, "Seed for the initial prior of missing pixels")
	}
}

func (f *runFlags) apply(fs *pflag.FlagSet, opts *restore.Options, channels *int) {
	if fs.Changed("iterations") {
		opts.Iterations = f.iterations
	}
	if fs.Changed("lambda") {
		opts.Lambda = f.lambda
	}
	if fs.Changed("cutoff") {
		opts.Cutoff = f.cutoff
	}
	if fs.Changed("bit") {
		opts.Bit = f.bit
	}
	if fs.Changed("border") {
		opts.Border = grid.BorderMode(f.border)
	}
	if fs.Changed("workers") {
		opts.Workers = f.workers
	}
	if fs.Changed("seed") {
		opts.Seed = f.seed
	}
	if fs.Changed("channels") {
		*channels = f.channels
	}
	opts.Surplus = opts.Surplus || f.historyDir != "" || f.show
}

func (a *app) newDenoiseCommand() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "denoise INPUT OUTPUT",
		Short: "Remove noise by synchronous ICM sweeps over the whole image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, channels := a.cfg.Denoise, a.cfg.Channels
			f.apply(cmd.Flags(), &opts, &channels)

			img, err := images.Load(args[0], channels)
			if err != nil {
				return err
			}

			start := time.Now()
			res, err := restore.Denoise(cmd.Context(), img, opts)
			if err != nil {
				return err
			}
			a.logger.Info("denoised",
				slog.String("input", args[0]),
				slog.Int("iterations", opts.Iterations),
				slog.Duration("elapsed", time.Since(start)))

			return a.finish(cmd, args[1], res, &f)
		},
	}
	f.register(cmd.Flags(), a.cfg.Denoise, true, false)
	return cmd
}

func (a *app) newInpaintCommand() *cobra.Command {
	var f runFlags
	cmd := &cobra.Command{
		Use:   "inpaint INPUT MASK OUTPUT",
		Short: "Fill pixels whose mask value exceeds 200 from their neighbourhood",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, channels := a.cfg.Inpaint, a.cfg.Channels
			f.apply(cmd.Flags(), &opts, &channels)

			img, err := images.Load(args[0], channels)
			if err != nil {
				return err
			}
			mask, err := images.Load(args[1], 1)
			if err != nil {
				return errors.Wrap(err, "failed to load mask")
			}

			start := time.Now()
			res, err := restore.Inpaint(cmd.Context(), img, mask, opts)
			if err != nil {
				return err
			}
			a.logger.Info("inpainted",
				slog.String("input", args[0]),
				slog.Int("iterations", opts.Iterations),
				slog.Duration("elapsed", time.Since(start)))

			return a.finish(cmd, args[2], res, &f)
		},
	}
	f.register(cmd.Flags(), a.cfg.Inpaint, false, true)
	return cmd
}

// finish writes the final image, the optional history and shows the sequence.
func (a *app) finish(cmd *cobra.Command, output string, res *restore.Result, f *runFlags) error {
	if err := images.Save(output, res.Final); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), output)

	if f.historyDir != "" {
		if err := os.MkdirAll(f.historyDir, 0o755); err != nil {
			return errors.Wrap(err, "failed to create history directory")
		}
		for i, step := range res.History {
			if err := images.Save(filepath.Join(f.historyDir, fmt.Sprintf("frame-%d.png", i)), step); err != nil {
				return err
			}
		}
		a.logger.Info("history written", slog.String("dir", f.historyDir), slog.Int("frames", len(res.History)))
	}

	if f.show {
		return display.ShowSequence(cmd.Context(), output, res.History)
	}
	return nil
}
