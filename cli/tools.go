package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/exp/rand"

	"github.com/nvr-ai/go-mrf/average"
	"github.com/nvr-ai/go-mrf/config"
	"github.com/nvr-ai/go-mrf/display"
	"github.com/nvr-ai/go-mrf/grid"
	"github.com/nvr-ai/go-mrf/images"
	"github.com/nvr-ai/go-mrf/metrics"
	"github.com/nvr-ai/go-mrf/util"
)

// loadFrames reads frames from explicit files, or from the single directory
// given as the only path.
func loadFrames(paths []string, channels int) ([]*grid.Grid, error) {
	if len(paths) == 1 {
		if info, err := os.Stat(paths[0]); err == nil && info.IsDir() {
			return util.LoadDirectoryFrames(paths[0], channels)
		}
	}

	frames := make([]*grid.Grid, 0, len(paths))
	for _, p := range paths {
		g, err := images.Load(p, channels)
		if err != nil {
			return nil, err
		}
		frames = append(frames, g)
	}
	return frames, nil
}

func (a *app) newAverageCommand() *cobra.Command {
	var (
		sigma    float64
		channels int
	)
	cmd := &cobra.Command{
		Use:   "average OUTPUT (DIR | FRAME...)",
		Short: "Average repeated exposures, optionally rejecting outliers per pixel",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("sigma") {
				a.cfg.Average.Sigma = sigma
			}
			if cmd.Flags().Changed("channels") {
				a.cfg.Channels = channels
			}

			frames, err := loadFrames(args[1:], a.cfg.Channels)
			if err != nil {
				return err
			}

			var out *grid.Grid
			if a.cfg.Average.Sigma > 0 {
				out, err = average.SigmaClipped(frames, a.cfg.Average.Sigma)
			} else {
				out, err = average.Mean(frames)
			}
			if err != nil {
				return err
			}
			a.logger.Info("averaged", slog.Int("frames", len(frames)), slog.Float64("sigma", a.cfg.Average.Sigma))

			if err := images.Save(args[0], out); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), args[0])
			return nil
		},
	}
	cmd.Flags().Float64Var(&sigma, "sigma", 0, "Reject samples beyond this many standard deviations (0 disables)")
	cmd.Flags().IntVar(&channels, "channels", 1, "Load images as grayscale (1) or RGB (3)")
	return cmd
}

func (a *app) newNoiseCommand() *cobra.Command {
	var (
		n        config.NoiseConfig
		channels int
	)
	defaults := config.Default().Noise
	cmd := &cobra.Command{
		Use:   "noise INPUT OUTPUT",
		Short: "Corrupt an image with gaussian, uniform, poisson or saltpepper noise",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Noise
			fs := cmd.Flags()
			if fs.Changed("kind") {
				cfg.Kind = n.Kind
			}
			if fs.Changed("mean") {
				cfg.Mean = n.Mean
			}
			if fs.Changed("sd") {
				cfg.SD = n.SD
			}
			if fs.Changed("amp") {
				cfg.Amp = n.Amp
			}
			if fs.Changed("amount") {
				cfg.Amount = n.Amount
			}
			if fs.Changed("fraction") {
				cfg.Fraction = n.Fraction
			}
			if fs.Changed("pepper") {
				cfg.Pepper = n.Pepper
			}
			if fs.Changed("seed") {
				cfg.Seed = n.Seed
			}
			if fs.Changed("channels") {
				a.cfg.Channels = channels
			}

			img, err := images.Load(args[0], a.cfg.Channels)
			if err != nil {
				return err
			}
			noisy, err := cfg.Apply(img, rand.NewSource(cfg.Seed))
			if err != nil {
				return err
			}
			if err := images.Save(args[1], noisy); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), args[1])
			return nil
		},
	}
	fs := cmd.Flags()
	fs.StringVar(&n.Kind, "kind", defaults.Kind, "Noise kind: gaussian, uniform, poisson or saltpepper")
	fs.Float64Var(&n.Mean, "mean", defaults.Mean, "Gaussian mean")
	fs.Float64Var(&n.SD, "sd", defaults.SD, "Gaussian standard deviation")
	fs.Float64Var(&n.Amp, "amp", defaults.Amp, "Uniform amplitude")
	fs.Float64Var(&n.Amount, "amount", defaults.Amount, "Poisson amount")
	fs.Float64Var(&n.Fraction, "fraction", defaults.Fraction, "Share of pixels hit by salt and pepper")
	fs.Float64Var(&n.Pepper, "pepper", defaults.Pepper, "Share of salt and pepper hits that are pepper")
	fs.Uint64Var(&n.Seed, "seed", defaults.Seed, "Random seed")
	fs.IntVar(&channels, "channels", 1, "Load images as grayscale (1) or RGB (3)")
	return cmd
}

func (a *app) newPSNRCommand() *cobra.Command {
	var channels int
	cmd := &cobra.Command{
		Use:   "psnr IMAGE REFERENCE",
		Short: "Print the peak signal-to-noise ratio of IMAGE against REFERENCE in dB",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			im, err := images.Load(args[0], channels)
			if err != nil {
				return err
			}
			truth, err := images.Load(args[1], channels)
			if err != nil {
				return err
			}
			psnr, err := metrics.PSNR(im, truth)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%.4f\n", psnr)
			return nil
		},
	}
	cmd.Flags().IntVar(&channels, "channels", 1, "Compare as grayscale (1) or RGB (3)")
	return cmd
}

func (a *app) newShowCommand() *cobra.Command {
	var channels int
	cmd := &cobra.Command{
		Use:   "show (DIR | IMAGE...)",
		Short: "Show images in a window; several images get a frame trackbar",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			frames, err := loadFrames(args, channels)
			if err != nil {
				return err
			}
			if len(frames) == 0 {
				return errors.Wrap(display.ErrNoFrames, "nothing to show")
			}
			return display.ShowSequence(cmd.Context(), args[0], frames)
		},
	}
	cmd.Flags().IntVar(&channels, "channels", 3, "Show as grayscale (1) or RGB (3)")
	return cmd
}
