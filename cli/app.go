// Package cli - Command line interface for the restoration engines.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-mrf/config"
	"github.com/nvr-ai/go-mrf/profiler"
)

// app holds the state shared by every subcommand.
type app struct {
	configPath string
	verbose    bool

	cfg      config.Config
	logger   *slog.Logger
	profiler *profiler.RuntimeProfiler

	stdout io.Writer
	stderr io.Writer
}

// NewRootCommand builds the mrf command tree writing to stdout and stderr.
//
// Arguments:
// - stdout: Receives command results.
// - stderr: Receives log records.
//
// Returns:
// - The root command with all subcommands attached.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	a := &app{cfg: config.Default(), stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:           "mrf",
		Short:         "Restore images with discrete Markov random field energy minimisation",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Log per-sweep debug records")

	root.AddCommand(
		a.newDenoiseCommand(),
		a.newInpaintCommand(),
		a.newAverageCommand(),
		a.newNoiseCommand(),
		a.newPSNRCommand(),
		a.newShowCommand(),
		a.newBenchCommand(),
	)
	for _, cmd := range root.Commands() {
		a.withTeardown(cmd)
	}
	return root
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context) int {
	root := NewRootCommand(os.Stdout, os.Stderr)
	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error("command failed", slog.Any("error", err))
		return 1
	}
	return 0
}

func (a *app) setup() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.Log.Level = "debug"
	}

	logger, err := cfg.Log.NewLogger(a.stderr)
	if err != nil {
		return errors.Wrap(err, "failed to build logger")
	}
	slog.SetDefault(logger)

	a.cfg = cfg
	a.logger = logger
	a.cfg.Denoise.Logger = logger
	a.cfg.Inpaint.Logger = logger

	if cfg.Profiler.Enabled {
		opts := cfg.Profiler.Options
		opts.Logger = logger
		a.profiler = profiler.NewRuntimeProfiler(opts)
		a.profiler.Start()
		a.cfg.Denoise.Profiler = a.profiler
		a.cfg.Inpaint.Profiler = a.profiler
	}
	return nil
}

// withTeardown stops the profiler once cmd returns, including on error, where
// cobra skips post-run hooks.
func (a *app) withTeardown(cmd *cobra.Command) {
	run := cmd.RunE
	if run == nil {
		return
	}
	cmd.RunE = func(c *cobra.Command, args []string) error {
		defer a.teardown()
		return run(c, args)
	}
}

func (a *app) teardown() {
	if a.profiler == nil {
		return
	}
	a.profiler.Stop()
	a.profiler.EmitStatusReport()
	a.profiler = nil
}
