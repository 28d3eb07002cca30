package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nvr-ai/go-mrf/benchmark"
)

func (a *app) newBenchCommand() *cobra.Command {
	var (
		full      bool
		workers   []int
		scenarios string
		outputDir string
	)
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Benchmark denoising and inpainting sweeps on synthetic scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			set := benchmark.QuickScenarios()
			switch {
			case scenarios != "":
				loaded, err := benchmark.LoadScenarioSet(scenarios)
				if err != nil {
					return err
				}
				set = loaded
			case full:
				set = benchmark.ComprehensiveScenarios(workers)
			}

			suite := benchmark.NewSuite(outputDir, a.logger)
			suite.AddScenarioSet(set)
			if err := suite.RunAllScenarios(cmd.Context()); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range suite.GetResults() {
				fmt.Fprintf(out, "%-32s %8.2f sweeps/s %8.2f dB -> %6.2f dB\n",
					r.Scenario.Name, r.SweepsPerSecond, r.PSNRBefore, r.PSNRAfter)
			}
			return nil
		},
	}
	fs := cmd.Flags()
	fs.BoolVar(&full, "full", false, "Run the comprehensive scenario set")
	fs.IntSliceVar(&workers, "workers", []int{1, 0}, "Worker counts for the comprehensive set")
	fs.StringVar(&scenarios, "scenarios", "", "Load scenarios from a JSON file")
	fs.StringVarP(&outputDir, "output", "o", "", "Directory for JSON and CSV results")
	return cmd
}
