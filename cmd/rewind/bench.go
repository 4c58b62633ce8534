package main

import (
	"github.com/spf13/cobra"

	"github.com/sarchlab/rewind/benchmarks"
)

func newBenchCmd(a *app) *cobra.Command {
	var (
		patternPath string
		csvOutput   bool
		jsonOutput  bool
		quick       bool
		noBalance   bool
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Run the scrub benchmark harness",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pattern, err := a.pattern(patternPath)
			if err != nil {
				return err
			}

			config := benchmarks.DefaultConfig()
			config.Config = a.config
			config.Pattern = pattern
			config.Balance = !noBalance
			config.Output = cmd.OutOrStdout()
			config.Hooks = append(config.Hooks, a.collector)

			harness := benchmarks.NewHarness(config)
			if quick {
				harness.AddScrubs(benchmarks.GetQuickScrubs())
			} else {
				harness.AddScrubs(benchmarks.GetScrubs())
			}

			results := harness.RunAll()

			switch {
			case jsonOutput:
				return harness.PrintJSON(results)
			case csvOutput:
				harness.PrintCSV(results)
			default:
				harness.PrintResults(results)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&patternPath, "pattern", "", "pattern file (.rle, .cells); default R-pentomino")
	cmd.Flags().BoolVar(&csvOutput, "csv", false, "output results in CSV format")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "output results in JSON format")
	cmd.Flags().BoolVar(&quick, "quick", false, "run the short scrubs only")
	cmd.Flags().BoolVar(&noBalance, "no-balance", false, "never balance the snapshot slots")

	return cmd
}
