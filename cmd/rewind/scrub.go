package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newScrubCmd(a *app) *cobra.Command {
	var (
		patternPath string
		path        string
		hotspot     uint32
		window      uint32
		passes      int
	)

	cmd := &cobra.Command{
		Use:   "scrub",
		Short: "Sweep a window around a hotspot several times",
		Long: `Scrub reads every frame of [hotspot-window, hotspot+window] from last ` +
			`to first, balancing the snapshot slots around the hotspot before each ` +
			`pass, and reports the replay work each pass needed.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if passes <= 0 {
				return fmt.Errorf("passes must be > 0")
			}

			pattern, err := a.pattern(patternPath)
			if err != nil {
				return err
			}

			s, _, err := a.newSession(pattern)
			if err != nil {
				return err
			}
			s.SetHotspot("scrub", hotspot)

			first := hotspot - min(hotspot, window)
			last := hotspot + window
			out := cmd.OutOrStdout()

			_, _ = fmt.Fprintln(out, "pass,reads,advances,copies,balanced")
			for pass := 0; pass < passes; pass++ {
				completed, err := s.BalanceDistribution(a.config.BalanceBudget)
				if err != nil {
					return err
				}

				before := s.TimelineStats()
				reads := 0
				for f := last + 1; f > first; f-- {
					if _, err := s.Read(f-1, path); err != nil {
						return err
					}
					reads++
				}
				after := s.TimelineStats()

				_, _ = fmt.Fprintf(out, "%d,%d,%d,%d,%t\n",
					pass, reads,
					after.Advances-before.Advances,
					after.Copies-before.Copies,
					completed)
			}

			a.logger.Info("Scrub complete", "loaded", s.LoadedFrames())

			return nil
		},
	}

	cmd.Flags().StringVar(&patternPath, "pattern", "", "pattern file (.rle, .cells); default R-pentomino")
	cmd.Flags().StringVar(&path, "path", "population", "path read at every frame")
	cmd.Flags().Uint32Var(&hotspot, "hotspot", 300, "frame the sweep is centered on")
	cmd.Flags().Uint32Var(&window, "window", 30, "frames swept on each side of the hotspot")
	cmd.Flags().IntVar(&passes, "passes", 3, "number of sweeps")

	return cmd
}
