package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sarchlab/rewind/datapath"
)

// write is one --write flag value.
type write struct {
	path  string
	value datapath.Value
	frame uint32
}

// parseWrite parses "path=value@frame".
func parseWrite(s string) (write, error) {
	at := strings.LastIndex(s, "@")
	if at < 0 {
		return write{}, fmt.Errorf("write %q: missing @frame", s)
	}
	eq := strings.Index(s[:at], "=")
	if eq <= 0 {
		return write{}, fmt.Errorf("write %q: missing path=value", s)
	}

	value, err := strconv.ParseInt(s[eq+1:at], 0, 64)
	if err != nil {
		return write{}, fmt.Errorf("write %q: bad value: %w", s, err)
	}
	frame, err := strconv.ParseUint(s[at+1:], 10, 32)
	if err != nil {
		return write{}, fmt.Errorf("write %q: bad frame: %w", s, err)
	}

	return write{
		path:  s[:eq],
		value: datapath.Value(value),
		frame: uint32(frame),
	}, nil
}

func newReadCmd(a *app) *cobra.Command {
	var (
		patternPath string
		frame       uint32
		paths       []string
		writes      []string
		hotspot     uint32
	)

	cmd := &cobra.Command{
		Use:   "read",
		Short: "Read paths at a frame, optionally after edits",
		Example: `  rewind read --frame 200 --path population
  rewind read --pattern glider.rle --frame 90 --path player.pos.x --write pad.stick_x=1@10`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			parsed := make([]write, 0, len(writes))
			for _, w := range writes {
				p, err := parseWrite(w)
				if err != nil {
					return err
				}
				parsed = append(parsed, p)
			}

			pattern, err := a.pattern(patternPath)
			if err != nil {
				return err
			}

			s, _, err := a.newSession(pattern)
			if err != nil {
				return err
			}

			for _, w := range parsed {
				if err := s.Write(w.frame, w.path, w.value); err != nil {
					return err
				}
			}

			if cmd.Flags().Changed("hotspot") {
				s.SetHotspot("cli", hotspot)
				completed, err := s.BalanceDistribution(a.config.BalanceBudget)
				if err != nil {
					return err
				}
				a.logger.Info("Balanced slots",
					"hotspot", hotspot, "completed", completed,
					"loaded", s.LoadedFrames())
			}

			out := cmd.OutOrStdout()
			for _, path := range paths {
				value, err := s.Read(frame, path)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintf(out, "%s@%d = %d\n", path, frame, value)
			}

			stats := s.TimelineStats()
			a.logger.Info("Read complete",
				"advances", stats.Advances, "copies", stats.Copies)

			return nil
		},
	}

	cmd.Flags().StringVar(&patternPath, "pattern", "", "pattern file (.rle, .cells); default R-pentomino")
	cmd.Flags().Uint32Var(&frame, "frame", 0, "frame to read")
	cmd.Flags().StringArrayVar(&paths, "path", nil, "path to read (repeatable)")
	cmd.Flags().StringArrayVar(&writes, "write", nil, "edit as path=value@frame (repeatable)")
	cmd.Flags().Uint32Var(&hotspot, "hotspot", 0, "balance slots around this frame before reading")
	_ = cmd.MarkFlagRequired("path")

	return cmd
}
