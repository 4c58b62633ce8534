package main

import (
	"fmt"
	"log/slog"
	"os"
	"runtime/pprof"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/sarchlab/rewind/benchmarks"
	"github.com/sarchlab/rewind/config"
	"github.com/sarchlab/rewind/emu"
	"github.com/sarchlab/rewind/loader"
	"github.com/sarchlab/rewind/metrics"
	"github.com/sarchlab/rewind/session"
	"github.com/sarchlab/rewind/timeline"
)

// app holds the state shared by every subcommand.
type app struct {
	configPath  string
	logLevel    string
	cpuProfile  string
	dumpMetrics bool

	config    *config.Config
	logger    *slog.Logger
	registry  *prometheus.Registry
	collector *metrics.Collector
	profile   *os.File
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "rewind",
		Short: "Rewind keeps snapshots of a deterministic simulation.",
		Long: `Rewind keeps a bounded pool of snapshots of a deterministic ` +
			`simulation so that any frame can be read back quickly, even ` +
			`after inputs in the past are edited.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.teardown(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a YAML configuration file")
	flags.StringVar(&a.logLevel, "log-level", "", "override the configured log level (debug, info, warn, error)")
	flags.StringVar(&a.cpuProfile, "cpuprofile", "", "write cpu profile to file")
	flags.BoolVar(&a.dumpMetrics, "metrics", false, "print Prometheus metrics when the command finishes")

	rootCmd.AddCommand(
		newReadCmd(a),
		newScrubCmd(a),
		newBenchCmd(a),
		newConfigCmd(),
	)

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.DefaultConfig()
	if a.configPath != "" {
		loaded, err := config.LoadConfig(a.configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	a.config = cfg

	level, _ := cfg.SlogLevel()
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(),
		&slog.HandlerOptions{Level: level}))

	a.registry = prometheus.NewRegistry()
	a.collector = metrics.NewCollector(a.registry)

	if a.cpuProfile != "" {
		f, err := os.Create(a.cpuProfile)
		if err != nil {
			return fmt.Errorf("failed to create cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to start cpu profile: %w", err)
		}
		a.profile = f
	}

	return nil
}

func (a *app) teardown(cmd *cobra.Command) error {
	if a.profile != nil {
		pprof.StopCPUProfile()
		_ = a.profile.Close()
		a.profile = nil
	}

	if a.dumpMetrics && a.registry != nil {
		return metrics.WriteText(cmd.OutOrStdout(), a.registry)
	}

	return nil
}

// pattern loads the pattern at path, or the R-pentomino when path is empty.
func (a *app) pattern(path string) (*loader.Pattern, error) {
	if path == "" {
		return benchmarks.RPentomino(), nil
	}

	p, err := loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load pattern: %w", err)
	}
	a.logger.Info("Loaded pattern",
		"name", p.Name, "width", p.Width, "height", p.Height,
		"population", p.Population())

	return p, nil
}

// newSession powers on a machine with the pattern and wraps it in a session
// instrumented with the logger and the metrics collector.
func (a *app) newSession(pattern *loader.Pattern) (*session.Session, *emu.Machine, error) {
	machine, err := a.config.NewMachine()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create machine: %w", err)
	}

	powerOn, err := machine.PowerOn(pattern)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to power on: %w", err)
	}

	opts := append(a.config.TimelineOptions(), timeline.WithLogger(a.logger))
	s := session.New(machine, powerOn, machine.Layout(),
		session.WithCacheConfig(a.config.CacheConfig()),
		session.WithTimelineOptions(opts...),
		session.WithHook(a.collector),
	)

	return s, machine, nil
}
