// Package config holds the tunable parameters of a rewind session.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sarchlab/rewind/emu"
	"github.com/sarchlab/rewind/timeline"
	"github.com/sarchlab/rewind/valuecache"
)

// Config holds the parameters of the snapshot pool, the value cache and
// the sandbox world.
type Config struct {
	// BackupSlots is the maximum number of backup slots. Default: 30.
	BackupSlots int `yaml:"backup_slots"`

	// CacheFrames is the number of frames kept by the value cache.
	// Default: 100.
	CacheFrames int `yaml:"cache_frames"`

	// HotPaths is the number of recently read paths preloaded into new
	// frames. Default: 100.
	HotPaths int `yaml:"hot_paths"`

	// BalanceBudget bounds one BalanceDistribution call. Default: 20ms.
	BalanceBudget time.Duration `yaml:"balance_budget"`

	// Alignments is the ladder backups are placed on below each hotspot.
	Alignments []uint32 `yaml:"alignments"`

	// World configures the sandbox host.
	World WorldConfig `yaml:"world"`

	// LogLevel is one of debug, info, warn or error. Default: info.
	LogLevel string `yaml:"log_level"`
}

// WorldConfig configures the sandbox host.
type WorldConfig struct {
	// Width and Height size the Life grid. Default: 64x48.
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	// Seed initializes the random generator. Zero picks the default seed.
	Seed uint32 `yaml:"seed"`

	// SpawnPeriod is the one-in-n chance per frame of a random cell.
	// Zero disables spawning. Default: 64.
	SpawnPeriod uint32 `yaml:"spawn_period"`

	// MaxFrames makes steps past this frame fail. Zero means no limit.
	MaxFrames uint32 `yaml:"max_frames"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		BackupSlots:   timeline.DefaultBackupSlots,
		CacheFrames:   valuecache.DefaultConfig().Frames,
		HotPaths:      valuecache.DefaultConfig().HotPaths,
		BalanceBudget: 20 * time.Millisecond,
		Alignments:    append([]uint32(nil), timeline.DefaultAlignments...),
		World: WorldConfig{
			Width:       64,
			Height:      48,
			SpawnPeriod: emu.DefaultSpawnPeriod,
		},
		LogLevel: "info",
	}
}

// LoadConfig loads a Config from a YAML file. Fields missing from the file
// keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes the Config to a YAML file.
func (c *Config) SaveConfig(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that all values are usable.
func (c *Config) Validate() error {
	if c.BackupSlots < 0 {
		return fmt.Errorf("backup_slots must be >= 0")
	}
	if c.CacheFrames <= 0 {
		return fmt.Errorf("cache_frames must be > 0")
	}
	if c.HotPaths <= 0 {
		return fmt.Errorf("hot_paths must be > 0")
	}
	if c.BalanceBudget < 0 {
		return fmt.Errorf("balance_budget must be >= 0")
	}
	for _, a := range c.Alignments {
		if a == 0 {
			return fmt.Errorf("alignments must be > 0")
		}
	}
	if c.World.Width <= 0 || c.World.Height <= 0 {
		return fmt.Errorf("world width and height must be > 0")
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// Clone returns a deep copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	clone.Alignments = append([]uint32(nil), c.Alignments...)
	return &clone
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.LogLevel))); err != nil {
		return 0, fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return level, nil
}

// TimelineOptions returns the timeline options described by the Config.
func (c *Config) TimelineOptions() []timeline.Option {
	opts := []timeline.Option{timeline.WithBackupSlots(c.BackupSlots)}
	if len(c.Alignments) > 0 {
		opts = append(opts, timeline.WithAlignments(c.Alignments))
	}
	return opts
}

// CacheConfig returns the value cache capacities.
func (c *Config) CacheConfig() valuecache.Config {
	return valuecache.Config{
		Frames:   c.CacheFrames,
		HotPaths: c.HotPaths,
	}
}

// NewMachine builds the sandbox host described by World.
func (c *Config) NewMachine() (*emu.Machine, error) {
	return emu.NewMachine(c.World.Width, c.World.Height,
		emu.WithSeed(c.World.Seed),
		emu.WithSpawnPeriod(c.World.SpawnPeriod),
		emu.WithMaxSteps(c.World.MaxFrames),
	)
}
