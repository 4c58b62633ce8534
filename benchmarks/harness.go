// Package benchmarks provides scrubbing workloads that measure how much
// replay work a timeline needs to serve typical access patterns.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/rewind/config"
	"github.com/sarchlab/rewind/datapath"
	"github.com/sarchlab/rewind/loader"
	"github.com/sarchlab/rewind/session"
)

// ScrubResult holds the results of a single scrub run.
type ScrubResult struct {
	// Name identifies the scrub
	Name string `json:"name"`

	// Description explains the access pattern
	Description string `json:"description"`

	// Reads is the number of frame reads issued
	Reads int `json:"reads"`

	// Edits is the number of edits made during the run
	Edits int `json:"edits"`

	// Advances is the number of host steps run, balancing included
	Advances uint64 `json:"advances"`

	// Copies is the number of whole-slot copies
	Copies uint64 `json:"copies"`

	// SlotHits is the number of frame requests served without work
	SlotHits uint64 `json:"slot_hits"`

	// CacheHits/Misses of the value cache
	CacheHits   uint64 `json:"cache_hits"`
	CacheMisses uint64 `json:"cache_misses"`

	// BalancePasses is the number of BalanceDistribution calls
	BalancePasses int `json:"balance_passes"`

	// BalanceCompleted is the number of passes that placed every target
	BalanceCompleted int `json:"balance_completed"`

	// AdvancesPerRead is the average replay cost of a read
	AdvancesPerRead float64 `json:"advances_per_read"`

	// Error is set if the run stopped early
	Error string `json:"error,omitempty"`

	// WallTime is the actual time taken by the run
	WallTime time.Duration `json:"wall_time_ns"`
}

// Scrub defines a scripted sequence of reads and edits.
type Scrub struct {
	// Name identifies the scrub
	Name string

	// Description explains the access pattern
	Description string

	// Frames is the sequence of frames read
	Frames []uint32

	// Path is read at every frame
	Path string

	// EditEvery makes every n-th read edit EditPath EditBack frames before
	// the cursor first. Zero disables edits.
	EditEvery int
	EditBack  uint32
	EditPath  string
}

// HarnessConfig configures the scrub harness.
type HarnessConfig struct {
	// Config sizes the world, the slot pool and the value cache
	Config *config.Config

	// Pattern is placed on the grid at power-on
	Pattern *loader.Pattern

	// Balance moves a "cursor" hotspot to every frame read and balances
	// after each read
	Balance bool

	// Hooks are attached to every timeline
	Hooks []sim.Hook

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables per-scrub progress output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Config:  config.DefaultConfig(),
		Pattern: RPentomino(),
		Balance: true,
		Output:  os.Stdout,
	}
}

// RPentomino returns the R-pentomino, a small pattern that stays busy for
// over a thousand generations.
func RPentomino() *loader.Pattern {
	return &loader.Pattern{
		Name:   "r-pentomino",
		Width:  3,
		Height: 3,
		Cells: []loader.Cell{
			{X: 1, Y: 0}, {X: 2, Y: 0},
			{X: 0, Y: 1}, {X: 1, Y: 1},
			{X: 1, Y: 2},
		},
	}
}

// Harness runs scrubs and reports results.
type Harness struct {
	config HarnessConfig
	scrubs []Scrub
}

// NewHarness creates a new scrub harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Config == nil {
		config.Config = DefaultConfig().Config
	}
	return &Harness{
		config: config,
		scrubs: []Scrub{},
	}
}

// AddScrub adds a scrub to the harness.
func (h *Harness) AddScrub(s Scrub) {
	h.scrubs = append(h.scrubs, s)
}

// AddScrubs adds multiple scrubs to the harness.
func (h *Harness) AddScrubs(scrubs []Scrub) {
	h.scrubs = append(h.scrubs, scrubs...)
}

// RunAll executes all scrubs and returns results.
func (h *Harness) RunAll() []ScrubResult {
	results := make([]ScrubResult, 0, len(h.scrubs))

	for _, s := range h.scrubs {
		result := h.runScrub(s)
		if h.config.Verbose {
			_, _ = fmt.Fprintf(h.config.Output, "ran %s: %d advances in %v\n",
				result.Name, result.Advances, result.WallTime)
		}
		results = append(results, result)
	}

	return results
}

// runScrub executes a single scrub on a fresh session.
func (h *Harness) runScrub(scrub Scrub) ScrubResult {
	cfg := h.config.Config
	result := ScrubResult{
		Name:        scrub.Name,
		Description: scrub.Description,
	}

	machine, err := cfg.NewMachine()
	if err != nil {
		result.Error = err.Error()
		return result
	}

	powerOn, err := machine.PowerOn(h.config.Pattern)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	opts := []session.Option{
		session.WithCacheConfig(cfg.CacheConfig()),
		session.WithTimelineOptions(cfg.TimelineOptions()...),
	}
	for _, hook := range h.config.Hooks {
		opts = append(opts, session.WithHook(hook))
	}
	s := session.New(machine, powerOn, machine.Layout(), opts...)

	start := time.Now()
	err = h.play(s, scrub, &result)
	result.WallTime = time.Since(start)

	if err != nil {
		result.Error = err.Error()
	}

	stats := s.TimelineStats()
	cacheStats := s.CacheStats()
	result.Advances = stats.Advances
	result.Copies = stats.Copies
	result.SlotHits = stats.Hits
	result.CacheHits = cacheStats.Hits
	result.CacheMisses = cacheStats.Misses

	if result.Reads > 0 {
		result.AdvancesPerRead = float64(result.Advances) / float64(result.Reads)
	}

	return result
}

func (h *Harness) play(s *session.Session, scrub Scrub, result *ScrubResult) error {
	for i, frame := range scrub.Frames {
		if scrub.EditEvery > 0 && i > 0 && i%scrub.EditEvery == 0 {
			at := frame - min(frame, scrub.EditBack)
			value := datapath.Value(i%3 - 1)
			if err := s.Write(at, scrub.EditPath, value); err != nil {
				return fmt.Errorf("failed to edit frame %d: %w", at, err)
			}
			result.Edits++
		}

		if _, err := s.Read(frame, scrub.Path); err != nil {
			return fmt.Errorf("failed to read frame %d: %w", frame, err)
		}
		result.Reads++

		if !h.config.Balance {
			continue
		}

		s.SetHotspot("cursor", frame)
		completed, err := s.BalanceDistribution(h.config.Config.BalanceBudget)
		if err != nil {
			return fmt.Errorf("failed to balance at frame %d: %w", frame, err)
		}
		result.BalancePasses++
		if completed {
			result.BalanceCompleted++
		}
	}

	return nil
}

// PrintResults outputs scrub results in a human-readable format.
func (h *Harness) PrintResults(results []ScrubResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== Rewind Scrub Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Scrub: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		if r.Error != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Error: %s\n", r.Error)
		}
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timeline ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Reads:             %d\n", r.Reads)
		_, _ = fmt.Fprintf(h.config.Output, "  Edits:             %d\n", r.Edits)
		_, _ = fmt.Fprintf(h.config.Output, "  Advances:          %d\n", r.Advances)
		_, _ = fmt.Fprintf(h.config.Output, "  Advances per Read: %.2f\n", r.AdvancesPerRead)
		_, _ = fmt.Fprintf(h.config.Output, "  Copies:            %d\n", r.Copies)
		_, _ = fmt.Fprintf(h.config.Output, "  Slot Hits:         %d\n", r.SlotHits)

		if r.CacheHits > 0 || r.CacheMisses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- Value Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:   %d\n", r.CacheHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Misses: %d\n", r.CacheMisses)
		}

		if r.BalancePasses > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- Balancing ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Passes:    %d\n", r.BalancePasses)
			_, _ = fmt.Fprintf(h.config.Output, "  Completed: %d\n", r.BalanceCompleted)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs scrub results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []ScrubResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,reads,edits,advances,advances_per_read,copies,slot_hits,cache_hits,cache_misses,balance_passes,balance_completed,wall_time_ns")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%.2f,%d,%d,%d,%d,%d,%d,%d\n",
			r.Name,
			r.Reads,
			r.Edits,
			r.Advances,
			r.AdvancesPerRead,
			r.Copies,
			r.SlotHits,
			r.CacheHits,
			r.CacheMisses,
			r.BalancePasses,
			r.BalanceCompleted,
			r.WallTime.Nanoseconds(),
		)
	}
}

// ScrubReport is the complete output format for scrub results.
type ScrubReport struct {
	// Metadata about the run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual scrub results
	Results []ScrubResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the run.
type ReportMetadata struct {
	// Timestamp when the scrubs were run
	Timestamp string `json:"timestamp"`

	// BackupSlots is the slot pool limit used
	BackupSlots int `json:"backup_slots"`

	// Balance reports whether balancing was enabled
	Balance bool `json:"balance"`

	// BalanceBudget is the budget of each balancing pass
	BalanceBudget time.Duration `json:"balance_budget_ns"`
}

// ReportSummary contains aggregate statistics across all scrubs.
type ReportSummary struct {
	// TotalScrubs is the number of scrubs run
	TotalScrubs int `json:"total_scrubs"`

	// TotalReads is the sum of all reads
	TotalReads int `json:"total_reads"`

	// TotalAdvances is the sum of all host steps
	TotalAdvances uint64 `json:"total_advances"`

	// AverageAdvancesPerRead is the overall replay cost of a read
	AverageAdvancesPerRead float64 `json:"average_advances_per_read"`

	// TotalWallTime is the total wall clock time for all scrubs
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs scrub results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []ScrubResult) error {
	var totalReads int
	var totalAdvances uint64
	var totalWallTime time.Duration
	for _, r := range results {
		totalReads += r.Reads
		totalAdvances += r.Advances
		totalWallTime += r.WallTime
	}

	avg := float64(0)
	if totalReads > 0 {
		avg = float64(totalAdvances) / float64(totalReads)
	}

	report := ScrubReport{
		Metadata: ReportMetadata{
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			BackupSlots:   h.config.Config.BackupSlots,
			Balance:       h.config.Balance,
			BalanceBudget: h.config.Config.BalanceBudget,
		},
		Results: results,
		Summary: ReportSummary{
			TotalScrubs:            len(results),
			TotalReads:             totalReads,
			TotalAdvances:          totalAdvances,
			AverageAdvancesPerRead: avg,
			TotalWallTime:          totalWallTime,
		},
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
