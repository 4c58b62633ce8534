// Package emu provides a deterministic sandbox world that runs as a
// timeline host.
//
// The whole world state lives in one little-endian memory image: a frame
// counter, a random generator, a controller pad, a player that walks around
// and plants live cells, and a toroidal Game of Life grid.
package emu

import (
	"errors"
	"fmt"

	"github.com/sarchlab/rewind/datapath"
	"github.com/sarchlab/rewind/loader"
	"github.com/sarchlab/rewind/slot"
)

// ErrStepLimit is returned when a step would pass the configured limit.
var ErrStepLimit = errors.New("max steps reached")

// DefaultSeed seeds the random generator when no seed is given.
const DefaultSeed uint32 = 0x9e3779b9

// DefaultSpawnPeriod is the default one-in-n chance per step of the
// generator seeding a random live cell.
const DefaultSpawnPeriod uint32 = 64

// Machine runs the sandbox world on slot buffers.
type Machine struct {
	width  int
	height int
	seed   uint32
	spawn  uint32

	layout  *datapath.Layout
	scratch []byte

	// Execution state
	stepCount uint64
	copyCount uint64
	maxSteps  uint32 // 0 means no limit
}

// MachineOption is a functional option for configuring the Machine.
type MachineOption func(*Machine)

// WithSeed sets the initial value of the random generator. Zero selects
// DefaultSeed since xorshift never leaves zero.
func WithSeed(seed uint32) MachineOption {
	return func(m *Machine) {
		m.seed = seed
	}
}

// WithSpawnPeriod sets the one-in-n chance per step of a random live cell
// appearing. A value of 0 disables spawning.
func WithSpawnPeriod(n uint32) MachineOption {
	return func(m *Machine) {
		m.spawn = n
	}
}

// WithMaxSteps makes any step that would reach a frame counter above max
// fail. A value of 0 means no limit.
func WithMaxSteps(max uint32) MachineOption {
	return func(m *Machine) {
		m.maxSteps = max
	}
}

// NewMachine creates a machine with a width by height grid.
func NewMachine(width, height int, opts ...MachineOption) (*Machine, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid grid size %dx%d", width, height)
	}

	m := &Machine{
		width:   width,
		height:  height,
		seed:    DefaultSeed,
		spawn:   DefaultSpawnPeriod,
		scratch: make([]byte, width*height),
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.seed == 0 {
		m.seed = DefaultSeed
	}

	layout, err := newLayout(width, height)
	if err != nil {
		return nil, fmt.Errorf("failed to build layout: %w", err)
	}
	m.layout = layout

	return m, nil
}

// Width returns the grid width.
func (m *Machine) Width() int {
	return m.width
}

// Height returns the grid height.
func (m *Machine) Height() int {
	return m.height
}

// Size returns the size of a memory image in bytes.
func (m *Machine) Size() int {
	return OffsetGrid + m.width*m.height
}

// Layout describes the globals of a memory image.
func (m *Machine) Layout() *datapath.Layout {
	return m.layout
}

// StepCount returns the number of steps run.
func (m *Machine) StepCount() uint64 {
	return m.stepCount
}

// CopyCount returns the number of slot copies made.
func (m *Machine) CopyCount() uint64 {
	return m.copyCount
}

// PowerOn builds the power-on slot with pattern centered on the grid and
// the player in the middle. A nil pattern leaves the grid empty.
func (m *Machine) PowerOn(pattern *loader.Pattern) (*slot.Slot, error) {
	mem := make([]byte, m.Size())
	w := world{mem: mem, width: m.width, height: m.height}

	w.setU32(OffsetRNG, m.seed)
	w.setS32(OffsetPlayerPosX, int32(m.width/2))
	w.setS32(OffsetPlayerPosY, int32(m.height/2))

	if pattern != nil {
		if pattern.Width > m.width || pattern.Height > m.height {
			return nil, fmt.Errorf("pattern %q (%dx%d) does not fit %dx%d grid",
				pattern.Name, pattern.Width, pattern.Height, m.width, m.height)
		}

		left := (m.width - pattern.Width) / 2
		top := (m.height - pattern.Height) / 2
		for _, c := range pattern.Cells {
			w.setCell(left+c.X, top+c.Y, 1)
		}
	}

	w.setU32(OffsetPopulation, w.population())

	return slot.FromBytes(mem), nil
}

// CopySlot implements timeline.Host.
func (m *Machine) CopySlot(dst, src *slot.Slot) error {
	if dst.Len() != m.Size() || src.Len() != m.Size() {
		return fmt.Errorf("slot size %d/%d does not match world size %d",
			dst.Len(), src.Len(), m.Size())
	}

	copy(dst.Bytes(), src.Bytes())
	m.copyCount++

	return nil
}

// AdvanceSlot implements timeline.Host by running one world step.
func (m *Machine) AdvanceSlot(s *slot.Slot) error {
	if s.Len() != m.Size() {
		return fmt.Errorf("slot size %d does not match world size %d",
			s.Len(), m.Size())
	}

	w := world{mem: s.Bytes(), width: m.width, height: m.height, spawn: m.spawn}

	// Check the limit against the image, not the run, so that replays
	// fail at the same frame.
	if m.maxSteps > 0 && w.u32(OffsetFrameCounter) >= m.maxSteps {
		return fmt.Errorf("%w at frame counter %d", ErrStepLimit,
			w.u32(OffsetFrameCounter))
	}

	w.step(m.scratch)
	m.stepCount++

	return nil
}
