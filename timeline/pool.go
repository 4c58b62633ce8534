package timeline

import (
	"fmt"
	"sort"

	"github.com/rs/xid"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/rewind/slot"
)

// Stats counts the work a Timeline has done.
type Stats struct {
	// Advances is the number of host steps run on the base slot.
	Advances uint64
	// Copies is the number of whole-slot copies.
	Copies uint64
	// Materializations is the number of frame requests.
	Materializations uint64
	// Hits is the number of frame requests served without any copy or step.
	Hits uint64
	// Invalidations is the number of slots made stale by edits.
	Invalidations uint64
}

// pool owns every slot of a timeline and keeps their tags consistent.
type pool struct {
	host       Host
	controller Controller

	powerOn    *slot.Slot
	base       *slot.Slot
	backups    []*slot.Slot
	maxBackups int

	hotspots map[string]uint32
	stats    Stats

	invoke func(pos *sim.HookPos, item, detail interface{})
}

func newPool(
	host Host,
	powerOn *slot.Slot,
	controller Controller,
	maxBackups int,
) *pool {
	powerOn.SetTag(slot.PowerOnTag())

	return &pool{
		host:       host,
		controller: controller,
		powerOn:    powerOn,
		base:       powerOn.Clone(),
		backups:    make([]*slot.Slot, 0, maxBackups),
		maxBackups: maxBackups,
		hotspots:   make(map[string]uint32),
		invoke:     func(*sim.HookPos, interface{}, interface{}) {},
	}
}

// slot resolves an index. Indices beyond the allocated backups are a
// programming error.
func (p *pool) slot(idx slot.Index) *slot.Slot {
	switch idx.Kind() {
	case slot.PowerOnSlot:
		return p.powerOn
	case slot.BaseSlot:
		return p.base
	}

	i, _ := idx.Backup()
	if i >= len(p.backups) {
		panic(fmt.Sprintf("timeline: backup index %d out of range (%d allocated)",
			i, len(p.backups)))
	}

	return p.backups[i]
}

// materialize makes frame resident and returns the slot that holds it. With
// requireBase the frame is always placed in the base slot.
func (p *pool) materialize(frame uint32, requireBase bool) (slot.Index, error) {
	p.stats.Materializations++
	before := p.stats

	event := MaterializeEvent{ID: xid.New().String(), Frame: frame}

	idx, start, err := p.doMaterialize(frame, requireBase)

	event.Slot = idx
	event.Start = start
	event.Advances = p.stats.Advances - before.Advances
	event.Copies = p.stats.Copies - before.Copies
	event.Hit = err == nil && event.Advances == 0 && event.Copies == 0
	event.Err = err

	if event.Hit {
		p.stats.Hits++
	}

	p.invoke(HookPosMaterialize, frame, event)

	return idx, err
}

func (p *pool) doMaterialize(
	frame uint32,
	requireBase bool,
) (slot.Index, slot.Tag, error) {
	if p.base.Tag().IsAt(frame) {
		return slot.BaseIndex, p.base.Tag(), nil
	}

	for i, b := range p.backups {
		if !b.Tag().IsAt(frame) {
			continue
		}

		idx := slot.BackupIndex(i)
		if !requireBase {
			return idx, b.Tag(), nil
		}

		if err := p.copySlot(slot.BaseIndex, idx); err != nil {
			return slot.BaseIndex, b.Tag(), err
		}

		return slot.BaseIndex, b.Tag(), nil
	}

	start := p.nearestBefore(frame)
	startTag := p.slot(start).Tag()

	baseIsPowerOn := start.Kind() == slot.PowerOnSlot &&
		p.base.Tag().Kind() == slot.PowerOn
	if !start.IsBase() && !baseIsPowerOn {
		if err := p.copySlot(slot.BaseIndex, start); err != nil {
			return slot.BaseIndex, startTag, err
		}
	}

	for !p.base.Tag().IsAt(frame) {
		if err := p.advanceBase(); err != nil {
			return slot.BaseIndex, startTag, err
		}
	}

	return slot.BaseIndex, startTag, nil
}

// nearestBefore returns the slot holding the latest frame not after frame.
// The base wins ties, backups beat power-on.
func (p *pool) nearestBefore(frame uint32) slot.Index {
	best := slot.PowerOnIndex
	bestFrame := int64(-1)

	if f, ok := p.base.Tag().Frame(); ok && f <= frame {
		best = slot.BaseIndex
		bestFrame = int64(f)
	}

	for i, b := range p.backups {
		f, ok := b.Tag().Frame()
		if !ok || f > frame || int64(f) <= bestFrame {
			continue
		}

		best = slot.BackupIndex(i)
		bestFrame = int64(f)
	}

	return best
}

// advanceBase moves the base slot one frame forward. From the power-on state
// the next frame is 0, which only applies the controller.
func (p *pool) advanceBase() error {
	tag := p.base.Tag()
	p.base.SetTag(slot.UnknownTag())

	var next uint32

	switch tag.Kind() {
	case slot.PowerOn:
		next = 0
	case slot.At:
		f, _ := tag.Frame()
		next = f + 1

		err := p.host.AdvanceSlot(p.base)
		p.stats.Advances++
		if err != nil {
			return fmt.Errorf("%w at frame %d: %w", ErrSimulationStepFailed, next, err)
		}
	default:
		panic("timeline: advancing a base slot with unknown contents")
	}

	if err := p.controller.Apply(p.base, next); err != nil {
		return fmt.Errorf("%w at frame %d: %w", ErrControllerApplyFailed, next, err)
	}

	p.base.SetTag(slot.AtFrame(next))
	if tag.Kind() == slot.At {
		p.invoke(HookPosAdvance, next, nil)
	}

	return nil
}

// copySlot copies src into dst. On failure dst is left Unknown.
func (p *pool) copySlot(dst, src slot.Index) error {
	d := p.slot(dst)
	s := p.slot(src)
	tag := s.Tag()

	d.SetTag(slot.UnknownTag())

	err := p.host.CopySlot(d, s)
	p.stats.Copies++
	if err != nil {
		return fmt.Errorf("%w: failed to copy %s to %s: %w",
			ErrSimulationStepFailed, src, dst, err)
	}

	d.SetTag(tag)
	p.invoke(HookPosCopy, dst, CopyEvent{From: src, To: dst, Frame: tag})

	return nil
}

// invalidate marks every base or backup slot at or after from as Unknown.
func (p *pool) invalidate(from uint32) int {
	count := 0

	for _, s := range p.allMutable() {
		if f, ok := s.Tag().Frame(); ok && f >= from {
			s.SetTag(slot.UnknownTag())
			count++
		}
	}

	p.stats.Invalidations += uint64(count)
	p.invoke(HookPosInvalidate, from, InvalidateEvent{
		ID:    xid.New().String(),
		From:  from,
		Slots: count,
	})

	return count
}

func (p *pool) allMutable() []*slot.Slot {
	slots := make([]*slot.Slot, 0, len(p.backups)+1)
	slots = append(slots, p.base)
	slots = append(slots, p.backups...)
	return slots
}

// loadedFrames returns the distinct frames held by any slot, ascending.
func (p *pool) loadedFrames() []uint32 {
	return uniqueFrames(p.allMutable())
}

// backupFrames returns the distinct frames held by backup slots, ascending.
func (p *pool) backupFrames() []uint32 {
	return uniqueFrames(p.backups)
}

func uniqueFrames(slots []*slot.Slot) []uint32 {
	seen := make(map[uint32]bool)
	frames := make([]uint32, 0, len(slots))

	for _, s := range slots {
		f, ok := s.Tag().Frame()
		if !ok || seen[f] {
			continue
		}
		seen[f] = true
		frames = append(frames, f)
	}

	sort.Slice(frames, func(i, j int) bool { return frames[i] < frames[j] })

	return frames
}

// numSlots counts allocated slots, power-on and base included.
func (p *pool) numSlots() int {
	return len(p.backups) + 2
}
