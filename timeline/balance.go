package timeline

import (
	"math"
	"sort"
	"time"

	"github.com/rs/xid"
	"github.com/sarchlab/rewind/slot"
)

// Unbounded is a balancing budget that never expires.
const Unbounded = time.Duration(math.MaxInt64)

// DefaultAlignments is the default ladder used to place backups below each
// hotspot. Each rung a places a backup at h - h%a.
var DefaultAlignments = []uint32{1, 15, 40, 145, 410, 1505, 4010, 14005}

func (p *pool) setHotspot(name string, frame uint32) {
	p.hotspots[name] = frame
}

func (p *pool) deleteHotspot(name string) {
	delete(p.hotspots, name)
}

func (p *pool) hotspotNames() []string {
	names := make([]string, 0, len(p.hotspots))
	for name := range p.hotspots {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ladder returns the distinct targets of one hotspot, nearest first.
func ladder(hotspot uint32, alignments []uint32) []uint32 {
	rungs := make([]uint32, 0, len(alignments))
	seen := make(map[uint32]bool)

	for _, a := range alignments {
		if a == 0 {
			continue
		}

		target := hotspot - hotspot%a
		if seen[target] {
			continue
		}
		seen[target] = true
		rungs = append(rungs, target)
	}

	return rungs
}

// balanceTargets selects up to maxBackups frames by taking one ladder rung
// from each hotspot in turn. The result is ascending.
func (p *pool) balanceTargets(alignments []uint32) []uint32 {
	names := p.hotspotNames()
	ladders := make([][]uint32, len(names))
	longest := 0

	for i, name := range names {
		ladders[i] = ladder(p.hotspots[name], alignments)
		if len(ladders[i]) > longest {
			longest = len(ladders[i])
		}
	}

	targets := make([]uint32, 0, p.maxBackups)
	selected := make(map[uint32]bool)

	for rung := 0; rung < longest; rung++ {
		for _, l := range ladders {
			if len(targets) >= p.maxBackups {
				break
			}
			if rung >= len(l) || selected[l[rung]] {
				continue
			}
			selected[l[rung]] = true
			targets = append(targets, l[rung])
		}
	}

	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })

	return targets
}

// balance moves backups onto the targets derived from the hotspots until
// every target is resident or the budget runs out.
func (p *pool) balance(
	alignments []uint32,
	budget time.Duration,
	now func() time.Time,
) (bool, error) {
	start := now()
	targets := p.balanceTargets(alignments)

	event := BalanceEvent{
		ID:      xid.New().String(),
		Targets: targets,
	}

	kept := make(map[int]bool)
	missing := make([]uint32, 0, len(targets))

	for _, t := range targets {
		if i, ok := p.backupAt(t, kept); ok {
			kept[i] = true
			continue
		}
		missing = append(missing, t)
	}

	completed, err := p.fill(missing, kept, budget, start, now, &event)

	event.Completed = completed
	event.Err = err
	event.Elapsed = now().Sub(start)
	p.invoke(HookPosBalance, nil, event)

	return completed, err
}

func (p *pool) fill(
	missing []uint32,
	kept map[int]bool,
	budget time.Duration,
	start time.Time,
	now func() time.Time,
	event *BalanceEvent,
) (bool, error) {
	if len(missing) == 0 {
		return true, nil
	}

	if budget <= 0 {
		return false, nil
	}

	for _, t := range missing {
		if budget != Unbounded && now().Sub(start) >= budget {
			return false, nil
		}

		if _, err := p.materialize(t, true); err != nil {
			return false, err
		}

		i, ok := p.freeBackup(kept)
		if !ok {
			event.Suboptimal = true
			return false, nil
		}

		if err := p.copySlot(slot.BackupIndex(i), slot.BaseIndex); err != nil {
			return false, err
		}

		kept[i] = true
		event.Filled = append(event.Filled, t)
	}

	return true, nil
}

// backupAt finds a backup holding frame that is not already kept.
func (p *pool) backupAt(frame uint32, kept map[int]bool) (int, bool) {
	for i, b := range p.backups {
		if !kept[i] && b.Tag().IsAt(frame) {
			return i, true
		}
	}
	return 0, false
}

// freeBackup picks the backup to overwrite: a newly allocated one while the
// pool is below its limit, then an Unknown one, then the one farthest from
// every hotspot. Kept backups are never chosen.
func (p *pool) freeBackup(kept map[int]bool) (int, bool) {
	if len(p.backups) < p.maxBackups {
		p.backups = append(p.backups, slot.New(p.powerOn.Len()))
		return len(p.backups) - 1, true
	}

	for i, b := range p.backups {
		if !kept[i] && !b.Tag().IsKnown() {
			return i, true
		}
	}

	victim := -1
	var farthest uint64

	for i, b := range p.backups {
		if kept[i] {
			continue
		}

		f, _ := b.Tag().Frame()
		d := p.distanceToHotspots(f)
		if victim < 0 || d > farthest {
			victim = i
			farthest = d
		}
	}

	return victim, victim >= 0
}

func (p *pool) distanceToHotspots(frame uint32) uint64 {
	best := uint64(math.MaxUint64)

	for _, h := range p.hotspots {
		var d uint64
		if h > frame {
			d = uint64(h - frame)
		} else {
			d = uint64(frame - h)
		}
		if d < best {
			best = d
		}
	}

	return best
}
