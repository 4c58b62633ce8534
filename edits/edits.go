// Package edits stores retroactive writes keyed by frame and applies them to
// slots as a timeline.Controller.
package edits

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/sarchlab/rewind/datapath"
	"github.com/sarchlab/rewind/slot"
	"github.com/sarchlab/rewind/timeline"
)

// Edit overrides one path with a value.
type Edit struct {
	Path  *datapath.Path
	Value datapath.Value
}

// Set is a collection of edits keyed by frame. Edits of one frame are
// applied in insertion order; writing a path twice at the same frame
// replaces the earlier edit.
type Set struct {
	edits map[uint32][]Edit
}

// New creates an empty edit set.
func New() *Set {
	return &Set{edits: make(map[uint32][]Edit)}
}

// Apply implements timeline.Controller. Every failing edit is reported.
func (s *Set) Apply(sl *slot.Slot, frame uint32) error {
	var errs []error

	for _, e := range s.edits[frame] {
		if err := e.Path.Write(sl.Bytes(), e.Value); err != nil {
			errs = append(errs, fmt.Errorf("%w: frame %d %s: %w",
				timeline.ErrPathEvaluationFailed, frame, e.Path, err))
		}
	}

	return errors.Join(errs...)
}

// Write schedules path to be set to value at frame.
func (s *Set) Write(
	frame uint32,
	path *datapath.Path,
	value datapath.Value,
) timeline.InvalidatedFrames {
	list := s.edits[frame]

	for i := range list {
		if list[i].Path == path {
			list[i].Value = value
			return timeline.InvalidateFrom(frame)
		}
	}

	s.edits[frame] = append(list, Edit{Path: path, Value: value})

	return timeline.InvalidateFrom(frame)
}

// Reset removes the edit of path at frame, if any.
func (s *Set) Reset(frame uint32, path *datapath.Path) timeline.InvalidatedFrames {
	list := s.edits[frame]

	for i := range list {
		if list[i].Path != path {
			continue
		}

		list = append(list[:i], list[i+1:]...)
		if len(list) == 0 {
			delete(s.edits, frame)
		} else {
			s.edits[frame] = list
		}

		return timeline.InvalidateFrom(frame)
	}

	return timeline.InvalidateNone()
}

// ResetAll removes every edit.
func (s *Set) ResetAll() timeline.InvalidatedFrames {
	invalidated := timeline.InvalidateNone()
	for frame := range s.edits {
		invalidated = invalidated.Include(frame)
	}

	s.edits = make(map[uint32][]Edit)

	return invalidated
}

// InsertFrame shifts the edits at or after frame one frame later, leaving
// frame itself without edits. Edits at the last representable frame are
// dropped.
func (s *Set) InsertFrame(frame uint32) timeline.InvalidatedFrames {
	shifted := make(map[uint32][]Edit, len(s.edits))

	for f, list := range s.edits {
		switch {
		case f < frame:
			shifted[f] = list
		case f < math.MaxUint32:
			shifted[f+1] = list
		}
	}

	s.edits = shifted

	return timeline.InvalidateFrom(frame)
}

// DeleteFrame drops the edits at frame and shifts later edits one frame
// earlier.
func (s *Set) DeleteFrame(frame uint32) timeline.InvalidatedFrames {
	shifted := make(map[uint32][]Edit, len(s.edits))

	for f, list := range s.edits {
		switch {
		case f < frame:
			shifted[f] = list
		case f > frame:
			shifted[f-1] = list
		}
	}

	s.edits = shifted

	return timeline.InvalidateFrom(frame)
}

// Edits returns a copy of the edits at frame.
func (s *Set) Edits(frame uint32) []Edit {
	return append([]Edit(nil), s.edits[frame]...)
}

// Frames returns the frames that have edits, ascending.
func (s *Set) Frames() []uint32 {
	frames := make([]uint32, 0, len(s.edits))
	for f := range s.edits {
		frames = append(frames, f)
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i] < frames[j] })
	return frames
}

// Len returns the total number of edits.
func (s *Set) Len() int {
	n := 0
	for _, list := range s.edits {
		n += len(list)
	}
	return n
}
