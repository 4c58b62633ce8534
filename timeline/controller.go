package timeline

import (
	"fmt"

	"github.com/sarchlab/rewind/slot"
)

// Controller applies the edits scheduled for a frame. Apply is called once
// after the step that reaches frame, and once on the power-on state to form
// frame 0. It must be deterministic and repeatable.
type Controller interface {
	Apply(s *slot.Slot, frame uint32) error
}

// InvalidatedFrames reports which frames a controller mutation made stale.
// The zero value invalidates nothing.
type InvalidatedFrames struct {
	valid bool
	from  uint32
}

// InvalidateFrom reports that every frame at or after from is stale.
func InvalidateFrom(from uint32) InvalidatedFrames {
	return InvalidatedFrames{valid: true, from: from}
}

// InvalidateNone reports that no frame is stale.
func InvalidateNone() InvalidatedFrames {
	return InvalidatedFrames{}
}

// From returns the first stale frame. The second result is false when
// nothing is stale.
func (i InvalidatedFrames) From() (uint32, bool) {
	return i.from, i.valid
}

// IsNone reports whether nothing is stale.
func (i InvalidatedFrames) IsNone() bool {
	return !i.valid
}

// Include widens the range so that frame is stale too.
func (i InvalidatedFrames) Include(frame uint32) InvalidatedFrames {
	if !i.valid || frame < i.from {
		return InvalidateFrom(frame)
	}
	return i
}

// Union returns the range covering both i and other.
func (i InvalidatedFrames) Union(other InvalidatedFrames) InvalidatedFrames {
	if !other.valid {
		return i
	}
	return i.Include(other.from)
}

// String implements fmt.Stringer.
func (i InvalidatedFrames) String() string {
	if !i.valid {
		return "None"
	}
	return fmt.Sprintf("StartingAt(%d)", i.from)
}
