// Package timeline provides random access to the frames of a deterministic
// simulation that can only be advanced one step at a time.
//
// A Timeline owns a pool of slots: the power-on slot, a single base slot that
// is the only one ever advanced, and a bounded number of backup slots that
// hold copies of selected frames. Reading a frame copies the nearest earlier
// slot into the base and replays forward. Edits made through the Controller
// invalidate every slot at or after the edited frame.
package timeline

import "github.com/sarchlab/rewind/slot"

// Host runs the simulation. Both operations must be deterministic: the same
// input slot always produces the same output bytes.
type Host interface {
	// CopySlot overwrites the contents of dst with the contents of src.
	// Both slots have the same size. Tags are managed by the caller.
	CopySlot(dst, src *slot.Slot) error

	// AdvanceSlot runs one simulation step on s in place.
	AdvanceSlot(s *slot.Slot) error
}
