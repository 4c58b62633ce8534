package timeline

import (
	"github.com/cespare/xxhash/v2"

	"github.com/sarchlab/rewind/slot"
)

// Handle is a borrowed view of one resident frame. It must be released
// before the timeline is used again.
type Handle struct {
	owner    *Timeline
	slot     *slot.Slot
	index    slot.Index
	frame    uint32
	mutable  bool
	released bool

	// digest of the buffer at acquisition, read-only handles only
	digest uint64
}

// Frame returns the frame the handle was acquired for.
func (h *Handle) Frame() uint32 {
	return h.frame
}

// Index returns the pool position of the borrowed slot.
func (h *Handle) Index() slot.Index {
	return h.index
}

// Slot returns the borrowed slot.
func (h *Handle) Slot() *slot.Slot {
	h.mustBeLive()
	return h.slot
}

// Bytes returns the borrowed slot's buffer. Only handles from BaseSlotMut
// may write to it. A read-only handle may share its buffer with a backup
// slot.
func (h *Handle) Bytes() []byte {
	h.mustBeLive()
	return h.slot.Bytes()
}

// Mutable reports whether the handle may write to its slot.
func (h *Handle) Mutable() bool {
	return h.mutable
}

// Release returns the slot to the timeline. Releasing twice panics, and so
// does releasing a read-only handle whose buffer was written. In that case
// the slot is tagged Unknown first so that it is never served again.
func (h *Handle) Release() {
	h.mustBeLive()
	h.released = true
	h.owner.release()

	if h.mutable || xxhash.Sum64(h.slot.Bytes()) == h.digest {
		return
	}

	h.slot.SetTag(slot.UnknownTag())
	panic("timeline: read-only frame handle was written")
}

func (h *Handle) mustBeLive() {
	if h.released {
		panic("timeline: use of released frame handle")
	}
}
