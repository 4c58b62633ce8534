// Package slot provides the snapshot buffers managed by a timeline.
//
// A Slot holds one complete copy of a simulation's mutable memory together
// with a Tag describing which frame the copy represents. An Index addresses a
// slot inside a pool without aliasing it.
package slot

import "fmt"

// TagKind identifies what a slot's contents represent.
type TagKind uint8

const (
	// Unknown means the slot's contents are stale or invalid.
	Unknown TagKind = iota
	// PowerOn means the slot holds the power-on state with no edits applied.
	PowerOn
	// At means the slot holds the state of a specific frame.
	At
)

// Tag records the frame a slot currently represents.
//
// PowerOn differs from AtFrame(0): frame 0 includes the edits scheduled for
// frame 0, while the power-on state does not include any edits.
type Tag struct {
	kind  TagKind
	frame uint32
}

// UnknownTag returns the tag of a slot with stale contents.
func UnknownTag() Tag {
	return Tag{kind: Unknown}
}

// PowerOnTag returns the tag of a slot holding the power-on state.
func PowerOnTag() Tag {
	return Tag{kind: PowerOn}
}

// AtFrame returns the tag of a slot holding the given frame.
func AtFrame(frame uint32) Tag {
	return Tag{kind: At, frame: frame}
}

// Kind returns the kind of the tag.
func (t Tag) Kind() TagKind {
	return t.kind
}

// Frame returns the tagged frame. The second result is false unless the
// tag is an At tag.
func (t Tag) Frame() (uint32, bool) {
	if t.kind != At {
		return 0, false
	}
	return t.frame, true
}

// IsAt reports whether the tag is exactly AtFrame(frame).
func (t Tag) IsAt(frame uint32) bool {
	return t.kind == At && t.frame == frame
}

// IsKnown reports whether the slot holds usable contents.
func (t Tag) IsKnown() bool {
	return t.kind != Unknown
}

// String implements fmt.Stringer.
func (t Tag) String() string {
	switch t.kind {
	case PowerOn:
		return "PowerOn"
	case At:
		return fmt.Sprintf("At(%d)", t.frame)
	default:
		return "Unknown"
	}
}
