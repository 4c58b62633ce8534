package slot

import "fmt"

// Slot is a fixed-size buffer holding one full copy of a simulation's
// mutable memory.
type Slot struct {
	data []byte
	tag  Tag
}

// New creates a zeroed slot of the given size, tagged Unknown.
func New(size int) *Slot {
	return &Slot{
		data: make([]byte, size),
		tag:  UnknownTag(),
	}
}

// FromBytes creates a slot that takes ownership of data. The slot is tagged
// PowerOn since a caller-supplied image is the starting point of a timeline.
func FromBytes(data []byte) *Slot {
	return &Slot{
		data: data,
		tag:  PowerOnTag(),
	}
}

// Len returns the size of the buffer in bytes.
func (s *Slot) Len() int {
	return len(s.data)
}

// Bytes returns the underlying buffer. Writing through the returned slice
// changes the slot.
func (s *Slot) Bytes() []byte {
	return s.data
}

// Tag returns the slot's frame tag.
func (s *Slot) Tag() Tag {
	return s.tag
}

// SetTag retags the slot.
func (s *Slot) SetTag(tag Tag) {
	s.tag = tag
}

// CopyFrom overwrites the slot with the contents and tag of src. Both slots
// must have the same size.
func (s *Slot) CopyFrom(src *Slot) error {
	if len(s.data) != len(src.data) {
		return fmt.Errorf("slot size mismatch: dst %d bytes, src %d bytes",
			len(s.data), len(src.data))
	}

	copy(s.data, src.data)
	s.tag = src.tag

	return nil
}

// Clone returns an independent copy of the slot.
func (s *Slot) Clone() *Slot {
	data := make([]byte, len(s.data))
	copy(data, s.data)
	return &Slot{data: data, tag: s.tag}
}
