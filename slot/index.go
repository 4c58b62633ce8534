package slot

import "fmt"

// IndexKind distinguishes the roles a slot can play in a pool.
type IndexKind uint8

const (
	// PowerOnSlot is the slot kept at the power-on state.
	PowerOnSlot IndexKind = iota
	// BaseSlot is the only slot that is ever advanced.
	BaseSlot
	// BackupSlot is a slot kept at some frame to shorten replays.
	BackupSlot
)

// Index addresses a slot in a pool.
type Index struct {
	kind   IndexKind
	backup int
}

// PowerOnIndex addresses the power-on slot.
var PowerOnIndex = Index{kind: PowerOnSlot}

// BaseIndex addresses the base slot.
var BaseIndex = Index{kind: BaseSlot}

// BackupIndex addresses the i-th backup slot. A negative i is a programming
// error.
func BackupIndex(i int) Index {
	if i < 0 {
		panic(fmt.Sprintf("slot: negative backup index %d", i))
	}
	return Index{kind: BackupSlot, backup: i}
}

// Kind returns the role of the addressed slot.
func (i Index) Kind() IndexKind {
	return i.kind
}

// Backup returns the backup number. The second result is false for the
// power-on and base slots.
func (i Index) Backup() (int, bool) {
	if i.kind != BackupSlot {
		return 0, false
	}
	return i.backup, true
}

// IsBase reports whether the index addresses the base slot.
func (i Index) IsBase() bool {
	return i.kind == BaseSlot
}

// String implements fmt.Stringer.
func (i Index) String() string {
	switch i.kind {
	case PowerOnSlot:
		return "PowerOn"
	case BaseSlot:
		return "Base"
	default:
		return fmt.Sprintf("Backup(%d)", i.backup)
	}
}
