package timeline

import (
	"log/slog"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/rewind/slot"
)

// DefaultBackupSlots is the number of backup slots used when no
// WithBackupSlots option is given.
const DefaultBackupSlots = 30

// Timeline gives random access to the frames of a simulation.
//
// At most one Handle may be outstanding at a time. Requesting another frame,
// mutating the controller or balancing while a handle is held panics.
type Timeline struct {
	*sim.HookableBase

	pool       *pool
	alignments []uint32
	now        func() time.Time
	checkedOut bool
}

// Option configures a Timeline.
type Option func(*Timeline)

// WithBackupSlots sets the maximum number of backup slots.
func WithBackupSlots(n int) Option {
	return func(t *Timeline) {
		if n < 0 {
			n = 0
		}
		t.pool.maxBackups = n
	}
}

// WithAlignments sets the ladder used by BalanceDistribution.
func WithAlignments(alignments []uint32) Option {
	return func(t *Timeline) {
		t.alignments = append([]uint32(nil), alignments...)
	}
}

// WithLogger logs timeline events to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Timeline) {
		if logger != nil {
			t.AcceptHook(NewLogHook(logger))
		}
	}
}

// WithClock sets the clock used to enforce balancing budgets.
func WithClock(now func() time.Time) Option {
	return func(t *Timeline) {
		t.now = now
	}
}

// New creates a timeline. powerOn becomes the power-on slot and is retagged
// PowerOn; the timeline owns it from now on.
func New(
	host Host,
	powerOn *slot.Slot,
	controller Controller,
	opts ...Option,
) *Timeline {
	t := &Timeline{
		HookableBase: sim.NewHookableBase(),
		pool:         newPool(host, powerOn, controller, DefaultBackupSlots),
		alignments:   append([]uint32(nil), DefaultAlignments...),
		now:          time.Now,
	}

	for _, opt := range opts {
		opt(t)
	}

	t.pool.invoke = func(pos *sim.HookPos, item, detail interface{}) {
		if t.NumHooks() == 0 {
			return
		}
		t.InvokeHook(sim.HookCtx{
			Domain: t,
			Pos:    pos,
			Item:   item,
			Detail: detail,
		})
	}

	return t
}

// Frame makes frame resident and returns a read-only handle to it. The
// handle may point at a backup slot, so its buffer must not be written.
// Releasing a handle whose buffer changed marks the slot Unknown and panics.
func (t *Timeline) Frame(frame uint32) (*Handle, error) {
	return t.acquire(frame, false, false)
}

// BaseSlot makes frame resident in the base slot and returns a read-only
// handle to it.
func (t *Timeline) BaseSlot(frame uint32) (*Handle, error) {
	return t.acquire(frame, true, false)
}

// BaseSlotMut makes frame resident in the base slot and returns a handle
// that may write to it. The base slot is tagged Unknown as soon as the
// handle is handed out.
func (t *Timeline) BaseSlotMut(frame uint32) (*Handle, error) {
	return t.acquire(frame, true, true)
}

// WithFrame runs fn on frame and releases the handle afterwards.
func (t *Timeline) WithFrame(frame uint32, fn func(h *Handle) error) error {
	h, err := t.Frame(frame)
	if err != nil {
		return err
	}
	defer h.Release()

	return fn(h)
}

func (t *Timeline) acquire(frame uint32, requireBase, mutable bool) (*Handle, error) {
	t.mustNotBeCheckedOut("request a frame")

	idx, err := t.pool.materialize(frame, requireBase)
	if err != nil {
		return nil, err
	}

	s := t.pool.slot(idx)
	if mutable {
		s.SetTag(slot.UnknownTag())
	}

	t.checkedOut = true

	h := &Handle{
		owner:   t,
		slot:    s,
		index:   idx,
		frame:   frame,
		mutable: mutable,
	}
	if !mutable {
		h.digest = xxhash.Sum64(s.Bytes())
	}

	return h, nil
}

func (t *Timeline) release() {
	t.checkedOut = false
}

func (t *Timeline) mustNotBeCheckedOut(action string) {
	if t.checkedOut {
		panic("timeline: cannot " + action + " while a frame handle is outstanding")
	}
}

// Controller returns the controller for read-only use.
func (t *Timeline) Controller() Controller {
	return t.pool.controller
}

// ControllerMut invalidates every frame at or after from and returns the
// controller so that the caller can edit it.
func (t *Timeline) ControllerMut(from uint32) Controller {
	t.mustNotBeCheckedOut("mutate the controller")
	t.pool.invalidate(from)
	return t.pool.controller
}

// WithControllerMut runs fn on the controller and invalidates the frames it
// reports.
func (t *Timeline) WithControllerMut(
	fn func(c Controller) InvalidatedFrames,
) InvalidatedFrames {
	t.mustNotBeCheckedOut("mutate the controller")

	invalidated := fn(t.pool.controller)
	if from, ok := invalidated.From(); ok {
		t.pool.invalidate(from)
	}

	return invalidated
}

// SetHotspot records a frame the caller expects to request often.
func (t *Timeline) SetHotspot(name string, frame uint32) {
	t.pool.setHotspot(name, frame)
}

// DeleteHotspot forgets a hotspot. Unknown names are ignored.
func (t *Timeline) DeleteHotspot(name string) {
	t.pool.deleteHotspot(name)
}

// Hotspots returns a copy of the current hotspots.
func (t *Timeline) Hotspots() map[string]uint32 {
	hotspots := make(map[string]uint32, len(t.pool.hotspots))
	for name, frame := range t.pool.hotspots {
		hotspots[name] = frame
	}
	return hotspots
}

// BalanceDistribution moves backup slots near the hotspots, spending at most
// budget. It reports whether every chosen frame became resident. A budget of
// zero or less does no work; Unbounded never expires.
func (t *Timeline) BalanceDistribution(budget time.Duration) (bool, error) {
	t.mustNotBeCheckedOut("balance slots")
	return t.pool.balance(t.alignments, budget, t.now)
}

// LoadedFrames returns the frames currently held by the base or a backup
// slot, ascending and without duplicates.
func (t *Timeline) LoadedFrames() []uint32 {
	return t.pool.loadedFrames()
}

// BackupFrames returns the frames held by backup slots only.
func (t *Timeline) BackupFrames() []uint32 {
	return t.pool.backupFrames()
}

// Stats returns the work counters.
func (t *Timeline) Stats() Stats {
	return t.pool.stats
}

// NumSlots returns the number of allocated slots, including the power-on
// and base slots.
func (t *Timeline) NumSlots() int {
	return t.pool.numSlots()
}

// MaxBackupSlots returns the backup slot limit.
func (t *Timeline) MaxBackupSlots() int {
	return t.pool.maxBackups
}
