package timeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/rewind/slot"
)

// Hook positions invoked by a Timeline.
var (
	// HookPosMaterialize fires after a frame has been made resident. Detail
	// is a MaterializeEvent.
	HookPosMaterialize = &sim.HookPos{Name: "Materialize"}

	// HookPosCopy fires after a whole-slot copy. Detail is a CopyEvent.
	HookPosCopy = &sim.HookPos{Name: "Copy"}

	// HookPosAdvance fires after a host step moved the base slot to a new
	// frame. Item is the frame number.
	HookPosAdvance = &sim.HookPos{Name: "Advance"}

	// HookPosInvalidate fires after slots were invalidated. Detail is an
	// InvalidateEvent.
	HookPosInvalidate = &sim.HookPos{Name: "Invalidate"}

	// HookPosBalance fires at the end of a balancing pass. Detail is a
	// BalanceEvent.
	HookPosBalance = &sim.HookPos{Name: "Balance"}
)

// MaterializeEvent describes one frame request.
type MaterializeEvent struct {
	ID       string
	Frame    uint32
	Slot     slot.Index
	Start    slot.Tag
	Advances uint64
	Copies   uint64
	Hit      bool
	Err      error
}

// CopyEvent describes one whole-slot copy.
type CopyEvent struct {
	From  slot.Index
	To    slot.Index
	Frame slot.Tag
}

// InvalidateEvent describes an invalidation.
type InvalidateEvent struct {
	ID    string
	From  uint32
	Slots int
}

// BalanceEvent describes a balancing pass.
type BalanceEvent struct {
	ID         string
	Targets    []uint32
	Filled     []uint32
	Completed  bool
	Suboptimal bool
	Elapsed    time.Duration
	Err        error
}

// LogHook writes timeline events to a structured logger.
type LogHook struct {
	logger *slog.Logger
}

// NewLogHook creates a hook that logs to logger.
func NewLogHook(logger *slog.Logger) *LogHook {
	return &LogHook{logger: logger}
}

// Func implements sim.Hook.
func (h *LogHook) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case HookPosMaterialize:
		e := ctx.Detail.(MaterializeEvent)
		level := slog.LevelDebug
		if e.Err != nil {
			level = slog.LevelError
		}
		h.logger.Log(context.Background(), level, "materialize",
			"id", e.ID,
			"frame", e.Frame,
			"slot", e.Slot.String(),
			"start", e.Start.String(),
			"advances", e.Advances,
			"copies", e.Copies,
			"hit", e.Hit,
			"err", e.Err)
	case HookPosCopy:
		e := ctx.Detail.(CopyEvent)
		h.logger.Debug("copy",
			"from", e.From.String(), "to", e.To.String(), "frame", e.Frame.String())
	case HookPosInvalidate:
		e := ctx.Detail.(InvalidateEvent)
		h.logger.Debug("invalidate", "id", e.ID, "from", e.From, "slots", e.Slots)
	case HookPosBalance:
		e := ctx.Detail.(BalanceEvent)
		if e.Suboptimal {
			h.logger.Warn("Using suboptimal number of slots",
				"id", e.ID, "targets", len(e.Targets), "filled", len(e.Filled))
		}
		h.logger.Debug("balance",
			"id", e.ID,
			"targets", e.Targets,
			"filled", e.Filled,
			"completed", e.Completed,
			"elapsed", e.Elapsed,
			"err", e.Err)
	}
}
