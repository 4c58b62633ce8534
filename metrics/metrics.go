// Package metrics exports timeline activity as Prometheus metrics.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/rewind/timeline"
)

const namespace = "rewind"

// Collector is a timeline hook that records events into Prometheus
// metrics.
type Collector struct {
	// Materializations counts frame requests by result (hit, replay, error).
	Materializations *prometheus.CounterVec

	// ReplayAdvances observes the number of host steps per frame request.
	ReplayAdvances prometheus.Histogram

	// Advances counts host steps.
	Advances prometheus.Counter

	// Copies counts whole-slot copies.
	Copies prometheus.Counter

	// InvalidatedSlots counts slots made stale by edits.
	InvalidatedSlots prometheus.Counter

	// BalancePasses counts balancing passes by result (complete, partial,
	// error).
	BalancePasses *prometheus.CounterVec

	// BalanceSeconds observes the duration of balancing passes.
	BalanceSeconds prometheus.Histogram

	// BackupsFilled counts backup slots filled by balancing.
	BackupsFilled prometheus.Counter
}

// NewCollector creates a collector whose metrics are registered with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		Materializations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "timeline",
			Name:      "materializations_total",
			Help:      "Frame requests by result.",
		}, []string{"result"}),
		ReplayAdvances: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "timeline",
			Name:      "replay_advances",
			Help:      "Host steps needed to serve a frame request.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 9),
		}),
		Advances: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "timeline",
			Name:      "advances_total",
			Help:      "Host steps run on the base slot.",
		}),
		Copies: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "timeline",
			Name:      "copies_total",
			Help:      "Whole-slot copies.",
		}),
		InvalidatedSlots: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "timeline",
			Name:      "invalidated_slots_total",
			Help:      "Slots made stale by edits.",
		}),
		BalancePasses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "balance",
			Name:      "passes_total",
			Help:      "Balancing passes by result.",
		}, []string{"result"}),
		BalanceSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "balance",
			Name:      "duration_seconds",
			Help:      "Duration of balancing passes.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		BackupsFilled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "balance",
			Name:      "backups_filled_total",
			Help:      "Backup slots filled by balancing.",
		}),
	}
}

// Func implements sim.Hook.
func (c *Collector) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case timeline.HookPosMaterialize:
		e := ctx.Detail.(timeline.MaterializeEvent)
		switch {
		case e.Err != nil:
			c.Materializations.WithLabelValues("error").Inc()
		case e.Hit:
			c.Materializations.WithLabelValues("hit").Inc()
		default:
			c.Materializations.WithLabelValues("replay").Inc()
		}
		c.ReplayAdvances.Observe(float64(e.Advances))
	case timeline.HookPosAdvance:
		c.Advances.Inc()
	case timeline.HookPosCopy:
		c.Copies.Inc()
	case timeline.HookPosInvalidate:
		e := ctx.Detail.(timeline.InvalidateEvent)
		c.InvalidatedSlots.Add(float64(e.Slots))
	case timeline.HookPosBalance:
		e := ctx.Detail.(timeline.BalanceEvent)
		switch {
		case e.Err != nil:
			c.BalancePasses.WithLabelValues("error").Inc()
		case e.Completed:
			c.BalancePasses.WithLabelValues("complete").Inc()
		default:
			c.BalancePasses.WithLabelValues("partial").Inc()
		}
		c.BalanceSeconds.Observe(e.Elapsed.Seconds())
		c.BackupsFilled.Add(float64(len(e.Filled)))
	}
}

// WriteText writes every metric gathered from g in the Prometheus text
// exposition format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}

	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metric %s: %w", mf.GetName(), err)
		}
	}

	return nil
}
