package main

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// ProgressReporter is a Listener that logs search progress every Every
// squads, feeds the search metrics, and prints the incumbent report once
// after each RequestDump.
type ProgressReporter struct {
	Every int

	top     *TopSquad
	metrics *searchMetrics
	log     *zap.Logger

	nSquads int
	dump    atomic.Bool
}

// NewProgressReporter reports on top. metrics may be nil.
func NewProgressReporter(top *TopSquad, every int, metrics *searchMetrics, log *zap.Logger) *ProgressReporter {
	if log == nil {
		log = zap.NewNop()
	}
	return &ProgressReporter{Every: every, top: top, metrics: metrics, log: log}
}

// RequestDump asks for the incumbent report at the next notification. It is
// safe to call from another goroutine, e.g. a signal handler.
func (r *ProgressReporter) RequestDump() { r.dump.Store(true) }

// NotifyNewSquad implements Listener.
func (r *ProgressReporter) NotifyNewSquad(*Squad) {
	r.nSquads++
	if r.metrics != nil {
		r.metrics.observe(r.top)
	}
	if r.Every > 0 && r.nSquads%r.Every == 0 {
		r.log.Info("[progress] valid squads found",
			zap.Int("squads", r.nSquads),
			zap.Float64("bestMetric", r.top.TopMetric()),
			zap.Int("bestAt", r.top.TopSquadIndex()))
	}
	if r.dump.CompareAndSwap(true, false) {
		r.log.Info("[progress] current best squad\n" + r.top.Report())
	}
}

// DeadlineListener stops the search once its context is done.
type DeadlineListener struct {
	ctx context.Context
}

func NewDeadlineListener(ctx context.Context) DeadlineListener {
	return DeadlineListener{ctx: ctx}
}

func (DeadlineListener) NotifyNewSquad(*Squad) {}

// Stop implements Stopper.
func (d DeadlineListener) Stop() bool { return d.ctx.Err() != nil }
