package main

import (
	"math"

	"go.uber.org/zap"
)

// DefaultCaptainMultiplier doubles the captain's points, as in FPL.
const DefaultCaptainMultiplier = 2.0

// TopSquadConfig holds the scoring parameters of the incumbent tracker.
type TopSquadConfig struct {
	FreeTransfers     int
	TransferCost      float64
	BenchPointValue   float64 // points a unit of money on the bench is worth
	CaptainMultiplier float64
}

// TopSquad is a Listener that keeps the best squad seen so far, scored by
// its best lineup minus the cost of transfers beyond the free ones.
type TopSquad struct {
	cfg          TopSquadConfig
	currentSquad *Squad

	topSquad    *Squad
	topMetric   float64
	nSquads     int
	nTriesToTop int

	log *zap.Logger
}

// NewTopSquad creates a tracker. current is the squad transfers are counted
// against; it starts as the incumbent. With a nil current there is no
// transfer penalty and no incumbent until the first notification.
func NewTopSquad(current *Squad, cfg TopSquadConfig, log *zap.Logger) *TopSquad {
	if log == nil {
		log = zap.NewNop()
	}
	t := &TopSquad{
		cfg:          cfg,
		currentSquad: current,
		topMetric:    math.Inf(-1),
		log:          log,
	}
	if current != nil {
		t.topSquad = current.Clone()
		t.topMetric = t.AdjustedMetric(current)
	}
	return t
}

// AdjustedMetric scores squad as seen by the tracker.
func (t *TopSquad) AdjustedMetric(squad *Squad) float64 {
	metric := squad.BestStarterLineup(t.cfg.CaptainMultiplier).TotalMetric(t.cfg.CaptainMultiplier)
	if t.currentSquad == nil {
		return metric
	}
	extra := squad.NumberOfChanges(t.currentSquad) - t.cfg.FreeTransfers
	return metric - math.Max(0, float64(extra))*t.cfg.TransferCost
}

func (t *TopSquad) benchMetric(squad *Squad) float64 {
	return squad.Bench(t.cfg.CaptainMultiplier).TotalMetric(1)
}

func (t *TopSquad) setTopSquad(squad *Squad, metric float64) {
	t.topSquad = squad.Clone()
	t.topMetric = metric
	t.nTriesToTop = t.nSquads
}

// NotifyNewSquad implements Listener.
func (t *TopSquad) NotifyNewSquad(squad *Squad) {
	t.nSquads++
	metric := t.AdjustedMetric(squad)
	switch {
	case t.topSquad == nil || metric > t.topMetric:
		t.setTopSquad(squad, metric)
		t.log.Info("[top] found a squad with a better metric",
			zap.Int("squad", t.nSquads), zap.Float64("metric", metric))
	case metric == t.topMetric:
		// same lineup score: pay for extra cost only with a better bench
		required := (squad.TotalCost() - t.topSquad.TotalCost()) * t.cfg.BenchPointValue
		if t.benchMetric(squad)-t.benchMetric(t.topSquad) > required {
			t.setTopSquad(squad, metric)
			t.log.Info("[top] found an equal squad with better value or bench",
				zap.Int("squad", t.nSquads), zap.Float64("metric", metric))
		}
	}
}

// TopSquad returns the incumbent, or nil if there is none yet.
func (t *TopSquad) TopSquad() *Squad { return t.topSquad }

// CurrentSquad returns the squad transfers are counted against (may be nil).
func (t *TopSquad) CurrentSquad() *Squad { return t.currentSquad }

// TopMetric returns the incumbent's adjusted metric.
func (t *TopSquad) TopMetric() float64 { return t.topMetric }

// SquadsChecked returns how many squads have been notified.
func (t *TopSquad) SquadsChecked() int { return t.nSquads }

// TopSquadIndex returns the notification count at which the incumbent was
// found; 0 means the starting squad is still the best.
func (t *TopSquad) TopSquadIndex() int { return t.nTriesToTop }

// ChangesForTop lists the transfers from the current squad to the incumbent.
func (t *TopSquad) ChangesForTop() Changes {
	if t.topSquad == nil {
		return nil
	}
	if t.currentSquad == nil {
		return t.topSquad.ChangesFrom(t.topSquad.newUnchecked())
	}
	return t.topSquad.ChangesFrom(t.currentSquad)
}

// Report renders the incumbent's lineup, bench, captain and required transfers.
func (t *TopSquad) Report() string {
	if t.topSquad == nil {
		return "No squad found yet.\n"
	}
	return FormatChangedSquad(t.topSquad, t.ChangesForTop(), t.cfg.CaptainMultiplier)
}
