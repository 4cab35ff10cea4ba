package main

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/zap"
)

// ── Listener protocol ───────────────────────────────────────────────

// Listener is notified synchronously, in registration order, every time the
// search completes a valid full squad. The squad is mutated again as soon as
// NotifyNewSquad returns: listeners must not modify it and must Clone it if
// they need it afterwards.
type Listener interface {
	NotifyNewSquad(squad *Squad)
}

// Stopper is implemented by listeners that may ask the search to end early.
// Stop is polled after each notification.
type Stopper interface {
	Stop() bool
}

var (
	// ErrSquadNotFull is the normal result of FillSquad: the subtree was
	// exhausted. Whether anything was found is known from the listeners.
	ErrSquadNotFull = errors.New("squad not full")
	// ErrSearchStopped is returned when a Stopper ended the search.
	ErrSearchStopped = errors.New("search stopped")
)

// DefaultSquadSize is the number of players in a full FPL squad.
const DefaultSquadSize = 15

// ── Optimizer ───────────────────────────────────────────────────────

// OptimizerConfig configures a search. Nil pointers fall back to defaults:
// FreeTransfers to SquadSize, MinMetric/MaxMetric to the bounds of the
// candidate list passed to FillSquad.
type OptimizerConfig struct {
	CurrentSquad  *Squad
	TransferCost  float64
	SquadSize     int
	FreeTransfers *int
	MinMetric     *float64
	MaxMetric     *float64
}

// Optimizer fills a squad by depth-first branch and bound over a metric-sorted
// candidate list and reports each full squad to its listeners.
type Optimizer struct {
	transferCost  float64
	squadSize     int
	currentSquad  *Squad
	freeTransfers int

	// configured bounds; nil means derive from each candidate pool
	cfgMinMetric *float64
	cfgMaxMetric *float64

	// bounds of the current FillSquad call
	minMetric    float64
	maxMetric    float64
	cheapestCost float64

	listeners []Listener
	stoppers  []Stopper
	notified  int
	stopped   bool

	log *zap.Logger
}

// OptimizerOption customizes an Optimizer.
type OptimizerOption func(*Optimizer)

// WithLogger sets the logger used for search lifecycle messages.
func WithLogger(log *zap.Logger) OptimizerOption {
	return func(o *Optimizer) { o.log = log }
}

// NewOptimizer creates an optimizer from cfg.
func NewOptimizer(cfg OptimizerConfig, opts ...OptimizerOption) *Optimizer {
	size := cfg.SquadSize
	if size <= 0 {
		size = DefaultSquadSize
	}
	free := size
	if cfg.FreeTransfers != nil {
		free = *cfg.FreeTransfers
	}
	o := &Optimizer{
		transferCost:  cfg.TransferCost,
		squadSize:     size,
		currentSquad:  cfg.CurrentSquad,
		freeTransfers: free,
		cfgMinMetric:  cfg.MinMetric,
		cfgMaxMetric:  cfg.MaxMetric,
		log:           zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Register subscribes l to every full squad found. Listeners that also
// implement Stopper can end the search.
func (o *Optimizer) Register(l Listener) {
	o.listeners = append(o.listeners, l)
	if s, ok := l.(Stopper); ok {
		o.stoppers = append(o.stoppers, s)
	}
}

// SquadsNotified returns how many full squads have been broadcast, summed
// over every FillSquad call.
func (o *Optimizer) SquadsNotified() int { return o.notified }

func (o *Optimizer) notify(squad *Squad) {
	o.notified++
	for _, l := range o.listeners {
		l.NotifyNewSquad(squad)
	}
	for _, s := range o.stoppers {
		if s.Stop() {
			o.stopped = true
		}
	}
}

// ── Bounds ──────────────────────────────────────────────────────────

// updateBounds derives the search bounds from players, keeping the ones set
// in OptimizerConfig.
func (o *Optimizer) updateBounds(players []*Player) {
	o.minMetric, o.maxMetric, o.cheapestCost = math.Inf(1), math.Inf(-1), math.Inf(1)
	for _, p := range players {
		o.minMetric = math.Min(o.minMetric, p.Metric())
		o.maxMetric = math.Max(o.maxMetric, p.Metric())
		o.cheapestCost = math.Min(o.cheapestCost, p.Price)
	}
	if o.cfgMinMetric != nil {
		o.minMetric = *o.cfgMinMetric
	}
	if o.cfgMaxMetric != nil {
		o.maxMetric = *o.cfgMaxMetric
	}
}

// skipStep reports whether adding p cannot lead to a useful full squad.
// nPlayers is the squad length before p is added.
func (o *Optimizer) skipStep(noNewPlayers bool, squad *Squad, nPlayers int, p *Player) bool {
	cost := squad.TotalCost() + p.Price
	// even the cheapest player in every remaining slot would overspend
	if left := o.squadSize - 1 - nPlayers; left > 0 &&
		(squad.MaxCost()-cost)/float64(left) <= o.cheapestCost {
		return true
	}
	if cost > squad.MaxCost() {
		return true
	}
	if noNewPlayers && o.currentSquad != nil && !o.currentSquad.HasPlayer(p) {
		return true
	}
	return false
}

// ── Search ──────────────────────────────────────────────────────────

// FillSquad searches every combination of players that completes squad and
// notifies listeners for each. players must be sorted by descending metric
// (see SortByMetric); the pruning bounds are unsound otherwise.
//
// The squad is returned to its original contents when FillSquad returns.
// The result is ErrSquadNotFull once the search space is exhausted, or
// ErrSearchStopped if a Stopper ended it.
func (o *Optimizer) FillSquad(squad *Squad, players []*Player) error {
	o.stopped = false
	o.updateBounds(players)
	o.log.Debug("[fill] start",
		zap.Int("candidates", len(players)),
		zap.Int("squadLen", squad.Len()),
		zap.Float64("minMetric", o.minMetric),
		zap.Float64("maxMetric", o.maxMetric),
		zap.Float64("cheapest", o.cheapestCost))

	err := o.fill(squad, players, o.maxMetric)
	o.log.Debug("[fill] done", zap.Int("notified", o.notified), zap.Bool("stopped", o.stopped))
	return err
}

func (o *Optimizer) fill(squad *Squad, players []*Player, maxMetric float64) error {
	noNewPlayers := false
	if o.currentSquad != nil {
		changesSoFar := squad.NumberOfChanges(o.currentSquad)
		noNewPlayers = changesSoFar > o.freeTransfers && maxMetric-o.minMetric < o.transferCost
	}

	nPlayers := squad.Len()
	if len(players) == 0 || nPlayers+len(players) < o.squadSize {
		return fmt.Errorf("%w: not enough players", ErrSquadNotFull)
	}

	for i, p := range players {
		if o.stopped {
			return ErrSearchStopped
		}
		if o.skipStep(noNewPlayers, squad, nPlayers, p) {
			continue
		}
		if err := squad.TryAddPlayer(p); err != nil {
			continue
		}

		if squad.PositionsFull() {
			o.notify(squad)
		} else if i+1 < len(players) {
			// sorted input: the next candidate bounds the remaining metrics
			_ = o.fill(squad, players[i+1:], players[i+1].Metric())
		}
		squad.RemovePlayer(p)
	}
	if o.stopped {
		return ErrSearchStopped
	}
	return ErrSquadNotFull
}
