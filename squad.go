package main

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
)

// Epsilon pads the budget ceiling so that float rounding in summed prices
// never rejects an exactly affordable squad.
const Epsilon = 1e-4

// DefaultMaxPerTeam is the number of players a squad may hold from one club.
const DefaultMaxPerTeam = 3

// LineupSize is the number of starters picked from a full squad.
const LineupSize = 11

// Capacity holds the number of slots per position, indexed by Position.
type Capacity [numPositions]int

// DefaultCapacity is the FPL 15-man squad: 2 GK, 5 DEF, 5 MID, 3 FWD.
var DefaultCapacity = Capacity{2, 5, 5, 3}

// Total returns the squad size the capacity describes.
func (c Capacity) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Formations lists every legal starting lineup as GK/DEF/MID/FWD counts.
var Formations = []Capacity{
	{1, 3, 4, 3},
	{1, 4, 3, 3},
	{1, 5, 2, 3},
	{1, 3, 5, 2},
	{1, 4, 4, 2},
	{1, 5, 3, 2},
	{1, 5, 4, 1},
	{1, 4, 5, 1},
}

// ── Errors ──────────────────────────────────────────────────────────

var (
	ErrTeamFull        = errors.New("team spots full")
	ErrDuplicatePlayer = errors.New("duplicate player")
	ErrTooExpensive    = errors.New("too expensive")
	ErrPositionFull    = errors.New("position full")
)

// AddPlayerError explains why TryAddPlayer rejected a player. Kind is one of
// the Err* sentinels and is reachable through errors.Is.
type AddPlayerError struct {
	Kind   error
	Reason string
}

func (e *AddPlayerError) Error() string { return e.Reason }
func (e *AddPlayerError) Unwrap() error { return e.Kind }

// ── Squad ───────────────────────────────────────────────────────────

// Squad is a budget-capped collection of players with fixed per-position
// capacities and a per-club cap. Between calls it never holds a duplicate,
// an over-full position, too many players from one club, or more total cost
// than MaxCost.
type Squad struct {
	maxCost    float64
	capacity   Capacity
	maxPerTeam int
	positions  [numPositions][]*Player
	players    []*Player
}

// NewSquad creates an empty 15-man squad with the given budget.
func NewSquad(maxCost float64) *Squad {
	return NewSquadWithLimits(maxCost, DefaultCapacity, DefaultMaxPerTeam)
}

// NewSquadWithLimits creates an empty squad with a custom club cap. The
// lineup selection only knows the Formations of a DefaultCapacity squad, so
// any other capacity panics.
func NewSquadWithLimits(maxCost float64, capacity Capacity, maxPerTeam int) *Squad {
	if capacity != DefaultCapacity {
		panic(fmt.Sprintf("squad capacity %v does not match the lineup formations (want %v)", capacity, DefaultCapacity))
	}
	s := &Squad{
		capacity:   capacity,
		maxPerTeam: maxPerTeam,
		players:    make([]*Player, 0, capacity.Total()),
	}
	for pos := GK; pos < numPositions; pos++ {
		s.positions[pos] = make([]*Player, 0, capacity[pos])
	}
	s.SetMaxCost(maxCost)
	return s
}

// newUnchecked builds a container used for lineups and benches; it shares
// the parent's limits and is only ever filled through forceAddPlayer.
func (s *Squad) newUnchecked() *Squad {
	c := &Squad{
		maxCost:    s.maxCost,
		capacity:   s.capacity,
		maxPerTeam: s.maxPerTeam,
	}
	return c
}

func (s *Squad) MaxCost() float64 { return s.maxCost }

// SetMaxCost sets the budget ceiling, padded by Epsilon.
func (s *Squad) SetMaxCost(maxCost float64) { s.maxCost = maxCost + Epsilon }

func (s *Squad) Capacity() Capacity { return s.capacity }
func (s *Squad) MaxPerTeam() int    { return s.maxPerTeam }

// Size is the number of players a full squad holds.
func (s *Squad) Size() int { return s.capacity.Total() }

func (s *Squad) Len() int { return len(s.players) }

// Players returns the members in insertion order. The slice must not be modified.
func (s *Squad) Players() []*Player { return s.players }

// PositionPlayers returns the members of one position. The slice must not be modified.
func (s *Squad) PositionPlayers(pos Position) []*Player { return s.positions[pos] }

func (s *Squad) TotalCost() float64 {
	total := 0.0
	for _, p := range s.players {
		total += p.Price
	}
	return total
}

func (s *Squad) LeftoverMoney() float64 { return s.maxCost - s.TotalCost() }

func (s *Squad) HasPlayer(p *Player) bool {
	return slices.ContainsFunc(s.players, func(q *Player) bool { return q.ID == p.ID })
}

func (s *Squad) PlayersFromTeam(team int) int {
	n := 0
	for _, p := range s.players {
		if p.Team == team {
			n++
		}
	}
	return n
}

// PositionsFull reports whether every position is at capacity.
func (s *Squad) PositionsFull() bool {
	return len(s.players) == s.capacity.Total()
}

// ── Mutation ────────────────────────────────────────────────────────

// TryAddPlayer validates p against the club cap, duplicates, the budget and
// the position capacity, in that order, and adds it if all pass.
func (s *Squad) TryAddPlayer(p *Player) error {
	if n := s.PlayersFromTeam(p.Team); n >= s.maxPerTeam {
		return &AddPlayerError{ErrTeamFull, fmt.Sprintf(
			"Too many players from team: %s. Already have: %d", TeamName(p.Team), n)}
	}
	if s.HasPlayer(p) {
		return &AddPlayerError{ErrDuplicatePlayer, fmt.Sprintf(
			"Player %s is already in the squad", p.Name)}
	}
	if total := s.TotalCost(); p.Price+total > s.maxCost {
		return &AddPlayerError{ErrTooExpensive, fmt.Sprintf(
			"Not enough funds to add %s who costs %.2f and you have %.2f available.",
			p.Name, p.Price, s.maxCost-total)}
	}
	if group := s.positions[p.Position]; len(group) >= s.capacity[p.Position] {
		return &AddPlayerError{ErrPositionFull, fmt.Sprintf(
			"Cannot add %s, as there are too many %s: %d", p.Name, p.Position, len(group))}
	}
	s.forceAddPlayer(p)
	return nil
}

func (s *Squad) forceAddPlayer(p *Player) {
	s.players = append(s.players, p)
	s.positions[p.Position] = append(s.positions[p.Position], p)
}

// RemovePlayer drops the player with p's ID. It is a no-op when absent.
func (s *Squad) RemovePlayer(p *Player) {
	if !s.HasPlayer(p) {
		return
	}
	byID := func(q *Player) bool { return q.ID == p.ID }
	s.players = slices.DeleteFunc(s.players, byID)
	for pos := GK; pos < numPositions; pos++ {
		s.positions[pos] = slices.DeleteFunc(s.positions[pos], byID)
	}
}

// SortPlayers orders every position group by metric, highest first.
func (s *Squad) SortPlayers() {
	for pos := GK; pos < numPositions; pos++ {
		slices.SortStableFunc(s.positions[pos], byMetricDesc)
	}
}

func byMetricDesc(a, b *Player) int {
	return cmp.Compare(b.Metric(), a.Metric())
}

// Clone returns an independent squad with the same limits and members. Every
// member is added again through TryAddPlayer; a squad that fails its own
// checks panics.
func (s *Squad) Clone() *Squad {
	c := NewSquadWithLimits(0, s.capacity, s.maxPerTeam)
	c.maxCost = s.maxCost
	for _, p := range s.players {
		if err := c.TryAddPlayer(p); err != nil {
			panic(fmt.Sprintf("clone: %v", err))
		}
	}
	return c
}

// ── Scoring ─────────────────────────────────────────────────────────

// Captain returns the member with the highest metric; the earliest added
// wins ties. It returns nil for an empty squad.
func (s *Squad) Captain() *Player {
	var captain *Player
	for _, p := range s.players {
		if captain == nil || p.Metric() > captain.Metric() {
			captain = p
		}
	}
	return captain
}

// TotalMetric sums member metrics with the captain's multiplied.
func (s *Squad) TotalMetric(captainMultiplier float64) float64 {
	captain := s.Captain()
	total := 0.0
	for _, p := range s.players {
		if p.ID == captain.ID {
			total += captainMultiplier * p.Metric()
		} else {
			total += p.Metric()
		}
	}
	return total
}

// PositionStarters returns the best n players of pos by metric. Ties keep
// the group's current order.
func (s *Squad) PositionStarters(pos Position, n int) []*Player {
	starters := slices.Clone(s.positions[pos])
	slices.SortStableFunc(starters, byMetricDesc)
	if n < len(starters) {
		starters = starters[:n]
	}
	return starters
}

// BestStarterLineup tries every formation and returns the lineup with the
// highest TotalMetric. The first formation wins ties.
func (s *Squad) BestStarterLineup(captainMultiplier float64) *Squad {
	var best *Squad
	bestMetric := 0.0
	for _, f := range Formations {
		lineup := s.newUnchecked()
		for pos := GK; pos < numPositions; pos++ {
			for _, p := range s.PositionStarters(pos, f[pos]) {
				lineup.forceAddPlayer(p)
			}
		}
		if m := lineup.TotalMetric(captainMultiplier); best == nil || m > bestMetric {
			best, bestMetric = lineup, m
		}
	}
	return best
}

// Bench returns the members left out of the best lineup.
func (s *Squad) Bench(captainMultiplier float64) *Squad {
	return s.Complement(s.BestStarterLineup(captainMultiplier))
}

// Complement returns the members that are not part of sub.
func (s *Squad) Complement(sub *Squad) *Squad {
	bench := s.newUnchecked()
	for _, p := range s.players {
		if !sub.HasPlayer(p) {
			bench.forceAddPlayer(p)
		}
	}
	return bench
}

// ── Comparison ──────────────────────────────────────────────────────

// OrganizedPlayers lists members by position, then metric descending, then
// ID. The order does not depend on insertion order.
func (s *Squad) OrganizedPlayers() []*Player {
	out := make([]*Player, 0, len(s.players))
	for pos := GK; pos < numPositions; pos++ {
		group := slices.Clone(s.positions[pos])
		slices.SortFunc(group, func(a, b *Player) int {
			return cmp.Or(byMetricDesc(a, b), cmp.Compare(a.ID, b.ID))
		})
		out = append(out, group...)
	}
	return out
}

// Equal compares the canonical ordering of member IDs; insertion order is ignored.
func (s *Squad) Equal(other *Squad) bool {
	return slices.EqualFunc(s.OrganizedPlayers(), other.OrganizedPlayers(), SamePlayer)
}

// NumberOfChanges counts members of s that other does not hold.
func (s *Squad) NumberOfChanges(other *Squad) int {
	n := 0
	for _, p := range s.players {
		if !other.HasPlayer(p) {
			n++
		}
	}
	return n
}

func (s *Squad) String() string {
	return fmt.Sprintf("Squad with metric: %.2f, cost: %.2f", s.TotalMetric(DefaultCaptainMultiplier), s.TotalCost())
}
