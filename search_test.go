package main

import (
	"errors"
	"fmt"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder keeps the member IDs of every squad it is notified about and
// checks the squad invariants while the squad is live.
type recorder struct {
	t      *testing.T
	squads [][]int
	stopAt int
}

func (r *recorder) NotifyNewSquad(s *Squad) {
	r.t.Helper()
	verifySquad(r.t, s)
	ids := make([]int, 0, s.Len())
	for _, p := range s.OrganizedPlayers() {
		ids = append(ids, p.ID)
	}
	r.squads = append(r.squads, ids)
}

func (r *recorder) Stop() bool {
	return r.stopAt > 0 && len(r.squads) >= r.stopAt
}

// verifySquad checks that s is a full, legal squad.
func verifySquad(t *testing.T, s *Squad) {
	t.Helper()
	assert.True(t, s.PositionsFull(), "squad not full")
	assert.Equal(t, s.Capacity(), countPositions(s), "position counts")
	assert.LessOrEqual(t, s.TotalCost(), s.MaxCost(), "over budget")
	seen := map[int]bool{}
	teams := map[int]int{}
	for _, p := range s.Players() {
		assert.False(t, seen[p.ID], "duplicate player %d", p.ID)
		seen[p.ID] = true
		teams[p.Team]++
		assert.LessOrEqual(t, teams[p.Team], s.MaxPerTeam(), "team %d over cap", p.Team)
	}
}

// searchPool is a metric-sorted pool with one spare GK and one spare DEF
// over a full squad, every player from a different club.
func searchPool() []*Player {
	counts := Capacity{3, 6, 5, 3}
	var players []*Player
	id := 1
	for pos := GK; pos < numPositions; pos++ {
		for i := 0; i < counts[pos]; i++ {
			players = append(players, testPlayer(id, pos, id, 1, float64(100-id)))
			id++
		}
	}
	SortByMetric(players)
	return players
}

func TestFillSquadNotEnoughPlayers(t *testing.T) {
	pool := searchPool()[:14]
	rec := &recorder{t: t}
	opt := NewOptimizer(OptimizerConfig{})
	opt.Register(rec)

	err := opt.FillSquad(NewSquad(1000), pool)
	require.ErrorIs(t, err, ErrSquadNotFull)
	assert.Empty(t, rec.squads)
	assert.Equal(t, 0, opt.SquadsNotified())

	err = NewOptimizer(OptimizerConfig{}).FillSquad(NewSquad(1000), nil)
	assert.ErrorIs(t, err, ErrSquadNotFull)
}

func TestFillSquadEnumeratesEverySquad(t *testing.T) {
	rec := &recorder{t: t}
	opt := NewOptimizer(OptimizerConfig{})
	opt.Register(rec)
	squad := NewSquad(1000)

	err := opt.FillSquad(squad, searchPool())
	require.ErrorIs(t, err, ErrSquadNotFull)

	// C(3,2) GK pairs times C(6,5) DEF sets
	assert.Len(t, rec.squads, 18)
	assert.Equal(t, 18, opt.SquadsNotified())
	assert.Equal(t, 0, squad.Len(), "squad must be restored")

	distinct := map[string]bool{}
	for _, ids := range rec.squads {
		distinct[fmt.Sprint(ids)] = true
	}
	assert.Len(t, distinct, 18)
}

func TestFillSquadDeterministic(t *testing.T) {
	run := func() [][]int {
		rec := &recorder{t: t}
		opt := NewOptimizer(OptimizerConfig{})
		opt.Register(rec)
		_ = opt.FillSquad(NewSquad(1000), searchPool())
		return rec.squads
	}
	if diff := cmp.Diff(run(), run()); diff != "" {
		t.Errorf("search order differs between runs (-first +second):\n%s", diff)
	}
}

func TestFillSquadBudgetPrune(t *testing.T) {
	pool := searchPool()
	// the best GK becomes unaffordable
	pool[0].Price = 5
	require.Equal(t, GK, pool[0].Position)

	rec := &recorder{t: t}
	opt := NewOptimizer(OptimizerConfig{})
	opt.Register(rec)
	require.ErrorIs(t, opt.FillSquad(NewSquad(15), pool), ErrSquadNotFull)

	assert.Len(t, rec.squads, 6)
	for _, ids := range rec.squads {
		assert.NotContains(t, ids, pool[0].ID)
	}
}

func TestFillSquadStopper(t *testing.T) {
	rec := &recorder{t: t, stopAt: 2}
	opt := NewOptimizer(OptimizerConfig{})
	opt.Register(rec)
	squad := NewSquad(1000)

	err := opt.FillSquad(squad, searchPool())
	require.True(t, errors.Is(err, ErrSearchStopped), "got %v", err)
	assert.Len(t, rec.squads, 2)
	assert.Equal(t, 0, squad.Len(), "squad must be restored")
}

func TestFillSquadListenerOrder(t *testing.T) {
	var calls []string
	opt := NewOptimizer(OptimizerConfig{})
	opt.Register(listenerFunc(func(*Squad) { calls = append(calls, "a") }))
	opt.Register(listenerFunc(func(*Squad) { calls = append(calls, "b") }))
	_ = opt.FillSquad(NewSquad(1000), searchPool()[1:])
	require.NotEmpty(t, calls)
	for i := 0; i+1 < len(calls); i += 2 {
		assert.Equal(t, []string{"a", "b"}, calls[i:i+2])
	}
}

type listenerFunc func(*Squad)

func (f listenerFunc) NotifyNewSquad(s *Squad) { f(s) }

func TestFillSquadTransferPenaltyPrune(t *testing.T) {
	pool := searchPool()
	// current squad: every player but the best GK and the best DEF
	var members []*Player
	for _, p := range pool {
		if p.ID != 1 && p.ID != 4 {
			members = append(members, p)
		}
	}
	current := mustSquad(t, 1000, members...)

	rec := &recorder{t: t}
	free := 0
	opt := NewOptimizer(OptimizerConfig{
		CurrentSquad:  current,
		TransferCost:  100,
		SquadSize:     15,
		FreeTransfers: &free,
	})
	opt.Register(rec)
	_ = opt.FillSquad(NewSquad(1000), pool)

	require.NotEmpty(t, rec.squads)
	// a frame entered with a change already made only takes current
	// players, so the 10 squads holding both newcomers are cut
	assert.Len(t, rec.squads, 8)
	for _, ids := range rec.squads {
		assert.False(t, slices.Contains(ids, 1) && slices.Contains(ids, 4), "both newcomers in %v", ids)
	}
}

func TestFillSquadReusedOptimizer(t *testing.T) {
	rec := &recorder{t: t, stopAt: 1}
	opt := NewOptimizer(OptimizerConfig{})
	opt.Register(rec)

	expensive := searchPool()
	for _, p := range expensive {
		p.Price = 5
	}
	require.ErrorIs(t, opt.FillSquad(NewSquad(1000), expensive), ErrSearchStopped)
	require.Len(t, rec.squads, 1)

	// the second pool is cheaper: bounds and the stop flag start over
	rec.squads, rec.stopAt = nil, 0
	require.ErrorIs(t, opt.FillSquad(NewSquad(20), searchPool()), ErrSquadNotFull)
	assert.Len(t, rec.squads, 18)
	assert.Equal(t, 19, opt.SquadsNotified())
}
