package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlayer(id int, pos Position, team int, price, metric float64) *Player {
	return NewPlayer(id, fmt.Sprintf("p%d", id), pos, team, price, PlayerStats{ExpectedPoints: metric}, MetricExpectedPoints)
}

// fixturePlayers is a full 15-man squad, one player per club, all priced 1.
// Its best lineup is 1-3-5-2 (tied with 1-4-5-1) with 68 points before the
// captain bonus.
func fixturePlayers() []*Player {
	type row struct {
		pos    Position
		metric float64
	}
	rows := []row{
		{GK, 5}, {GK, 1},
		{DEF, 6}, {DEF, 5}, {DEF, 4}, {DEF, 3}, {DEF, 2},
		{MID, 9}, {MID, 8}, {MID, 7}, {MID, 6}, {MID, 5},
		{FWD, 10}, {FWD, 3}, {FWD, 2},
	}
	players := make([]*Player, len(rows))
	for i, r := range rows {
		players[i] = testPlayer(i+1, r.pos, i+1, 1, r.metric)
	}
	return players
}

func mustSquad(t *testing.T, budget float64, players ...*Player) *Squad {
	t.Helper()
	s := NewSquad(budget)
	for _, p := range players {
		require.NoError(t, s.TryAddPlayer(p), "adding %s", p.Name)
	}
	return s
}

func countPositions(s *Squad) Capacity {
	var c Capacity
	for _, p := range s.Players() {
		c[p.Position]++
	}
	return c
}

func TestSquadCaptainAndScore(t *testing.T) {
	s := mustSquad(t, 100,
		testPlayer(1, GK, 1, 1, 3),
		testPlayer(2, GK, 2, 1, 4),
		testPlayer(3, DEF, 3, 1, 5),
		testPlayer(4, MID, 4, 1, 12),
		testPlayer(5, MID, 5, 1, 7),
		testPlayer(6, MID, 6, 1, 8),
	)
	require.Equal(t, 4, s.Captain().ID)
	assert.InDelta(t, 3+4+5+7+8+2*12.0, s.TotalMetric(2.0), 1e-9)
	assert.InDelta(t, 3+4+5+7+8+3*12.0, s.TotalMetric(3.0), 1e-9)
}

func TestSquadCaptainTieKeepsFirst(t *testing.T) {
	s := mustSquad(t, 100,
		testPlayer(1, MID, 1, 1, 6),
		testPlayer(2, FWD, 2, 1, 9),
		testPlayer(3, DEF, 3, 1, 9),
	)
	assert.Equal(t, 2, s.Captain().ID)
	assert.Nil(t, NewSquad(100).Captain())
}

func TestSquadTeamCap(t *testing.T) {
	s := mustSquad(t, 100,
		testPlayer(1, MID, 7, 1, 1),
		testPlayer(2, MID, 7, 1, 1),
		testPlayer(3, DEF, 7, 1, 1),
	)
	err := s.TryAddPlayer(testPlayer(4, FWD, 7, 1, 1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTeamFull))
	assert.Contains(t, err.Error(), "Too many players from team: Crystal Palace. Already have: 3")
	assert.Equal(t, 3, s.Len())
}

func TestSquadRejections(t *testing.T) {
	t.Run("over budget leaves squad unchanged", func(t *testing.T) {
		first := testPlayer(1, MID, 1, 6, 1)
		s := mustSquad(t, 10, first)
		err := s.TryAddPlayer(testPlayer(2, MID, 2, 5, 1))
		require.ErrorIs(t, err, ErrTooExpensive)
		assert.Equal(t, []*Player{first}, s.Players())
		assert.Equal(t, []*Player{first}, s.PositionPlayers(MID))
	})
	t.Run("duplicate", func(t *testing.T) {
		p := testPlayer(1, MID, 1, 1, 1)
		s := mustSquad(t, 10, p)
		assert.ErrorIs(t, s.TryAddPlayer(testPlayer(1, MID, 2, 1, 1)), ErrDuplicatePlayer)
	})
	t.Run("position full", func(t *testing.T) {
		s := mustSquad(t, 100, testPlayer(1, GK, 1, 1, 1), testPlayer(2, GK, 2, 1, 1))
		var addErr *AddPlayerError
		err := s.TryAddPlayer(testPlayer(3, GK, 3, 1, 1))
		require.ErrorAs(t, err, &addErr)
		assert.Equal(t, ErrPositionFull, addErr.Kind)
	})
	t.Run("team checked before funds", func(t *testing.T) {
		s := mustSquad(t, 3, testPlayer(1, MID, 1, 1, 1), testPlayer(2, MID, 1, 1, 1), testPlayer(3, DEF, 1, 1, 1))
		assert.ErrorIs(t, s.TryAddPlayer(testPlayer(4, FWD, 1, 50, 1)), ErrTeamFull)
	})
}

func TestSquadMaxCostEpsilon(t *testing.T) {
	s := NewSquad(100)
	assert.InDelta(t, 100+Epsilon, s.MaxCost(), 1e-12)

	// 33.3+33.3+33.4 does not sum to exactly 100 in floating point
	s = mustSquad(t, 100,
		testPlayer(1, MID, 1, 33.3, 1),
		testPlayer(2, MID, 2, 33.3, 1),
		testPlayer(3, MID, 3, 33.4, 1),
	)
	assert.InDelta(t, Epsilon, s.LeftoverMoney(), 1e-9)

	s.SetMaxCost(50)
	assert.InDelta(t, 50+Epsilon, s.MaxCost(), 1e-12)
}

func TestSquadCapacityPanics(t *testing.T) {
	for _, c := range []Capacity{{2, 4, 5, 3}, {1, 5, 5, 3}, {2, 5, 5, 4}, {3, 5, 5, 3}} {
		assert.Panics(t, func() { NewSquadWithLimits(100, c, 3) }, "capacity %v", c)
	}
	assert.NotPanics(t, func() { NewSquadWithLimits(100, Capacity{2, 5, 5, 3}, 2) })
}

func TestSquadRemoveAndClone(t *testing.T) {
	players := fixturePlayers()
	s := mustSquad(t, 100, players...)
	require.True(t, s.PositionsFull())

	c := s.Clone()
	c.RemovePlayer(players[0])
	assert.Equal(t, 15, s.Len())
	assert.Equal(t, 14, c.Len())
	assert.True(t, s.HasPlayer(players[0]))
	assert.False(t, c.HasPlayer(players[0]))
	assert.Len(t, c.PositionPlayers(GK), 1)
	assert.Equal(t, s.MaxCost(), c.MaxCost())

	// removing an absent player is a no-op
	c.RemovePlayer(players[0])
	assert.Equal(t, 14, c.Len())

	require.NoError(t, c.TryAddPlayer(players[0]))
	assert.True(t, c.Equal(s))
}

func TestSquadEqualIgnoresOrder(t *testing.T) {
	players := fixturePlayers()
	a := mustSquad(t, 100, players...)
	reversed := make([]*Player, len(players))
	for i, p := range players {
		reversed[len(players)-1-i] = p
	}
	b := mustSquad(t, 100, reversed...)
	assert.True(t, a.Equal(b))
	assert.Equal(t, 0, a.NumberOfChanges(b))

	b.RemovePlayer(players[3])
	assert.False(t, a.Equal(b))
}

func TestSquadEqualWithTiedMetrics(t *testing.T) {
	first, second := testPlayer(1, MID, 1, 1, 5), testPlayer(2, MID, 2, 1, 5)
	gk := testPlayer(3, GK, 3, 1, 5)

	a := mustSquad(t, 100, gk, first, second)
	b := mustSquad(t, 100, second, gk, first)
	assert.True(t, a.Equal(b))
	assert.True(t, b.Equal(a))
	assert.Equal(t, []int{3, 1, 2}, ids(b.OrganizedPlayers()))

	// lineup picks still keep insertion order among equals
	assert.Equal(t, []int{2, 1}, ids(b.PositionStarters(MID, 2)))
}

func TestSquadClonePanicsOnBrokenSquad(t *testing.T) {
	s := NewSquad(1)
	s.forceAddPlayer(testPlayer(1, MID, 1, 5, 1))
	assert.Panics(t, func() { s.Clone() })

	ok := mustSquad(t, 100, fixturePlayers()...)
	assert.True(t, ok.Clone().Equal(ok))
}

func TestSquadBestStarterLineup(t *testing.T) {
	players := fixturePlayers()
	s := mustSquad(t, 100, players...)

	lineup := s.BestStarterLineup(2)
	require.Equal(t, LineupSize, lineup.Len())
	assert.Equal(t, Capacity{1, 3, 5, 2}, countPositions(lineup), "first of the tied formations")
	assert.InDelta(t, 78.0, lineup.TotalMetric(2), 1e-9)
	assert.Equal(t, 13, lineup.Captain().ID)

	bench := s.Bench(2)
	require.Equal(t, 4, bench.Len())
	for _, p := range bench.Players() {
		assert.False(t, lineup.HasPlayer(p), "%s is on both lineup and bench", p.Name)
	}
	assert.InDelta(t, 1+3+2+2.0, bench.TotalMetric(1), 1e-9)
}

func TestSquadPositionStarters(t *testing.T) {
	s := mustSquad(t, 100, fixturePlayers()...)
	got := s.PositionStarters(MID, 2)
	require.Len(t, got, 2)
	assert.Equal(t, []int{8, 9}, []int{got[0].ID, got[1].ID})
	assert.Len(t, s.PositionStarters(FWD, 10), 3)
}

func TestSquadChanges(t *testing.T) {
	gk, def, mid, fwd := testPlayer(1, GK, 1, 1, 4), testPlayer(2, DEF, 2, 1, 3), testPlayer(3, MID, 3, 1, 5), testPlayer(4, FWD, 4, 1, 6)
	newDef, newMid := testPlayer(5, DEF, 5, 1, 3.5), testPlayer(6, MID, 6, 1, 5.5)

	before := mustSquad(t, 100, gk, def, mid, fwd)
	after := mustSquad(t, 100, gk, newDef, newMid, fwd)

	assert.Equal(t, 2, after.NumberOfChanges(before))
	assert.Equal(t, 2, before.NumberOfChanges(after))

	changes := after.ChangesFrom(before)
	require.Len(t, changes, 2)
	assert.Equal(t, []*Player{def, mid}, changes.Out())
	assert.Equal(t, []*Player{newDef, newMid}, changes.In())

	lines := strings.Split(strings.TrimSpace(changes.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Out: p2 (score 3.00) -> In: p5 (score 3.50)", lines[0])
	assert.Equal(t, "Out: p3 (score 5.00) -> In: p6 (score 5.50)", lines[1])

	assert.Empty(t, before.ChangesFrom(before.Clone()))
}

func TestSquadChangesUnpaired(t *testing.T) {
	gk := testPlayer(1, GK, 1, 1, 4)
	mid := testPlayer(2, MID, 2, 1, 5)
	changes := mustSquad(t, 100, gk, mid).ChangesFrom(mustSquad(t, 100, gk))
	require.Len(t, changes, 1)
	assert.Nil(t, changes[0].Out)
	assert.Equal(t, "Out: - -> In: p2 (score 5.00)", changes[0].String())
}
