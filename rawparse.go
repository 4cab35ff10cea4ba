package main

import (
	"errors"
	"fmt"
	"math"

	"github.com/tidwall/gjson"
)

// ── bootstrap-static ────────────────────────────────────────────────

// ParseBootstrap reads every element of an FPL bootstrap-static response
// into players, deriving each metric from src. The result is in API order.
func ParseBootstrap(dataJSON string, src MetricSource) ([]*Player, error) {
	if !gjson.Valid(dataJSON) {
		return nil, errors.New("bootstrap: invalid JSON")
	}
	elements := gjson.Get(dataJSON, "elements")
	if !elements.IsArray() {
		return nil, errors.New("bootstrap: missing elements array")
	}

	players := make([]*Player, 0, len(elements.Array()))
	var parseErr error
	elements.ForEach(func(_, v gjson.Result) bool {
		p, err := parseElement(v, src)
		if err != nil {
			parseErr = err
			return false
		}
		players = append(players, p)
		return true
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return players, nil
}

func parseElement(v gjson.Result, src MetricSource) (*Player, error) {
	id := int(v.Get("id").Int())
	pos, ok := parsePosition(v.Get("element_type").Int())
	if !ok {
		return nil, fmt.Errorf("bootstrap: element %d: unknown element_type %s", id, v.Get("element_type").Raw)
	}
	health := 1.0
	if c := v.Get("chance_of_playing_next_round"); c.Exists() && c.Type != gjson.Null {
		health = c.Float() / 100
	}
	stats := PlayerStats{
		Form:           v.Get("form").Float(),
		Health:         health,
		TotalPoints:    int(v.Get("total_points").Int()),
		ExpectedPoints: v.Get("ep_next").Float(),
	}
	return NewPlayer(
		id,
		v.Get("web_name").String(),
		pos,
		int(v.Get("team").Int()),
		v.Get("now_cost").Float()/10,
		stats,
		src,
	), nil
}

// ParseCurrentEvent returns the id of the gameweek flagged is_current, or
// the one flagged is_next before the season starts.
func ParseCurrentEvent(dataJSON string) (int, error) {
	if id := gjson.Get(dataJSON, "events.#(is_current==true).id"); id.Exists() {
		return int(id.Int()), nil
	}
	if id := gjson.Get(dataJSON, "events.#(is_next==true).id"); id.Exists() {
		return int(id.Int()), nil
	}
	return 0, errors.New("bootstrap: no current gameweek in events")
}

// ── entry picks ─────────────────────────────────────────────────────

// ParsePicks builds the squad described by an entry picks response. The
// budget becomes the money in the bank plus the squad's value.
func ParsePicks(picksJSON string, players []*Player, capacity Capacity, maxPerTeam int) (*Squad, error) {
	if !gjson.Valid(picksJSON) {
		return nil, errors.New("picks: invalid JSON")
	}
	picked := make(map[int]bool)
	gjson.Get(picksJSON, "picks").ForEach(func(_, v gjson.Result) bool {
		picked[int(v.Get("element").Int())] = true
		return true
	})
	if len(picked) == 0 {
		return nil, errors.New("picks: no picks in response")
	}

	squad := NewSquadWithLimits(math.Inf(1), capacity, maxPerTeam)
	for _, p := range players {
		if !picked[p.ID] {
			continue
		}
		if err := squad.TryAddPlayer(p); err != nil {
			return nil, fmt.Errorf("picks: add %s: %w", p.Name, err)
		}
	}
	if squad.Len() != len(picked) {
		return nil, fmt.Errorf("picks: found %d of %d picked players", squad.Len(), len(picked))
	}

	bank := gjson.Get(picksJSON, "entry_history.bank").Float() / 10
	squad.SetMaxCost(bank + squad.TotalCost())
	return squad, nil
}
