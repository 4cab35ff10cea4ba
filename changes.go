package main

import (
	"fmt"
	"strings"
)

// Transfer pairs an outgoing player with the incoming player of the same position.
// One side is nil only when the two squads differ in size for that position.
type Transfer struct {
	Out *Player `json:"-" yaml:"-"`
	In  *Player `json:"-" yaml:"-"`
}

func (t Transfer) String() string {
	return fmt.Sprintf("Out: %s -> In: %s", describeScore(t.Out), describeScore(t.In))
}

func describeScore(p *Player) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%s (score %.2f)", p.Name, p.Metric())
}

// Changes is the set of transfers that turn one squad into another.
type Changes []Transfer

// ChangesFrom lists the transfers needed to go from other to s: players only
// in other go out, players only in s come in. Pairs are matched per position
// in canonical (metric descending) order.
func (s *Squad) ChangesFrom(other *Squad) Changes {
	var changes Changes
	for pos := GK; pos < numPositions; pos++ {
		var outs, ins []*Player
		for _, p := range other.PositionStarters(pos, len(other.positions[pos])) {
			if !s.HasPlayer(p) {
				outs = append(outs, p)
			}
		}
		for _, p := range s.PositionStarters(pos, len(s.positions[pos])) {
			if !other.HasPlayer(p) {
				ins = append(ins, p)
			}
		}
		for i := 0; i < max(len(outs), len(ins)); i++ {
			var t Transfer
			if i < len(outs) {
				t.Out = outs[i]
			}
			if i < len(ins) {
				t.In = ins[i]
			}
			changes = append(changes, t)
		}
	}
	return changes
}

// Out returns the outgoing players, skipping unpaired slots.
func (c Changes) Out() []*Player {
	var out []*Player
	for _, t := range c {
		if t.Out != nil {
			out = append(out, t.Out)
		}
	}
	return out
}

// In returns the incoming players, skipping unpaired slots.
func (c Changes) In() []*Player {
	var in []*Player
	for _, t := range c {
		if t.In != nil {
			in = append(in, t.In)
		}
	}
	return in
}

func (c Changes) String() string {
	var b strings.Builder
	for _, t := range c {
		b.WriteString(t.String())
		b.WriteByte('\n')
	}
	return b.String()
}
