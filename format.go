package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// PlayerSummary is the serialized view of a player.
type PlayerSummary struct {
	ID       int     `json:"id" yaml:"id"`
	Name     string  `json:"name" yaml:"name"`
	Position string  `json:"position" yaml:"position"`
	Team     string  `json:"team" yaml:"team"`
	Price    float64 `json:"price" yaml:"price"`
	Metric   float64 `json:"metric" yaml:"metric"`
}

// TransferSummary is the serialized view of a Transfer.
type TransferSummary struct {
	Out *PlayerSummary `json:"out,omitempty" yaml:"out,omitempty"`
	In  *PlayerSummary `json:"in,omitempty" yaml:"in,omitempty"`
}

// Result is the outcome of one optimization run.
type Result struct {
	Metric        float64           `json:"metric" yaml:"metric"`
	Cost          float64           `json:"cost" yaml:"cost"`
	Bank          float64           `json:"bank" yaml:"bank"`
	SquadsChecked int               `json:"squadsChecked" yaml:"squadsChecked"`
	FoundAt       int               `json:"foundAt" yaml:"foundAt"`
	Stopped       bool              `json:"stopped,omitempty" yaml:"stopped,omitempty"`
	Captain       PlayerSummary     `json:"captain" yaml:"captain"`
	Lineup        []PlayerSummary   `json:"lineup" yaml:"lineup"`
	Bench         []PlayerSummary   `json:"bench" yaml:"bench"`
	Transfers     []TransferSummary `json:"transfers" yaml:"transfers"`
	TimeMs        int64             `json:"timeMs" yaml:"timeMs"`

	// Report is the human-readable rendering; not serialized.
	Report string `json:"-" yaml:"-"`

	changes Changes
}

func summarize(p *Player) PlayerSummary {
	return PlayerSummary{
		ID:       p.ID,
		Name:     p.Name,
		Position: p.Position.String(),
		Team:     TeamName(p.Team),
		Price:    p.Price,
		Metric:   p.Metric(),
	}
}

func summarizeAll(players []*Player) []PlayerSummary {
	out := make([]PlayerSummary, 0, len(players))
	for _, p := range players {
		out = append(out, summarize(p))
	}
	return out
}

// newResult describes the incumbent of top.
func newResult(top *TopSquad, captainMultiplier float64, elapsed time.Duration) *Result {
	squad := top.TopSquad()
	lineup := squad.BestStarterLineup(captainMultiplier)
	changes := top.ChangesForTop()

	r := &Result{
		Metric:        top.TopMetric(),
		Cost:          squad.TotalCost(),
		Bank:          squad.LeftoverMoney() - Epsilon,
		SquadsChecked: top.SquadsChecked(),
		FoundAt:       top.TopSquadIndex(),
		Captain:       summarize(lineup.Captain()),
		Lineup:        summarizeAll(lineup.OrganizedPlayers()),
		Bench:         summarizeAll(squad.Complement(lineup).OrganizedPlayers()),
		Transfers:     make([]TransferSummary, 0, len(changes)),
		TimeMs:        elapsed.Milliseconds(),
		Report:        top.Report(),
		changes:       changes,
	}
	for _, t := range changes {
		var ts TransferSummary
		if t.Out != nil {
			s := summarize(t.Out)
			ts.Out = &s
		}
		if t.In != nil {
			s := summarize(t.In)
			ts.In = &s
		}
		r.Transfers = append(r.Transfers, ts)
	}
	return r
}

// FormatChangedSquad renders a squad's lineup, bench, captain and the
// transfers that lead to it.
func FormatChangedSquad(squad *Squad, changes Changes, captainMultiplier float64) string {
	lineup := squad.BestStarterLineup(captainMultiplier)
	bench := squad.Complement(lineup)
	captain := lineup.Captain()

	var b strings.Builder
	b.WriteString("Changed Squad:\n")
	fmt.Fprintf(&b, "  Lineup:  %s\n", joinNames(lineup.OrganizedPlayers()))
	fmt.Fprintf(&b, "  Bench:   %s\n", joinNames(bench.OrganizedPlayers()))
	fmt.Fprintf(&b, "  Captain: %s, metric: %.2f\n", captain.Name, captain.Metric())
	fmt.Fprintf(&b, "  Metric:  %.2f, cost: %.2f\n", lineup.TotalMetric(captainMultiplier), squad.TotalCost())
	b.WriteString("\n  Changes needed:\n")
	if len(changes) == 0 {
		b.WriteString("    none\n")
	}
	for _, t := range changes {
		fmt.Fprintf(&b, "    %s\n", t)
	}
	return b.String()
}

func joinNames(players []*Player) string {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	return strings.Join(names, " ")
}

// writeResult prints r in the requested format.
func writeResult(w io.Writer, r *Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintf(w, "%s\nSquads checked: %d, best found at: %d, metric: %.2f, time: %.1fs\n",
			r.Report, r.SquadsChecked, r.FoundAt, r.Metric, float64(r.TimeMs)/1000)
		return err
	}
}
