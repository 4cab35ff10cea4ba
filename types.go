package main

import "fmt"

// Position is the squad slot category a player occupies.
type Position int

const (
	GK Position = iota
	DEF
	MID
	FWD
	numPositions
)

var positionNames = [numPositions]string{"GK", "DEF", "MID", "FWD"}

func (p Position) String() string {
	if p < 0 || p >= numPositions {
		return "UNKNOWN"
	}
	return positionNames[p]
}

// parsePosition maps FPL element_type (1..4) to a Position.
func parsePosition(elementType int64) (Position, bool) {
	switch elementType {
	case 1:
		return GK, true
	case 2:
		return DEF, true
	case 3:
		return MID, true
	case 4:
		return FWD, true
	}
	return 0, false
}

// MetricSource selects which externally supplied statistic becomes a player's metric.
type MetricSource string

const (
	MetricExpectedPoints MetricSource = "expected_points"
	MetricTotalPoints    MetricSource = "total_points"
	MetricFormHealth     MetricSource = "form_health"
)

func parseMetricSource(s string) (MetricSource, error) {
	switch MetricSource(s) {
	case MetricExpectedPoints, MetricTotalPoints, MetricFormHealth:
		return MetricSource(s), nil
	case "":
		return MetricExpectedPoints, nil
	}
	return "", fmt.Errorf("unknown metric source %q", s)
}

// Player is one selectable candidate. All fields are fixed after construction
// except the derived metric.
type Player struct {
	ID             int
	Name           string
	Position       Position
	Team           int
	Price          float64
	Form           float64
	Health         float64 // chance of playing, 0..1
	TotalPoints    int
	ExpectedPoints float64

	metric float64
}

// NewPlayer builds a player and derives its metric from src.
func NewPlayer(id int, name string, pos Position, team int, price float64, stats PlayerStats, src MetricSource) *Player {
	p := &Player{
		ID:             id,
		Name:           name,
		Position:       pos,
		Team:           team,
		Price:          price,
		Form:           stats.Form,
		Health:         stats.Health,
		TotalPoints:    stats.TotalPoints,
		ExpectedPoints: stats.ExpectedPoints,
	}
	p.UpdateMetric(src)
	return p
}

// PlayerStats carries the raw statistics a metric can be derived from.
type PlayerStats struct {
	Form           float64
	Health         float64
	TotalPoints    int
	ExpectedPoints float64
}

// Metric returns the player's desirability score.
func (p *Player) Metric() float64 { return p.metric }

// SetMetric overrides the derived metric with an externally computed value.
func (p *Player) SetMetric(m float64) { p.metric = m }

// UpdateMetric recomputes the metric from the player's statistics.
func (p *Player) UpdateMetric(src MetricSource) {
	switch src {
	case MetricTotalPoints:
		p.metric = float64(p.TotalPoints)
	case MetricFormHealth:
		p.metric = p.Form * p.Health
	default:
		p.metric = p.ExpectedPoints
	}
}

// SamePlayer reports whether a and b are the same candidate. Identity is the ID alone.
func SamePlayer(a, b *Player) bool {
	return a.ID == b.ID
}

func (p *Player) String() string {
	return fmt.Sprintf("%s, form: %.2f, price: %.2f, position: %s, team: %s, id: %d, health: %.2f, points: %d, metric: %.2f",
		p.Name, p.Form, p.Price, p.Position, TeamName(p.Team), p.ID, p.Health, p.TotalPoints, p.metric)
}
