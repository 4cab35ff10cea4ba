package main

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ── Candidate lists ─────────────────────────────────────────────────

// SortByMetric orders players by metric, highest first, keeping the input
// order among equal metrics. FillSquad requires this ordering.
func SortByMetric(players []*Player) {
	slices.SortStableFunc(players, byMetricDesc)
}

// TopNPlayers keeps every member of current plus the best n other players of
// the metric-sorted list, and returns them metric-sorted.
func TopNPlayers(sorted []*Player, n int, current *Squad) []*Player {
	result := make([]*Player, 0, n+currentLen(current))
	if current != nil {
		result = append(result, current.Players()...)
	}
	others := 0
	for _, p := range sorted {
		if others == n {
			break
		}
		if current != nil && current.HasPlayer(p) {
			continue
		}
		result = append(result, p)
		others++
	}
	SortByMetric(result)
	return result
}

// PlayersAboveMetric keeps every member of current plus every player whose
// metric exceeds minMetric, metric-sorted.
func PlayersAboveMetric(sorted []*Player, minMetric float64, current *Squad) []*Player {
	var result []*Player
	if current != nil {
		result = append(result, current.Players()...)
	}
	for _, p := range sorted {
		if p.Metric() <= minMetric {
			continue
		}
		if current != nil && current.HasPlayer(p) {
			continue
		}
		result = append(result, p)
	}
	SortByMetric(result)
	return result
}

func currentLen(s *Squad) int {
	if s == nil {
		return 0
	}
	return s.Len()
}

// ── Name lookup ─────────────────────────────────────────────────────

// ErrPlayerNotFound is returned when no player matches a name.
var ErrPlayerNotFound = errors.New("couldn't find player")

// foldName lower-cases s and strips diacritics so "Gündogan" matches "Gundogan".
func foldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(strings.TrimSpace(folded))
}

// FindByName returns the first player whose display name matches name,
// ignoring case and accents.
func FindByName(players []*Player, name string) (*Player, error) {
	want := foldName(name)
	for _, p := range players {
		if foldName(p.Name) == want {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
}

// BuildSquadFromNames assembles a squad from player names. The budget is
// the squad's value plus bank.
func BuildSquadFromNames(players []*Player, names []string, bank float64, capacity Capacity, maxPerTeam int) (*Squad, error) {
	squad := NewSquadWithLimits(1000, capacity, maxPerTeam)
	for _, name := range names {
		p, err := FindByName(players, name)
		if err != nil {
			return nil, err
		}
		if err := squad.TryAddPlayer(p); err != nil {
			return nil, fmt.Errorf("custom squad: %w", err)
		}
	}
	squad.SortPlayers()
	squad.SetMaxCost(bank + squad.TotalCost())
	return squad, nil
}

// ── Loading ─────────────────────────────────────────────────────────

// PlayerSource yields the candidate pool and the squad to improve on.
type PlayerSource interface {
	// Players returns every candidate sorted by descending metric.
	Players(ctx context.Context) ([]*Player, error)
	// CurrentSquad returns the existing squad, or nil when there is none.
	CurrentSquad(ctx context.Context, players []*Player) (*Squad, error)
}

// fplSource reads players and picks through a rawFetcher.
type fplSource struct {
	fetch      rawFetcher
	metric     MetricSource
	userID     int
	gameweek   int
	custom     CustomSquad
	capacity   Capacity
	maxPerTeam int
	log        *zap.Logger

	bootstrap string
	// picksGameweek is the gameweek the current squad was read from.
	picksGameweek int
}

func newFPLSource(fetch rawFetcher, cfg Config, log *zap.Logger) *fplSource {
	if log == nil {
		log = zap.NewNop()
	}
	return &fplSource{
		fetch:      fetch,
		metric:     cfg.MetricSource(),
		userID:     cfg.UserID,
		gameweek:   cfg.Gameweek,
		custom:     cfg.Squad,
		capacity:   DefaultCapacity,
		maxPerTeam: cfg.MaxPerTeam,
		log:        log,
	}
}

func (s *fplSource) Players(ctx context.Context) ([]*Player, error) {
	data, err := s.fetch.Bootstrap(ctx)
	if err != nil {
		return nil, err
	}
	s.bootstrap = data
	players, err := ParseBootstrap(data, s.metric)
	if err != nil {
		return nil, err
	}
	SortByMetric(players)
	s.log.Info("[load] players", zap.Int("count", len(players)), zap.String("metric", string(s.metric)))
	return players, nil
}

func (s *fplSource) CurrentSquad(ctx context.Context, players []*Player) (*Squad, error) {
	if len(s.custom.Names) > 0 {
		return BuildSquadFromNames(players, s.custom.Names, s.custom.Bank, s.capacity, s.maxPerTeam)
	}
	gameweek := s.gameweek
	switch f := s.fetch.(type) {
	case fileFetcher:
		if f.picksPath == "" {
			return nil, nil
		}
	default:
		if s.userID == 0 {
			return nil, nil
		}
		if gameweek == 0 {
			gw, err := ParseCurrentEvent(s.bootstrap)
			if err != nil {
				return nil, err
			}
			gameweek = gw
		}
	}
	data, err := s.fetch.Picks(ctx, s.userID, gameweek)
	if err != nil {
		return nil, err
	}
	s.picksGameweek = gameweek
	return ParsePicks(data, players, s.capacity, s.maxPerTeam)
}
