package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// ErrNoFeasibleSquad means the search never completed a valid squad.
var ErrNoFeasibleSquad = errors.New("no feasible squad exists under current constraints")

// runHooks lets the caller attach optional collaborators to a run.
type runHooks struct {
	metrics *searchMetrics
	// onReporter receives the progress reporter before the search starts.
	onReporter func(*ProgressReporter)
}

// runOptimize loads the candidates, runs the search and describes the best
// squad found. The search ends early when ctx is done.
func runOptimize(ctx context.Context, cfg Config, source PlayerSource, log *zap.Logger, hooks runHooks) (*Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	players, err := source.Players(ctx)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	current, err := source.CurrentSquad(ctx, players)
	if err != nil {
		return nil, fmt.Errorf("load current squad: %w", err)
	}

	var candidates []*Player
	if cfg.MinPlayerMetric != nil {
		candidates = PlayersAboveMetric(players, *cfg.MinPlayerMetric, current)
	} else {
		candidates = TopNPlayers(players, cfg.TopNPlayers, current)
	}

	budget := cfg.Budget
	if current != nil {
		budget = current.MaxCost() - Epsilon
		log.Info("[init] current squad", zap.Float64("cost", current.TotalCost()),
			zap.Float64("bank", current.LeftoverMoney()-Epsilon))
	}
	squad := NewSquadWithLimits(budget, DefaultCapacity, cfg.MaxPerTeam)

	freeTransfers := cfg.FreeTransfers
	opt := NewOptimizer(OptimizerConfig{
		CurrentSquad:  current,
		TransferCost:  cfg.TransferCost,
		SquadSize:     squad.Size(),
		FreeTransfers: &freeTransfers,
	}, WithLogger(log))

	top := NewTopSquad(current, cfg.TopSquadConfig(), log)
	reporter := NewProgressReporter(top, cfg.ProgressEvery, hooks.metrics, log)
	if hooks.onReporter != nil {
		hooks.onReporter(reporter)
	}
	opt.Register(top)
	opt.Register(reporter)
	opt.Register(NewDeadlineListener(ctx))

	log.Info("[init] searching", zap.Int("candidates", len(candidates)), zap.Float64("budget", budget))
	start := time.Now()
	err = opt.FillSquad(squad, candidates)
	elapsed := time.Since(start)

	stopped := errors.Is(err, ErrSearchStopped)
	if !stopped && !errors.Is(err, ErrSquadNotFull) {
		return nil, err
	}
	if opt.SquadsNotified() == 0 {
		return nil, ErrNoFeasibleSquad
	}
	log.Info("[done] search finished",
		zap.Int("squads", top.SquadsChecked()),
		zap.Int("bestAt", top.TopSquadIndex()),
		zap.Float64("metric", top.TopMetric()),
		zap.Bool("stopped", stopped),
		zap.Duration("elapsed", elapsed))

	r := newResult(top, cfg.CaptainMultiplier, elapsed)
	r.Stopped = stopped
	return r, nil
}

// submitTransfers logs in and realizes the result's transfers for gameweek.
func submitTransfers(ctx context.Context, sink TransferSink, cfg Config, r *Result, gameweek int, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}
	if len(r.changes) == 0 {
		log.Info("[submit] no transfers needed")
		return nil
	}
	req, err := NewTransferRequest(r.changes, cfg.UserID, gameweek, cfg.Wildcard, cfg.FreeHit)
	if err != nil {
		return err
	}
	if err := sink.Login(ctx, cfg.Email, cfg.Password); err != nil {
		return err
	}
	return sink.SubmitTransfers(ctx, req)
}
