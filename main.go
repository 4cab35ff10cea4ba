//go:build !lambda

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const usage = `Usage: squad-optimizer [flags]

Finds the best FPL squad reachable from your current one under the budget,
position and club limits, charging --transfer-cost for every transfer
beyond --free-transfers.

Send SIGUSR1 during the search to print the best squad found so far.

Flags:
`

func main() {
	fs := NewFlagSet()
	fs.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			os.Exit(0)
		}
		os.Exit(2)
	}

	cfg, err := LoadConfig(fs)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	log, err := newLogger(cfg.Verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Error("run failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg Config, log *zap.Logger) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if cfg.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		ctx, cancelTimeout = context.WithTimeout(ctx, cfg.Timeout)
		defer cancelTimeout()
	}

	client, err := NewClient(cfg.APIBaseURL, cfg.LoginURL, log)
	if err != nil {
		return err
	}
	var fetch rawFetcher = client
	if cfg.BootstrapFile != "" {
		fetch = fileFetcher{bootstrapPath: cfg.BootstrapFile, picksPath: cfg.PicksFile}
	}
	source := newFPLSource(fetch, cfg, log)

	hooks := runHooks{onReporter: watchDumpSignal(ctx)}
	if cfg.MetricsAddr != "" {
		hooks.metrics = newSearchMetrics()
		stop, err := serveMetrics(cfg.MetricsAddr, hooks.metrics, log)
		if err != nil {
			return fmt.Errorf("metrics: %w", err)
		}
		defer stop()
	}

	result, err := runOptimize(ctx, cfg, source, log, hooks)
	if err != nil {
		return err
	}
	if err := writeResult(os.Stdout, result, cfg.Output); err != nil {
		return err
	}

	if cfg.Submit {
		if source.picksGameweek == 0 {
			return errors.New("submit: current squad was not pulled from the API")
		}
		return submitTransfers(ctx, client, cfg, result, source.picksGameweek+1, log)
	}
	return nil
}
