//go:build !windows && !lambda

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// watchDumpSignal forwards SIGUSR1 to the progress reporter until ctx ends.
func watchDumpSignal(ctx context.Context) func(*ProgressReporter) {
	return func(r *ProgressReporter) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGUSR1)
		go func() {
			defer signal.Stop(ch)
			for {
				select {
				case <-ch:
					r.RequestDump()
				case <-ctx.Done():
					return
				}
			}
		}()
	}
}
