//go:build windows && !lambda

package main

import "context"

// No SIGUSR1 on windows.
func watchDumpSignal(context.Context) func(*ProgressReporter) { return nil }
