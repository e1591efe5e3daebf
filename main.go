package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/threatsmith/povforge-cli/cmd"
	"github.com/threatsmith/povforge-cli/internal/observability"
)

// main is the entry point for the povforge CLI.
func main() {
	// Listen for interrupt signals (SIGINT, SIGTERM) for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	err := cmd.Execute(ctx)
	stop()
	observability.Sync()

	// A cancelled context means a requested shutdown, not a failure.
	if err != nil && !errors.Is(err, context.Canceled) {
		os.Exit(1)
	}
}
