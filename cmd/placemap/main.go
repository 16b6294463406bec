// Package main is the placemap CLI entry point.
package main

import (
	"context"
	"os"
	"time"

	"github.com/agentstation/placemap/cmd/placemap/app"
)

// Build metadata stamped by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
	builtBy = "unknown"
)

// shutdownGrace bounds store teardown once the command has finished.
const shutdownGrace = 5 * time.Second

func main() {
	application, err := app.New(version, commit, date, builtBy)
	if err != nil {
		app.ExitOnError(err)
	}

	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	runErr := application.Execute(ctx, os.Args[1:])

	// Shut down on a fresh context: the signal context may already be
	// cancelled, and a hung store must not block exit forever.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer shutdownCancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		if runErr == nil {
			app.ExitOnError(err)
		}
		application.Logger().Error().Err(err).Msg("Shutdown failed after command error")
	}

	app.ExitOnError(runErr)
}
