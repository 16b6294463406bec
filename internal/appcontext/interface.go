// Package appcontext defines the slice of the application that command
// packages see. Commands accept Interface instead of the concrete App
// type from cmd/placemap/app, which breaks the import cycle between the
// app and its commands and lets command tests substitute a Mock.
package appcontext

import (
	"github.com/agentstation/placemap"
)

// Interface is what commands need from the application. It carries only
// what command RunE functions actually consume; logging travels on the
// command context, and build metadata stays inside the app package.
type Interface interface {
	// Placemap returns the shared client, creating it on first use.
	Placemap() (placemap.Placemap, error)

	// OutputFormat returns the output format selected by flags, env,
	// or config file. Empty means auto-detect.
	OutputFormat() string
}
