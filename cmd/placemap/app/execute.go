package app

import (
	"context"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/agentstation/placemap/cmd/placemap/cmd/entities"
	"github.com/agentstation/placemap/cmd/placemap/cmd/resolve"
	"github.com/agentstation/placemap/cmd/placemap/cmd/trust"
	"github.com/agentstation/placemap/pkg/logging"
)

// Execute runs the placemap CLI application with the given arguments.
// This is the main entry point called from main.go.
func (a *App) Execute(ctx context.Context, args []string) error {
	// Create root command with app context
	rootCmd := a.createRootCommand()

	// Set arguments
	rootCmd.SetArgs(args)

	// Execute with context
	return rootCmd.ExecuteContext(ctx)
}

// createRootCommand creates the root cobra command with all subcommands.
func (a *App) createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "placemap",
		Short:   "Place entity resolution CLI",
		Version: a.version,
		Long: `Placemap resolves venue observations from heterogeneous sources into
canonical place entities.

Observations that describe the same real-world place are grouped by shared
external identifiers, name and coordinates, or name similarity, then merged
field by field according to a connector trust table and persisted to the
configured store.`,
		PersistentPreRunE: a.setupCommand,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	// Add command groups
	rootCmd.AddGroup(&cobra.Group{
		ID:    "core",
		Title: "Core Commands:",
	})

	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands:",
	})

	// Add global flags. Defaults are seeded from the loaded config so
	// that defining a flag does not clobber env or config file values.
	rootCmd.PersistentFlags().StringVar(&a.config.ConfigFile, "config", a.config.ConfigFile, "config file (default is $HOME/.placemap.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Verbose, "verbose", "v", a.config.Verbose, "verbose output (shortcut for --log-level=debug)")
	rootCmd.PersistentFlags().BoolVarP(&a.config.Quiet, "quiet", "q", a.config.Quiet, "minimal output (shortcut for --log-level=warn)")
	rootCmd.PersistentFlags().BoolVar(&a.config.NoColor, "no-color", a.config.NoColor, "disable colored output")
	rootCmd.PersistentFlags().StringVarP(&a.config.Format, "format", "o", a.config.Format, "output format: table, json, yaml, wide")
	rootCmd.PersistentFlags().StringVar(&a.config.LogLevel, "log-level", a.config.LogLevel, "log level: trace, debug, info, warn, error (overrides -v/-q)")

	// Store selection flags
	rootCmd.PersistentFlags().StringVar(&a.config.DBDriver, "db-driver", a.config.DBDriver, "entity store driver: memory, sqlite, postgres")
	rootCmd.PersistentFlags().StringVar(&a.config.DBPath, "db-path", a.config.DBPath, "sqlite database path")
	rootCmd.PersistentFlags().StringVar(&a.config.DBDSN, "db-dsn", a.config.DBDSN, "postgres connection string")

	// Customize version output to match version subcommand
	rootCmd.SetVersionTemplate("placemap {{.Version}}\n")

	// Register all commands
	a.registerCommands(rootCmd)

	return rootCmd
}

// setupCommand is called before any command runs.
func (a *App) setupCommand(cmd *cobra.Command, _ []string) error {
	// Update config from parsed flags
	// These flags are defined as persistent flags in createRootCommand, so errors indicate programming errors
	verbose := mustGetBool(cmd, "verbose")
	quiet := mustGetBool(cmd, "quiet")
	noColor := mustGetBool(cmd, "no-color")
	format := mustGetString(cmd, "format")
	logLevel := mustGetString(cmd, "log-level")

	a.config.UpdateFromFlags(verbose, quiet, noColor, format, logLevel)
	if err := a.config.Validate(); err != nil {
		return err
	}

	// Reinitialize logger with updated config and install it where the
	// pipeline will find it: the command context carries it into
	// Resolve, and the package default covers logging outside any
	// context.
	logger := NewLogger(a.config)
	a.logger = &logger
	logging.SetDefault(logger)
	cmd.SetContext(logging.WithLogger(cmd.Context(), a.logger))

	return nil
}

// registerCommands attaches all subcommands to the root command. The
// command packages receive the app through appcontext.Interface.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(resolve.NewCommand(a))
	rootCmd.AddCommand(entities.NewCommand(a))
	rootCmd.AddCommand(trust.NewCommand(a))
	rootCmd.AddCommand(a.newVersionCommand())
}

// newVersionCommand creates the version command. The plain form matches
// the root --version template; --verbose adds build metadata.
func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("placemap %s\n", a.Version())
			if !a.config.Verbose {
				return
			}
			cmd.Printf("  commit:     %s\n", a.Commit())
			cmd.Printf("  build date: %s\n", a.Date())
			cmd.Printf("  built by:   %s\n", a.BuiltBy())
			cmd.Printf("  go version: %s\n", runtime.Version())
		},
	}
}

// ExitOnError is a helper that prints an error and exits with status 1.
// This is meant to be used in main.go for top-level error handling.
func ExitOnError(err error) {
	if err != nil {
		//nolint:errcheck // Ignoring write error since we're exiting anyway
		_, _ = os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
}

// mustGetBool retrieves a boolean flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}

// mustGetString retrieves a string flag value or panics if the flag doesn't exist.
// This should only be used for flags defined in this package.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic("programming error: failed to get flag " + name + ": " + err.Error())
	}
	return val
}
