// Package logging provides structured logging for placemap, built on
// zerolog. A single package-level logger backs the Trace..Fatal event
// starters, and context helpers thread resolution metadata (connector,
// run, group, slug) through a pipeline so every event a stage emits
// carries the fields of the work it is doing.
//
// The default logger is configured from the environment at startup
// (LOG_LEVEL, LOG_FORMAT, LOG_OUTPUT and friends) and can be replaced
// wholesale with SetDefault or Configure. Interactive terminals get the
// console format, everything else gets JSON.
//
// Typical pipeline usage:
//
//	ctx = logging.WithRun(ctx, result.RunID)
//	logging.Ctx(ctx).Info().Int("groups", n).Msg("Grouped observations")
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// defaultLogger backs the package-level event starters. Replaced by
// SetDefault and Configure.
var defaultLogger zerolog.Logger

func init() {
	defaultLogger = NewLoggerFromConfig(envConfig())
}

// Default returns the package-level logger.
func Default() *zerolog.Logger {
	return &defaultLogger
}

// SetDefault replaces the package-level logger.
func SetDefault(logger zerolog.Logger) {
	defaultLogger = logger
}

// Trace starts a trace-level event on the default logger.
func Trace() *zerolog.Event {
	return defaultLogger.Trace()
}

// Debug starts a debug-level event on the default logger.
func Debug() *zerolog.Event {
	return defaultLogger.Debug()
}

// Info starts an info-level event on the default logger.
func Info() *zerolog.Event {
	return defaultLogger.Info()
}

// Warn starts a warn-level event on the default logger.
func Warn() *zerolog.Event {
	return defaultLogger.Warn()
}

// Error starts an error-level event on the default logger.
func Error() *zerolog.Event {
	return defaultLogger.Error()
}

// Fatal starts a fatal-level event on the default logger. The process
// exits once the event's Msg is written.
func Fatal() *zerolog.Event {
	return defaultLogger.Fatal()
}

// Err starts an event carrying err, at error level when err is non-nil
// and at info level otherwise.
func Err(err error) *zerolog.Event {
	return defaultLogger.Err(err)
}

// WithLevel starts an event at the given level on the default logger.
func WithLevel(level zerolog.Level) *zerolog.Event {
	return defaultLogger.WithLevel(level)
}

// With opens a child context on the default logger for attaching
// fields.
func With() zerolog.Context {
	return defaultLogger.With()
}

// Level returns a copy of the default logger restricted to the given
// level.
func Level(level zerolog.Level) zerolog.Logger {
	return defaultLogger.Level(level)
}

// New returns a timestamped JSON logger writing to w.
func New(w io.Writer) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger()
}

// NewJSON returns a timestamped JSON logger writing to w, or to stderr
// when w is nil.
func NewJSON(w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	return New(w)
}

// NewConsole returns a human-readable logger writing to stderr. Color
// is enabled only when stderr is a terminal.
func NewConsole() zerolog.Logger {
	return New(consoleWriter(os.Stderr, !isTerminal(os.Stderr), time.Kitchen))
}

// consoleWriter builds the zerolog console writer shared by every
// console-format logger.
func consoleWriter(w io.Writer, noColor bool, timeFormat string) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        w,
		NoColor:    noColor,
		TimeFormat: timeFormat,
	}
}

// isTerminal reports whether f is an interactive terminal, including
// Cygwin and MSYS pseudo-terminals.
func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
