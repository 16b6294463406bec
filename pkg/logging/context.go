package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// loggerKey carries the request-scoped logger. An unexported struct
// type keeps the key collision-free across packages.
type loggerKey struct{}

// WithLogger returns a copy of ctx carrying logger. A nil logger
// stores the package default.
func WithLogger(ctx context.Context, logger *zerolog.Logger) context.Context {
	if logger == nil {
		logger = Default()
	}
	return context.WithValue(ctx, loggerKey{}, logger)
}

// FromContext returns the logger stored in ctx, or the package default
// when ctx carries none.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		return Default()
	}
	if logger, ok := ctx.Value(loggerKey{}).(*zerolog.Logger); ok && logger != nil {
		return logger
	}
	return Default()
}

// Ctx is shorthand for FromContext at logging call sites.
func Ctx(ctx context.Context) *zerolog.Logger {
	return FromContext(ctx)
}

// withField returns a copy of ctx whose logger stamps key=value on
// every event it emits.
func withField(ctx context.Context, key, value string) context.Context {
	logger := FromContext(ctx).With().Str(key, value).Logger()
	return WithLogger(ctx, &logger)
}

// WithConnector scopes the context logger to a source connector.
func WithConnector(ctx context.Context, connectorID string) context.Context {
	return withField(ctx, "connector_id", connectorID)
}

// WithSlug scopes the context logger to a canonical entity.
func WithSlug(ctx context.Context, slug string) context.Context {
	return withField(ctx, "slug", slug)
}

// WithRun scopes the context logger to a resolution run.
func WithRun(ctx context.Context, runID string) context.Context {
	return withField(ctx, "run_id", runID)
}

// WithGroup scopes the context logger to one candidate group within a
// run. Groups are identified by their input position.
func WithGroup(ctx context.Context, group int) context.Context {
	logger := FromContext(ctx).With().Int("group", group).Logger()
	return WithLogger(ctx, &logger)
}

// WithOperation scopes the context logger to a named pipeline stage.
func WithOperation(ctx context.Context, operation string) context.Context {
	return withField(ctx, "operation", operation)
}

// WithFields returns a copy of ctx whose logger stamps every given
// field on every event it emits.
func WithFields(ctx context.Context, fields map[string]any) context.Context {
	if len(fields) == 0 {
		return ctx
	}
	logger := FromContext(ctx).With().Fields(fields).Logger()
	return WithLogger(ctx, &logger)
}
