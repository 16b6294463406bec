package logging_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/placemap/pkg/logging"
)

// logFile returns a fresh log path and a function reading whatever
// the logger wrote there.
func logFile(t *testing.T) (string, func() string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "placemap.log")
	return path, func() string {
		content, err := os.ReadFile(path)
		require.NoError(t, err)
		return string(content)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := logging.DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "auto", cfg.Format)
	assert.Equal(t, "stderr", cfg.Output)
	assert.False(t, cfg.AddCaller)
	assert.False(t, cfg.NoColor)
}

func TestNewLoggerFromConfig(t *testing.T) {
	t.Run("json to file", func(t *testing.T) {
		widenGlobal(t)
		path, read := logFile(t)
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "debug",
			Format: "json",
			Output: path,
		})
		logger.Debug().Str("connector_id", "places_api").Msg("observation loaded")

		out := read()
		assert.Contains(t, out, `"level":"debug"`)
		assert.Contains(t, out, `"connector_id":"places_api"`)
		assert.Contains(t, out, "observation loaded")
	})

	t.Run("level filters events", func(t *testing.T) {
		widenGlobal(t)
		path, read := logFile(t)
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "warn",
			Format: "json",
			Output: path,
		})
		logger.Info().Msg("below threshold")
		logger.Warn().Msg("at threshold")

		out := read()
		assert.NotContains(t, out, "below threshold")
		assert.Contains(t, out, "at threshold")
	})

	t.Run("console format writes pretty lines", func(t *testing.T) {
		widenGlobal(t)
		path, read := logFile(t)
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "info",
			Format: "console",
			Output: path,
		})
		logger.Info().Str("slug", "west-park-padel").Msg("entity created")

		out := read()
		assert.Contains(t, out, "INF")
		assert.Contains(t, out, "entity created")
		assert.Contains(t, out, "west-park-padel")
		assert.NotContains(t, out, `"level"`)
	})

	t.Run("caller stamped when enabled", func(t *testing.T) {
		widenGlobal(t)
		path, read := logFile(t)
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:     "info",
			Format:    "json",
			Output:    path,
			AddCaller: true,
		})
		logger.Info().Msg("with caller")
		assert.Contains(t, read(), `"caller":`)
	})

	t.Run("static fields stamped on every event", func(t *testing.T) {
		widenGlobal(t)
		path, read := logFile(t)
		logger := logging.NewLoggerFromConfig(&logging.Config{
			Level:  "info",
			Format: "json",
			Output: path,
			Fields: map[string]string{"service": "placemap", "env": "test"},
		})
		logger.Info().Msg("first")
		logger.Info().Msg("second")

		out := read()
		assert.Equal(t, 2, strings.Count(out, `"service":"placemap"`))
		assert.Equal(t, 2, strings.Count(out, `"env":"test"`))
	})

	t.Run("nil config uses defaults", func(t *testing.T) {
		logger := logging.NewLoggerFromConfig(nil)
		assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
	})

	t.Run("discard output drops events", func(t *testing.T) {
		logger := logging.NewLoggerFromConfig(&logging.Config{Output: "discard"})
		logger.Info().Msg("dropped")
	})
}

func TestLevelParsing(t *testing.T) {
	cases := []struct {
		name  string
		level string
		want  zerolog.Level
	}{
		{name: "trace", level: "trace", want: zerolog.TraceLevel},
		{name: "debug", level: "debug", want: zerolog.DebugLevel},
		{name: "info", level: "info", want: zerolog.InfoLevel},
		{name: "warn", level: "warn", want: zerolog.WarnLevel},
		{name: "warning alias", level: "warning", want: zerolog.WarnLevel},
		{name: "error", level: "error", want: zerolog.ErrorLevel},
		{name: "fatal", level: "fatal", want: zerolog.FatalLevel},
		{name: "disabled", level: "disabled", want: zerolog.Disabled},
		{name: "mixed case", level: "DEBUG", want: zerolog.DebugLevel},
		{name: "empty defaults to info", level: "", want: zerolog.InfoLevel},
		{name: "unknown defaults to info", level: "verbose", want: zerolog.InfoLevel},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			logger := logging.NewLoggerFromConfig(&logging.Config{Level: tc.level, Output: "discard"})
			assert.Equal(t, tc.want, logger.GetLevel())
		})
	}
}

func TestConfigure(t *testing.T) {
	restoreDefault(t)
	path, read := logFile(t)

	logging.Configure(&logging.Config{
		Level:  "warn",
		Format: "json",
		Output: path,
	})

	logging.Debug().Msg("debug suppressed")
	logging.Info().Msg("info suppressed")
	logging.Warn().Msg("warn logged")
	logging.Error().Msg("error logged")

	out := read()
	assert.NotContains(t, out, "suppressed")
	assert.Contains(t, out, "warn logged")
	assert.Contains(t, out, "error logged")
	assert.Equal(t, zerolog.WarnLevel, zerolog.GlobalLevel())
}

func TestConfigureFromEnv(t *testing.T) {
	restoreDefault(t)
	path, read := logFile(t)

	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_OUTPUT", path)
	t.Setenv("LOG_FIELDS", "service=placemap, env = test")

	logging.ConfigureFromEnv()
	logging.Debug().Msg("env configured")

	out := read()
	assert.Contains(t, out, "env configured")
	assert.Contains(t, out, `"service":"placemap"`)
	assert.Contains(t, out, `"env":"test"`)
}
