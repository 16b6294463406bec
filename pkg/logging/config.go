package logging

import (
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/placemap/pkg/constants"
)

// Config describes how a logger is built. The zero value is usable;
// empty fields fall back to the defaults documented per field.
type Config struct {
	// Level is the minimum level to emit: trace, debug, info, warn,
	// error, fatal, or disabled. Defaults to info.
	Level string

	// Format selects the encoding: json, console, or auto. Auto picks
	// console when the output is a terminal and json otherwise.
	Format string

	// Output names the destination: stderr, stdout, discard, or a file
	// path opened for append. Defaults to stderr.
	Output string

	// TimeFormat sets the console timestamp layout: kitchen, rfc3339,
	// rfc3339nano, unix, or a literal time layout string.
	TimeFormat string

	// NoColor forces colorless console output. Non-terminal outputs
	// are always colorless.
	NoColor bool

	// AddCaller stamps file:line on every event.
	AddCaller bool

	// Fields are stamped on every event the logger emits.
	Fields map[string]string
}

// DefaultConfig returns the configuration used when nothing else is
// specified: info level, auto format, stderr.
func DefaultConfig() *Config {
	return &Config{
		Level:  "info",
		Format: "auto",
		Output: "stderr",
	}
}

// envConfig builds a Config from LOG_LEVEL, LOG_FORMAT, LOG_OUTPUT,
// LOG_TIME_FORMAT, LOG_CALLER and LOG_FIELDS, with NO_COLOR honored
// per convention. Unset variables keep the defaults.
func envConfig() *Config {
	cfg := DefaultConfig()
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("LOG_OUTPUT"); v != "" {
		cfg.Output = v
	}
	if v := os.Getenv("LOG_TIME_FORMAT"); v != "" {
		cfg.TimeFormat = v
	}
	if v := os.Getenv("LOG_FIELDS"); v != "" {
		cfg.Fields = parseFields(v)
	}
	if os.Getenv("LOG_CALLER") == "true" {
		cfg.AddCaller = true
	}
	if os.Getenv("NO_COLOR") != "" {
		cfg.NoColor = true
	}
	return cfg
}

// NewLoggerFromConfig builds a logger from cfg without touching
// package or global state. A nil cfg means DefaultConfig.
func NewLoggerFromConfig(cfg *Config) zerolog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	logctx := zerolog.New(cfg.writer()).
		Level(parseLevel(cfg.Level)).
		With().
		Timestamp()
	if cfg.AddCaller {
		logctx = logctx.Caller()
	}
	for _, key := range sortedKeys(cfg.Fields) {
		logctx = logctx.Str(key, cfg.Fields[key])
	}
	return logctx.Logger()
}

// Configure builds a logger from cfg and installs it as the package
// default, aligning zerolog's global level with the configured one.
func Configure(cfg *Config) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	zerolog.SetGlobalLevel(parseLevel(cfg.Level))
	SetDefault(NewLoggerFromConfig(cfg))
}

// ConfigureFromEnv configures the package default logger from the
// environment. See envConfig for the recognized variables.
func ConfigureFromEnv() {
	Configure(envConfig())
}

// writer opens the configured destination, wrapping it in a console
// writer when the format calls for it.
func (c *Config) writer() io.Writer {
	out, terminal := c.open()
	if c.resolveFormat(terminal) != "console" {
		return out
	}
	return consoleWriter(out, c.NoColor || !terminal, c.resolveTimeFormat())
}

// open returns the output destination and whether it is an interactive
// terminal. Unopenable file paths fall back to stderr so a bad
// LOG_OUTPUT never silences the process.
func (c *Config) open() (io.Writer, bool) {
	switch c.Output {
	case "", "stderr":
		return os.Stderr, isTerminal(os.Stderr)
	case "stdout":
		return os.Stdout, isTerminal(os.Stdout)
	case "discard":
		return io.Discard, false
	default:
		f, err := os.OpenFile(c.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, constants.FilePermissions)
		if err != nil {
			return os.Stderr, isTerminal(os.Stderr)
		}
		return f, false
	}
}

// resolveFormat maps the configured format to json or console, letting
// auto follow the terminal check.
func (c *Config) resolveFormat(terminal bool) string {
	switch strings.ToLower(c.Format) {
	case "console", "pretty":
		return "console"
	case "json":
		return "json"
	default:
		if terminal {
			return "console"
		}
		return "json"
	}
}

// resolveTimeFormat maps named timestamp formats to their layouts.
// Anything unrecognized is treated as a literal layout.
func (c *Config) resolveTimeFormat() string {
	switch strings.ToLower(c.TimeFormat) {
	case "", "kitchen":
		return time.Kitchen
	case "rfc3339":
		return time.RFC3339
	case "rfc3339nano":
		return time.RFC3339Nano
	case "unix":
		return time.UnixDate
	default:
		return c.TimeFormat
	}
}

// parseLevel maps a level name to its zerolog level, defaulting to
// info for anything unrecognized.
func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// parseFields parses the LOG_FIELDS form "key=value,key2=value2".
// Pairs without an equals sign or with an empty key are skipped.
func parseFields(raw string) map[string]string {
	fields := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		if key = strings.TrimSpace(key); key != "" {
			fields[key] = strings.TrimSpace(value)
		}
	}
	return fields
}

// sortedKeys keeps static field order stable across loggers.
func sortedKeys(fields map[string]string) []string {
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
