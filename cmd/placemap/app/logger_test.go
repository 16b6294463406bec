package app

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestDetermineLogLevel(t *testing.T) {
	tests := []struct {
		name   string
		config *Config
		want   string
	}{
		{name: "default is info", config: &Config{}, want: "info"},
		{name: "verbose means debug", config: &Config{Verbose: true}, want: "debug"},
		{name: "quiet means warn", config: &Config{Quiet: true}, want: "warn"},
		{name: "conflicting flags prefer quiet", config: &Config{Verbose: true, Quiet: true}, want: "warn"},
		{name: "explicit level wins over verbose", config: &Config{LogLevel: "error", Verbose: true}, want: "error"},
		{name: "explicit level wins over quiet", config: &Config{LogLevel: "trace", Quiet: true}, want: "trace"},
		{name: "explicit level wins over both flags", config: &Config{LogLevel: "info", Verbose: true, Quiet: true}, want: "info"},
		{name: "env level carried through config", config: &Config{LogLevel: "debug"}, want: "debug"},
		{name: "invalid level falls back to info", config: &Config{LogLevel: "loud"}, want: "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := determineLogLevel(tt.config); got != tt.want {
				t.Errorf("determineLogLevel() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidateLogLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  string
	}{
		{name: "trace", level: "trace", want: "trace"},
		{name: "debug", level: "debug", want: "debug"},
		{name: "info", level: "info", want: "info"},
		{name: "warn", level: "warn", want: "warn"},
		{name: "error", level: "error", want: "error"},
		{name: "fatal not a CLI level", level: "fatal", want: "info"},
		{name: "unknown", level: "loud", want: "info"},
		{name: "empty", level: "", want: "info"},
		{name: "uppercase not accepted", level: "DEBUG", want: "info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateLogLevel(tt.level); got != tt.want {
				t.Errorf("validateLogLevel(%q) = %q, want %q", tt.level, got, tt.want)
			}
		})
	}
}

// TestNewLogger exercises logger construction across the flag
// combinations the CLI accepts.
func TestNewLogger(t *testing.T) {
	configs := []*Config{
		{LogFormat: "auto", LogOutput: "stderr"},
		{LogFormat: "auto", LogOutput: "stderr", Verbose: true},
		{LogFormat: "auto", LogOutput: "stderr", Quiet: true},
		{LogFormat: "json", LogOutput: "discard", LogLevel: "trace"},
		{LogFormat: "json", LogOutput: "stderr", LogLevel: "info", NoColor: true},
	}

	for _, config := range configs {
		_ = NewLogger(config)
	}
}

func TestNewLoggerAppliesLevel(t *testing.T) {
	logger := NewLogger(&Config{LogLevel: "error", LogFormat: "json", LogOutput: "discard"})
	if got := logger.GetLevel(); got != zerolog.ErrorLevel {
		t.Errorf("logger level = %s, want error", got)
	}
}
