package app

import (
	"testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if config == nil {
		t.Fatal("LoadConfig() returned nil config")
	}

	// LogLevel may legitimately be empty, the logger derives it from
	// flags. Format and output always have defaults.
	if config.LogFormat == "" {
		t.Error("LogFormat default missing")
	}
	if config.LogOutput == "" {
		t.Error("LogOutput default missing")
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("VERBOSE", "true")
	t.Setenv("QUIET", "true")
	t.Setenv("NO_COLOR", "1")
	t.Setenv("FORMAT", "json")
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("DB_PATH", "/tmp/placemap-test.db")
	t.Setenv("DB_DSN", "postgres://localhost/placemap_test?sslmode=disable")
	t.Setenv("TRUST_FILE", "/etc/placemap/trust.yaml")
	t.Setenv("THRESHOLD", "90")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_OUTPUT", "stdout")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if !config.Verbose {
		t.Error("Verbose not read from VERBOSE")
	}
	if !config.Quiet {
		t.Error("Quiet not read from QUIET")
	}
	if !config.NoColor {
		t.Error("NoColor not read from NO_COLOR")
	}
	if config.Format != "json" {
		t.Errorf("Format = %q, want json", config.Format)
	}
	if config.DBDriver != "postgres" {
		t.Errorf("DBDriver = %q, want postgres", config.DBDriver)
	}
	if config.DBPath != "/tmp/placemap-test.db" {
		t.Errorf("DBPath = %q", config.DBPath)
	}
	if config.DBDSN != "postgres://localhost/placemap_test?sslmode=disable" {
		t.Errorf("DBDSN = %q", config.DBDSN)
	}
	if config.TrustFile != "/etc/placemap/trust.yaml" {
		t.Errorf("TrustFile = %q", config.TrustFile)
	}
	if config.Threshold != 90 {
		t.Errorf("Threshold = %d, want 90", config.Threshold)
	}
	if config.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", config.LogLevel)
	}
	if config.LogFormat != "json" {
		t.Errorf("LogFormat = %q, want json", config.LogFormat)
	}
	if config.LogOutput != "stdout" {
		t.Errorf("LogOutput = %q, want stdout", config.LogOutput)
	}
}

func TestConfigUpdateFromFlags(t *testing.T) {
	config := &Config{
		Format:   "yaml",
		LogLevel: "warn",
	}

	// Empty strings mean the flag was not set and must not clobber
	// the loaded values.
	config.UpdateFromFlags(true, false, true, "", "")
	if !config.Verbose || !config.NoColor {
		t.Error("boolean flags not applied")
	}
	if config.Format != "yaml" {
		t.Errorf("Format = %q, want yaml", config.Format)
	}
	if config.LogLevel != "warn" {
		t.Errorf("LogLevel = %q, want warn", config.LogLevel)
	}

	// Non-empty strings override.
	config.UpdateFromFlags(false, true, false, "json", "error")
	if config.Verbose || !config.Quiet {
		t.Error("boolean flags not replaced")
	}
	if config.Format != "json" {
		t.Errorf("Format = %q, want json", config.Format)
	}
	if config.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want error", config.LogLevel)
	}
}

func TestConfigValidate(t *testing.T) {
	for _, format := range []string{"", "table", "json", "yaml", "wide", "JSON"} {
		if err := (&Config{Format: format}).Validate(); err != nil {
			t.Errorf("Validate() with format %q = %v, want nil", format, err)
		}
	}

	if err := (&Config{Format: "csv"}).Validate(); err == nil {
		t.Error("Validate() with format csv succeeded, want error")
	}
}
