package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/placemap/internal/cmd/output"
)

// Config carries everything the CLI reads from flags, environment
// variables, .env files, and the optional .placemap.yaml config file.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool
	Format  string

	// Config file actually loaded, if any
	ConfigFile string

	// Entity store selection
	DBDriver string
	DBPath   string
	DBDSN    string

	// Resolution tuning
	TrustFile string
	Threshold int

	// Logging
	LogLevel  string
	LogFormat string
	LogOutput string
}

// LoadConfig assembles the configuration. Precedence, highest first:
// command-line flags (overlaid later by UpdateFromFlags), environment
// variables, .env files, the config file, built-in defaults.
func LoadConfig() (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	readConfigFile()

	return &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),
		Format:  viper.GetString("format"),

		ConfigFile: viper.ConfigFileUsed(),

		DBDriver: viper.GetString("db_driver"),
		DBPath:   viper.GetString("db_path"),
		DBDSN:    viper.GetString("db_dsn"),

		TrustFile: viper.GetString("trust_file"),
		Threshold: viper.GetInt("threshold"),

		LogLevel:  os.Getenv("LOG_LEVEL"),
		LogFormat: envOr("LOG_FORMAT", "auto"),
		LogOutput: envOr("LOG_OUTPUT", "stderr"),
	}, nil
}

// readConfigFile points viper at an explicitly named config file, or
// searches the home directory and cwd for .placemap.yaml. A missing
// file is not an error.
func readConfigFile() {
	if configFile := viper.GetString("config"); configFile != "" {
		viper.SetConfigFile(configFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".placemap")
	}
	_ = viper.ReadInConfig()
}

// UpdateFromFlags overlays parsed flag values onto the loaded config.
// Cobra seeds string flag defaults from this config, so an empty
// string means the flag was not set and must not clobber the loaded
// value.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// Validate rejects values no command can honor. Store settings are
// validated separately when the store opens.
func (c *Config) Validate() error {
	_, err := output.ParseFormat(c.Format)
	return err
}

// loadEnvFiles loads .env.local then .env. godotenv never overrides a
// variable that is already set, so listing the local file first gives
// it precedence.
func loadEnvFiles() {
	for _, name := range []string{".env.local", ".env"} {
		_ = godotenv.Load(name)
	}
}

// envOr returns the named variable's value, or fallback when unset or
// empty.
func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
