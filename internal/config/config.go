// Package config loads the application configuration from config files,
// environment variables, and .env files.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/tdiff/tdiff/pkg/errors"
	"github.com/tdiff/tdiff/pkg/source"
)

// Config holds the application configuration.
type Config struct {
	// Database connection settings
	Database source.Config

	// Query is the final SELECT producing the input table.
	Query string

	// ScriptFile is an optional preparation script run before Query.
	ScriptFile string

	// SchemaFile is the YAML file naming identity, merge-key, and
	// version columns.
	SchemaFile string

	// OutputDir receives report and snapshot files.
	OutputDir string

	// Subject identifies what is being reconciled (e.g. a customer
	// number); it feeds script substitution and output file names.
	Subject string

	// AsOf replaces the script's date placeholder.
	AsOf string

	// Formats are the report formats to render ("csv", "html").
	Formats []string

	// Snapshot controls writing the raw input table as Parquet.
	Snapshot bool

	// Logging configuration
	LogLevel  string
	LogFormat string
}

// Load reads configuration from all sources in order of precedence:
// command-line flags (bound by cobra), environment variables, .env files,
// an optional config file, then defaults.
func Load(configFile string) (*Config, error) {
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvPrefix("TDIFF")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, errors.NewConfigError("file", "unable to read config file", err)
		}
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tdiff")
		_ = viper.ReadInConfig() // optional
	}

	cfg := &Config{
		Database: source.Config{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Database: viper.GetString("db.name"),
			User:     viper.GetString("db.user"),
			Password: viper.GetString("db.password"),
			SSLMode:  viper.GetString("db.sslmode"),
		},
		Query:      viper.GetString("query"),
		ScriptFile: viper.GetString("script"),
		SchemaFile: viper.GetString("schema"),
		OutputDir:  viper.GetString("output_dir"),
		Subject:    viper.GetString("subject"),
		AsOf:       viper.GetString("as_of"),
		Formats:    viper.GetStringSlice("formats"),
		Snapshot:   viper.GetBool("snapshot"),
		LogLevel:   viper.GetString("log_level"),
		LogFormat:  viper.GetString("log_format"),
	}

	return cfg, nil
}

// Validate checks the fields a reconciliation run cannot do without.
func (c *Config) Validate() error {
	if c.SchemaFile == "" {
		return errors.NewConfigError("schema", "schema file is required", nil)
	}
	if c.Query == "" {
		return errors.NewConfigError("query", "final query is required", nil)
	}
	if c.Database.Database == "" {
		return errors.NewConfigError("db.name", "database name is required", nil)
	}
	if c.Database.User == "" {
		return errors.NewConfigError("db.user", "database user is required", nil)
	}
	return nil
}

// setDefaults configures default values.
func setDefaults() {
	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.sslmode", "disable")
	viper.SetDefault("output_dir", ".")
	viper.SetDefault("subject", "ALL")
	viper.SetDefault("formats", []string{"html"})
	viper.SetDefault("snapshot", true)
	viper.SetDefault("log_level", "info")
	viper.SetDefault("log_format", "auto")
}

// loadEnvFiles loads .env files if present. Missing files are fine.
func loadEnvFiles() {
	for _, file := range []string{".env.local", ".env"} {
		if _, err := os.Stat(file); err == nil {
			_ = godotenv.Load(file)
		}
	}
}
