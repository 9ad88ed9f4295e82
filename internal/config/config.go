// Package config loads govscout settings from flags, environment, an
// optional config file and defaults, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// ErrMissingAPIKey is returned by RequireAPIKey when no key is configured.
var ErrMissingAPIKey = errors.New(
	"SAMGOV_API_KEY is not set. Get a free API key at https://sam.gov/profile/details " +
		"and export it, or add it to a .env file")

// DefaultDBPath is used when GOVSCOUT_DB and db_path are unset.
const DefaultDBPath = "govscout.db"

// Config is the resolved govscout configuration.
type Config struct {
	APIKey string     `mapstructure:"api_key"`
	DBPath string     `mapstructure:"db_path"`
	API    APIConfig  `mapstructure:"api"`
	Sync   SyncConfig `mapstructure:"sync"`
	Log    LogConfig  `mapstructure:"log"`
}

// APIConfig controls the SAM.gov HTTP client.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// SyncConfig sets the per-run call budget and the optional cron schedule.
type SyncConfig struct {
	MaxAPICalls int    `mapstructure:"max_api_calls"`
	Schedule    string `mapstructure:"schedule"`
}

// LogConfig selects the log level and encoding, plus lumberjack rotation when File is set.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Encoding   string `mapstructure:"encoding"`
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

// RequireAPIKey returns ErrMissingAPIKey if no API key is configured.
func (c Config) RequireAPIKey() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// New returns a viper instance with govscout's defaults and environment
// bindings. Callers may bind flags to it before calling Load.
func New() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("GOVSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Historical names that do not follow the prefix.
	_ = v.BindEnv("api_key", "SAMGOV_API_KEY")
	_ = v.BindEnv("db_path", "GOVSCOUT_DB")

	v.SetDefault("db_path", DefaultDBPath)
	v.SetDefault("api.base_url", "https://api.sam.gov/opportunities/v2/search")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("sync.max_api_calls", 10)
	v.SetDefault("sync.schedule", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 3)
	v.SetDefault("log.max_age_days", 28)
	return v
}

// Load reads the optional config file at path (yaml or toml by extension)
// and unmarshals v. An empty path falls back to GOVSCOUT_CONFIG, then to
// govscout.yaml/govscout.toml in the working directory if present.
func Load(v *viper.Viper, path string) (Config, error) {
	if path == "" {
		path = os.Getenv("GOVSCOUT_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("govscout")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv copies KEY=VALUE lines from path into the process environment.
// Variables already set are left alone. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
