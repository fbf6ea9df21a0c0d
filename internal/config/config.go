// Package config provides configuration management for upnpres using Viper.
// It supports configuration from files, environment variables, and defaults.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Default configuration values.
const (
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 10
	defaultConnMaxIdleTime = 30 * time.Minute
	defaultProbeTimeout    = 30 * time.Second
	defaultAnalyzeDuration = 2 * time.Second
	defaultProbeSize       = 2 * 1024 * 1024  // 2MB
	defaultPlaceholderSize = 10 * 1024 * 1024 // 10MB
	defaultPlaceholderDur  = 5 * time.Second
)

// Config holds all configuration for the application.
type Config struct {
	Database    DatabaseConfig    `mapstructure:"database"`
	Logging     LoggingConfig     `mapstructure:"logging"`
	Probe       ProbeConfig       `mapstructure:"probe"`
	Placeholder PlaceholderConfig `mapstructure:"placeholder"`
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres, mysql
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	LogLevel        string        `mapstructure:"log_level"` // silent, error, warn, info
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`  // debug, info, warn, error
	Format     string `mapstructure:"format"` // json, text
	AddSource  bool   `mapstructure:"add_source"`
	TimeFormat string `mapstructure:"time_format"`
}

// ProbeConfig holds stream probe configuration.
type ProbeConfig struct {
	FFprobePath string `mapstructure:"ffprobe_path"` // Path to ffprobe binary
	// Timeout bounds a single probe invocation end to end.
	Timeout Duration `mapstructure:"timeout"`
	// AnalyzeDuration limits how much input ffprobe analyzes.
	AnalyzeDuration Duration `mapstructure:"analyze_duration"`
	// ProbeSize limits how many bytes ffprobe reads while analyzing.
	// Supports human-readable values like "2MB" or raw byte counts.
	ProbeSize ByteSize `mapstructure:"probe_size"`
}

// PlaceholderConfig holds confirmation-placeholder resource configuration.
type PlaceholderConfig struct {
	// Path is the locator recorded for synthetic confirmation resources.
	Path string `mapstructure:"path"`
	// Size is the advertised size of the placeholder media.
	// Supports human-readable values like "10MB" or raw byte counts.
	Size ByteSize `mapstructure:"size"`
	// Duration is the advertised playback duration of the placeholder.
	Duration Duration `mapstructure:"duration"`
}

// Load reads configuration from file and environment variables.
// Environment variables take precedence over file configuration.
// Environment variables are prefixed with UPNPRES_ and use underscores for
// nesting. Example: UPNPRES_DATABASE_DSN=/var/lib/upnpres/upnpres.db.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	SetDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/upnpres")
		v.AddConfigPath("$HOME/.upnpres")
	}

	v.SetEnvPrefix("UPNPRES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file not found is OK - defaults and env vars still apply.
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg, err := Unmarshal(v)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Unmarshal decodes the viper state into a Config. Duration and ByteSize
// fields are decoded from their human-readable string forms.
func Unmarshal(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	))); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	return &cfg, nil
}

// SetDefaults configures default values for all configuration options.
// This should be called before reading the config file.
func SetDefaults(v *viper.Viper) {
	// Database defaults
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "upnpres.db")
	v.SetDefault("database.max_open_conns", defaultMaxOpenConns)
	v.SetDefault("database.max_idle_conns", defaultMaxIdleConns)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.conn_max_idle_time", defaultConnMaxIdleTime)
	v.SetDefault("database.log_level", "warn")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.add_source", false)
	v.SetDefault("logging.time_format", time.RFC3339)

	// Probe defaults
	v.SetDefault("probe.ffprobe_path", "ffprobe")
	v.SetDefault("probe.timeout", defaultProbeTimeout.String())
	v.SetDefault("probe.analyze_duration", defaultAnalyzeDuration.String())
	v.SetDefault("probe.probe_size", int64(defaultProbeSize))

	// Placeholder defaults
	v.SetDefault("placeholder.path", "/usr/share/upnpres/confirmation.mpg")
	v.SetDefault("placeholder.size", int64(defaultPlaceholderSize))
	v.SetDefault("placeholder.duration", defaultPlaceholderDur.String())
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	validDrivers := map[string]bool{"sqlite": true, "postgres": true, "mysql": true}
	if !validDrivers[c.Database.Driver] {
		return fmt.Errorf("database.driver must be one of: sqlite, postgres, mysql")
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}
	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("logging.format must be one of: json, text")
	}

	if c.Probe.FFprobePath == "" {
		return fmt.Errorf("probe.ffprobe_path is required")
	}
	if c.Probe.Timeout.Duration() <= 0 {
		return fmt.Errorf("probe.timeout must be positive")
	}

	if c.Placeholder.Path == "" {
		return fmt.Errorf("placeholder.path is required")
	}
	if c.Placeholder.Size.Bytes() <= 0 {
		return fmt.Errorf("placeholder.size must be positive")
	}
	if c.Placeholder.Duration.Duration() <= 0 {
		return fmt.Errorf("placeholder.duration must be positive")
	}

	return nil
}
