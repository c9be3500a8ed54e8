// Package config loads service configuration and constructs the logger.
// Configuration comes from an optional YAML file with environment-variable
// overrides (prefix TAXENGINE_, e.g. TAXENGINE_EMAIL_RESEND_API_KEY).
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all service configuration.
type Config struct {
	Server   Server   `mapstructure:"server"`
	Database Database `mapstructure:"database"`
	Alerts   Alerts   `mapstructure:"alerts"`
	Email    Email    `mapstructure:"email"`
	Cron     Cron     `mapstructure:"cron"`
	Logging  Logging  `mapstructure:"logging"`
}

type Server struct {
	Port int `mapstructure:"port"`
}

type Database struct {
	Path string `mapstructure:"path"`
}

// Alerts tunes the daily batch.
type Alerts struct {
	DefaultDays     []int `mapstructure:"default_days"`
	HorizonDays     int   `mapstructure:"horizon_days"`
	DispatchTimeout int   `mapstructure:"dispatch_timeout_seconds"`
	Parallelism     int   `mapstructure:"parallelism"`
}

// Email configures the Resend sender. An empty API key switches the service
// to log-only delivery.
type Email struct {
	ResendAPIKey string `mapstructure:"resend_api_key"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

// Cron protects the daily trigger endpoint. An empty secret leaves the
// endpoint open; that is an accepted operational tradeoff for deployments
// where the platform scheduler cannot carry credentials.
type Cron struct {
	Secret string `mapstructure:"secret"`
}

type Logging struct {
	Level string `mapstructure:"level"`
}

// Load reads configuration from the given file (optional) and the
// environment, applying defaults for everything unset.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8080)
	v.SetDefault("database.path", "clients.db")
	v.SetDefault("alerts.default_days", []int{15, 7, 1})
	v.SetDefault("alerts.horizon_days", 30)
	v.SetDefault("alerts.dispatch_timeout_seconds", 10)
	v.SetDefault("alerts.parallelism", 4)
	v.SetDefault("email.from_address", "alertas@contaflow.example")
	v.SetDefault("email.from_name", "Contaflow Alertas")
	v.SetDefault("logging.level", "info")

	v.SetEnvPrefix("TAXENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/tax-engine")
		// A missing default config file is fine; defaults and env apply.
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// NewLogger builds the service logger for the configured level.
func (c *Config) NewLogger() (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(c.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", c.Logging.Level, err)
	}
	zc := zap.NewProductionConfig()
	zc.Level = level
	return zc.Build()
}
