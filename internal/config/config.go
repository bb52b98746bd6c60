// Package config loads the helper configuration from a config file, PULMO_*
// environment variables and bound command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/pulmo-helper/internal/domain"
)

// EnvPrefix prefixes every environment override, e.g. PULMO_RULES_BACKEND.
const EnvPrefix = "PULMO"

// Rule backends.
const (
	BackendXLSX   = "xlsx"
	BackendSQLite = "sqlite"
)

// Manager loads and validates configuration through a viper instance.
type Manager struct {
	v          *viper.Viper
	configFile string
	config     *domain.Config
}

// Option is a functional option for Manager.
type Option func(*Manager)

// WithViper loads through v, typically one with command line flags bound.
func WithViper(v *viper.Viper) Option {
	return func(m *Manager) {
		m.v = v
	}
}

// WithConfigFile reads the given file instead of searching the config paths.
func WithConfigFile(path string) Option {
	return func(m *Manager) {
		m.configFile = path
	}
}

// NewManager creates a new configuration manager
func NewManager(opts ...Option) (*Manager, error) {
	m := &Manager{}
	for _, opt := range opts {
		opt(m)
	}
	if m.v == nil {
		m.v = viper.New()
	}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

// loadConfig loads configuration from various sources
func (m *Manager) loadConfig() error {
	v := m.v
	if m.configFile != "" {
		v.SetConfigFile(m.configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.pulmo-helper")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	m.setDefaults()

	// Config file is optional; defaults and environment apply without it
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &domain.Config{}
	if err := v.Unmarshal(config); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}
	resolvePaths(config)

	m.config = config
	return nil
}

// setDefaults sets default configuration values
func (m *Manager) setDefaults() {
	v := m.v
	v.SetDefault("data_dir", DefaultDataDir())

	v.SetDefault("rules.backend", BackendXLSX)
	v.SetDefault("rules.xlsx_path", "rules.xlsx")
	v.SetDefault("rules.sqlite_path", "rules.db")
	v.SetDefault("rules.sheet", "rules")

	v.SetDefault("trial.status_path", "status.xlsx")
	v.SetDefault("trial.criteria_path", "criteria.xlsx")

	v.SetDefault("cache.max_workbooks", 16)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("mcp.server_name", "pulmo-helper")
	v.SetDefault("mcp.server_version", "0.1.0")
}

// GetConfig returns the complete configuration
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// ConfigFileUsed returns the config file that was read, or "".
func (m *Manager) ConfigFileUsed() string {
	return m.v.ConfigFileUsed()
}

// Reload reloads the configuration
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate validates the configuration
func (m *Manager) Validate() error {
	config := m.config

	if config.DataDir == "" {
		return fmt.Errorf("data directory is required")
	}

	switch config.Rules.Backend {
	case BackendXLSX:
		if config.Rules.XLSXPath == "" {
			return fmt.Errorf("rules xlsx path is required")
		}
	case BackendSQLite:
		if config.Rules.SQLitePath == "" {
			return fmt.Errorf("rules sqlite path is required")
		}
	default:
		return fmt.Errorf("invalid rules backend: %q (want %s or %s)", config.Rules.Backend, BackendXLSX, BackendSQLite)
	}

	if config.Cache.MaxWorkbooks < 0 {
		return fmt.Errorf("invalid workbook cache size: %d", config.Cache.MaxWorkbooks)
	}

	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(config.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", config.Logging.Level)
	}
	switch strings.ToLower(config.Logging.Format) {
	case "json", "text":
	default:
		return fmt.Errorf("invalid log format: %s", config.Logging.Format)
	}
	switch strings.ToLower(config.Logging.Output) {
	case "stdout", "stderr":
	default:
		return fmt.Errorf("invalid log output: %s", config.Logging.Output)
	}

	return nil
}
