package model

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServerConfig holds the connection settings for the backend.
type ServerConfig struct {
	// Environment is a free-form label ("local", "prod") included in
	// the realtime channel name and log entries.
	Environment string `mapstructure:"environment" yaml:"environment"`

	// APIBaseURL is the root URL of the REST API, including the /api prefix.
	APIBaseURL string `mapstructure:"api_base_url" yaml:"api_base_url"`

	// RealtimeURL is the websocket endpoint of the event broker.
	RealtimeURL string `mapstructure:"realtime_url" yaml:"realtime_url"`

	// RealtimeKey is the application key of the event broker.
	RealtimeKey string `mapstructure:"realtime_key" yaml:"realtime_key"`
}

// DisplayConfig holds UI preferences.
type DisplayConfig struct {
	// NoticeTTLSec is how long (in seconds) a transient success or
	// error banner stays visible before it expires.
	NoticeTTLSec int `mapstructure:"notice_ttl_sec" yaml:"notice_ttl_sec"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Display DisplayConfig `mapstructure:"display" yaml:"display"`

	// LogFile is where structured logs are written. The terminal owns
	// stdout, so logging always goes to a file.
	LogFile string `mapstructure:"log_file" yaml:"log_file"`

	// DatabasePath is the location of the local SQLite database that
	// persists the notification log.
	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/pinnwand/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "pinnwand", "config.yaml")
}

// defaultAppConfig returns a sensible default configuration pointing at
// the local development backend.
func defaultAppConfig() *AppConfig {
	dataDir := filepath.Join(".", ".pinnwand")
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".local", "share", "pinnwand")
	}

	return &AppConfig{
		Server: ServerConfig{
			Environment: "local",
			APIBaseURL:  "http://localhost:8080/api",
			RealtimeURL: "ws://localhost:8080/ws",
		},
		Display: DisplayConfig{
			NoticeTTLSec: 5,
		},
		LogFile:      filepath.Join(dataDir, "pinnwand.log"),
		DatabasePath: filepath.Join(dataDir, "pinnwand.db"),
	}
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// If the file does not exist, it returns the default configuration.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	defaults := defaultAppConfig()
	v.SetDefault("server.environment", defaults.Server.Environment)
	v.SetDefault("server.api_base_url", defaults.Server.APIBaseURL)
	v.SetDefault("server.realtime_url", defaults.Server.RealtimeURL)
	v.SetDefault("display.notice_ttl_sec", defaults.Display.NoticeTTLSec)
	v.SetDefault("log_file", defaults.LogFile)
	v.SetDefault("database_path", defaults.DatabasePath)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaults, nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("server", cfg.Server)
	v.Set("display", cfg.Display)
	v.Set("log_file", cfg.LogFile)
	v.Set("database_path", cfg.DatabasePath)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
