// Package config provides configuration management for hivetimer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the hivetimer application.
type Config struct {
	Server        ServerConfig       `mapstructure:"server"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Auth          AuthConfig         `mapstructure:"auth"`
	Client        ClientConfig       `mapstructure:"client"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	MCP           MCPConfig          `mapstructure:"mcp"`
}

// ServerConfig holds settings for the HTTP server.
type ServerConfig struct {
	Addr         string   `mapstructure:"addr"`
	StaleHorizon Duration `mapstructure:"stale_horizon"`
	SweepEvery   Duration `mapstructure:"sweep_every"`
}

// StorageConfig holds storage settings. Backend selects the driver:
// "sqlite" uses Path, "postgres" uses ConnString.
type StorageConfig struct {
	Backend    string `mapstructure:"backend"`
	DataDir    string `mapstructure:"data_dir"`
	ConnString string `mapstructure:"conn_string"`
}

// AuthConfig holds token verification settings. Mode is one of
// "oidc", "static", or "disabled".
type AuthConfig struct {
	Mode     string            `mapstructure:"mode"`
	Issuer   string            `mapstructure:"issuer"`
	ClientID string            `mapstructure:"client_id"`
	Tokens   map[string]string `mapstructure:"tokens"`
}

// ClientConfig holds settings for the CLI client commands.
type ClientConfig struct {
	ServerURL string `mapstructure:"server_url"`
	Token     string `mapstructure:"token"`
	User      string `mapstructure:"user"`
}

// NotificationConfig holds desktop notification settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Sound   bool `mapstructure:"sound"`
}

// MCPConfig holds MCP server settings.
type MCPConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	User    string `mapstructure:"user"`
}

// Duration is a wrapper around time.Duration for TOML parsing.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(duration)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// String returns the string representation of the duration.
func (d Duration) String() string {
	return time.Duration(d).String()
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:         ":8422",
			StaleHorizon: Duration(4 * time.Hour),
			SweepEvery:   Duration(5 * time.Minute),
		},
		Storage: StorageConfig{
			Backend: "sqlite",
			DataDir: "~/.hivetimer",
		},
		Auth: AuthConfig{
			Mode: "disabled",
		},
		Client: ClientConfig{
			ServerURL: "http://localhost:8422",
			User:      "local",
		},
		Notifications: NotificationConfig{
			Enabled: true,
			Sound:   true,
		},
		MCP: MCPConfig{
			Enabled: false,
			User:    "local",
		},
	}
}

// Load loads the configuration from the config file, creating it with
// defaults on first run.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, fmt.Errorf("failed to get config path: %w", err)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("toml")

	setDefaults()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		if err := Save(DefaultConfig()); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	}

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Expand ~ in the data directory
	if cfg.Storage.DataDir == "~/.hivetimer" || cfg.Storage.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.Storage.DataDir = filepath.Join(homeDir, ".hivetimer")
	}

	return &cfg, nil
}

// Save saves the configuration to the config file.
func Save(cfg *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("toml")

	viper.Set("server.addr", cfg.Server.Addr)
	viper.Set("server.stale_horizon", cfg.Server.StaleHorizon.String())
	viper.Set("server.sweep_every", cfg.Server.SweepEvery.String())
	viper.Set("storage.backend", cfg.Storage.Backend)
	viper.Set("storage.data_dir", cfg.Storage.DataDir)
	viper.Set("storage.conn_string", cfg.Storage.ConnString)
	viper.Set("auth.mode", cfg.Auth.Mode)
	viper.Set("auth.issuer", cfg.Auth.Issuer)
	viper.Set("auth.client_id", cfg.Auth.ClientID)
	if cfg.Auth.Tokens != nil {
		viper.Set("auth.tokens", cfg.Auth.Tokens)
	}
	viper.Set("client.server_url", cfg.Client.ServerURL)
	viper.Set("client.token", cfg.Client.Token)
	viper.Set("client.user", cfg.Client.User)
	viper.Set("notifications.enabled", cfg.Notifications.Enabled)
	viper.Set("notifications.sound", cfg.Notifications.Sound)
	viper.Set("mcp.enabled", cfg.MCP.Enabled)
	viper.Set("mcp.user", cfg.MCP.User)

	return viper.WriteConfig()
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".hivetimer", "config.toml"), nil
}

// GetDBPath returns the path to the sqlite database file.
func GetDBPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "hivetimer.db")
}

// setDefaults sets default values for viper.
func setDefaults() {
	viper.SetDefault("server.addr", ":8422")
	viper.SetDefault("server.stale_horizon", "4h0m0s")
	viper.SetDefault("server.sweep_every", "5m0s")
	viper.SetDefault("storage.backend", "sqlite")
	viper.SetDefault("storage.data_dir", "~/.hivetimer")
	viper.SetDefault("storage.conn_string", "")
	viper.SetDefault("auth.mode", "disabled")
	viper.SetDefault("auth.issuer", "")
	viper.SetDefault("auth.client_id", "")
	viper.SetDefault("client.server_url", "http://localhost:8422")
	viper.SetDefault("client.token", "")
	viper.SetDefault("client.user", "local")
	viper.SetDefault("notifications.enabled", true)
	viper.SetDefault("notifications.sound", true)
	viper.SetDefault("mcp.enabled", false)
	viper.SetDefault("mcp.user", "local")
}
