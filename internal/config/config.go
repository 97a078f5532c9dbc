// Package config provides configuration management for Focus.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds all configuration for the Focus application.
type Config struct {
	Server        ServerConfig       `mapstructure:"server"`
	Timer         TimerConfig        `mapstructure:"timer"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Storage       StorageConfig      `mapstructure:"storage"`
	Theme         ThemeConfig        `mapstructure:"theme"`
}

// ServerConfig holds the backend server settings. The client derives its
// base URL from the same address, so a single config file serves both
// processes.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// BaseURL returns the HTTP base URL the client should talk to.
func (c ServerConfig) BaseURL() string {
	addr := c.Addr
	if addr == "" {
		addr = DefaultServerAddr
	}
	if addr[0] == ':' {
		addr = "127.0.0.1" + addr
	}
	return "http://" + addr
}

// TimerConfig holds session timer settings.
type TimerConfig struct {
	DefaultMinutes float64 `mapstructure:"default_minutes"`
}

// NotificationConfig holds desktop notification settings.
type NotificationConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Sound   bool `mapstructure:"sound"`
}

// StorageConfig holds storage settings.
type StorageConfig struct {
	DataDir string `mapstructure:"data_dir"`
}

// ThemeConfig holds theme customization settings.
type ThemeConfig struct {
	ColorAccent        string `mapstructure:"color_accent"`
	ColorTitle         string `mapstructure:"color_title"`
	ColorHelp          string `mapstructure:"color_help"`
	ColorRatingLow     string `mapstructure:"color_rating_low"`
	ColorRatingMedium  string `mapstructure:"color_rating_medium"`
	ColorRatingHigh    string `mapstructure:"color_rating_high"`
	TimerGradientStart string `mapstructure:"timer_gradient_start"`
	TimerGradientEnd   string `mapstructure:"timer_gradient_end"`
	IconApp            string `mapstructure:"icon_app"`
}

// DefaultThemeConfig returns the default theme configuration.
func DefaultThemeConfig() ThemeConfig {
	return ThemeConfig{
		ColorAccent:        "#7C6FE0",
		ColorTitle:         "#6B7280",
		ColorHelp:          "#95A5A6",
		ColorRatingLow:     "#E74C3C",
		ColorRatingMedium:  "#F1C40F",
		ColorRatingHigh:    "#2ECC71",
		TimerGradientStart: "#7C6FE0",
		TimerGradientEnd:   "#A78BFA",
		IconApp:            "⏱",
	}
}

// DefaultServerAddr is the backend listen address when none is configured.
const DefaultServerAddr = "127.0.0.1:5001"

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: DefaultServerAddr,
		},
		Timer: TimerConfig{
			DefaultMinutes: 25,
		},
		Notifications: NotificationConfig{
			Enabled: true,
			Sound:   true,
		},
		Storage: StorageConfig{
			DataDir: "~/.focus",
		},
		Theme: DefaultThemeConfig(),
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

	// Expand ~ in data directory
	if cfg.Storage.DataDir == "~/.focus" || cfg.Storage.DataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		cfg.Storage.DataDir = filepath.Join(homeDir, ".focus")
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
	viper.Set("timer.default_minutes", cfg.Timer.DefaultMinutes)
	viper.Set("notifications.enabled", cfg.Notifications.Enabled)
	viper.Set("notifications.sound", cfg.Notifications.Sound)
	viper.Set("storage.data_dir", cfg.Storage.DataDir)
	viper.Set("theme.color_accent", cfg.Theme.ColorAccent)
	viper.Set("theme.color_title", cfg.Theme.ColorTitle)
	viper.Set("theme.color_help", cfg.Theme.ColorHelp)
	viper.Set("theme.color_rating_low", cfg.Theme.ColorRatingLow)
	viper.Set("theme.color_rating_medium", cfg.Theme.ColorRatingMedium)
	viper.Set("theme.color_rating_high", cfg.Theme.ColorRatingHigh)
	viper.Set("theme.timer_gradient_start", cfg.Theme.TimerGradientStart)
	viper.Set("theme.timer_gradient_end", cfg.Theme.TimerGradientEnd)
	viper.Set("theme.icon_app", cfg.Theme.IconApp)

	return viper.WriteConfig()
}

// GetConfigPath returns the path to the config file.
func GetConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".focus", "config.toml"), nil
}

// GetDBPath returns the path to the database file.
func GetDBPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "focus.db")
}

// GetSnapshotPath returns the path to the running-timer snapshot file.
func GetSnapshotPath(cfg *Config) string {
	return filepath.Join(cfg.Storage.DataDir, "timer.json")
}

// setDefaults sets default values for viper.
func setDefaults() {
	viper.SetDefault("server.addr", DefaultServerAddr)
	viper.SetDefault("timer.default_minutes", 25)
	viper.SetDefault("notifications.enabled", true)
	viper.SetDefault("notifications.sound", true)
	viper.SetDefault("storage.data_dir", "~/.focus")

	defaults := DefaultThemeConfig()
	viper.SetDefault("theme.color_accent", defaults.ColorAccent)
	viper.SetDefault("theme.color_title", defaults.ColorTitle)
	viper.SetDefault("theme.color_help", defaults.ColorHelp)
	viper.SetDefault("theme.color_rating_low", defaults.ColorRatingLow)
	viper.SetDefault("theme.color_rating_medium", defaults.ColorRatingMedium)
	viper.SetDefault("theme.color_rating_high", defaults.ColorRatingHigh)
	viper.SetDefault("theme.timer_gradient_start", defaults.TimerGradientStart)
	viper.SetDefault("theme.timer_gradient_end", defaults.TimerGradientEnd)
	viper.SetDefault("theme.icon_app", defaults.IconApp)
}
