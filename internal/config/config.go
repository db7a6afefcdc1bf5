// Package config provides configuration management for the confirmer.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	apperrors "trade-confirmer/internal/errors"
	"trade-confirmer/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Defaults DefaultsConfig `mapstructure:"defaults"`
	Journal  JournalConfig  `mapstructure:"journal"`
	Server   ServerConfig   `mapstructure:"server"`
	Batch    BatchConfig    `mapstructure:"batch"`
	Log      LogConfig      `mapstructure:"log"`
	UI       UIConfig       `mapstructure:"ui"`

	// Path is the config file that was read.
	Path string `mapstructure:"-"`
}

// DefaultsConfig holds the values used when a notation or request omits them.
type DefaultsConfig struct {
	Exchange      string  `mapstructure:"exchange"`
	Quantity      int     `mapstructure:"quantity"`
	BuyerName     string  `mapstructure:"buyer_name"`
	SellerName    string  `mapstructure:"seller_name"`
	HedgeFallback float64 `mapstructure:"hedge_fallback"`
}

// JournalConfig holds the confirmation journal settings.
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// ServerConfig holds the HTTP adapter settings.
type ServerConfig struct {
	Addr         string        `mapstructure:"addr"`
	CacheMaxCost int64         `mapstructure:"cache_max_cost"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	CORSOrigin   string        `mapstructure:"cors_origin"`
}

// BatchConfig holds the batch runner settings.
type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Console    bool   `mapstructure:"console"`
	File       bool   `mapstructure:"file"`
	Path       string `mapstructure:"path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool `mapstructure:"color_enabled"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/trade-confirmer"
	}
	return filepath.Join(home, ".config", "trade-confirmer")
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory. A missing
// config.toml is created from the template.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}
	if err := loadConfigFile(configDir, "config", cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper, configDir string) {
	v.SetDefault("defaults.exchange", "CME")
	v.SetDefault("defaults.quantity", 100)
	v.SetDefault("defaults.buyer_name", "BUYER_1")
	v.SetDefault("defaults.seller_name", "SELLER_1")
	v.SetDefault("defaults.hedge_fallback", 0.4)

	v.SetDefault("journal.enabled", false)
	v.SetDefault("journal.path", filepath.Join(configDir, "journal.db"))

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cache_max_cost", 1<<20)
	v.SetDefault("server.session_ttl", "8h")
	v.SetDefault("server.cors_origin", "*")

	v.SetDefault("batch.workers", 4)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.console", true)
	v.SetDefault("log.file", true)
	v.SetDefault("log.path", filepath.Join(configDir, "logs", "confirmer.log"))
	v.SetDefault("log.max_size", 20)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age", 30)

	v.SetDefault("ui.color_enabled", true)
}

func loadConfigFile(configDir, name string, cfg *Config) error {
	v := viper.New()
	v.SetConfigName(name)
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		path, err := createTemplateConfig(configDir, name)
		if err != nil {
			return err
		}
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading template %s: %w", path, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return err
	}
	cfg.Path = v.ConfigFileUsed()
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("CONFIRMER_EXCHANGE"); v != "" {
		cfg.Defaults.Exchange = v
	}
	if v := os.Getenv("CONFIRMER_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CONFIRMER_SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CONFIRMER_JOURNAL"); v != "" {
		cfg.Journal.Enabled = true
		cfg.Journal.Path = v
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Defaults.Exchange == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "defaults.exchange must not be empty")
	}
	if c.Defaults.Quantity <= 0 {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "defaults.quantity must be positive, got %d", c.Defaults.Quantity)
	}
	if c.Defaults.HedgeFallback <= 0 || c.Defaults.HedgeFallback > 1 {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "defaults.hedge_fallback must be in (0, 1], got %g", c.Defaults.HedgeFallback)
	}
	if c.Journal.Enabled && c.Journal.Path == "" {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "journal.path is required when the journal is enabled")
	}
	if c.Server.CacheMaxCost <= 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "server.cache_max_cost must be positive")
	}
	if c.Server.SessionTTL <= 0 {
		return apperrors.Wrap(apperrors.ErrConfigInvalid, "server.session_ttl must be positive")
	}
	if c.Batch.Workers < 1 || c.Batch.Workers > 64 {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "batch.workers must be between 1 and 64, got %d", c.Batch.Workers)
	}
	if !logging.ValidLevel(c.Log.Level) {
		return apperrors.Wrapf(apperrors.ErrConfigInvalid, "log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

// LoggingConfig converts the [log] section for the logging package.
func (c *Config) LoggingConfig() logging.LogConfig {
	return logging.LogConfig{
		Level:      c.Log.Level,
		Console:    c.Log.Console,
		File:       c.Log.File,
		FilePath:   c.Log.Path,
		MaxSize:    c.Log.MaxSize,
		MaxBackups: c.Log.MaxBackups,
		MaxAge:     c.Log.MaxAge,
	}
}
