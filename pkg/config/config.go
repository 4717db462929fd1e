// Package config loads application configuration from .chartdesk.yaml,
// CHARTDESK_* environment variables and defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config is the resolved configuration.
type Config struct {
	// Path is the chart store directory.
	Path string `mapstructure:"path"`
	// SettingsFile holds the view settings snapshot. Relative paths are
	// resolved against Path.
	SettingsFile string `mapstructure:"settings_file"`
	// AskToSave guards closing and replacing dirty documents.
	AskToSave bool `mapstructure:"ask_to_save"`
	// StrictSettings fails on settings key collisions instead of warning.
	StrictSettings bool `mapstructure:"strict_settings"`
	// LogLevel is a zerolog level name.
	LogLevel string `mapstructure:"log_level"`
}

// BasePath implements store.Config.
func (c *Config) BasePath() string {
	return c.Path
}

// SettingsPath returns the absolute settings file path.
func (c *Config) SettingsPath() string {
	if filepath.IsAbs(c.SettingsFile) {
		return c.SettingsFile
	}
	return filepath.Join(c.Path, c.SettingsFile)
}

// Level parses LogLevel, falling back to warn.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || c.LogLevel == "" {
		return zerolog.WarnLevel
	}
	return lvl
}

// SetDefaults registers the defaults on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("path", "~/.chartdesk")
	v.SetDefault("settings_file", "settings.yaml")
	v.SetDefault("ask_to_save", true)
	v.SetDefault("strict_settings", false)
	v.SetDefault("log_level", "warn")
}

// Load reads configuration. The config file is looked up in
// $CHARTDESK_CONFIG_PATH, then the working directory, then the home
// directory; a missing file is not an error.
func Load() (*Config, error) {
	return LoadWith(viper.New())
}

// LoadWith reads configuration into v, which callers may have bound to
// command line flags.
func LoadWith(v *viper.Viper) (*Config, error) {
	SetDefaults(v)
	v.SetConfigName(".chartdesk") // .yaml is implicit
	v.SetEnvPrefix("CHARTDESK")
	v.AutomaticEnv()

	if override := os.Getenv("CHARTDESK_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: reading config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	path, err := homedir.Expand(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("config: expanding %q: %w", cfg.Path, err)
	}
	cfg.Path = path
	return cfg, nil
}
