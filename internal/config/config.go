// Package config loads petridish settings from the user config file and
// environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/petridish/petridish/internal/cache"
	"github.com/spf13/viper"
)

// Config holds the effective settings for a run.
type Config struct {
	// CacheDir is where fetched templates and the cache index live.
	CacheDir string `mapstructure:"cache_dir"`

	// Abbreviations maps location prefixes to URL expansions, merged over
	// the built-in gh/gl table.
	Abbreviations map[string]string `mapstructure:"abbreviations"`

	// NonInteractive disables prompting; defaults answer every question.
	NonInteractive bool `mapstructure:"non_interactive"`

	// LogLevel sets the zerolog level (trace..error).
	LogLevel string `mapstructure:"log_level"`
}

// DefaultPath is where the config file is looked up when --config is not
// given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, "petridish", "config.yaml")
}

// Load reads the config file at path (or the default location when path is
// empty) and applies PETRIDISH_* environment overrides. A missing default
// file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetDefault("cache_dir", cache.DefaultDir())
	v.SetDefault("log_level", "info")
	v.SetDefault("non_interactive", false)

	v.SetEnvPrefix("PETRIDISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &cfg, nil
}
