// Package config loads application configuration from file and env.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	API  APIConfig
	UI   UIConfig
	Data DataConfig
}

// APIConfig holds backend settings.
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url" validate:"required,url"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" validate:"required"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencyCode string `mapstructure:"currency_code" validate:"required"`
}

// DataConfig holds local storage settings.
type DataConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`
}

// SessionPath is the session file inside the data dir.
func (c Config) SessionPath() string {
	return filepath.Join(c.Data.Dir, "session.json")
}

// HistoryPath is the local transfer history database inside the data dir.
func (c Config) HistoryPath() string {
	return filepath.Join(c.Data.Dir, "history.db")
}

// Load reads configuration from file and env. Env var overrides use prefix
// MOCKSYS_.
func Load() (Config, error) {
	v := viper.New()

	// default values
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.request_timeout", "10s")
	v.SetDefault("ui.currency_code", "PSU")
	v.SetDefault("data.dir", filepath.Join(os.Getenv("HOME"), ".local", "share", "mocksys-tui"))

	v.SetConfigType("toml")

	cfgPath := os.Getenv("MOCKSYS_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "mocksys-tui"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("MOCKSYS")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return Config{}, fmt.Errorf("config: %s fails rule %q", strings.ToLower(f.Namespace()), f.Tag())
		}
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

// Save writes the provided config to disk, creating the config directory if
// needed. Used by `mocksys-tui init` style setups and tests.
func Save(cfg Config) error {
	path := os.Getenv("MOCKSYS_CONFIG")
	if path == "" {
		path = filepath.Join(os.Getenv("HOME"), ".config", "mocksys-tui", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.request_timeout", cfg.API.RequestTimeout.String())
	v.Set("ui.currency_code", cfg.UI.CurrencyCode)
	v.Set("data.dir", cfg.Data.Dir)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
