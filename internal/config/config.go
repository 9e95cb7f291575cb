// Package config provides Viper-based configuration loading for the
// rtelnet CLI. It is independent of rtelnet.Config, which every embedder
// builds directly in code — this package only seeds cmd/rtelnet's own
// operational defaults (logging, and the connection parameters a user can
// still override at invocation time).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings for the CLI.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultsConfig holds the CLI's fallback connection parameters.
type DefaultsConfig struct {
	Port               int           `mapstructure:"port"`
	Family             int           `mapstructure:"family"`
	IdleTimeout        time.Duration `mapstructure:"idle_timeout"`
	TotalTimeout       time.Duration `mapstructure:"total_timeout"`
	LoginTimeout       time.Duration `mapstructure:"login_timeout"`
	ExpectTimeout      time.Duration `mapstructure:"expect_timeout"`
	NegotiationTimeout time.Duration `mapstructure:"negotiation_timeout"`
	Verbosity          int           `mapstructure:"verbosity"`
}

// CLIConfig is the top-level configuration for cmd/rtelnet.
type CLIConfig struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Defaults DefaultsConfig `mapstructure:"defaults"`
}

// Validate checks all configuration invariants, accumulating every
// violation instead of stopping at the first.
func (c CLIConfig) Validate() error {
	var errs []string

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", c.Logging.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, console], got %q", c.Logging.Format))
	}
	if c.Defaults.Port < 1 || c.Defaults.Port > 65535 {
		errs = append(errs, fmt.Sprintf("defaults.port must be 1-65535, got %d", c.Defaults.Port))
	}
	if c.Defaults.Family != 4 {
		errs = append(errs, fmt.Sprintf("defaults.family must be 4, got %d", c.Defaults.Family))
	}
	if c.Defaults.IdleTimeout <= 0 {
		errs = append(errs, "defaults.idle_timeout must be positive")
	}
	if c.Defaults.TotalTimeout <= 0 {
		errs = append(errs, "defaults.total_timeout must be positive")
	}
	if c.Defaults.LoginTimeout <= 0 {
		errs = append(errs, "defaults.login_timeout must be positive")
	}
	if c.Defaults.ExpectTimeout <= 0 {
		errs = append(errs, "defaults.expect_timeout must be positive")
	}
	if c.Defaults.NegotiationTimeout <= 0 {
		errs = append(errs, "defaults.negotiation_timeout must be positive")
	}
	if c.Defaults.Verbosity < 0 || c.Defaults.Verbosity > 4 {
		errs = append(errs, fmt.Sprintf("defaults.verbosity must be 0-4, got %d", c.Defaults.Verbosity))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("defaults.port", 23)
	v.SetDefault("defaults.family", 4)
	v.SetDefault("defaults.idle_timeout", "1s")
	v.SetDefault("defaults.total_timeout", "10s")
	v.SetDefault("defaults.login_timeout", "3s")
	v.SetDefault("defaults.expect_timeout", "60s")
	v.SetDefault("defaults.negotiation_timeout", "3s")
	v.SetDefault("defaults.verbosity", 0)
}

// Load reads configuration from path, if it exists, layered under
// RTELNET_-prefixed environment variables and the defaults above. A
// missing file is not an error: the CLI runs fine on defaults plus env.
func Load(path string) (CLIConfig, error) {
	v := viper.New()
	v.SetEnvPrefix("RTELNET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return CLIConfig{}, fmt.Errorf("reading config file: %w", err)
			}
		}
	}

	var cfg CLIConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return CLIConfig{}, err
	}
	return cfg, nil
}
