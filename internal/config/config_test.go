package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func validConfig() CLIConfig {
	return CLIConfig{
		Logging: LoggingConfig{Level: "info", Format: "console"},
		Defaults: DefaultsConfig{
			Port:               23,
			Family:             4,
			IdleTimeout:        time.Second,
			TotalTimeout:       10 * time.Second,
			LoginTimeout:       3 * time.Second,
			ExpectTimeout:      60 * time.Second,
			NegotiationTimeout: 3 * time.Second,
			Verbosity:          0,
		},
	}
}

func TestValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidateLoggingLevel(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error"} {
		cfg := validConfig()
		cfg.Logging.Level = level
		assert.NoError(t, cfg.Validate(), "level %q should be valid", level)
	}
	cfg := validConfig()
	cfg.Logging.Level = "trace"
	assert.Error(t, cfg.Validate())
}

func TestValidateLoggingFormat(t *testing.T) {
	for _, format := range []string{"json", "console"} {
		cfg := validConfig()
		cfg.Logging.Format = format
		assert.NoError(t, cfg.Validate(), "format %q should be valid", format)
	}
	cfg := validConfig()
	cfg.Logging.Format = "xml"
	assert.Error(t, cfg.Validate())
}

func TestValidateDefaultsPort(t *testing.T) {
	cfg := validConfig()
	cfg.Defaults.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Defaults.Port = 65536
	assert.Error(t, cfg.Validate())
}

func TestValidateDefaultsFamily(t *testing.T) {
	cfg := validConfig()
	cfg.Defaults.Family = 6
	assert.Error(t, cfg.Validate())
}

func TestValidateDefaultsVerbosity(t *testing.T) {
	cfg := validConfig()
	cfg.Defaults.Verbosity = 5
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Defaults.Verbosity = -1
	assert.Error(t, cfg.Validate())
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rtelnet.yaml")
	err := os.WriteFile(path, []byte(`
logging:
  level: debug
  format: json
defaults:
  port: 2323
  family: 4
  idle_timeout: 500ms
  total_timeout: 5s
  login_timeout: 2s
  negotiation_timeout: 2s
  verbosity: 3
`), 0644)
	require.NoError(t, err)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 2323, cfg.Defaults.Port)
	assert.Equal(t, 3, cfg.Defaults.Verbosity)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 23, cfg.Defaults.Port)
}

func TestLoadInvalidPath(t *testing.T) {
	// A directory is not a readable config file.
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

// Property-based tests.

func TestPropertyValidPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.IntRange(1, 65535).Draw(t, "port")
		cfg := validConfig()
		cfg.Defaults.Port = port
		if err := cfg.Validate(); err != nil {
			t.Fatalf("valid port %d rejected: %v", port, err)
		}
	})
}

func TestPropertyInvalidPortRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		port := rapid.OneOf(
			rapid.IntRange(-1000, 0),
			rapid.IntRange(65536, 100000),
		).Draw(t, "port")
		cfg := validConfig()
		cfg.Defaults.Port = port
		if err := cfg.Validate(); err == nil {
			t.Fatalf("invalid port %d accepted", port)
		}
	})
}

func TestPropertyValidVerbosityRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.IntRange(0, 4).Draw(t, "verbosity")
		cfg := validConfig()
		cfg.Defaults.Verbosity = v
		if err := cfg.Validate(); err != nil {
			t.Fatalf("valid verbosity %d rejected: %v", v, err)
		}
	})
}

func TestPropertyInvalidVerbosityRange(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		v := rapid.OneOf(
			rapid.IntRange(-100, -1),
			rapid.IntRange(5, 100),
		).Draw(t, "verbosity")
		cfg := validConfig()
		cfg.Defaults.Verbosity = v
		if err := cfg.Validate(); err == nil {
			t.Fatalf("invalid verbosity %d accepted", v)
		}
	})
}
