package rtelnet

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Config configures a Session. An embedder constructs it directly — there
// is no file or environment loader at this layer, since a client library
// shouldn't assume how its host application manages configuration.
type Config struct {
	Address  string
	Port     int
	Family   int
	Username string
	Password string

	IdleTimeout  time.Duration
	TotalTimeout time.Duration

	// LoginTimeout bounds only the post-password success/failure probe.
	LoginTimeout time.Duration
	// ExpectTimeout bounds the pre-credential prompt waits (the "login:"
	// and "Password:" expects), which run on a much longer ceiling since a
	// slow server may take a while to present its banner.
	ExpectTimeout      time.Duration
	NegotiationTimeout time.Duration
	BufferSize         int

	// ExpectedPrompt, when set, replaces the $/>/# shell-prompt heuristic
	// in the login driver with an exact substring match.
	ExpectedPrompt string

	// Verbosity is 0 (silent) through 4 (per-byte trace). When Logger is
	// nil it selects the level of the logger NewSession builds; at 4 the
	// reader also logs every received byte and negotiation, whichever
	// logger is in use.
	Verbosity int
	Logger    *zap.Logger
}

// NewConfig returns a Config with sane defaults applied, ready for
// Validate and NewSession.
func NewConfig(address, username, password string) Config {
	return Config{
		Address:            address,
		Port:               23,
		Family:             4,
		Username:           username,
		Password:           password,
		IdleTimeout:        1000 * time.Millisecond,
		TotalTimeout:       10000 * time.Millisecond,
		LoginTimeout:       3000 * time.Millisecond,
		ExpectTimeout:      60 * time.Second,
		NegotiationTimeout: 3 * time.Second,
		BufferSize:         1024,
	}
}

func (c Config) withDefaults() Config {
	if c.Port == 0 {
		c.Port = 23
	}
	if c.Family == 0 {
		c.Family = 4
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 1000 * time.Millisecond
	}
	if c.TotalTimeout == 0 {
		c.TotalTimeout = 10000 * time.Millisecond
	}
	if c.LoginTimeout == 0 {
		c.LoginTimeout = 3000 * time.Millisecond
	}
	if c.ExpectTimeout == 0 {
		c.ExpectTimeout = 60 * time.Second
	}
	if c.NegotiationTimeout == 0 {
		c.NegotiationTimeout = 3 * time.Second
	}
	if c.BufferSize == 0 {
		c.BufferSize = 1024
	}
	return c
}

// Validate checks every configuration invariant, accumulating all
// violations instead of stopping at the first.
func (c Config) Validate() error {
	var errs []string

	if c.Address == "" {
		errs = append(errs, "address must not be empty")
	}
	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Sprintf("port must be 1-65535, got %d", c.Port))
	}
	if c.Family != 4 {
		errs = append(errs, fmt.Sprintf("family must be 4 (IPv6 literals are not supported), got %d", c.Family))
	}
	if c.Username == "" {
		errs = append(errs, "username must not be empty")
	}
	if c.Password == "" {
		errs = append(errs, "password must not be empty")
	}
	if c.IdleTimeout <= 0 {
		errs = append(errs, "idle timeout must be positive")
	}
	if c.TotalTimeout <= 0 {
		errs = append(errs, "total timeout must be positive")
	}
	if c.LoginTimeout <= 0 {
		errs = append(errs, "login timeout must be positive")
	}
	if c.ExpectTimeout <= 0 {
		errs = append(errs, "expect timeout must be positive")
	}
	if c.NegotiationTimeout <= 0 {
		errs = append(errs, "negotiation timeout must be positive")
	}
	if c.BufferSize <= 0 {
		errs = append(errs, "buffer size must be positive")
	}
	if c.Verbosity < 0 || c.Verbosity > 4 {
		errs = append(errs, fmt.Sprintf("verbosity must be 0-4, got %d", c.Verbosity))
	}

	if len(errs) > 0 {
		return fmt.Errorf("rtelnet: invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}
