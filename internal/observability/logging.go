// Package observability builds the zap loggers used throughout rtelnet: a
// level/format-based constructor for the CLI's configuration file, and a
// verbosity-number constructor for embedders that only want to say how
// chatty the session should be.
package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a structured logger for the given level and format.
//
// Precondition: level must be one of "debug", "info", "warn", "error".
// Precondition: format must be "json" or "console".
func NewLogger(level, format string) (*zap.Logger, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}

	var zapCfg zap.Config
	switch format {
	case "json":
		zapCfg = zap.NewProductionConfig()
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}

	zapCfg.Level = zap.NewAtomicLevelAt(parsed)
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}

// NewLoggerForVerbosity maps a Session's 0-4 verbosity level onto a logger:
// 0 is silent, 1-3 step through warn/info/debug, and 4 is debug (the
// per-byte trace field is added by the caller at the log site, not here).
func NewLoggerForVerbosity(verbosity int) (*zap.Logger, error) {
	switch {
	case verbosity <= 0:
		return zap.NewNop(), nil
	case verbosity == 1:
		return NewLogger("warn", "console")
	case verbosity == 2:
		return NewLogger("info", "console")
	default:
		return NewLogger("debug", "console")
	}
}
