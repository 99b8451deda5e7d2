// Package logging builds the zap loggers used across the service and CLI.
package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LevelEnv overrides the log level when set (debug, info, warn, error).
const LevelEnv = "LOG_LEVEL"

// New returns a JSON production logger, or a console development logger at debug level when verbose.
func New(verbose bool) (*zap.Logger, error) {
	var cfg zap.Config
	if verbose {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "time"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	if raw := strings.TrimSpace(os.Getenv(LevelEnv)); raw != "" {
		level, err := zapcore.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", LevelEnv, raw, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

// Must is New for command entry points; it falls back to a no-op logger on error.
func Must(verbose bool) *zap.Logger {
	logger, err := New(verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return zap.NewNop()
	}
	return logger
}
