// Package logging builds the structured logger used across the
// verifier: zap with a configurable level and encoding.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logging configuration.
type Config struct {
	Level     string
	Format    string // "json" or "console"
	Output    string // "stdout" or "stderr"
	AddCaller bool
}

// DefaultConfig is the configuration used when none is supplied:
// info-level console output on stderr.
func DefaultConfig() Config {
	return Config{Level: "info", Format: "console", Output: "stderr"}
}

// New creates a structured logger from the configuration.
func New(config Config) (*zap.SugaredLogger, error) {
	if config.Format == "" {
		config.Format = "console"
	}
	if config.Output == "" {
		config.Output = "stderr"
	}

	zapConfig := zap.NewProductionConfig()
	zapConfig.Level = parseLevel(config.Level)
	zapConfig.Encoding = config.Format
	zapConfig.OutputPaths = []string{config.Output}
	zapConfig.ErrorOutputPaths = []string{config.Output}
	zapConfig.DisableCaller = !config.AddCaller
	zapConfig.DisableStacktrace = true
	if config.Format == "console" {
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	logger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger.Sugar(), nil
}

// Nop returns a logger that discards everything, for tests and for
// callers that do not care about log output.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// parseLevel parses a zap level from a string, defaulting to info.
func parseLevel(level string) zap.AtomicLevel {
	switch level {
	case "debug":
		return zap.NewAtomicLevelAt(zapcore.DebugLevel)
	case "info":
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	case "warn":
		return zap.NewAtomicLevelAt(zapcore.WarnLevel)
	case "error":
		return zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	default:
		return zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
}
