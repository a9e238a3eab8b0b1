// Package logutil builds the zap loggers used across titantest.
package logutil

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// DefaultLogLevel is used when no level is configured.
var DefaultLogLevel = "info"

// ConvertToZapLevel converts a log level string to zapcore.Level.
func ConvertToZapLevel(lvl string) (zapcore.Level, error) {
	switch strings.ToLower(lvl) {
	case "debug":
		return zap.DebugLevel, nil
	case "", "info":
		return zap.InfoLevel, nil
	case "warn":
		return zap.WarnLevel, nil
	case "error":
		return zap.ErrorLevel, nil
	default:
		return zap.InfoLevel, fmt.Errorf("unknown log level %q", lvl)
	}
}

// GetDefaultZapLoggerConfig returns the console config used by the CLI.
// Logs go to stderr so stdout only carries test output.
func GetDefaultZapLoggerConfig() zap.Config {
	return zap.Config{
		Level:       zap.NewAtomicLevelAt(zap.InfoLevel),
		Development: false,
		Sampling: &zap.SamplingConfig{
			Initial:    100,
			Thereafter: 100,
		},
		Encoding: "console",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.CapitalLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
}

// New builds a logger at the given level. jsonOutput switches the encoder
// from console to JSON for CI log collectors.
func New(level string, jsonOutput bool) (*zap.Logger, error) {
	lvl, err := ConvertToZapLevel(level)
	if err != nil {
		return nil, err
	}

	lcfg := GetDefaultZapLoggerConfig()
	lcfg.Level = zap.NewAtomicLevelAt(lvl)
	if jsonOutput {
		lcfg.Encoding = "json"
	}
	return lcfg.Build()
}
