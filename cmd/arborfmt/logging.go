package main

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// newLogger builds a base *zap.Logger from level/format strings. The root
// command stores it, tagged with a run id, in the package-level log
// variable that the subcommands use; no per-subsystem named loggers are
// derived from it.
func newLogger(level, format string) (*zap.Logger, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("parsing log level %q: %w", level, err)
	}

	var cfg zap.Config
	switch format {
	case "json":
		cfg = zap.NewProductionConfig()
	case "console", "":
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	default:
		return nil, fmt.Errorf("unknown log format %q", format)
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

// runID stamps a correlation id on every structured log line for one
// invocation of arborfmt, mirroring how request_id.go correlates one
// request's log lines in edirooss-zmux-server.
func runID() string {
	return uuid.New().String()
}
