// Package logging builds the logr.Logger used across the planner and defines
// the verbosity levels passed to logger.V.
package logging

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Verbosity levels used with logger.V(...).
const (
	// DEBUG is for per-item decisions (skipped drivers, chosen models).
	DEBUG = 1
	// TRACE is for per-year arithmetic.
	TRACE = 2
)

// Options configures NewLogger.
type Options struct {
	// Development selects the console encoder and development defaults.
	Development bool
	// Verbosity is the highest V level that is emitted.
	Verbosity int
	// JSON forces the JSON encoder even in development mode.
	JSON bool
}

var base = logr.Discard()

// NewLogger builds a zap-backed logr.Logger and installs it as the package default.
func NewLogger(opts Options) (logr.Logger, error) {
	if opts.Verbosity < 0 {
		return logr.Discard(), fmt.Errorf("verbosity must be >= 0, got %d", opts.Verbosity)
	}
	var cfg zap.Config
	if opts.Development {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	if opts.JSON {
		cfg.Encoding = "json"
	}
	// zap levels are negated logr verbosities
	cfg.Level = zap.NewAtomicLevelAt(zapcore.Level(-opts.Verbosity))
	zl, err := cfg.Build()
	if err != nil {
		return logr.Discard(), fmt.Errorf("building zap logger: %w", err)
	}
	logger := zapr.NewLogger(zl)
	base = logger
	return logger, nil
}

// NewTestLogger installs a development logger at TRACE verbosity for test suites.
func NewTestLogger() logr.Logger {
	logger, err := NewLogger(Options{Development: true, Verbosity: TRACE})
	if err != nil {
		return logr.Discard()
	}
	return logger
}

// Default returns the logger installed by the last NewLogger call.
func Default() logr.Logger {
	return base
}

// FromContext returns the logger carried by ctx, falling back to Default.
func FromContext(ctx context.Context) logr.Logger {
	if logger, err := logr.FromContext(ctx); err == nil {
		return logger
	}
	return base
}

// IntoContext returns a copy of ctx carrying logger.
func IntoContext(ctx context.Context, logger logr.Logger) context.Context {
	return logr.NewContext(ctx, logger)
}
