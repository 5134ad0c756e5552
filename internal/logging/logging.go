// Package logging wraps zap the way pkg/logger does in sbomasm: a
// package-level *zap.SugaredLogger reached through a context.Context,
// so callers never pass a logger parameter through every function
// signature. Unlike sbomasm (a CLI that logs straight to stderr),
// pbedit owns the whole terminal while the TUI is running, so Init
// here always points at a file rather than stdout/stderr.
package logging

import (
	"context"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var logger *zap.SugaredLogger

type logKey struct{}

// Init opens path (created if missing, appended to otherwise) and
// installs a JSON-encoded logger at level, or a no-op logger if path is
// empty. Returns a sync func the caller should defer.
func Init(path string, debug bool) (func(), error) {
	if path == "" {
		logger = zap.NewNop().Sugar()
		return func() {}, nil
	}

	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.Level = zap.NewAtomicLevelAt(level)
	l, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	logger = l.Sugar()
	return func() { _ = l.Sync() }, nil
}

// L returns the package-level logger directly, for call sites (like
// cmd/pbedit's synchronous startup path) that have no context.Context
// of their own to thread it through.
func L() *zap.SugaredLogger {
	if logger == nil {
		return zap.NewNop().Sugar()
	}
	return logger
}

func WithLogger(ctx context.Context) context.Context {
	return context.WithValue(ctx, logKey{}, logger)
}

func FromContext(ctx context.Context) *zap.SugaredLogger {
	if l, ok := ctx.Value(logKey{}).(*zap.SugaredLogger); ok && l != nil {
		return l
	}
	return zap.NewNop().Sugar()
}
