// Package logger wraps a zap sugared logger behind the small interface the rest of
// the backend depends on.
//
// Loggers should be injected and Named per component, e.g. lggr.Named("waitlist").
// Tests use Test or TestObserved; New is reserved for the running server.
//
// Never pass credentials, card numbers or the encryption secret as log values.
package logger

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type Logger interface {
	Debugw(msg string, keysAndValues ...any)
	Infow(msg string, keysAndValues ...any)
	Warnw(msg string, keysAndValues ...any)
	Errorw(msg string, keysAndValues ...any)

	Infof(format string, values ...any)
	Errorf(format string, values ...any)

	// Named returns a child logger with name appended to the current name.
	Named(name string) Logger

	// Sync flushes any buffered log entries.
	Sync() error
}

// New returns a production JSON logger at the given level ("debug", "info", ...).
// An unparseable level falls back to info.
func New(level string) (Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level.SetLevel(lvl)
	core, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &logger{core.Sugar()}, nil
}

// Test returns a logger that writes to tb.
func Test(tb testing.TB) Logger {
	tb.Helper()
	return &logger{zaptest.NewLogger(tb).Sugar()}
}

// TestObserved returns a test logger plus the entries it recorded at lvl and above.
func TestObserved(tb testing.TB, lvl zapcore.Level) (Logger, *observer.ObservedLogs) {
	tb.Helper()
	oCore, logs := observer.New(lvl)
	observe := zap.WrapCore(func(c zapcore.Core) zapcore.Core {
		return zapcore.NewTee(c, oCore)
	})
	return &logger{zaptest.NewLogger(tb, zaptest.WrapOptions(observe)).Sugar()}, logs
}

// Nop returns a no-op Logger.
func Nop() Logger {
	return &logger{zap.New(zapcore.NewNopCore()).Sugar()}
}

type logger struct {
	*zap.SugaredLogger
}

func (l *logger) Named(name string) Logger {
	return &logger{l.SugaredLogger.Named(name)}
}
