// Package logger wraps zap construction so both binaries configure
// structured logging the same way.
package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger holds the application-wide zap logger.
type Logger struct {
	// Log is the configured zap logger. Nop until Init is called.
	Log *zap.Logger
}

// New returns a Logger with a no-op zap instance so callers can log
// safely before Init.
func New() *Logger {
	return &Logger{Log: zap.NewNop()}
}

// Init builds a production zap logger at the given level ("Debug",
// "Info", "Warn", "Error") and replaces the no-op instance.
func (l *Logger) Init(level string) error {
	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	log, err := cfg.Build()
	if err != nil {
		return err
	}
	l.Log = log
	return nil
}
