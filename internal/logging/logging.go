// Package logging builds the zap loggers used across peerauth's
// long-lived components (manager, handshake handler, daemon).
package logging

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"
)

// Settings controls how the root logger is constructed.
type Settings struct {
	// Level is one of zap's level names ("debug", "info", "warn", "error").
	// Empty defaults to "info".
	Level string
	// Encoding is "console" or "json". Empty defaults to "console".
	Encoding string
	// ForceTimestamps adds timestamps to console output even when stdout
	// is not a terminal (useful under a supervisor that already strips
	// its own timestamps).
	ForceTimestamps bool
}

// New builds a *zap.Logger from Settings. It never returns a nil logger
// on error, a no-op logger is returned instead so that callers that
// ignore the error still have something safe to log into.
func New(s Settings) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if s.Level != "" {
		if err := level.UnmarshalText([]byte(s.Level)); err != nil {
			return zap.NewNop(), fmt.Errorf("log setting: %w", err)
		}
	}

	encoding := s.Encoding
	if encoding == "" {
		encoding = "console"
	}

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.Encoding = encoding
	cc.Level = zap.NewAtomicLevelAt(level)
	cc.Sampling = nil
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	if term.IsTerminal(int(os.Stdout.Fd())) || s.ForceTimestamps {
		cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		cc.EncoderConfig.EncodeTime = func(time.Time, zapcore.PrimitiveArrayEncoder) {}
	}

	log, err := cc.Build()
	if err != nil {
		return zap.NewNop(), fmt.Errorf("building logger: %w", err)
	}
	return log, nil
}

// Named returns a module-scoped child logger, the way every subsystem in
// this codebase identifies its log lines.
func Named(log *zap.Logger, module string) *zap.Logger {
	return log.With(zap.String("module", module))
}
