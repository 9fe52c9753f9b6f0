// Package logger provides structured logging using Zap.
package logger

import (
	"go.uber.org/zap"
)

// New builds a sugared logger for the given environment.
// For "production", it uses a JSON encoder. For "test" it discards everything.
// For all other environments, it uses a human-readable console encoder.
func New(env string) *zap.SugaredLogger {
	var base *zap.Logger
	var err error

	switch env {
	case "production":
		base, err = zap.NewProduction()
	case "test":
		base = zap.NewNop()
	default:
		base, err = zap.NewDevelopment()
	}

	if err != nil {
		// Fallback to nop logger if initialization fails.
		base = zap.NewNop()
	}

	return base.Sugar()
}

// Nop returns a logger that discards all entries.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// Sync flushes any buffered log entries. Call this before application exit.
func Sync(log *zap.SugaredLogger) {
	if log != nil {
		_ = log.Sync()
	}
}
