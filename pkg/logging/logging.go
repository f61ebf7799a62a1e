// Package logging builds the process-wide zap.Logger every other package
// logs through, configured the way a small operator CLI/reconciler wants it:
// human-readable in a terminal, level tunable via an env var.
package logging

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once   sync.Once
	logger *zap.Logger
)

// L returns the shared logger, building it on first use from LOG_LEVEL
// (debug|info|warn|error, default info) and DEBUG=1 as a shorthand for
// LOG_LEVEL=debug.
func L() *zap.Logger {
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		cfg.Encoding = "console"
		cfg.EncoderConfig = zap.NewDevelopmentEncoderConfig()
		cfg.Level = zap.NewAtomicLevelAt(levelFromEnv())

		built, err := cfg.Build()
		if err != nil {
			// Build only fails on a malformed config, which a literal
			// zap.NewProductionConfig() never produces.
			panic(err)
		}
		logger = built
	})
	return logger
}

func levelFromEnv() zapcore.Level {
	if os.Getenv("DEBUG") == "1" {
		return zapcore.DebugLevel
	}
	lvl, err := zapcore.ParseLevel(os.Getenv("LOG_LEVEL"))
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// Sync flushes the logger's buffers; call once from main before exit.
func Sync() {
	if logger != nil {
		_ = logger.Sync()
	}
}
