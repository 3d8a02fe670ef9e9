package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds the process logger at the server default of info. The level
// can be overridden through LOG_LEVEL.
func New() *zap.Logger {
	return NewWithDefault(zapcore.InfoLevel)
}

// NewWithDefault builds the process logger with the given default level;
// LOG_LEVEL still wins. The client uses an error default so the terminal
// UI stays clean.
func NewWithDefault(level zapcore.Level) *zap.Logger {
	if l, ok := os.LookupEnv("LOG_LEVEL"); ok {
		switch l {
		case "dev", "development", "debug":
			level = zapcore.DebugLevel
		case "info":
			level = zapcore.InfoLevel
		case "warn", "warning":
			level = zapcore.WarnLevel
		case "error", "production", "prod":
			level = zapcore.ErrorLevel
		}
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}

	logger, err := cfg.Build()
	if err != nil {
		// A broken logging config is unrecoverable at startup.
		panic(err)
	}
	return logger
}
