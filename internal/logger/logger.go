package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config describes how the application logger should behave.
type Config struct {
	Level       string
	Format      string
	OutputPaths []string
}

var (
	mu            sync.RWMutex
	defaultLogger *zap.Logger
)

// New builds a logger without touching the package-level instance.
func New(cfg Config) (*zap.Logger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	encoding := "console"
	if strings.EqualFold(strings.TrimSpace(cfg.Format), "json") {
		encoding = "json"
	} else {
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		// stdout is reserved for result envelopes.
		outputs = []string{"stderr"}
	}

	zcfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(parseLevel(cfg.Level)),
		Encoding:         encoding,
		EncoderConfig:    encoderCfg,
		OutputPaths:      outputs,
		ErrorOutputPaths: []string{"stderr"},
	}
	return zcfg.Build()
}

// Init configures the global logger instance.
func Init(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger != nil {
		_ = defaultLogger.Sync()
	}
	defaultLogger = l
	return nil
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// L returns the structured logger instance, or a no-op logger before Init.
func L() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	if defaultLogger == nil {
		return zap.NewNop()
	}
	return defaultLogger
}

// Named returns a child logger with the provided component name.
func Named(name string) *zap.Logger {
	return L().Named(name)
}

// Sync flushes buffered log entries.
func Sync() error {
	mu.RLock()
	defer mu.RUnlock()
	if defaultLogger == nil {
		return nil
	}
	return defaultLogger.Sync()
}
