// Package logger holds the process-wide zap logger of the normalizer CLI.
// Output goes to stderr; stdout carries the rendered report.
package logger

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// L is the global logger instance
	L    *zap.Logger
	once sync.Once
)

// Init builds the global logger once. debug selects DEBUG level with
// caller information, otherwise INFO.
func Init(debug bool) {
	once.Do(func() {
		level := zapcore.InfoLevel
		if debug {
			level = zapcore.DebugLevel
		}

		config := zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		config.Encoding = "console"
		config.OutputPaths = []string{"stderr"}
		config.ErrorOutputPaths = []string{"stderr"}
		config.Sampling = nil
		config.DisableCaller = !debug
		config.DisableStacktrace = !debug
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

		var err error
		if L, err = config.Build(); err != nil {
			L = zap.NewNop()
		}
	})
}

// Sync flushes buffered entries. Call it before exiting.
func Sync() {
	if L != nil {
		_ = L.Sync()
	}
}

// Default returns the global logger, initializing it from MR_DEBUG when
// no command did.
func Default() *zap.Logger {
	if L == nil {
		Init(os.Getenv("MR_DEBUG") != "")
	}
	return L
}

// Named returns a child logger for one component, e.g. "processor".
func Named(name string) *zap.Logger {
	return Default().Named(name)
}

// Info, Warn and Error log on the global logger.
func Info(msg string, fields ...zap.Field) {
	Default().Info(msg, fields...)
}

func Warn(msg string, fields ...zap.Field) {
	Default().Warn(msg, fields...)
}

func Error(msg string, fields ...zap.Field) {
	Default().Error(msg, fields...)
}
