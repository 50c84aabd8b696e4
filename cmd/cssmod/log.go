package main

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Console log levels
const (
	logNone  = "none"
	logDebug = "debug"
	logWarn  = "warn"
)

// logLevel maps the global flags to a console log level
func logLevel(verbose, quiet bool) string {
	switch {
	case quiet:
		return logNone
	case verbose:
		return logDebug
	}
	return logWarn
}

// newLogger returns the console logger. Everything goes to stderr so stdout
// stays clean for reports and JSON output.
func newLogger(level string, useColors bool) *zap.Logger {
	var enabler zapcore.Level
	switch level {
	case logNone:
		return zap.NewNop()
	case logDebug:
		enabler = zapcore.DebugLevel
	default:
		enabler = zapcore.WarnLevel
	}

	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	ec.TimeKey = zapcore.OmitKey
	if useColors {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(ec), zapcore.Lock(os.Stderr), enabler)
	return zap.New(core).Named("cssmod")
}
