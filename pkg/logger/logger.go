// Package logger provides opinionated logging for the bookshop chatbot.
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a console logger writing to stdout. Debug widens the
// level from Info to Debug.
func NewLogger(debug bool) *zap.Logger {
	return zap.New(consoleCore(zapcore.AddSync(os.Stdout), debug), zap.AddCaller())
}

// NewFileLogger builds a logger writing to the given file. TUI processes
// own the terminal's alternate screen, so their diagnostics go to a file
// instead of stdout.
func NewFileLogger(path string, debug bool) (*zap.Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return zap.New(consoleCore(zapcore.AddSync(f), debug), zap.AddCaller()), nil
}

func consoleCore(sink zapcore.WriteSyncer, debug bool) zapcore.Core {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	return zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), sink, level)
}
