// Package logger writes structured CLI logs to a file. The dashboard owns
// the terminal, so nothing is ever logged to stdout or stderr.
package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu      sync.Mutex
	logger  = zap.NewNop()
	logPath string
)

// DefaultPath returns tmp/cli-<timestamp>.log relative to the working directory.
func DefaultPath() string {
	return filepath.Join("tmp", fmt.Sprintf("cli-%s.log", time.Now().Format("20060102-150405")))
}

// Init replaces the package logger with one writing JSON lines to path.
// An empty path uses DefaultPath. level is one of debug, info, warn, error.
func Init(path, level string) (*zap.Logger, error) {
	if path == "" {
		path = DefaultPath()
	}
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Sampling = nil

	l, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	_ = logger.Sync()
	logger = l.Named("cli")
	logPath = path
	return logger, nil
}

// L returns the current logger. It is a no-op logger until Init succeeds.
func L() *zap.Logger {
	mu.Lock()
	defer mu.Unlock()
	return logger
}

// Path returns the file Init wrote to, or "".
func Path() string {
	mu.Lock()
	defer mu.Unlock()
	return logPath
}

// Close flushes buffered entries and reverts to a no-op logger.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	_ = logger.Sync()
	logger = zap.NewNop()
	logPath = ""
}
