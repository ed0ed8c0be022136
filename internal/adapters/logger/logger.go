// Package logger implements a logging adapter using log/slog.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"go.trai.ch/parcel/internal/core/domain"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger implements ports.Logger using log/slog.
// Console records go to a pretty or JSON handler; when a debug log is
// attached, every record including Debug is also written there as JSON.
type Logger struct {
	logger   *slog.Logger
	debug    *slog.Logger
	closer   io.Closer
	mu       sync.RWMutex
	jsonMode bool
	verbose  bool
	output   io.Writer
}

// New creates a new Logger instance writing to stderr.
func New() *Logger {
	return &Logger{
		logger: slog.New(NewPrettyHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})),
		output: os.Stderr,
	}
}

// SetOutput updates the console destination, preserving the JSON mode setting.
// If w is nil, os.Stderr is used.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	l.output = w
	l.logger = slog.New(l.consoleHandler())
}

// SetJSON switches the console between JSON and pretty logging.
func (l *Logger) SetJSON(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.jsonMode = enable
	l.logger = slog.New(l.consoleHandler())
}

// SetVerbose also sends Debug records to the console.
func (l *Logger) SetVerbose(enable bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.verbose = enable
	l.logger = slog.New(l.consoleHandler())
}

// SetDebugLog attaches a rotating JSON debug log at path.
func (l *Logger) SetDebugLog(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), domain.DirPerm); err != nil {
		return domain.Fail(domain.ErrPermission, "failed to create debug log directory", "path", path, "cause", err.Error())
	}
	rotator := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer != nil {
		_ = l.closer.Close()
	}
	l.closer = rotator
	l.debug = slog.New(slog.NewJSONHandler(rotator, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return nil
}

// Close flushes and detaches the debug log, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closer == nil {
		return nil
	}
	err := l.closer.Close()
	l.closer = nil
	l.debug = nil
	return err
}

func (l *Logger) consoleHandler() slog.Handler {
	w := l.output
	if w == nil {
		w = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if l.verbose {
		opts.Level = slog.LevelDebug
	}
	if l.jsonMode {
		return slog.NewJSONHandler(w, opts)
	}
	return NewPrettyHandler(w, opts)
}

// Debug records diagnostic detail in the debug log, and on the console when verbose.
func (l *Logger) Debug(msg string, keyvals ...any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.verbose {
		l.logger.Debug(msg, keyvals...)
	}
	if l.debug != nil {
		l.debug.Debug(msg, keyvals...)
	}
}

// Info logs an informational message.
func (l *Logger) Info(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Info(msg)
	if l.debug != nil {
		l.debug.Info(msg)
	}
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	l.logger.Warn(msg)
	if l.debug != nil {
		l.debug.Warn(msg)
	}
}

// Error logs an error. In pretty mode the error chain and its metadata are
// rendered hierarchically; in JSON mode the error is logged as a structured value.
func (l *Logger) Error(err error) {
	if err == nil {
		return
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.debug != nil {
		l.debug.Error("operation failed", "error", err)
	}
	if l.jsonMode {
		l.logger.Error("operation failed", "error", err)
		return
	}
	l.logger.Error(formatErrorEntries(collectErrorEntries(err)))
}
