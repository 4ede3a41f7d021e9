// Package logging provides file logging for the theia CLI.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Logger writes structured run logs to a timestamped file.
type Logger struct {
	slog     *slog.Logger
	file     *os.File
	filePath string
}

// Setup creates a logger that writes to a timestamped log file under
// logDir. Returns nil if logging is disabled (noLog=true).
func Setup(logDir string, verbose, noLog bool) (*Logger, error) {
	if noLog {
		return nil, nil
	}

	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", logDir, err)
	}

	timestamp := time.Now().Format("20060102_150405")
	filePath := filepath.Join(logDir, fmt.Sprintf("theia_run_%s.log", timestamp))

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file %s: %w", filePath, err)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	l := &Logger{
		slog:     slog.New(slog.NewTextHandler(file, &slog.HandlerOptions{Level: level})),
		file:     file,
		filePath: filePath,
	}

	l.slog.Info("theia starting", "log_file", filePath, "verbose", verbose)
	return l, nil
}

// Slog returns the underlying structured logger. Safe on a nil Logger: a
// discarding logger comes back so call sites never need a nil check.
func (l *Logger) Slog() *slog.Logger {
	if l == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return l.slog
}

// Writer returns the log file writer, or nil when file logging is off.
func (l *Logger) Writer() io.Writer {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file
}

// Close closes the log file.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	return l.file.Close()
}

// FilePath returns the path to the log file.
func (l *Logger) FilePath() string {
	if l == nil {
		return ""
	}
	return l.filePath
}
