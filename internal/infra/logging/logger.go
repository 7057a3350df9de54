// Package logging writes tempo's activity log.
// Every entry goes to <dataDir>/logs/tempo.log; entries about a task are
// also appended to <dataDir>/logs/task-<short id>.log, so a task's timer
// history can be read on its own.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/runoshun/tempo/internal/domain"
)

var _ domain.Logger = (*Logger)(nil)

// Logger appends formatted entries to the global and per-task log files.
// File handles are opened lazily and kept until Close.
// Fields are ordered to minimize memory padding.
type Logger struct {
	clock   domain.Clock
	files   map[string]*os.File // keyed by path
	dataDir string
	mu      sync.Mutex
	level   slog.Level
}

// New creates a Logger for dataDir. An empty dataDir disables logging.
func New(dataDir string, level slog.Level, clock domain.Clock) *Logger {
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &Logger{
		clock:   clock,
		files:   make(map[string]*os.File),
		dataDir: dataDir,
		level:   level,
	}
}

// ParseLevel parses a level name as written in [log] level.
// Unknown values fall back to info.
func ParseLevel(levelStr string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(levelStr)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// entry is one log line.
type entry struct {
	at       time.Time
	taskID   string
	category string
	msg      string
	level    slog.Level
}

// String renders the entry as
// [2026-10-16 09:00:00] [INFO] [task-0193a1b2] [timer] message
func (e entry) String() string {
	scope := "global"
	if e.taskID != "" {
		scope = "task-" + domain.ShortID(e.taskID)
	}
	return fmt.Sprintf("[%s] [%s] [%s] [%s] %s\n",
		e.at.Format("2006-01-02 15:04:05"), levelName(e.level), scope, e.category, e.msg)
}

// levelName maps a level onto one of the four names the log viewer expects.
func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

// paths returns the files an entry about taskID is written to.
func (l *Logger) paths(taskID string) []string {
	paths := []string{domain.GlobalLogPath(l.dataDir)}
	if taskID != "" {
		paths = append(paths, domain.TaskLogPath(l.dataDir, taskID))
	}
	return paths
}

// file returns the open handle for path, opening it on first use.
// The caller holds l.mu.
func (l *Logger) file(path string) (*os.File, error) {
	if f, ok := l.files[path]; ok {
		return f, nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("create logs directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640) //nolint:gosec // Log file readable by owner and group
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	l.files[path] = f
	return f, nil
}

func (l *Logger) write(level slog.Level, taskID, category, msg string) {
	if l.dataDir == "" || level < l.level {
		return
	}
	line := entry{at: l.clock.Now(), level: level, taskID: taskID, category: category, msg: msg}.String()

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, path := range l.paths(taskID) {
		// A log that cannot be written never fails the operation being logged.
		if f, err := l.file(path); err == nil {
			_, _ = io.WriteString(f, line)
		}
	}
}

// Close closes every open log file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var errs []error
	for path, f := range l.files {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(l.files, path)
	}
	return errors.Join(errs...)
}

// Info logs an info message.
func (l *Logger) Info(taskID, category, msg string) { l.write(slog.LevelInfo, taskID, category, msg) }

// Debug logs a debug message.
func (l *Logger) Debug(taskID, category, msg string) { l.write(slog.LevelDebug, taskID, category, msg) }

// Warn logs a warning.
func (l *Logger) Warn(taskID, category, msg string) { l.write(slog.LevelWarn, taskID, category, msg) }

// Error logs an error.
func (l *Logger) Error(taskID, category, msg string) { l.write(slog.LevelError, taskID, category, msg) }
