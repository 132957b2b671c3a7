// Package logger provides file-backed leveled logging for the application.
// The TUI owns the terminal, so log output always goes to a file, never to
// stdout or stderr.
package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

// LogLevel controls which messages are written.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarning
	LevelError
)

var levelNames = map[LogLevel]string{
	LevelDebug:   "DEBUG",
	LevelInfo:    "INFO",
	LevelWarning: "WARNING",
	LevelError:   "ERROR",
}

var (
	mu     sync.Mutex
	out    *log.Logger
	file   *os.File
	minLvl LogLevel
)

// Init opens the log file at path and starts logging at the given level.
// Parent directories are created as needed. Calling Init again closes the
// previous file.
func Init(path string, level LogLevel) error {
	mu.Lock()
	defer mu.Unlock()

	if file != nil {
		file.Close()
		file = nil
		out = nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	file = f
	out = log.New(f, "", log.LstdFlags|log.Lmicroseconds)
	minLvl = level
	return nil
}

// Close flushes and closes the log file. Safe to call when Init never ran.
func Close() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
		out = nil
	}
}

func logf(level LogLevel, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if out == nil || level < minLvl {
		return
	}
	out.Printf("[%s] %s", levelNames[level], fmt.Sprintf(format, args...))
}

// Debug logs a message at debug level.
func Debug(format string, args ...any) {
	logf(LevelDebug, format, args...)
}

// Info logs a message at info level.
func Info(format string, args ...any) {
	logf(LevelInfo, format, args...)
}

// Warning logs a message at warning level.
func Warning(format string, args ...any) {
	logf(LevelWarning, format, args...)
}

// Error logs a message at error level.
func Error(format string, args ...any) {
	logf(LevelError, format, args...)
}

// ErrorWithErr logs a message at error level with the error appended.
func ErrorWithErr(err error, format string, args ...any) {
	logf(LevelError, "%s error=%v", fmt.Sprintf(format, args...), err)
}
