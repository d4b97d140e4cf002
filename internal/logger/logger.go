// Package logger provides the leveled logger used throughout the trainer.
// Output normally goes to a file so log lines never tear the terminal UI.
// The logger is safe for concurrent use.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"sync"
)

// Level controls verbosity.
type Level int

const (
	// LevelOff disables all output.
	LevelOff Level = iota
	// LevelNormal enables info, warn, and error output.
	LevelNormal
	// LevelVerbose enables all output including debug.
	LevelVerbose
)

// Logger is a leveled printf-style logger.
type Logger struct {
	mu    sync.RWMutex
	level Level
	out   *log.Logger
}

// New creates a logger writing to out at the given level. A nil out
// falls back to os.Stderr.
func New(level Level, out io.Writer) *Logger {
	if out == nil {
		out = os.Stderr
	}
	return &Logger{
		level: level,
		out:   log.New(out, "", log.Ltime),
	}
}

// SetLevel changes the log level at runtime.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	l.level = level
	l.mu.Unlock()
}

// GetLevel returns the current log level.
func (l *Logger) GetLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.level
}

// Debug logs at debug level (visible only in verbose mode).
func (l *Logger) Debug(format string, args ...any) { l.emit(LevelVerbose, "[DBG] ", format, args) }

// Info logs at info level.
func (l *Logger) Info(format string, args ...any) { l.emit(LevelNormal, "[INF] ", format, args) }

// Warn logs at warn level.
func (l *Logger) Warn(format string, args ...any) { l.emit(LevelNormal, "[WRN] ", format, args) }

// Error logs at error level.
func (l *Logger) Error(format string, args ...any) { l.emit(LevelNormal, "[ERR] ", format, args) }

func (l *Logger) emit(min Level, prefix, format string, args []any) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.level < min {
		return
	}
	l.out.Output(3, prefix+fmt.Sprintf(format, args...))
}
