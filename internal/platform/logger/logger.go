// Package logger provides structured logging for the colony server.
// Every trade, depletion, death and save should be traceable through this.
package logger

import (
	"io"
	"log"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// Level is the minimum severity a Logger writes.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// ParseLevel maps "debug", "info", "warn"/"warning" and "error" to a Level.
// Anything else is treated as info.
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Logger provides leveled logging with context.
type Logger struct {
	level       Level
	debugLogger *log.Logger
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
}

// NewLogger creates an info-level logger on stdout/stderr.
func NewLogger() *Logger {
	return NewLoggerWithLevel("info")
}

// NewLoggerWithLevel creates a logger on stdout/stderr at the given level.
// Prefixes are coloured when stdout is a terminal.
func NewLoggerWithLevel(level string) *Logger {
	color := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	return newLogger(ParseLevel(level), os.Stdout, os.Stderr, color)
}

// NewDiscardLogger returns a logger that writes nothing. Useful in tests.
func NewDiscardLogger() *Logger {
	return newLogger(LevelError+1, io.Discard, io.Discard, false)
}

func newLogger(level Level, out, errOut io.Writer, color bool) *Logger {
	prefix := func(tag, ansi string) string {
		if color {
			return ansi + "[COLONY-" + tag + "]\x1b[0m "
		}
		return "[COLONY-" + tag + "] "
	}
	flags := log.Ldate | log.Ltime | log.Lshortfile
	return &Logger{
		level:       level,
		debugLogger: log.New(out, prefix("DEBUG", "\x1b[90m"), flags),
		infoLogger:  log.New(out, prefix("INFO", "\x1b[36m"), flags),
		warnLogger:  log.New(out, prefix("WARN", "\x1b[33m"), flags),
		errorLogger: log.New(errOut, prefix("ERROR", "\x1b[31m"), flags),
	}
}

// Debug logs diagnostic messages.
func (l *Logger) Debug(msg string) {
	if l.level <= LevelDebug {
		l.debugLogger.Output(2, msg)
	}
}

// Info logs informational messages.
func (l *Logger) Info(msg string) {
	if l.level <= LevelInfo {
		l.infoLogger.Output(2, msg)
	}
}

// Warn logs warning messages.
func (l *Logger) Warn(msg string) {
	if l.level <= LevelWarn {
		l.warnLogger.Output(2, msg)
	}
}

// Error logs error messages.
func (l *Logger) Error(msg string) {
	if l.level <= LevelError {
		l.errorLogger.Output(2, msg)
	}
}

// Event logs a specific game event for the colony record.
func (l *Logger) Event(eventType string, actorID string, details string) {
	if l.level <= LevelInfo {
		l.infoLogger.Printf("[EVENT:%s] Actor:%s | %s", eventType, actorID, details)
	}
}
