// Structured logging for the motion host.
//
// Provides leveled, prefixed component loggers with optional key-value
// fields. The shaper engine receives one of these as an injected trace
// sink; planning emits DEBUG lines through it and stays silent when the
// level is higher.
//
// Copyright (C) 2026  RepRapFirmware Go Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	// DEBUG level for planning traces and internal state dumps
	DEBUG Level = iota

	// INFO level for general informational messages
	INFO

	// WARN level for warning messages
	WARN

	// ERROR level for error messages
	ERROR
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a Level, defaulting to INFO.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DEBUG
	case "INFO":
		return INFO
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Fields is a map of structured logging fields.
type Fields map[string]interface{}

// Logger is a leveled logger with a component prefix.
type Logger struct {
	mu         sync.Mutex
	prefix     string
	writer     io.Writer
	level      Level
	timeFormat string
}

// New creates a new logger with the given component prefix.
func New(prefix string) *Logger {
	return &Logger{
		prefix:     prefix,
		writer:     os.Stderr,
		level:      INFO,
		timeFormat: "2006-01-02 15:04:05.000",
	}
}

// WithPrefix returns a child logger that shares this logger's writer
// and level but logs under a different component prefix.
func (l *Logger) WithPrefix(prefix string) *Logger {
	l.mu.Lock()
	defer l.mu.Unlock()
	return &Logger{
		prefix:     prefix,
		writer:     l.writer,
		level:      l.level,
		timeFormat: l.timeFormat,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetWriter sets the output writer (e.g., for testing).
func (l *Logger) SetWriter(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// DebugEnabled reports whether DEBUG messages would be emitted. Hot
// paths check this before formatting expensive trace strings.
func (l *Logger) DebugEnabled() bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level <= DEBUG
}

func (l *Logger) output(level Level, msg string, fields Fields) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level || l.writer == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(time.Now().Format(l.timeFormat))
	sb.WriteString(" [")
	sb.WriteString(fmt.Sprintf("%-5s", level.String()))
	sb.WriteString("] ")
	sb.WriteString(l.prefix)
	sb.WriteString(": ")
	sb.WriteString(msg)

	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteString(fmt.Sprintf(" %s=%v", k, fields[k]))
		}
	}
	sb.WriteByte('\n')
	io.WriteString(l.writer, sb.String())
}

// Debugf logs a formatted DEBUG message.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.output(DEBUG, fmt.Sprintf(format, args...), nil)
}

// Infof logs a formatted INFO message.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.output(INFO, fmt.Sprintf(format, args...), nil)
}

// Warnf logs a formatted WARN message.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.output(WARN, fmt.Sprintf(format, args...), nil)
}

// Errorf logs a formatted ERROR message.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.output(ERROR, fmt.Sprintf(format, args...), nil)
}

// DebugFields logs a DEBUG message with structured fields.
func (l *Logger) DebugFields(msg string, fields Fields) {
	l.output(DEBUG, msg, fields)
}

// InfoFields logs an INFO message with structured fields.
func (l *Logger) InfoFields(msg string, fields Fields) {
	l.output(INFO, msg, fields)
}
