// Package logging provides structured JSON logging for the anniversary
// service.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents a log level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the level name used in log output.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to a Level. Unknown strings map to Info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LevelDebug
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

// Fields carries structured context attached to a log entry.
type Fields map[string]interface{}

// Logger writes structured JSON log lines.
type Logger struct {
	mu        sync.Mutex
	out       io.Writer
	minLevel  Level
	component string
}

// New creates a logger writing to out at the given minimum level.
func New(out io.Writer, minLevel Level) *Logger {
	return &Logger{out: out, minLevel: minLevel}
}

// With returns a child logger tagged with a component name.
func (l *Logger) With(component string) *Logger {
	return &Logger{out: l.out, minLevel: l.minLevel, component: component}
}

type entry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Component string `json:"component,omitempty"`
	Message   string `json:"message"`
	Error     string `json:"error,omitempty"`
	Fields    Fields `json:"fields,omitempty"`
}

func (l *Logger) log(level Level, message string, err error, fields Fields) {
	if level < l.minLevel {
		return
	}

	e := entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Level:     level.String(),
		Component: l.component,
		Message:   message,
		Fields:    fields,
	}
	if err != nil {
		e.Error = err.Error()
	}

	data, jsonErr := json.Marshal(e)
	if jsonErr != nil {
		// A field value that cannot marshal must not lose the message.
		data, _ = json.Marshal(entry{
			Timestamp: e.Timestamp,
			Level:     e.Level,
			Component: e.Component,
			Message:   e.Message,
			Error:     e.Error,
		})
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.out, string(data))
}

// Debug logs a debug message.
func (l *Logger) Debug(message string, fields ...Fields) {
	l.log(LevelDebug, message, nil, merge(fields))
}

// Info logs an info message.
func (l *Logger) Info(message string, fields ...Fields) {
	l.log(LevelInfo, message, nil, merge(fields))
}

// Warn logs a warning message.
func (l *Logger) Warn(message string, fields ...Fields) {
	l.log(LevelWarn, message, nil, merge(fields))
}

// Error logs an error message with its cause.
func (l *Logger) Error(message string, err error, fields ...Fields) {
	l.log(LevelError, message, err, merge(fields))
}

func merge(fields []Fields) Fields {
	if len(fields) == 0 {
		return nil
	}
	if len(fields) == 1 {
		return fields[0]
	}
	merged := make(Fields)
	for _, f := range fields {
		for k, v := range f {
			merged[k] = v
		}
	}
	return merged
}

var (
	global     *Logger
	globalOnce sync.Once
)

// Init initializes the global logger. Later calls are no-ops.
func Init(out io.Writer, minLevel Level) {
	globalOnce.Do(func() {
		global = New(out, minLevel)
	})
}

// Get returns the global logger, initializing a default one if needed.
func Get() *Logger {
	if global == nil {
		Init(os.Stdout, LevelInfo)
	}
	return global
}

// Convenience functions using the global logger.

func Debug(message string, fields ...Fields) { Get().Debug(message, fields...) }

func Info(message string, fields ...Fields) { Get().Info(message, fields...) }

func Warn(message string, fields ...Fields) { Get().Warn(message, fields...) }

func Error(message string, err error, fields ...Fields) { Get().Error(message, err, fields...) }
