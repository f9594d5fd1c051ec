package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
)

// Level controls which messages are emitted.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelSilent
)

var (
	mu       sync.RWMutex
	minLevel = LevelWarn
	output   io.Writer = os.Stderr
)

// SetLevel sets the global minimum level. The CLI maps --debug to LevelInfo
// and --verbose to LevelDebug.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	minLevel = l
}

// SetOutput redirects log output, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// Logger emits leveled, field-annotated messages.
type Logger struct {
	fields map[string]interface{}
}

// WithField returns a logger with a single field attached
func WithField(key string, value interface{}) Logger {
	return Logger{fields: map[string]interface{}{key: value}}
}

// WithFields returns a logger with multiple fields attached
func WithFields(fields map[string]interface{}) Logger {
	copied := make(map[string]interface{}, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return Logger{fields: copied}
}

func (l Logger) WithField(key string, value interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+1)
	for k, v := range l.fields {
		merged[k] = v
	}
	merged[key] = value
	return Logger{fields: merged}
}

func (l Logger) Debug(format string, args ...interface{}) { l.log(LevelDebug, format, args...) }
func (l Logger) Info(format string, args ...interface{})  { l.log(LevelInfo, format, args...) }
func (l Logger) Warn(format string, args ...interface{})  { l.log(LevelWarn, format, args...) }
func (l Logger) Error(format string, args ...interface{}) { l.log(LevelError, format, args...) }

// Package-level helpers for messages without fields

func Debug(format string, args ...interface{}) { Logger{}.log(LevelDebug, format, args...) }
func Info(format string, args ...interface{})  { Logger{}.log(LevelInfo, format, args...) }
func Warn(format string, args ...interface{})  { Logger{}.log(LevelWarn, format, args...) }
func Error(format string, args ...interface{}) { Logger{}.log(LevelError, format, args...) }

var levelTags = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

func (l Logger) log(level Level, format string, args ...interface{}) {
	mu.RLock()
	defer mu.RUnlock()

	if level < minLevel {
		return
	}

	msg := fmt.Sprintf(format, args...)
	if len(l.fields) > 0 {
		keys := make([]string, 0, len(l.fields))
		for k := range l.fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, fmt.Sprintf("%s=%v", k, l.fields[k]))
		}
		msg = msg + " [" + strings.Join(parts, " ") + "]"
	}

	fmt.Fprintf(output, "[%s] %s\n", levelTags[level], msg)
}
