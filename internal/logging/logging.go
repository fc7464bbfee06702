// Package logging provides the leveled, field-aware logger shared by GhostKey packages.
//
// Core packages never write to stdout or stderr directly. They accept a *Logger
// through functional options and fall back to NullLogger, so a host that does not
// care about diagnostics pays nothing for them.
package logging

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LogLevelDebug is for detailed debugging information.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is for general informational messages.
	LogLevelInfo
	// LogLevelWarn is for recoverable problems such as malformed metadata.
	LogLevelWarn
	// LogLevelError is for error messages.
	LogLevelError
)

// TimeFormat is the layout of the timestamp that opens every line.
const TimeFormat = "2006-01-02T15:04:05.000"

var levelNames = [...]string{
	LogLevelDebug: "DEBUG",
	LogLevelInfo:  "INFO",
	LogLevelWarn:  "WARN",
	LogLevelError: "ERROR",
}

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

func lookupLevel(s string) (LogLevel, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "WARNING" {
		return LogLevelWarn, true
	}
	for i, name := range levelNames {
		if name == s {
			return LogLevel(i), true
		}
	}
	return LogLevelInfo, false
}

// ParseLogLevel parses a string into a LogLevel.
// Unrecognized values map to LogLevelInfo.
func ParseLogLevel(s string) LogLevel {
	level, _ := lookupLevel(s)
	return level
}

// ValidLevel reports whether s names a known log level.
func ValidLevel(s string) bool {
	_, ok := lookupLevel(s)
	return ok
}

type field struct {
	key   string
	value any
}

// Logger writes leveled log lines with optional key/value fields.
// Loggers derived with WithField share the parent's output and lock.
type Logger struct {
	mu       *sync.Mutex
	level    LogLevel
	output   io.Writer
	prefix   string
	now      func() time.Time
	fields   []field // sorted by key
	disabled bool
}

// Config configures a Logger.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel
	// Output is where logs are written. Defaults to os.Stderr.
	Output io.Writer
	// Prefix is prepended to all log messages.
	Prefix string
	// Now stamps each line. Defaults to time.Now.
	Now func() time.Time
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LogLevelInfo,
		Output: os.Stderr,
		Prefix: "ghostkey",
	}
}

// New creates a new logger with the given configuration.
func New(cfg Config) *Logger {
	l := &Logger{
		mu:     &sync.Mutex{},
		level:  cfg.Level,
		output: cfg.Output,
		prefix: cfg.Prefix,
		now:    cfg.Now,
	}
	if l.output == nil {
		l.output = os.Stderr
	}
	if l.now == nil {
		l.now = time.Now
	}
	return l
}

// NullLogger discards all output.
var NullLogger = &Logger{mu: &sync.Mutex{}, now: time.Now, disabled: true}

// WithField returns a new logger with the given field added.
func (l *Logger) WithField(key string, value any) *Logger {
	return l.WithFields(map[string]any{key: value})
}

// WithFields returns a new logger with the given fields added. A key already
// present on l is overridden.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	if l == nil {
		return NullLogger
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	child := *l
	child.fields = slices.Clone(l.fields)
	for k, v := range fields {
		i, found := slices.BinarySearchFunc(child.fields, k, func(f field, key string) int {
			return strings.Compare(f.key, key)
		})
		if found {
			child.fields[i].value = v
			continue
		}
		child.fields = slices.Insert(child.fields, i, field{key: k, value: v})
	}
	return &child
}

// WithComponent returns a new logger with the component field set.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// Level returns the minimum log level.
func (l *Logger) Level() LogLevel {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.level
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(LogLevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.log(LogLevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(LogLevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.log(LogLevelError, msg, args...)
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.disabled || l.output == nil || level < l.level {
		return
	}
	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}
	_, _ = io.WriteString(l.output, l.format(level, msg))
}

// format renders one line:
//
//	<time> [LEVEL] prefix: message {k1=v1, k2=v2}
func (l *Logger) format(level LogLevel, msg string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s] ", l.now().Format(TimeFormat), level)
	if l.prefix != "" {
		b.WriteString(l.prefix + ": ")
	}
	b.WriteString(msg)

	for i, f := range l.fields {
		sep := ", "
		if i == 0 {
			sep = " {"
		}
		fmt.Fprintf(&b, "%s%s=%v", sep, f.key, f.value)
	}
	if len(l.fields) > 0 {
		b.WriteByte('}')
	}
	b.WriteByte('\n')
	return b.String()
}
