package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
)

// Prefix starts every line written by DefaultLogger.
const Prefix = "[langgraph] "

// LogLevel is the minimum severity a logger writes. The executor logs each
// step at LogLevelDebug and failed runs at LogLevelError; LoggingListener
// reports node timings at LogLevelInfo.
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
	// LogLevelNone silences a logger.
	LogLevelNone
)

var levelNames = [...]string{
	LogLevelDebug: "DEBUG",
	LogLevelInfo:  "INFO",
	LogLevelWarn:  "WARN",
	LogLevelError: "ERROR",
	LogLevelNone:  "NONE",
}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return fmt.Sprintf("UNKNOWN(%d)", int(l))
	}
	return levelNames[l]
}

// ParseLevel reads a level name, case-insensitively, as found in
// LANGGRAPH_LOG_LEVEL or a command-line flag. Unknown names yield
// LogLevelInfo and false.
func ParseLevel(name string) (LogLevel, bool) {
	switch name = strings.ToUpper(strings.TrimSpace(name)); name {
	case "WARNING":
		return LogLevelWarn, true
	case "OFF", "DISABLE":
		return LogLevelNone, true
	}
	for level, n := range levelNames {
		if n == name {
			return LogLevel(level), true
		}
	}
	return LogLevelInfo, false
}

// Logger is accepted by graph.WithLogger, graph.NewLoggingListener and
// prebuilt.WithLogger. Formats follow fmt.Printf.
type Logger interface {
	Debug(format string, v ...any)
	Info(format string, v ...any)
	Warn(format string, v ...any)
	Error(format string, v ...any)
}

// DefaultLogger writes "[langgraph] <time> [LEVEL] message" lines through the
// standard library logger.
type DefaultLogger struct {
	logger *log.Logger
	level  LogLevel
}

var _ Logger = (*DefaultLogger)(nil)

// NewDefaultLogger logs to stderr.
func NewDefaultLogger(level LogLevel) *DefaultLogger {
	return NewCustomLogger(os.Stderr, level)
}

// NewCustomLogger logs to out, which tests use to capture run logs.
func NewCustomLogger(out io.Writer, level LogLevel) *DefaultLogger {
	return &DefaultLogger{
		logger: log.New(out, Prefix, log.LstdFlags),
		level:  level,
	}
}

func (l *DefaultLogger) logf(level LogLevel, format string, v []any) {
	if level < l.level {
		return
	}
	l.logger.Printf("["+level.String()+"] "+format, v...)
}

func (l *DefaultLogger) Debug(format string, v ...any) { l.logf(LogLevelDebug, format, v) }
func (l *DefaultLogger) Info(format string, v ...any)  { l.logf(LogLevelInfo, format, v) }
func (l *DefaultLogger) Warn(format string, v ...any)  { l.logf(LogLevelWarn, format, v) }
func (l *DefaultLogger) Error(format string, v ...any) { l.logf(LogLevelError, format, v) }

// NoOpLogger discards everything. Graphs and agents compiled without a logger use it.
type NoOpLogger struct{}

func (*NoOpLogger) Debug(string, ...any) {}
func (*NoOpLogger) Info(string, ...any)  {}
func (*NoOpLogger) Warn(string, ...any)  {}
func (*NoOpLogger) Error(string, ...any) {}
