package log

import (
	"github.com/kataras/golog"
)

// gologLevels maps a LogLevel to the level name golog.Logger.SetLevel takes.
var gologLevels = map[LogLevel]string{
	LogLevelDebug: "debug",
	LogLevelInfo:  "info",
	LogLevelWarn:  "warn",
	LogLevelError: "error",
	LogLevelNone:  "disable",
}

// GologLogger sends executor and agent logs to a kataras/golog logger, which
// is how the persistence example gets colored, timestamped output. Messages
// below the adapter's level are dropped before reaching golog.
type GologLogger struct {
	logger *golog.Logger
	level  LogLevel
}

var _ Logger = (*GologLogger)(nil)

// NewGologLogger wraps logger at LogLevelInfo without touching the level of
// the golog instance itself.
func NewGologLogger(logger *golog.Logger) *GologLogger {
	return &GologLogger{logger: logger, level: LogLevelInfo}
}

// NewGologLoggerWithLevel wraps logger and sets level on both the adapter and golog.
func NewGologLoggerWithLevel(logger *golog.Logger, level LogLevel) *GologLogger {
	l := NewGologLogger(logger)
	l.SetLevel(level)
	return l
}

// SetLevel changes the level of the adapter and of the wrapped golog logger.
// An unknown level leaves golog at "info".
func (l *GologLogger) SetLevel(level LogLevel) {
	l.level = level
	name, ok := gologLevels[level]
	if !ok {
		name = "info"
	}
	l.logger.SetLevel(name)
}

func (l *GologLogger) GetLevel() LogLevel {
	return l.level
}

func (l *GologLogger) Debug(format string, v ...any) {
	if l.level <= LogLevelDebug {
		l.logger.Debugf(format, v...)
	}
}

func (l *GologLogger) Info(format string, v ...any) {
	if l.level <= LogLevelInfo {
		l.logger.Infof(format, v...)
	}
}

func (l *GologLogger) Warn(format string, v ...any) {
	if l.level <= LogLevelWarn {
		l.logger.Warnf(format, v...)
	}
}

func (l *GologLogger) Error(format string, v ...any) {
	if l.level <= LogLevelError {
		l.logger.Errorf(format, v...)
	}
}
