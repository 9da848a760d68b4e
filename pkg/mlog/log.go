// Package mlog defines the logging interface used across the service so
// call sites never depend on a concrete logging library directly.
package mlog

import (
	"fmt"
	"log"
	"strings"
)

// Logger is the common interface for the log implementations in this module.
type Logger interface {
	Info(args ...any)
	Infof(format string, args ...any)

	Error(args ...any)
	Errorf(format string, args ...any)

	Warn(args ...any)
	Warnf(format string, args ...any)

	Debug(args ...any)
	Debugf(format string, args ...any)

	Fatal(args ...any)
	Fatalf(format string, args ...any)

	// WithFields returns a new Logger carrying additional structured
	// key/value context. The receiver is left unchanged.
	WithFields(fields ...any) Logger

	Sync() error
}

// LogLevel represents the severity of a log record.
type LogLevel int8

const (
	FatalLevel LogLevel = iota
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
)

// ParseLevel takes a string level and returns a LogLevel constant.
func ParseLevel(lvl string) (LogLevel, error) {
	switch strings.ToLower(lvl) {
	case "fatal":
		return FatalLevel, nil
	case "error":
		return ErrorLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "info":
		return InfoLevel, nil
	case "debug":
		return DebugLevel, nil
	}

	var l LogLevel

	return l, fmt.Errorf("mlog: not a valid level: %q", lvl)
}

// GoLogger is a minimal Logger backed by the standard library, used in
// tests and any path that runs before the configured logger is wired up.
type GoLogger struct {
	fields []any
	Level  LogLevel
}

func (l *GoLogger) enabled(level LogLevel) bool { return l.Level >= level }

func (l *GoLogger) Info(args ...any)  { l.print(InfoLevel, args...) }
func (l *GoLogger) Error(args ...any) { l.print(ErrorLevel, args...) }
func (l *GoLogger) Warn(args ...any)  { l.print(WarnLevel, args...) }
func (l *GoLogger) Debug(args ...any) { l.print(DebugLevel, args...) }
func (l *GoLogger) Fatal(args ...any) { l.print(FatalLevel, args...) }

func (l *GoLogger) Infof(format string, args ...any)  { l.printf(InfoLevel, format, args...) }
func (l *GoLogger) Errorf(format string, args ...any) { l.printf(ErrorLevel, format, args...) }
func (l *GoLogger) Warnf(format string, args ...any)  { l.printf(WarnLevel, format, args...) }
func (l *GoLogger) Debugf(format string, args ...any) { l.printf(DebugLevel, format, args...) }
func (l *GoLogger) Fatalf(format string, args ...any) { l.printf(FatalLevel, format, args...) }

func (l *GoLogger) print(level LogLevel, args ...any) {
	if !l.enabled(level) {
		return
	}

	log.Print(append(append([]any{}, l.fields...), args...)...)
}

func (l *GoLogger) printf(level LogLevel, format string, args ...any) {
	if !l.enabled(level) {
		return
	}

	log.Printf(format, args...)
}

//nolint:ireturn
func (l *GoLogger) WithFields(fields ...any) Logger {
	return &GoLogger{
		fields: append(append([]any{}, l.fields...), fields...),
		Level:  l.Level,
	}
}

func (l *GoLogger) Sync() error { return nil }
