// Package mzap is the zap-backed implementation of mlog.Logger used in
// every running environment; pkg/mlog.GoLogger only backs tests and the
// narrow startup window before configuration is read.
package mzap

import (
	"fmt"
	"os"

	"github.com/agentledger/ledger/pkg/mlog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts *zap.SugaredLogger to mlog.Logger.
type ZapLogger struct {
	Logger *zap.SugaredLogger
}

// InitializeLogger builds a ZapLogger configured for the given level and
// encoding ("json" for production, anything else for console).
func InitializeLogger(level mlog.LogLevel, encoding string) *ZapLogger {
	if encoding != "json" {
		encoding = "console"
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = encoding
	cfg.Level = zap.NewAtomicLevelAt(toZapLevel(level))
	cfg.EncoderConfig.TimeKey = "timestamp"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		fmt.Fprintf(os.Stderr, "mzap: failed to build logger: %v\n", err)
		logger = zap.NewNop()
	}

	return &ZapLogger{Logger: logger.Sugar()}
}

func toZapLevel(level mlog.LogLevel) zapcore.Level {
	switch level {
	case mlog.FatalLevel:
		return zapcore.FatalLevel
	case mlog.ErrorLevel:
		return zapcore.ErrorLevel
	case mlog.WarnLevel:
		return zapcore.WarnLevel
	case mlog.DebugLevel:
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

func (l *ZapLogger) Info(args ...any)  { l.Logger.Info(args...) }
func (l *ZapLogger) Error(args ...any) { l.Logger.Error(args...) }
func (l *ZapLogger) Warn(args ...any)  { l.Logger.Warn(args...) }
func (l *ZapLogger) Debug(args ...any) { l.Logger.Debug(args...) }
func (l *ZapLogger) Fatal(args ...any) { l.Logger.Fatal(args...) }

func (l *ZapLogger) Infof(format string, args ...any)  { l.Logger.Infof(format, args...) }
func (l *ZapLogger) Errorf(format string, args ...any) { l.Logger.Errorf(format, args...) }
func (l *ZapLogger) Warnf(format string, args ...any)  { l.Logger.Warnf(format, args...) }
func (l *ZapLogger) Debugf(format string, args ...any) { l.Logger.Debugf(format, args...) }
func (l *ZapLogger) Fatalf(format string, args ...any) { l.Logger.Fatalf(format, args...) }

//nolint:ireturn
func (l *ZapLogger) WithFields(fields ...any) mlog.Logger {
	return &ZapLogger{Logger: l.Logger.With(fields...)}
}

func (l *ZapLogger) Sync() error {
	return l.Logger.Sync()
}
