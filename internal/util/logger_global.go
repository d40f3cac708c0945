package util

import (
	"context"
	"sync"
)

var (
	globalLogger LoggerInterface
	loggerMu     sync.RWMutex
)

// InitLogger installs the global logger. Calling it again replaces the
// previous logger and closes its outputs.
func InitLogger(opts LoggerOptions) error {
	logger, err := NewLogger(opts)
	if err != nil {
		return err
	}
	SetLogger(logger)
	return nil
}

// SetLogger replaces the global logger
func SetLogger(logger LoggerInterface) {
	loggerMu.Lock()
	previous := globalLogger
	globalLogger = logger
	loggerMu.Unlock()

	if previous != nil && previous != logger {
		_ = previous.Close()
	}
}

// CloseLogger flushes and detaches the global logger
func CloseLogger() error {
	loggerMu.Lock()
	previous := globalLogger
	globalLogger = nil
	loggerMu.Unlock()

	if previous == nil {
		return nil
	}
	return previous.Close()
}

func current() LoggerInterface {
	loggerMu.RLock()
	defer loggerMu.RUnlock()
	return globalLogger
}

// LogInfo convenience functions for logging
func LogInfo(msg string, fields ...Field) {
	if l := current(); l != nil {
		l.Info(msg, fields...)
	}
}

func LogInfof(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Infof(format, args...)
	}
}

func LogDebug(msg string, fields ...Field) {
	if l := current(); l != nil {
		l.Debug(msg, fields...)
	}
}

func LogDebugf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Debugf(format, args...)
	}
}

func LogWarn(msg string, fields ...Field) {
	if l := current(); l != nil {
		l.Warn(msg, fields...)
	}
}

func LogWarnf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Warnf(format, args...)
	}
}

// LogDebugContext logs with the refresh trigger carried by ctx
func LogDebugContext(ctx context.Context, msg string, fields ...Field) {
	if l := current(); l != nil {
		l.WithContext(ctx).Debug(msg, fields...)
	}
}

func LogWarnContext(ctx context.Context, msg string, fields ...Field) {
	if l := current(); l != nil {
		l.WithContext(ctx).Warn(msg, fields...)
	}
}

func LogError(msg string, fields ...Field) {
	if l := current(); l != nil {
		l.Error(msg, fields...)
	}
}

func LogErrorf(format string, args ...interface{}) {
	if l := current(); l != nil {
		l.Errorf(format, args...)
	}
}

// F builds a structured logging field
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}
