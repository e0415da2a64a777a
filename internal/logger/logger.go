package logger

import (
	"context"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

//nolint:gochecknoglobals // The package exposes a process-wide logger with an adjustable level.
var (
	// globalLevel is the dynamically adjustable level shared by the default logger.
	globalLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	// globalMu guards replacement of the global logger.
	globalMu sync.RWMutex

	// globalLogger is the process-wide logger used by the package-level functions.
	globalLogger = New(globalLevel)
)

// New creates a new sugared logger writing human-readable output to stderr.
// If level is nil, the package-wide adjustable level is used.
func New(level zapcore.LevelEnabler) *zap.SugaredLogger {
	if level == nil {
		level = globalLevel
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		level,
	)

	return zap.New(core).Sugar()
}

// Logger returns the current global logger.
func Logger() *zap.SugaredLogger {
	globalMu.RLock()
	defer globalMu.RUnlock()

	return globalLogger
}

// SetLogger replaces the global logger.
func SetLogger(l *zap.SugaredLogger) {
	globalMu.Lock()
	defer globalMu.Unlock()

	globalLogger = l
}

// Level returns the current global log level.
func Level() zapcore.Level {
	return globalLevel.Level()
}

// SetLevel changes the global log level at runtime.
func SetLevel(level zapcore.Level) {
	globalLevel.SetLevel(level)
}

// IsDebugLevel reports whether debug output is currently enabled.
func IsDebugLevel() bool {
	return globalLevel.Enabled(zapcore.DebugLevel)
}

// ParseLogLevel parses a textual log level (case-insensitive, surrounding
// spaces ignored). The second return value reports whether the input was a
// recognized level; on failure the info level is returned.
func ParseLogLevel(level string) (zapcore.Level, bool) {
	normalized := strings.ToLower(strings.TrimSpace(level))
	if normalized == "" {
		return zapcore.InfoLevel, false
	}

	parsed, err := zapcore.ParseLevel(normalized)
	if err != nil {
		return zapcore.InfoLevel, false
	}

	return parsed, true
}

// fromContext returns the logger to use for the given context.
// The context is accepted on every logging call so request-scoped loggers
// can be introduced later without touching call sites.
func fromContext(_ context.Context) *zap.SugaredLogger {
	return Logger()
}

// Debug logs a message at debug level.
func Debug(ctx context.Context, args ...any) {
	fromContext(ctx).Debug(args...)
}

// Debugf logs a formatted message at debug level.
func Debugf(ctx context.Context, format string, args ...any) {
	fromContext(ctx).Debugf(format, args...)
}

// DebugKV logs a message with key-value pairs at debug level.
func DebugKV(ctx context.Context, message string, kvs ...any) {
	fromContext(ctx).Debugw(message, kvs...)
}

// Info logs a message at info level.
func Info(ctx context.Context, args ...any) {
	fromContext(ctx).Info(args...)
}

// Infof logs a formatted message at info level.
func Infof(ctx context.Context, format string, args ...any) {
	fromContext(ctx).Infof(format, args...)
}

// InfoKV logs a message with key-value pairs at info level.
func InfoKV(ctx context.Context, message string, kvs ...any) {
	fromContext(ctx).Infow(message, kvs...)
}

// Warn logs a message at warn level.
func Warn(ctx context.Context, args ...any) {
	fromContext(ctx).Warn(args...)
}

// Warnf logs a formatted message at warn level.
func Warnf(ctx context.Context, format string, args ...any) {
	fromContext(ctx).Warnf(format, args...)
}

// WarnKV logs a message with key-value pairs at warn level.
func WarnKV(ctx context.Context, message string, kvs ...any) {
	fromContext(ctx).Warnw(message, kvs...)
}

// Error logs a message at error level.
func Error(ctx context.Context, args ...any) {
	fromContext(ctx).Error(args...)
}

// Errorf logs a formatted message at error level.
func Errorf(ctx context.Context, format string, args ...any) {
	fromContext(ctx).Errorf(format, args...)
}

// ErrorKV logs a message with key-value pairs at error level.
func ErrorKV(ctx context.Context, message string, kvs ...any) {
	fromContext(ctx).Errorw(message, kvs...)
}

// Fatal logs a message at fatal level and exits the process.
func Fatal(ctx context.Context, args ...any) {
	fromContext(ctx).Fatal(args...)
}

// Fatalf logs a formatted message at fatal level and exits the process.
func Fatalf(ctx context.Context, format string, args ...any) {
	fromContext(ctx).Fatalf(format, args...)
}
