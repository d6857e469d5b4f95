package logger

import (
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debugw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
}

var level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

func NewDefaultLogger() Logger {
	config := zap.NewProductionConfig()
	config.Level = level
	config.EncoderConfig = zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.RFC3339TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	logger, err := config.Build(
		zap.AddCaller(),
		zap.AddCallerSkip(1),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

var (
	mu            sync.Mutex
	defaultLogger Logger
)

func getDefaultLogger() Logger {
	mu.Lock()
	defer mu.Unlock()
	if defaultLogger == nil {
		defaultLogger = NewDefaultLogger()
	}
	return defaultLogger
}

// SetLogger replaces the process logger. Tests use it to capture output.
func SetLogger(l Logger) {
	mu.Lock()
	defer mu.Unlock()
	defaultLogger = l
}

// SetLevel changes the minimum level of the default logger. Unknown names
// leave the level unchanged and return false.
func SetLevel(name string) bool {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(name)))); err != nil {
		return false
	}
	level.SetLevel(lvl)
	return true
}

func Debug(msg string, keysAndValues ...interface{}) {
	getDefaultLogger().Debugw(msg, keysAndValues...)
}

func Info(msg string, keysAndValues ...interface{}) {
	getDefaultLogger().Infow(msg, keysAndValues...)
}

func Warn(msg string, keysAndValues ...interface{}) {
	getDefaultLogger().Warnw(msg, keysAndValues...)
}

func Error(msg string, keysAndValues ...interface{}) {
	getDefaultLogger().Errorw(msg, keysAndValues...)
}
