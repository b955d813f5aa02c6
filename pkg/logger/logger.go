package logger

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu    sync.RWMutex
	base  *zap.Logger
	sugar *zap.SugaredLogger
)

// InitLogger builds a console logger writing to stdout and, when filename
// is not empty, appending to that file as well.
func InitLogger(filename string, level string) error {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return err
	}

	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cfg.OutputPaths = []string{"stdout"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	if filename != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, filename)
	}

	l, err := cfg.Build()
	if err != nil {
		return err
	}
	SetLogger(l)
	return nil
}

// SetLogger replaces the package logger. Tests use it to attach an observer.
func SetLogger(l *zap.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if base != nil {
		_ = base.Sync()
	}
	base = l
	sugar = l.Sugar()
	zap.ReplaceGlobals(l)
}

// Close flushes buffered entries.
func Close() {
	mu.RLock()
	defer mu.RUnlock()
	if base != nil {
		_ = base.Sync()
	}
}

// Init installs a development logger if none was configured yet.
func Init() {
	mu.RLock()
	ready := sugar != nil
	mu.RUnlock()
	if ready {
		return
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		l = zap.NewNop()
	}
	SetLogger(l)
}

// S returns the sugared logger.
func S() *zap.SugaredLogger {
	Init()
	mu.RLock()
	defer mu.RUnlock()
	return sugar
}

func Info(msg string) {
	S().Info(msg)
}

func Infof(format string, v ...interface{}) {
	S().Infof(format, v...)
}

func Infow(msg string, keysAndValues ...interface{}) {
	S().Infow(msg, keysAndValues...)
}

func Debugf(format string, v ...interface{}) {
	S().Debugf(format, v...)
}

func Error(msg string) {
	S().Error(msg)
}

func Errorf(format string, v ...interface{}) {
	S().Errorf(format, v...)
}

func Errorw(msg string, keysAndValues ...interface{}) {
	S().Errorw(msg, keysAndValues...)
}

func Warn(msg string) {
	S().Warn(msg)
}

func Warnf(format string, v ...interface{}) {
	S().Warnf(format, v...)
}

func Warnw(msg string, keysAndValues ...interface{}) {
	S().Warnw(msg, keysAndValues...)
}
