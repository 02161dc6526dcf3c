package utils

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggerOptions configures a Logger.
type LoggerOptions struct {
	Level  string    // debug, info, warn, error (default info)
	Output io.Writer // defaults to os.Stdout
	LogDir string    // when set, also log to LogDir/clipdeck.log
}

// Logger is a thin key/value wrapper around zap used across the daemon.
type Logger struct {
	zl *zap.Logger
	s  *zap.SugaredLogger
}

// NewLogger builds a Logger from the given options.
func NewLogger(opts LoggerOptions) *Logger {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	level := parseLevel(opts.Level)

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.AddSync(out),
		level,
	)

	cores := []zapcore.Core{consoleCore}
	if opts.LogDir != "" {
		if fileCore := newFileCore(opts.LogDir, level); fileCore != nil {
			cores = append(cores, fileCore)
		}
	}

	zl := zap.New(zapcore.NewTee(cores...))
	return &Logger{zl: zl, s: zl.Sugar()}
}

func newFileCore(dir string, level zapcore.Level) zapcore.Core {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil
	}
	f, err := os.OpenFile(filepath.Join(dir, "clipdeck.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil
	}
	return zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(f),
		level,
	)
}

func parseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Zap exposes the underlying zap.Logger for packages that log structured
// fields directly.
func (l *Logger) Zap() *zap.Logger {
	return l.zl
}

func (l *Logger) Debug(msg string, keyvals ...interface{}) { l.s.Debugw(msg, keyvals...) }
func (l *Logger) Info(msg string, keyvals ...interface{})  { l.s.Infow(msg, keyvals...) }
func (l *Logger) Warn(msg string, keyvals ...interface{})  { l.s.Warnw(msg, keyvals...) }
func (l *Logger) Error(msg string, keyvals ...interface{}) { l.s.Errorw(msg, keyvals...) }

// Sync flushes buffered log entries.
func (l *Logger) Sync() {
	_ = l.zl.Sync()
}
