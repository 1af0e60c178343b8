package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var base *zap.SugaredLogger

// Init sets up the process-wide logger writing to stdout and a dated file
// under logDir.
func Init(logDir string) error {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	logFile := filepath.Join(logDir, fmt.Sprintf("trendpulse_%s.log", time.Now().Format("2006-01-02")))
	f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewConsoleEncoder(encoderCfg)

	core := zapcore.NewTee(
		zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), zapcore.InfoLevel),
		zapcore.NewCore(encoder, zapcore.AddSync(f), zapcore.InfoLevel),
	)

	base = zap.New(core, zap.AddCallerSkip(1)).Sugar()
	return nil
}

func Info(format string, v ...interface{}) {
	if base != nil {
		base.Infof(format, v...)
	}
}

func Warn(format string, v ...interface{}) {
	if base != nil {
		base.Warnf(format, v...)
	}
}

func Error(format string, v ...interface{}) {
	if base != nil {
		base.Errorf(format, v...)
	}
}

// Sync flushes buffered entries. Call before process exit.
func Sync() {
	if base != nil {
		_ = base.Sync()
	}
}
