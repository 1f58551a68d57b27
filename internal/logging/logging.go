// Package logging builds the zap loggers used across metaballs.
package logging

import (
	"os"

	"github.com/san-kum/metaballs/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New builds a logger writing to w in the configured format. When
// cfg.File is set a JSON copy goes to a rotating file as well.
func New(cfg config.LogConfig, w zapcore.WriteSyncer) *zap.Logger {
	level := levelOf(cfg)
	cores := []zapcore.Core{zapcore.NewCore(encoder(cfg.Format), w, level)}
	if cfg.File != "" {
		cores = append(cores, fileCore(cfg, level))
	}
	return build(cores...)
}

// NewFile logs to cfg.File only, for programs that own the terminal. It
// returns a nop logger when no file is configured.
func NewFile(cfg config.LogConfig) *zap.Logger {
	if cfg.File == "" {
		return Nop()
	}
	return build(fileCore(cfg, levelOf(cfg)))
}

func build(cores ...zapcore.Core) *zap.Logger {
	return zap.New(zapcore.NewTee(cores...), zap.AddStacktrace(zap.ErrorLevel)).Named("metaballs")
}

func levelOf(cfg config.LogConfig) zap.AtomicLevel {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level.SetLevel(zap.InfoLevel)
	}
	return level
}

func fileCore(cfg config.LogConfig, level zapcore.LevelEnabler) zapcore.Core {
	w := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
	})
	return zapcore.NewCore(encoder("json"), w, level)
}

// NewStderr logs to stderr so stdout stays free for command output.
func NewStderr(cfg config.LogConfig) *zap.Logger {
	return New(cfg, zapcore.Lock(os.Stderr))
}

func Nop() *zap.Logger { return zap.NewNop() }

func encoder(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")

	if format == "json" {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewJSONEncoder(ec)
	}
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	ec.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
		enc.AppendString(name + ".")
	}
	return zapcore.NewConsoleEncoder(ec)
}
