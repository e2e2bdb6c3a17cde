/*
Package logger builds the zap logger used across the module.
*/
package logger

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type Config struct {
	Level    string // debug, info, warn, error; default info
	Encoding string // json or console; default console
	// File enables writing into rotated log file instead of stderr.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

func New(cfg Config) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	var enc zapcore.Encoder
	switch cfg.Encoding {
	case "json":
		enc = zapcore.NewJSONEncoder(encCfg)
	case "", "console":
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	default:
		return nil, fmt.Errorf("unknown log encoding %q", cfg.Encoding)
	}

	out := zapcore.Lock(os.Stderr)
	if cfg.File != "" {
		out = zapcore.AddSync(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    valueOr(cfg.MaxSizeMB, 100),
			MaxBackups: valueOr(cfg.MaxBackups, 5),
			MaxAge:     valueOr(cfg.MaxAgeDays, 30),
			Compress:   true,
		})
	}
	return zap.New(zapcore.NewCore(enc, out, level), zap.AddCaller()), nil
}

func valueOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
