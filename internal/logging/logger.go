// Package logging provides zap logger helpers.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls logger construction.
type Config struct {
	// Development enables the human-readable console encoder.
	Development bool `mapstructure:"development"`
	// File, when non-empty, routes JSON logs to a rotating file instead of
	// the process streams.
	File string `mapstructure:"file"`
	// MaxSizeMB caps the file size before rotation. Zero means 100MB.
	MaxSizeMB int `mapstructure:"max_size_mb"`
	// MaxBackups caps how many rotated files are kept. Zero keeps all.
	MaxBackups int `mapstructure:"max_backups"`
}

// New builds a zap.Logger for the given config.
func New(cfg Config) (*zap.Logger, error) {
	if cfg.File != "" {
		return newRotating(cfg), nil
	}
	if cfg.Development {
		zcfg := zap.NewDevelopmentConfig()
		zcfg.EncoderConfig.TimeKey = "ts"
		zcfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		logger, err := zcfg.Build()
		if err != nil {
			return nil, fmt.Errorf("build dev logger: %w", err)
		}
		return logger, nil
	}
	zcfg := zap.NewProductionConfig()
	zcfg.EncoderConfig.TimeKey = "ts"
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build prod logger: %w", err)
	}
	return logger, nil
}

// newRotating writes JSON logs through lumberjack so long-running scheduled
// crawls don't grow a single unbounded file.
func newRotating(cfg Config) *zap.Logger {
	maxSize := cfg.MaxSizeMB
	if maxSize <= 0 {
		maxSize = 100
	}
	sink := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    maxSize,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
		Compress:   true,
	})

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if cfg.Development {
		level = zapcore.DebugLevel
	}
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderCfg), sink, level)
	return zap.New(core, zap.AddCaller())
}
