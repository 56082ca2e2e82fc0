package zap

import (
	"github.com/lintang-b-s/go-suggest/pkg/logger/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON logger writing to stdout at cfg.Level.
func New(cfg config.Configuration) (*zap.Logger, error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(cfg.TimeFormat)

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(zapcore.Level(cfg.Level)),
		Development:       false,
		Encoding:          "json",
		EncoderConfig:     encoderConfig,
		OutputPaths:       []string{"stdout"},
		ErrorOutputPaths:  []string{"stderr"},
		DisableStacktrace: cfg.Level > config.DEBUG_LEVEL,
	}

	return zapConfig.Build()
}
