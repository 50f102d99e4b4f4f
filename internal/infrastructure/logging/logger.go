package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New создаёт логгер: в режиме release JSON для продакшена,
// в остальных человекочитаемый вывод с цветными уровнями.
func New(mode string) (*zap.Logger, error) {
	var config zap.Config

	if mode == "release" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	return config.Build()
}

// Sync сбрасывает буферы логгера
func Sync(logger *zap.Logger) {
	if logger != nil {
		_ = logger.Sync()
	}
}
