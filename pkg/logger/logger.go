package logger

import (
	"go.uber.org/zap"
)

var log *zap.Logger

// Init inicializa el logger global.
func Init() {
	var err error
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.MessageKey = "msg"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.CallerKey = "caller"

	log, err = cfg.Build()
	if err != nil {
		panic(err)
	}
}

// Logger retorna el logger estructurado.
func Logger() *zap.Logger {
	return log
}
