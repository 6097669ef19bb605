package logger

import (
	"go-elms/internal/config"
	"go-elms/internal/database"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the application logger. With MongoDB storage, entries at
// info level and above are also shipped to the logs collection.
func NewLogger(lc fx.Lifecycle, cfg *config.Config, mongodb *database.MongodbDB) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Environment == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}
	zapConfig.EncoderConfig.FunctionKey = "func"

	baseLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	if mongodb == nil {
		lc.Append(fx.StopHook(func() { _ = baseLogger.Sync() }))
		return baseLogger, nil
	}

	dbWriter := NewDBLogWriter(mongodb, cfg)
	log := zap.New(NewDBCore(baseLogger.Core(), dbWriter, zapcore.InfoLevel), zap.AddCaller())

	lc.Append(fx.StopHook(dbWriter.Close))
	return log, nil
}
