package app

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"adaptive-voice/internal/app/config"
)

// provideConfig loads the runtime configuration.
func provideConfig(configPath string) (*config.Config, error) {
	return config.Load(configPath)
}

// provideLogger builds the zap logger from the logging section.
func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Server.Environment == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	if cfg.Logging.Encoding != "" {
		zapConfig.Encoding = cfg.Logging.Encoding
	}
	if level, err := zapcore.ParseLevel(cfg.Logging.Level); err == nil {
		zapConfig.Level = zap.NewAtomicLevelAt(level)
	}

	return zapConfig.Build()
}
