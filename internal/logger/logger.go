package logger

import (
	"fmt"

	"donaciones-backend/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap logger from the LOG_LEVEL / LOG_FORMAT config values.
// An unset format follows the environment: console in development, json
// everywhere else.
func New(env config.Environment, cfg config.Log) (*zap.Logger, error) {
	zapCfg, err := buildConfig(env, cfg)
	if err != nil {
		return nil, err
	}

	log, err := zapCfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return log, nil
}

func buildConfig(env config.Environment, cfg config.Log) (zap.Config, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return zap.Config{}, fmt.Errorf("parse log level %q: %w", cfg.Level, err)
	}

	format := cfg.Format
	if format == "" {
		if env.Name == "development" {
			format = "console"
		} else {
			format = "json"
		}
	}

	var zapCfg zap.Config
	if format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	return zapCfg, nil
}
