// Package logging builds the process-wide zap logger from config. The level
// comes from logging.level in the config file (or PLAYCALL_LOG_LEVEL), and
// the --verbose flag forces debug regardless of config.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"playcall/internal/config"
)

// New builds a production zap logger at the configured level.
func New(cfg config.LoggingConfig, verbose bool) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		var err error
		level, err = zapcore.ParseLevel(cfg.Level)
		if err != nil {
			return nil, fmt.Errorf("logging.level: %w", err)
		}
	}
	if verbose {
		level = zapcore.DebugLevel
	}

	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}
