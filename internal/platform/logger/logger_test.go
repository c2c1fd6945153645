// Package logger_test contains tests for the logger package
package logger_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mnemo-app/mnemo/internal/config"
	"github.com/mnemo-app/mnemo/internal/platform/logger"
)

func TestSetupLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   string
		enabled slog.Level
		below   slog.Level
	}{
		{name: "debug enables debug", level: "debug", enabled: slog.LevelDebug, below: slog.LevelDebug},
		{name: "info suppresses debug", level: "info", enabled: slog.LevelInfo, below: slog.LevelDebug},
		{name: "warn suppresses info", level: "warn", enabled: slog.LevelWarn, below: slog.LevelInfo},
		{name: "error suppresses warn", level: "error", enabled: slog.LevelError, below: slog.LevelWarn},
		{name: "unknown falls back to info", level: "bogus", enabled: slog.LevelInfo, below: slog.LevelDebug},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			log := logger.Setup(config.LoggingConfig{Level: tc.level, Format: "text"})
			require.NotNil(t, log)

			ctx := context.Background()
			assert.True(t, log.Enabled(ctx, tc.enabled))
			if tc.below < tc.enabled {
				assert.False(t, log.Enabled(ctx, tc.below))
			}
		})
	}
}

func TestSetupInstallsDefault(t *testing.T) {
	log := logger.Setup(config.LoggingConfig{Level: "info", Format: "json"})
	assert.Same(t, log, slog.Default())
}
