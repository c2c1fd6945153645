package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	// No config file anywhere: defaults apply.
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(prev) })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, []int{1, 10}, cfg.Scheduler.LearnSteps)
	assert.Equal(t, 1300, cfg.Scheduler.MinEase)
	assert.Equal(t, 100, cfg.Search.DefaultLimit)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mnemo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
logging:
  level: debug
scheduler:
  graduating_interval: 3
  leech_threshold: 4
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 3, cfg.Scheduler.GraduatingInterval)
	assert.Equal(t, 4, cfg.Scheduler.LeechThreshold)
	// Untouched keys keep their defaults.
	assert.Equal(t, 4, cfg.Scheduler.EasyInterval)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mnemo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
scheduler:
  lapse_multiplier: 1.5
`), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LapseMultiplier")
}

func TestDefaultSchedulerIsInternallyConsistent(t *testing.T) {
	cfg := DefaultScheduler()

	assert.Less(t, cfg.MinEase, 2500)
	assert.Negative(t, cfg.AgainEaseDelta)
	assert.Negative(t, cfg.HardEaseDelta)
	assert.Positive(t, cfg.EasyEaseDelta)
	assert.Greater(t, cfg.EasyInterval, cfg.GraduatingInterval)
	assert.Less(t, cfg.LapseMultiplier, 1.0)
}
