package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmptyTuningConfigUsesCompiledDefaults(t *testing.T) {
	t.Parallel()

	c := EmptyTuningConfig()
	assert.Equal(t, 2*time.Second, c.GetWakeInterval())
	assert.Equal(t, 20*time.Second, c.GetIdleInterval())
	assert.Equal(t, 60*time.Second, c.GetLostAfter())
	assert.Equal(t, 2*time.Second, c.GetRangeDetectionStepInterval())
	assert.Equal(t, 0.1, c.GetProcessNoisePos())
	assert.Equal(t, 0.5, c.GetProcessNoiseVel())
	assert.Equal(t, 0.2, c.GetMeasurementNoise())
	assert.Equal(t, 12, c.GetMaxLostCount())
	assert.Equal(t, 3, c.GetInitialCommandRetryBudget())
}

func TestLoadTuningConfigOverridesOnlySetFields(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"wake_interval":"5s","max_lost_count":20}`), 0o644))

	c, err := LoadTuningConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.GetWakeInterval())
	assert.Equal(t, 20, c.GetMaxLostCount())
	// untouched fields still fall back to defaults.
	assert.Equal(t, 20*time.Second, c.GetIdleInterval())
}

func TestLoadTuningConfigRejectsNonJSONExtension(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.txt")
	require.NoError(t, os.WriteFile(path, []byte(`{}`), 0o644))

	_, err := LoadTuningConfig(path)
	assert.Error(t, err)
}

func TestLoadTuningConfigRejectsInvalidDuration(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "tuning.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"lost_after":"not-a-duration"}`), 0o644))

	_, err := LoadTuningConfig(path)
	assert.Error(t, err)
}

func TestValidateRejectsNonPositiveMaxLostCount(t *testing.T) {
	t.Parallel()

	c := EmptyTuningConfig()
	zero := 0
	c.MaxLostCount = &zero
	assert.Error(t, c.Validate())
}
