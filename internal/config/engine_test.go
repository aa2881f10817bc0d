package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultEngineConfig(t *testing.T) {
	cfg := DefaultEngineConfig()

	assert.True(t, cfg.SchedulerEnabled)
	assert.Equal(t, time.Hour, cfg.SchedulerInterval)
	assert.Equal(t, 50, cfg.OrgBatchSize)
}

func TestValidateEngineConfig(t *testing.T) {
	valid := DefaultEngineConfig()
	require.NoError(t, validateEngineConfig(valid))

	short := valid
	short.SchedulerInterval = 30 * time.Second
	assert.Error(t, validateEngineConfig(short), "sub-minute interval should be rejected")

	noBatch := valid
	noBatch.OrgBatchSize = 0
	assert.Error(t, validateEngineConfig(noBatch), "zero batch size should be rejected")
}

func TestEngineConfigHolderFallsBackToDefaults(t *testing.T) {
	holder, err := NewEngineConfigHolder()
	require.NoError(t, err)

	got := holder.Get()
	want := DefaultEngineConfig()
	assert.Equal(t, want.SchedulerEnabled, got.SchedulerEnabled)
	assert.Equal(t, want.SchedulerInterval, got.SchedulerInterval)
	assert.Equal(t, want.OrgBatchSize, got.OrgBatchSize)
}
