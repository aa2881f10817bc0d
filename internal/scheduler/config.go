package scheduler

import (
	"time"

	"github.com/platewise/platewise/internal/config"
)

// Config controls the engine cadence and per-run batch sizes.
type Config struct {
	Enabled      bool
	RunInterval  time.Duration
	OrgBatchSize int
	JobTimeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		RunInterval:  time.Hour,
		OrgBatchSize: 50,
		JobTimeout:   5 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.OrgBatchSize <= 0 {
		c.OrgBatchSize = defaults.OrgBatchSize
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	return c
}

// ProvideConfig maps the hot-reloadable engine config onto the scheduler.
func ProvideConfig(holder *config.EngineConfigHolder) Config {
	engine := holder.Get()
	return Config{
		Enabled:      engine.SchedulerEnabled,
		RunInterval:  engine.SchedulerInterval,
		OrgBatchSize: engine.OrgBatchSize,
	}.withDefaults()
}
