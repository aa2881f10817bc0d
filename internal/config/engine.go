package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// EngineConfig tunes the background engine cadence. Threshold rules and
// module registries are deliberately NOT configurable here; they live as
// declarative tables next to the code that evaluates them.
type EngineConfig struct {
	SchedulerEnabled  bool          `mapstructure:"schedulerEnabled"`
	SchedulerInterval time.Duration `mapstructure:"schedulerInterval"`
	OrgBatchSize      int           `mapstructure:"orgBatchSize"`
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		SchedulerEnabled:  true,
		SchedulerInterval: time.Hour,
		OrgBatchSize:      50,
	}
}

type EngineConfigHolder struct {
	current atomic.Value // holds EngineConfig
}

func NewEngineConfigHolder() (*EngineConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("engine")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/platewise/config")
	v.AddConfigPath("/etc/platewise")
	v.AddConfigPath(".")

	v.SetEnvPrefix("PLATEWISE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultEngineConfig()
	v.SetDefault("engine.schedulerEnabled", defaults.SchedulerEnabled)
	v.SetDefault("engine.schedulerInterval", defaults.SchedulerInterval)
	v.SetDefault("engine.orgBatchSize", defaults.OrgBatchSize)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg EngineConfig
	if err := v.UnmarshalKey("engine", &cfg); err != nil {
		return nil, err
	}
	if err := validateEngineConfig(cfg); err != nil {
		return nil, err
	}

	holder := &EngineConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated EngineConfig
		if err := v.UnmarshalKey("engine", &updated); err != nil {
			log.Printf("[engine-config] reload failed: %v", err)
			return
		}
		if err := validateEngineConfig(updated); err != nil {
			log.Printf("[engine-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[engine-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *EngineConfigHolder) Get() EngineConfig {
	return h.current.Load().(EngineConfig)
}

func validateEngineConfig(cfg EngineConfig) error {
	if cfg.SchedulerInterval < time.Minute {
		return errors.New("engine.schedulerInterval must be at least one minute")
	}
	if cfg.OrgBatchSize <= 0 {
		return errors.New("engine.orgBatchSize must be positive")
	}
	return nil
}
