package recordledger

import (
	"fmt"
	"time"

	"lead-intake/internal/common/config"
)

type Config struct {
	Enabled    bool
	Timeout    time.Duration
	MaxRetries int
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:    true,
		Timeout:    10 * time.Second,
		MaxRetries: 2,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max_retries must not be negative")
	}
	return nil
}

func createConfigFromAppConfig(appConfig *config.Config, customConfig *Config) *Config {
	if customConfig != nil {
		return customConfig
	}

	cfg := DefaultConfig()
	if appConfig != nil {
		workerCfg := config.GetWorkerConfig(appConfig, WorkerName)
		cfg.Enabled = workerCfg.Enabled
		if workerCfg.Timeout > 0 {
			cfg.Timeout = config.GetDuration(workerCfg.Timeout)
		}
		cfg.MaxRetries = workerCfg.MaxRetries
	}
	return cfg
}
