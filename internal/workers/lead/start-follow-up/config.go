package startfollowup

import (
	"fmt"
	"time"

	"lead-intake/internal/common/config"
)

type Config struct {
	Enabled   bool
	Timeout   time.Duration
	ProcessID string
	// MaxRetries is applied on top of the Zeebe client's own command retries.
	MaxRetries int
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:   true,
		Timeout:   10 * time.Second,
		ProcessID: "lead-follow-up",
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.ProcessID == "" {
		return fmt.Errorf("process_id is required")
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
		if appConfig.Camunda.ProcessID != "" {
			cfg.ProcessID = appConfig.Camunda.ProcessID
		}
	}
	return cfg
}
