package notifysales

import (
	"fmt"
	"time"

	"lead-intake/internal/common/config"
)

type Config struct {
	Enabled    bool
	Timeout    time.Duration
	MaxRetries int

	EmailEnabled bool
	FromEmail    string
	Recipients   []string

	TopicEnabled bool
	TopicARN     string
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
	if !c.EmailEnabled && !c.TopicEnabled {
		return fmt.Errorf("at least one of SES or SNS must be enabled")
	}
	if c.EmailEnabled {
		if c.FromEmail == "" {
			return fmt.Errorf("from_email is required")
		}
		if len(c.Recipients) == 0 {
			return fmt.Errorf("at least one recipient is required")
		}
	}
	if c.TopicEnabled && c.TopicARN == "" {
		return fmt.Errorf("topic_arn is required")
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

		awsCfg := appConfig.Integrations.AWS
		cfg.EmailEnabled = awsCfg.SES.Enabled
		cfg.FromEmail = awsCfg.SES.FromEmail
		cfg.Recipients = awsCfg.SES.Recipients
		cfg.TopicEnabled = awsCfg.SNS.Enabled
		cfg.TopicARN = awsCfg.SNS.TopicARN
	}
	return cfg
}
