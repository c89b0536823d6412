package crmleadcreate

import (
	"fmt"
	"time"

	"lead-intake/internal/common/config"
)

type Config struct {
	Enabled        bool
	Timeout        time.Duration
	MaxRetries     int
	ZohoBaseURL    string
	ZohoAPIKey     string
	ZohoOAuthToken string
}

func DefaultConfig() *Config {
	return &Config{
		Enabled:    true,
		Timeout:    30 * time.Second,
		MaxRetries: 2,
	}
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.ZohoOAuthToken == "" {
		return fmt.Errorf("zoho_oauth_token is required")
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

		zoho := appConfig.Integrations.Zoho
		cfg.ZohoBaseURL = zoho.BaseURL
		cfg.ZohoAPIKey = zoho.APIKey
		cfg.ZohoOAuthToken = zoho.AuthToken
	}
	return cfg
}
