package app

import (
	"fmt"
	"os"
	"strings"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "latinbot/core/config"
	coredatabase "latinbot/core/database"
)

// ContentConfig carries presentation and quota settings for the catalogue.
type ContentConfig struct {
	// QuotaLimit is the number of distinct free figures; 0 -> default (5).
	QuotaLimit        int    `yaml:"quota_limit" envconfig:"CONTENT_QUOTA_LIMIT"`
	SubscriptionPrice string `yaml:"subscription_price" envconfig:"CONTENT_SUBSCRIPTION_PRICE"`
	PaymentContact    string `yaml:"payment_contact" envconfig:"CONTENT_PAYMENT_CONTACT"`
	// MaxDetailChars bounds rendered technique detail; 0 -> default (3900).
	MaxDetailChars int `yaml:"max_detail_chars" envconfig:"CONTENT_MAX_DETAIL_CHARS"`
}

// Config aggregates the core bot configuration with the app's own sections.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Content  ContentConfig       `yaml:"content"`
}

// CoreConfig exposes the embedded core configuration for the cmd runner.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Core
}

// Load reads the app configuration from a YAML file layered with environment
// overrides and validates it. Both the bot token and a usable database
// target are required; the process must not start serving without them.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if err := cfg.Database.Validate(); err != nil {
		return nil, err
	}

	if strings.TrimSpace(cfg.Content.SubscriptionPrice) == "" {
		cfg.Content.SubscriptionPrice = "500₽ / month"
	}
	if strings.TrimSpace(cfg.Content.PaymentContact) == "" {
		cfg.Content.PaymentContact = "the administrator"
	}
	return &cfg, nil
}
