// Package app assembles the bot: configuration, infrastructure, services
// and Telegram wiring.
package app

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	coreconfig "tasabot/core/config"
	coredatabase "tasabot/core/database"
	"tasabot/internal/storage"
)

// SeedAccount describes a receiving account provisioned from configuration.
type SeedAccount struct {
	Label         string `yaml:"label"`
	BankName      string `yaml:"bank_name"`
	AccountNumber string `yaml:"account_number"`
	ZelleUser     string `yaml:"zelle_user"`
	ZelleHolder   string `yaml:"zelle_holder"`
	Currency      string `yaml:"currency"`
}

// Config is the full application configuration: the reusable core plus the
// database, object storage and seed data.
type Config struct {
	Core     coreconfig.Config   `yaml:",inline"`
	Database coredatabase.Config `yaml:"database"`
	Storage  storage.Config      `yaml:"storage"`

	// ReceiveAccounts are seeded idempotently at startup.
	ReceiveAccounts []SeedAccount `yaml:"receive_accounts"`
}

// CoreConfig satisfies the runner's ConfigCarrier interface.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Core }

// LoadConfig reads the YAML file and applies environment overrides.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("app: read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("app: parse config: %w", err)
	}
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("app: process env: %w", err)
	}

	if err := coreconfig.Normalize(&cfg.Core); err != nil {
		return nil, err
	}
	if cfg.Storage.BaseURL == "" {
		return nil, fmt.Errorf("app: storage.base_url is required")
	}
	return &cfg, nil
}
