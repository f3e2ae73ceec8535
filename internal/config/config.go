package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AppConfig holds infrastructure config from standard env vars.
type AppConfig struct {
	DBPath     string
	ConfigPath string // Path to the YAML roaster file
}

// Config is the full roaster configuration file. It is loaded once at
// startup and treated as read-only afterwards.
type Config struct {
	Roasters          []Roaster `yaml:"roasters"`
	ShippingCountries []string  `yaml:"shipping_countries"`
	Concurrency       int       `yaml:"concurrency"`
}

// Roaster describes one source storefront and the strategies that apply
// to it.
type Roaster struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	BaseURL        string   `yaml:"base_url"`
	Platform       string   `yaml:"platform"` // storefront platform, defaults to shopify
	Currency       string   `yaml:"currency"`
	Enhancers      []string `yaml:"enhancers"`       // registered strategy names, in order
	DefaultCountry string   `yaml:"default_country"` // for the default-country strategy
	Render         bool     `yaml:"render"`          // detail pages need a headless browser
	AI             bool     `yaml:"ai"`              // allow AI fallback extraction
}

// Roaster finds a configured roaster by id.
func (c *Config) Roaster(id string) (Roaster, bool) {
	for _, r := range c.Roasters {
		if r.ID == id {
			return r, true
		}
	}
	return Roaster{}, false
}

// GetAppConfig reads basic infrastructure settings from environment variables.
func GetAppConfig() (AppConfig, error) {
	dbPath := os.Getenv("DB_PATH")
	configPath := os.Getenv("CONFIG_PATH")

	// Set defaults if not provided
	if dbPath == "" {
		dbPath = "./local-data/coffee.db"
	}
	if configPath == "" {
		configPath = "roasters.yaml"
	}

	return AppConfig{
		DBPath:     dbPath,
		ConfigPath: configPath,
	}, nil
}

// Load reads the YAML roaster configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file at '%s': %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}
	for i, r := range cfg.Roasters {
		if r.ID == "" || r.BaseURL == "" {
			return nil, fmt.Errorf("roaster #%d is missing an id or base_url", i+1)
		}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	return &cfg, nil
}
