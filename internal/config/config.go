// Package config loads application configuration from YAML with
// environment variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Company is one entry of the ingest universe.
type Company struct {
	Symbol string `yaml:"symbol"`
	Name   string `yaml:"name"`
}

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Database struct {
		Driver string `yaml:"driver"`
		DSN    string `yaml:"dsn"`
	} `yaml:"database"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Ingest struct {
		Period       string `yaml:"period"`
		Fallback     bool   `yaml:"fallback"`
		Replace      bool   `yaml:"replace"`
		ScheduleCron string `yaml:"schedule_cron"`
		// RetryBaseDelay is the backoff unit between upstream fetch
		// attempts, as a Go duration string ("2s").
		RetryBaseDelay string    `yaml:"retry_base_delay"`
		Companies      []Company `yaml:"companies"`
	} `yaml:"ingest"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides. A missing file is not an error; defaults fill the gaps.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = n
		}
	}
	if v := os.Getenv("INGEST_PERIOD"); v != "" {
		cfg.Ingest.Period = v
	}
	if v := os.Getenv("INGEST_CRON"); v != "" {
		cfg.Ingest.ScheduleCron = v
	}
	if v := os.Getenv("INGEST_RETRY_DELAY"); v != "" {
		cfg.Ingest.RetryBaseDelay = v
	}

	// Defaults
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "data/stocks.db"
	}
	if cfg.Ingest.Period == "" {
		cfg.Ingest.Period = "2y"
	}
	if cfg.Ingest.ScheduleCron == "" {
		cfg.Ingest.ScheduleCron = "0 30 18 * * 1-5"
	}
	if cfg.Ingest.RetryBaseDelay == "" {
		cfg.Ingest.RetryBaseDelay = "2s"
	}
	if len(cfg.Ingest.Companies) == 0 {
		cfg.Ingest.Companies = DefaultCompanies()
	}

	return cfg, nil
}

// DefaultCompanies is the built-in NSE universe used when the config
// file lists none.
func DefaultCompanies() []Company {
	return []Company{
		{Symbol: "INFY.NS", Name: "Infosys"},
		{Symbol: "TCS.NS", Name: "Tata Consultancy Services"},
		{Symbol: "RELIANCE.NS", Name: "Reliance Industries"},
		{Symbol: "HDFCBANK.NS", Name: "HDFC Bank"},
		{Symbol: "ICICIBANK.NS", Name: "ICICI Bank"},
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Database.Driver != "sqlite" && c.Database.Driver != "postgres" {
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if _, err := time.ParseDuration(c.Ingest.RetryBaseDelay); err != nil {
		return fmt.Errorf("ingest.retry_base_delay: %w", err)
	}
	for _, co := range c.Ingest.Companies {
		if co.Symbol == "" {
			return fmt.Errorf("ingest.companies entries require a symbol")
		}
	}
	return nil
}

// RetryUnit returns the parsed retry backoff unit. Validate guarantees
// the value parses.
func (c *Config) RetryUnit() time.Duration {
	d, _ := time.ParseDuration(c.Ingest.RetryBaseDelay)
	return d
}
