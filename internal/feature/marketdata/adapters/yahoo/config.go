// Package yahoo provides a MarketRepository backed by the Yahoo Finance
// chart API.
package yahoo

import (
	"os"
	"time"
)

// Config holds the Yahoo Finance client settings.
type Config struct {
	BaseURL string        // e.g. "https://query1.finance.yahoo.com"
	Timeout time.Duration // HTTP request timeout
}

// LoadConfig reads the Yahoo settings from environment variables,
// falling back to the public endpoint.
func LoadConfig() Config {
	base := os.Getenv("YAHOO_BASE_URL")
	if base == "" {
		base = "https://query1.finance.yahoo.com"
	}
	return Config{
		BaseURL: base,
		Timeout: 30 * time.Second,
	}
}
