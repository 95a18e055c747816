package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config carries all runtime settings, populated from the environment.
type Config struct {
	Port           int    `env:"PORT" envDefault:"8080"`
	DatabaseURL    string `env:"DATABASE_URL"`
	CORSOrigins    string `env:"CORS_ORIGINS" envDefault:"*"`
	HoldTTLMinutes int    `env:"HOLD_TTL_MINUTES" envDefault:"60"`
	LedgerPostURL  string `env:"LEDGER_POSTER_URL"`
}

// Load reads configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("PORT out of range: %d", cfg.Port)
	}
	if cfg.HoldTTLMinutes <= 0 {
		return Config{}, fmt.Errorf("HOLD_TTL_MINUTES must be positive: %d", cfg.HoldTTLMinutes)
	}
	return cfg, nil
}

// AllowedOrigins splits the CORS origin list.
func (c Config) AllowedOrigins() []string {
	parts := strings.Split(c.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
