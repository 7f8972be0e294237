// Package config loads service settings from the environment.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port             string   `env:"PORT" envDefault:"5200"`
	DatabaseURL      string   `env:"DATABASE_URL"`
	GameServiceToken string   `env:"GAME_SERVICE_TOKEN"`
	AllowedOrigins   []string `env:"ALLOWED_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`
	LogFile   string `env:"LOG_FILE"`

	RedisURL     string `env:"REDIS_URL"`
	EventsStream string `env:"EVENTS_STREAM" envDefault:"city-game:events"`
	EventsMaxLen int64  `env:"EVENTS_MAXLEN" envDefault:"100000"`

	CloudflareAccountID string `env:"CLOUDFLARE_ACCOUNT_ID"`
	R2AccessKeyID       string `env:"R2_ACCESS_KEY_ID"`
	R2AccessKeySecret   string `env:"R2_ACCESS_KEY_SECRET"`
	R2Bucket            string `env:"R2_BUCKET_NAME"`
	CDNBaseURL          string `env:"CDN_BASE_URL"`

	AvailabilityAuditInterval time.Duration `env:"AVAILABILITY_AUDIT_INTERVAL" envDefault:"5m"`
	SeedDemoData              bool          `env:"SEED_DEMO_DATA" envDefault:"false"`
}

// Load reads an optional .env file, then parses the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] no .env file found, reading environment variables directly")
	}
	return Parse()
}

// Parse builds a Config from the process environment only.
func Parse() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	cfg.AllowedOrigins = trimAll(cfg.AllowedOrigins)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.GameServiceToken) == "" {
		return errors.New("GAME_SERVICE_TOKEN is required")
	}
	if c.AvailabilityAuditInterval <= 0 {
		return errors.New("AVAILABILITY_AUDIT_INTERVAL must be positive")
	}
	return nil
}

// R2Enabled reports whether receipts should be archived.
func (c *Config) R2Enabled() bool {
	return c.CloudflareAccountID != "" && c.R2Bucket != ""
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func trimAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
