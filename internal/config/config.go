// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token           string `yaml:"token"`
	Mode            string `yaml:"mode"` // webhook | polling | noop
	Username        string `yaml:"username"`
	SupportUsername string `yaml:"support_username"`
	Workers         int    `yaml:"workers"` // polling workers
	Language        string `yaml:"language"`
	SendRPS         int    `yaml:"send_rps"` // outbound messages per second
}

type WebhookConfig struct {
	URL    string `yaml:"url"`
	Secret string `yaml:"secret"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type HTTPConfig struct {
	Port           int           `yaml:"port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // wizard session lifetime
	CacheTTL time.Duration `yaml:"cache_ttl"`
}

type RateLimitConfig struct {
	Commands int           `yaml:"commands"` // per user per window
	Window   time.Duration `yaml:"window"`
}

type PollerConfig struct {
	Mode        string        `yaml:"mode"` // external | internal
	Cron        string        `yaml:"cron"`
	Concurrency int           `yaml:"concurrency"`
	TickSecret  string        `yaml:"tick_secret"`
	LockTTL     time.Duration `yaml:"lock_ttl"`
}

type Config struct {
	Bot       BotConfig       `yaml:"bot"`
	Webhook   WebhookConfig   `yaml:"webhook"`
	Log       LogConfig       `yaml:"log"`
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Poller    PollerConfig    `yaml:"poller"`

	Runtime RuntimeConfig `yaml:"-"`
}

// Load reads the yaml file at path, applies env overrides and defaults.
// A missing file is allowed when everything comes from the environment.
func Load(path string, dev bool) (*Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyEnv(cfg *Config) {
	override := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	override(&cfg.Bot.Token, "TELEGRAM_TOKEN")
	override(&cfg.Database.URL, "DATABASE_URL")
	override(&cfg.Redis.URL, "REDIS_URL")
	override(&cfg.Poller.TickSecret, "TICK_SECRET")
	override(&cfg.Webhook.Secret, "WEBHOOK_SECRET")
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Mode == "" {
		cfg.Bot.Mode = "webhook"
	}
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Bot.Language == "" {
		cfg.Bot.Language = "en"
	}
	if cfg.Bot.SendRPS <= 0 {
		cfg.Bot.SendRPS = 25
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.HTTP.Port <= 0 {
		cfg.HTTP.Port = 8080
	}
	if cfg.HTTP.RequestTimeout <= 0 {
		cfg.HTTP.RequestTimeout = 25 * time.Second
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	cfg.Redis.TTL = normalizeTTL(cfg.Redis.TTL, 24*time.Hour)
	cfg.Redis.CacheTTL = normalizeTTL(cfg.Redis.CacheTTL, 10*time.Minute)
	if cfg.RateLimit.Commands <= 0 {
		cfg.RateLimit.Commands = 20
	}
	cfg.RateLimit.Window = normalizeTTL(cfg.RateLimit.Window, time.Minute)
	if cfg.Poller.Mode == "" {
		cfg.Poller.Mode = "external"
	}
	if cfg.Poller.Cron == "" {
		cfg.Poller.Cron = "@every 1m"
	}
	if cfg.Poller.Concurrency <= 0 {
		cfg.Poller.Concurrency = 8
	}
	cfg.Poller.LockTTL = normalizeTTL(cfg.Poller.LockTTL, 2*time.Minute)
}

// Validate checks what every long-running command needs.
func (c *Config) Validate() error {
	if c.Bot.Token == "" && c.Bot.Mode != "noop" {
		return errors.New("bot.token is required")
	}
	if c.Database.URL == "" {
		return errors.New("database.url is required")
	}
	if c.Redis.URL == "" {
		return errors.New("redis.url is required")
	}
	switch c.Bot.Mode {
	case "webhook", "polling", "noop":
	default:
		return fmt.Errorf("bot.mode must be webhook, polling or noop, got %q", c.Bot.Mode)
	}
	switch c.Poller.Mode {
	case "external", "internal":
	default:
		return fmt.Errorf("poller.mode must be external or internal, got %q", c.Poller.Mode)
	}
	return nil
}

func normalizeTTL(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
