package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the application configuration. Settings live in an optional
// config.yaml; secrets (DATABASE_URL, REDIS_ADDR, SMTP_*, JWT_SECRET) stay in
// the environment.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Scheduling    SchedulingConfig    `yaml:"scheduling"`
	Notifications NotificationsConfig `yaml:"notifications"`
	Reminders     RemindersConfig     `yaml:"reminders"`
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

// SchedulingConfig holds the free-slot and write-path defaults.
type SchedulingConfig struct {
	DefaultSlotMinutes int    `yaml:"default_slot_minutes"`
	SuggestLimit       int    `yaml:"suggest_limit"`
	WriteRetries       int    `yaml:"write_retries"`
	CacheTTLSeconds    int    `yaml:"cache_ttl_seconds"`
	Timezone           string `yaml:"timezone"`

	CacheTTL time.Duration `yaml:"-"`
}

// NotificationsConfig replaces the process-wide "notifications enabled"
// toggle: it is handed to the notifier at construction time.
type NotificationsConfig struct {
	Enabled bool   `yaml:"enabled"`
	From    string `yaml:"from"`
}

type RemindersConfig struct {
	Enabled       bool   `yaml:"enabled"`
	Schedule      string `yaml:"schedule"`       // cron expression
	WindowMinutes int    `yaml:"window_minutes"` // tolerance around the 24h/2h marks
}

// Load reads the configuration from path, falling back to defaults when the
// file is absent.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	f, err := os.Open(path)
	if err == nil {
		defer f.Close()
		if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
			return nil, err
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	cfg.applyDefaults()
	return cfg, nil
}

// Default returns the built-in configuration, used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (cfg *Config) applyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Scheduling.DefaultSlotMinutes <= 0 {
		cfg.Scheduling.DefaultSlotMinutes = 30
	}
	if cfg.Scheduling.SuggestLimit <= 0 {
		cfg.Scheduling.SuggestLimit = 50
	}
	if cfg.Scheduling.WriteRetries <= 0 {
		cfg.Scheduling.WriteRetries = 3
	}
	if cfg.Scheduling.CacheTTLSeconds <= 0 {
		cfg.Scheduling.CacheTTLSeconds = 60
	}
	cfg.Scheduling.CacheTTL = time.Duration(cfg.Scheduling.CacheTTLSeconds) * time.Second
	if cfg.Scheduling.Timezone == "" {
		cfg.Scheduling.Timezone = "UTC"
	}
	if cfg.Notifications.From == "" {
		cfg.Notifications.From = os.Getenv("EMAIL_USER")
	}
	if cfg.Reminders.Schedule == "" {
		cfg.Reminders.Schedule = "*/5 * * * *"
	}
	if cfg.Reminders.WindowMinutes <= 0 {
		cfg.Reminders.WindowMinutes = 5
	}
}

// Location resolves the configured scheduling timezone, falling back to UTC.
func (cfg *Config) Location() *time.Location {
	loc, err := time.LoadLocation(cfg.Scheduling.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
