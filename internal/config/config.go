package config

import (
	"errors"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"restroom-cloud/internal/auth"
)

// Config is the service configuration. Values come from the environment with
// an optional YAML overlay (RESTROOM_CONFIG path).
type Config struct {
	HTTPAddr    string `yaml:"http_addr"`
	DatabaseURL string `yaml:"database_url"`

	// FeedBaseURL enables the upstream poller when non-empty.
	FeedBaseURL      string        `yaml:"feed_base_url"`
	PollInterval     time.Duration `yaml:"poll_interval"`
	RolloverInterval time.Duration `yaml:"rollover_interval"`
	Timezone         string        `yaml:"timezone"`
	RetentionDays    int           `yaml:"retention_days"`

	JWTSecret    string `yaml:"jwt_secret"`
	IngestSecret string `yaml:"ingest_secret"`

	CleaningWebhookURL string        `yaml:"cleaning_webhook_url"`
	CleaningCooldown   time.Duration `yaml:"cleaning_cooldown"`

	Users []auth.User `yaml:"users"`
}

// Load builds the configuration from env vars, then applies the YAML file at
// RESTROOM_CONFIG when set.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:           getenvDefault("HTTP_ADDR", ":8080"),
		DatabaseURL:        getenvDefault("DATABASE_URL", getenvDefault("PG_DSN", "")),
		FeedBaseURL:        getenvDefault("FEED_BASE_URL", ""),
		PollInterval:       getenvDurationDefault("POLL_INTERVAL", 5*time.Second),
		RolloverInterval:   getenvDurationDefault("ROLLOVER_INTERVAL", 10*time.Second),
		Timezone:           getenvDefault("TIMEZONE", "Asia/Bangkok"),
		RetentionDays:      getenvIntDefault("RETENTION_DAYS", 90),
		JWTSecret:          getenvDefault("AUTH_JWT_SECRET", getenvDefault("JWT_SECRET", "")),
		IngestSecret:       getenvDefault("INGEST_HMAC_SECRET", ""),
		CleaningWebhookURL: getenvDefault("CLEANING_WEBHOOK_URL", ""),
		CleaningCooldown:   getenvDurationDefault("CLEANING_COOLDOWN", 30*time.Minute),
	}

	if path := os.Getenv("RESTROOM_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
	}

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Location resolves the configured timezone.
func (c Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c Config) validate() error {
	if c.HTTPAddr == "" {
		return errors.New("config: http addr required")
	}
	if c.Timezone == "" {
		return errors.New("config: timezone required")
	}
	if c.PollInterval <= 0 {
		return errors.New("config: poll interval must be positive")
	}
	if c.RolloverInterval <= 0 {
		return errors.New("config: rollover interval must be positive")
	}
	if c.RetentionDays <= 0 {
		return errors.New("config: retention days must be positive")
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvIntDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getenvDurationDefault(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}
