package config

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	Port    string `env:"PORT" envDefault:"8080"`
	BaseURL string `env:"BASE_URL" validate:"omitempty,url"`

	LogLevel  slog.Level `env:"LOG_LEVEL" envDefault:"INFO"`
	LogFormat string     `env:"LOG_FORMAT" envDefault:"text" validate:"omitempty,oneof=text json"`
	LogFile   string     `env:"LOG_FILE"`

	DocstoreProvider string `env:"DOCSTORE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory mongo postgres"`
	MongoURI         string `env:"MONGO_URI" validate:"required_if=DocstoreProvider mongo"`
	MongoDatabase    string `env:"MONGO_DATABASE" envDefault:"storefront" validate:"required_if=DocstoreProvider mongo"`
	DatabaseURL      string `env:"DATABASE_URL" validate:"required_if=DocstoreProvider postgres"`

	CacheProvider        string `env:"CACHE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	SessionStoreProvider string `env:"SESSION_STORE_PROVIDER" envDefault:"memory" validate:"omitempty,oneof=memory redis"`
	RedisAddr            string `env:"REDIS_ADDR" envDefault:"localhost:6379" validate:"required_if=CacheProvider redis,required_if=SessionStoreProvider redis"`
	RedisPassword        string `env:"REDIS_PASSWORD"`
	RedisDB              int    `env:"REDIS_DB" envDefault:"0" validate:"gte=0"`

	// RedisURL overrides the address settings for the cache.
	RedisURL string `env:"REDIS_URL" validate:"omitempty,url"`

	EncryptionKey string        `env:"ENCRYPTION_KEY,required" validate:"required"`
	HandoffTTL    time.Duration `env:"HANDOFF_TTL" envDefault:"30m" validate:"gt=0"`

	CatalogPath        string        `env:"CATALOG_PATH"`
	BlobRoot           string        `env:"BLOB_ROOT" envDefault:"./data/blobs" validate:"required"`
	DownloadSigningKey string        `env:"DOWNLOAD_SIGNING_KEY,required" validate:"required,min=32"`
	DownloadURLTTL     time.Duration `env:"DOWNLOAD_URL_TTL" envDefault:"15m" validate:"gt=0"`

	StripeSecretKey     string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET" validate:"required_with=StripeSecretKey"`

	ResendAPIKey string `env:"RESEND_API_KEY"`
	EmailFrom    string `env:"EMAIL_FROM" validate:"required_with=ResendAPIKey"`

	SentryDSN              string  `env:"SENTRY_DSN" validate:"omitempty,url"`
	SentryEnvironment      string  `env:"SENTRY_ENVIRONMENT" envDefault:"development"`
	SentryTracesSampleRate float64 `env:"SENTRY_TRACES_SAMPLE_RATE" envDefault:"0.2" validate:"gte=0,lte=1"`
}

var configValidator = validator.New()

func Load() (*Config, error) {
	var cfg Config

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if err := configValidator.Struct(c); err != nil {
		return err
	}

	if !validEncryptionKey(c.EncryptionKey) {
		return fmt.Errorf("ENCRYPTION_KEY must be 32 bytes or base64 encoding of 32 bytes")
	}

	baseURL := strings.TrimSpace(c.BaseURL)
	if strings.TrimSpace(c.StripeSecretKey) != "" && baseURL == "" {
		return fmt.Errorf("BASE_URL is required when Stripe checkout is enabled")
	}

	if baseURL != "" {
		parsed, err := url.Parse(baseURL)
		if err != nil || parsed.Hostname() == "" {
			return fmt.Errorf("BASE_URL must be a valid absolute URL")
		}
		if !isLocalHost(parsed.Hostname()) && !strings.EqualFold(parsed.Scheme, "https") {
			return fmt.Errorf("BASE_URL must use https outside local development")
		}
	}

	return nil
}

// StripeEnabled reports whether checkout can create Stripe sessions.
func (c *Config) StripeEnabled() bool {
	return strings.TrimSpace(c.StripeSecretKey) != ""
}

func (c *Config) EmailEnabled() bool {
	return strings.TrimSpace(c.ResendAPIKey) != ""
}

func validEncryptionKey(key string) bool {
	if len(key) == 32 {
		return true
	}
	decoded, err := base64.StdEncoding.DecodeString(key)
	return err == nil && len(decoded) == 32
}

func isLocalHost(host string) bool {
	switch strings.ToLower(strings.TrimSpace(host)) {
	case "localhost", "127.0.0.1", "::1":
		return true
	default:
		return false
	}
}
