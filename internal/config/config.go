package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Global singleton, loaded once at startup.
var globalConfig *Config

// Config holds all environment backed configuration for forms-api.
type Config struct {
	// HTTP Server
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8080"`
	MetricsPort int    `env:"METRICS_PORT" envDefault:"9091"`
	DatabaseURL string `env:"DATABASE_URL,notEmpty"`

	// Auth
	AuthSecret string `env:"AUTH_SECRET,notEmpty"`
	AuthIssuer string `env:"AUTH_ISSUER" envDefault:"formgrid"`

	// Webhook egress
	WebhookTimeout   time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"10s"`
	WebhookUserAgent string        `env:"WEBHOOK_USER_AGENT" envDefault:"FormGrid-Webhook/1.0"`

	// Secrets at rest
	SecretEncryptionKey string `env:"SECRET_ENCRYPTION_KEY,notEmpty"`

	// Blob storage (externalized attachments)
	StorageEndpoint  string `env:"STORAGE_ENDPOINT"`
	StorageAccessKey string `env:"STORAGE_ACCESS_KEY"`
	StorageSecretKey string `env:"STORAGE_SECRET_KEY"`
	StorageBucket    string `env:"STORAGE_BUCKET" envDefault:"formgrid-attachments"`
	StorageRegion    string `env:"STORAGE_REGION" envDefault:"us-east-1"`
	StorageUseSSL    bool   `env:"STORAGE_USE_SSL" envDefault:"true"`
	StoragePublicURL string `env:"STORAGE_PUBLIC_URL"`

	// Scheduled jobs
	AutoCloseEnabled         bool `env:"AUTO_CLOSE_ENABLED" envDefault:"true"`
	AutoCloseIntervalMinutes int  `env:"AUTO_CLOSE_INTERVAL_MINUTES" envDefault:"1"`

	// Observability / Logging
	OTLPEndpoint     string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName      string `env:"SERVICE_NAME" envDefault:"forms-api"`
	ServiceNamespace string `env:"SERVICE_NAMESPACE" envDefault:"formgrid"`
	Environment      string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel         string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat        string `env:"LOG_FORMAT" envDefault:"console"`
}

// Load parses environment variables into Config and performs minimal validation.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if len(cfg.SecretEncryptionKey) < 16 {
		return nil, errors.New("SECRET_ENCRYPTION_KEY must be at least 16 characters")
	}

	if cfg.StorageEndpoint != "" {
		if cfg.StorageAccessKey == "" || cfg.StorageSecretKey == "" {
			return nil, errors.New("STORAGE_ACCESS_KEY and STORAGE_SECRET_KEY are required when STORAGE_ENDPOINT is set")
		}
	}

	cfg.WebhookUserAgent = strings.TrimSpace(cfg.WebhookUserAgent)
	if cfg.WebhookUserAgent == "" {
		cfg.WebhookUserAgent = "FormGrid-Webhook/1.0"
	}

	globalConfig = cfg
	return cfg, nil
}

// GetGlobal returns the process-wide config, or nil before Load.
func GetGlobal() *Config {
	return globalConfig
}

// StorageEnabled reports whether an external blob store is configured.
// Attachment externalization is skipped entirely when it is not.
func (c *Config) StorageEnabled() bool {
	return c.StorageEndpoint != ""
}
