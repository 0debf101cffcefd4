// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads the application configuration from MOBIDOC_*
// environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Mail drivers.
const (
	MailDriverSMTP    = "smtp"
	MailDriverMailgun = "mailgun"
)

// Upload drivers.
const (
	UploadDriverLocal = "local"
	UploadDriverS3    = "s3"
	UploadDriverGCS   = "gcs"
)

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DatabaseURL   string `env:"MOBIDOC_DATABASE_URL,required"`
	SessionSecret string `env:"MOBIDOC_SESSION_SECRET,required"`
	ServerHost    string `env:"MOBIDOC_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"MOBIDOC_SERVER_PORT" envDefault:"3000"`
	Env           string `env:"MOBIDOC_ENV" envDefault:"development"`
	LogLevel      string `env:"MOBIDOC_LOG_LEVEL" envDefault:"info"`

	RedisURL    string   `env:"MOBIDOC_REDIS_URL"` // Optional session store
	CORSOrigins []string `env:"MOBIDOC_CORS_ORIGINS" envSeparator:","`

	// SiteURL is the public base URL used in sitemap.xml and robots.txt.
	// Empty means it is taken from each request.
	SiteURL string `env:"MOBIDOC_SITE_URL"`

	// EventRetentionDays bounds the event log. 0 keeps events forever.
	EventRetentionDays int `env:"MOBIDOC_EVENT_RETENTION_DAYS" envDefault:"90"`

	// Mail
	MailDriver    string `env:"MOBIDOC_MAIL_DRIVER" envDefault:"smtp"`
	MailFrom      string `env:"MOBIDOC_MAIL_FROM"`
	AdminEmail    string `env:"MOBIDOC_ADMIN_EMAIL"`
	SMTPHost      string `env:"MOBIDOC_SMTP_HOST"`
	SMTPPort      int    `env:"MOBIDOC_SMTP_PORT" envDefault:"587"`
	SMTPSecure    bool   `env:"MOBIDOC_SMTP_SECURE" envDefault:"false"`
	SMTPUser      string `env:"MOBIDOC_SMTP_USER"`
	SMTPPass      string `env:"MOBIDOC_SMTP_PASS"`
	MailgunDomain string `env:"MOBIDOC_MAILGUN_DOMAIN"`
	MailgunAPIKey string `env:"MOBIDOC_MAILGUN_API_KEY"`
	MailgunEU     bool   `env:"MOBIDOC_MAILGUN_EU" envDefault:"false"`

	// Uploads
	UploadDriver       string `env:"MOBIDOC_UPLOAD_DRIVER" envDefault:"local"`
	UploadDir          string `env:"MOBIDOC_UPLOAD_DIR" envDefault:"./uploads"`
	UploadPublicURL    string `env:"MOBIDOC_UPLOAD_PUBLIC_URL"` // CDN base for s3/gcs objects
	UploadMaxDimension int    `env:"MOBIDOC_UPLOAD_MAX_DIMENSION" envDefault:"1920"`
	UploadQuality      int    `env:"MOBIDOC_UPLOAD_QUALITY" envDefault:"85"`
	S3Bucket           string `env:"MOBIDOC_S3_BUCKET"`
	S3Region           string `env:"MOBIDOC_S3_REGION" envDefault:"us-east-1"`
	S3Endpoint         string `env:"MOBIDOC_S3_ENDPOINT"` // MinIO and other S3-compatible stores
	S3AccessKey        string `env:"MOBIDOC_S3_ACCESS_KEY"`
	S3SecretKey        string `env:"MOBIDOC_S3_SECRET_KEY"`
	S3UseSSL           bool   `env:"MOBIDOC_S3_USE_SSL" envDefault:"true"`
	GCSBucket          string `env:"MOBIDOC_GCS_BUCKET"`
	GCSCredentialsFile string `env:"MOBIDOC_GCS_CREDENTIALS_FILE"`

	// Throttling
	APIRateLimit   int     `env:"MOBIDOC_API_RATE_LIMIT" envDefault:"60"` // requests per minute per IP
	LoginRateLimit float64 `env:"MOBIDOC_LOGIN_RATE_LIMIT" envDefault:"0.5"`
	LoginRateBurst int     `env:"MOBIDOC_LOGIN_RATE_BURST" envDefault:"5"`

	// Bootstrap admin account
	SeedAdmin         bool   `env:"MOBIDOC_SEED_ADMIN" envDefault:"false"`
	SeedAdminUsername string `env:"MOBIDOC_SEED_ADMIN_USERNAME" envDefault:"admin"`
	SeedAdminEmail    string `env:"MOBIDOC_SEED_ADMIN_EMAIL"`
	SeedAdminPassword string `env:"MOBIDOC_SEED_ADMIN_PASSWORD"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true when session cookies must be marked Secure.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// EventRetention returns EventRetentionDays as a duration.
func (c Config) EventRetention() time.Duration {
	return time.Duration(c.EventRetentionDays) * 24 * time.Hour
}

// LogLevelValue maps LogLevel to a slog level. Unknown names mean info.
func (c Config) LogLevelValue() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// MinSessionSecretLength is the minimum required length for the session secret.
// AES-256 requires 32 bytes minimum for secure encryption.
const MinSessionSecretLength = 32

// LoadDotEnv loads the given .env files into the environment. Missing files
// are skipped and variables already set win.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Validate session secret length
	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("MOBIDOC_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	// Reject known weak/default secrets
	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, errors.New("MOBIDOC_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	// Warn about low-entropy secrets
	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("MOBIDOC_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	if err := cfg.validateMail(); err != nil {
		return nil, err
	}
	if err := cfg.validateUpload(); err != nil {
		return nil, err
	}
	if cfg.EventRetentionDays < 0 {
		return nil, errors.New("MOBIDOC_EVENT_RETENTION_DAYS must not be negative")
	}
	cfg.SiteURL = strings.TrimSuffix(cfg.SiteURL, "/")
	if cfg.SeedAdmin && (cfg.SeedAdminEmail == "" || cfg.SeedAdminPassword == "") {
		return nil, errors.New("MOBIDOC_SEED_ADMIN requires MOBIDOC_SEED_ADMIN_EMAIL and MOBIDOC_SEED_ADMIN_PASSWORD")
	}

	return cfg, nil
}

// validateMail checks the credentials of the selected mail driver and fills
// the sender and admin addresses when they were left empty.
func (c *Config) validateMail() error {
	switch c.MailDriver {
	case MailDriverSMTP:
		if c.SMTPHost == "" || c.SMTPUser == "" || c.SMTPPass == "" {
			return errors.New("smtp mail driver requires MOBIDOC_SMTP_HOST, MOBIDOC_SMTP_USER and MOBIDOC_SMTP_PASS")
		}
		if c.MailFrom == "" {
			c.MailFrom = c.SMTPUser
		}
	case MailDriverMailgun:
		if c.MailgunDomain == "" || c.MailgunAPIKey == "" {
			return errors.New("mailgun mail driver requires MOBIDOC_MAILGUN_DOMAIN and MOBIDOC_MAILGUN_API_KEY")
		}
		if c.MailFrom == "" {
			c.MailFrom = "noreply@" + c.MailgunDomain
		}
	default:
		return fmt.Errorf("unknown MOBIDOC_MAIL_DRIVER %q (want smtp or mailgun)", c.MailDriver)
	}
	if c.AdminEmail == "" {
		c.AdminEmail = c.MailFrom
	}
	return nil
}

func (c *Config) validateUpload() error {
	switch c.UploadDriver {
	case UploadDriverLocal:
		return nil
	case UploadDriverS3:
		if c.S3Bucket == "" {
			return errors.New("s3 upload driver requires MOBIDOC_S3_BUCKET")
		}
		return nil
	case UploadDriverGCS:
		if c.GCSBucket == "" {
			return errors.New("gcs upload driver requires MOBIDOC_GCS_BUCKET")
		}
		return nil
	default:
		return fmt.Errorf("unknown MOBIDOC_UPLOAD_DRIVER %q (want local, s3 or gcs)", c.UploadDriver)
	}
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
