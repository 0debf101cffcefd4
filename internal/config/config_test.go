// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

// setRequired sets the minimum environment for Load to succeed.
func setRequired(t *testing.T) {
	t.Helper()
	os.Clearenv()
	setEnv(t, "MOBIDOC_DATABASE_URL", "./data/mobidoc.db")
	setEnv(t, "MOBIDOC_SESSION_SECRET", "test-secret-key-32-bytes-long!!!")
	setEnv(t, "MOBIDOC_SMTP_HOST", "smtp.example.com")
	setEnv(t, "MOBIDOC_SMTP_USER", "shop@example.com")
	setEnv(t, "MOBIDOC_SMTP_PASS", "app-password")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerHost != "localhost" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "localhost")
	}
	if cfg.ServerPort != 3000 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 3000)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.SMTPPort != 587 || cfg.SMTPSecure {
		t.Errorf("SMTP port/secure = %d/%v, want 587/false", cfg.SMTPPort, cfg.SMTPSecure)
	}
	if cfg.MailFrom != "shop@example.com" {
		t.Errorf("MailFrom = %q, want SMTP user", cfg.MailFrom)
	}
	if cfg.AdminEmail != "shop@example.com" {
		t.Errorf("AdminEmail = %q, want MailFrom", cfg.AdminEmail)
	}
	if cfg.UploadDriver != UploadDriverLocal || cfg.UploadDir != "./uploads" {
		t.Errorf("upload = %q %q", cfg.UploadDriver, cfg.UploadDir)
	}
	if cfg.IsProduction() {
		t.Error("default env must not be production")
	}
	if cfg.EventRetention() != 90*24*time.Hour {
		t.Errorf("EventRetention() = %v, want 90 days", cfg.EventRetention())
	}
	if cfg.SiteURL != "" {
		t.Errorf("SiteURL = %q, want empty", cfg.SiteURL)
	}
}

func TestLoad_SiteAndRetention(t *testing.T) {
	setRequired(t)
	setEnv(t, "MOBIDOC_SITE_URL", "https://mobiledoctor.example/")
	setEnv(t, "MOBIDOC_EVENT_RETENTION_DAYS", "0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.SiteURL != "https://mobiledoctor.example" {
		t.Errorf("SiteURL = %q, want trailing slash trimmed", cfg.SiteURL)
	}
	if cfg.EventRetention() != 0 {
		t.Errorf("EventRetention() = %v, want 0", cfg.EventRetention())
	}

	setEnv(t, "MOBIDOC_EVENT_RETENTION_DAYS", "-1")
	if _, err := Load(); err == nil {
		t.Error("Load() accepted a negative retention")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequired(t)
	setEnv(t, "MOBIDOC_SERVER_HOST", "0.0.0.0")
	setEnv(t, "MOBIDOC_SERVER_PORT", "8080")
	setEnv(t, "MOBIDOC_ENV", "production")
	setEnv(t, "MOBIDOC_LOG_LEVEL", "debug")
	setEnv(t, "MOBIDOC_ADMIN_EMAIL", "owner@example.com")
	setEnv(t, "MOBIDOC_CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerAddr() != "0.0.0.0:8080" {
		t.Errorf("ServerAddr() = %q", cfg.ServerAddr())
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false")
	}
	if cfg.LogLevelValue() != slog.LevelDebug {
		t.Errorf("LogLevelValue() = %v", cfg.LogLevelValue())
	}
	if cfg.AdminEmail != "owner@example.com" {
		t.Errorf("AdminEmail = %q", cfg.AdminEmail)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example" {
		t.Errorf("CORSOrigins = %v", cfg.CORSOrigins)
	}
}

func TestLoad_RequiredDatabaseURL(t *testing.T) {
	setRequired(t)
	if err := os.Unsetenv("MOBIDOC_DATABASE_URL"); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail when MOBIDOC_DATABASE_URL is not set")
	}
}

func TestLoad_SessionSecretTooShort(t *testing.T) {
	tests := []struct {
		name   string
		secret string
	}{
		{"short", "short"},
		{"31_bytes", "1234567890123456789012345678901"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			setEnv(t, "MOBIDOC_SESSION_SECRET", tt.secret)

			if _, err := Load(); err == nil {
				t.Fatalf("Load() should fail with %d-byte secret", len(tt.secret))
			}
		})
	}
}

func TestLoad_WeakSecretRejected(t *testing.T) {
	setRequired(t)
	setEnv(t, "MOBIDOC_SESSION_SECRET", "change-me-to-32-byte-secret-key!")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject a known default secret")
	}
}

func TestLoad_MailDrivers(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		unset   []string
		wantErr string
		from    string
	}{
		{
			name:    "smtp missing password",
			unset:   []string{"MOBIDOC_SMTP_PASS"},
			wantErr: "MOBIDOC_SMTP_PASS",
		},
		{
			name:    "mailgun missing key",
			env:     map[string]string{"MOBIDOC_MAIL_DRIVER": "mailgun", "MOBIDOC_MAILGUN_DOMAIN": "mg.example.com"},
			wantErr: "MOBIDOC_MAILGUN_API_KEY",
		},
		{
			name: "mailgun ok",
			env: map[string]string{
				"MOBIDOC_MAIL_DRIVER":     "mailgun",
				"MOBIDOC_MAILGUN_DOMAIN":  "mg.example.com",
				"MOBIDOC_MAILGUN_API_KEY": "key-123",
			},
			from: "noreply@mg.example.com",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"MOBIDOC_MAIL_DRIVER": "pigeon"},
			wantErr: "MOBIDOC_MAIL_DRIVER",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				setEnv(t, k, v)
			}
			for _, k := range tt.unset {
				_ = os.Unsetenv(k)
			}

			cfg, err := Load()
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Load() error = %v, want mention of %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if cfg.MailFrom != tt.from {
				t.Errorf("MailFrom = %q, want %q", cfg.MailFrom, tt.from)
			}
		})
	}
}

func TestLoad_UploadDrivers(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr bool
	}{
		{"s3 without bucket", map[string]string{"MOBIDOC_UPLOAD_DRIVER": "s3"}, true},
		{"s3 with bucket", map[string]string{"MOBIDOC_UPLOAD_DRIVER": "s3", "MOBIDOC_S3_BUCKET": "photos"}, false},
		{"gcs without bucket", map[string]string{"MOBIDOC_UPLOAD_DRIVER": "gcs"}, true},
		{"gcs with bucket", map[string]string{"MOBIDOC_UPLOAD_DRIVER": "gcs", "MOBIDOC_GCS_BUCKET": "photos"}, false},
		{"unknown", map[string]string{"MOBIDOC_UPLOAD_DRIVER": "ftp"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			for k, v := range tt.env {
				setEnv(t, k, v)
			}
			_, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_SeedAdminRequiresCredentials(t *testing.T) {
	setRequired(t)
	setEnv(t, "MOBIDOC_SEED_ADMIN", "true")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should fail without seed email and password")
	}

	setEnv(t, "MOBIDOC_SEED_ADMIN_EMAIL", "admin@example.com")
	setEnv(t, "MOBIDOC_SEED_ADMIN_PASSWORD", "s3cret-Passw0rd")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.SeedAdminUsername != "admin" {
		t.Errorf("SeedAdminUsername = %q", cfg.SeedAdminUsername)
	}
}

func TestLoadDotEnv(t *testing.T) {
	setRequired(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("MOBIDOC_SERVER_PORT=4000\nMOBIDOC_ENV=staging\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	setEnv(t, "MOBIDOC_ENV", "production")

	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"), path); err != nil {
		t.Fatalf("LoadDotEnv() error: %v", err)
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.ServerPort != 4000 {
		t.Errorf("ServerPort = %d, want 4000 from .env", cfg.ServerPort)
	}
	if cfg.Env != "production" {
		t.Errorf("Env = %q, existing variables must win", cfg.Env)
	}
}

func TestConfig_LogLevelValue(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := (Config{LogLevel: tt.level}).LogLevelValue(); got != tt.want {
				t.Errorf("LogLevelValue() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	if hasMinimumEntropy("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa") {
		t.Error("single character class should fail")
	}
	if !hasMinimumEntropy("abcDEF123abcDEF123abcDEF123abcDE") {
		t.Error("three character classes should pass")
	}
}
