// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Command mobidoc runs the Mobile Doctor website and its admin panel.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/olegiv/mobidoc/internal/auth"
	"github.com/olegiv/mobidoc/internal/config"
	"github.com/olegiv/mobidoc/internal/contact"
	"github.com/olegiv/mobidoc/internal/imaging"
	"github.com/olegiv/mobidoc/internal/logging"
	"github.com/olegiv/mobidoc/internal/mailer"
	"github.com/olegiv/mobidoc/internal/render"
	"github.com/olegiv/mobidoc/internal/session"
	"github.com/olegiv/mobidoc/internal/store"
	"github.com/olegiv/mobidoc/internal/upload"
	"github.com/olegiv/mobidoc/internal/version"
	"github.com/olegiv/mobidoc/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// mailTimeout bounds a single relay call.
const mailTimeout = 30 * time.Second

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "mobidoc - Mobile Doctor website and admin panel\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOBIDOC_DATABASE_URL     sqlite path, mysql:// or mongodb:// URL (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOBIDOC_SESSION_SECRET   Session and CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOBIDOC_SERVER_HOST      Listen host (default: localhost)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOBIDOC_SERVER_PORT      Listen port (default: 3000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOBIDOC_ENV              development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOBIDOC_LOG_LEVEL        debug|info|warn|error (default: info)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOBIDOC_MAIL_DRIVER      smtp|mailgun (default: smtp)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOBIDOC_SMTP_HOST        SMTP relay host (smtp driver)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOBIDOC_SMTP_USER        SMTP username (smtp driver)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOBIDOC_SMTP_PASS        SMTP password (smtp driver)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOBIDOC_MAILGUN_DOMAIN   Mailgun sending domain (mailgun driver)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOBIDOC_MAILGUN_API_KEY  Mailgun API key (mailgun driver)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOBIDOC_ADMIN_EMAIL      Inquiry notification address (default: sender)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOBIDOC_UPLOAD_DRIVER    local|s3|gcs (default: local)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOBIDOC_UPLOAD_DIR       Local upload directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOBIDOC_REDIS_URL        Redis URL for sessions (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOBIDOC_SITE_URL         Public base URL for sitemap.xml (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOBIDOC_EVENT_RETENTION_DAYS  Days of event log to keep, 0 keeps all (default: 90)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  MOBIDOC_SEED_ADMIN       Create the first admin when no users exist\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	info := version.Info{Version: appVersion, GitCommit: appGitCommit, BuildTime: appBuildTime}
	if *showVersion {
		_, _ = fmt.Println(info.String())
		os.Exit(0)
	}

	if err := run(info); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(info version.Info) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return fmt.Errorf("loading .env: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevelValue()})
	slog.SetDefault(slog.New(textHandler))

	ctx := context.Background()

	backend, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer func() {
		if err := backend.Store.Close(); err != nil {
			slog.Error("error closing store", "error", err)
		}
	}()
	slog.Info("store ready", "backend", backend.Kind())

	// WARN and ERROR records also land in the event log from here on
	logger := slog.New(logging.NewEventLogHandler(textHandler, backend.Store))
	slog.SetDefault(logger)

	if cfg.SeedAdmin {
		if err := seedAdmin(ctx, cfg, backend.Store); err != nil {
			return err
		}
	}

	sessions, err := session.New(backend, cfg.RedisURL, cfg.IsProduction())
	if err != nil {
		return fmt.Errorf("initializing sessions: %w", err)
	}
	defer func() { _ = sessions.Close() }()

	transport, err := newMailTransport(cfg)
	if err != nil {
		return fmt.Errorf("initializing mail transport: %w", err)
	}
	mail := mailer.New(transport, mailer.Config{From: cfg.MailFrom, AdminEmail: cfg.AdminEmail}, logger)
	slog.Info("mailer initialized", "driver", cfg.MailDriver)

	storage, err := upload.NewStorage(ctx, upload.Config{
		Driver:             cfg.UploadDriver,
		Dir:                cfg.UploadDir,
		URLPrefix:          uploadsPrefix,
		S3Bucket:           cfg.S3Bucket,
		S3Region:           cfg.S3Region,
		S3Endpoint:         cfg.S3Endpoint,
		S3AccessKey:        cfg.S3AccessKey,
		S3SecretKey:        cfg.S3SecretKey,
		S3UseSSL:           cfg.S3UseSSL,
		GCSBucket:          cfg.GCSBucket,
		GCSCredentialsFile: cfg.GCSCredentialsFile,
		PublicURL:          cfg.UploadPublicURL,
		KeyPrefix:          "uploads",
	})
	if err != nil {
		return fmt.Errorf("initializing upload storage: %w", err)
	}
	if c, ok := storage.(io.Closer); ok {
		defer func() { _ = c.Close() }()
	}
	uploader := upload.New(storage, imaging.NewProcessor(cfg.UploadMaxDimension, cfg.UploadQuality), logger)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("getting templates fs: %w", err)
	}
	renderer, err := render.New(render.Config{
		TemplatesFS: templatesFS,
		Sessions:    sessions,
		IsDev:       cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	deps := routerDeps{
		cfg:      cfg,
		store:    backend.Store,
		sessions: sessions,
		renderer: renderer,
		uploader: uploader,
		contact:  contact.NewService(backend.Store, mail, logger),
		mailer:   mail,
		version:  info,
	}
	if local, ok := storage.(*upload.LocalStorage); ok {
		deps.uploadsDir = local.Dir()
	}

	router, err := newRouter(deps)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // uploads and two sequential mail sends
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", info.WithDefaults().Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// seedAdmin creates the bootstrap admin account when the user table is empty.
func seedAdmin(ctx context.Context, cfg *config.Config, users store.UserStore) error {
	hash, err := auth.HashPassword(cfg.SeedAdminPassword)
	if err != nil {
		return fmt.Errorf("hashing seed admin password: %w", err)
	}
	created, err := store.SeedAdmin(ctx, users, cfg.SeedAdminUsername, cfg.SeedAdminEmail, hash)
	if err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}
	if created {
		slog.Info("seed admin created", "username", cfg.SeedAdminUsername)
	}
	return nil
}

func newMailTransport(cfg *config.Config) (mailer.Transport, error) {
	if cfg.MailDriver == config.MailDriverMailgun {
		return mailer.NewMailgunTransport(mailer.MailgunConfig{
			Domain:  cfg.MailgunDomain,
			APIKey:  cfg.MailgunAPIKey,
			EU:      cfg.MailgunEU,
			Timeout: mailTimeout,
		})
	}
	return mailer.NewSMTPTransport(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Secure:   cfg.SMTPSecure,
		Username: cfg.SMTPUser,
		Password: cfg.SMTPPass,
		Timeout:  mailTimeout,
	})
}
