// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package testutil provides shared test helpers for mobidoc.
package testutil

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/olegiv/mobidoc/internal/store"
)

// TestLogger creates a test logger that only outputs warnings and errors.
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// TestLoggerSilent creates a near-silent test logger (error level only).
func TestLoggerSilent() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// TestBackend opens a migrated SQLite backend in a temp directory and closes
// it when the test ends.
func TestBackend(t *testing.T) *store.Backend {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "mobidoc-test.db")
	b, err := store.Open(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = b.Store.Close() })
	return b
}

// TestStore returns the store of a fresh TestBackend.
func TestStore(t *testing.T) store.Store {
	t.Helper()
	return TestBackend(t).Store
}
