// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/olegiv/mobidoc/internal/model"
)

// SeedAdmin creates the bootstrap administrator when the store holds no
// users yet. The caller supplies an already hashed password.
// It reports whether a user was created.
func SeedAdmin(ctx context.Context, users UserStore, username, email, passwordHash string) (bool, error) {
	n, err := users.CountUsers(ctx)
	if err != nil {
		return false, fmt.Errorf("counting users: %w", err)
	}
	if n > 0 {
		slog.Info("users already exist, skipping admin seed")
		return false, nil
	}

	user := &model.User{
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         model.RoleAdmin,
	}
	if err := users.CreateUser(ctx, user); err != nil {
		return false, fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created admin user", "id", user.ID, "username", user.Username)
	return true, nil
}
