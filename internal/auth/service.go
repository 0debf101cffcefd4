// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"log/slog"

	"github.com/olegiv/mobidoc/internal/store"
)

// ErrInvalidCredentials is returned for an unknown username and for a wrong
// password alike.
var ErrInvalidCredentials = errors.New("invalid username or password")

// dummyHash is verified when no stored hash applies so every failure path
// costs one password hash.
var dummyHash, _ = HashPassword("mobidoc-dummy-password")

// Service checks credentials against the user store.
type Service struct {
	users store.UserStore
	check func(password, hash string) (bool, error)
}

// NewService creates a Service.
func NewService(users store.UserStore) *Service {
	return &Service{users: users, check: CheckPassword}
}

// Login verifies username and password and returns the identity to store in
// the session. Hashes with outdated parameters are upgraded on success.
func (s *Service) Login(ctx context.Context, username, password string) (Identity, error) {
	if username == "" || password == "" {
		_, _ = s.check(password, dummyHash)
		return Identity{}, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			return Identity{}, err
		}
		_, _ = s.check(password, dummyHash)
		slog.Debug("login attempt for non-existent user", "username", username)
		return Identity{}, ErrInvalidCredentials
	}

	valid, err := s.check(password, user.PasswordHash)
	if err != nil {
		slog.Error("password check error", "error", err, "user_id", user.ID)
		return Identity{}, ErrInvalidCredentials
	}
	if !valid {
		slog.Debug("invalid password attempt", "username", username)
		return Identity{}, ErrInvalidCredentials
	}

	if NeedsRehash(user.PasswordHash) {
		if newHash, err := HashPassword(password); err == nil {
			if err := s.users.UpdateUserPassword(ctx, user.ID, newHash); err != nil {
				slog.Error("failed to re-hash password", "error", err, "user_id", user.ID)
			} else {
				slog.Info("password re-hashed with updated parameters", "user_id", user.ID)
			}
		}
	}

	return IdentityOf(user), nil
}
