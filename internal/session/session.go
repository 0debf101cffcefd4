// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session wraps scs with the admin identity and flash helpers.
// The backing store follows the database backend unless Redis is configured.
package session

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/mongodbstore"
	"github.com/alexedwards/scs/mysqlstore"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/redis/go-redis/v9"

	"github.com/olegiv/mobidoc/internal/auth"
	"github.com/olegiv/mobidoc/internal/store"
)

// Lifetime is how long a login lasts.
const Lifetime = 24 * time.Hour

// Session keys.
const (
	KeyUserID    = "user_id"
	KeyUsername  = "username"
	KeyEmail     = "email"
	KeyRole      = "role"
	KeyFlash     = "flash"
	KeyFlashType = "flash_type"
)

// Manager is the application's session manager.
type Manager struct {
	*scs.SessionManager
	closeFn func() error
}

// New creates a Manager whose store matches the backend. A non-empty
// redisURL takes precedence over the database.
func New(b *store.Backend, redisURL string, secure bool) (*Manager, error) {
	if redisURL != "" {
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, fmt.Errorf("parsing redis url: %w", err)
		}
		client := redis.NewClient(opts)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("pinging redis: %w", err)
		}
		m := NewWithStore(goredisstore.New(client), secure)
		m.closeFn = client.Close
		return m, nil
	}

	switch {
	case b.Mongo != nil:
		return NewWithStore(mongodbstore.New(b.Mongo), secure), nil
	case b.Dialect == store.DialectMySQL:
		return NewWithStore(mysqlstore.New(b.SQL), secure), nil
	default:
		return NewWithStore(sqlite3store.New(b.SQL), secure), nil
	}
}

// NewWithStore creates a Manager on an explicit scs store.
func NewWithStore(st scs.Store, secure bool) *Manager {
	sm := scs.New()
	sm.Store = st

	sm.Lifetime = Lifetime
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = secure
	if secure {
		sm.Cookie.Name = "__Host-session"
	}

	return &Manager{SessionManager: sm}
}

// Close releases the external session store connection, if any.
func (m *Manager) Close() error {
	if m.closeFn == nil {
		return nil
	}
	return m.closeFn()
}

// Login renews the session token and stores the identity.
func (m *Manager) Login(ctx context.Context, id auth.Identity) error {
	if err := m.RenewToken(ctx); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	m.Put(ctx, KeyUserID, id.ID)
	m.Put(ctx, KeyUsername, id.Username)
	m.Put(ctx, KeyEmail, id.Email)
	m.Put(ctx, KeyRole, id.Role)
	return nil
}

// Identity returns the logged-in identity, or nil without a session.
func (m *Manager) Identity(ctx context.Context) *auth.Identity {
	userID := m.GetString(ctx, KeyUserID)
	if userID == "" {
		return nil
	}
	return &auth.Identity{
		ID:       userID,
		Username: m.GetString(ctx, KeyUsername),
		Email:    m.GetString(ctx, KeyEmail),
		Role:     m.GetString(ctx, KeyRole),
	}
}

// Logout destroys the session.
func (m *Manager) Logout(ctx context.Context) error {
	return m.Destroy(ctx)
}

// SetFlash stores a one-time message shown on the next page.
func (m *Manager) SetFlash(ctx context.Context, message, flashType string) {
	m.Put(ctx, KeyFlash, message)
	m.Put(ctx, KeyFlashType, flashType)
}

// PopFlash returns and clears the pending flash message.
func (m *Manager) PopFlash(ctx context.Context) (message, flashType string) {
	message = m.PopString(ctx, KeyFlash)
	flashType = m.PopString(ctx, KeyFlashType)
	if message != "" && flashType == "" {
		flashType = "info"
	}
	return message, flashType
}
