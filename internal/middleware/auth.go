// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, throttling and security headers.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/olegiv/mobidoc/internal/auth"
	"github.com/olegiv/mobidoc/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// Context keys.
const (
	ContextKeyIdentity    ContextKey = "identity"
	ContextKeyRequestPath ContextKey = "request_path"
)

// LoginPath is where unauthenticated admin requests are sent.
const LoginPath = "/admin/login"

// LoadIdentity puts the session identity, if any, into the request context.
func LoadIdentity(sm *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := sm.Identity(r.Context())
			if id == nil {
				next.ServeHTTP(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), ContextKeyIdentity, *id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetIdentity returns the identity loaded by LoadIdentity, or nil.
func GetIdentity(r *http.Request) *auth.Identity {
	id, ok := r.Context().Value(ContextKeyIdentity).(auth.Identity)
	if !ok {
		return nil
	}
	return &id
}

// Authorize evaluates pred against the request identity before the handler
// runs. Requests without a session are redirected to the login page and
// requests with too low a role get 403.
func Authorize(pred auth.Predicate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := GetIdentity(r)
			switch pred(id) {
			case auth.Allow:
				next.ServeHTTP(w, r)
			case auth.RedirectToLogin:
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
			default:
				var userID, role string
				if id != nil {
					userID, role = id.ID, id.Role
				}
				// WARN records reach the event log.
				slog.Warn("access denied",
					"status", http.StatusForbidden,
					"method", r.Method,
					"path", r.URL.Path,
					"user_id", userID,
					"user_role", role,
					"remote_addr", r.RemoteAddr,
				)
				http.Error(w, "Forbidden: insufficient permissions", http.StatusForbidden)
			}
		})
	}
}

// RequestPath stores the request path in the context for log records.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), ContextKeyRequestPath, r.URL.Path)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequestPath retrieves the request path from the context.
func GetRequestPath(ctx context.Context) string {
	path, ok := ctx.Value(ContextKeyRequestPath).(string)
	if !ok {
		return ""
	}
	return path
}
