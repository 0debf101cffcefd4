// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/mobidoc/internal/auth"
	"github.com/olegiv/mobidoc/internal/logging"
	"github.com/olegiv/mobidoc/internal/middleware"
	"github.com/olegiv/mobidoc/internal/model"
	"github.com/olegiv/mobidoc/internal/render"
	"github.com/olegiv/mobidoc/internal/session"
	"github.com/olegiv/mobidoc/internal/store"
)

// Login page messages.
const (
	msgInvalidCredentials = "Invalid username or password"
	msgLoginFailed        = "Login failed. Please try again."
)

// AuthHandler handles authentication routes.
type AuthHandler struct {
	auth     *auth.Service
	sessions *session.Manager
	renderer *render.Renderer
	events   store.EventStore
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *auth.Service, sm *session.Manager, renderer *render.Renderer, events store.EventStore) *AuthHandler {
	return &AuthHandler{auth: svc, sessions: sm, renderer: renderer, events: events}
}

type loginData struct {
	Username string
}

// LoginForm renders the login page. Logged-in users go straight to the dashboard.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if middleware.GetIdentity(r) != nil {
		http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, "", "")
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.renderLogin(w, r, "", msgLoginFailed)
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")
	clientIP := r.RemoteAddr

	id, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logging.Record(r.Context(), h.events, model.EventLevelWarning, model.EventCategoryAuth,
				"Login failed", map[string]any{"username": username, "ip": clientIP})
			h.renderLogin(w, r, username, msgInvalidCredentials)
			return
		}
		slog.Error("login error", "error", err)
		h.renderLogin(w, r, username, msgLoginFailed)
		return
	}

	// Renews the token to prevent session fixation
	if err := h.sessions.Login(r.Context(), id); err != nil {
		logAndInternalError(w, "session renewal error", "error", err)
		return
	}

	slog.Info("user logged in", "user_id", id.ID, "username", id.Username)
	logging.Record(r.Context(), h.events, model.EventLevelInfo, model.EventCategoryAuth,
		"User logged in", map[string]any{"username": id.Username, "ip": clientIP})

	http.Redirect(w, r, redirectAdmin, http.StatusSeeOther)
}

// Logout destroys the session and returns to the login page.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id := middleware.GetIdentity(r); id != nil {
		slog.Info("user logged out", "user_id", id.ID, "username", id.Username)
		logging.Record(r.Context(), h.events, model.EventLevelInfo, model.EventCategoryAuth,
			"User logged out", map[string]any{"username": id.Username})
	}

	if err := h.sessions.Logout(r.Context()); err != nil {
		slog.Error("failed to destroy session", "error", err)
	}
	http.Redirect(w, r, redirectLogin, http.StatusSeeOther)
}

func (h *AuthHandler) renderLogin(w http.ResponseWriter, r *http.Request, username, errMsg string) {
	renderPage(w, r, h.renderer, "auth/login", render.TemplateData{
		Title: "Admin Login",
		Error: errMsg,
		Data:  loginData{Username: username},
	})
}
