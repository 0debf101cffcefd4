// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/mobidoc/internal/auth"
	"github.com/olegiv/mobidoc/internal/model"
)

func newAuthHandler(t *testing.T, env *testEnv) *AuthHandler {
	t.Helper()
	hash, err := auth.HashPassword("correct-horse-battery")
	require.NoError(t, err)
	require.NoError(t, env.store.CreateUser(context.Background(), &model.User{
		Username: "sunny", Email: "sunny@example.com", PasswordHash: hash, Role: model.RoleAdmin,
	}))
	return NewAuthHandler(auth.NewService(env.store), env.sessions, env.renderer, env.store)
}

func TestLoginSuccessStartsSession(t *testing.T) {
	env := newTestEnv(t)
	h := newAuthHandler(t, env)

	req := formRequest(http.MethodPost, "/admin/login", url.Values{
		"username": {"sunny"}, "password": {"correct-horse-battery"},
	})
	rec := env.serve(h.Login, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, redirectAdmin, rec.Header().Get("Location"))

	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)

	var got *auth.Identity
	next := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	for _, c := range cookies {
		next.AddCookie(c)
	}
	env.serve(func(w http.ResponseWriter, r *http.Request) {
		got = env.sessions.Identity(r.Context())
	}, next)
	require.NotNil(t, got)
	assert.Equal(t, "sunny", got.Username)
	assert.Equal(t, model.RoleAdmin, got.Role)

	events, err := env.store.ListEvents(context.Background(), 10)
	require.NoError(t, err)
	require.NotEmpty(t, events)
	assert.Equal(t, "User logged in", events[0].Message)
}

func TestLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)
	h := newAuthHandler(t, env)

	req := formRequest(http.MethodPost, "/admin/login", url.Values{
		"username": {"sunny"}, "password": {"wrong"},
	})
	rec := env.serve(h.Login, req)
	require.Equal(t, http.StatusOK, rec.Code)
	body := bodyString(t, rec)
	assert.Contains(t, body, msgInvalidCredentials)
	assert.Contains(t, body, `value="sunny"`)

	events, err := env.store.ListEvents(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Login failed", events[0].Message)
	assert.Equal(t, model.EventLevelWarning, events[0].Level)
	assert.Equal(t, model.EventCategoryAuth, events[0].Category)
}

func TestLoginFormRedirectsWhenLoggedIn(t *testing.T) {
	env := newTestEnv(t)
	h := newAuthHandler(t, env)

	rec := env.serve(h.LoginForm, asUser(httptest.NewRequest(http.MethodGet, "/admin/login", nil), "u1", model.RoleEditor))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, redirectAdmin, rec.Header().Get("Location"))

	rec = env.serve(h.LoginForm, httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t)
	h := newAuthHandler(t, env)

	req := asUser(httptest.NewRequest(http.MethodPost, "/admin/logout", nil), "u1", model.RoleAdmin)
	rec := env.serve(h.Logout, req)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, redirectLogin, rec.Header().Get("Location"))
}
