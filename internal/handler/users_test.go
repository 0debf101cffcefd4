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
	"github.com/olegiv/mobidoc/internal/store"
)

func newUsersHandler(env *testEnv) *UsersHandler {
	return NewUsersHandler(env.store, env.store, env.renderer)
}

func TestUsersCreate(t *testing.T) {
	env := newTestEnv(t)
	h := newUsersHandler(env)

	req := formRequest(http.MethodPost, "/admin/users", url.Values{
		"username": {"ravi"}, "email": {"ravi@example.com"}, "password": {"long-enough-pw"}, "role": {"editor"},
	})
	rec := env.serve(h.Create, asUser(req, "admin-1", model.RoleAdmin))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, redirectAdminUsers, rec.Header().Get("Location"))

	u, err := env.store.GetUserByUsername(context.Background(), "ravi")
	require.NoError(t, err)
	assert.Equal(t, model.RoleEditor, u.Role)
	ok, err := auth.CheckPassword("long-enough-pw", u.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	events, err := env.store.ListEvents(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "User created", events[0].Message)
	assert.Equal(t, model.EventCategoryUser, events[0].Category)
}

func TestUsersCreateValidation(t *testing.T) {
	tests := []struct {
		name      string
		values    url.Values
		wantField string
	}{
		{"short username", url.Values{"username": {"ab"}, "email": {"a@b.com"}, "password": {"12345678"}, "role": {"editor"}}, "username"},
		{"bad email", url.Values{"username": {"ravi"}, "email": {"nope"}, "password": {"12345678"}, "role": {"editor"}}, "email"},
		{"short password", url.Values{"username": {"ravi"}, "email": {"a@b.com"}, "password": {"123"}, "role": {"editor"}}, "password"},
		{"unknown role", url.Values{"username": {"ravi"}, "email": {"a@b.com"}, "password": {"12345678"}, "role": {"owner"}}, "role"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			h := newUsersHandler(env)

			errs := h.validateForm(userForm{
				Username: tt.values.Get("username"),
				Email:    tt.values.Get("email"),
				Password: tt.values.Get("password"),
				Role:     tt.values.Get("role"),
			})
			require.Len(t, errs, 1)
			assert.Contains(t, errs, tt.wantField)

			rec := env.serve(h.Create, formRequest(http.MethodPost, "/admin/users", tt.values))
			require.Equal(t, http.StatusBadRequest, rec.Code)
			n, err := env.store.CountUsers(context.Background())
			require.NoError(t, err)
			assert.Zero(t, n)
		})
	}
}

func TestUsersCreateDuplicate(t *testing.T) {
	env := newTestEnv(t)
	h := newUsersHandler(env)

	require.NoError(t, env.store.CreateUser(context.Background(), &model.User{
		Username: "ravi", Email: "ravi@example.com", PasswordHash: "x", Role: model.RoleEditor,
	}))

	rec := env.serve(h.Create, formRequest(http.MethodPost, "/admin/users", url.Values{
		"username": {"ravi"}, "email": {"other@example.com"}, "password": {"12345678"}, "role": {"admin"},
	}))
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, bodyString(t, rec), "Username or email already exists")
}

func TestUsersDelete(t *testing.T) {
	env := newTestEnv(t)
	h := newUsersHandler(env)

	u := model.User{Username: "ravi", Email: "ravi@example.com", PasswordHash: "x", Role: model.RoleEditor}
	require.NoError(t, env.store.CreateUser(context.Background(), &u))

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/admin/users/"+u.ID+"/delete", nil), "id", u.ID)
	rec := env.serve(h.Delete, asUser(req, "admin-1", model.RoleAdmin))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	_, err := env.store.GetUserByID(context.Background(), u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersCannotDeleteSelf(t *testing.T) {
	env := newTestEnv(t)
	h := newUsersHandler(env)

	u := model.User{Username: "sunny", Email: "sunny@example.com", PasswordHash: "x", Role: model.RoleAdmin}
	require.NoError(t, env.store.CreateUser(context.Background(), &u))

	req := withURLParam(httptest.NewRequest(http.MethodPost, "/admin/users/"+u.ID+"/delete", nil), "id", u.ID)
	rec := env.serve(h.Delete, asUser(req, u.ID, model.RoleAdmin))
	require.Equal(t, http.StatusSeeOther, rec.Code)

	_, err := env.store.GetUserByID(context.Background(), u.ID)
	assert.NoError(t, err)
}

func TestUsersList(t *testing.T) {
	env := newTestEnv(t)
	h := newUsersHandler(env)

	require.NoError(t, env.store.CreateUser(context.Background(), &model.User{
		Username: "ravi", Email: "ravi@example.com", PasswordHash: "x", Role: model.RoleEditor,
	}))

	req := asUser(httptest.NewRequest(http.MethodGet, "/admin/users", nil), "admin-1", model.RoleAdmin)
	rec := env.serve(h.List, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, bodyString(t, rec), "ravi@example.com")
}

func TestUsersListHidesOwnDelete(t *testing.T) {
	env := newTestEnv(t)
	h := newUsersHandler(env)

	self := model.User{Username: "sunny", Email: "sunny@example.com", PasswordHash: "x", Role: model.RoleAdmin}
	other := model.User{Username: "ravi", Email: "ravi@example.com", PasswordHash: "x", Role: model.RoleEditor}
	require.NoError(t, env.store.CreateUser(context.Background(), &self))
	require.NoError(t, env.store.CreateUser(context.Background(), &other))

	req := asUser(httptest.NewRequest(http.MethodGet, "/admin/users", nil), self.ID, model.RoleAdmin)
	rec := env.serve(h.List, req)
	require.Equal(t, http.StatusOK, rec.Code)

	body := bodyString(t, rec)
	assert.Contains(t, body, "/admin/users/"+other.ID+"/delete")
	assert.NotContains(t, body, "/admin/users/"+self.ID+"/delete")
}

func TestUsersListWithoutIdentity(t *testing.T) {
	env := newTestEnv(t)
	h := newUsersHandler(env)

	u := model.User{Username: "ravi", Email: "ravi@example.com", PasswordHash: "x", Role: model.RoleEditor}
	require.NoError(t, env.store.CreateUser(context.Background(), &u))

	rec := env.serve(h.List, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, bodyString(t, rec), "/admin/users/"+u.ID+"/delete")
}
