// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/scs/v2/memstore"

	"github.com/olegiv/mobidoc/internal/auth"
	"github.com/olegiv/mobidoc/internal/session"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func withIdentity(r *http.Request, role string) *http.Request {
	if role == "" {
		return r
	}
	id := auth.Identity{ID: "u1", Username: "u", Role: role}
	return r.WithContext(context.WithValue(r.Context(), ContextKeyIdentity, id))
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name       string
		pred       auth.Predicate
		role       string
		wantStatus int
	}{
		{"admin can access admin route", auth.RequireAdmin, "admin", http.StatusOK},
		{"editor cannot access admin route", auth.RequireAdmin, "editor", http.StatusForbidden},
		{"unknown role cannot access admin route", auth.RequireAdmin, "public", http.StatusForbidden},
		{"admin can access editor route", auth.RequireEditor, "admin", http.StatusOK},
		{"editor can access editor route", auth.RequireEditor, "editor", http.StatusOK},
		{"editor can access dashboard", auth.RequireAuth, "editor", http.StatusOK},
		{"no user redirects to login", auth.RequireEditor, "", http.StatusSeeOther},
		{"no user redirects from dashboard", auth.RequireAuth, "", http.StatusSeeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := withIdentity(httptest.NewRequest(http.MethodGet, "/admin/test", nil), tt.role)
			rec := httptest.NewRecorder()

			Authorize(tt.pred)(okHandler()).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusSeeOther && rec.Header().Get("Location") != LoginPath {
				t.Errorf("Location = %q, want %q", rec.Header().Get("Location"), LoginPath)
			}
		})
	}
}

func TestAuthorizeForbiddenWithoutIdentity(t *testing.T) {
	deny := func(*auth.Identity) auth.Decision { return auth.Forbidden }

	rec := httptest.NewRecorder()
	Authorize(deny)(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/test", nil))

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestLoadIdentity(t *testing.T) {
	sm := session.NewWithStore(memstore.New(), false)

	var seen *auth.Identity
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetIdentity(r)
	})
	login := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = sm.Login(r.Context(), auth.Identity{ID: "u9", Username: "ed", Role: "editor"})
		LoadIdentity(sm)(inner).ServeHTTP(w, r)
	})

	sm.LoadAndSave(login).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if seen == nil {
		t.Fatal("expected identity in context")
	}
	if seen.ID != "u9" || seen.Role != "editor" {
		t.Errorf("identity = %+v", *seen)
	}
}

func TestGetIdentityEmpty(t *testing.T) {
	if GetIdentity(httptest.NewRequest(http.MethodGet, "/", nil)) != nil {
		t.Error("expected nil identity")
	}
}

func TestRequestPath(t *testing.T) {
	var got string
	h := RequestPath(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = GetRequestPath(r.Context())
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/posts", nil))
	if got != "/posts" {
		t.Errorf("path = %q", got)
	}
}
