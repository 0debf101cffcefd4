// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2/memstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/mobidoc/internal/auth"
	"github.com/olegiv/mobidoc/internal/config"
	"github.com/olegiv/mobidoc/internal/contact"
	"github.com/olegiv/mobidoc/internal/mailer"
	"github.com/olegiv/mobidoc/internal/model"
	"github.com/olegiv/mobidoc/internal/render"
	"github.com/olegiv/mobidoc/internal/session"
	"github.com/olegiv/mobidoc/internal/testutil"
	"github.com/olegiv/mobidoc/internal/upload"
	"github.com/olegiv/mobidoc/internal/version"
	"github.com/olegiv/mobidoc/web"
)

type nopTransport struct{}

func (nopTransport) Send(context.Context, mailer.Email) (string, error) { return "<id@test>", nil }
func (nopTransport) Verify(context.Context) error                      { return nil }

type testServer struct {
	handler    http.Handler
	uploadsDir string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	st := testutil.TestStore(t)
	sm := session.NewWithStore(memstore.New(), false)

	templates, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)
	renderer, err := render.New(render.Config{TemplatesFS: templates, Sessions: sm, IsDev: true})
	require.NoError(t, err)

	dir := t.TempDir()
	storage, err := upload.NewLocalStorage(dir, uploadsPrefix)
	require.NoError(t, err)

	logger := testutil.TestLoggerSilent()
	mail := mailer.New(nopTransport{}, mailer.Config{From: "shop@example.com"}, logger)

	for _, u := range []struct{ name, role string }{{"ravi", model.RoleEditor}, {"sunny", model.RoleAdmin}} {
		hash, err := auth.HashPassword("correct-horse-battery")
		require.NoError(t, err)
		require.NoError(t, st.CreateUser(context.Background(), &model.User{
			Username: u.name, Email: u.name + "@example.com", PasswordHash: hash, Role: u.role,
		}))
	}

	cfg := &config.Config{
		Env:            "development",
		ServerPort:     3000,
		SessionSecret:  "0123456789abcdefghijklmnopqrstuvwxyzABCD",
		APIRateLimit:   100,
		LoginRateLimit: 100,
		LoginRateBurst: 100,
	}

	h, err := newRouter(routerDeps{
		cfg:        cfg,
		store:      st,
		sessions:   sm,
		renderer:   renderer,
		uploader:   upload.New(storage, nil, logger),
		contact:    contact.NewService(st, mail, logger),
		mailer:     mail,
		version:    version.Info{Version: "test"},
		uploadsDir: dir,
	})
	require.NoError(t, err)
	return &testServer{handler: h, uploadsDir: dir}
}

func (s *testServer) do(req *http.Request, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, username string) []*http.Cookie {
	t.Helper()
	form := url.Values{"username": {username}, "password": {"correct-horse-battery"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := s.do(req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func TestPublicRoutes(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		path string
		want int
	}{
		{"/", http.StatusOK},
		{"/services", http.StatusOK},
		{"/posts", http.StatusOK},
		{"/gallery", http.StatusOK},
		{"/youtube", http.StatusOK},
		{"/contact", http.StatusOK},
		{"/api/posts", http.StatusOK},
		{"/api/gallery", http.StatusOK},
		{"/api/youtube", http.StatusOK},
		{"/health", http.StatusOK},
		{"/sitemap.xml", http.StatusOK},
		{"/robots.txt", http.StatusOK},
		{"/static/css/site.css", http.StatusOK},
		{"/static/", http.StatusNotFound},
		{"/no-such-page", http.StatusNotFound},
		{"/post/00000000-0000-0000-0000-000000000000", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := srv.do(httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestSecurityHeadersApplied(t *testing.T) {
	srv := newTestServer(t)
	rec := srv.do(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}

func TestAPIPreflight(t *testing.T) {
	srv := newTestServer(t)
	req := httptest.NewRequest(http.MethodOptions, "/api/posts", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	rec := srv.do(req)
	assert.Less(t, rec.Code, 300)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAdminRequiresLogin(t *testing.T) {
	srv := newTestServer(t)
	for _, path := range []string{"/admin", "/admin/dashboard", "/admin/posts", "/admin/users"} {
		t.Run(path, func(t *testing.T) {
			rec := srv.do(httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusSeeOther, rec.Code)
			assert.Equal(t, "/admin/login", rec.Header().Get("Location"))
		})
	}

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/admin/login", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestEditorRoleBoundaries(t *testing.T) {
	srv := newTestServer(t)
	cookies := srv.login(t, "ravi")

	allowed := []string{"/admin", "/admin/dashboard", "/admin/posts", "/admin/posts/new",
		"/admin/gallery", "/admin/videos", "/admin/messages", "/admin/services", "/admin/services/new"}
	for _, path := range allowed {
		t.Run(path, func(t *testing.T) {
			rec := srv.do(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}

	for _, path := range []string{"/admin/users", "/admin/events", "/admin/test-email"} {
		t.Run(path, func(t *testing.T) {
			rec := srv.do(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
			assert.Equal(t, http.StatusForbidden, rec.Code)
		})
	}
}

func TestAdminRoutes(t *testing.T) {
	srv := newTestServer(t)
	cookies := srv.login(t, "sunny")

	for _, path := range []string{"/admin/users", "/admin/events"} {
		t.Run(path, func(t *testing.T) {
			rec := srv.do(httptest.NewRequest(http.MethodGet, path, nil), cookies...)
			assert.Equal(t, http.StatusOK, rec.Code)
		})
	}

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/admin/test-email", nil), cookies...)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestCrossOriginAdminPostRejected(t *testing.T) {
	srv := newTestServer(t)
	cookies := srv.login(t, "sunny")

	form := url.Values{"name": {"Screen"}, "price": {"10"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/services", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Sec-Fetch-Site", "cross-site")

	rec := srv.do(req, cookies...)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestContactSubmitRoute(t *testing.T) {
	srv := newTestServer(t)
	body := `{"firstName":"Asha","lastName":"Rani","email":"asha@example.com","phone":"98450","message":"Cracked screen"}`
	req := httptest.NewRequest(http.MethodPost, "/contact/submit", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	rec := srv.do(req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":true`)
}

func TestUploadsServed(t *testing.T) {
	srv := newTestServer(t)
	require.NoError(t, os.WriteFile(filepath.Join(srv.uploadsDir, "1-a.png"), []byte("png"), 0o600))

	rec := srv.do(httptest.NewRequest(http.MethodGet, "/uploads/1-a.png", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=604800", rec.Header().Get("Cache-Control"))

	rec = srv.do(httptest.NewRequest(http.MethodGet, "/uploads/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
