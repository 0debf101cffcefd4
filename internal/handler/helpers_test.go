// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"io/fs"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2/memstore"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/mobidoc/internal/auth"
	"github.com/olegiv/mobidoc/internal/contact"
	"github.com/olegiv/mobidoc/internal/mailer"
	"github.com/olegiv/mobidoc/internal/middleware"
	"github.com/olegiv/mobidoc/internal/model"
	"github.com/olegiv/mobidoc/internal/render"
	"github.com/olegiv/mobidoc/internal/session"
	"github.com/olegiv/mobidoc/internal/store"
	"github.com/olegiv/mobidoc/internal/testutil"
	"github.com/olegiv/mobidoc/internal/upload"
	"github.com/olegiv/mobidoc/web"
)

// testEnv bundles the dependencies every handler test needs.
type testEnv struct {
	store     store.Store
	sessions  *session.Manager
	renderer  *render.Renderer
	uploader  *upload.Uploader
	uploadDir string
	notifier  *fakeNotifier
	contact   *contact.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st := testutil.TestStore(t)
	sm := session.NewWithStore(memstore.New(), false)

	templates, err := fs.Sub(web.Templates, "templates")
	require.NoError(t, err)
	renderer, err := render.New(render.Config{TemplatesFS: templates, Sessions: sm})
	require.NoError(t, err)

	dir := t.TempDir()
	storage, err := upload.NewLocalStorage(dir, "/uploads")
	require.NoError(t, err)

	n := &fakeNotifier{}
	return &testEnv{
		store:     st,
		sessions:  sm,
		renderer:  renderer,
		uploader:  upload.New(storage, nil, testutil.TestLoggerSilent()),
		uploadDir: dir,
		notifier:  n,
		contact:   contact.NewService(st, n, testutil.TestLoggerSilent()),
	}
}

// serve runs h inside the session middleware, the way the router does.
func (e *testEnv) serve(h http.HandlerFunc, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.sessions.LoadAndSave(h).ServeHTTP(rec, r)
	return rec
}

// fakeNotifier records outgoing mail instead of sending it.
type fakeNotifier struct {
	direct []string
	fail   bool
}

func (f *fakeNotifier) SendContactEmails(context.Context, mailer.Inquiry) mailer.ContactResult {
	if f.fail {
		failed := mailer.SendResult{Error: "connection refused"}
		return mailer.ContactResult{CustomerEmail: failed, AdminEmail: failed}
	}
	ok := mailer.SendResult{Success: true, MessageID: "<id@test>"}
	return mailer.ContactResult{CustomerEmail: ok, AdminEmail: ok, Success: true}
}

func (f *fakeNotifier) SendDirect(_ context.Context, to, _, _ string) mailer.SendResult {
	f.direct = append(f.direct, to)
	if f.fail {
		return mailer.SendResult{Error: "connection refused"}
	}
	return mailer.SendResult{Success: true, MessageID: "<reply@test>"}
}

// withURLParam attaches a chi route parameter to the request.
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// asUser puts an identity into the request context as LoadIdentity would.
func asUser(r *http.Request, id, role string) *http.Request {
	identity := auth.Identity{ID: id, Username: "staff-" + role, Email: role + "@example.com", Role: role}
	return r.WithContext(context.WithValue(r.Context(), middleware.ContextKeyIdentity, identity))
}

func formRequest(method, target string, values url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

type formFile struct {
	field, name, contentType string
	data                     []byte
}

func multipartRequest(t *testing.T, target string, fields map[string]string, files ...formFile) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		h.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.RGBA{G: 200, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func bodyString(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	b, err := io.ReadAll(rec.Result().Body)
	require.NoError(t, err)
	return string(b)
}

func createPost(t *testing.T, st store.Store, title, status string) model.Post {
	t.Helper()
	p := model.Post{Title: title, Content: "Body of " + title, Author: "Sunny", Status: status}
	require.NoError(t, st.CreatePost(context.Background(), &p))
	return p
}

func createMessage(t *testing.T, st store.Store, email string) model.ContactMessage {
	t.Helper()
	m := model.ContactMessage{
		FirstName: "Asha", LastName: "Rani", Email: email, Phone: "98765",
		ServiceNeeded: "Screen", Message: "Cracked screen", Status: model.MessageStatusNew,
	}
	require.NoError(t, st.CreateMessage(context.Background(), &m))
	return m
}
