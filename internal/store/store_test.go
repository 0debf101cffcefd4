// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/mobidoc/internal/model"
)

// testStore opens a migrated SQLite store in a temp directory.
func testStore(t *testing.T) *SQLStore {
	t.Helper()

	b, err := Open(context.Background(), "sqlite:"+filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Store.Close() })

	s, ok := b.Store.(*SQLStore)
	require.True(t, ok)
	return s
}

func TestSqlitePath(t *testing.T) {
	tests := map[string]string{
		"sqlite:///tmp/a.db": "/tmp/a.db",
		"sqlite:data/a.db":   "data/a.db",
		"file:a.db":          "a.db",
		"./data/site.db":     "./data/site.db",
	}
	for in, want := range tests {
		assert.Equal(t, want, sqlitePath(in), in)
	}
}

func TestOpenEmptyURL(t *testing.T) {
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}

func TestBackendKind(t *testing.T) {
	s := testStore(t)
	b := &Backend{Store: s, SQL: s.DB(), Dialect: DialectSQLite}
	assert.Equal(t, "sqlite", b.Kind())
	assert.Equal(t, "mysql", (&Backend{Dialect: DialectMySQL}).Kind())
}

func TestUsers(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	u := &model.User{Username: "sunny", Email: "sunny@example.com", PasswordHash: "h", Role: model.RoleAdmin}
	require.NoError(t, s.CreateUser(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())

	got, err := s.GetUserByUsername(ctx, "sunny")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "sunny@example.com", got.Email)
	assert.Equal(t, model.RoleAdmin, got.Role)

	dup := &model.User{Username: "sunny", Email: "other@example.com", PasswordHash: "h", Role: model.RoleEditor}
	err = s.CreateUser(ctx, dup)
	assert.True(t, errors.Is(err, ErrConflict), "got %v", err)

	require.NoError(t, s.UpdateUserPassword(ctx, u.ID, "h2"))
	got, err = s.GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "h2", got.PasswordHash)

	n, err := s.CountUsers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	_, err = s.GetUserByID(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteUser(ctx, u.ID), ErrNotFound)
}

func TestPostsFilterAndOrder(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, status := range []string{model.PostStatusPublished, model.PostStatusDraft, model.PostStatusPublished} {
		p := &model.Post{
			Title:     []string{"first", "second", "third"}[i],
			Content:   "body",
			Author:    "Sunny",
			Status:    status,
			Image:     model.External("https://example.com/x.png"),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, s.CreatePost(ctx, p))
	}

	all, err := s.ListPosts(ctx, PostFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "third", all[0].Title)

	published, err := s.ListPosts(ctx, PostFilter{Status: model.PostStatusPublished})
	require.NoError(t, err)
	require.Len(t, published, 2)
	for _, p := range published {
		assert.True(t, p.IsPublished())
	}

	recent, err := s.ListPosts(ctx, PostFilter{Limit: 1})
	require.NoError(t, err)
	require.Len(t, recent, 1)

	url, ok := all[0].Image.URL()
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/x.png", url)
}

func TestUpdatePost(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	p := &model.Post{Title: "t", Content: "c", Author: "a", Status: "bogus"}
	require.NoError(t, s.CreatePost(ctx, p))
	assert.Equal(t, model.PostStatusDraft, p.Status)

	p.Title = "updated"
	p.Status = model.PostStatusPublished
	p.Image = model.Uploaded("/uploads/1-a.jpg")
	require.NoError(t, s.UpdatePost(ctx, p))

	got, err := s.GetPost(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", got.Title)
	assert.True(t, got.IsPublished())
	path, ok := got.Image.Path()
	assert.True(t, ok)
	assert.Equal(t, "/uploads/1-a.jpg", path)

	missing := &model.Post{ID: "nope", Title: "x"}
	assert.ErrorIs(t, s.UpdatePost(ctx, missing), ErrNotFound)
}

func TestVideoDefaultCategory(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	v := &model.Video{Title: "Screen repair", VideoID: "dQw4w9WgXcQ"}
	require.NoError(t, s.CreateVideo(ctx, v))

	got, err := s.GetVideo(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultVideoCategory, got.Category)
}

func TestServicesByStatus(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	older := time.Now().Add(-time.Minute)
	require.NoError(t, s.CreateService(ctx, &model.Service{Name: "Screen", Description: "d", Price: 1499.5, CreatedAt: older}))
	require.NoError(t, s.CreateService(ctx, &model.Service{Name: "Battery", Description: "d", Status: model.ServiceStatusInactive}))

	active, err := s.ListServices(ctx, model.ServiceStatusActive)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Screen", active[0].Name)
	assert.InDelta(t, 1499.5, active[0].Price, 0.001)

	all, err := s.ListServices(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Battery", all[0].Name, "newest first")
	assert.Equal(t, "Screen", all[1].Name)
}

func TestAdvanceMessageForwardOnly(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	m := &model.ContactMessage{FirstName: "A", LastName: "B", Email: "a@b.co", Phone: "1", Message: "hi"}
	require.NoError(t, s.CreateMessage(ctx, m))
	assert.Equal(t, model.MessageStatusNew, m.Status)

	changed, err := s.AdvanceMessage(ctx, m.ID, model.MessageStatusRead)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = s.AdvanceMessage(ctx, m.ID, model.MessageStatusReplied)
	require.NoError(t, err)
	assert.True(t, changed)

	// Reading a replied message must not move it back.
	changed, err = s.AdvanceMessage(ctx, m.ID, model.MessageStatusRead)
	require.NoError(t, err)
	assert.False(t, changed)

	got, err := s.GetMessage(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, model.MessageStatusReplied, got.Status)

	_, err = s.AdvanceMessage(ctx, "missing", model.MessageStatusRead)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.AdvanceMessage(ctx, m.ID, model.MessageStatusNew)
	assert.Error(t, err)
}

func TestMarkRepliedSince(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now().UTC()

	old := &model.ContactMessage{FirstName: "A", LastName: "B", Email: "a@b.co", Phone: "1", Message: "old", CreatedAt: now.Add(-48 * time.Hour)}
	recent := &model.ContactMessage{FirstName: "A", LastName: "B", Email: "a@b.co", Phone: "1", Message: "new", CreatedAt: now.Add(-time.Hour)}
	other := &model.ContactMessage{FirstName: "C", LastName: "D", Email: "c@d.co", Phone: "1", Message: "x", CreatedAt: now.Add(-time.Hour)}
	for _, m := range []*model.ContactMessage{old, recent, other} {
		require.NoError(t, s.CreateMessage(ctx, m))
	}

	n, err := s.MarkRepliedSince(ctx, "a@b.co", now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, _ := s.GetMessage(ctx, recent.ID)
	assert.Equal(t, model.MessageStatusReplied, got.Status)
	got, _ = s.GetMessage(ctx, old.ID)
	assert.Equal(t, model.MessageStatusNew, got.Status)
	got, _ = s.GetMessage(ctx, other.ID)
	assert.Equal(t, model.MessageStatusNew, got.Status)

	newCount, err := s.CountMessages(ctx, model.MessageStatusNew)
	require.NoError(t, err)
	assert.Equal(t, int64(2), newCount)
	total, err := s.CountMessages(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
}

func TestGalleryAndEvents(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	g := &model.GalleryItem{Title: "Shop", Image: model.Uploaded("/uploads/1-shop.jpg"), Category: "shop"}
	require.NoError(t, s.CreateGalleryItem(ctx, g))
	items, err := s.ListGalleryItems(ctx, 12)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, g.Image, items[0].Image)
	require.NoError(t, s.DeleteGalleryItem(ctx, g.ID))
	n, err := s.CountGalleryItems(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	require.NoError(t, s.CreateEvent(ctx, &model.Event{Level: model.EventLevelInfo, Category: model.EventCategorySystem, Message: "started"}))
	events, err := s.ListEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "{}", events[0].Metadata)
}

func TestPurgeEventsBefore(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	now := time.Now()

	old := &model.Event{Level: model.EventLevelWarning, Category: model.EventCategoryAuth, Message: "old", CreatedAt: now.Add(-100 * 24 * time.Hour)}
	recent := &model.Event{Level: model.EventLevelInfo, Category: model.EventCategorySystem, Message: "recent", CreatedAt: now.Add(-time.Hour)}
	require.NoError(t, s.CreateEvent(ctx, old))
	require.NoError(t, s.CreateEvent(ctx, recent))

	n, err := s.PurgeEventsBefore(ctx, now.Add(-90*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	events, err := s.ListEvents(ctx, 0)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "recent", events[0].Message)
}

func TestSeedAdmin(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	created, err := SeedAdmin(ctx, s, "admin", "admin@example.com", "hash")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = SeedAdmin(ctx, s, "admin", "admin@example.com", "hash")
	require.NoError(t, err)
	assert.False(t, created)

	u, err := s.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, u.IsAdmin())
}
