// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store persists users, site content, contact messages and the
// event log. Two backends implement Store: SQLStore (SQLite or MySQL)
// and MongoStore.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/olegiv/mobidoc/internal/model"
)

// Sentinel errors returned by every backend.
var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
)

// UserStore persists admin panel accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *model.User) error
	GetUserByID(ctx context.Context, id string) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	DeleteUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context) (int64, error)
}

// PostFilter narrows ListPosts. Zero values mean "any" and "no limit".
type PostFilter struct {
	Status string
	Limit  int
}

// PostStore persists blog posts.
type PostStore interface {
	CreatePost(ctx context.Context, p *model.Post) error
	UpdatePost(ctx context.Context, p *model.Post) error
	GetPost(ctx context.Context, id string) (model.Post, error)
	ListPosts(ctx context.Context, f PostFilter) ([]model.Post, error)
	DeletePost(ctx context.Context, id string) error
	CountPosts(ctx context.Context) (int64, error)
}

// GalleryStore persists gallery items.
type GalleryStore interface {
	CreateGalleryItem(ctx context.Context, g *model.GalleryItem) error
	GetGalleryItem(ctx context.Context, id string) (model.GalleryItem, error)
	ListGalleryItems(ctx context.Context, limit int) ([]model.GalleryItem, error)
	DeleteGalleryItem(ctx context.Context, id string) error
	CountGalleryItems(ctx context.Context) (int64, error)
}

// VideoStore persists YouTube videos.
type VideoStore interface {
	CreateVideo(ctx context.Context, v *model.Video) error
	GetVideo(ctx context.Context, id string) (model.Video, error)
	ListVideos(ctx context.Context) ([]model.Video, error)
	DeleteVideo(ctx context.Context, id string) error
	CountVideos(ctx context.Context) (int64, error)
}

// ServiceStore persists the services offered by the shop.
type ServiceStore interface {
	CreateService(ctx context.Context, s *model.Service) error
	UpdateService(ctx context.Context, s *model.Service) error
	GetService(ctx context.Context, id string) (model.Service, error)
	ListServices(ctx context.Context, status string) ([]model.Service, error)
	DeleteService(ctx context.Context, id string) error
	CountServices(ctx context.Context) (int64, error)
}

// MessageStore persists contact messages.
type MessageStore interface {
	CreateMessage(ctx context.Context, m *model.ContactMessage) error
	GetMessage(ctx context.Context, id string) (model.ContactMessage, error)
	ListMessages(ctx context.Context, limit int) ([]model.ContactMessage, error)
	DeleteMessage(ctx context.Context, id string) error
	// CountMessages counts messages with the given status, or all messages
	// when status is empty.
	CountMessages(ctx context.Context, status string) (int64, error)
	// AdvanceMessage moves one message forward to status. It reports false
	// when the message exists but is already at or past that status.
	AdvanceMessage(ctx context.Context, id, status string) (bool, error)
	// MarkRepliedSince marks every message from email created at or after
	// since as replied and returns how many changed.
	MarkRepliedSince(ctx context.Context, email string, since time.Time) (int64, error)
}

// EventStore persists the operational event log.
type EventStore interface {
	CreateEvent(ctx context.Context, e *model.Event) error
	ListEvents(ctx context.Context, limit int) ([]model.Event, error)
	// PurgeEventsBefore deletes events created before t and returns how many went.
	PurgeEventsBefore(ctx context.Context, t time.Time) (int64, error)
}

// Store is the full persistence surface used by the application.
type Store interface {
	UserStore
	PostStore
	GalleryStore
	VideoStore
	ServiceStore
	MessageStore
	EventStore
	Ping(ctx context.Context) error
	Close() error
}

// stamp fills a timestamp the caller left empty and normalises it to UTC
// at microsecond precision, the finest every backend can store.
func stamp(t *time.Time, now time.Time) {
	if t.IsZero() {
		*t = now
	}
	*t = t.UTC().Truncate(time.Microsecond)
}
