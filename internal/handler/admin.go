// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/mobidoc/internal/model"
	"github.com/olegiv/mobidoc/internal/render"
	"github.com/olegiv/mobidoc/internal/store"
)

// AdminHandler handles the admin dashboard.
type AdminHandler struct {
	store    store.Store
	renderer *render.Renderer
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(st store.Store, renderer *render.Renderer) *AdminHandler {
	return &AdminHandler{store: st, renderer: renderer}
}

// DashboardStats holds the dashboard counters. Messages counts new messages only.
type DashboardStats struct {
	Posts    int64
	Gallery  int64
	Videos   int64
	Messages int64
	Services int64
}

// Dashboard renders the admin dashboard.
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.stats(ctx)
	if err != nil {
		slog.Error("failed to load dashboard stats", "error", err)
		renderAdminError(w, r, h.renderer, http.StatusInternalServerError, "Failed to load dashboard")
		return
	}

	recentPosts, err := h.store.ListPosts(ctx, store.PostFilter{Limit: dashboardLimit})
	if err != nil {
		slog.Error("failed to list recent posts", "error", err)
	}
	recentMessages, err := h.store.ListMessages(ctx, dashboardLimit)
	if err != nil {
		slog.Error("failed to list recent messages", "error", err)
	}

	renderPage(w, r, h.renderer, "admin/dashboard", render.TemplateData{
		Title:       "Dashboard",
		CurrentPage: "dashboard",
		Data: map[string]any{
			"Stats":          stats,
			"RecentPosts":    recentPosts,
			"RecentMessages": recentMessages,
		},
	})
}

// stats runs the five counts concurrently.
func (h *AdminHandler) stats(ctx context.Context) (DashboardStats, error) {
	var s DashboardStats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { s.Posts, err = h.store.CountPosts(ctx); return })
	g.Go(func() (err error) { s.Gallery, err = h.store.CountGalleryItems(ctx); return })
	g.Go(func() (err error) { s.Videos, err = h.store.CountVideos(ctx); return })
	g.Go(func() (err error) { s.Messages, err = h.store.CountMessages(ctx, model.MessageStatusNew); return })
	g.Go(func() (err error) { s.Services, err = h.store.CountServices(ctx); return })
	return s, g.Wait()
}
