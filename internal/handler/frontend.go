// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/mobidoc/internal/model"
	"github.com/olegiv/mobidoc/internal/render"
	"github.com/olegiv/mobidoc/internal/store"
)

// FrontendHandler serves the public site and its JSON mirrors.
// Store failures degrade to empty listings so the site stays up.
type FrontendHandler struct {
	store    store.Store
	renderer *render.Renderer
}

// NewFrontendHandler creates a new FrontendHandler.
func NewFrontendHandler(st store.Store, renderer *render.Renderer) *FrontendHandler {
	return &FrontendHandler{store: st, renderer: renderer}
}

// Home renders the landing page with the newest posts and gallery items.
func (h *FrontendHandler) Home(w http.ResponseWriter, r *http.Request) {
	posts := h.publishedPosts(r, homePostLimit)
	gallery, err := h.store.ListGalleryItems(r.Context(), homeGalleryLimit)
	if err != nil {
		slog.Error("failed to list gallery items", "error", err)
	}

	renderPage(w, r, h.renderer, "public/home", render.TemplateData{
		Title:       "Professional Mobile Repair",
		CurrentPage: "home",
		Data: map[string]any{
			"Posts":   posts,
			"Gallery": gallery,
		},
	})
}

// Services lists the active services.
func (h *FrontendHandler) Services(w http.ResponseWriter, r *http.Request) {
	services, err := h.store.ListServices(r.Context(), model.ServiceStatusActive)
	if err != nil {
		slog.Error("failed to list services", "error", err)
	}

	renderPage(w, r, h.renderer, "public/services", render.TemplateData{
		Title:       "Our Services",
		CurrentPage: "services",
		Data:        map[string]any{"Services": services},
	})
}

// Posts lists published posts, newest first.
func (h *FrontendHandler) Posts(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, "public/posts", render.TemplateData{
		Title:       "Blog Posts",
		CurrentPage: "posts",
		Data:        map[string]any{"Posts": h.publishedPosts(r, 0)},
	})
}

// Post renders a single published post. Drafts are reported as not found.
func (h *FrontendHandler) Post(w http.ResponseWriter, r *http.Request) {
	post, err := h.store.GetPost(r.Context(), chi.URLParam(r, "id"))
	if err != nil || !post.IsPublished() {
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			slog.Error("failed to get post", "error", err, "post_id", chi.URLParam(r, "id"))
		}
		h.NotFound(w, r)
		return
	}

	renderPage(w, r, h.renderer, "public/post", render.TemplateData{
		Title:       post.Title,
		CurrentPage: "posts",
		Data:        map[string]any{"Post": post},
	})
}

// Gallery lists every gallery item.
func (h *FrontendHandler) Gallery(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListGalleryItems(r.Context(), 0)
	if err != nil {
		slog.Error("failed to list gallery items", "error", err)
	}

	renderPage(w, r, h.renderer, "public/gallery", render.TemplateData{
		Title:       "Gallery",
		CurrentPage: "gallery",
		Data: map[string]any{
			"Items":      items,
			"Categories": galleryCategories(items),
		},
	})
}

// YouTube lists every video.
func (h *FrontendHandler) YouTube(w http.ResponseWriter, r *http.Request) {
	videos, err := h.store.ListVideos(r.Context())
	if err != nil {
		slog.Error("failed to list videos", "error", err)
	}

	renderPage(w, r, h.renderer, "public/youtube", render.TemplateData{
		Title:       "YouTube Videos",
		CurrentPage: "youtube",
		Data:        map[string]any{"Videos": videos},
	})
}

// Contact renders the contact form.
func (h *FrontendHandler) Contact(w http.ResponseWriter, r *http.Request) {
	services, err := h.store.ListServices(r.Context(), model.ServiceStatusActive)
	if err != nil {
		slog.Error("failed to list services", "error", err)
	}

	renderPage(w, r, h.renderer, "public/contact", render.TemplateData{
		Title:       "Contact Us",
		CurrentPage: "contact",
		Data:        map[string]any{"Services": services},
	})
}

// NotFound renders the 404 page.
func (h *FrontendHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	renderPageStatus(w, r, h.renderer, http.StatusNotFound, "public/404", render.TemplateData{
		Title: "Page Not Found",
	})
}

// APIPosts returns the published posts as JSON.
func (h *FrontendHandler) APIPosts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.publishedPosts(r, 0))
}

// APIGallery returns every gallery item as JSON.
func (h *FrontendHandler) APIGallery(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListGalleryItems(r.Context(), 0)
	if err != nil {
		slog.Error("failed to list gallery items", "error", err)
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

// APIYouTube returns every video as JSON.
func (h *FrontendHandler) APIYouTube(w http.ResponseWriter, r *http.Request) {
	videos, err := h.store.ListVideos(r.Context())
	if err != nil {
		slog.Error("failed to list videos", "error", err)
	}
	writeJSON(w, http.StatusOK, nonNil(videos))
}

func (h *FrontendHandler) publishedPosts(r *http.Request, limit int) []model.Post {
	posts, err := h.store.ListPosts(r.Context(), store.PostFilter{Status: model.PostStatusPublished, Limit: limit})
	if err != nil {
		slog.Error("failed to list posts", "error", err)
	}
	return nonNil(posts)
}

// galleryCategories returns the distinct non-empty categories in first-seen order.
func galleryCategories(items []model.GalleryItem) []string {
	seen := make(map[string]bool)
	var out []string
	for _, it := range items {
		if it.Category == "" || seen[it.Category] {
			continue
		}
		seen[it.Category] = true
		out = append(out, it.Category)
	}
	return out
}

// nonNil makes JSON listings encode as [] instead of null.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
