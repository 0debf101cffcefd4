// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/mobidoc/internal/model"
	"github.com/olegiv/mobidoc/internal/seo"
	"github.com/olegiv/mobidoc/internal/store"
)

// SEOHandler serves sitemap.xml and robots.txt.
type SEOHandler struct {
	posts       store.PostStore
	siteURL     string
	disallowAll bool
}

// NewSEOHandler creates a new SEOHandler. An empty siteURL is derived from
// each request; disallowAll hides the whole site from crawlers.
func NewSEOHandler(posts store.PostStore, siteURL string, disallowAll bool) *SEOHandler {
	return &SEOHandler{posts: posts, siteURL: siteURL, disallowAll: disallowAll}
}

// Sitemap lists the public pages and every published post.
func (h *SEOHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPosts(r.Context(), store.PostFilter{Status: model.PostStatusPublished})
	if err != nil {
		logAndInternalError(w, "failed to list posts for sitemap", "error", err)
		return
	}

	entries := make([]seo.SitemapPost, 0, len(posts))
	for _, p := range posts {
		entries = append(entries, seo.SitemapPost{ID: p.ID, UpdatedAt: p.UpdatedAt})
	}

	data, err := seo.GenerateSitemap(h.baseURL(r), entries)
	if err != nil {
		logAndInternalError(w, "failed to build sitemap", "error", err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if _, err := w.Write(data); err != nil {
		slog.Debug("sitemap write failed", "error", err)
	}
}

// Robots serves robots.txt.
func (h *SEOHandler) Robots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	_, _ = w.Write([]byte(seo.GenerateRobots(h.baseURL(r), h.disallowAll)))
}

func (h *SEOHandler) baseURL(r *http.Request) string {
	if h.siteURL != "" {
		return h.siteURL
	}
	scheme := "http"
	if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
