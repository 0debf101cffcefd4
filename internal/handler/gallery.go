// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/mobidoc/internal/model"
	"github.com/olegiv/mobidoc/internal/render"
	"github.com/olegiv/mobidoc/internal/store"
	"github.com/olegiv/mobidoc/internal/upload"
)

const msgGalleryTitleRequired = "Title is required"

// GalleryHandler handles gallery management.
type GalleryHandler struct {
	gallery  store.GalleryStore
	uploader *upload.Uploader
	renderer *render.Renderer
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(gallery store.GalleryStore, uploader *upload.Uploader, renderer *render.Renderer) *GalleryHandler {
	return &GalleryHandler{gallery: gallery, uploader: uploader, renderer: renderer}
}

// List handles GET /admin/gallery.
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, http.StatusOK, "")
}

// Create handles POST /admin/gallery. Every item needs an image, either
// uploaded or linked.
func (h *GalleryHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := parseUploadForm(w, r); err != nil {
		h.formError(w, r, err)
		return
	}

	item := model.GalleryItem{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		Category:    strings.TrimSpace(r.PostFormValue("category")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	}
	if item.Title == "" {
		h.renderList(w, r, http.StatusBadRequest, msgGalleryTitleRequired)
		return
	}

	img, err := h.uploader.Resolve(r.Context(), r, fieldImage, fieldImageURL, true)
	if err != nil {
		h.formError(w, r, err)
		return
	}
	item.Image = img

	if err := h.gallery.CreateGalleryItem(r.Context(), &item); err != nil {
		h.uploader.Remove(r.Context(), img)
		slog.Error("failed to create gallery item", "error", err)
		renderAdminError(w, r, h.renderer, http.StatusInternalServerError, "Failed to add gallery item")
		return
	}

	slog.Info("gallery item created", "item_id", item.ID, "kind", item.Image.Kind())
	flashSuccess(w, r, h.renderer, redirectAdminGallery, "Gallery item added successfully")
}

// Delete handles POST /admin/gallery/{id}/delete and removes an uploaded
// image along with the item.
func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	item, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminGallery, "gallery item", chi.URLParam(r, "id"),
		func(id string) (model.GalleryItem, error) { return h.gallery.GetGalleryItem(r.Context(), id) })
	if !ok {
		return
	}
	if deleteWithRedirect(w, r, h.renderer, redirectAdminGallery, "gallery item", item.ID,
		func(id string) error { return h.gallery.DeleteGalleryItem(r.Context(), id) }) {
		h.uploader.Remove(r.Context(), item.Image)
		slog.Info("gallery item deleted", "item_id", item.ID)
	}
}

func (h *GalleryHandler) renderList(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	items, err := h.gallery.ListGalleryItems(r.Context(), 0)
	if err != nil {
		slog.Error("failed to list gallery items", "error", err)
		renderAdminError(w, r, h.renderer, http.StatusInternalServerError, "Failed to load gallery")
		return
	}

	renderPageStatus(w, r, h.renderer, status, "admin/gallery", render.TemplateData{
		Title:       "Manage Gallery",
		CurrentPage: "gallery",
		Error:       errMsg,
		Data:        map[string]any{"Items": items},
	})
}

func (h *GalleryHandler) formError(w http.ResponseWriter, r *http.Request, err error) {
	if msg, ok := uploadErrorMessage(err); ok {
		h.renderList(w, r, http.StatusBadRequest, msg)
		return
	}
	slog.Error("failed to read gallery form", "error", err)
	renderAdminError(w, r, h.renderer, http.StatusBadRequest, "Invalid form data")
}
