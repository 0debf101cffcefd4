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
)

const msgVideoRequiredFields = "Title and YouTube video ID are required"

// VideosHandler handles YouTube video management.
type VideosHandler struct {
	videos   store.VideoStore
	renderer *render.Renderer
}

// NewVideosHandler creates a new VideosHandler.
func NewVideosHandler(videos store.VideoStore, renderer *render.Renderer) *VideosHandler {
	return &VideosHandler{videos: videos, renderer: renderer}
}

// List handles GET /admin/videos.
func (h *VideosHandler) List(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, http.StatusOK, "")
}

// Create handles POST /admin/videos.
func (h *VideosHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminVideos) {
		return
	}

	video := model.Video{
		Title:       strings.TrimSpace(r.PostFormValue("title")),
		VideoID:     strings.TrimSpace(r.PostFormValue("video_id")),
		Category:    strings.TrimSpace(r.PostFormValue("category")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
	}
	if video.Title == "" || video.VideoID == "" {
		h.renderList(w, r, http.StatusBadRequest, msgVideoRequiredFields)
		return
	}
	if video.Category == "" {
		video.Category = model.DefaultVideoCategory
	}

	if err := h.videos.CreateVideo(r.Context(), &video); err != nil {
		slog.Error("failed to create video", "error", err)
		renderAdminError(w, r, h.renderer, http.StatusInternalServerError, "Failed to add video")
		return
	}

	slog.Info("video created", "video_id", video.ID, "youtube_id", video.VideoID)
	flashSuccess(w, r, h.renderer, redirectAdminVideos, "Video added successfully")
}

// Delete handles POST /admin/videos/{id}/delete.
func (h *VideosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleteWithRedirect(w, r, h.renderer, redirectAdminVideos, "video", chi.URLParam(r, "id"),
		func(id string) error { return h.videos.DeleteVideo(r.Context(), id) })
}

func (h *VideosHandler) renderList(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	videos, err := h.videos.ListVideos(r.Context())
	if err != nil {
		slog.Error("failed to list videos", "error", err)
		renderAdminError(w, r, h.renderer, http.StatusInternalServerError, "Failed to load videos")
		return
	}

	renderPageStatus(w, r, h.renderer, status, "admin/videos", render.TemplateData{
		Title:       "Manage Videos",
		CurrentPage: "videos",
		Error:       errMsg,
		Data:        map[string]any{"Videos": videos},
	})
}
