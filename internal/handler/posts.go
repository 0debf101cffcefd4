// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/mobidoc/internal/middleware"
	"github.com/olegiv/mobidoc/internal/model"
	"github.com/olegiv/mobidoc/internal/render"
	"github.com/olegiv/mobidoc/internal/store"
	"github.com/olegiv/mobidoc/internal/upload"
)

const msgPostTitleRequired = "Title is required"

// PostsHandler handles blog post management.
type PostsHandler struct {
	posts    store.PostStore
	uploader *upload.Uploader
	renderer *render.Renderer
}

// NewPostsHandler creates a new PostsHandler.
func NewPostsHandler(posts store.PostStore, uploader *upload.Uploader, renderer *render.Renderer) *PostsHandler {
	return &PostsHandler{posts: posts, uploader: uploader, renderer: renderer}
}

// List handles GET /admin/posts.
func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.posts.ListPosts(r.Context(), store.PostFilter{})
	if err != nil {
		slog.Error("failed to list posts", "error", err)
		renderAdminError(w, r, h.renderer, http.StatusInternalServerError, "Failed to load posts")
		return
	}

	renderPage(w, r, h.renderer, "admin/posts", render.TemplateData{
		Title:       "Manage Posts",
		CurrentPage: "posts",
		Data:        map[string]any{"Posts": posts},
	})
}

// NewForm handles GET /admin/posts/new.
func (h *PostsHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	post := model.Post{Status: model.PostStatusDraft}
	if id := middleware.GetIdentity(r); id != nil {
		post.Author = id.Username
	}
	h.renderForm(w, r, http.StatusOK, post, true, "")
}

// Create handles POST /admin/posts.
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	if err := parseUploadForm(w, r); err != nil {
		h.formError(w, r, model.Post{}, true, err)
		return
	}

	post := postFromForm(r)
	if post.Title == "" {
		h.renderForm(w, r, http.StatusBadRequest, post, true, msgPostTitleRequired)
		return
	}
	if post.Author == "" {
		if id := middleware.GetIdentity(r); id != nil {
			post.Author = id.Username
		}
	}

	img, err := h.uploader.Resolve(r.Context(), r, fieldImage, fieldImageURL, false)
	if err != nil {
		h.formError(w, r, post, true, err)
		return
	}
	post.Image = img

	if err := h.posts.CreatePost(r.Context(), &post); err != nil {
		h.uploader.Remove(r.Context(), img)
		slog.Error("failed to create post", "error", err)
		renderAdminError(w, r, h.renderer, http.StatusInternalServerError, "Failed to create post")
		return
	}

	slog.Info("post created", "post_id", post.ID, "status", post.Status)
	flashSuccess(w, r, h.renderer, redirectAdminPosts, "Post created successfully")
}

// EditForm handles GET /admin/posts/{id}.
func (h *PostsHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	post, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPosts, "post", chi.URLParam(r, "id"),
		func(id string) (model.Post, error) { return h.posts.GetPost(r.Context(), id) })
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, post, false, "")
}

// Update handles POST /admin/posts/{id}. A new upload or URL replaces the
// current image; remove_image clears it.
func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPosts, "post", chi.URLParam(r, "id"),
		func(id string) (model.Post, error) { return h.posts.GetPost(r.Context(), id) })
	if !ok {
		return
	}

	if err := parseUploadForm(w, r); err != nil {
		h.formError(w, r, existing, false, err)
		return
	}

	post := postFromForm(r)
	post.ID = existing.ID
	post.CreatedAt = existing.CreatedAt
	post.Image = existing.Image
	if post.Title == "" {
		h.renderForm(w, r, http.StatusBadRequest, post, false, msgPostTitleRequired)
		return
	}

	img, err := h.uploader.Resolve(r.Context(), r, fieldImage, fieldImageURL, false)
	if err != nil {
		h.formError(w, r, post, false, err)
		return
	}

	var replaced model.ImageSource
	switch {
	case !img.IsZero():
		replaced, post.Image = existing.Image, img
	case r.PostFormValue(fieldRemoveImage) != "":
		replaced, post.Image = existing.Image, model.ImageSource{}
	}

	if err := h.posts.UpdatePost(r.Context(), &post); err != nil {
		h.uploader.Remove(r.Context(), img)
		slog.Error("failed to update post", "error", err, "post_id", post.ID)
		renderAdminError(w, r, h.renderer, http.StatusInternalServerError, "Failed to update post")
		return
	}
	h.uploader.Remove(r.Context(), replaced)

	slog.Info("post updated", "post_id", post.ID, "status", post.Status)
	flashSuccess(w, r, h.renderer, redirectAdminPosts, "Post updated successfully")
}

// Delete handles POST /admin/posts/{id}/delete.
func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	post, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminPosts, "post", chi.URLParam(r, "id"),
		func(id string) (model.Post, error) { return h.posts.GetPost(r.Context(), id) })
	if !ok {
		return
	}
	if deleteWithRedirect(w, r, h.renderer, redirectAdminPosts, "post", post.ID,
		func(id string) error { return h.posts.DeletePost(r.Context(), id) }) {
		h.uploader.Remove(r.Context(), post.Image)
		slog.Info("post deleted", "post_id", post.ID)
	}
}

func postFromForm(r *http.Request) model.Post {
	return model.Post{
		Title:   strings.TrimSpace(r.PostFormValue("title")),
		Content: r.PostFormValue("content"),
		Author:  strings.TrimSpace(r.PostFormValue("author")),
		Status:  model.NormalizePostStatus(r.PostFormValue("status")),
	}
}

func (h *PostsHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, post model.Post, isNew bool, errMsg string) {
	title := "Edit Post"
	if isNew {
		title = "Add New Post"
	}
	renderPageStatus(w, r, h.renderer, status, "admin/post_form", render.TemplateData{
		Title:       title,
		CurrentPage: "posts",
		Error:       errMsg,
		Data: map[string]any{
			"Post":  post,
			"IsNew": isNew,
		},
	})
}

// formError re-renders the form for editor mistakes and shows the error page otherwise.
func (h *PostsHandler) formError(w http.ResponseWriter, r *http.Request, post model.Post, isNew bool, err error) {
	if msg, ok := uploadErrorMessage(err); ok {
		h.renderForm(w, r, http.StatusBadRequest, post, isNew, msg)
		return
	}
	slog.Error("failed to read post form", "error", err)
	renderAdminError(w, r, h.renderer, http.StatusBadRequest, "Invalid form data")
}
