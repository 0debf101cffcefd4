// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/olegiv/mobidoc/internal/auth"
	"github.com/olegiv/mobidoc/internal/logging"
	"github.com/olegiv/mobidoc/internal/middleware"
	"github.com/olegiv/mobidoc/internal/model"
	"github.com/olegiv/mobidoc/internal/render"
	"github.com/olegiv/mobidoc/internal/store"
)

// userForm is the add-user form. Tags name the form fields so validation
// errors map straight onto the template.
type userForm struct {
	Username string `form:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `form:"email" validate:"required,email,max=254"`
	Password string `form:"password" validate:"required,min=8,max=128"`
	Role     string `form:"role" validate:"required,oneof=admin editor"`
}

// UsersHandler handles admin account management.
type UsersHandler struct {
	users    store.UserStore
	events   store.EventStore
	renderer *render.Renderer
	validate *validator.Validate
}

// NewUsersHandler creates a new UsersHandler.
func NewUsersHandler(users store.UserStore, events store.EventStore, renderer *render.Renderer) *UsersHandler {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("form")
	})
	return &UsersHandler{users: users, events: events, renderer: renderer, validate: v}
}

// List handles GET /admin/users.
func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	h.renderList(w, r, http.StatusOK, userForm{Role: model.RoleEditor}, nil)
}

// Create handles POST /admin/users.
func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminUsers) {
		return
	}

	form := userForm{
		Username: strings.TrimSpace(r.PostFormValue("username")),
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Role:     r.PostFormValue("role"),
	}
	if errs := h.validateForm(form); len(errs) > 0 {
		form.Password = ""
		h.renderList(w, r, http.StatusBadRequest, form, errs)
		return
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		logAndInternalError(w, "failed to hash password", "error", err)
		return
	}

	user := model.User{
		Username:     form.Username,
		Email:        form.Email,
		PasswordHash: hash,
		Role:         form.Role,
	}
	if err := h.users.CreateUser(r.Context(), &user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			form.Password = ""
			h.renderList(w, r, http.StatusConflict, form, map[string]string{
				"username": "Username or email already exists",
			})
			return
		}
		slog.Error("failed to create user", "error", err)
		renderAdminError(w, r, h.renderer, http.StatusInternalServerError, "Failed to create user")
		return
	}

	slog.Info("user created", "user_id", user.ID, "username", user.Username, "role", user.Role)
	logging.Record(r.Context(), h.events, model.EventLevelInfo, model.EventCategoryUser,
		"User created", map[string]any{"username": user.Username, "role": user.Role, "by": actor(r)})
	flashSuccess(w, r, h.renderer, redirectAdminUsers, "User created successfully")
}

// Delete handles POST /admin/users/{id}/delete. Admins cannot delete
// their own account.
func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if current := middleware.GetIdentity(r); current != nil && current.ID == id {
		flashError(w, r, h.renderer, redirectAdminUsers, "You cannot delete your own account")
		return
	}

	user, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminUsers, "user", id,
		func(id string) (model.User, error) { return h.users.GetUserByID(r.Context(), id) })
	if !ok {
		return
	}
	if deleteWithRedirect(w, r, h.renderer, redirectAdminUsers, "user", user.ID,
		func(id string) error { return h.users.DeleteUser(r.Context(), id) }) {
		slog.Info("user deleted", "user_id", user.ID, "username", user.Username)
		logging.Record(r.Context(), h.events, model.EventLevelInfo, model.EventCategoryUser,
			"User deleted", map[string]any{"username": user.Username, "by": actor(r)})
	}
}

// validateForm returns one message per invalid field, keyed by field name.
func (h *UsersHandler) validateForm(form userForm) map[string]string {
	err := h.validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"username": "Invalid form data"}
	}
	errs := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		errs[fe.Field()] = fieldErrorMessage(fe)
	}
	return errs
}

func fieldErrorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return "Must be at least " + fe.Param() + " characters"
	case "max":
		return "Must be at most " + fe.Param() + " characters"
	case "alphanum":
		return "Only letters and digits are allowed"
	case "email":
		return "Please enter a valid email address"
	case "oneof":
		return "Must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "Invalid value"
	}
}

func (h *UsersHandler) renderList(w http.ResponseWriter, r *http.Request, status int, form userForm, errs map[string]string) {
	users, err := h.users.ListUsers(r.Context())
	if err != nil {
		slog.Error("failed to list users", "error", err)
		renderAdminError(w, r, h.renderer, http.StatusInternalServerError, "Failed to load users")
		return
	}

	renderPageStatus(w, r, h.renderer, status, "admin/users", render.TemplateData{
		Title:       "Manage Users",
		CurrentPage: "users",
		Data: map[string]any{
			"Users":  users,
			"Form":   form,
			"Errors": errs,
		},
	})
}

// actor names the signed-in user for event metadata.
func actor(r *http.Request) string {
	if id := middleware.GetIdentity(r); id != nil {
		return id.Username
	}
	return ""
}
