// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/mobidoc/internal/model"
	"github.com/olegiv/mobidoc/internal/render"
	"github.com/olegiv/mobidoc/internal/store"
)

const (
	msgServiceNameRequired = "Service name is required"
	msgServiceInvalidPrice = "Price must be a positive number"
)

// ServicesHandler handles management of the services offered by the shop.
type ServicesHandler struct {
	services store.ServiceStore
	renderer *render.Renderer
}

// NewServicesHandler creates a new ServicesHandler.
func NewServicesHandler(services store.ServiceStore, renderer *render.Renderer) *ServicesHandler {
	return &ServicesHandler{services: services, renderer: renderer}
}

// List handles GET /admin/services.
func (h *ServicesHandler) List(w http.ResponseWriter, r *http.Request) {
	services, err := h.services.ListServices(r.Context(), "")
	if err != nil {
		slog.Error("failed to list services", "error", err)
		renderAdminError(w, r, h.renderer, http.StatusInternalServerError, "Failed to load services")
		return
	}

	renderPage(w, r, h.renderer, "admin/services", render.TemplateData{
		Title:       "Manage Services",
		CurrentPage: "services",
		Data:        map[string]any{"Services": services},
	})
}

// NewForm handles GET /admin/services/new.
func (h *ServicesHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderForm(w, r, http.StatusOK, model.Service{Status: model.ServiceStatusActive}, true, "")
}

// Create handles POST /admin/services. New services start active.
func (h *ServicesHandler) Create(w http.ResponseWriter, r *http.Request) {
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminServices) {
		return
	}

	svc, errMsg := serviceFromForm(r)
	svc.Status = model.ServiceStatusActive
	if errMsg != "" {
		h.renderForm(w, r, http.StatusBadRequest, svc, true, errMsg)
		return
	}

	if err := h.services.CreateService(r.Context(), &svc); err != nil {
		slog.Error("failed to create service", "error", err)
		renderAdminError(w, r, h.renderer, http.StatusInternalServerError, "Failed to create service")
		return
	}

	slog.Info("service created", "service_id", svc.ID, "name", svc.Name)
	flashSuccess(w, r, h.renderer, redirectAdminServices, "Service created successfully")
}

// EditForm handles GET /admin/services/{id}.
func (h *ServicesHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	svc, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminServices, "service", chi.URLParam(r, "id"),
		func(id string) (model.Service, error) { return h.services.GetService(r.Context(), id) })
	if !ok {
		return
	}
	h.renderForm(w, r, http.StatusOK, svc, false, "")
}

// Update handles POST /admin/services/{id}.
func (h *ServicesHandler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := requireEntityWithRedirect(w, r, h.renderer, redirectAdminServices, "service", chi.URLParam(r, "id"),
		func(id string) (model.Service, error) { return h.services.GetService(r.Context(), id) })
	if !ok {
		return
	}
	if !parseFormOrRedirect(w, r, h.renderer, redirectAdminServices) {
		return
	}

	svc, errMsg := serviceFromForm(r)
	svc.ID = existing.ID
	svc.CreatedAt = existing.CreatedAt
	svc.Status = model.NormalizeServiceStatus(r.PostFormValue("status"))
	if errMsg != "" {
		h.renderForm(w, r, http.StatusBadRequest, svc, false, errMsg)
		return
	}

	if err := h.services.UpdateService(r.Context(), &svc); err != nil {
		slog.Error("failed to update service", "error", err, "service_id", svc.ID)
		renderAdminError(w, r, h.renderer, http.StatusInternalServerError, "Failed to update service")
		return
	}

	slog.Info("service updated", "service_id", svc.ID, "status", svc.Status)
	flashSuccess(w, r, h.renderer, redirectAdminServices, "Service updated successfully")
}

// Delete handles POST /admin/services/{id}/delete.
func (h *ServicesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleteWithRedirect(w, r, h.renderer, redirectAdminServices, "service", chi.URLParam(r, "id"),
		func(id string) error { return h.services.DeleteService(r.Context(), id) })
}

// serviceFromForm reads the editable service fields. An empty price means
// "on request" and is stored as zero.
func serviceFromForm(r *http.Request) (model.Service, string) {
	svc := model.Service{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Description: strings.TrimSpace(r.PostFormValue("description")),
		Icon:        strings.TrimSpace(r.PostFormValue("icon")),
	}
	if svc.Name == "" {
		return svc, msgServiceNameRequired
	}
	if raw := strings.TrimSpace(r.PostFormValue("price")); raw != "" {
		price, err := strconv.ParseFloat(raw, 64)
		if err != nil || price < 0 || math.IsNaN(price) || math.IsInf(price, 0) {
			return svc, msgServiceInvalidPrice
		}
		svc.Price = price
	}
	return svc, ""
}

func (h *ServicesHandler) renderForm(w http.ResponseWriter, r *http.Request, status int, svc model.Service, isNew bool, errMsg string) {
	title := "Edit Service"
	if isNew {
		title = "Add New Service"
	}
	renderPageStatus(w, r, h.renderer, status, "admin/service_form", render.TemplateData{
		Title:       title,
		CurrentPage: "services",
		Error:       errMsg,
		Data: map[string]any{
			"Service": svc,
			"IsNew":   isNew,
		},
	})
}
