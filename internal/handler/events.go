// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/olegiv/mobidoc/internal/logging"
	"github.com/olegiv/mobidoc/internal/model"
	"github.com/olegiv/mobidoc/internal/render"
	"github.com/olegiv/mobidoc/internal/store"
)

// EventsHandler shows and trims the operational event log.
type EventsHandler struct {
	events    store.EventStore
	renderer  *render.Renderer
	retention time.Duration
	now       func() time.Time
}

// NewEventsHandler creates a new EventsHandler. Purge removes events older
// than retention; zero disables it.
func NewEventsHandler(events store.EventStore, renderer *render.Renderer, retention time.Duration) *EventsHandler {
	return &EventsHandler{events: events, renderer: renderer, retention: retention, now: time.Now}
}

// List handles GET /admin/events.
func (h *EventsHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListEvents(r.Context(), eventsPageLimit)
	if err != nil {
		slog.Error("failed to list events", "error", err)
		renderAdminError(w, r, h.renderer, http.StatusInternalServerError, "Failed to load events")
		return
	}

	renderPage(w, r, h.renderer, "admin/events", render.TemplateData{
		Title:       "Event Log",
		CurrentPage: "events",
		Data: map[string]any{
			"Events":        events,
			"RetentionDays": int(h.retention / (24 * time.Hour)),
		},
	})
}

// Purge handles POST /admin/events/purge.
func (h *EventsHandler) Purge(w http.ResponseWriter, r *http.Request) {
	if h.retention <= 0 {
		flashError(w, r, h.renderer, redirectAdminEvents, "Event retention is disabled")
		return
	}

	cutoff := h.now().Add(-h.retention)
	n, err := h.events.PurgeEventsBefore(r.Context(), cutoff)
	if err != nil {
		slog.Error("failed to purge events", "error", err)
		flashError(w, r, h.renderer, redirectAdminEvents, "Failed to purge events")
		return
	}

	if n > 0 {
		logging.Record(r.Context(), h.events, model.EventLevelInfo, model.EventCategorySystem,
			"Old events purged", map[string]any{"count": n, "before": cutoff.Format(time.RFC3339), "by": actor(r)})
	}
	flashSuccess(w, r, h.renderer, redirectAdminEvents, "Purged "+strconv.FormatInt(n, 10)+" old events")
}
