// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/mobidoc/internal/version"
)

const healthPingTimeout = 2 * time.Second

// Pinger reports whether a backing service is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports process and database health.
type HealthHandler struct {
	db      Pinger
	version version.Info
	started time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, info version.Info) *HealthHandler {
	return &HealthHandler{db: db, version: info.WithDefaults(), started: time.Now()}
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status   string       `json:"status"`
	Database string       `json:"database"`
	Uptime   string       `json:"uptime"`
	Version  version.Info `json:"version"`
}

// Health handles GET /health. A failed database ping yields 503.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
	defer cancel()

	resp := HealthResponse{
		Status:   "healthy",
		Database: "ok",
		Uptime:   time.Since(h.started).Round(time.Second).String(),
		Version:  h.version,
	}
	status := http.StatusOK
	if err := h.db.Ping(ctx); err != nil {
		slog.Warn("health check database ping failed", "error", err)
		resp.Status = "degraded"
		resp.Database = "unreachable"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
