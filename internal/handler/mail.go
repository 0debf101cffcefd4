// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/olegiv/mobidoc/internal/logging"
	"github.com/olegiv/mobidoc/internal/model"
	"github.com/olegiv/mobidoc/internal/store"
)

const mailVerifyTimeout = 15 * time.Second

// MailVerifier checks that the configured mail transport accepts connections.
type MailVerifier interface {
	Verify(ctx context.Context) error
}

// MailHandler exposes mail diagnostics to admins.
type MailHandler struct {
	mailer MailVerifier
	events store.EventStore
}

// NewMailHandler creates a new MailHandler.
func NewMailHandler(mailer MailVerifier, events store.EventStore) *MailHandler {
	return &MailHandler{mailer: mailer, events: events}
}

// TestEmail handles GET /admin/test-email.
func (h *MailHandler) TestEmail(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), mailVerifyTimeout)
	defer cancel()

	if err := h.mailer.Verify(ctx); err != nil {
		logging.Record(r.Context(), h.events, model.EventLevelError, model.EventCategoryMail,
			"Mail configuration check failed", map[string]any{"error": err.Error()})
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSONSuccess(w, map[string]any{"message": "Email configuration is valid"})
}
