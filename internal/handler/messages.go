// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/mobidoc/internal/contact"
	"github.com/olegiv/mobidoc/internal/logging"
	"github.com/olegiv/mobidoc/internal/model"
	"github.com/olegiv/mobidoc/internal/render"
	"github.com/olegiv/mobidoc/internal/store"
)

const (
	msgMessageNotFound = "Message not found"
	msgReplyFailed     = "Failed to send email"
	msgReplySent       = "Reply sent successfully"
)

// MessagesHandler handles the contact message inbox.
type MessagesHandler struct {
	messages store.MessageStore
	contact  *contact.Service
	events   store.EventStore
	renderer *render.Renderer
}

// NewMessagesHandler creates a new MessagesHandler.
func NewMessagesHandler(messages store.MessageStore, svc *contact.Service, events store.EventStore, renderer *render.Renderer) *MessagesHandler {
	return &MessagesHandler{messages: messages, contact: svc, events: events, renderer: renderer}
}

// List handles GET /admin/messages, newest first.
func (h *MessagesHandler) List(w http.ResponseWriter, r *http.Request) {
	messages, err := h.messages.ListMessages(r.Context(), 0)
	if err != nil {
		slog.Error("failed to list messages", "error", err)
		renderAdminError(w, r, h.renderer, http.StatusInternalServerError, "Failed to load messages")
		return
	}

	renderPage(w, r, h.renderer, "admin/messages", render.TemplateData{
		Title:       "Contact Messages",
		CurrentPage: "messages",
		Data:        map[string]any{"Messages": messages},
	})
}

// MarkRead handles POST /admin/messages/{id}/read.
func (h *MessagesHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.contact.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			flashError(w, r, h.renderer, redirectAdminMessages, msgMessageNotFound)
			return
		}
		slog.Error("failed to mark message read", "error", err)
		flashError(w, r, h.renderer, redirectAdminMessages, "Error updating message")
		return
	}
	http.Redirect(w, r, redirectAdminMessages, http.StatusSeeOther)
}

// MarkReadAPI handles POST /admin/messages/{id}/read-api for the inbox script.
func (h *MessagesHandler) MarkReadAPI(w http.ResponseWriter, r *http.Request) {
	if err := h.contact.MarkRead(r.Context(), chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, msgMessageNotFound)
			return
		}
		slog.Error("failed to mark message read", "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Failed to update message")
		return
	}
	writeJSONSuccess(w, nil)
}

// Delete handles POST /admin/messages/{id}/delete.
func (h *MessagesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleteWithRedirect(w, r, h.renderer, redirectAdminMessages, "message", chi.URLParam(r, "id"),
		func(id string) error { return h.contact.Delete(r.Context(), id) })
}

// SendEmailReply handles POST /admin/send-email-reply. Messages are only
// marked replied once the relay accepted the email.
func (h *MessagesHandler) SendEmailReply(w http.ResponseWriter, r *http.Request) {
	var reply contact.Reply
	if err := decodeJSON(w, r, &reply); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.contact.SendReply(r.Context(), reply)
	if err != nil {
		var verr *contact.ValidationError
		if errors.As(err, &verr) {
			writeJSONError(w, http.StatusBadRequest, verr.Message)
			return
		}
		if res == nil {
			slog.Error("failed to send reply", "error", err)
			writeJSONError(w, http.StatusInternalServerError, msgReplyFailed)
			return
		}
		// The email went out; only the status update failed.
		slog.Error("reply sent but status update failed", "error", err, "to", reply.To)
	}

	if !res.Send.Success {
		logging.Record(r.Context(), h.events, model.EventLevelError, model.EventCategoryMail,
			"Reply email failed", map[string]any{"to": reply.To, "error": res.Send.Error})
		writeJSONError(w, http.StatusBadGateway, msgReplyFailed+": "+res.Send.Error)
		return
	}

	logging.Record(r.Context(), h.events, model.EventLevelInfo, model.EventCategoryMail,
		"Reply email sent", map[string]any{"to": reply.To, "message_id": res.Send.MessageID, "marked": res.Marked})
	writeJSONSuccess(w, map[string]any{
		"message":   msgReplySent,
		"messageId": res.Send.MessageID,
		"marked":    res.Marked,
	})
}
