// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/mobidoc/internal/contact"
)

// Contact form responses.
const (
	msgContactThanks    = "Thank you for your message! We will get back to you soon."
	msgContactMailDelay = " Our confirmation email may be delayed."
	msgContactLegacyOK  = "Message sent successfully! Check your email for confirmation."
	msgContactFailed    = "An error occurred while processing your request. Please try again."
	msgContactBadBody   = "Invalid request body"
)

// ContactHandler accepts contact form submissions.
type ContactHandler struct {
	contact *contact.Service
}

// NewContactHandler creates a new ContactHandler.
func NewContactHandler(svc *contact.Service) *ContactHandler {
	return &ContactHandler{contact: svc}
}

// contactResponse is the envelope returned to the contact form script.
type contactResponse struct {
	Success   bool         `json:"success"`
	Message   string       `json:"message"`
	Data      *contactData `json:"data,omitempty"`
	EmailSent *bool        `json:"emailSent,omitempty"`
}

type contactData struct {
	CustomerEmail bool `json:"customerEmail"`
	AdminEmail    bool `json:"adminEmail"`
}

// Submit handles POST /contact/submit with a JSON or form-encoded body.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var form contact.Form
	if isJSONRequest(r) {
		if err := decodeJSON(w, r, &form); err != nil {
			writeJSON(w, http.StatusBadRequest, contactResponse{Message: msgContactBadBody})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, contactResponse{Message: msgContactBadBody})
			return
		}
		form = contact.Form{
			FirstName:  r.PostFormValue("firstName"),
			LastName:   r.PostFormValue("lastName"),
			Email:      r.PostFormValue("email"),
			Phone:      r.PostFormValue("phone"),
			Service:    r.PostFormValue("service"),
			DeviceType: r.PostFormValue("deviceType"),
			Message:    r.PostFormValue("message"),
		}
	}

	res, ok := h.submit(w, r, form)
	if !ok {
		return
	}

	message := msgContactThanks
	if !res.Mail.Success {
		message += msgContactMailDelay
	}
	writeJSON(w, http.StatusOK, contactResponse{
		Success: true,
		Message: message,
		Data: &contactData{
			CustomerEmail: res.Mail.CustomerEmail.Success,
			AdminEmail:    res.Mail.AdminEmail.Success,
		},
	})
}

// Legacy handles POST /contact from older cached pages that post snake_case fields.
func (h *ContactHandler) Legacy(w http.ResponseWriter, r *http.Request) {
	var legacy contact.LegacyForm
	if isJSONRequest(r) {
		if err := decodeJSON(w, r, &legacy); err != nil {
			writeJSON(w, http.StatusBadRequest, contactResponse{Message: msgContactBadBody})
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeJSON(w, http.StatusBadRequest, contactResponse{Message: msgContactBadBody})
			return
		}
		legacy = contact.LegacyForm{
			FirstName:     r.PostFormValue("first_name"),
			LastName:      r.PostFormValue("last_name"),
			Email:         r.PostFormValue("email"),
			Phone:         r.PostFormValue("phone"),
			DeviceType:    r.PostFormValue("device_type"),
			ServiceNeeded: r.PostFormValue("service_needed"),
			Message:       r.PostFormValue("message"),
		}
	}

	res, ok := h.submit(w, r, legacy.Form())
	if !ok {
		return
	}
	sent := res.Mail.Success
	writeJSON(w, http.StatusOK, contactResponse{
		Success:   true,
		Message:   msgContactLegacyOK,
		EmailSent: &sent,
	})
}

// submit runs the intake and writes the error envelope on failure.
func (h *ContactHandler) submit(w http.ResponseWriter, r *http.Request, form contact.Form) (*contact.SubmitResult, bool) {
	res, err := h.contact.Submit(r.Context(), form, r.UserAgent())
	if err != nil {
		var verr *contact.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, contactResponse{Message: verr.Message})
			return nil, false
		}
		slog.Error("contact form error", "error", err)
		writeJSON(w, http.StatusInternalServerError, contactResponse{Message: msgContactFailed})
		return nil, false
	}
	return res, true
}
