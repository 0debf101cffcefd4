// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package mailer formats and dispatches the site's transactional email:
// the contact-form auto-reply, the admin notification and direct replies.
package mailer

import (
	"context"
	"log/slog"
	"time"

	g "github.com/maragudk/gomponents"
)

// Sender display names.
const (
	FromNameShop    = "Mobile Doctor"
	FromNameWebsite = "Mobile Doctor Website"
)

// SendResult is the outcome of a single send. Relay errors are reported here
// instead of being returned.
type SendResult struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ContactResult is the outcome of the two contact-form emails.
type ContactResult struct {
	CustomerEmail SendResult `json:"customerEmail"`
	AdminEmail    SendResult `json:"adminEmail"`
	Success       bool       `json:"success"`
}

// Config holds addressing settings.
type Config struct {
	From       string // envelope sender address
	AdminEmail string // recipient of inquiry notifications
}

// Mailer builds emails and hands them to a Transport.
type Mailer struct {
	transport Transport
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time
}

// New creates a Mailer.
func New(t Transport, cfg Config, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{transport: t, cfg: cfg, logger: logger, now: time.Now}
}

// SendContactEmails sends the customer auto-reply and then the admin
// notification. Success is true only when both were accepted by the relay.
func (m *Mailer) SendContactEmails(ctx context.Context, in Inquiry) ContactResult {
	if in.ReceivedAt.IsZero() {
		in.ReceivedAt = m.now()
	}

	customer := m.sendTemplate(ctx, "customer auto-reply", Email{
		FromName: FromNameShop,
		From:     m.cfg.From,
		To:       in.Email,
		Subject:  CustomerSubject,
		Text:     customerText(in),
	}, customerBody(in, in.ReceivedAt.Year()))

	admin := m.sendTemplate(ctx, "admin notification", Email{
		FromName: FromNameWebsite,
		From:     m.cfg.From,
		To:       m.cfg.AdminEmail,
		Subject:  AdminSubject,
		Text:     adminText(in),
	}, adminBody(in))

	return ContactResult{
		CustomerEmail: customer,
		AdminEmail:    admin,
		Success:       customer.Success && admin.Success,
	}
}

// SendDirect sends a plain reply. The HTML part is the text with newlines as <br>.
func (m *Mailer) SendDirect(ctx context.Context, to, subject, text string) SendResult {
	return m.sendTemplate(ctx, "direct email", Email{
		FromName: FromNameShop,
		From:     m.cfg.From,
		To:       to,
		Subject:  subject,
		Text:     text,
	}, multiline(text))
}

// Verify checks the relay connection.
func (m *Mailer) Verify(ctx context.Context) error {
	return m.transport.Verify(ctx)
}

func (m *Mailer) sendTemplate(ctx context.Context, kind string, e Email, body g.Node) SendResult {
	html, err := render(body)
	if err != nil {
		m.logger.Error("failed to render email", "kind", kind, "error", err)
		return SendResult{Error: err.Error()}
	}
	e.HTML = html
	return m.send(ctx, kind, e)
}

func (m *Mailer) send(ctx context.Context, kind string, e Email) SendResult {
	if e.To == "" {
		m.logger.Warn("email not sent: no recipient", "kind", kind, "category", "mail")
		return SendResult{Error: "no recipient address"}
	}
	id, err := m.transport.Send(ctx, e)
	if err != nil {
		m.logger.Error("failed to send email", "kind", kind, "to", e.To, "error", err, "category", "mail")
		return SendResult{Error: err.Error()}
	}
	m.logger.Info("email sent", "kind", kind, "to", e.To, "message_id", id)
	return SendResult{Success: true, MessageID: id}
}
