// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package mailer

import (
	"context"
	"errors"
	"fmt"
	netmail "net/mail"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

// MailgunConfig holds Mailgun HTTP API settings.
type MailgunConfig struct {
	Domain  string
	APIKey  string
	EU      bool // use the EU region endpoint
	Timeout time.Duration
}

// MailgunTransport sends mail through the Mailgun HTTP API.
type MailgunTransport struct {
	mg      *mailgun.MailgunImpl
	timeout time.Duration
}

// NewMailgunTransport returns a transport for the given domain.
func NewMailgunTransport(cfg MailgunConfig) (*MailgunTransport, error) {
	if cfg.Domain == "" || cfg.APIKey == "" {
		return nil, errors.New("mailgun domain and api key are required")
	}
	mg := mailgun.NewMailgun(cfg.Domain, cfg.APIKey)
	if cfg.EU {
		mg.SetAPIBase(mailgun.APIBaseEU)
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &MailgunTransport{mg: mg, timeout: timeout}, nil
}

// Send implements Transport.
func (t *MailgunTransport) Send(ctx context.Context, e Email) (string, error) {
	from := (&netmail.Address{Name: e.FromName, Address: e.From}).String()
	msg := mailgun.NewMessage(from, e.Subject, e.Text, e.To)
	if e.HTML != "" {
		msg.SetHTML(e.HTML)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	_, id, err := t.mg.Send(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("sending via mailgun: %w", err)
	}
	return id, nil
}

// Verify implements Transport by fetching the sending domain.
func (t *MailgunTransport) Verify(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	if _, err := t.mg.GetDomain(ctx, t.mg.Domain()); err != nil {
		return fmt.Errorf("checking mailgun domain: %w", err)
	}
	return nil
}

var _ Transport = (*MailgunTransport)(nil)
