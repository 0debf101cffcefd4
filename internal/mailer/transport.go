// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package mailer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"
)

// Email is a single outbound message handed to a Transport.
type Email struct {
	FromName string
	From     string
	To       string
	Subject  string
	Text     string
	HTML     string
}

// Transport delivers email through a relay.
type Transport interface {
	// Send delivers the email and returns the relay's message id.
	Send(ctx context.Context, e Email) (string, error)
	// Verify checks that the relay accepts a connection with the configured credentials.
	Verify(ctx context.Context) error
}

// SMTPConfig holds SMTP relay settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Secure   bool // implicit TLS (port 465 style)
	Username string
	Password string
	Timeout  time.Duration
}

// SMTPTransport sends mail over SMTP with PLAIN auth.
// A fresh client is created per call so concurrent requests never share a connection.
type SMTPTransport struct {
	cfg SMTPConfig
}

// NewSMTPTransport validates cfg and returns a transport.
func NewSMTPTransport(cfg SMTPConfig) (*SMTPTransport, error) {
	if cfg.Host == "" {
		return nil, errors.New("smtp host is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	t := &SMTPTransport{cfg: cfg}
	if _, err := t.client(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *SMTPTransport) client() (*mail.Client, error) {
	opts := []mail.Option{
		mail.WithPort(t.cfg.Port),
		mail.WithTimeout(t.cfg.Timeout),
	}
	if t.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.cfg.Username),
			mail.WithPassword(t.cfg.Password),
		)
	}
	if t.cfg.Secure {
		opts = append(opts, mail.WithSSL())
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	c, err := mail.NewClient(t.cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}
	return c, nil
}

// Send implements Transport.
func (t *SMTPTransport) Send(ctx context.Context, e Email) (string, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(e.FromName, e.From); err != nil {
		return "", fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(e.To); err != nil {
		return "", fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(e.Subject)
	msg.SetMessageID()
	msg.SetDate()
	switch {
	case e.Text != "" && e.HTML != "":
		msg.SetBodyString(mail.TypeTextPlain, e.Text)
		msg.AddAlternativeString(mail.TypeTextHTML, e.HTML)
	case e.HTML != "":
		msg.SetBodyString(mail.TypeTextHTML, e.HTML)
	default:
		msg.SetBodyString(mail.TypeTextPlain, e.Text)
	}

	c, err := t.client()
	if err != nil {
		return "", err
	}
	if err := c.DialAndSendWithContext(ctx, msg); err != nil {
		return "", fmt.Errorf("sending via smtp: %w", err)
	}
	return msg.GetMessageID(), nil
}

// Verify implements Transport by dialing and authenticating.
func (t *SMTPTransport) Verify(ctx context.Context) error {
	c, err := t.client()
	if err != nil {
		return err
	}
	if err := c.DialWithContext(ctx); err != nil {
		return fmt.Errorf("connecting to smtp relay: %w", err)
	}
	return c.Close()
}

var _ Transport = (*SMTPTransport)(nil)
