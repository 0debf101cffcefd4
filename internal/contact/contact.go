// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package contact handles inquiries from the public contact form: it
// validates and stores them, notifies the shop by email and tracks the
// new, read, replied lifecycle of each message.
package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/olegiv/mobidoc/internal/mailer"
	"github.com/olegiv/mobidoc/internal/model"
	"github.com/olegiv/mobidoc/internal/store"
)

// User-facing validation messages.
const (
	MsgRequiredFields = "Please fill in all required fields"
	MsgInvalidEmail   = "Please enter a valid email address"
)

// ReplyWindow bounds the fallback reply marking when no message id is given.
const ReplyWindow = 24 * time.Hour

// Signature is appended to replies sent with IncludeSignature.
const Signature = "\n\n---\nBest regards,\n" + mailer.ShopOwner + "\n" + mailer.ShopName + "\n" +
	mailer.ShopPhone + "\n" + mailer.ShopAddress

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidationError is a submission the visitor must fix. Nothing was stored.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Form is a contact-form submission.
type Form struct {
	FirstName  string `json:"firstName" validate:"required"`
	LastName   string `json:"lastName" validate:"required"`
	Email      string `json:"email" validate:"required,contactemail"`
	Phone      string `json:"phone" validate:"required"`
	Service    string `json:"service"`
	DeviceType string `json:"deviceType"`
	Message    string `json:"message" validate:"required"`
}

// LegacyForm is the snake_case payload accepted by the older form endpoint.
type LegacyForm struct {
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Email         string `json:"email"`
	Phone         string `json:"phone"`
	DeviceType    string `json:"device_type"`
	ServiceNeeded string `json:"service_needed"`
	Message       string `json:"message"`
}

// Form converts a legacy payload. The service falls back to the device type.
func (l LegacyForm) Form() Form {
	service := l.ServiceNeeded
	if strings.TrimSpace(service) == "" {
		service = l.DeviceType
	}
	return Form{
		FirstName:  l.FirstName,
		LastName:   l.LastName,
		Email:      l.Email,
		Phone:      l.Phone,
		Service:    service,
		DeviceType: l.DeviceType,
		Message:    l.Message,
	}
}

func (f *Form) normalize() {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Service = strings.TrimSpace(f.Service)
	f.DeviceType = strings.TrimSpace(f.DeviceType)
	f.Message = strings.TrimSpace(f.Message)
	if f.Service == "" {
		f.Service = model.DefaultServiceNeeded
	}
}

// Notifier sends the email side effects of the contact flow.
type Notifier interface {
	SendContactEmails(ctx context.Context, in mailer.Inquiry) mailer.ContactResult
	SendDirect(ctx context.Context, to, subject, text string) mailer.SendResult
}

// Service runs the contact workflow.
type Service struct {
	messages store.MessageStore
	notifier Notifier
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates a contact service.
func NewService(messages store.MessageStore, notifier Notifier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("contactemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	return &Service{messages: messages, notifier: notifier, validate: v, logger: logger, now: time.Now}
}

// SubmitResult is the outcome of an accepted submission.
type SubmitResult struct {
	Message model.ContactMessage
	Mail    mailer.ContactResult
}

// Submit validates f, stores it as a new message and sends the contact
// emails. Mail failures are reported in the result and never undo the store.
func (s *Service) Submit(ctx context.Context, f Form, userAgent string) (*SubmitResult, error) {
	f.normalize()
	if err := s.check(f); err != nil {
		return nil, err
	}

	msg := model.ContactMessage{
		FirstName:     f.FirstName,
		LastName:      f.LastName,
		Email:         f.Email,
		Phone:         f.Phone,
		DeviceType:    f.DeviceType,
		ServiceNeeded: f.Service,
		Message:       f.Message,
		Status:        model.MessageStatusNew,
		UserAgent:     SummarizeUserAgent(userAgent),
	}
	if err := s.messages.CreateMessage(ctx, &msg); err != nil {
		return nil, fmt.Errorf("storing contact message: %w", err)
	}
	s.logger.Info("contact message received", "id", msg.ID, "email", msg.Email, "service", msg.ServiceNeeded)

	mail := s.notifier.SendContactEmails(ctx, mailer.Inquiry{
		FirstName:  msg.FirstName,
		LastName:   msg.LastName,
		Email:      msg.Email,
		Phone:      msg.Phone,
		Service:    msg.ServiceNeeded,
		Message:    msg.Message,
		ReceivedAt: msg.CreatedAt,
	})
	if !mail.Success {
		s.logger.Warn("contact emails not fully delivered",
			"id", msg.ID,
			"customer_error", mail.CustomerEmail.Error,
			"admin_error", mail.AdminEmail.Error,
			"category", model.EventCategoryContact)
	}
	return &SubmitResult{Message: msg, Mail: mail}, nil
}

func (s *Service) check(f Form) error {
	err := s.validate.Struct(f)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		if fe.Tag() == "required" {
			return &ValidationError{Message: MsgRequiredFields}
		}
	}
	return &ValidationError{Message: MsgInvalidEmail}
}

// MarkRead moves a new message to read. Messages already read or replied
// are left alone.
func (s *Service) MarkRead(ctx context.Context, id string) error {
	if _, err := s.messages.AdvanceMessage(ctx, id, model.MessageStatusRead); err != nil {
		return fmt.Errorf("marking message read: %w", err)
	}
	return nil
}

// Delete removes a message.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.messages.DeleteMessage(ctx, id); err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}
	return nil
}

// Reply is an email written by staff in answer to a message.
type Reply struct {
	To               string `json:"to"`
	Subject          string `json:"subject"`
	Message          string `json:"message"`
	CustomerName     string `json:"customerName"`
	IncludeSignature bool   `json:"includeSignature"`
	MessageID        string `json:"messageId"`
}

// ReplyResult is the outcome of SendReply.
type ReplyResult struct {
	Send   mailer.SendResult
	Marked int64
}

// SendReply emails the reply and, only when the relay accepted it, marks
// messages replied. With a MessageID only that message is marked; without
// one every message from the recipient in the trailing ReplyWindow is.
func (s *Service) SendReply(ctx context.Context, r Reply) (*ReplyResult, error) {
	r.To = strings.TrimSpace(r.To)
	r.Subject = strings.TrimSpace(r.Subject)
	if r.To == "" || r.Subject == "" || strings.TrimSpace(r.Message) == "" {
		return nil, &ValidationError{Message: MsgRequiredFields}
	}
	if !emailPattern.MatchString(r.To) {
		return nil, &ValidationError{Message: MsgInvalidEmail}
	}

	body := r.Message
	if r.IncludeSignature {
		body += Signature
	}

	res := &ReplyResult{Send: s.notifier.SendDirect(ctx, r.To, r.Subject, body)}
	if !res.Send.Success {
		s.logger.Warn("reply email failed", "to", r.To, "error", res.Send.Error, "category", model.EventCategoryMail)
		return res, nil
	}

	if r.MessageID != "" {
		changed, err := s.messages.AdvanceMessage(ctx, r.MessageID, model.MessageStatusReplied)
		if err != nil {
			return res, fmt.Errorf("marking message replied: %w", err)
		}
		if changed {
			res.Marked = 1
		}
	} else {
		n, err := s.messages.MarkRepliedSince(ctx, r.To, s.now().Add(-ReplyWindow))
		if err != nil {
			return res, fmt.Errorf("marking messages replied: %w", err)
		}
		res.Marked = n
	}
	s.logger.Info("reply sent", "to", r.To, "message_id", res.Send.MessageID, "marked", res.Marked)
	return res, nil
}
