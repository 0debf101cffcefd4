// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that also writes WARN and ERROR
// records to the event log shown in the admin panel.
package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/mobidoc/internal/model"
	"github.com/olegiv/mobidoc/internal/store"
)

// writeTimeout bounds a single event log insert.
const writeTimeout = 2 * time.Second

// EventLogHandler is a slog.Handler that wraps another handler and also
// persists records at or above level to the event log.
type EventLogHandler struct {
	inner  slog.Handler
	events store.EventStore
	level  slog.Level
	attrs  []slog.Attr
}

// NewEventLogHandler wraps inner, forwarding WARN and above to events.
func NewEventLogHandler(inner slog.Handler, events store.EventStore) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, events, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates an EventLogHandler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, events store.EventStore, level slog.Level) *EventLogHandler {
	return &EventLogHandler{inner: inner, events: events, level: level}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}

	if r.Level >= h.level {
		h.writeToEventLog(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &EventLogHandler{inner: h.inner.WithAttrs(attrs), events: h.events, level: h.level, attrs: merged}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{inner: h.inner.WithGroup(name), events: h.events, level: h.level, attrs: h.attrs}
}

// writeToEventLog persists the record. A fresh context is used so the event
// survives a cancelled request.
func (h *EventLogHandler) writeToEventLog(r slog.Record) {
	attrs := make(map[string]any, r.NumAttrs()+len(h.attrs))
	for _, a := range h.attrs {
		attrs[a.Key] = a.Value.Any()
	}
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	category, _ := attrs["category"].(string)
	delete(attrs, "category")
	if category == "" {
		category = inferCategory(r.Message)
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	_ = h.events.CreateEvent(ctx, &model.Event{
		Level:     levelName(r.Level),
		Category:  category,
		Message:   r.Message,
		Metadata:  encodeMetadata(attrs),
		CreatedAt: r.Time,
	})
}

// levelName converts a slog.Level to an event log level.
func levelName(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

// inferCategory guesses a category from the message when none was given.
func inferCategory(message string) string {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "login") || strings.Contains(msg, "logout") ||
		strings.Contains(msg, "access denied") || strings.Contains(msg, "csrf"):
		return model.EventCategoryAuth
	case strings.Contains(msg, "email") || strings.Contains(msg, "mail"):
		return model.EventCategoryMail
	case strings.Contains(msg, "contact") || strings.Contains(msg, "message"):
		return model.EventCategoryContact
	case strings.Contains(msg, "user"):
		return model.EventCategoryUser
	case strings.Contains(msg, "post") || strings.Contains(msg, "gallery") ||
		strings.Contains(msg, "video") || strings.Contains(msg, "service") || strings.Contains(msg, "upload"):
		return model.EventCategoryContent
	default:
		return model.EventCategorySystem
	}
}

func encodeMetadata(attrs map[string]any) string {
	if len(attrs) == 0 {
		return "{}"
	}
	for k, v := range attrs {
		switch val := v.(type) {
		case error:
			attrs[k] = val.Error()
		case time.Duration:
			attrs[k] = val.String()
		}
	}
	data, err := json.Marshal(attrs)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// Record writes an event directly, for audit entries below WARN such as
// successful logins.
func Record(ctx context.Context, events store.EventStore, level, category, message string, metadata map[string]any) {
	if events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	if err := events.CreateEvent(ctx, &model.Event{
		Level:    level,
		Category: category,
		Message:  message,
		Metadata: encodeMetadata(metadata),
	}); err != nil {
		slog.Debug("event log write failed", "error", err)
	}
}
