// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Contact message statuses. Messages only move forward: new, read, replied.
const (
	MessageStatusNew     = "new"
	MessageStatusRead    = "read"
	MessageStatusReplied = "replied"
)

// DefaultServiceNeeded is recorded when the visitor does not pick a service.
const DefaultServiceNeeded = "General Inquiry"

// ContactMessage is an inquiry submitted through the contact form.
type ContactMessage struct {
	ID            string    `json:"id"`
	FirstName     string    `json:"first_name"`
	LastName      string    `json:"last_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	DeviceType    string    `json:"device_type"`
	ServiceNeeded string    `json:"service_needed"`
	Message       string    `json:"message"`
	Status        string    `json:"status"`
	UserAgent     string    `json:"user_agent,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// FullName returns the sender's first and last name.
func (m *ContactMessage) FullName() string {
	switch {
	case m.FirstName == "":
		return m.LastName
	case m.LastName == "":
		return m.FirstName
	default:
		return m.FirstName + " " + m.LastName
	}
}

// IsNew returns true if nobody has opened the message yet.
func (m *ContactMessage) IsNew() bool {
	return m.Status == MessageStatusNew
}

// statusRank orders message statuses along the forward-only lifecycle.
func statusRank(status string) int {
	switch status {
	case MessageStatusNew:
		return 0
	case MessageStatusRead:
		return 1
	case MessageStatusReplied:
		return 2
	default:
		return -1
	}
}

// CanTransition reports whether a message may move from one status to another.
// Only forward moves are allowed.
func CanTransition(from, to string) bool {
	f, t := statusRank(from), statusRank(to)
	return f >= 0 && t >= 0 && t > f
}

// PredecessorStatuses returns the statuses that may move to target.
func PredecessorStatuses(target string) []string {
	var out []string
	for _, s := range []string{MessageStatusNew, MessageStatusRead, MessageStatusReplied} {
		if CanTransition(s, target) {
			out = append(out, s)
		}
	}
	return out
}
