// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import "github.com/olegiv/mobidoc/internal/model"

// Identity is the logged-in user as held in the session.
type Identity struct {
	ID       string
	Username string
	Email    string
	Role     string
}

// IdentityOf builds the session identity for a user.
func IdentityOf(u model.User) Identity {
	return Identity{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

// IsAdmin returns true if the identity has the admin role.
func (i Identity) IsAdmin() bool { return i.Role == model.RoleAdmin }

// roleLevel returns a numeric level for role hierarchy.
// Higher level = more permissions. Unknown roles get no admin access.
func roleLevel(role string) int {
	switch role {
	case model.RoleAdmin:
		return 2
	case model.RoleEditor:
		return 1
	default:
		return 0
	}
}

// Decision is the outcome of evaluating a Predicate.
type Decision int

// Possible decisions.
const (
	Allow Decision = iota
	RedirectToLogin
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectToLogin:
		return "redirect_to_login"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Predicate decides whether a request carrying identity (nil when there is
// no session) may proceed.
type Predicate func(identity *Identity) Decision

// RequireAuth allows any logged-in user.
func RequireAuth(identity *Identity) Decision {
	if identity == nil {
		return RedirectToLogin
	}
	return Allow
}

// RequireRole allows users whose role is at least minRole.
// Roles are hierarchical: admin > editor.
func RequireRole(minRole string) Predicate {
	minLevel := roleLevel(minRole)
	return func(identity *Identity) Decision {
		if d := RequireAuth(identity); d != Allow {
			return d
		}
		if roleLevel(identity.Role) < minLevel {
			return Forbidden
		}
		return Allow
	}
}

// RequireEditor allows admin and editor users.
var RequireEditor = RequireRole(model.RoleEditor)

// RequireAdmin allows admin users only.
var RequireAdmin = RequireRole(model.RoleAdmin)
