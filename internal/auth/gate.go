// Package auth holds credentials, sessions and the authorization gate.
package auth

import (
	"errors"

	"github.com/mindmap-server/internal/models"
)

var (
	// ErrUnauthenticated means no valid session accompanied the request
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the actor may not touch the resource
	ErrForbidden = errors.New("forbidden")
)

// Actor is the authenticated user a request acts as
type Actor struct {
	ID       string
	Username string
	IsAdmin  bool
}

// ActorFromUser builds the actor for a stored user
func ActorFromUser(u *models.User) *Actor {
	return &Actor{ID: u.ID, Username: u.Username, IsAdmin: u.IsAdmin}
}

// Decision is the outcome of an authorization check
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "unauthenticated"
	case DenyForbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

// Allowed reports whether the decision grants access
func (d Decision) Allowed() bool {
	return d == Allow
}

// Err returns nil for Allow and the matching sentinel otherwise
func (d Decision) Err() error {
	switch d {
	case Allow:
		return nil
	case DenyUnauthenticated:
		return ErrUnauthenticated
	default:
		return ErrForbidden
	}
}

// Authenticated decides whether a request carries any actor at all
func Authenticated(actor *Actor) Decision {
	if actor == nil {
		return DenyUnauthenticated
	}
	return Allow
}

// Can decides whether actor may act on a resource owned by ownerID
func Can(actor *Actor, ownerID string) Decision {
	if actor == nil {
		return DenyUnauthenticated
	}
	if actor.IsAdmin || (ownerID != "" && actor.ID == ownerID) {
		return Allow
	}
	return DenyForbidden
}

// CanManageUsers decides access to the user administration surface
func CanManageUsers(actor *Actor) Decision {
	if actor == nil {
		return DenyUnauthenticated
	}
	if actor.IsAdmin {
		return Allow
	}
	return DenyForbidden
}

// CanDeleteUser is CanManageUsers plus a hard rule: admin accounts are never deleted
func CanDeleteUser(actor *Actor, target *models.User) Decision {
	if d := CanManageUsers(actor); d != Allow {
		return d
	}
	if target != nil && target.IsAdmin {
		return DenyForbidden
	}
	return Allow
}
