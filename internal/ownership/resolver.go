// Package ownership decides whether a caller may access an owned
// resource. Resources belong to an authenticated user, an anonymous
// session, or (for admin-created content) nobody at all.
package ownership

import (
	"errors"

	"github.com/google/uuid"

	"portfolio-api/internal/user"
)

var (
	ErrAccessDenied   = errors.New("access denied")
	ErrMissingSession = errors.New("a session identifier or authentication is required")
)

// Principal is the resolved caller: an authenticated user, an
// anonymous session, both, or neither.
type Principal struct {
	User      *user.User
	SessionID string
}

// Anonymous reports whether neither an identity nor a session
// identifier was resolved.
func (p Principal) Anonymous() bool {
	return p.User == nil && p.SessionID == ""
}

// IsAdmin reports whether the principal is an authenticated admin.
func (p Principal) IsAdmin() bool {
	return p.User != nil && p.User.IsAdmin()
}

// Resource exposes a resource's owner fields. Either or both may be
// nil; an ownerless resource is reachable only by admins.
type Resource interface {
	Owner() (userID *uuid.UUID, sessionID *string)
}

// Require fails with ErrMissingSession when an endpoint needs a caller
// and none was resolved.
func Require(p Principal) error {
	if p.Anonymous() {
		return ErrMissingSession
	}
	return nil
}

// Authorize grants access when the principal is an admin, or owns the
// resource by identity, or owns it by session identifier.
func Authorize(p Principal, res Resource) error {
	if p.IsAdmin() {
		return nil
	}

	ownerUserID, ownerSessionID := res.Owner()

	if p.User != nil && ownerUserID != nil && *ownerUserID == p.User.ID {
		return nil
	}

	if p.SessionID != "" && ownerSessionID != nil && *ownerSessionID == p.SessionID {
		return nil
	}

	return ErrAccessDenied
}
