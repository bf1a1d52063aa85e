// Package actor carries the authenticated principal explicitly through
// commands and queries instead of relying on ambient session state.
package actor

import (
	"errors"

	domainuser "flatfinder/internal/domain/user"
)

var (
	ErrUnauthenticated = errors.New("actor: authentication required")
	ErrForbidden       = errors.New("actor: insufficient permissions")
)

type Actor struct {
	UserID string
	Roles  []domainuser.Role
}

func FromUser(u *domainuser.User) Actor {
	if u == nil {
		return Actor{}
	}
	return Actor{UserID: string(u.ID), Roles: append([]domainuser.Role(nil), u.Roles...)}
}

func (a Actor) Authenticated() bool {
	return a.UserID != ""
}

func (a Actor) HasRole(role domainuser.Role) bool {
	for _, r := range a.Roles {
		if r == role {
			return true
		}
	}
	return false
}

func (a Actor) IsAdmin() bool {
	return a.HasRole(domainuser.RoleAdmin)
}

// Require returns nil when the actor is authenticated and holds any of roles.
// Admins pass every role check. An empty roles list only demands authentication.
func (a Actor) Require(roles ...domainuser.Role) error {
	if !a.Authenticated() {
		return ErrUnauthenticated
	}
	if len(roles) == 0 || a.IsAdmin() {
		return nil
	}
	for _, r := range roles {
		if a.HasRole(r) {
			return nil
		}
	}
	return ErrForbidden
}
