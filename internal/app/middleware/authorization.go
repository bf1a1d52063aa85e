package middleware

import (
	"context"

	"flatfinder/internal/app/actor"
	domainuser "flatfinder/internal/domain/user"
)

type Authorizer interface {
	Authorize(ctx context.Context, message any) error
}

// RoleRestricted messages declare who issued them and which roles may.
type RoleRestricted interface {
	Principal() actor.Actor
	RequiredRoles() []domainuser.Role
}

// RoleAuthorizer enforces RoleRestricted declarations. Messages that do not
// declare restrictions pass through.
type RoleAuthorizer struct{}

func (RoleAuthorizer) Authorize(_ context.Context, message any) error {
	restricted, ok := message.(RoleRestricted)
	if !ok {
		return nil
	}
	return restricted.Principal().Require(restricted.RequiredRoles()...)
}

// Authorization rejects commands the principal may not issue.
func Authorization(a Authorizer) CommandMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return guardCommands(a.Authorize)
}

func QueryAuthorization(a Authorizer) QueryMiddleware {
	if a == nil {
		panic("middleware: authorizer required")
	}
	return guardQueries(a.Authorize)
}
