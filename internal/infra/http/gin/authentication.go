package ginserver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	gin "github.com/gin-gonic/gin"

	"flatfinder/internal/app/actor"
	"flatfinder/internal/app/services/auth"
	domainauth "flatfinder/internal/domain/auth"
	domainuser "flatfinder/internal/domain/user"
)

const principalContextKey = "flatfinder.principal"

type principal struct {
	Actor actor.Actor
	User  *domainuser.User
	Token string
}

// TokenResolver is the part of the auth service the middleware needs.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*auth.ResolveResult, error)
}

// AuthMiddleware resolves the bearer token, when present, into a principal.
// Anonymous requests pass through; commands decide whether they need a user.
type AuthMiddleware struct {
	Service TokenResolver
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if token == "" || m.Service == nil {
		c.Next()
		return
	}
	resolved, err := m.Service.ResolveToken(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, domainauth.ErrSessionNotFound) && m.Logger != nil {
			m.Logger.Warn("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	c.Set(principalContextKey, principal{Actor: resolved.Actor(), User: resolved.User, Token: token})
	c.Next()
}

func currentPrincipal(c *gin.Context) (principal, bool) {
	val, exists := c.Get(principalContextKey)
	if !exists {
		return principal{}, false
	}
	p, ok := val.(principal)
	return p, ok
}

// currentActor is the zero Actor for anonymous requests.
func currentActor(c *gin.Context) actor.Actor {
	p, _ := currentPrincipal(c)
	return p.Actor
}

func extractBearerToken(header string) string {
	if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
