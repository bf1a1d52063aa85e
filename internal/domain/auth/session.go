package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"flatfinder/internal/domain/user"
)

var (
	ErrTokenRequired   = errors.New("auth: token is required")
	ErrUserRequired    = errors.New("auth: user is required")
	ErrTTLInvalid      = errors.New("auth: ttl must be positive")
	ErrSessionNotFound = errors.New("auth: session not found")
)

// Token is the bearer secret handed to the client. Stores index sessions by
// its Digest and never persist the token itself.
type Token string

func (t Token) Digest() string {
	sum := sha256.Sum256([]byte(t))
	return hex.EncodeToString(sum[:])
}

// Session binds a bearer token to a user and the roles it was issued with.
type Session struct {
	Token     Token
	UserID    user.ID
	Roles     []user.Role
	CreatedAt time.Time
	ExpiresAt time.Time
}

type CreateSessionParams struct {
	Token  Token
	UserID user.ID
	Roles  []user.Role
	TTL    time.Duration
	Now    time.Time
}

func NewSession(p CreateSessionParams) (*Session, error) {
	token := Token(strings.TrimSpace(string(p.Token)))
	switch {
	case token == "":
		return nil, ErrTokenRequired
	case strings.TrimSpace(string(p.UserID)) == "":
		return nil, ErrUserRequired
	case p.TTL <= 0:
		return nil, ErrTTLInvalid
	}
	issued := p.Now
	if issued.IsZero() {
		issued = time.Now()
	}
	issued = issued.UTC()
	return &Session{
		Token:     token,
		UserID:    p.UserID,
		Roles:     append([]user.Role(nil), p.Roles...),
		CreatedAt: issued,
		ExpiresAt: issued.Add(p.TTL),
	}, nil
}

// Expired reports whether the session is no longer valid at the given instant.
func (s *Session) Expired(at time.Time) bool {
	if at.IsZero() {
		at = time.Now()
	}
	return !s.ExpiresAt.After(at.UTC())
}

// Remaining is the lifetime left at the given instant, zero once expired.
func (s *Session) Remaining(at time.Time) time.Duration {
	if s.Expired(at) {
		return 0
	}
	return s.ExpiresAt.Sub(at.UTC())
}

// Clone copies the session, roles included.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	out := *s
	out.Roles = append([]user.Role(nil), s.Roles...)
	return &out
}

type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	// Get returns ErrSessionNotFound for unknown or expired tokens.
	Get(ctx context.Context, token Token) (*Session, error)
	Delete(ctx context.Context, token Token) error
	DeleteByUser(ctx context.Context, userID user.ID) error
}
