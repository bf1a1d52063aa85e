// Package auth registers accounts and maps bearer tokens to sessions.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"flatfinder/internal/app/actor"
	domainauth "flatfinder/internal/domain/auth"
	domainuser "flatfinder/internal/domain/user"
)

const (
	minPasswordRunes  = 8
	defaultSessionTTL = 24 * time.Hour
	adminDisplayName  = "Administrator"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 8 characters")
	ErrRoleNotSelectable  = errors.New("auth: role cannot be chosen at registration")
	ErrNotConfigured      = errors.New("auth: service is missing a dependency")
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type TokenGenerator interface {
	NewToken() (string, error)
}

// Service owns account creation and the session lifecycle. Users, Sessions,
// Passwords and Tokens are required; Now defaults to time.Now.
type Service struct {
	Users      domainuser.Repository
	Sessions   domainauth.SessionStore
	Passwords  PasswordHasher
	Tokens     TokenGenerator
	SessionTTL time.Duration
	Now        func() time.Time
	Logger     *slog.Logger
}

type RegisterParams struct {
	Email    string
	Name     string
	Phone    string
	Password string
	Role     string
}

type LoginParams struct {
	Email    string
	Password string
}

// AuthResult carries the account and the raw bearer token. The token is
// never stored; sessions are keyed by its digest.
type AuthResult struct {
	User  *domainuser.User
	Token string
}

type ResolveResult struct {
	User    *domainuser.User
	Session *domainauth.Session
}

// Actor is the principal handed to commands and queries.
func (r *ResolveResult) Actor() actor.Actor {
	if r == nil {
		return actor.Actor{}
	}
	return actor.FromUser(r.User)
}

func (s *Service) Register(ctx context.Context, p RegisterParams) (*AuthResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	if domainuser.NormalizeEmail(p.Email) == "" {
		return nil, domainuser.ErrEmailRequired
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, domainuser.ErrNameRequired
	}
	if err := checkPassword(p.Password); err != nil {
		return nil, err
	}
	role, err := selfServiceRole(p.Role)
	if err != nil {
		return nil, err
	}
	user, err := s.createUser(ctx, domainuser.CreateParams{
		Email: p.Email,
		Name:  p.Name,
		Phone: p.Phone,
		Roles: []domainuser.Role{role},
	}, p.Password)
	if err != nil {
		return nil, err
	}
	s.log().Info("user registered", "user_id", user.ID, "roles", user.Roles)
	return s.startSession(ctx, user)
}

// Login answers ErrInvalidCredentials for an unknown email and a wrong
// password alike.
func (s *Service) Login(ctx context.Context, p LoginParams) (*AuthResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	email := domainuser.NormalizeEmail(p.Email)
	if email == "" {
		return nil, ErrInvalidCredentials
	}
	user, err := s.Users.ByEmail(ctx, email)
	if errors.Is(err, domainuser.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if s.Passwords.Compare(user.PasswordHash, p.Password) != nil {
		s.log().Debug("password mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	res, err := s.startSession(ctx, user)
	if err == nil {
		s.log().Info("user authenticated", "user_id", user.ID)
	}
	return res, err
}

// Logout drops the session behind token. Unknown or blank tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	if err := s.ready(); err != nil {
		return err
	}
	tok := domainauth.Token(strings.TrimSpace(token))
	if tok == "" {
		return nil
	}
	if err := s.Sessions.Delete(ctx, tok); err != nil {
		return err
	}
	s.log().Info("session terminated")
	return nil
}

// ResolveToken loads the session and its account. A session whose account
// vanished is deleted and reported as not found.
func (s *Service) ResolveToken(ctx context.Context, token string) (*ResolveResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	tok := domainauth.Token(strings.TrimSpace(token))
	if tok == "" {
		return nil, domainauth.ErrTokenRequired
	}
	session, err := s.Sessions.Get(ctx, tok)
	if err != nil {
		return nil, err
	}
	user, err := s.Users.ByID(ctx, session.UserID)
	switch {
	case errors.Is(err, domainuser.ErrNotFound):
		_ = s.Sessions.Delete(ctx, tok)
		return nil, domainauth.ErrSessionNotFound
	case err != nil:
		return nil, err
	}
	return &ResolveResult{User: user, Session: session}, nil
}

func (s *Service) Me(ctx context.Context, principal actor.Actor) (*domainuser.User, error) {
	if err := principal.Require(); err != nil {
		return nil, err
	}
	if s.Users == nil {
		return nil, ErrNotConfigured
	}
	return s.Users.ByID(ctx, domainuser.ID(principal.UserID))
}

// EnsureAdmin provisions the configured administrator, or grants the admin
// role to an existing account with that email. Blank credentials are a no-op.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) (*domainuser.User, error) {
	email = domainuser.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, nil
	}
	if err := s.ready(); err != nil {
		return nil, err
	}

	existing, err := s.Users.ByEmail(ctx, email)
	if err == nil {
		if existing.IsAdmin() {
			return existing, nil
		}
		if err := existing.EnsureRole(domainuser.RoleAdmin, s.now()); err != nil {
			return nil, err
		}
		if err := s.Users.Save(ctx, existing); err != nil {
			return nil, err
		}
		s.log().Info("admin role granted", "user_id", existing.ID)
		return existing, nil
	}
	if !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}

	if err := checkPassword(password); err != nil {
		return nil, err
	}
	admin, err := s.createUser(ctx, domainuser.CreateParams{
		Email: email,
		Name:  adminDisplayName,
		Roles: []domainuser.Role{domainuser.RoleAdmin},
	}, password)
	if err != nil {
		return nil, err
	}
	s.log().Info("admin provisioned", "user_id", admin.ID)
	return admin, nil
}

// createUser hashes password into p, assigns a fresh id and persists the account.
func (s *Service) createUser(ctx context.Context, p domainuser.CreateParams, password string) (*domainuser.User, error) {
	hash, err := s.Passwords.Hash(password)
	if err != nil {
		return nil, err
	}
	p.ID = domainuser.ID(uuid.NewString())
	p.PasswordHash = hash
	p.CreatedAt = s.now()
	user, err := domainuser.NewUser(p)
	if err != nil {
		return nil, err
	}
	if err := s.Users.Save(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) startSession(ctx context.Context, user *domainuser.User) (*AuthResult, error) {
	raw, err := s.Tokens.NewToken()
	if err != nil {
		return nil, err
	}
	ttl := s.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  domainauth.Token(raw),
		UserID: user.ID,
		Roles:  slices.Clone(user.Roles),
		TTL:    ttl,
		Now:    s.now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: raw}, nil
}

func selfServiceRole(raw string) (domainuser.Role, error) {
	if strings.TrimSpace(raw) == "" {
		return domainuser.RoleConsultant, nil
	}
	role, err := domainuser.ParseRole(raw)
	if err != nil {
		return "", err
	}
	if !slices.Contains(domainuser.SelfServiceRoles, role) {
		return "", ErrRoleNotSelectable
	}
	return role, nil
}

func checkPassword(password string) error {
	if utf8.RuneCountInString(password) < minPasswordRunes {
		return ErrPasswordTooShort
	}
	return nil
}

func (s *Service) ready() error {
	if s.Users == nil || s.Sessions == nil || s.Passwords == nil || s.Tokens == nil {
		return ErrNotConfigured
	}
	return nil
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) log() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}
