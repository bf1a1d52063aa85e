package user

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"
)

var (
	ErrIDRequired          = errors.New("user: id is required")
	ErrEmailRequired       = errors.New("user: email is required")
	ErrPasswordHashMissing = errors.New("user: password hash is required")
	ErrNameRequired        = errors.New("user: name is required")
	ErrInvalidRole         = errors.New("user: invalid role")
	ErrEmailAlreadyUsed    = errors.New("user: email already used")
	ErrNotFound            = errors.New("user: not found")
)

type ID string

type Role string

const (
	RoleConsultant Role = "consultant"
	RoleLandlord   Role = "landlord"
	RoleAdmin      Role = "admin"
)

// SelfServiceRoles can be chosen at registration. Admins are provisioned.
var SelfServiceRoles = []Role{RoleConsultant, RoleLandlord}

// roleAliases maps the names older clients send to the canonical role.
var roleAliases = map[string]Role{
	"consultant": RoleConsultant,
	"renter":     RoleConsultant,
	"guest":      RoleConsultant,
	"landlord":   RoleLandlord,
	"host":       RoleLandlord,
	"admin":      RoleAdmin,
}

// User is an account of the marketplace. Email is stored lower-cased and is
// unique across accounts.
type User struct {
	ID           ID
	Email        string
	Name         string
	Phone        string
	PasswordHash string
	Roles        []Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Repository persists accounts outside of units of work.
type Repository interface {
	ByID(ctx context.Context, id ID) (*User, error)
	// ByEmail matches case-insensitively.
	ByEmail(ctx context.Context, email string) (*User, error)
	// Save inserts or replaces; another account holding the email yields
	// ErrEmailAlreadyUsed.
	Save(ctx context.Context, user *User) error
}

type CreateParams struct {
	ID           ID
	Email        string
	Name         string
	Phone        string
	PasswordHash string
	Roles        []Role
	CreatedAt    time.Time
}

// NewUser validates the account fields. Without roles the account is a consultant.
func NewUser(p CreateParams) (*User, error) {
	u := &User{
		ID:           ID(strings.TrimSpace(string(p.ID))),
		Email:        NormalizeEmail(p.Email),
		Name:         strings.TrimSpace(p.Name),
		Phone:        strings.TrimSpace(p.Phone),
		PasswordHash: p.PasswordHash,
	}
	switch {
	case u.ID == "":
		return nil, ErrIDRequired
	case u.Email == "":
		return nil, ErrEmailRequired
	case strings.TrimSpace(u.PasswordHash) == "":
		return nil, ErrPasswordHashMissing
	case u.Name == "":
		return nil, ErrNameRequired
	}

	roles, err := normalizeRoles(p.Roles)
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		roles = []Role{RoleConsultant}
	}
	u.Roles = roles

	created := p.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	u.CreatedAt = created.UTC()
	u.UpdatedAt = u.CreatedAt
	return u, nil
}

// EnsureRole grants role if the account does not hold it yet.
func (u *User) EnsureRole(role Role, now time.Time) error {
	canonical, err := ParseRole(string(role))
	if err != nil {
		return err
	}
	if u.HasRole(canonical) {
		return nil
	}
	u.Roles = append(u.Roles, canonical)
	if now.IsZero() {
		now = time.Now()
	}
	u.UpdatedAt = now.UTC()
	return nil
}

func (u *User) HasRole(role Role) bool {
	canonical, err := ParseRole(string(role))
	if err != nil {
		return false
	}
	return slices.Contains(u.Roles, canonical)
}

func (u *User) IsAdmin() bool {
	return u.HasRole(RoleAdmin)
}

// Clone copies the account so stores never share role slices with callers.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.Roles = slices.Clone(u.Roles)
	return &out
}

// ParseRole maps a raw role name, including legacy aliases, to a Role.
func ParseRole(raw string) (Role, error) {
	role, ok := roleAliases[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return "", ErrInvalidRole
	}
	return role, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func normalizeRoles(roles []Role) ([]Role, error) {
	out := make([]Role, 0, len(roles))
	for _, raw := range roles {
		role, err := ParseRole(string(raw))
		if err != nil {
			return nil, err
		}
		if !slices.Contains(out, role) {
			out = append(out, role)
		}
	}
	return out, nil
}
