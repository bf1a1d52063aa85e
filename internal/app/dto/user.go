package dto

import (
	"time"

	domainuser "flatfinder/internal/domain/user"
)

// UserProfile is the public view of an account; the password hash never leaves
// the service.
type UserProfile struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Roles     []string  `json:"roles"`
	Admin     bool      `json:"is_admin"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AuthResponse struct {
	User  UserProfile `json:"user"`
	Token string      `json:"token"`
}

func MapUserProfile(u *domainuser.User) UserProfile {
	if u == nil {
		return UserProfile{Roles: []string{}}
	}
	out := UserProfile{
		ID:        string(u.ID),
		Email:     u.Email,
		Name:      u.Name,
		Phone:     u.Phone,
		Roles:     make([]string, len(u.Roles)),
		Admin:     u.IsAdmin(),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	for i, r := range u.Roles {
		out.Roles[i] = string(r)
	}
	return out
}

func NewAuthResponse(u *domainuser.User, token string) AuthResponse {
	return AuthResponse{User: MapUserProfile(u), Token: token}
}
