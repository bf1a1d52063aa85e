package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	domainuser "flatfinder/internal/domain/user"
)

const userColumns = `id, email, name, phone, password_hash, roles, created_at, updated_at`

// UserRepository is used outside units of work, so it talks to the pool.
type UserRepository struct {
	q Querier
}

func NewUserRepository(q Querier) *UserRepository {
	return &UserRepository{q: q}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, string(id))
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	return r.one(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(strings.TrimSpace(email)))
}

func (r *UserRepository) Save(ctx context.Context, u *domainuser.User) error {
	roles := make([]string, 0, len(u.Roles))
	for _, role := range u.Roles {
		roles = append(roles, string(role))
	}
	_, err := querier(ctx, r.q).Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			name = EXCLUDED.name,
			phone = EXCLUDED.phone,
			password_hash = EXCLUDED.password_hash,
			roles = EXCLUDED.roles,
			updated_at = EXCLUDED.updated_at
	`, string(u.ID), u.Email, u.Name, u.Phone, u.PasswordHash, roles, u.CreatedAt.UTC(), u.UpdatedAt.UTC())
	if isUniqueViolation(err) {
		return domainuser.ErrEmailAlreadyUsed
	}
	return err
}

func (r *UserRepository) one(ctx context.Context, query string, arg string) (*domainuser.User, error) {
	var (
		u                  domainuser.User
		id                 string
		roles              []string
		created, updatedAt time.Time
	)
	err := querier(ctx, r.q).QueryRow(ctx, query, arg).
		Scan(&id, &u.Email, &u.Name, &u.Phone, &u.PasswordHash, &roles, &created, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domainuser.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	u.ID = domainuser.ID(id)
	for _, role := range roles {
		u.Roles = append(u.Roles, domainuser.Role(role))
	}
	u.CreatedAt = created.UTC()
	u.UpdatedAt = updatedAt.UTC()
	return &u, nil
}

var _ domainuser.Repository = (*UserRepository)(nil)
