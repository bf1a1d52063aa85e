package auth_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatfinder/internal/app/actor"
	"flatfinder/internal/app/services/auth"
	domainauth "flatfinder/internal/domain/auth"
	domainuser "flatfinder/internal/domain/user"
	"flatfinder/internal/infra/storage/memory"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type seqTokens struct{ n int }

func (g *seqTokens) NewToken() (string, error) {
	g.n++
	return fmt.Sprintf("tok-%d", g.n), nil
}

func newService() *auth.Service {
	return &auth.Service{
		Users:     memory.NewUserRepository(),
		Sessions:  memory.NewSessionStore(),
		Passwords: plainHasher{},
		Tokens:    &seqTokens{},
	}
}

func TestRegisterLoginResolve(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	reg, err := svc.Register(ctx, auth.RegisterParams{Email: " Ann@Example.com ", Name: "Ann", Password: "longenough", Role: "landlord"})
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", reg.User.Email)
	assert.Equal(t, []domainuser.Role{domainuser.RoleLandlord}, reg.User.Roles)

	login, err := svc.Login(ctx, auth.LoginParams{Email: "ann@example.com", Password: "longenough"})
	require.NoError(t, err)
	assert.NotEqual(t, reg.Token, login.Token)

	resolved, err := svc.ResolveToken(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, actor.Actor{UserID: string(reg.User.ID), Roles: []domainuser.Role{domainuser.RoleLandlord}}, resolved.Actor())

	require.NoError(t, svc.Logout(ctx, login.Token))
	_, err = svc.ResolveToken(ctx, login.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestRegisterRejections(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	_, err := svc.Register(ctx, auth.RegisterParams{Email: "a@b.c", Name: "A", Password: "short"})
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)

	_, err = svc.Register(ctx, auth.RegisterParams{Email: "a@b.c", Name: "A", Password: "longenough", Role: "admin"})
	assert.ErrorIs(t, err, auth.ErrRoleNotSelectable)

	_, err = svc.Register(ctx, auth.RegisterParams{Email: "a@b.c", Name: "A", Password: "longenough"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, auth.RegisterParams{Email: "A@B.C", Name: "B", Password: "longenough"})
	assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newService()
	ctx := context.Background()
	_, err := svc.Register(ctx, auth.RegisterParams{Email: "a@b.c", Name: "A", Password: "longenough"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, auth.LoginParams{Email: "a@b.c", Password: "nope-nope"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
	_, err = svc.Login(ctx, auth.LoginParams{Email: "who@b.c", Password: "longenough"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestEnsureAdmin(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	none, err := svc.EnsureAdmin(ctx, "", "")
	require.NoError(t, err)
	assert.Nil(t, none)

	admin, err := svc.EnsureAdmin(ctx, "root@flat.test", "supersecret")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	again, err := svc.EnsureAdmin(ctx, "root@flat.test", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	reg, err := svc.Register(ctx, auth.RegisterParams{Email: "ops@flat.test", Name: "Ops", Password: "longenough"})
	require.NoError(t, err)
	promoted, err := svc.EnsureAdmin(ctx, "ops@flat.test", "whatever1")
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, promoted.ID)
	assert.True(t, promoted.IsAdmin())
}

func TestMeRequiresActor(t *testing.T) {
	svc := newService()
	_, err := svc.Me(context.Background(), actor.Actor{})
	assert.ErrorIs(t, err, actor.ErrUnauthenticated)
}

func TestUnconfiguredService(t *testing.T) {
	svc := &auth.Service{}
	_, err := svc.Login(context.Background(), auth.LoginParams{Email: "a@b.c", Password: "longenough"})
	assert.ErrorIs(t, err, auth.ErrNotConfigured)
	_, err = svc.ResolveToken(context.Background(), "tok")
	assert.ErrorIs(t, err, auth.ErrNotConfigured)
}

func TestResolveBlankToken(t *testing.T) {
	_, err := newService().ResolveToken(context.Background(), "   ")
	assert.ErrorIs(t, err, domainauth.ErrTokenRequired)
}
