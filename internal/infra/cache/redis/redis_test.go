package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flatfinder/internal/app/middleware"
	domainauth "flatfinder/internal/domain/auth"
	domainuser "flatfinder/internal/domain/user"
)

// These tests need a live server; set REDIS_ADDR to run them.
func openTestClient(t *testing.T) *SessionStore {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	client, err := Open(context.Background(), Options{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionStore(client, "test-sess-"+uuid.NewString())
}

func TestSessionStore_RoundTrip(t *testing.T) {
	store := openTestClient(t)
	ctx := context.Background()

	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  "tok-1",
		UserID: "u-1",
		Roles:  []domainuser.Role{domainuser.RoleLandlord},
		TTL:    time.Minute,
	})
	require.NoError(t, err)
	require.NoError(t, store.Save(ctx, session))

	got, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.Equal(t, domainuser.ID("u-1"), got.UserID)
	assert.Equal(t, []domainuser.Role{domainuser.RoleLandlord}, got.Roles)

	require.NoError(t, store.DeleteByUser(ctx, "u-1"))
	_, err = store.Get(ctx, "tok-1")
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestIdempotencyStore_KeepsFirstRecord(t *testing.T) {
	sessions := openTestClient(t)
	store := NewIdempotencyStore(sessions.rdb, "test-idem-"+uuid.NewString(), time.Minute)
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.Save(ctx, middleware.IdempotencyRecord{Key: "k", Payload: []byte(`{"a":1}`), OccurredAt: time.Now()}))
	require.NoError(t, store.Save(ctx, middleware.IdempotencyRecord{Key: "k", Payload: []byte(`{"a":2}`), OccurredAt: time.Now()}))

	rec, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.JSONEq(t, `{"a":1}`, string(rec.Payload))
}
