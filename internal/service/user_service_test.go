package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authgate/internal/security"
	"authgate/internal/service"
)

func newUserFixture(t *testing.T) (*service.UserService, fixture) {
	t.Helper()
	f := newFixture(t)
	return service.NewUserService(f.users, f.sessions, zerolog.Nop()), f
}

func TestUserServiceGet(t *testing.T) {
	svc, f := newUserFixture(t)
	f.register(t, "alice", "a@x.com", "password123")

	user, err := svc.Get(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.Get(context.Background(), "nobody")
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

func TestUserServiceList(t *testing.T) {
	svc, f := newUserFixture(t)
	f.register(t, "alice", "a@x.com", "password123")
	f.register(t, "bob", "b@x.com", "password123")
	f.register(t, "carol", "c@x.com", "password123")

	users, err := svc.List(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	users, err = svc.List(context.Background(), 10, 2)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestSetActiveRevokesSessions(t *testing.T) {
	svc, f := newUserFixture(t)
	user := f.register(t, "alice", "a@x.com", "password123")

	pair, err := f.auth.Authenticate(context.Background(), "alice", "password123")
	require.NoError(t, err)
	require.Equal(t, 1, f.sessions.count())

	require.NoError(t, svc.SetActive(context.Background(), user.ID, false))

	assert.Zero(t, f.sessions.count())
	_, err = f.auth.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, service.ErrSessionNotFound)
}

func TestSetActiveReactivate(t *testing.T) {
	svc, f := newUserFixture(t)
	user := f.register(t, "alice", "a@x.com", "password123")

	require.NoError(t, svc.SetActive(context.Background(), user.ID, false))
	require.NoError(t, svc.SetActive(context.Background(), user.ID, true))

	_, err := f.auth.Authenticate(context.Background(), "alice", "password123")
	require.NoError(t, err)
}

func TestSetActiveUnknownUser(t *testing.T) {
	svc, _ := newUserFixture(t)

	err := svc.SetActive(context.Background(), "missing-id", false)
	assert.ErrorIs(t, err, service.ErrUserNotFound)
}

// Deactivation must invalidate outstanding access tokens as soon as they
// are checked, regardless of their remaining signed lifetime.
func TestDeactivationBlocksAccessToken(t *testing.T) {
	svc, f := newUserFixture(t)
	user := f.register(t, "alice", "a@x.com", "password123")

	minter, err := security.NewTokenMinter("test-signing-secret", "HS256", time.Hour)
	require.NoError(t, err)
	token, err := minter.Mint("alice")
	require.NoError(t, err)

	_, err = f.auth.AuthenticatedUser(context.Background(), token)
	require.NoError(t, err)

	require.NoError(t, svc.SetActive(context.Background(), user.ID, false))

	_, err = f.auth.AuthenticatedUser(context.Background(), token)
	assert.ErrorIs(t, err, service.ErrUserInactive)
}
