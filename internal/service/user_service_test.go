//go:build integration

package service

import (
	"context"
	"go-blog-app/internal/auth"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	m, err := env.users.Register(ctx, " alice ", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "alice", m.Username)
	assert.False(t, m.IsAuthor())
	assert.Equal(t, auth.RoleReader, m.Role())

	_, err = env.users.Register(ctx, "alice", "other")
	assert.ErrorIs(t, err, ErrUsernameTaken)
	_, err = env.users.Register(ctx, "", "x")
	assert.ErrorIs(t, err, ErrInvalidInput)

	got, err := env.users.Authenticate(ctx, "alice", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, m.ID, got.ID)

	_, err = env.users.Authenticate(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
	_, err = env.users.Authenticate(ctx, "nobody", "x")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUserService_EnsureAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	assert.Equal(t, int64(1), env.author.ID)
	assert.Equal(t, auth.RoleAuthor, env.author.Role())

	// Running again is a no-op.
	require.NoError(t, env.users.EnsureAuthor(ctx))
	id, err := env.users.Identify(ctx, 1)
	require.NoError(t, err)
	assert.True(t, id.IsAuthor())
}

func TestUserService_AuthorNeedsMatchingID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.cfg.Author.UserID = 99
	id, err := env.users.Identify(ctx, 1)
	require.NoError(t, err)
	assert.False(t, id.IsAuthor(), "username alone does not grant publishing")
}

func TestUserService_Identify(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.reader(t, "alice")

	id, err := env.users.Identify(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, auth.Anonymous{}, id)

	id, err = env.users.Identify(ctx, 4242)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleAnonymous, id.Role(), "stale session ids are anonymous")

	id, err = env.users.Identify(ctx, alice.ID)
	require.NoError(t, err)
	uid, ok := id.UserID()
	assert.True(t, ok)
	assert.Equal(t, alice.ID, uid)
	assert.Equal(t, auth.RoleReader, id.Role())
}

func TestUserService_LoginExternal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.users.LoginExternal(ctx, "sso-user")
	require.NoError(t, err)
	again, err := env.users.LoginExternal(ctx, "sso-user")
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.False(t, again.IsAuthor())

	_, err = env.users.Authenticate(ctx, "sso-user", "")
	assert.ErrorIs(t, err, ErrUnauthorized, "external accounts have no password")

	_, err = env.users.LoginExternal(ctx, "Dexter")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestUserService_LoginExternalCannotClaimAuthorByCase(t *testing.T) {
	env := newCaseInsensitiveEnv(t)
	ctx := context.Background()
	alice := env.reader(t, "Alice")

	for _, name := range []string{"dexter", "DEXTER", " Dexter "} {
		m, err := env.users.LoginExternal(ctx, name)
		assert.ErrorIs(t, err, ErrUnauthorized, name)
		assert.False(t, m.IsAuthor(), name)
	}

	// A differently cased name must not take over an existing account either.
	m, err := env.users.LoginExternal(ctx, "alice")
	assert.ErrorIs(t, err, ErrUnauthorized)
	assert.NotEqual(t, alice.ID, m.ID)

	m, err = env.users.LoginExternal(ctx, "Alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, m.ID)
	assert.False(t, m.IsAuthor())
}
