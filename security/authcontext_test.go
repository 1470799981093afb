package security

import (
	"os"
	"testing"
	"time"

	"axiapac.com/timeclock/timeclock/v1/common/role"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthContextSignInAndRestore(t *testing.T) {
	dir := t.TempDir()
	store := NewFileCredentialStore(dir)
	token, err := CreateIdentityToken(Identity{UserID: "u-1", Role: role.Field}, testSecret, time.Hour)
	require.NoError(t, err)

	auth := NewAuthContext(store)
	assert.ErrorIs(t, auth.Restore(), ErrNoCredentials)

	require.NoError(t, auth.SignIn(token, "u-1", role.Field, time.Time{}))
	assert.Equal(t, token, auth.Token())
	id, ok := auth.Identity()
	require.True(t, ok)
	assert.Equal(t, "u-1", id.UserID)

	info, err := os.Stat(store.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	restored := NewAuthContext(store)
	require.NoError(t, restored.Restore())
	assert.Equal(t, token, restored.Token())
	rid, _ := restored.Identity()
	assert.Equal(t, role.Field, rid.Role)
}

func TestAuthContextLogoutClearsEverything(t *testing.T) {
	store := NewFileCredentialStore(t.TempDir())
	auth := NewAuthContext(store)
	require.NoError(t, auth.SignIn("opaque", "u-2", role.Admin, time.Now().Add(time.Hour)))

	require.NoError(t, auth.Logout())
	assert.Empty(t, auth.Token())
	_, ok := auth.Identity()
	assert.False(t, ok)

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoCredentials)
}

func TestAuthContextRequire(t *testing.T) {
	auth := NewAuthContext(nil)
	_, err := auth.Require(time.Now())
	assert.ErrorIs(t, err, ErrNoCredentials)

	require.NoError(t, auth.SignIn("opaque", "u-3", role.Office, time.Now().Add(-time.Minute)))
	_, err = auth.Require(time.Now())
	assert.ErrorIs(t, err, ErrNoCredentials)

	require.NoError(t, auth.SignIn("opaque", "u-3", role.Office, time.Now().Add(time.Hour)))
	id, err := auth.Require(time.Now())
	require.NoError(t, err)
	assert.Equal(t, "u-3", id.UserID)
}

func TestAuthContextSignInRejectsUnknownRole(t *testing.T) {
	auth := NewAuthContext(nil)
	err := auth.SignIn("opaque", "u", role.Role("boss"), time.Time{})
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Empty(t, auth.Token())
}
