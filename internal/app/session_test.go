package app_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/parcel/internal/adapters/registry/registrytest"
	"go.trai.ch/parcel/internal/app"
	"go.trai.ch/parcel/internal/app/apptest"
	"go.trai.ch/parcel/internal/core/domain"
	"go.uber.org/mock/gomock"
)

func TestLogin_RetriesRejectedCredentials(t *testing.T) {
	f := apptest.New(t)
	f.ExpectCredentials(registrytest.Email, "wrong")
	f.ExpectCredentials(registrytest.Email, registrytest.Password)
	f.Logger.EXPECT().Warn("invalid email or password, try again")

	session, err := f.App.Login(t.Context())
	require.NoError(t, err)
	assert.True(t, session.Valid())
	assert.Equal(t, registrytest.Email, session.Email)
	assert.Equal(t, 2, f.Server.Logins())

	f.App.Logout(session)
	assert.False(t, session.Valid())
}

func TestLogin_GivesUp(t *testing.T) {
	f := apptest.New(t)
	for range 3 {
		f.ExpectCredentials("nobody@example.com", "wrong")
	}
	f.Logger.EXPECT().Warn(gomock.Any()).Times(2)

	_, err := f.App.Login(t.Context())
	require.ErrorIs(t, err, domain.ErrLoginFailed)
	assert.Equal(t, 3, f.Server.Logins())
}

func TestLogin_Cancelled(t *testing.T) {
	f := apptest.New(t)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := f.App.Login(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.Server.Logins())
}

func TestLogin_ConfiguredToken(t *testing.T) {
	f := apptest.New(t)
	f.Settings.Token = registrytest.Token

	session, err := f.App.Login(t.Context())
	require.NoError(t, err)
	assert.Equal(t, registrytest.Token, session.Token)
	assert.Zero(t, f.Server.Logins())
}

func TestPush(t *testing.T) {
	f := apptest.New(t)
	f.WriteProject(t, apptest.Manifest("foo", "1.0"))
	pkg, err := f.App.Build(t.Context(), "")
	require.NoError(t, err)

	f.ExpectCredentials(registrytest.Email, registrytest.Password)
	msg, err := f.App.Push(t.Context(), filepath.Base(pkg.Path))
	require.NoError(t, err)
	assert.Equal(t, "published foo@1.0.0", msg)

	listings, err := f.App.List(t.Context(), []string{"foo"})
	require.NoError(t, err)
	require.Len(t, listings, 1)
	assert.Len(t, listings[0].Versions, 1)
}

func TestPush_CorruptArchiveSkipsLogin(t *testing.T) {
	f := apptest.New(t)
	path := filepath.Join(f.WorkDir, "broken.pkg")
	require.NoError(t, os.WriteFile(path, []byte("not an archive"), 0o600))

	_, err := f.App.Push(t.Context(), path)
	require.ErrorIs(t, err, domain.ErrCorruptArchive)
	assert.Zero(t, f.Server.Logins())
}

func TestYank(t *testing.T) {
	f := apptest.New(t)
	f.Settings.Token = registrytest.Token
	f.Server.PublishManifest(t, apptest.Manifest("foo", "1.0"))

	_, err := f.App.Yank(t.Context(), "foo", "1.0", false)
	require.NoError(t, err)
	assert.True(t, f.Server.Yanked("foo", "1.0"))

	_, err = f.App.Fetch(t.Context(), []string{"foo"}, app.FetchOptions{})
	require.ErrorIs(t, err, domain.ErrBatchFailed)

	for range 2 {
		_, err = f.App.Yank(t.Context(), "foo", "1.0", true)
		require.NoError(t, err)
	}
	assert.False(t, f.Server.Yanked("foo", "1.0"))
}

func TestYank_InvalidVersion(t *testing.T) {
	f := apptest.New(t)

	_, err := f.App.Yank(t.Context(), "foo", "one", false)
	require.ErrorIs(t, err, domain.ErrInvalidVersion)
}
