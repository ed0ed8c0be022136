package registry_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/parcel/internal/adapters/archive"
	"go.trai.ch/parcel/internal/adapters/registry"
	"go.trai.ch/parcel/internal/adapters/registry/registrytest"
	"go.trai.ch/parcel/internal/core/domain"
)

func fastBackOff() backoff.BackOff {
	return backoff.NewConstantBackOff(time.Millisecond)
}

func newClient(t *testing.T) (*registry.Client, *registrytest.Server) {
	t.Helper()
	srv := registrytest.New()
	t.Cleanup(srv.Close)
	return registry.NewClient(srv.URL, registry.WithBackOff(fastBackOff), registry.WithRetries(2)), srv
}

func session() *domain.Session {
	return domain.NewSession(registrytest.Email, registrytest.Token, "")
}

func buildArchive(t *testing.T, manifest string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, domain.ManifestFileName)
	require.NoError(t, os.WriteFile(path, []byte(manifest), 0o600))
	pkg, err := archive.New().Build(path)
	require.NoError(t, err)
	return pkg.Path
}

func TestClient_Search(t *testing.T) {
	c, srv := newClient(t)
	srv.Publish("foo", "1.0", "any", nil)
	srv.Publish("foo", "1.1-beta", "any", nil)
	srv.Publish("foo", "1.0", "linux-amd64", nil)

	idx, err := c.Search(t.Context(), "foo")
	require.NoError(t, err)

	entries := idx.Query("foo")
	require.Len(t, entries, 3)
	assert.Equal(t, "1.1.0-beta", entries[0].Version.String())
	assert.Equal(t, "any", entries[1].Platform)
	assert.Equal(t, "linux-amd64", entries[2].Platform)
}

func TestClient_SearchUnknownPackage(t *testing.T) {
	c, _ := newClient(t)

	idx, err := c.Search(t.Context(), "nope")
	require.NoError(t, err)
	assert.Zero(t, idx.Len())
}

func TestClient_SearchSkipsYanked(t *testing.T) {
	c, srv := newClient(t)
	srv.Publish("foo", "1.0", "any", nil)
	srv.Publish("foo", "2.0", "any", nil)
	_, err := c.Yank(t.Context(), session(), "foo", domain.MustParseVersion("2.0"))
	require.NoError(t, err)

	idx, err := c.Search(t.Context(), "foo")
	require.NoError(t, err)
	require.Equal(t, 1, idx.Len())
	assert.Equal(t, "1.0.0", idx.Query("foo")[0].Version.String())
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	c, srv := newClient(t)
	srv.Publish("foo", "1.0", "any", nil)
	srv.FailNext(2)

	idx, err := c.Search(t.Context(), "foo")
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())
}

func TestClient_GivesUpAfterRetries(t *testing.T) {
	c, srv := newClient(t)
	srv.FailNext(3)

	_, err := c.Search(t.Context(), "foo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNetwork))
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(srv.Close)
	c := registry.NewClient(srv.URL, registry.WithBackOff(fastBackOff), registry.WithRetries(5))

	_, err := c.Search(t.Context(), "foo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRegistryRequestFailed))
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	c := registry.NewClient(url, registry.WithBackOff(fastBackOff), registry.WithRetries(1))

	_, err := c.Search(t.Context(), "foo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNetwork))
}

func TestClient_Cancelled(t *testing.T) {
	c, srv := newClient(t)
	srv.FailNext(100)
	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := c.Search(ctx, "foo")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestClient_Download(t *testing.T) {
	c, srv := newClient(t)
	srv.Publish("foo", "1.0", "any", []byte("payload"))
	id := domain.PackageID{Name: "foo", Version: domain.MustParseVersion("1.0"), Platform: "any"}

	rc, err := c.Download(t.Context(), id)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, "payload", string(data))
	assert.Equal(t, 1, srv.Downloads("foo", "1.0"))

	id.Version = domain.MustParseVersion("9.9")
	_, err = c.Download(t.Context(), id)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestClient_Login(t *testing.T) {
	c, _ := newClient(t)

	s, err := c.Login(t.Context(), registrytest.Email, registrytest.Password)
	require.NoError(t, err)
	assert.True(t, s.Valid())
	assert.Equal(t, registrytest.Token, s.Token)
	assert.Equal(t, c.URL(), s.Registry)

	_, err = c.Login(t.Context(), registrytest.Email, "wrong")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrLoginFailed))
}

func TestClient_PushAndConflict(t *testing.T) {
	c, srv := newClient(t)
	path := buildArchive(t, "name: foo\nversion: 1.0\n")

	msg, err := c.Push(t.Context(), session(), path)
	require.NoError(t, err)
	assert.Equal(t, "published foo@1.0.0", msg)

	idx, err := c.Search(t.Context(), "foo")
	require.NoError(t, err)
	assert.Equal(t, 1, idx.Len())

	_, err = c.Push(t.Context(), session(), path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRegistryRequestFailed))
	assert.Zero(t, srv.TotalDownloads())
}

func TestClient_PushRetriesWithFreshBody(t *testing.T) {
	c, srv := newClient(t)
	path := buildArchive(t, "name: foo\nversion: 1.0\n")
	srv.FailNext(1)

	_, err := c.Push(t.Context(), session(), path)
	require.NoError(t, err)
}

func TestClient_RequiresSession(t *testing.T) {
	c, _ := newClient(t)
	v := domain.MustParseVersion("1.0")

	_, err := c.Push(t.Context(), nil, "x.pkg")
	assert.True(t, errors.Is(err, domain.ErrNotLoggedIn))

	s := session()
	s.Invalidate()
	_, err = c.Yank(t.Context(), s, "foo", v)
	assert.True(t, errors.Is(err, domain.ErrNotLoggedIn))
	_, err = c.Unyank(t.Context(), s, "foo", v)
	assert.True(t, errors.Is(err, domain.ErrNotLoggedIn))
}

func TestClient_BadToken(t *testing.T) {
	c, srv := newClient(t)
	srv.Publish("foo", "1.0", "any", nil)

	_, err := c.Yank(t.Context(), domain.NewSession("x", "bogus", ""), "foo", domain.MustParseVersion("1.0"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPermission))
}

func TestClient_UnyankIsIdempotent(t *testing.T) {
	c, srv := newClient(t)
	srv.Publish("foo", "1.0", "any", nil)
	v := domain.MustParseVersion("1.0")

	_, err := c.Yank(t.Context(), session(), "foo", v)
	require.NoError(t, err)
	assert.True(t, srv.Yanked("foo", "1.0"))

	_, err = c.Unyank(t.Context(), session(), "foo", v)
	require.NoError(t, err)
	assert.False(t, srv.Yanked("foo", "1.0"))

	msg, err := c.Unyank(t.Context(), session(), "foo", v)
	require.NoError(t, err)
	assert.Equal(t, "foo@1.0.0 is not yanked", msg)
}

func TestClient_YankUnknown(t *testing.T) {
	c, _ := newClient(t)

	_, err := c.Yank(t.Context(), session(), "foo", domain.MustParseVersion("1.0"))
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestClient_MalformedIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"name":"foo","versions":[{"version":"not.a.version.x"}]}`))
	}))
	t.Cleanup(srv.Close)
	c := registry.NewClient(srv.URL)

	_, err := c.Search(t.Context(), "foo")
	assert.True(t, errors.Is(err, domain.ErrRegistryParseFailed))
}
