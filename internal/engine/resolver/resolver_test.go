package resolver_test

import (
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/parcel/internal/adapters/archive"
	"go.trai.ch/parcel/internal/adapters/cas"
	"go.trai.ch/parcel/internal/adapters/registry"
	"go.trai.ch/parcel/internal/adapters/registry/registrytest"
	"go.trai.ch/parcel/internal/adapters/telemetry"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports/mocks"
	"go.trai.ch/parcel/internal/engine/fetcher"
	"go.trai.ch/parcel/internal/engine/resolver"
	"go.uber.org/mock/gomock"
)

func fastBackOff() backoff.BackOff {
	return backoff.NewConstantBackOff(time.Millisecond)
}

type env struct {
	resolver *resolver.Resolver
	fetcher  *fetcher.Fetcher
	server   *registrytest.Server
}

func newEnv(t *testing.T, platforms ...string) *env {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()

	srv := registrytest.New()
	t.Cleanup(srv.Close)
	cache, err := cas.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	client := registry.NewClient(srv.URL, registry.WithBackOff(fastBackOff))
	tracer := telemetry.NewNoOpTracer()
	f := fetcher.New(client, cache, archive.New(), tracer, log, fetcher.WithBackOff(fastBackOff))
	settings := &domain.Settings{Platforms: platforms}
	return &env{
		resolver: resolver.New(cache, client, f, settings, tracer, log),
		fetcher:  f,
		server:   srv,
	}
}

func manifest(name, version string) string {
	return "name: " + name + "\nversion: " + version + "\n"
}

func (e *env) warm(t *testing.T, name, version string) {
	t.Helper()
	_, err := e.fetcher.Fetch(t.Context(), domain.PackageID{
		Name:     name,
		Version:  domain.MustParseVersion(version),
		Platform: domain.PlatformAny,
	})
	require.NoError(t, err)
}

func TestResolver_FetchesHighestRemoteWhenCacheDoesNotSatisfy(t *testing.T) {
	e := newEnv(t)
	e.server.PublishManifest(t, manifest("foo", "0.9"))
	e.warm(t, "foo", "0.9")
	e.server.PublishManifest(t, manifest("foo", "1.0"))
	e.server.PublishManifest(t, manifest("foo", "1.1-beta"))

	spec, err := e.resolver.Resolve(t.Context(), "foo", domain.MustParseConstraint(">= 1.0"), false)
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", spec.Version().String())
	assert.Equal(t, 1, e.server.Downloads("foo", "1.0"))
	assert.Zero(t, e.server.Downloads("foo", "1.1-beta"))
}

func TestResolver_PrefersCachedMatch(t *testing.T) {
	e := newEnv(t)
	e.server.PublishManifest(t, manifest("foo", "1.0"))
	e.warm(t, "foo", "1.0")
	e.server.PublishManifest(t, manifest("foo", "1.2"))

	sel, err := e.resolver.Select(t.Context(), "foo", domain.MustParseConstraint(">= 1.0"), false)
	require.NoError(t, err)
	assert.True(t, sel.Local())
	assert.Equal(t, "1.0.0", sel.ID.Version.String())

	spec, err := e.resolver.Resolve(t.Context(), "foo", domain.MustParseConstraint(">= 1.0"), false)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", spec.Version().String())
	assert.Equal(t, 1, e.server.TotalDownloads())
}

func TestResolver_SelectsMaximalVersion(t *testing.T) {
	e := newEnv(t)
	for _, v := range []string{"1.0", "1.4.2", "1.10", "2.0"} {
		e.server.PublishManifest(t, manifest("foo", v))
	}

	sel, err := e.resolver.Select(t.Context(), "foo", domain.MustParseConstraint("~> 1.0"), false)
	require.NoError(t, err)

	assert.False(t, sel.Local())
	assert.Equal(t, "1.10.0", sel.ID.Version.String())
	assert.Zero(t, e.server.TotalDownloads())
}

func TestResolver_Prereleases(t *testing.T) {
	e := newEnv(t)
	e.server.PublishManifest(t, manifest("foo", "1.0"))
	e.server.PublishManifest(t, manifest("foo", "1.1-beta"))

	sel, err := e.resolver.Select(t.Context(), "foo", domain.AnyVersion(), false)
	require.NoError(t, err)
	assert.Equal(t, "1.0.0", sel.ID.Version.String())

	sel, err = e.resolver.Select(t.Context(), "foo", domain.AnyVersion(), true)
	require.NoError(t, err)
	assert.Equal(t, "1.1.0-beta", sel.ID.Version.String())
}

func TestResolver_PlatformPreference(t *testing.T) {
	e := newEnv(t, "linux-amd64", domain.PlatformAny)
	e.server.PublishManifest(t, manifest("foo", "1.0"))
	e.server.PublishManifest(t, manifest("foo", "1.0")+"platform: linux-amd64\n")
	e.server.PublishManifest(t, manifest("foo", "2.0")+"platform: windows-arm64\n")

	sel, err := e.resolver.Select(t.Context(), "foo", domain.AnyVersion(), false)
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", sel.ID.Version.String())
	assert.Equal(t, "linux-amd64", sel.ID.Platform)
}

func TestResolver_Unresolved(t *testing.T) {
	e := newEnv(t)
	e.server.PublishManifest(t, manifest("foo", "0.5"))

	_, err := e.resolver.Resolve(t.Context(), "foo", domain.MustParseConstraint(">= 1.0"), false)
	require.ErrorIs(t, err, domain.ErrUnresolved)

	_, err = e.resolver.Resolve(t.Context(), "missing", domain.AnyVersion(), false)
	require.ErrorIs(t, err, domain.ErrUnresolved)
	assert.Zero(t, e.server.TotalDownloads())
}
