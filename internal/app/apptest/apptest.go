// Package apptest assembles an App against an in-memory registry for tests.
package apptest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.trai.ch/parcel/internal/adapters/archive"
	"go.trai.ch/parcel/internal/adapters/cas"
	"go.trai.ch/parcel/internal/adapters/config"
	"go.trai.ch/parcel/internal/adapters/registry"
	"go.trai.ch/parcel/internal/adapters/registry/registrytest"
	"go.trai.ch/parcel/internal/adapters/telemetry"
	"go.trai.ch/parcel/internal/app"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports/mocks"
	"go.trai.ch/parcel/internal/engine/fetcher"
	"go.trai.ch/parcel/internal/engine/installer"
	"go.trai.ch/parcel/internal/engine/resolver"
	"go.uber.org/mock/gomock"
)

// Fixture is an App wired to real adapters, a test registry and mocked terminal collaborators.
// Debug logging is always allowed; other log calls need expectations.
type Fixture struct {
	App      *app.App
	Server   *registrytest.Server
	Settings *domain.Settings
	Prompter *mocks.MockPrompter
	Logger   *mocks.MockLogger
	// WorkDir is the working directory of App.
	WorkDir string
}

func fastBackOff() backoff.BackOff {
	return backoff.NewConstantBackOff(time.Millisecond)
}

// New creates a Fixture. Everything it creates is released with the test.
func New(t *testing.T) *Fixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Debug(gomock.Any(), gomock.Any()).AnyTimes()
	prompter := mocks.NewMockPrompter(ctrl)

	srv := registrytest.New()
	t.Cleanup(srv.Close)

	settings := &domain.Settings{
		CacheDir:    t.TempDir(),
		RegistryURL: srv.URL,
		Workers:     2,
		Retries:     1,
	}
	cache, err := cas.NewStore(settings.CacheDir, nil)
	if err != nil {
		t.Fatalf("create cache: %v", err)
	}

	arc := archive.New()
	tracer := telemetry.NewNoOpTracer()
	client := registry.NewClient(srv.URL, registry.WithBackOff(fastBackOff))
	f := fetcher.New(client, cache, arc, tracer, log, fetcher.WithBackOff(fastBackOff))
	res := resolver.New(cache, client, f, settings, tracer, log)
	inst := installer.New(res, tracer, log, settings.Workers)

	workDir := t.TempDir()
	a := app.New(settings, config.NewLocator(), cache, client, arc, arc, prompter, inst, log).WithWorkDir(workDir)
	return &Fixture{App: a, Server: srv, Settings: settings, Prompter: prompter, Logger: log, WorkDir: workDir}
}

// WriteProject writes the project manifest into WorkDir.
func (f *Fixture) WriteProject(t *testing.T, manifest string) {
	t.Helper()
	path := filepath.Join(f.WorkDir, domain.ManifestFileName)
	if err := os.WriteFile(path, []byte(manifest), 0o600); err != nil {
		t.Fatalf("write project: %v", err)
	}
}

// ExpectCredentials expects one interactive login prompt answered with email and password.
func (f *Fixture) ExpectCredentials(email, password string) {
	gomock.InOrder(
		f.Prompter.EXPECT().Prompt("Email: ").Return(email, nil),
		f.Prompter.EXPECT().PromptSecret("Password: ").Return(password, nil),
	)
}

// Manifest renders a manifest. deps alternates dependency names and constraints.
func Manifest(name, version string, deps ...string) string {
	s := "name: " + name + "\nversion: " + version + "\n"
	if len(deps) > 0 {
		s += "dependencies:\n"
		for i := 0; i+1 < len(deps); i += 2 {
			s += "  - name: " + deps[i] + "\n    version: " + deps[i+1] + "\n"
		}
	}
	return s
}
