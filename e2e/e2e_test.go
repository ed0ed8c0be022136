//go:build e2e

package e2e_test

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/rogpeppe/go-internal/testscript"
	"go.trai.ch/parcel/internal/adapters/registry/registrytest"
)

var parcelBinary string

func TestMain(m *testing.M) {
	tmpDir, err := os.MkdirTemp("", "parcel-e2e-*")
	if err != nil {
		panic(err)
	}

	parcelBinary = filepath.Join(tmpDir, "parcel")

	//nolint:gosec // Building binary with static arguments, not user input
	cmd := exec.Command("go", "build", "-o", parcelBinary, "./cmd/parcel")
	cmd.Dir = ".."
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		panic("failed to build parcel binary: " + err.Error())
	}

	exitCode := m.Run()

	_ = os.RemoveAll(tmpDir)

	os.Exit(exitCode)
}

func TestScripts(t *testing.T) {
	testscript.Run(t, testscript.Params{
		Dir:   "testdata",
		Setup: setupE2E,
	})
}

// setupE2E gives every script its own registry, cache and home directory.
func setupE2E(env *testscript.Env) error {
	env.Setenv("NO_COLOR", "1")
	env.Setenv("CI", "true")

	binDir := filepath.Dir(parcelBinary)
	currentPath := env.Getenv("PATH")
	env.Setenv("PATH", binDir+string(os.PathListSeparator)+currentPath)

	homeDir := filepath.Join(env.WorkDir, ".home")
	if err := os.MkdirAll(homeDir, 0o750); err != nil {
		return err
	}
	env.Setenv("HOME", homeDir)

	srv := registrytest.New()
	env.Defer(srv.Close)
	env.Setenv("PARCEL_REGISTRY_URL", srv.URL)
	env.Setenv("PARCEL_CACHE_DIR", filepath.Join(env.WorkDir, ".cache"))
	env.Setenv("PARCEL_CONFIG", filepath.Join(homeDir, "config.yaml"))
	env.Setenv("PARCEL_RETRIES", "0")

	return nil
}
