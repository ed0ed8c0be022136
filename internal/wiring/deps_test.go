package wiring_test

import (
	"path/filepath"
	"testing"

	"github.com/grindlemire/graft"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/parcel/internal/app"
	_ "go.trai.ch/parcel/internal/wiring"
)

// TestGraftDependencies ensures that the dependency injection graph is valid
// at compile/test time. It checks that every node declaring a dependency
// actually uses it, and every used dependency is declared.
func TestGraftDependencies(t *testing.T) {
	// graft.AssertDepsValid has a limitation/bug where it infers the dependency ID
	// from the package name of the interface used in Dep[T].
	// Since we use `ports.Registry`, `ports.Logger`, etc., it expects a dependency named "ports".
	// This makes it incompatible with our architecture where multiple distinct nodes
	// implement interfaces from the same `ports` package.
	t.Skip("Skipping Graft validation due to static analysis limitation with shared ports package")
	graft.AssertDepsValid(t, "../../internal")
}

func TestGraphBuildsComponents(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("PARCEL_CONFIG", filepath.Join(tmpDir, "config.yaml"))
	t.Setenv("PARCEL_CACHE_DIR", filepath.Join(tmpDir, "cache"))

	components, _, err := graft.ExecuteFor[*app.Components](t.Context())
	require.NoError(t, err)

	assert.NotNil(t, components.App)
	assert.NotNil(t, components.Logger)
	assert.Equal(t, filepath.Join(tmpDir, "cache"), components.Settings.CacheDir)
}
