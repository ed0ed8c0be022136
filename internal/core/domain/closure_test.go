package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/zerr"
)

func spec(name, version string, deps ...domain.Dependency) domain.PackageSpec {
	return domain.NewPackageSpec(name, domain.MustParseVersion(version), domain.PlatformAny, deps)
}

func dep(name, constraint string) domain.Dependency {
	return domain.Dependency{Name: name, Constraint: domain.MustParseConstraint(constraint)}
}

func TestClosure_OrderIsDependenciesFirst(t *testing.T) {
	c := domain.NewClosure()

	c.Enter(spec("app", "1.0"))
	c.Enter(spec("lib", "2.0"))
	c.Enter(spec("base", "0.1"))
	c.Leave()
	c.Leave()
	c.Leave()

	var names []string
	for _, s := range c.Order() {
		names = append(names, s.Name())
	}
	assert.Equal(t, []string{"base", "lib", "app"}, names)
	assert.Zero(t, c.Depth())
}

func TestClosure_DetectsCycle(t *testing.T) {
	c := domain.NewClosure()
	c.Enter(spec("a", "1.0"))
	c.Enter(spec("b", "1.0"))

	known, err := c.Check(dep("a", ""), false)
	require.Error(t, err)
	assert.True(t, known)
	assert.True(t, errors.Is(err, domain.ErrCyclicDependency))

	var zErr *zerr.Error
	require.True(t, errors.As(err, &zErr))
	assert.Equal(t, "a -> b -> a", zErr.Metadata()["cycle"])
}

func TestClosure_ConflictingRequirement(t *testing.T) {
	c := domain.NewClosure()
	c.Enter(spec("app", "1.0"))
	c.Enter(spec("lib", "1.0"))
	c.Leave()

	known, err := c.Check(dep("lib", ">= 1.0"), false)
	require.NoError(t, err)
	assert.True(t, known)

	_, err = c.Check(dep("lib", ">= 2.0"), false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrUnresolved))
}

func TestClosure_UnknownDependency(t *testing.T) {
	c := domain.NewClosure()
	c.Enter(spec("app", "1.0"))

	known, err := c.Check(dep("other", ""), false)
	require.NoError(t, err)
	assert.False(t, known)
}
