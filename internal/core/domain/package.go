// Package domain contains the core types of the package client: versions, constraints,
// package specs, indexes and cache entries.
package domain

import (
	"fmt"
	"regexp"
)

// PlatformAny is the platform of packages that run everywhere.
const PlatformAny = "any"

var validNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// ValidName reports whether name is acceptable as a package name or platform.
func ValidName(name string) bool {
	return validNameRegex.MatchString(name)
}

// PackageID is the identity of a package: name, version and platform.
type PackageID struct {
	Name     string
	Version  Version
	Platform string
}

// Key returns a stable string form of the identity, usable as a map key or
// slash separated relative path. Names and platforms cannot contain a slash and
// versions cannot either, so distinct identities never share a key.
func (id PackageID) Key() string {
	return id.Name + "/" + id.Version.String() + "/" + id.platform()
}

// String renders the identity as "name@version (platform)".
func (id PackageID) String() string {
	if id.platform() == PlatformAny {
		return id.Name + "@" + id.Version.String()
	}
	return fmt.Sprintf("%s@%s (%s)", id.Name, id.Version, id.platform())
}

// Equal reports whether two identities are the same.
func (id PackageID) Equal(other PackageID) bool {
	return id.Name == other.Name && id.platform() == other.platform() && id.Version.EQ(other.Version)
}

func (id PackageID) platform() string {
	if id.Platform == "" {
		return PlatformAny
	}
	return id.Platform
}

// Dependency is a requirement on another package.
type Dependency struct {
	Name       string
	Constraint Constraint
}

// String renders the dependency as "name constraint".
func (d Dependency) String() string {
	return d.Name + " " + d.Constraint.String()
}

// PackageSpec describes a concrete package. It is immutable once constructed.
type PackageSpec struct {
	id           PackageID
	dependencies []Dependency
}

// NewPackageSpec builds a spec. The dependency slice is copied.
func NewPackageSpec(name string, version Version, platform string, deps []Dependency) PackageSpec {
	if platform == "" {
		platform = PlatformAny
	}
	owned := make([]Dependency, len(deps))
	copy(owned, deps)
	return PackageSpec{
		id:           PackageID{Name: name, Version: version, Platform: platform},
		dependencies: owned,
	}
}

// ID returns the identity of the spec.
func (s PackageSpec) ID() PackageID { return s.id }

// Name returns the package name.
func (s PackageSpec) Name() string { return s.id.Name }

// Version returns the package version.
func (s PackageSpec) Version() Version { return s.id.Version }

// Platform returns the package platform.
func (s PackageSpec) Platform() string { return s.id.platform() }

// Dependencies returns a copy of the ordered dependency list.
func (s PackageSpec) Dependencies() []Dependency {
	out := make([]Dependency, len(s.dependencies))
	copy(out, s.dependencies)
	return out
}

// String renders the spec identity.
func (s PackageSpec) String() string { return s.id.String() }

// SameAs reports whether two specs describe the same package with the same dependencies.
func (s PackageSpec) SameAs(other PackageSpec) bool {
	if !s.id.Equal(other.id) || len(s.dependencies) != len(other.dependencies) {
		return false
	}
	for i, dep := range s.dependencies {
		o := other.dependencies[i]
		if dep.Name != o.Name || dep.Constraint.String() != o.Constraint.String() {
			return false
		}
	}
	return true
}
