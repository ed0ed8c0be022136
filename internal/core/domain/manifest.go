package domain

import (
	"fmt"
	"path"
	"strings"
)

// Manifest is the YAML description of a package or project (parcel.yaml).
// Files lists payload paths relative to the manifest directory.
type Manifest struct {
	Name         string               `yaml:"name"`
	Version      string               `yaml:"version"`
	Platform     string               `yaml:"platform,omitempty"`
	Description  string               `yaml:"description,omitempty"`
	Dependencies []ManifestDependency `yaml:"dependencies,omitempty"`
	Files        []string             `yaml:"files,omitempty"`
}

// ManifestDependency is a dependency as written in a manifest.
type ManifestDependency struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version,omitempty"`
}

// ValidationError lists every problem found in a manifest.
type ValidationError struct {
	Problems []string
}

// Error joins the problems into one message.
func (e *ValidationError) Error() string {
	return ErrValidation.Error() + ": " + strings.Join(e.Problems, "; ")
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// Validate checks the manifest and builds the spec it describes.
// All problems are collected before returning.
func (m *Manifest) Validate() (PackageSpec, error) {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	switch {
	case m.Name == "":
		addf("name is required")
	case !ValidName(m.Name):
		addf("name %q contains invalid characters", m.Name)
	}

	var version Version
	if m.Version == "" {
		addf("version is required")
	} else if v, err := ParseVersion(m.Version); err != nil {
		addf("version %q is not a valid version", m.Version)
	} else {
		version = v
	}

	platform := m.Platform
	if platform == "" {
		platform = PlatformAny
	} else if !ValidName(platform) {
		addf("platform %q contains invalid characters", platform)
	}

	seen := make(map[string]bool, len(m.Dependencies))
	deps := make([]Dependency, 0, len(m.Dependencies))
	for i, d := range m.Dependencies {
		switch {
		case d.Name == "":
			addf("dependency %d has no name", i+1)
			continue
		case !ValidName(d.Name):
			addf("dependency name %q contains invalid characters", d.Name)
		case d.Name == m.Name:
			addf("package %q depends on itself", d.Name)
		case seen[d.Name]:
			addf("dependency %q is listed more than once", d.Name)
		}
		seen[d.Name] = true

		c, err := ParseConstraint(d.Version)
		if err != nil {
			addf("dependency %q has invalid constraint %q", d.Name, d.Version)
			continue
		}
		deps = append(deps, Dependency{Name: d.Name, Constraint: c})
	}

	for _, f := range m.Files {
		clean := path.Clean(f)
		if f == "" || path.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, "../") {
			addf("file %q must be a relative path inside the package", f)
		}
	}

	if len(problems) > 0 {
		return PackageSpec{}, &ValidationError{Problems: problems}
	}
	return NewPackageSpec(m.Name, version, platform, deps), nil
}

// ManifestFor renders spec as a manifest listing files.
func ManifestFor(spec PackageSpec, files []string) *Manifest {
	m := &Manifest{
		Name:    spec.Name(),
		Version: spec.Version().String(),
		Files:   files,
	}
	if spec.Platform() != PlatformAny {
		m.Platform = spec.Platform()
	}
	for _, d := range spec.Dependencies() {
		md := ManifestDependency{Name: d.Name}
		if !d.Constraint.IsDefault() {
			md.Version = d.Constraint.String()
		}
		m.Dependencies = append(m.Dependencies, md)
	}
	return m
}

// SetDependency adds or replaces the dependency called name.
func (m *Manifest) SetDependency(name string, c Constraint) {
	version := ""
	if !c.IsDefault() {
		version = c.String()
	}
	for i := range m.Dependencies {
		if m.Dependencies[i].Name == name {
			m.Dependencies[i].Version = version
			return
		}
	}
	m.Dependencies = append(m.Dependencies, ManifestDependency{Name: name, Version: version})
}
