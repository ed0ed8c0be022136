package domain

import (
	"strings"

	"github.com/blang/semver"
)

// Version is a semantic version: major, minor, patch and an optional prerelease tag.
type Version = semver.Version

// ParseVersion parses a version string.
// Short forms are padded ("1.2" is "1.2.0") and may carry a prerelease tag ("1.1-beta").
func ParseVersion(text string) (Version, error) {
	s := strings.TrimPrefix(strings.TrimSpace(text), "v")
	if s == "" {
		return Version{}, Fail(ErrInvalidVersion, "empty version")
	}

	core, suffix := s, ""
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		core, suffix = s[:i], s[i:]
	}

	parts := strings.Split(core, ".")
	if len(parts) > 3 {
		return Version{}, Fail(ErrInvalidVersion, "too many version segments", "version", text)
	}
	for len(parts) < 3 {
		parts = append(parts, "0")
	}

	v, err := semver.Parse(strings.Join(parts, ".") + suffix)
	if err != nil {
		return Version{}, Fail(ErrInvalidVersion, err.Error(), "version", text)
	}
	return v, nil
}

// MustParseVersion is like ParseVersion but panics on malformed input.
// It is intended for literals.
func MustParseVersion(text string) Version {
	v, err := ParseVersion(text)
	if err != nil {
		panic(err)
	}
	return v
}

// IsPrerelease reports whether v carries a prerelease tag.
func IsPrerelease(v Version) bool {
	return len(v.Pre) > 0
}

// segments returns how many dot separated numeric segments text spells out.
func segments(text string) int {
	s := strings.TrimPrefix(strings.TrimSpace(text), "v")
	if i := strings.IndexAny(s, "-+"); i >= 0 {
		s = s[:i]
	}
	return len(strings.Split(s, "."))
}
