package cas

import (
	"time"

	"go.trai.ch/parcel/internal/core/domain"
)

// metaRecord is the on-disk form of a cache entry (meta.json).
type metaRecord struct {
	Name         string           `json:"name"`
	Version      string           `json:"version"`
	Platform     string           `json:"platform"`
	Dependencies []metaDependency `json:"dependencies,omitempty"`
	FetchedAt    time.Time        `json:"fetched_at"`
	Checksum     string           `json:"checksum"`
	Unpacked     bool             `json:"unpacked,omitempty"`
}

type metaDependency struct {
	Name       string `json:"name"`
	Constraint string `json:"constraint"`
}

func newMetaRecord(spec domain.PackageSpec, fetchedAt time.Time, checksum string, unpacked bool) metaRecord {
	m := metaRecord{
		Name:      spec.Name(),
		Version:   spec.Version().String(),
		Platform:  spec.Platform(),
		FetchedAt: fetchedAt.UTC(),
		Checksum:  checksum,
		Unpacked:  unpacked,
	}
	for _, d := range spec.Dependencies() {
		m.Dependencies = append(m.Dependencies, metaDependency{Name: d.Name, Constraint: d.Constraint.String()})
	}
	return m
}

func (m metaRecord) spec() (domain.PackageSpec, error) {
	v, err := domain.ParseVersion(m.Version)
	if err != nil {
		return domain.PackageSpec{}, domain.Fail(domain.ErrCacheReadFailed, "cache entry has an invalid version", "cause", err.Error())
	}
	deps := make([]domain.Dependency, 0, len(m.Dependencies))
	for _, d := range m.Dependencies {
		c, err := domain.ParseConstraint(d.Constraint)
		if err != nil {
			return domain.PackageSpec{}, domain.Fail(domain.ErrCacheReadFailed, "cache entry has an invalid constraint", "cause", err.Error())
		}
		deps = append(deps, domain.Dependency{Name: d.Name, Constraint: c})
	}
	return domain.NewPackageSpec(m.Name, v, m.Platform, deps), nil
}
