// Package resolver selects the package version that best satisfies a constraint.
package resolver

import (
	"context"

	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
)

// Fetcher materialises a registry package in the local cache.
type Fetcher interface {
	Fetch(ctx context.Context, id domain.PackageID) (*domain.CacheEntry, error)
}

// Selection is the outcome of choosing a version.
// Cached is set when the choice is already in the local cache.
type Selection struct {
	ID     domain.PackageID
	Cached *domain.CacheEntry
}

// Local reports whether the selection needs no download.
func (s Selection) Local() bool {
	return s.Cached != nil
}

// Resolver picks versions, preferring the local cache over the registry.
type Resolver struct {
	cache    ports.LocalCache
	registry ports.Registry
	fetcher  Fetcher
	settings *domain.Settings
	tracer   ports.Tracer
	log      ports.Logger
}

// New creates a Resolver. Platform preferences come from settings.
func New(
	cache ports.LocalCache,
	registry ports.Registry,
	fetcher Fetcher,
	settings *domain.Settings,
	tracer ports.Tracer,
	log ports.Logger,
) *Resolver {
	return &Resolver{
		cache:    cache,
		registry: registry,
		fetcher:  fetcher,
		settings: settings,
		tracer:   tracer,
		log:      log,
	}
}

// Resolve returns the spec of the best version of name satisfying c,
// fetching it first when only the registry has it.
func (r *Resolver) Resolve(ctx context.Context, name string, c domain.Constraint, allowPrerelease bool) (domain.PackageSpec, error) {
	ctx, span := r.tracer.Start(ctx, "resolve",
		ports.WithAttribute("package", name),
		ports.WithAttribute("constraint", c.String()),
	)
	defer span.End()

	sel, err := r.Select(ctx, name, c, allowPrerelease)
	if err != nil {
		span.RecordError(err)
		return domain.PackageSpec{}, err
	}
	span.SetAttribute("version", sel.ID.Version.String())
	span.SetAttribute("cached", sel.Local())
	if sel.Local() {
		return sel.Cached.Spec, nil
	}

	entry, err := r.fetcher.Fetch(ctx, sel.ID)
	if err != nil {
		span.RecordError(err)
		return domain.PackageSpec{}, err
	}
	return entry.Spec, nil
}

// Select chooses a version without downloading anything.
// Cached versions win whenever one satisfies c; the registry is only asked otherwise.
func (r *Resolver) Select(ctx context.Context, name string, c domain.Constraint, allowPrerelease bool) (Selection, error) {
	entries, err := r.cache.Lookup(name)
	if err != nil {
		return Selection{}, err
	}
	var best *domain.CacheEntry
	for _, e := range entries {
		id := e.ID()
		if !r.acceptable(id, c, allowPrerelease) {
			continue
		}
		if best == nil || r.better(id, best.ID()) {
			best = e
		}
	}
	if best != nil {
		r.log.Debug("selected cached version", "package", name, "version", best.Spec.Version().String())
		return Selection{ID: best.ID(), Cached: best}, nil
	}

	idx, err := r.registry.Search(ctx, name)
	if err != nil {
		return Selection{}, err
	}
	var pick *domain.IndexEntry
	for _, e := range idx.Query(name) {
		if !r.acceptable(e, c, allowPrerelease) {
			continue
		}
		if pick == nil || r.better(e, *pick) {
			pick = &e
		}
	}
	if pick == nil {
		return Selection{}, domain.Fail(domain.ErrUnresolved, "cannot resolve "+name+" "+c.String(),
			"package", name, "constraint", c.String())
	}
	r.log.Debug("selected registry version", "package", name, "version", pick.Version.String())
	return Selection{ID: *pick}, nil
}

func (r *Resolver) acceptable(id domain.PackageID, c domain.Constraint, allowPrerelease bool) bool {
	return r.settings.AcceptsPlatform(platformOf(id)) && c.Matches(id.Version, allowPrerelease)
}

// better orders candidates: higher version first (a release outranks its prereleases),
// then the more preferred platform.
func (r *Resolver) better(a, b domain.PackageID) bool {
	if cmp := a.Version.Compare(b.Version); cmp != 0 {
		return cmp > 0
	}
	return r.settings.PlatformRank(platformOf(a)) < r.settings.PlatformRank(platformOf(b))
}

func platformOf(id domain.PackageID) string {
	if id.Platform == "" {
		return domain.PlatformAny
	}
	return id.Platform
}
