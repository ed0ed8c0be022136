// Package app implements the application layer for parcel.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/parcel/internal/engine/installer"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// App represents the main application logic.
type App struct {
	settings  *domain.Settings
	locator   ports.ProjectLocator
	cache     ports.LocalCache
	registry  ports.Registry
	builder   ports.Builder
	unpacker  ports.Unpacker
	prompter  ports.Prompter
	installer *installer.Installer
	logger    ports.Logger

	workDir       string
	loginAttempts int
}

// New creates a new App instance.
func New(
	settings *domain.Settings,
	locator ports.ProjectLocator,
	cache ports.LocalCache,
	registry ports.Registry,
	builder ports.Builder,
	unpacker ports.Unpacker,
	prompter ports.Prompter,
	inst *installer.Installer,
	log ports.Logger,
) *App {
	return &App{
		settings:      settings,
		locator:       locator,
		cache:         cache,
		registry:      registry,
		builder:       builder,
		unpacker:      unpacker,
		prompter:      prompter,
		installer:     inst,
		logger:        log,
		loginAttempts: 3,
	}
}

// WithWorkDir makes the App resolve relative paths and projects from dir
// instead of the process working directory.
func (a *App) WithWorkDir(dir string) *App {
	a.workDir = dir
	return a
}

// FetchOptions configures Fetch and Add.
type FetchOptions struct {
	// Constraint applies to every named package. Empty means any release.
	Constraint string
	Prerelease bool
}

// Fetch installs the named packages, or the dependencies of the current project
// when no names are given. Every package is attempted; the results keep the
// order of names and the error is ErrBatchFailed when any of them failed.
func (a *App) Fetch(ctx context.Context, names []string, opts FetchOptions) ([]installer.Result, error) {
	requests, err := a.requests(names, opts)
	if err != nil {
		return nil, err
	}
	results := a.installer.InstallAll(ctx, requests)
	return results, installer.Failed(results)
}

func (a *App) requests(names []string, opts FetchOptions) ([]installer.Request, error) {
	if len(names) == 0 {
		project, err := a.project()
		if errors.Is(err, domain.ErrProjectNotFound) {
			return nil, domain.ErrNoPackagesSpecified
		}
		if err != nil {
			return nil, err
		}
		return a.projectRequests(project, opts.Prerelease)
	}

	c, err := domain.ParseConstraint(opts.Constraint)
	if err != nil {
		return nil, err
	}
	requests := make([]installer.Request, len(names))
	for i, name := range names {
		requests[i] = installer.Request{Name: name, Constraint: c, AllowPrerelease: opts.Prerelease}
	}
	return requests, nil
}

func (a *App) projectRequests(project *domain.Project, prerelease bool) ([]installer.Request, error) {
	deps, err := project.Dependencies()
	if err != nil {
		return nil, err
	}
	requests := make([]installer.Request, len(deps))
	for i, d := range deps {
		requests[i] = installer.Request{Name: d.Name, Constraint: d.Constraint, AllowPrerelease: prerelease}
	}
	return requests, nil
}

// Add installs a package and records it as a dependency of the current project.
// Without an explicit constraint the dependency is pinned pessimistically to the
// installed major.minor release.
func (a *App) Add(ctx context.Context, name string, opts FetchOptions) (domain.PackageSpec, error) {
	project, err := a.project()
	if err != nil {
		return domain.PackageSpec{}, err
	}
	c, err := domain.ParseConstraint(opts.Constraint)
	if err != nil {
		return domain.PackageSpec{}, err
	}

	specs, err := a.installer.Install(ctx, name, c, opts.Prerelease)
	if err != nil {
		return domain.PackageSpec{}, err
	}
	root := specs[len(specs)-1]

	recorded := c
	if c.IsDefault() {
		if recorded, err = pinned(root.Version()); err != nil {
			return domain.PackageSpec{}, err
		}
	}
	project.Manifest.SetDependency(name, recorded)
	if err := a.locator.Save(project); err != nil {
		return domain.PackageSpec{}, zerr.Wrap(err, "failed to update project manifest")
	}
	a.logger.Debug("added dependency", "package", name, "constraint", recorded.String(), "project", project.Root)
	return root, nil
}

func pinned(v domain.Version) (domain.Constraint, error) {
	if domain.IsPrerelease(v) {
		return domain.ParseConstraint(">= " + v.String())
	}
	return domain.ParseConstraint(fmt.Sprintf("~> %d.%d", v.Major, v.Minor))
}

// Listing is the outcome of listing one package.
type Listing struct {
	Name     string
	Versions []domain.Version
	Err      error
}

// List reports the versions the registry publishes for each named package, in
// argument order. A failed or unknown name does not stop the others; the
// returned error is ErrBatchFailed when any name failed.
func (a *App) List(ctx context.Context, names []string) ([]Listing, error) {
	if len(names) == 0 {
		return nil, domain.ErrNoPackagesSpecified
	}

	listings := make([]Listing, len(names))
	var g errgroup.Group
	g.SetLimit(max(1, a.settings.Workers))
	for i, name := range names {
		g.Go(func() error {
			listings[i] = a.listOne(ctx, name)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, l := range listings {
		if l.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return listings, domain.Fail(domain.ErrBatchFailed, "listing failed", "failed", failed, "total", len(names))
	}
	return listings, nil
}

func (a *App) listOne(ctx context.Context, name string) Listing {
	idx, err := a.registry.Search(ctx, name)
	if err != nil {
		return Listing{Name: name, Err: err}
	}
	versions, err := idx.AllNames([]string{name})
	if err != nil {
		return Listing{Name: name, Err: domain.Fail(domain.ErrNotFound, "no published versions", "package", name)}
	}
	return Listing{Name: name, Versions: versions[name]}
}

// Fetched reports the versions held by the local cache, optionally limited to names.
func (a *App) Fetched(_ context.Context, names []string) (map[string][]domain.Version, error) {
	idx, err := a.cache.Index()
	if err != nil {
		return nil, err
	}
	return idx.AllNames(names)
}

// Build turns the manifest in dir into a package archive.
func (a *App) Build(_ context.Context, dir string) (*domain.PackageArchive, error) {
	dir, err := a.abs(dir)
	if err != nil {
		return nil, err
	}
	return a.builder.Build(filepath.Join(dir, domain.ManifestFileName))
}

// Unpacked is a package extracted into a directory.
type Unpacked struct {
	Spec domain.PackageSpec
	Dir  string
}

// Unpack extracts an archive below target, which defaults to the working directory.
func (a *App) Unpack(_ context.Context, archivePath, target string) (Unpacked, error) {
	archivePath, err := a.abs(archivePath)
	if err != nil {
		return Unpacked{}, err
	}
	target, err = a.abs(target)
	if err != nil {
		return Unpacked{}, err
	}
	spec, err := a.unpacker.Unpack(archivePath, target)
	if err != nil {
		return Unpacked{}, err
	}
	return Unpacked{Spec: spec, Dir: filepath.Join(target, domain.UnpackDirName(spec.ID()))}, nil
}

// SyncReport is the outcome of Sync.
type SyncReport struct {
	Target   string
	Results  []installer.Result
	Unpacked []Unpacked
}

// Sync installs the dependency closure of the current project and unpacks every
// package of it into the project's deps directory.
func (a *App) Sync(ctx context.Context, prerelease bool) (*SyncReport, error) {
	project, err := a.project()
	if err != nil {
		return nil, err
	}
	requests, err := a.projectRequests(project, prerelease)
	if err != nil {
		return nil, err
	}

	report := &SyncReport{Target: domain.DepsPath(project.Root)}
	report.Results = a.installer.InstallAll(ctx, requests)

	seen := make(map[string]struct{})
	for _, r := range report.Results {
		for _, spec := range r.Specs {
			if _, ok := seen[spec.ID().Key()]; ok {
				continue
			}
			seen[spec.ID().Key()] = struct{}{}

			u, err := a.unpackCached(spec, report.Target)
			if err != nil {
				return report, err
			}
			report.Unpacked = append(report.Unpacked, u)
		}
	}
	return report, installer.Failed(report.Results)
}

func (a *App) unpackCached(spec domain.PackageSpec, target string) (Unpacked, error) {
	entry, err := a.cache.Get(spec.ID())
	if err != nil {
		return Unpacked{}, err
	}
	if entry == nil {
		return Unpacked{}, domain.Fail(domain.ErrCacheReadFailed, "installed package is missing from the cache",
			"package", spec.String())
	}
	if _, err := a.unpacker.Unpack(entry.ArchivePath, target); err != nil {
		return Unpacked{}, err
	}
	return Unpacked{Spec: spec, Dir: filepath.Join(target, domain.UnpackDirName(spec.ID()))}, nil
}

// Clean removes every cached package.
func (a *App) Clean(_ context.Context) error {
	if err := a.cache.Clean(); err != nil {
		return err
	}
	a.logger.Info("removed cached packages from " + a.cache.Root())
	return nil
}

func (a *App) project() (*domain.Project, error) {
	dir, err := a.abs("")
	if err != nil {
		return nil, err
	}
	return a.locator.Nearest(dir)
}

func (a *App) abs(path string) (string, error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	base := a.workDir
	if base == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", zerr.Wrap(err, "failed to determine working directory")
		}
		base = wd
	}
	return filepath.Join(base, path), nil
}
