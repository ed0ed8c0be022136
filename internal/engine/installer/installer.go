// Package installer computes and materialises dependency closures.
package installer

import (
	"context"

	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Resolver picks and materialises one package version.
type Resolver interface {
	Resolve(ctx context.Context, name string, c domain.Constraint, allowPrerelease bool) (domain.PackageSpec, error)
}

// Request names a package to install.
type Request struct {
	Name            string
	Constraint      domain.Constraint
	AllowPrerelease bool
}

// Result is the outcome of one Request.
// Specs lists the installed closure, dependencies first and the requested package last.
type Result struct {
	Request Request
	Specs   []domain.PackageSpec
	Err     error
}

// Root returns the requested package, or false when the request failed.
func (r Result) Root() (domain.PackageSpec, bool) {
	if r.Err != nil || len(r.Specs) == 0 {
		return domain.PackageSpec{}, false
	}
	return r.Specs[len(r.Specs)-1], true
}

// Installer resolves packages together with everything they depend on.
type Installer struct {
	resolver Resolver
	tracer   ports.Tracer
	log      ports.Logger
	workers  int
}

// New creates an Installer running at most workers requests at once.
func New(resolver Resolver, tracer ports.Tracer, log ports.Logger, workers int) *Installer {
	if workers < 1 {
		workers = 1
	}
	return &Installer{resolver: resolver, tracer: tracer, log: log, workers: workers}
}

type frame struct {
	spec domain.PackageSpec
	deps []domain.Dependency
	next int
}

// Install resolves name and its dependency closure.
// Prereleases are only considered for the requested package itself; dependencies
// follow their own constraints.
func (i *Installer) Install(ctx context.Context, name string, c domain.Constraint, allowPrerelease bool) ([]domain.PackageSpec, error) {
	ctx, span := i.tracer.Start(ctx, "install",
		ports.WithAttribute("package", name),
		ports.WithAttribute("constraint", c.String()),
	)
	defer span.End()

	specs, err := i.walk(ctx, name, c, allowPrerelease)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("packages", len(specs))
	return specs, nil
}

func (i *Installer) walk(ctx context.Context, name string, c domain.Constraint, allowPrerelease bool) ([]domain.PackageSpec, error) {
	root, err := i.resolver.Resolve(ctx, name, c, allowPrerelease)
	if err != nil {
		return nil, err
	}

	closure := domain.NewClosure()
	closure.Enter(root)
	stack := []*frame{{spec: root, deps: root.Dependencies()}}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, zerr.Wrap(err, "install cancelled")
		}

		top := stack[len(stack)-1]
		if top.next == len(top.deps) {
			closure.Leave()
			stack = stack[:len(stack)-1]
			continue
		}
		dep := top.deps[top.next]
		top.next++

		known, err := closure.Check(dep, false)
		if err != nil {
			return nil, err
		}
		if known {
			continue
		}

		spec, err := i.resolver.Resolve(ctx, dep.Name, dep.Constraint, false)
		if err != nil {
			return nil, err
		}
		i.log.Debug("resolved dependency",
			"package", spec.String(), "required_by", top.spec.String(), "depth", closure.Depth())
		closure.Enter(spec)
		stack = append(stack, &frame{spec: spec, deps: spec.Dependencies()})
	}

	return closure.Order(), nil
}

// InstallAll runs every request, at most workers at a time.
// A failing request does not stop the others; results keep the order of requests.
func (i *Installer) InstallAll(ctx context.Context, requests []Request) []Result {
	results := make([]Result, len(requests))

	var g errgroup.Group
	g.SetLimit(i.workers)
	for idx, req := range requests {
		g.Go(func() error {
			specs, err := i.Install(ctx, req.Name, req.Constraint, req.AllowPrerelease)
			results[idx] = Result{Request: req, Specs: specs, Err: err}
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// Failed returns ErrBatchFailed when any result carries an error.
func Failed(results []Result) error {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return domain.Fail(domain.ErrBatchFailed, "install failed", "failed", n, "total", len(results))
}
