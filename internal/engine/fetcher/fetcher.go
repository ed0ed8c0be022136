// Package fetcher downloads package archives into the local cache.
package fetcher

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/singleflight"
)

// Fetcher materialises registry packages in the local cache.
// Every archive is staged, verified against the requested identity and only then committed.
type Fetcher struct {
	registry ports.Registry
	cache    ports.LocalCache
	unpacker ports.Unpacker
	tracer   ports.Tracer
	log      ports.Logger

	retries    int
	newBackOff func() backoff.BackOff
	group      singleflight.Group
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRetries sets how often an interrupted download is restarted.
func WithRetries(n int) Option {
	return func(f *Fetcher) {
		f.retries = n
	}
}

// WithBackOff replaces the delay policy between download attempts.
func WithBackOff(fn func() backoff.BackOff) Option {
	return func(f *Fetcher) {
		f.newBackOff = fn
	}
}

// New creates a Fetcher.
func New(
	registry ports.Registry,
	cache ports.LocalCache,
	unpacker ports.Unpacker,
	tracer ports.Tracer,
	log ports.Logger,
	opts ...Option,
) *Fetcher {
	f := &Fetcher{
		registry: registry,
		cache:    cache,
		unpacker: unpacker,
		tracer:   tracer,
		log:      log,
		retries:  3,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 250 * time.Millisecond
			return b
		},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the cache entry of id, downloading it when it is not cached yet.
// Concurrent calls for the same identity share one download. The shared download
// is not tied to any single caller, so one caller giving up does not fail the others.
func (f *Fetcher) Fetch(ctx context.Context, id domain.PackageID) (*domain.CacheEntry, error) {
	if entry, err := f.cache.Get(id); err != nil || entry != nil {
		return entry, err
	}

	shared := context.WithoutCancel(ctx)
	ch := f.group.DoChan(id.Key(), func() (any, error) {
		return f.fetch(shared, id)
	})
	select {
	case <-ctx.Done():
		return nil, zerr.Wrap(ctx.Err(), "fetch cancelled")
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.CacheEntry), nil
	}
}

// fetch runs download attempts until one commits. Requests that never produced a
// response were already retried by the registry client, so only downloads cut off
// mid-stream are restarted here.
func (f *Fetcher) fetch(ctx context.Context, id domain.PackageID) (*domain.CacheEntry, error) {
	ctx, span := f.tracer.Start(ctx, "fetch", ports.WithAttribute("package", id.String()))
	defer span.End()

	// Another process may have committed while this one waited.
	if entry, err := f.cache.Get(id); err != nil || entry != nil {
		return entry, err
	}

	var entry *domain.CacheEntry
	attempt := 0
	op := func() error {
		attempt++
		e, err := f.attempt(ctx, id)
		if err != nil {
			var cut *interruptedError
			if errors.As(err, &cut) && ctx.Err() == nil {
				return err
			}
			return backoff.Permanent(err)
		}
		entry = e
		return nil
	}
	notify := func(err error, wait time.Duration) {
		f.log.Debug("restarting download", "package", id.String(), "attempt", attempt, "wait", wait.String(), "error", err.Error())
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(f.newBackOff(), uint64(max(f.retries, 0))), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttribute("attempts", attempt)
	f.log.Debug("fetched", "package", id.String(), "archive", entry.ArchivePath)
	return entry, nil
}

// attempt performs one download → verify → commit cycle. The staged entry is
// discarded on every failure, so nothing partial is ever published.
func (f *Fetcher) attempt(ctx context.Context, id domain.PackageID) (*domain.CacheEntry, error) {
	w, err := f.cache.Begin(id)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = w.Abort()
		}
	}()

	rc, err := f.registry.Download(ctx, id)
	if err != nil {
		return nil, err
	}
	_, err = io.Copy(w, rc)
	_ = rc.Close()
	if err != nil {
		if errors.Is(err, domain.ErrCacheWriteFailed) {
			return nil, err
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &interruptedError{
			err: domain.Fail(domain.ErrNetwork, "download interrupted", "package", id.String(), "cause", err.Error()),
		}
	}

	spec, err := f.unpacker.Inspect(w.ArchivePath())
	if err != nil {
		return nil, err
	}
	if !spec.ID().Equal(id) {
		return nil, domain.Fail(domain.ErrVerification, "archive does not contain the requested package",
			"expected", id.String(), "got", spec.String())
	}

	entry, err := w.Commit(spec)
	if err != nil {
		return nil, err
	}
	committed = true
	return entry, nil
}

// interruptedError marks a download whose response body broke off.
type interruptedError struct {
	err error
}

func (e *interruptedError) Error() string { return e.err.Error() }

func (e *interruptedError) Unwrap() error { return e.err }
