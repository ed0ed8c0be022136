package ports

import (
	"io"

	"go.trai.ch/parcel/internal/core/domain"
)

// LocalCache stores verified package archives keyed by identity.
//
//go:generate go run go.uber.org/mock/mockgen -source=cache.go -destination=mocks/mock_cache.go -package=mocks
type LocalCache interface {
	// Root returns the cache directory.
	Root() string

	// Get returns the entry for id.
	// Returns nil, nil if the entry does not exist.
	Get(id domain.PackageID) (*domain.CacheEntry, error)

	// Lookup returns every cached entry of the named package.
	Lookup(name string) ([]*domain.CacheEntry, error)

	// Index returns the identities of every cached package.
	Index() (*domain.PackageIndex, error)

	// Begin starts staging a new entry for id.
	// Nothing becomes visible to readers until the writer commits.
	Begin(id domain.PackageID) (CacheWriter, error)

	// Clean removes every entry and any abandoned staging data.
	Clean() error
}

// CacheWriter receives the archive of one staged cache entry.
type CacheWriter interface {
	io.Writer

	// ArchivePath returns the location of the staged archive.
	ArchivePath() string

	// Commit publishes the staged entry for spec.
	// If the identity is already cached the staged data is discarded and the existing entry returned.
	Commit(spec domain.PackageSpec) (*domain.CacheEntry, error)

	// Abort discards the staged data. It is safe to call after Commit.
	Abort() error
}
