package domain

import "time"

// CacheEntry is a verified package held by the local cache.
// Entries are write-once; a second fetch of the same identity leaves the entry untouched.
// UnpackPath is empty when the entry was stored without extraction.
// Checksum is the xxhash64 of the archive, hex encoded.
type CacheEntry struct {
	Spec        PackageSpec
	ArchivePath string
	UnpackPath  string
	FetchedAt   time.Time
	Checksum    string
}

// ID returns the identity of the cached package.
func (e *CacheEntry) ID() PackageID {
	return e.Spec.ID()
}

// PackageArchive is an archive produced by a build.
type PackageArchive struct {
	Path     string
	Spec     PackageSpec
	Size     int64
	Checksum string
}
