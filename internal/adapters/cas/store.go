// Package cas implements the local package cache.
//
// Every cached package lives in its own directory <name>/<version>/<platform>.
// Entries are assembled under a staging directory and published with a single
// rename, so readers only ever see complete entries.
package cas

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/zerr"
)

// staleStaging is the age after which abandoned staging directories are removed.
const staleStaging = 24 * time.Hour

// Store implements ports.LocalCache on the filesystem.
type Store struct {
	root     string
	staging  string
	unpacker ports.Unpacker
	now      func() time.Time
}

// NewStore creates a cache rooted at root.
// When unpacker is not nil every committed archive is also extracted into the entry.
func NewStore(root string, unpacker ports.Unpacker) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, domain.Fail(domain.ErrCacheCreateFailed, "failed to resolve cache root", "path", root, "cause", err.Error())
	}
	s := &Store{
		root:     abs,
		staging:  filepath.Join(abs, domain.StagingDirName),
		unpacker: unpacker,
		now:      time.Now,
	}
	if err := os.MkdirAll(s.staging, domain.DirPerm); err != nil {
		return nil, domain.Fail(domain.ErrCacheCreateFailed, "failed to create cache directory", "path", s.staging, "cause", err.Error())
	}
	s.sweepStaging()
	return s, nil
}

// Root returns the cache directory.
func (s *Store) Root() string {
	return s.root
}

// Get retrieves the entry for id. Returns nil, nil if not cached.
// An entry whose record names a different identity is treated as missing.
func (s *Store) Get(id domain.PackageID) (*domain.CacheEntry, error) {
	dir, ok := s.entryDir(id)
	if !ok {
		return nil, nil
	}
	entry, err := s.readEntry(dir)
	if err != nil || entry == nil || !entry.ID().Equal(id) {
		return nil, err
	}
	return entry, nil
}

// Lookup returns every cached entry of the named package, highest version first.
func (s *Store) Lookup(name string) ([]*domain.CacheEntry, error) {
	if !domain.ValidName(name) {
		return nil, nil
	}
	out, err := s.entriesOf(name)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(out, func(a, b *domain.CacheEntry) int {
		if c := b.Spec.Version().Compare(a.Spec.Version()); c != 0 {
			return c
		}
		return strings.Compare(a.Spec.Platform(), b.Spec.Platform())
	})
	return out, nil
}

// Index returns the identities of every cached package.
func (s *Store) Index() (*domain.PackageIndex, error) {
	names, err := s.subdirs(s.root)
	if err != nil {
		return nil, err
	}
	idx := domain.NewPackageIndex()
	for _, name := range names {
		entries, err := s.entriesOf(name)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			idx.Add(e.ID())
		}
	}
	return idx, nil
}

// Clean removes every entry and all staging data. Other files under the root are kept.
func (s *Store) Clean() error {
	dirents, err := os.ReadDir(s.root)
	if err != nil {
		return domain.Fail(domain.ErrCacheReadFailed, "failed to list cache", "path", s.root, "cause", err.Error())
	}
	for _, d := range dirents {
		if !d.IsDir() {
			continue
		}
		p := filepath.Join(s.root, d.Name())
		if err := os.RemoveAll(p); err != nil {
			return domain.Fail(domain.ErrCacheWriteFailed, "failed to remove cache entry", "path", p, "cause", err.Error())
		}
	}
	return os.MkdirAll(s.staging, domain.DirPerm)
}

// entryDir returns the directory of id. It reports false for identities whose
// name or platform cannot be used as a path element.
func (s *Store) entryDir(id domain.PackageID) (string, bool) {
	if !domain.ValidName(id.Name) || (id.Platform != "" && !domain.ValidName(id.Platform)) {
		return "", false
	}
	return filepath.Join(s.root, filepath.FromSlash(id.Key())), true
}

// entriesOf reads the entries stored under <root>/<name>.
// Directories without a readable record, or whose record names another
// identity, are skipped.
func (s *Store) entriesOf(name string) ([]*domain.CacheEntry, error) {
	base := filepath.Join(s.root, name)
	versions, err := s.subdirs(base)
	if err != nil {
		return nil, err
	}

	var out []*domain.CacheEntry
	for _, version := range versions {
		platforms, err := s.subdirs(filepath.Join(base, version))
		if err != nil {
			return nil, err
		}
		for _, platform := range platforms {
			dir := filepath.Join(base, version, platform)
			e, err := s.readEntry(dir)
			if err != nil || e == nil {
				continue
			}
			if want, ok := s.entryDir(e.ID()); !ok || want != dir {
				continue
			}
			out = append(out, e)
		}
	}
	return out, nil
}

// subdirs lists the visible directories under dir. A missing dir has none.
func (s *Store) subdirs(dir string) ([]string, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, domain.Fail(domain.ErrCacheReadFailed, "failed to list cache", "path", dir, "cause", err.Error())
	}
	var out []string
	for _, d := range dirents {
		if d.IsDir() && !strings.HasPrefix(d.Name(), ".") {
			out = append(out, d.Name())
		}
	}
	return out, nil
}

func (s *Store) readEntry(dir string) (*domain.CacheEntry, error) {
	metaPath := filepath.Join(dir, domain.CacheMetaName)
	//nolint:gosec // Path is derived from the cache root
	data, err := os.ReadFile(metaPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, domain.Fail(domain.ErrCacheReadFailed, "failed to read cache entry", "path", metaPath, "cause", err.Error())
	}

	var meta metaRecord
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, domain.Fail(domain.ErrCacheReadFailed, "failed to decode cache entry", "path", metaPath, "cause", err.Error())
	}
	spec, err := meta.spec()
	if err != nil {
		return nil, zerr.With(err, "path", metaPath)
	}

	entry := &domain.CacheEntry{
		Spec:        spec,
		ArchivePath: filepath.Join(dir, domain.CacheArchiveName),
		FetchedAt:   meta.FetchedAt,
		Checksum:    meta.Checksum,
	}
	if meta.Unpacked {
		entry.UnpackPath = filepath.Join(dir, domain.CacheContentsDir)
	}
	return entry, nil
}

// sweepStaging removes staging directories left behind by interrupted writes.
func (s *Store) sweepStaging() {
	dirents, err := os.ReadDir(s.staging)
	if err != nil {
		return
	}
	cutoff := s.now().Add(-staleStaging)
	for _, d := range dirents {
		info, err := d.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		_ = os.RemoveAll(filepath.Join(s.staging, d.Name()))
	}
}
