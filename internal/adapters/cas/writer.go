package cas

import (
	"encoding/hex"
	"encoding/json"
	"hash"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
)

// Writer stages one cache entry. It implements ports.CacheWriter.
type Writer struct {
	store  *Store
	id     domain.PackageID
	final  string
	dir    string
	file   *os.File
	digest hash.Hash64
	done   bool
}

// Begin starts staging an entry for id.
func (s *Store) Begin(id domain.PackageID) (ports.CacheWriter, error) {
	final, ok := s.entryDir(id)
	if !ok {
		return nil, domain.Fail(domain.ErrCacheWriteFailed, "package identity cannot be cached", "package", id.String())
	}
	dir, err := os.MkdirTemp(s.staging, id.Name+"-*")
	if err != nil {
		return nil, domain.Fail(domain.ErrCacheWriteFailed, "failed to create staging directory",
			"package", id.String(), "cause", err.Error())
	}
	//nolint:gosec // Path is inside the staging directory
	f, err := os.OpenFile(filepath.Join(dir, domain.CacheArchiveName), os.O_CREATE|os.O_EXCL|os.O_WRONLY, domain.FilePerm)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, domain.Fail(domain.ErrCacheWriteFailed, "failed to create staged archive",
			"package", id.String(), "cause", err.Error())
	}
	return &Writer{
		store:  s,
		id:     id,
		final:  final,
		dir:    dir,
		file:   f,
		digest: xxhash.New(),
	}, nil
}

// Write appends p to the staged archive.
func (w *Writer) Write(p []byte) (int, error) {
	if w.done {
		return 0, domain.Fail(domain.ErrCacheWriteFailed, "write after commit or abort", "package", w.id.String())
	}
	n, err := w.file.Write(p)
	_, _ = w.digest.Write(p[:n])
	if err != nil {
		return n, domain.Fail(domain.ErrCacheWriteFailed, "failed to write staged archive",
			"package", w.id.String(), "cause", err.Error())
	}
	return n, nil
}

// ArchivePath returns the location of the staged archive.
func (w *Writer) ArchivePath() string {
	return filepath.Join(w.dir, domain.CacheArchiveName)
}

// Commit publishes the staged entry.
// When another writer already published the identity, the staged data is
// discarded and the existing entry is returned unchanged.
func (w *Writer) Commit(spec domain.PackageSpec) (*domain.CacheEntry, error) {
	if w.done {
		return nil, domain.Fail(domain.ErrCacheWriteFailed, "entry already committed or aborted", "package", w.id.String())
	}
	if !spec.ID().Equal(w.id) {
		_ = w.Abort()
		return nil, domain.Fail(domain.ErrVerification, "package does not match the staged identity",
			"expected", w.id.String(), "got", spec.String())
	}

	if err := w.closeFile(); err != nil {
		_ = w.Abort()
		return nil, err
	}

	final := w.final
	if existing, err := w.store.readEntry(final); err == nil && existing != nil {
		_ = w.Abort()
		return w.settled(existing)
	}

	unpacked := false
	if w.store.unpacker != nil {
		if _, err := w.store.unpacker.Extract(w.ArchivePath(), filepath.Join(w.dir, domain.CacheContentsDir)); err != nil {
			_ = w.Abort()
			return nil, err
		}
		unpacked = true
	}

	meta := newMetaRecord(spec, w.store.now(), hex.EncodeToString(w.digest.Sum(nil)), unpacked)
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		_ = w.Abort()
		return nil, domain.Fail(domain.ErrCacheWriteFailed, "failed to encode cache entry", "cause", err.Error())
	}
	if err := os.WriteFile(filepath.Join(w.dir, domain.CacheMetaName), data, domain.FilePerm); err != nil {
		_ = w.Abort()
		return nil, domain.Fail(domain.ErrCacheWriteFailed, "failed to write cache entry", "cause", err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(final), domain.DirPerm); err != nil {
		_ = w.Abort()
		return nil, domain.Fail(domain.ErrCacheWriteFailed, "failed to create cache directory",
			"path", filepath.Dir(final), "cause", err.Error())
	}
	if err := os.Rename(w.dir, final); err != nil {
		_ = w.Abort()
		// Lost the race against a concurrent writer of the same identity.
		if existing, rerr := w.store.readEntry(final); rerr == nil && existing != nil {
			return w.settled(existing)
		}
		return nil, domain.Fail(domain.ErrCacheWriteFailed, "failed to publish cache entry",
			"package", w.id.String(), "cause", err.Error())
	}
	w.done = true

	return w.store.readEntry(final)
}

// settled returns the entry another writer published at the staged identity's
// location, provided it records that identity.
func (w *Writer) settled(existing *domain.CacheEntry) (*domain.CacheEntry, error) {
	if !existing.ID().Equal(w.id) {
		return nil, domain.Fail(domain.ErrCacheWriteFailed, "cache entry holds a different package",
			"package", w.id.String(), "found", existing.ID().String(), "path", w.final)
	}
	return existing, nil
}

// Abort discards the staged data. Calling it after Commit is a no-op.
func (w *Writer) Abort() error {
	if w.done {
		return nil
	}
	w.done = true
	_ = w.closeFile()
	if err := os.RemoveAll(w.dir); err != nil {
		return domain.Fail(domain.ErrCacheWriteFailed, "failed to discard staged entry",
			"package", w.id.String(), "cause", err.Error())
	}
	return nil
}

func (w *Writer) closeFile() error {
	if w.file == nil {
		return nil
	}
	f := w.file
	w.file = nil
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return domain.Fail(domain.ErrCacheWriteFailed, "failed to flush staged archive", "cause", err.Error())
	}
	if err := f.Close(); err != nil {
		return domain.Fail(domain.ErrCacheWriteFailed, "failed to close staged archive", "cause", err.Error())
	}
	return nil
}
