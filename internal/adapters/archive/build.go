package archive

import (
	"archive/tar"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/gzip"
	parcelfs "go.trai.ch/parcel/internal/adapters/fs"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// payloadWalker skips workspace directories inside payload directories.
var payloadWalker = parcelfs.NewWalker(domain.ParcelDirName)

// epoch is the modification time stamped on every entry so builds are reproducible.
var epoch = time.Unix(0, 0).UTC()

type payloadFile struct {
	rel  string
	path string
	mode fs.FileMode
	size int64
}

// Build validates the manifest at manifestPath and writes the package archive next to it.
// Manifest and payload problems are reported together.
func (a *Archiver) Build(manifestPath string) (*domain.PackageArchive, error) {
	m, err := readManifest(manifestPath)
	if err != nil {
		return nil, err
	}
	dir := filepath.Dir(manifestPath)

	var problems []string
	spec, err := m.Validate()
	if err != nil {
		var verr *domain.ValidationError
		if !errors.As(err, &verr) {
			return nil, err
		}
		problems = append(problems, verr.Problems...)
	}

	files, missing := collectFiles(dir, m.Files)
	problems = append(problems, missing...)
	if len(problems) > 0 {
		return nil, &domain.ValidationError{Problems: problems}
	}

	target := filepath.Join(dir, domain.ArchiveName(spec.ID()))
	tmp, err := os.CreateTemp(dir, ".parcel-build-*")
	if err != nil {
		return nil, fsError(err, "failed to create archive", target)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	hasher := xxhash.New()
	writeErr := writeArchive(io.MultiWriter(tmp, hasher), domain.ManifestFor(spec, rels(files)), files)
	closeErr := tmp.Close()
	if writeErr != nil {
		return nil, writeErr
	}
	if closeErr != nil {
		return nil, fsError(closeErr, "failed to write archive", target)
	}

	info, err := os.Stat(tmp.Name())
	if err != nil {
		return nil, fsError(err, "failed to write archive", target)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return nil, fsError(err, "failed to publish archive", target)
	}

	return &domain.PackageArchive{
		Path:     target,
		Spec:     spec,
		Size:     info.Size(),
		Checksum: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

func readManifest(manifestPath string) (*domain.Manifest, error) {
	//nolint:gosec // Path is provided by the user
	f, err := os.Open(manifestPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.Fail(domain.ErrInvalidManifest, "manifest not found", "path", manifestPath)
		}
		return nil, fsError(err, "failed to read manifest", manifestPath)
	}
	defer func() {
		_ = f.Close()
	}()

	m, err := decodeManifest(f)
	if err != nil {
		return nil, domain.Fail(domain.ErrInvalidManifest, "failed to parse manifest",
			"path", manifestPath, "cause", err.Error())
	}
	return m, nil
}

// collectFiles expands the manifest file list into regular files, walking directories.
// Entries that cannot be found are returned as problems.
func collectFiles(dir string, entries []string) ([]payloadFile, []string) {
	var problems []string
	seen := make(map[string]payloadFile)

	add := func(p string, info fs.FileInfo) {
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return
		}
		rel = filepath.ToSlash(rel)
		if skipped(rel) {
			return
		}
		seen[rel] = payloadFile{rel: rel, path: p, mode: info.Mode().Perm(), size: info.Size()}
	}

	for _, entry := range entries {
		if !filepath.IsLocal(filepath.FromSlash(entry)) {
			// Already reported by manifest validation.
			continue
		}
		p := filepath.Join(dir, filepath.FromSlash(entry))
		info, err := os.Lstat(p)
		if err != nil {
			problems = append(problems, "file \""+entry+"\" does not exist")
			continue
		}
		if !info.IsDir() {
			if !info.Mode().IsRegular() {
				problems = append(problems, "file \""+entry+"\" is not a regular file")
				continue
			}
			add(p, info)
			continue
		}
		for f, err := range payloadWalker.WalkFiles(p) {
			if err != nil {
				problems = append(problems, "directory \""+entry+"\" cannot be read: "+err.Error())
				break
			}
			add(f.Path, f.Info)
		}
	}

	files := make([]payloadFile, 0, len(seen))
	for _, f := range seen {
		files = append(files, f)
	}
	slices.SortFunc(files, func(x, y payloadFile) int { return strings.Compare(x.rel, y.rel) })
	return files, problems
}

// skipped reports whether a path relative to the manifest directory is build metadata.
func skipped(rel string) bool {
	if strings.Contains(rel, "/") {
		return false
	}
	return rel == domain.ManifestFileName ||
		strings.HasSuffix(rel, domain.ArchiveExt) ||
		strings.HasPrefix(rel, ".parcel-build-")
}

func rels(files []payloadFile) []string {
	out := make([]string, len(files))
	for i, f := range files {
		out[i] = f.rel
	}
	return out
}

func writeArchive(w io.Writer, m *domain.Manifest, files []payloadFile) error {
	gz, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return zerr.Wrap(err, "failed to start compression")
	}
	tw := tar.NewWriter(gz)

	manifest, err := yaml.Marshal(m)
	if err != nil {
		return zerr.Wrap(err, "failed to encode manifest")
	}
	hdr := &tar.Header{
		Name:     domain.ArchiveManifestName,
		Typeflag: tar.TypeReg,
		Mode:     domain.FilePerm,
		Size:     int64(len(manifest)),
		ModTime:  epoch,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return zerr.Wrap(err, "failed to write manifest entry")
	}
	if _, err := tw.Write(manifest); err != nil {
		return zerr.Wrap(err, "failed to write manifest entry")
	}

	for _, f := range files {
		if err := writeFile(tw, f); err != nil {
			return err
		}
	}

	if err := tw.Close(); err != nil {
		return zerr.Wrap(err, "failed to finish archive")
	}
	if err := gz.Close(); err != nil {
		return zerr.Wrap(err, "failed to finish compression")
	}
	return nil
}

func writeFile(tw *tar.Writer, f payloadFile) error {
	mode := int64(domain.FilePerm)
	if f.mode&0o111 != 0 {
		mode = 0o755
	}
	hdr := &tar.Header{
		Name:     domain.ArchiveFilesDir + "/" + f.rel,
		Typeflag: tar.TypeReg,
		Mode:     mode,
		Size:     f.size,
		ModTime:  epoch,
	}
	if err := tw.WriteHeader(hdr); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write entry"), "file", f.rel)
	}

	//nolint:gosec // Path comes from the manifest directory walk
	src, err := os.Open(f.path)
	if err != nil {
		return fsError(err, "failed to read payload file", f.path)
	}
	defer func() {
		_ = src.Close()
	}()

	if _, err := io.Copy(tw, src); err != nil {
		return zerr.With(zerr.Wrap(err, "failed to write entry"), "file", f.rel)
	}
	return nil
}
