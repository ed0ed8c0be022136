package archive

import (
	"archive/tar"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/parcel/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// Unpack extracts the archive into targetDir/<name>-<version>.
// Unpacking the same package again is a no-op; a different package already
// occupying the directory fails with domain.ErrUnpackConflict.
func (a *Archiver) Unpack(archivePath, targetDir string) (domain.PackageSpec, error) {
	spec, err := a.Inspect(archivePath)
	if err != nil {
		return domain.PackageSpec{}, err
	}
	dest := filepath.Join(targetDir, domain.UnpackDirName(spec.ID()))

	if existing, found, err := readUnpacked(dest); err != nil {
		return domain.PackageSpec{}, err
	} else if found {
		return compareUnpacked(dest, existing, spec)
	}

	if _, err := a.Extract(archivePath, dest); err != nil {
		// Another unpack may have published the directory first.
		if existing, found, rerr := readUnpacked(dest); rerr == nil && found {
			return compareUnpacked(dest, existing, spec)
		}
		return domain.PackageSpec{}, err
	}
	return spec, nil
}

// Extract writes the payload of the archive into dir together with its manifest.
// The payload is assembled in a sibling staging directory and renamed into place.
func (a *Archiver) Extract(archivePath, dir string) (domain.PackageSpec, error) {
	manifest, spec, err := inspect(archivePath)
	if err != nil {
		return domain.PackageSpec{}, err
	}

	parent := filepath.Dir(dir)
	if err := os.MkdirAll(parent, domain.DirPerm); err != nil {
		return domain.PackageSpec{}, fsError(err, "failed to create target directory", parent)
	}
	staging, err := os.MkdirTemp(parent, "."+filepath.Base(dir)+"-*")
	if err != nil {
		return domain.PackageSpec{}, fsError(err, "failed to create staging directory", parent)
	}
	published := false
	defer func() {
		if !published {
			_ = os.RemoveAll(staging)
		}
	}()

	err = walk(archivePath, func(name string, hdr *tar.Header, r io.Reader) error {
		if name == domain.ArchiveManifestName || name == domain.ArchiveFilesDir {
			return nil
		}
		rel := strings.TrimPrefix(name, domain.ArchiveFilesDir+"/")
		dest := filepath.Join(staging, filepath.FromSlash(rel))

		if hdr.Typeflag == tar.TypeDir {
			if err := os.MkdirAll(dest, domain.DirPerm); err != nil {
				return fsError(err, "failed to create directory", dest)
			}
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(dest), domain.DirPerm); err != nil {
			return fsError(err, "failed to create directory", filepath.Dir(dest))
		}
		return extractFile(archivePath, dest, fs.FileMode(hdr.Mode).Perm(), r)
	})
	if err != nil {
		return domain.PackageSpec{}, err
	}

	data, err := yaml.Marshal(manifest)
	if err != nil {
		return domain.PackageSpec{}, corrupt(archivePath, "manifest cannot be encoded", err)
	}
	manifestPath := filepath.Join(staging, domain.ManifestFileName)
	if err := os.WriteFile(manifestPath, data, domain.FilePerm); err != nil {
		return domain.PackageSpec{}, fsError(err, "failed to write manifest", manifestPath)
	}

	if err := os.Rename(staging, dir); err != nil {
		return domain.PackageSpec{}, fsError(err, "failed to publish unpacked package", dir)
	}
	published = true
	return spec, nil
}

func extractFile(archivePath, dest string, mode fs.FileMode, r io.Reader) (err error) {
	if mode == 0 {
		mode = domain.FilePerm
	}
	//nolint:gosec // Destination is confined to the staging directory by entryName
	f, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_EXCL, mode&0o755)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return corrupt(archivePath, "duplicate entry", nil, "path", dest)
		}
		return fsError(err, "failed to create file", dest)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fsError(closeErr, "failed to write file", dest)
		}
	}()

	if _, err := io.Copy(f, r); err != nil {
		return corrupt(archivePath, "payload cannot be read", err, "path", dest)
	}
	return nil
}

// readUnpacked loads the spec of a previously unpacked package at dir.
// found is false when dir does not exist.
func readUnpacked(dir string) (domain.PackageSpec, bool, error) {
	info, err := os.Stat(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.PackageSpec{}, false, nil
	}
	if err != nil {
		return domain.PackageSpec{}, false, fsError(err, "failed to inspect target", dir)
	}
	if !info.IsDir() {
		return domain.PackageSpec{}, false, domain.Fail(domain.ErrUnpackConflict, "target exists and is not a directory", "target", dir)
	}

	m, err := readManifest(filepath.Join(dir, domain.ManifestFileName))
	if err != nil {
		if errors.Is(err, domain.ErrPermission) {
			return domain.PackageSpec{}, false, err
		}
		return domain.PackageSpec{}, false, domain.Fail(domain.ErrUnpackConflict,
			"target exists and does not hold an unpacked package", "target", dir)
	}
	spec, err := m.Validate()
	if err != nil {
		return domain.PackageSpec{}, false, domain.Fail(domain.ErrUnpackConflict,
			"target holds an invalid manifest", "target", dir, "cause", err.Error())
	}
	return spec, true, nil
}

func compareUnpacked(dir string, existing, requested domain.PackageSpec) (domain.PackageSpec, error) {
	if existing.SameAs(requested) {
		return existing, nil
	}
	return domain.PackageSpec{}, domain.Fail(domain.ErrUnpackConflict, "target already holds a different package",
		"target", dir,
		"existing", existing.String(),
		"requested", requested.String(),
	)
}
