// Package archive builds, inspects and extracts package archives.
//
// An archive is a gzip compressed tar stream holding manifest.yaml followed by
// the payload under files/.
package archive

import (
	"archive/tar"
	"errors"
	"io"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Archiver implements ports.Builder and ports.Unpacker.
type Archiver struct{}

// New creates a new Archiver.
func New() *Archiver {
	return &Archiver{}
}

// Inspect decodes and checks every entry of the archive and returns the spec of its manifest.
func (a *Archiver) Inspect(archivePath string) (domain.PackageSpec, error) {
	_, spec, err := inspect(archivePath)
	return spec, err
}

// inspect walks the whole archive so that truncated or tampered streams are
// rejected before anything is extracted.
func inspect(archivePath string) (*domain.Manifest, domain.PackageSpec, error) {
	var manifest *domain.Manifest
	err := walk(archivePath, func(name string, hdr *tar.Header, r io.Reader) error {
		switch {
		case name == domain.ArchiveManifestName:
			if manifest != nil {
				return corrupt(archivePath, "archive holds more than one manifest", nil)
			}
			m, err := decodeManifest(r)
			if err != nil {
				return corrupt(archivePath, "manifest cannot be decoded", err)
			}
			manifest = m
			return nil
		case name == domain.ArchiveFilesDir || strings.HasPrefix(name, domain.ArchiveFilesDir+"/"):
			if _, err := io.Copy(io.Discard, r); err != nil {
				return corrupt(archivePath, "payload cannot be read", err)
			}
			return nil
		default:
			return corrupt(archivePath, "unexpected entry", nil, "entry", hdr.Name)
		}
	})
	if err != nil {
		return nil, domain.PackageSpec{}, err
	}
	if manifest == nil {
		return nil, domain.PackageSpec{}, corrupt(archivePath, "archive has no manifest", nil)
	}

	spec, err := manifest.Validate()
	if err != nil {
		return nil, domain.PackageSpec{}, corrupt(archivePath, "manifest is invalid", err)
	}
	return manifest, spec, nil
}

// walk calls fn for every entry of the archive with its cleaned name.
// Entries that are not regular files or directories, or that escape the archive root, are rejected.
func walk(archivePath string, fn func(name string, hdr *tar.Header, r io.Reader) error) error {
	//nolint:gosec // Path is provided by the caller
	f, err := os.Open(archivePath)
	if err != nil {
		return fsError(err, "failed to open archive", archivePath)
	}
	defer func() {
		_ = f.Close()
	}()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return corrupt(archivePath, "not a gzip stream", err)
	}
	defer func() {
		_ = gz.Close()
	}()

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return corrupt(archivePath, "tar stream is damaged", err)
		}

		name, err := entryName(hdr)
		if err != nil {
			return corrupt(archivePath, err.Error(), nil, "entry", hdr.Name)
		}
		if err := fn(name, hdr, tr); err != nil {
			return err
		}
	}
}

func entryName(hdr *tar.Header) (string, error) {
	if hdr.Typeflag != tar.TypeReg && hdr.Typeflag != tar.TypeDir {
		return "", zerr.New("entry is neither a file nor a directory")
	}
	name := path.Clean(strings.TrimPrefix(hdr.Name, "./"))
	if name == "." || path.IsAbs(name) || name == ".." || strings.HasPrefix(name, "../") || strings.Contains(name, `\`) {
		return "", zerr.New("entry escapes the archive root")
	}
	return name, nil
}

func decodeManifest(r io.Reader) (*domain.Manifest, error) {
	var m domain.Manifest
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &m, nil
}

func corrupt(archivePath, reason string, cause error, keyvals ...any) error {
	kv := append([]any{"archive", archivePath}, keyvals...)
	if cause != nil {
		kv = append(kv, "cause", cause.Error())
	}
	return domain.Fail(domain.ErrCorruptArchive, reason, kv...)
}

// fsError classifies a filesystem error, mapping access denials to domain.ErrPermission.
func fsError(err error, msg, target string) error {
	if errors.Is(err, fs.ErrPermission) {
		return domain.Fail(domain.ErrPermission, msg, "path", target, "cause", err.Error())
	}
	return zerr.With(zerr.Wrap(err, msg), "path", target)
}
