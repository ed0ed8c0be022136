package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"go.trai.ch/parcel/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// Locator finds and saves project manifests. It implements ports.ProjectLocator.
type Locator struct{}

// NewLocator creates a Locator.
func NewLocator() *Locator {
	return &Locator{}
}

// Nearest walks up from start to the first directory holding a parcel.yaml.
func (l *Locator) Nearest(start string) (*domain.Project, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, domain.Fail(domain.ErrProjectNotFound, "failed to resolve start directory",
			"path", start, "cause", err.Error())
	}

	for {
		candidate := filepath.Join(dir, domain.ManifestFileName)
		info, err := os.Stat(candidate)
		if err == nil && !info.IsDir() {
			m, err := ReadManifest(candidate)
			if err != nil {
				return nil, err
			}
			return &domain.Project{Root: dir, Manifest: m}, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, domain.Fail(domain.ErrPermission, "failed to inspect directory",
				"path", candidate, "cause", err.Error())
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, domain.Fail(domain.ErrProjectNotFound, "reached the filesystem root", "start", start)
		}
		dir = parent
	}
}

// Save writes the project manifest back to its root, replacing the file atomically.
func (l *Locator) Save(p *domain.Project) error {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p.Manifest); err != nil {
		return domain.Fail(domain.ErrInvalidManifest, "failed to encode manifest", "cause", err.Error())
	}
	if err := enc.Close(); err != nil {
		return domain.Fail(domain.ErrInvalidManifest, "failed to encode manifest", "cause", err.Error())
	}

	path := filepath.Join(p.Root, domain.ManifestFileName)
	tmp, err := os.CreateTemp(p.Root, "."+domain.ManifestFileName+"-*")
	if err != nil {
		return writeError(err, path)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return writeError(err, path)
	}
	if err := tmp.Close(); err != nil {
		return writeError(err, path)
	}
	if err := os.Chmod(tmp.Name(), domain.FilePerm); err != nil {
		return writeError(err, path)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return writeError(err, path)
	}
	return nil
}

// ReadManifest decodes the manifest at path. Unknown fields are rejected.
func ReadManifest(path string) (*domain.Manifest, error) {
	//nolint:gosec // path is provided by the user
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, domain.Fail(domain.ErrPermission, "failed to read manifest", "path", path)
		}
		return nil, domain.Fail(domain.ErrInvalidManifest, "failed to read manifest", "path", path, "cause", err.Error())
	}

	var m domain.Manifest
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&m); err != nil && !errors.Is(err, io.EOF) {
		return nil, domain.Fail(domain.ErrInvalidManifest, "failed to parse manifest", "path", path, "cause", err.Error())
	}
	return &m, nil
}

func writeError(err error, path string) error {
	if errors.Is(err, fs.ErrPermission) {
		return domain.Fail(domain.ErrPermission, "failed to write manifest", "path", path)
	}
	return domain.Fail(domain.ErrInvalidManifest, "failed to write manifest", "path", path, "cause", err.Error())
}
