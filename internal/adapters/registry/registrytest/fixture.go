package registrytest

import (
	"os"
	"path/filepath"
	"testing"

	"go.trai.ch/parcel/internal/adapters/archive"
	"go.trai.ch/parcel/internal/core/domain"
)

// BuildArchive builds a package archive from manifest text and returns its bytes.
func BuildArchive(tb testing.TB, manifest string) []byte {
	tb.Helper()
	dir := tb.TempDir()
	path := filepath.Join(dir, domain.ManifestFileName)
	if err := os.WriteFile(path, []byte(manifest), 0o600); err != nil {
		tb.Fatalf("write manifest: %v", err)
	}
	pkg, err := archive.New().Build(path)
	if err != nil {
		tb.Fatalf("build archive: %v", err)
	}
	//nolint:gosec // test helper
	data, err := os.ReadFile(pkg.Path)
	if err != nil {
		tb.Fatalf("read archive: %v", err)
	}
	return data
}

// PublishManifest builds an archive from manifest text and publishes it.
func (s *Server) PublishManifest(tb testing.TB, manifest string) domain.PackageSpec {
	tb.Helper()
	data := BuildArchive(tb, manifest)
	path := filepath.Join(tb.TempDir(), "pkg"+domain.ArchiveExt)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		tb.Fatalf("write archive: %v", err)
	}
	spec, err := s.PublishFile(path)
	if err != nil {
		tb.Fatalf("publish: %v", err)
	}
	return spec
}
