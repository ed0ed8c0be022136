package ports

import "go.trai.ch/parcel/internal/core/domain"

// Builder turns a manifest into a package archive.
//
//go:generate go run go.uber.org/mock/mockgen -source=archive.go -destination=mocks/mock_archive.go -package=mocks
type Builder interface {
	// Build validates the manifest at manifestPath and writes the archive next to it.
	// Validation problems are reported together as a *domain.ValidationError.
	Build(manifestPath string) (*domain.PackageArchive, error)
}

// Unpacker reads package archives.
type Unpacker interface {
	// Inspect decodes the manifest of an archive without extracting it.
	Inspect(archivePath string) (domain.PackageSpec, error)

	// Unpack extracts the archive into targetDir/<name>-<version>.
	Unpack(archivePath, targetDir string) (domain.PackageSpec, error)

	// Extract writes the payload of the archive directly into dir, which must not exist.
	Extract(archivePath, dir string) (domain.PackageSpec, error)
}
