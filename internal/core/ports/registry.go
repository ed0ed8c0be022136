package ports

import (
	"context"
	"io"

	"go.trai.ch/parcel/internal/core/domain"
)

// Registry is the remote package registry.
//
//go:generate go run go.uber.org/mock/mockgen -source=registry.go -destination=mocks/mock_registry.go -package=mocks
type Registry interface {
	// Search returns every published identity of the named package.
	// An unknown package yields an empty index.
	Search(ctx context.Context, name string) (*domain.PackageIndex, error)

	// Download opens the archive of the given identity. The caller closes the stream.
	Download(ctx context.Context, id domain.PackageID) (io.ReadCloser, error)

	// Login exchanges credentials for a session.
	Login(ctx context.Context, email, password string) (*domain.Session, error)

	// Push publishes the archive at archivePath and returns the registry's status message.
	Push(ctx context.Context, session *domain.Session, archivePath string) (string, error)

	// Yank hides a published version from new resolutions.
	Yank(ctx context.Context, session *domain.Session, name string, version domain.Version) (string, error)

	// Unyank reverses Yank. It succeeds when the version is not yanked.
	Unyank(ctx context.Context, session *domain.Session, name string, version domain.Version) (string, error)
}
