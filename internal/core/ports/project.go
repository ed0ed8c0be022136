package ports

import "go.trai.ch/parcel/internal/core/domain"

// ProjectLocator finds and persists project manifests.
//
//go:generate go run go.uber.org/mock/mockgen -source=project.go -destination=mocks/mock_project.go -package=mocks
type ProjectLocator interface {
	// Nearest returns the project whose manifest is in start or its closest ancestor.
	// It fails with domain.ErrProjectNotFound when there is none.
	Nearest(start string) (*domain.Project, error)

	// Save writes the project manifest back to disk.
	Save(project *domain.Project) error
}
