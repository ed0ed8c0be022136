package archive

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/parcel/internal/core/ports"
)

const (
	// BuilderNodeID is the unique identifier for the archive builder Graft node.
	BuilderNodeID graft.ID = "adapter.archive_builder"
	// UnpackerNodeID is the unique identifier for the archive unpacker Graft node.
	UnpackerNodeID graft.ID = "adapter.archive_unpacker"
)

func init() {
	graft.Register(graft.Node[ports.Builder]{
		ID:        BuilderNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Builder, error) {
			return New(), nil
		},
	})

	graft.Register(graft.Node[ports.Unpacker]{
		ID:        UnpackerNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Unpacker, error) {
			return New(), nil
		},
	})
}
