package cas

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/parcel/internal/adapters/archive"
	"go.trai.ch/parcel/internal/adapters/config"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
)

// NodeID is the unique identifier for the local cache Graft node.
const NodeID graft.ID = "adapter.local_cache"

func init() {
	graft.Register(graft.Node[ports.LocalCache]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID, archive.UnpackerNodeID},
		Run: func(ctx context.Context) (ports.LocalCache, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			var unpacker ports.Unpacker
			if settings.Extract {
				unpacker, err = graft.Dep[ports.Unpacker](ctx)
				if err != nil {
					return nil, err
				}
			}
			return NewStore(settings.CacheDir, unpacker)
		},
	})
}
