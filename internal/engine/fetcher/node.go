package fetcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/parcel/internal/adapters/archive"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/parcel/internal/adapters/cas"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/parcel/internal/adapters/config"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/parcel/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/parcel/internal/adapters/registry"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/parcel/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
)

// NodeID is the unique identifier for the fetcher Graft node.
const NodeID graft.ID = "engine.fetcher"

func init() {
	graft.Register(graft.Node[*Fetcher]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			registry.NodeID,
			cas.NodeID,
			archive.UnpackerNodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
			config.SettingsNodeID,
		},
		Run: func(ctx context.Context) (*Fetcher, error) {
			reg, err := graft.Dep[ports.Registry](ctx)
			if err != nil {
				return nil, err
			}
			cache, err := graft.Dep[ports.LocalCache](ctx)
			if err != nil {
				return nil, err
			}
			unpacker, err := graft.Dep[ports.Unpacker](ctx)
			if err != nil {
				return nil, err
			}
			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			return New(reg, cache, unpacker, tracer, log, WithRetries(settings.Retries)), nil
		},
	})
}
