package resolver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/parcel/internal/adapters/cas"       //nolint:depguard // Wired in engine wiring
	"go.trai.ch/parcel/internal/adapters/config"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/parcel/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/parcel/internal/adapters/registry"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/parcel/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/parcel/internal/engine/fetcher"
)

// NodeID is the unique identifier for the resolver Graft node.
const NodeID graft.ID = "engine.resolver"

func init() {
	graft.Register(graft.Node[*Resolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			cas.NodeID,
			registry.NodeID,
			fetcher.NodeID,
			config.SettingsNodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Resolver, error) {
			cache, err := graft.Dep[ports.LocalCache](ctx)
			if err != nil {
				return nil, err
			}
			reg, err := graft.Dep[ports.Registry](ctx)
			if err != nil {
				return nil, err
			}
			f, err := graft.Dep[*fetcher.Fetcher](ctx)
			if err != nil {
				return nil, err
			}
			settings, err := graft.Dep[*domain.Settings](ctx)
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
			return New(cache, reg, f, settings, tracer, log), nil
		},
	})
}
