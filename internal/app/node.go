package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/parcel/internal/adapters/archive"  //nolint:depguard // Wired in app layer
	"go.trai.ch/parcel/internal/adapters/cas"      //nolint:depguard // Wired in app layer
	"go.trai.ch/parcel/internal/adapters/config"   //nolint:depguard // Wired in app layer
	"go.trai.ch/parcel/internal/adapters/logger"   //nolint:depguard // Wired in app layer
	"go.trai.ch/parcel/internal/adapters/prompt"   //nolint:depguard // Wired in app layer
	"go.trai.ch/parcel/internal/adapters/registry" //nolint:depguard // Wired in app layer
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
	"go.trai.ch/parcel/internal/engine/installer"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	// App Node
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.SettingsNodeID,
			config.LocatorNodeID,
			cas.NodeID,
			registry.NodeID,
			archive.BuilderNodeID,
			archive.UnpackerNodeID,
			prompt.NodeID,
			installer.NodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	// Components Node
	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
			config.SettingsNodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	settings, err := graft.Dep[*domain.Settings](ctx)
	if err != nil {
		return nil, err
	}
	locator, err := graft.Dep[ports.ProjectLocator](ctx)
	if err != nil {
		return nil, err
	}
	cache, err := graft.Dep[ports.LocalCache](ctx)
	if err != nil {
		return nil, err
	}
	reg, err := graft.Dep[ports.Registry](ctx)
	if err != nil {
		return nil, err
	}
	builder, err := graft.Dep[ports.Builder](ctx)
	if err != nil {
		return nil, err
	}
	unpacker, err := graft.Dep[ports.Unpacker](ctx)
	if err != nil {
		return nil, err
	}
	prompter, err := graft.Dep[ports.Prompter](ctx)
	if err != nil {
		return nil, err
	}
	inst, err := graft.Dep[*installer.Installer](ctx)
	if err != nil {
		return nil, err
	}
	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}
	return New(settings, locator, cache, reg, builder, unpacker, prompter, inst, log), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	app, err := graft.Dep[*App](ctx)
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
	return NewComponents(app, log, settings), nil
}
