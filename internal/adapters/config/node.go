package config

import (
	"context"
	"os"

	"github.com/grindlemire/graft"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
)

const (
	// SettingsNodeID is the unique identifier for the settings Graft node.
	SettingsNodeID graft.ID = "adapter.settings"
	// LocatorNodeID is the unique identifier for the project locator Graft node.
	LocatorNodeID graft.ID = "adapter.project_locator"
)

// ConfigFileEnv names the variable that overrides the config file location.
const ConfigFileEnv = EnvPrefix + "_CONFIG"

// ConfigFile returns the config file to load: $PARCEL_CONFIG when set, else the default.
func ConfigFile() string {
	if p := os.Getenv(ConfigFileEnv); p != "" {
		return p
	}
	return DefaultConfigFile()
}

func init() {
	graft.Register(graft.Node[*domain.Settings]{
		ID:        SettingsNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (*domain.Settings, error) {
			return LoadSettings(ConfigFile())
		},
	})

	graft.Register(graft.Node[ports.ProjectLocator]{
		ID:        LocatorNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ProjectLocator, error) {
			return NewLocator(), nil
		},
	})
}
