package logger

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/parcel/internal/adapters/config"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/core/ports"
)

// NodeID is the unique identifier for the logger Graft node.
const NodeID graft.ID = "adapter.logger"

func init() {
	graft.Register(graft.Node[ports.Logger]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{config.SettingsNodeID},
		Run: func(ctx context.Context) (ports.Logger, error) {
			settings, err := graft.Dep[*domain.Settings](ctx)
			if err != nil {
				return nil, err
			}
			l := New()
			l.SetJSON(settings.LogJSON)
			l.SetVerbose(settings.Verbose)
			if settings.DebugLog {
				if err := l.SetDebugLog(domain.DebugLogPath(settings.CacheDir)); err != nil {
					l.Warn("debug log disabled: " + err.Error())
				}
			}
			return l, nil
		},
	})
}
