// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/parcel/internal/adapters/archive"
	_ "go.trai.ch/parcel/internal/adapters/cas"
	_ "go.trai.ch/parcel/internal/adapters/config"
	_ "go.trai.ch/parcel/internal/adapters/logger"
	_ "go.trai.ch/parcel/internal/adapters/prompt"
	_ "go.trai.ch/parcel/internal/adapters/registry"
	_ "go.trai.ch/parcel/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/parcel/internal/app"
	_ "go.trai.ch/parcel/internal/engine/fetcher"
	_ "go.trai.ch/parcel/internal/engine/installer"
	_ "go.trai.ch/parcel/internal/engine/resolver"
)
