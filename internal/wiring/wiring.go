// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.trai.ch/mpkg/internal/adapters/config"
	_ "go.trai.ch/mpkg/internal/adapters/fetch"
	_ "go.trai.ch/mpkg/internal/adapters/fs"
	_ "go.trai.ch/mpkg/internal/adapters/lockfile"
	_ "go.trai.ch/mpkg/internal/adapters/logger"
	_ "go.trai.ch/mpkg/internal/adapters/manifest"
	_ "go.trai.ch/mpkg/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.trai.ch/mpkg/internal/app"
	_ "go.trai.ch/mpkg/internal/engine/resolver"
)
