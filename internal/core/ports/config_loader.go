// Package ports defines the core interfaces for the application.
package ports

import "go.trai.ch/mpkg/internal/core/domain"

// ConfigLoader defines the interface for locating the package root and loading tool settings.
//
//go:generate mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// DiscoverRoot walks up from cwd to find the directory containing Move.toml.
	DiscoverRoot(cwd string) (string, error)

	// LoadSettings reads mpkg.yaml from root, falling back to defaults when it is absent.
	LoadSettings(root string) (domain.Settings, error)
}
