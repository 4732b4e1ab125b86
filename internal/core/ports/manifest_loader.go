package ports

import "go.trai.ch/mpkg/internal/core/domain"

// ManifestLoader defines the interface for reading a package manifest.
//
//go:generate mockgen -source=manifest_loader.go -destination=mocks/mock_manifest_loader.go -package=mocks
type ManifestLoader interface {
	// Load parses the Move.toml in dir and validates it for the given build mode.
	Load(dir string, mode domain.BuildMode) (*domain.SourceManifest, error)
}
