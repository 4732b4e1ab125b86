package fs

import (
	"context"
	"os"

	"go.trai.ch/mpkg/internal/core/domain"
	"go.trai.ch/mpkg/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.PackageFetcher = (*LocalFetcher)(nil)

// LocalFetcher locates packages that already live on disk.
type LocalFetcher struct{}

// NewLocalFetcher creates a new LocalFetcher.
func NewLocalFetcher() *LocalFetcher {
	return &LocalFetcher{}
}

// Fetch checks that a normalized local path is a directory holding a manifest.
func (f *LocalFetcher) Fetch(_ context.Context, req domain.LocateRequest) (string, error) {
	local, ok := req.Kind.(domain.LocalDependency)
	if !ok {
		err := zerr.Wrap(domain.ErrInvalidDependency, "not a local dependency")
		return "", zerr.With(err, "dependency", req.Name.String())
	}
	path := local.Path.String()

	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		err := zerr.Wrap(domain.ErrInvalidPath, "dependency directory does not exist")
		err = zerr.With(err, "dependency", req.Name.String())
		return "", zerr.With(err, "path", path)
	}

	if _, err := os.Stat(domain.ManifestPath(path)); err != nil {
		err := zerr.Wrap(domain.ErrInvalidPath, "dependency directory has no "+domain.ManifestFileName)
		err = zerr.With(err, "dependency", req.Name.String())
		return "", zerr.With(err, "path", path)
	}

	return path, nil
}
