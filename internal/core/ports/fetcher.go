package ports

import (
	"context"

	"go.trai.ch/mpkg/internal/core/domain"
)

// PackageFetcher materializes a dependency on the local filesystem.
//
//go:generate mockgen -source=fetcher.go -destination=mocks/mock_fetcher.go -package=mocks
type PackageFetcher interface {
	// Fetch returns the directory holding the package's Move.toml.
	// Transport failures are reported as ErrFetchFailed carrying the transport message.
	Fetch(ctx context.Context, req domain.LocateRequest) (string, error)
}

// FetcherFactory builds the fetcher used by one resolution run.
// The settings decide the cache location and the node resolvers in use.
type FetcherFactory interface {
	New(settings domain.Settings) (PackageFetcher, error)
}
