// Package fetch dispatches dependency fetches to the adapter serving each dependency kind.
package fetch

import (
	"context"
	"maps"
	"slices"

	"go.trai.ch/mpkg/internal/adapters/fs"
	"go.trai.ch/mpkg/internal/adapters/git"
	"go.trai.ch/mpkg/internal/adapters/node"
	"go.trai.ch/mpkg/internal/core/domain"
	"go.trai.ch/mpkg/internal/core/ports"
	"go.trai.ch/zerr"
)

var (
	_ ports.PackageFetcher = (*Router)(nil)
	_ ports.FetcherFactory = (*Factory)(nil)
)

// Router implements ports.PackageFetcher by delegating on the dependency kind.
type Router struct {
	Local ports.PackageFetcher
	Git   ports.PackageFetcher
	Node  ports.PackageFetcher
}

// Fetch materializes req with the fetcher for its kind.
func (r *Router) Fetch(ctx context.Context, req domain.LocateRequest) (string, error) {
	var fetcher ports.PackageFetcher
	switch req.Kind.(type) {
	case domain.LocalDependency:
		fetcher = r.Local
	case domain.GitDependency:
		fetcher = r.Git
	case domain.CustomDependency:
		fetcher = r.Node
	}

	if fetcher == nil {
		err := zerr.Wrap(domain.ErrInvalidDependency, "no fetcher for dependency kind")
		return "", zerr.With(err, "dependency", req.Name.String())
	}
	return fetcher.Fetch(ctx, req)
}

// Factory builds a Router for the cache and node resolvers named in the settings.
type Factory struct {
	logger ports.Logger
	local  *fs.LocalFetcher
}

// NewFactory creates a new Factory.
func NewFactory(logger ports.Logger, local *fs.LocalFetcher) *Factory {
	return &Factory{logger: logger, local: local}
}

// New returns a Router whose git and node fetchers store packages below settings.CacheDir.
func (f *Factory) New(settings domain.Settings) (ports.PackageFetcher, error) {
	registry := node.NewRegistry()
	httpResolver := node.NewHTTPResolver(settings.CacheDir, f.logger)
	fileResolver := node.NewFileResolver()

	for _, scheme := range slices.Sorted(maps.Keys(settings.NodeResolvers)) {
		switch kind := settings.NodeResolvers[scheme]; kind {
		case domain.NodeResolverHTTP:
			registry.Register(scheme, httpResolver)
		case domain.NodeResolverFile:
			registry.Register(scheme, fileResolver)
		default:
			err := zerr.Wrap(domain.ErrInvalidSettings, "unknown node resolver kind")
			err = zerr.With(err, "scheme", scheme)
			return nil, zerr.With(err, "kind", string(kind))
		}
	}

	return &Router{
		Local: f.local,
		Git:   git.NewFetcher(settings.CacheDir, f.logger),
		Node:  registry,
	}, nil
}
