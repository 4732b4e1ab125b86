// Package node fetches custom dependencies published on package nodes.
package node

import (
	"context"
	"strings"

	"go.trai.ch/mpkg/internal/core/domain"
	"go.trai.ch/mpkg/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.PackageFetcher = (*Registry)(nil)

// Registry routes custom dependencies to the resolver registered for their node URL scheme.
type Registry struct {
	resolvers map[string]ports.NodeResolver
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{resolvers: make(map[string]ports.NodeResolver)}
}

// Register binds scheme to resolver, replacing any previous binding.
func (r *Registry) Register(scheme string, resolver ports.NodeResolver) {
	r.resolvers[strings.ToLower(scheme)] = resolver
}

// Lookup returns the resolver registered for scheme.
func (r *Registry) Lookup(scheme string) (ports.NodeResolver, bool) {
	resolver, ok := r.resolvers[strings.ToLower(scheme)]
	return resolver, ok
}

// Fetch resolves a custom dependency. An unregistered scheme fails before any I/O.
func (r *Registry) Fetch(ctx context.Context, req domain.LocateRequest) (string, error) {
	dep, ok := req.Kind.(domain.CustomDependency)
	if !ok {
		err := zerr.Wrap(domain.ErrInvalidDependency, "not a node dependency")
		return "", zerr.With(err, "dependency", req.Name.String())
	}

	resolver, ok := r.Lookup(dep.Scheme())
	if !ok {
		err := zerr.Wrap(domain.ErrUnknownNodeResolver, "node url scheme is not registered")
		err = zerr.With(err, "dependency", req.Name.String())
		err = zerr.With(err, "node", dep.NodeURL)
		return "", zerr.With(err, "scheme", dep.Scheme())
	}

	root, err := resolver.Resolve(ctx, dep)
	if err != nil {
		return "", zerr.With(err, "dependency", req.Name.String())
	}
	return root, nil
}
