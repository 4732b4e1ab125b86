package ports

import (
	"context"

	"go.trai.ch/mpkg/internal/core/domain"
)

// NodeResolver fetches packages published to a node.
//
//go:generate mockgen -source=node_resolver.go -destination=mocks/mock_node_resolver.go -package=mocks
type NodeResolver interface {
	// Resolve returns the package root of dep on the local filesystem.
	Resolve(ctx context.Context, dep domain.CustomDependency) (string, error)
}
