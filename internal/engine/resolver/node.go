package resolver

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mpkg/internal/adapters/fetch"     //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mpkg/internal/adapters/fs"        //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mpkg/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mpkg/internal/adapters/manifest"  //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mpkg/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/mpkg/internal/core/ports"
)

// NodeID is the unique identifier for the resolver Graft node.
const NodeID graft.ID = "engine.resolver"

func init() {
	graft.Register(graft.Node[*Resolver]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			manifest.NodeID,
			fetch.NodeID,
			fs.VerifierNodeID,
			fs.HasherNodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Resolver, error) {
			loader, err := graft.Dep[ports.ManifestLoader](ctx)
			if err != nil {
				return nil, err
			}

			fetchers, err := graft.Dep[ports.FetcherFactory](ctx)
			if err != nil {
				return nil, err
			}

			verifier, err := graft.Dep[ports.Verifier](ctx)
			if err != nil {
				return nil, err
			}

			hasher, err := graft.Dep[ports.Hasher](ctx)
			if err != nil {
				return nil, err
			}

			tracer, err := graft.Dep[ports.Tracer](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return New(loader, fetchers, verifier, hasher, tracer, log), nil
		},
	})
}
