package fetch

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/mpkg/internal/adapters/fs"
	"go.trai.ch/mpkg/internal/adapters/logger"
	"go.trai.ch/mpkg/internal/core/ports"
)

// NodeID is the unique identifier for the fetcher factory Graft node.
const NodeID graft.ID = "adapter.fetcher_factory"

func init() {
	graft.Register(graft.Node[ports.FetcherFactory]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, fs.LocalNodeID},
		Run: func(ctx context.Context) (ports.FetcherFactory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			local, err := graft.Dep[*fs.LocalFetcher](ctx)
			if err != nil {
				return nil, err
			}
			return NewFactory(log, local), nil
		},
	})
}
