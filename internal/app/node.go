package app

import (
	"context"
	"net/http"

	"github.com/grindlemire/graft"
	"github.com/obraunsdorf/cargo-downgrade/internal/adapters/cratesio"  //nolint:depguard // Wired in app layer
	"github.com/obraunsdorf/cargo-downgrade/internal/adapters/lockfile"  //nolint:depguard // Wired in app layer
	"github.com/obraunsdorf/cargo-downgrade/internal/adapters/logger"    //nolint:depguard // Wired in app layer
	"github.com/obraunsdorf/cargo-downgrade/internal/adapters/telemetry" //nolint:depguard // Wired in app layer
	"github.com/obraunsdorf/cargo-downgrade/internal/core/ports"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			lockfile.NodeID,
			telemetry.TracerNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*App, error) {
			loader, err := graft.Dep[ports.LockfileLoader](ctx)
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

			return New(loader, NewCratesIORegistry, tracer, log), nil
		},
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: func(ctx context.Context) (*Components, error) {
			app, err := graft.Dep[*App](ctx)
			if err != nil {
				return nil, err
			}

			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}

			return NewComponents(app, log), nil
		},
	})
}

// NewCratesIORegistry is the RegistryFactory backed by the crates.io API.
func NewCratesIORegistry(cfg RegistryConfig) (ports.Registry, error) {
	var opts []cratesio.Option
	if cfg.BaseURL != "" {
		opts = append(opts, cratesio.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Interval >= 0 {
		opts = append(opts, cratesio.WithInterval(cfg.Interval))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, cratesio.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}))
	}
	client, err := cratesio.NewClient(opts...)
	if err != nil {
		return nil, err
	}
	return client, nil
}
