package ports

import (
	"context"

	"github.com/obraunsdorf/cargo-downgrade/internal/core/domain"
)

// Registry provides the published version history of crates.
//
//go:generate go run go.uber.org/mock/mockgen -source=registry.go -destination=mocks/mock_registry.go -package=mocks
type Registry interface {
	// Versions returns every published version of the named crate, yanked ones included.
	// The order of the returned records is unspecified.
	//
	// Implementations enforce their own request spacing and timeout; callers must
	// not issue concurrent calls.
	Versions(ctx context.Context, name string) ([]domain.VersionRecord, error)
}
