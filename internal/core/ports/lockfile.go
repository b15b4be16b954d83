// Package ports defines the core interfaces for the application.
package ports

import "github.com/obraunsdorf/cargo-downgrade/internal/core/domain"

// LockfileLoader reads a lockfile and builds its dependency graph.
//
//go:generate go run go.uber.org/mock/mockgen -source=lockfile.go -destination=mocks/mock_lockfile.go -package=mocks
type LockfileLoader interface {
	// Load reads the lockfile at path.
	// It returns domain.ErrLockfileRead if the file cannot be read and
	// domain.ErrLockfileParse if its contents are malformed.
	Load(path string) (*domain.DependencyGraph, error)
}
