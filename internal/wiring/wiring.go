// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "github.com/obraunsdorf/cargo-downgrade/internal/adapters/lockfile"
	_ "github.com/obraunsdorf/cargo-downgrade/internal/adapters/logger"
	_ "github.com/obraunsdorf/cargo-downgrade/internal/adapters/telemetry"
	// Register app nodes.
	_ "github.com/obraunsdorf/cargo-downgrade/internal/app"
)
